package organize

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay gives a newly created file time to finish being written
// before it is moved.
const settleDelay = 500 * time.Millisecond

// Watch organizes new files by type as they appear in the directory.
// It blocks until ctx is canceled. Moves append to the undo log, so a
// later undo restores everything the watcher touched.
func (o *Organizer) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(o.dir); err != nil {
		return err
	}

	o.logger.Info("watching directory", zap.String("dir", o.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			o.handleCreated(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// handleCreated files a single new top-level file into its type category.
func (o *Organizer) handleCreated(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	// Let the writer finish before moving the file out from under it.
	time.Sleep(settleDelay)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	dst := filepath.Join(o.dir, Category(path), name)
	if path == dst {
		return
	}
	if _, err := o.execute([]Move{{From: path, To: dst}}, true); err != nil {
		o.logger.Warn("failed to organize new file", zap.String("file", name), zap.Error(err))
	}
}
