package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

// timestampLayout names each snapshot directory.
const timestampLayout = "20060102_150405"

// Stats summarizes one source's backup.
type Stats struct {
	Source      string
	Destination string
	Processed   int
	Copied      int
}

// Snapshot describes one existing backup directory.
type Snapshot struct {
	Name    string
	SizeMB  float64
	ModTime time.Time
}

// Tool runs backups against a loaded configuration.
type Tool struct {
	cfg    *Config
	path   string
	logger *zap.Logger
	// now is swappable for deterministic snapshot names in tests.
	now func() time.Time
}

// NewTool loads (or creates) the config at path and returns a Tool.
func NewTool(path string, logger *zap.Logger) (*Tool, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return &Tool{cfg: cfg, path: path, logger: logger, now: time.Now}, nil
}

// Config exposes the loaded configuration.
func (t *Tool) Config() *Config { return t.cfg }

// ConfigPath returns where the configuration lives.
func (t *Tool) ConfigPath() string { return t.path }

// BackupAll copies every configured source. A failing source is reported
// in its stats entry and the batch continues; the error is non-nil when
// any source failed or none are configured.
func (t *Tool) BackupAll() ([]Stats, error) {
	if len(t.cfg.Sources) == 0 {
		return nil, fmt.Errorf("no backup sources configured")
	}

	var all []Stats
	failures := 0
	for _, source := range t.cfg.Sources {
		stats, err := t.BackupOne(source)
		if err != nil {
			t.logger.Error("backup failed", zap.String("source", source), zap.Error(err))
			failures++
		}
		all = append(all, stats)
	}

	if failures > 0 {
		return all, fmt.Errorf("%d of %d sources failed", failures, len(t.cfg.Sources))
	}
	return all, nil
}

// BackupOne copies a single source tree into a timestamped directory under
// the destination, skipping excluded paths. Per-file copy errors are
// logged and skipped.
func (t *Tool) BackupOne(source string) (Stats, error) {
	stats := Stats{Source: source}

	info, err := os.Stat(source)
	if err != nil {
		return stats, fmt.Errorf("source path does not exist: %s", source)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("source is not a directory: %s", source)
	}

	name := fmt.Sprintf("%s_%s", filepath.Base(source), t.now().Format(timestampLayout))
	dest := filepath.Join(t.cfg.Destination, name)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return stats, fmt.Errorf("failed to create backup directory: %w", err)
	}
	stats.Destination = dest

	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			t.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path != source && t.cfg.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		stats.Processed++
		if t.cfg.Excluded(path) {
			return nil
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dest, rel)
		if err := copyFile(path, dst); err != nil {
			t.logger.Warn("failed to copy file", zap.String("file", path), zap.Error(err))
			return nil
		}
		stats.Copied++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("backup walk failed: %w", err)
	}

	t.logger.Info("backup completed",
		zap.String("source", source),
		zap.String("destination", dest),
		zap.Int("processed", stats.Processed),
		zap.Int("copied", stats.Copied))
	return stats, nil
}

// List returns existing snapshots under the destination, newest first.
func (t *Tool) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(t.cfg.Destination)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var snapshots []Snapshot
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(t.cfg.Destination, e.Name())
		info, err := e.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name:    e.Name(),
			SizeMB:  float64(treeSize(dir)) / (1024 * 1024),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ModTime.After(snapshots[j].ModTime)
	})
	return snapshots, nil
}

// AddSource records a new source directory, deduplicated by absolute path.
func (t *Tool) AddSource(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	for _, s := range t.cfg.Sources {
		if s == abs {
			return false, nil
		}
	}
	t.cfg.Sources = append(t.cfg.Sources, abs)
	return true, t.cfg.Save(t.path)
}

// RemoveSource drops a source directory from the config.
func (t *Tool) RemoveSource(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	for i, s := range t.cfg.Sources {
		if s == abs {
			t.cfg.Sources = append(t.cfg.Sources[:i], t.cfg.Sources[i+1:]...)
			return true, t.cfg.Save(t.path)
		}
	}
	return false, nil
}

// copyFile copies src to dst, creating parent directories and preserving
// the file mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// treeSize sums regular file sizes below dir.
func treeSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
