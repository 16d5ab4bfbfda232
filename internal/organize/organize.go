// Package organize moves files in a directory into category folders by
// type, modification date, or custom rules, with a JSON undo log.
package organize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UndoLogName is the hidden JSON file recording moves for undo.
const UndoLogName = ".file_organizer_undo.json"

// categories maps folder names to the extensions they collect. Everything
// else lands in Others.
var categories = map[string][]string{
	"Documents": {".pdf", ".doc", ".docx", ".txt", ".odt", ".xls", ".xlsx", ".ppt", ".pptx"},
	"Images":    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico"},
	"Videos":    {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm"},
	"Audio":     {".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a"},
	"Archives":  {".zip", ".tar", ".gz", ".rar", ".7z", ".bz2"},
	"Code":      {".py", ".js", ".html", ".css", ".cpp", ".java", ".c", ".h", ".go", ".rs"},
	"Data":      {".json", ".xml", ".csv", ".sql", ".db"},
}

// extensionCategory is the inverted lookup, built once.
var extensionCategory = func() map[string]string {
	m := make(map[string]string)
	for cat, exts := range categories {
		for _, ext := range exts {
			m[ext] = cat
		}
	}
	return m
}()

// Move is one executed (or, in dry-run, planned) file movement.
type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// undoLog is the on-disk undo record.
type undoLog struct {
	Operations []Move `json:"operations"`
	Timestamp  string `json:"timestamp"`
}

// Rule is one custom-config matching rule. A file matches when its
// extension is listed or its name matches the glob pattern.
type Rule struct {
	Extensions []string `json:"extensions,omitempty"`
	Pattern    string   `json:"pattern,omitempty"`
	Folder     string   `json:"folder"`
}

// rulesConfig is the custom-rules JSON file layout.
type rulesConfig struct {
	Rules []Rule `json:"rules"`
}

// Organizer moves files inside one directory.
type Organizer struct {
	dir    string
	dryRun bool
	logger *zap.Logger
}

// New returns an Organizer for dir. With dryRun set, operations only
// report what they would move.
func New(dir string, dryRun bool, logger *zap.Logger) (*Organizer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}
	return &Organizer{dir: abs, dryRun: dryRun, logger: logger}, nil
}

// ByType moves files into category folders derived from their extension.
func (o *Organizer) ByType(recursive bool) ([]Move, error) {
	files, err := o.listFiles(recursive)
	if err != nil {
		return nil, err
	}

	var moves []Move
	for _, f := range files {
		cat := Category(f)
		dst := filepath.Join(o.dir, cat, filepath.Base(f))
		if f != dst {
			moves = append(moves, Move{From: f, To: dst})
		}
	}
	return o.execute(moves, false)
}

// ByDate moves files into YYYY-MM folders from their modification time.
func (o *Organizer) ByDate(recursive bool) ([]Move, error) {
	files, err := o.listFiles(recursive)
	if err != nil {
		return nil, err
	}

	var moves []Move
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			o.logger.Warn("skipping unreadable file", zap.String("file", f), zap.Error(err))
			continue
		}
		folder := info.ModTime().Format("2006-01")
		dst := filepath.Join(o.dir, folder, filepath.Base(f))
		if f != dst {
			moves = append(moves, Move{From: f, To: dst})
		}
	}
	return o.execute(moves, false)
}

// ByRules moves files according to the custom-rules JSON config at
// configPath. The first matching rule wins; non-matching files stay put.
func (o *Organizer) ByRules(configPath string, recursive bool) ([]Move, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules config: %w", err)
	}
	var cfg rulesConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules config: %w", err)
	}

	files, err := o.listFiles(recursive)
	if err != nil {
		return nil, err
	}

	var moves []Move
	for _, f := range files {
		for _, rule := range cfg.Rules {
			if !ruleMatches(f, rule) {
				continue
			}
			folder := rule.Folder
			if folder == "" {
				folder = "Others"
			}
			dst := filepath.Join(o.dir, folder, filepath.Base(f))
			if f != dst {
				moves = append(moves, Move{From: f, To: dst})
			}
			break
		}
	}
	return o.execute(moves, false)
}

// Undo replays the undo log in reverse, restoring every file to its
// original path, then removes the log.
func (o *Organizer) Undo() (int, error) {
	logPath := filepath.Join(o.dir, UndoLogName)
	data, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("no undo log found in %s", o.dir)
		}
		return 0, fmt.Errorf("failed to read undo log: %w", err)
	}

	var log undoLog
	if err := json.Unmarshal(data, &log); err != nil {
		return 0, fmt.Errorf("failed to parse undo log: %w", err)
	}

	restored := 0
	for i := len(log.Operations) - 1; i >= 0; i-- {
		m := log.Operations[i]
		if _, err := os.Stat(m.To); err != nil {
			o.logger.Warn("undo target missing", zap.String("file", m.To))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(m.From), 0o755); err != nil {
			o.logger.Warn("failed to restore file", zap.String("file", m.To), zap.Error(err))
			continue
		}
		if err := os.Rename(m.To, m.From); err != nil {
			o.logger.Warn("failed to restore file", zap.String("file", m.To), zap.Error(err))
			continue
		}
		o.logger.Info("restored", zap.String("file", filepath.Base(m.From)))
		restored++
	}

	if err := os.Remove(logPath); err != nil {
		return restored, fmt.Errorf("failed to remove undo log: %w", err)
	}
	return restored, nil
}

// Category returns the folder name for a file path's extension.
func Category(path string) string {
	if cat, ok := extensionCategory[strings.ToLower(filepath.Ext(path))]; ok {
		return cat
	}
	return "Others"
}

// ruleMatches reports whether path matches the rule by extension or glob.
func ruleMatches(path string, rule Rule) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range rule.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	if rule.Pattern != "" {
		if ok, _ := filepath.Match(rule.Pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// listFiles returns the regular files eligible for organizing. Hidden
// files (including the undo log) are skipped.
func (o *Organizer) listFiles(recursive bool) ([]string, error) {
	var files []string

	if recursive {
		err := filepath.WalkDir(o.dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != o.dir && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasPrefix(d.Name(), ".") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(o.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			files = append(files, filepath.Join(o.dir, e.Name()))
		}
	}
	return files, nil
}

// execute performs the moves, resolving duplicate destinations with a
// numeric suffix, and records successful moves in the undo log. Per-file
// failures are logged and skipped. With appendLog the moves extend an
// existing log instead of replacing it.
func (o *Organizer) execute(moves []Move, appendLog bool) ([]Move, error) {
	if len(moves) == 0 {
		return nil, nil
	}

	if o.dryRun {
		planned := make([]Move, 0, len(moves))
		for _, m := range moves {
			dst := dedupe(m.To)
			o.logger.Info("would move",
				zap.String("from", filepath.Base(m.From)),
				zap.String("to", relTo(o.dir, dst)))
			planned = append(planned, Move{From: m.From, To: dst})
		}
		return planned, nil
	}

	var done []Move
	for _, m := range moves {
		if err := os.MkdirAll(filepath.Dir(m.To), 0o755); err != nil {
			o.logger.Warn("failed to create target directory", zap.String("dir", filepath.Dir(m.To)), zap.Error(err))
			continue
		}
		dst := dedupe(m.To)
		if err := os.Rename(m.From, dst); err != nil {
			o.logger.Warn("failed to move file", zap.String("file", filepath.Base(m.From)), zap.Error(err))
			continue
		}
		o.logger.Info("moved",
			zap.String("from", filepath.Base(m.From)),
			zap.String("to", relTo(o.dir, dst)))
		done = append(done, Move{From: m.From, To: dst})
	}

	if len(done) > 0 {
		if err := o.saveUndoLog(done, appendLog); err != nil {
			return done, err
		}
	}
	return done, nil
}

// dedupe returns target if free, otherwise <stem>_<n><suffix> with the
// smallest free n starting at 1.
func dedupe(target string) string {
	if _, err := os.Stat(target); err != nil {
		return target
	}
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// saveUndoLog writes (or extends) the undo log for the directory.
func (o *Organizer) saveUndoLog(moves []Move, appendLog bool) error {
	logPath := filepath.Join(o.dir, UndoLogName)

	log := undoLog{Timestamp: time.Now().Format(time.RFC3339)}
	if appendLog {
		if data, err := os.ReadFile(logPath); err == nil {
			_ = json.Unmarshal(data, &log)
			log.Timestamp = time.Now().Format(time.RFC3339)
		}
	}
	log.Operations = append(log.Operations, moves...)

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode undo log: %w", err)
	}
	if err := os.WriteFile(logPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write undo log: %w", err)
	}
	return nil
}

// relTo renders path relative to base for log output.
func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
