package organize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	}
}

func newOrganizer(t *testing.T, dir string, dryRun bool) *Organizer {
	t.Helper()
	o, err := New(dir, dryRun, zap.NewNop())
	require.NoError(t, err)
	return o
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "Documents", Category("report.PDF"))
	assert.Equal(t, "Images", Category("photo.jpg"))
	assert.Equal(t, "Code", Category("main.go"))
	assert.Equal(t, "Data", Category("dump.sql"))
	assert.Equal(t, "Others", Category("unknown.xyz"))
	assert.Equal(t, "Others", Category("no_extension"))
}

func TestByType(t *testing.T) {
	t.Run("moves files into category folders", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.pdf", "b.jpg", "c.xyz")
		o := newOrganizer(t, dir, false)

		moves, err := o.ByType(false)
		require.NoError(t, err)
		assert.Len(t, moves, 3)

		assert.FileExists(t, filepath.Join(dir, "Documents", "a.pdf"))
		assert.FileExists(t, filepath.Join(dir, "Images", "b.jpg"))
		assert.FileExists(t, filepath.Join(dir, "Others", "c.xyz"))
		assert.NoFileExists(t, filepath.Join(dir, "a.pdf"))
	})

	t.Run("hidden files stay put", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, ".secret.pdf", "a.pdf")
		o := newOrganizer(t, dir, false)

		_, err := o.ByType(false)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, ".secret.pdf"))
	})

	t.Run("already organized files are not re-moved", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.pdf")
		o := newOrganizer(t, dir, false)

		_, err := o.ByType(false)
		require.NoError(t, err)
		moves, err := o.ByType(true)
		require.NoError(t, err)
		assert.Empty(t, moves)
	})

	t.Run("recursive pulls files from subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, filepath.Join("sub", "deep.go"))
		o := newOrganizer(t, dir, false)

		_, err := o.ByType(true)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, "Code", "deep.go"))
	})

	t.Run("dry run moves nothing and writes no log", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.pdf")
		o := newOrganizer(t, dir, true)

		moves, err := o.ByType(false)
		require.NoError(t, err)
		assert.Len(t, moves, 1)
		assert.FileExists(t, filepath.Join(dir, "a.pdf"))
		assert.NoFileExists(t, filepath.Join(dir, UndoLogName))
	})
}

func TestDuplicateHandling(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", filepath.Join("Documents", "a.pdf"))
	o := newOrganizer(t, dir, false)

	_, err := o.ByType(false)
	require.NoError(t, err)

	// Existing Documents/a.pdf must not be overwritten.
	assert.FileExists(t, filepath.Join(dir, "Documents", "a.pdf"))
	assert.FileExists(t, filepath.Join(dir, "Documents", "a_1.pdf"))

	content, err := os.ReadFile(filepath.Join(dir, "Documents", "a_1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", string(content))
}

func TestByDate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "old.txt")
	stamp := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.txt"), stamp, stamp))
	o := newOrganizer(t, dir, false)

	_, err := o.ByDate(false)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "2024-03", "old.txt"))
}

func TestByRules(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "invoice_jan.pdf", "notes.txt", "report.pdf")

	cfgPath := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
  "rules": [
    {"pattern": "invoice_*", "folder": "Invoices"},
    {"extensions": [".pdf"], "folder": "PDFs"}
  ]
}`), 0o644))

	o := newOrganizer(t, dir, false)
	_, err := o.ByRules(cfgPath, false)
	require.NoError(t, err)

	// First matching rule wins.
	assert.FileExists(t, filepath.Join(dir, "Invoices", "invoice_jan.pdf"))
	assert.FileExists(t, filepath.Join(dir, "PDFs", "report.pdf"))
	// No rule matched, file stays.
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	t.Run("missing config is an error", func(t *testing.T) {
		_, err := o.ByRules(filepath.Join(dir, "nope.json"), false)
		require.Error(t, err)
	})
}

func TestUndo(t *testing.T) {
	t.Run("round trip restores original layout", func(t *testing.T) {
		dir := t.TempDir()
		names := []string{"a.pdf", "b.jpg", "c.xyz"}
		writeFiles(t, dir, names...)
		o := newOrganizer(t, dir, false)

		moves, err := o.ByType(false)
		require.NoError(t, err)
		require.Len(t, moves, 3)
		assert.FileExists(t, filepath.Join(dir, UndoLogName))

		restored, err := o.Undo()
		require.NoError(t, err)
		assert.Equal(t, 3, restored)

		for _, name := range names {
			assert.FileExists(t, filepath.Join(dir, name))
		}
		assert.NoFileExists(t, filepath.Join(dir, UndoLogName))
	})

	t.Run("undo without a log is an error", func(t *testing.T) {
		o := newOrganizer(t, t.TempDir(), false)
		_, err := o.Undo()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no undo log")
	})

	t.Run("undo log records from/to pairs", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.pdf")
		o := newOrganizer(t, dir, false)

		_, err := o.ByType(false)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, UndoLogName))
		require.NoError(t, err)

		var log struct {
			Operations []Move `json:"operations"`
			Timestamp  string `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(data, &log))
		require.Len(t, log.Operations, 1)
		assert.Equal(t, filepath.Join(dir, "a.pdf"), log.Operations[0].From)
		assert.Equal(t, filepath.Join(dir, "Documents", "a.pdf"), log.Operations[0].To)
		assert.NotEmpty(t, log.Timestamp)
	})
}
