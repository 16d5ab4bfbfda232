package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileMarker introduces an embedded file in agent output. The file name
// follows on the same line; the body runs until the next marker or EOF.
const fileMarker = "### FILE:"

// ExtractFiles scans agent output for fileMarker lines and writes each
// embedded file below dir. Names resolving outside dir are rejected. A file
// named exactly run.sh is made executable. Returns the relative names
// written, in output order.
func ExtractFiles(output, dir string) ([]string, error) {
	var written []string

	lines := strings.Split(output, "\n")
	i := 0
	for i < len(lines) {
		name, ok := markerName(lines[i])
		if !ok {
			i++
			continue
		}

		var body []string
		i++
		for i < len(lines) {
			if _, next := markerName(lines[i]); next {
				break
			}
			body = append(body, lines[i])
			i++
		}

		rel, err := safeRelPath(name)
		if err != nil {
			return written, err
		}

		dst := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}

		mode := os.FileMode(0o644)
		if rel == "run.sh" {
			mode = 0o755
		}
		content := strings.TrimLeft(strings.Join(body, "\n"), "\n")
		if !strings.HasSuffix(content, "\n") && content != "" {
			content += "\n"
		}
		if err := os.WriteFile(dst, []byte(content), mode); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", rel, err)
		}
		written = append(written, rel)
	}

	return written, nil
}

// markerName reports whether line is a file marker and returns the name.
func markerName(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, fileMarker) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(trimmed, fileMarker))
	return name, name != ""
}

// safeRelPath cleans name and rejects anything escaping the target dir.
func safeRelPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("refusing absolute file path %q in agent output", name)
	}
	rel := filepath.Clean(name)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing file path %q escaping experiment directory", name)
	}
	return rel, nil
}
