// Package vcs shells out to the git CLI to record verified experiments.
package vcs

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// CommitDir stages dir and commits it with the given message. The commit
// runs in repoRoot so relative experiment paths resolve the same way the
// operator's own git commands would.
func CommitDir(repoRoot, dir, message string) error {
	add := exec.Command("git", "add", dir)
	add.Dir = repoRoot
	if out, err := runGit(add); err != nil {
		return fmt.Errorf("git add failed: %s", out)
	}

	commit := exec.Command("git", "commit", "-m", message)
	commit.Dir = repoRoot
	if out, err := runGit(commit); err != nil {
		return fmt.Errorf("git commit failed: %s", out)
	}
	return nil
}

// runGit executes cmd and returns trimmed combined diagnostics on failure.
func runGit(cmd *exec.Cmd) (string, error) {
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		out := strings.TrimSpace(buf.String())
		if out == "" {
			out = err.Error()
		}
		return out, err
	}
	return "", nil
}
