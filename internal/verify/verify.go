// Package verify runs a generated experiment's run.sh and classifies its
// short-term behavior. A process still alive after the grace period counts
// as started correctly (a server, for instance); this is a best-effort
// heuristic, not a guarantee.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// stderrLimit caps how much captured error output goes into the message.
const stderrLimit = 200

// Result is the two-valued verification outcome.
type Result struct {
	Success bool
	Message string
}

// Verifier checks experiment directories.
type Verifier struct {
	grace  time.Duration
	logger *zap.Logger
}

// New returns a Verifier with the given grace period.
func New(grace time.Duration, logger *zap.Logger) *Verifier {
	return &Verifier{grace: grace, logger: logger}
}

// Verify executes dir/run.sh and waits up to the grace period.
// Outcomes: missing script fails; a clean exit before the deadline
// succeeds; a non-zero exit fails with the code and truncated stderr; a
// process still running at the deadline is terminated and counts as
// success.
func (v *Verifier) Verify(ctx context.Context, dir string) Result {
	script := filepath.Join(dir, "run.sh")
	if _, err := os.Stat(script); err != nil {
		return Result{Success: false, Message: "No run.sh found"}
	}

	// The agent does not always leave the executable bit set.
	if err := os.Chmod(script, 0o755); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Error running run.sh: %v", err)}
	}

	cmd := exec.Command("bash", "run.sh")
	cmd.Dir = dir
	// Do not let grandchildren holding the stderr pipe block Wait after the
	// child itself is gone.
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Error running run.sh: %v", err)}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(v.grace)
	defer timer.Stop()

	select {
	case err := <-done:
		if err == nil {
			return Result{Success: true, Message: "run.sh completed successfully"}
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		v.logger.Debug("run.sh exited non-zero", zap.Int("code", code))
		return Result{
			Success: false,
			Message: fmt.Sprintf("run.sh failed with code %d: %s", code, truncate(stderr.String(), stderrLimit)),
		}

	case <-timer.C:
		// Still running after the grace period: treat as started, stop it.
		v.terminate(cmd, done)
		return Result{Success: true, Message: "run.sh executed successfully"}

	case <-ctx.Done():
		v.terminate(cmd, done)
		return Result{Success: false, Message: fmt.Sprintf("Error running run.sh: %v", ctx.Err())}
	}
}

// terminate stops the child and reaps it.
func (v *Verifier) terminate(cmd *exec.Cmd, done chan error) {
	_ = cmd.Process.Signal(os.Interrupt)
	select {
	case <-done:
	case <-time.After(time.Second):
		_ = cmd.Process.Kill()
		<-done
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
