// Package agent drives the external AI CLI as a blocking subprocess.
// The CLI is treated as an opaque text-in/text-out collaborator: it reads a
// prompt, may write files into the working directory as a side effect, and
// emits human-readable text on stdout.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"daylab/internal/config"
)

// TimeoutError indicates the CLI did not exit within the configured limit.
// Callers can use errors.As to detect this error type.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent CLI timed out after %v", e.Limit)
}

// ExitError indicates the CLI exited non-zero with diagnostics on stderr.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("agent CLI failed with code %d: %s", e.Code, e.Stderr)
}

// NoDiagnosticsError indicates the CLI exited non-zero but wrote nothing to
// stderr. The original tooling logged this case and carried on; it is kept
// as a distinct outcome so callers can decide, and Invoke still returns the
// captured stdout alongside it.
type NoDiagnosticsError struct {
	Code int
}

func (e *NoDiagnosticsError) Error() string {
	return fmt.Sprintf("agent CLI exited with code %d without diagnostics", e.Code)
}

// Invoker runs the agent CLI with a fixed binary, timeout, and permission
// policy taken from the config.
type Invoker struct {
	binary          string
	timeout         time.Duration
	skipPermissions bool
	logger          *zap.Logger
}

// NewInvoker builds an Invoker from the agent section of the config.
func NewInvoker(cfg *config.Config, logger *zap.Logger) *Invoker {
	return &Invoker{
		binary:          cfg.Agent.Binary,
		timeout:         cfg.AgentTimeout(),
		skipPermissions: cfg.Agent.SkipPermissions,
		logger:          logger,
	}
}

// Invoke runs the CLI with the prompt, blocking until it exits or the
// timeout elapses. The working directory is set to dir so files the agent
// writes land inside the experiment. On a NoDiagnosticsError the captured
// stdout is returned together with the error; on every other error the
// output is empty.
func (inv *Invoker) Invoke(ctx context.Context, promptText, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	args := []string{"--print", promptText, "--add-dir", dir}
	if inv.skipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}

	cmd := exec.CommandContext(ctx, inv.binary, args...)
	cmd.Dir = dir
	// Do not let orphaned grandchildren holding the output pipes block Wait
	// past the deadline.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	inv.logger.Debug("invoking agent CLI",
		zap.String("binary", inv.binary),
		zap.String("dir", dir),
		zap.Duration("timeout", inv.timeout),
		zap.Int("prompt_bytes", len(promptText)))

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &TimeoutError{Limit: inv.timeout}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("agent CLI execution canceled: %w", ctxErr)
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}

	if stderr.Len() == 0 {
		inv.logger.Warn("agent CLI exited non-zero without stderr output",
			zap.Int("code", code))
		return stdout.String(), &NoDiagnosticsError{Code: code}
	}

	return "", &ExitError{Code: code, Stderr: stderr.String()}
}
