// Package experiment sequences one generation-and-verification cycle:
// pick an idea, prompt the agent, land the result in a fresh day_<N>
// directory, and verify it by running run.sh.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"daylab/internal/agent"
	"daylab/internal/config"
	"daylab/internal/idea"
	"daylab/internal/prompt"
	"daylab/internal/vcs"
	"daylab/internal/verify"
)

// rawOutputFile is where the captured agent stdout is kept for debugging.
const rawOutputFile = "claude_output.txt"

// slugLimit bounds the idea-derived part of the directory name.
const slugLimit = 30

// ideaSource yields the next idea string.
type ideaSource interface {
	Next() string
}

// invoker runs the agent CLI.
type invoker interface {
	Invoke(ctx context.Context, promptText, dir string) (string, error)
}

// verifier classifies a finished experiment directory.
type verifier interface {
	Verify(ctx context.Context, dir string) verify.Result
}

// Report is the ephemeral record of one run. Nothing durable survives the
// process beyond the files left in the experiment directory.
type Report struct {
	RunID    string
	Day      int
	Idea     string
	Dir      string
	Attempts int
	Verified bool
	Message  string
}

// Orchestrator wires the idea source, prompt builder, agent invoker, and
// verifier into the retry loop.
type Orchestrator struct {
	cfg      *config.Config
	ideas    ideaSource
	agent    invoker
	verifier verifier
	commit   func(repoRoot, dir, message string) error
	logger   *zap.Logger
}

// New builds an Orchestrator with the real components.
func New(cfg *config.Config, logger *zap.Logger) *Orchestrator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Orchestrator{
		cfg:      cfg,
		ideas:    idea.NewSource(cfg.IdeaMode(), rng),
		agent:    agent.NewInvoker(cfg, logger),
		verifier: verify.New(cfg.GracePeriod(), logger),
		commit:   vcs.CommitDir,
		logger:   logger,
	}
}

// NextDayNumber scans root for directories named day_<N>_* and returns
// max(N)+1, or 1 when none exist. The scan-then-create scheme is not safe
// against two runners sharing one root; single-operator use is assumed.
func NextDayNumber(root string) int {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 1
	}

	max := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "day_") {
			continue
		}
		parts := strings.Split(e.Name(), "_")
		if len(parts) < 2 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// Slug derives a directory-name fragment from an idea: lowercase, spaces to
// underscores, truncated to slugLimit runes.
func Slug(ideaText string) string {
	s := strings.ReplaceAll(strings.ToLower(ideaText), " ", "_")
	runes := []rune(s)
	if len(runes) > slugLimit {
		runes = runes[:slugLimit]
	}
	return string(runes)
}

// Run executes one full cycle and returns its report. An error means a
// precondition failed before any attempt; a run that exhausted its attempts
// still returns a report with Verified=false.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	root := o.cfg.ExperimentsRoot
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create experiments root: %w", err)
	}

	report := &Report{
		RunID: uuid.NewString(),
		Day:   NextDayNumber(root),
		Idea:  o.ideas.Next(),
	}

	dirName := fmt.Sprintf("day_%d_%s", report.Day, Slug(report.Idea))
	report.Dir = filepath.Join(root, dirName)
	if err := os.Mkdir(report.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create experiment directory: %w", err)
	}

	logger := o.logger.With(
		zap.String("run_id", report.RunID),
		zap.Int("day", report.Day),
		zap.String("dir", report.Dir))
	logger.Info("starting experiment", zap.String("idea", report.Idea))

	level := o.cfg.ImplLevel()
	var retryContext string

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		report.Attempts = attempt

		var promptText string
		if attempt == 1 {
			promptText = prompt.Build(report.Idea, level)
		} else {
			promptText = prompt.Retry(retryContext, report.Idea, level)
		}

		logger.Info("invoking agent", zap.Int("attempt", attempt))
		output, err := o.agent.Invoke(ctx, promptText, report.Dir)
		if err != nil {
			var noDiag *agent.NoDiagnosticsError
			if errors.As(err, &noDiag) {
				// Ambiguous outcome: the CLI failed but said nothing.
				// Keep the stdout it produced and verify anyway.
				logger.Warn("agent exited without diagnostics, continuing",
					zap.Int("code", noDiag.Code))
			} else {
				logger.Error("agent invocation failed", zap.Error(err))
				retryContext = err.Error()
				report.Message = retryContext
				continue
			}
		}

		o.persistOutput(report.Dir, output, logger)

		if names, err := agent.ExtractFiles(output, report.Dir); err != nil {
			logger.Warn("failed to extract embedded files", zap.Error(err))
		} else if len(names) > 0 {
			logger.Info("extracted embedded files", zap.Strings("files", names))
		}

		logger.Info("experiment files", zap.Strings("files", listFiles(report.Dir)))

		res := o.verifier.Verify(ctx, report.Dir)
		report.Message = res.Message
		if res.Success {
			report.Verified = true
			logger.Info("experiment verified", zap.String("message", res.Message))
			break
		}

		logger.Warn("verification failed",
			zap.Int("attempt", attempt),
			zap.String("message", res.Message))
		retryContext = res.Message
	}

	if report.Verified && o.cfg.Commit {
		msg := fmt.Sprintf("Add day_%d experiment: %s", report.Day, report.Idea)
		if err := o.commit(".", report.Dir, msg); err != nil {
			// Commit failures never fail the run.
			logger.Warn("failed to commit experiment", zap.Error(err))
		} else {
			logger.Info("experiment committed", zap.String("message", msg))
		}
	}

	return report, nil
}

// persistOutput writes the raw agent stdout next to the generated files.
func (o *Orchestrator) persistOutput(dir, output string, logger *zap.Logger) {
	path := filepath.Join(dir, rawOutputFile)
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		logger.Warn("failed to save agent output", zap.Error(err))
	}
}

// listFiles returns the sorted top-level names in dir, for the log.
func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
