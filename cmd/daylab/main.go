// daylab runs one experiment-generation cycle: it picks an idea, drives
// the agent CLI to build it in a fresh day_<N> directory, and verifies the
// result by running its run.sh.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"daylab/internal/config"
	"daylab/internal/experiment"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Run flags
	mode            string
	level           string
	experimentsRoot string
	timeoutSec      int
	commit          bool
	skipPermissions bool

	// Logger
	logger *zap.Logger
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

var rootCmd = &cobra.Command{
	Use:   "daylab",
	Short: "Generate and verify one toy experiment with the agent CLI",
	Long: `daylab runs one experiment cycle:

  1. Pick an idea (curated list or AI placeholder)
  2. Prompt the agent CLI to build it in experiments/day_<N>_<slug>
  3. Run the generated run.sh and classify the outcome
  4. Retry once with error context, then optionally git-commit

Configuration comes from defaults, an optional YAML file, an optional
.env file, and RUNNER_* environment variables; flags override all of it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg = zap.NewDevelopmentConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCycle,
}

var showCmd = &cobra.Command{
	Use:   "show [experiment-dir]",
	Short: "Render an experiment's README in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		readme := filepath.Join(args[0], "README.md")
		data, err := os.ReadFile(readme)
		if err != nil {
			return fmt.Errorf("no README.md in %s", args[0])
		}
		out, err := glamour.Render(string(data), "auto")
		if err != nil {
			return fmt.Errorf("failed to render README: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	rootCmd.Flags().StringVar(&mode, "mode", "", "idea mode (random|structured|ai|structured_ai)")
	rootCmd.Flags().StringVar(&level, "level", "", "implementation level (simple_test|mvp|full_scenario)")
	rootCmd.Flags().StringVar(&experimentsRoot, "experiments-root", "", "directory holding day_<N> experiments")
	rootCmd.Flags().IntVar(&timeoutSec, "timeout", 0, "agent CLI timeout in seconds")
	rootCmd.Flags().BoolVar(&commit, "commit", false, "git-commit the experiment on success")
	rootCmd.Flags().BoolVar(&skipPermissions, "skip-permissions", false, "pass --dangerously-skip-permissions to the agent CLI")

	rootCmd.AddCommand(showCmd)
}

func runCycle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := experiment.New(cfg, logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Experiment: %s\n", report.Dir)
	fmt.Printf("Idea: %s\n", report.Idea)
	if report.Verified {
		fmt.Println(okStyle.Render("✓ Experiment verified: ") + report.Message)
	} else {
		fmt.Println(failStyle.Render("✗ Verification failed: ") + report.Message)
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("attempts: %d  run: %s", report.Attempts, report.RunID)))
	return nil
}

// loadConfig builds the run configuration, applying flags on top of the
// file/env layers when they were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("level") {
		cfg.Level = level
	}
	if flags.Changed("experiments-root") {
		cfg.ExperimentsRoot = experimentsRoot
	}
	if flags.Changed("timeout") {
		cfg.Agent.Timeout = timeoutSec
	}
	if flags.Changed("commit") {
		cfg.Commit = commit
	}
	if flags.Changed("skip-permissions") {
		cfg.Agent.SkipPermissions = skipPermissions
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
