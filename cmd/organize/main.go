// organize sorts the files in a directory into category folders by type,
// date, or custom rules, and can undo its last operation.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"daylab/internal/organize"
)

var (
	byType     bool
	byDate     bool
	customPath string
	recursive  bool
	dryRun     bool
	undo       bool
	watch      bool
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "organize [directory]",
	Short: "Organize files in a directory by type, date, or custom rules",
	Long: `Organize files into category folders. By default files are grouped by
type (Documents, Images, Code, ...); -d groups by modification month and
-c applies custom JSON rules. Every run writes an undo log that -u replays.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		if verbose {
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
	RunE: run,
}

func init() {
	rootCmd.Flags().BoolVarP(&byType, "type", "t", false, "organize by file type (default)")
	rootCmd.Flags().BoolVarP(&byDate, "date", "d", false, "organize by modification date")
	rootCmd.Flags().StringVarP(&customPath, "custom", "c", "", "use custom rules from a JSON config file")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include subdirectories")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "preview changes without moving files")
	rootCmd.Flags().BoolVarP(&undo, "undo", "u", false, "undo the last organization")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "keep running and organize new files as they appear")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory %q does not exist", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	if !dryRun {
		if err := checkWritable(dir); err != nil {
			return fmt.Errorf("no write permission for directory %q", dir)
		}
	}
	if customPath != "" {
		if _, err := os.Stat(customPath); err != nil {
			return fmt.Errorf("configuration file %q not found", customPath)
		}
	}

	o, err := organize.New(dir, dryRun, logger)
	if err != nil {
		return err
	}

	switch {
	case undo:
		restored, err := o.Undo()
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d files.\n", restored)
		return nil

	case watch:
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := o.Watch(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		fmt.Println("\nWatch stopped.")
		return nil

	case customPath != "":
		return report(o.ByRules(customPath, recursive))

	case byDate:
		return report(o.ByDate(recursive))

	default:
		return report(o.ByType(recursive))
	}
}

func report(moves []organize.Move, err error) error {
	if err != nil {
		return err
	}
	if len(moves) == 0 {
		fmt.Println("No files to organize.")
		return nil
	}
	if dryRun {
		fmt.Printf("Would organize %d files (dry run).\n", len(moves))
	} else {
		fmt.Printf("Organized %d files successfully.\n", len(moves))
	}
	return nil
}

// checkWritable probes dir for write access.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".organize_probe_*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
