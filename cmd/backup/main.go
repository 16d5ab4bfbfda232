// backup copies configured source directories into timestamped snapshots
// under a destination directory.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"daylab/internal/backup"
)

var (
	configPath string
	sourcePath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "backup",
	Short:        "Automated directory backup tool",
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
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up all configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := newTool()
		if err != nil {
			return err
		}
		stats, err := tool.BackupAll()
		for _, s := range stats {
			if s.Destination == "" {
				fmt.Printf("✗ %s\n", s.Source)
				continue
			}
			fmt.Printf("✓ %s → %s (%d/%d files)\n", s.Source, s.Destination, s.Copied, s.Processed)
		}
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List existing backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := newTool()
		if err != nil {
			return err
		}
		snapshots, err := tool.List()
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("No backups found")
			return nil
		}
		fmt.Println("Existing backups:")
		for _, s := range snapshots {
			fmt.Printf("  %s - %.1fMB - %s\n", s.Name, s.SizeMB, s.ModTime.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var addSourceCmd = &cobra.Command{
	Use:   "add-source",
	Short: "Add a directory to the backup sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sourcePath == "" {
			return fmt.Errorf("--path required for add-source command")
		}
		tool, err := newTool()
		if err != nil {
			return err
		}
		added, err := tool.AddSource(sourcePath)
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("Added backup source: %s\n", sourcePath)
		} else {
			fmt.Printf("Source already exists: %s\n", sourcePath)
		}
		return nil
	},
}

var removeSourceCmd = &cobra.Command{
	Use:   "remove-source",
	Short: "Remove a directory from the backup sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sourcePath == "" {
			return fmt.Errorf("--path required for remove-source command")
		}
		tool, err := newTool()
		if err != nil {
			return err
		}
		removed, err := tool.RemoveSource(sourcePath)
		if err != nil {
			return err
		}
		if removed {
			fmt.Printf("Removed backup source: %s\n", sourcePath)
		} else {
			fmt.Printf("Source not found: %s\n", sourcePath)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := newTool()
		if err != nil {
			return err
		}
		fmt.Printf("Configuration file: %s\n", tool.ConfigPath())
		data, err := json.MarshalIndent(tool.Config(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func newTool() (*backup.Tool, error) {
	return backup.NewTool(configPath, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", backup.DefaultConfigFile, "path to the JSON config file")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "path", "", "path for add-source/remove-source commands")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(backupCmd, listCmd, addSourceCmd, removeSourceCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
