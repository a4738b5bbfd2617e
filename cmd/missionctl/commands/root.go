package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	storePath  string
	verbose    bool
	noStore    bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "missionctl",
		Short: "OpenMission - Hierarchical Mission Behavior Engine",
		Long: `OpenMission executes robot mission behaviors built as hierarchical state
machines: atomic leaf behaviors composed into transition-table composites,
with cooperative preemption, live progress and an operator report trail.

Features:
  - Factory-registered behavior types constructed from YAML mission files
  - Deterministic composite transitions over success/preemption/failure
  - Cooperative preemption down the behavior tree (Ctrl+C during a run)
  - Settings save/load round trip for mission editing
  - SQLite-backed run history and report audit trail`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "run history database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "disable run persistence")

	// Add subcommands
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newTypesCommand())
	rootCmd.AddCommand(newRunsCommand())
	rootCmd.AddCommand(newReportsCommand())
	rootCmd.AddCommand(newSettingsCommand())

	return rootCmd
}
