// Package cmd provides the CLI commands for peopledex.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/peopledex/peopledex/internal/logging"
	"github.com/peopledex/peopledex/pkg/version"
)

var (
	vaultFlag   string
	debugMode   bool
	noColorFlag bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the peopledex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peopledex",
		Short: "People registry and mention tracking over a markdown vault",
		Long: `Peopledex maintains a registry of people parsed from definition
documents in a markdown vault, answers name searches against in-memory
indexes, and tracks how often each person is mentioned across the corpus.

Run it inside a vault directory, or point it at one with --vault.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("peopledex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault directory (default: current directory)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.peopledex/logs/")
	cmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable styled output")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newMentionsCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging initializes file logging for the invocation.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.WriteToStderr = false
	if debugMode {
		cfg = logging.DebugConfig()
		cfg.WriteToStderr = false
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)

	if debugMode {
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Short()))
	}
	return nil
}

// stopLogging flushes and closes the log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
