// =============================================================================
// Order Consolidation - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (consolidator)
//   ├── consolidateCmd (consolidator consolidate)
//   ├── reportCmd      (consolidator report)
//   ├── exportCmd      (consolidator export)
//   ├── watchCmd       (consolidator watch)
//   ├── historyCmd     (consolidator history)
//   ├── validateCmd    (consolidator validate)
//   └── versionCmd     (consolidator version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration once, before any subcommand runs
//   3. Building the zap logger from the logging section
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging regardless of logging.level.
var verbose bool

// cfg is the loaded configuration, set in PersistentPreRunE.
var cfg *config.Config

// logger is the process logger, set in PersistentPreRunE.
var logger *zap.SugaredLogger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "consolidator",
	Short: "Order Consolidation - merge order exports into one deduplicated store",

	Long: `Order Consolidation reads order exports from two source systems, normalizes
them into one schema and appends every order not seen before to a
consolidated workbook. The store only ever grows; running twice on the same
inputs leaves it byte-identical.

Key Features:
  - Primary source: one workbook with a transaction sheet and a group lookup
  - Secondary source: one workbook or CSV export per reporting period
  - First-seen-wins deduplication on order id
  - Terminal dashboard with monthly tiles, leaderboard and pivot
  - Raw and pivot exports to .xlsx
  - Run history in a local SQLite ledger

Example Usage:
  consolidator consolidate                  # Refresh the store
  consolidator report --period 08/2025      # Show the dashboard for a month
  consolidator export --pivot               # Write the pivot workbook
  consolidator watch                        # Refresh whenever a source changes`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipSetup(cmd) {
			return nil
		}

		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg.Logging, verbose)
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

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (built-in defaults when the default file is absent)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// skipSetup reports whether cmd runs without configuration.
func skipSetup(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "version" || cmd.Name() == "help"
}

// loadConfig loads cfgFile. When the flag was not given and the default file
// does not exist, the built-in defaults are used.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return c, nil
}

// newLogger builds the zap logger from the logging section.
//
// PARAMETERS:
//   - lc: The logging configuration. Level and encoding were validated on load.
//   - debug: Forces the debug level.
func newLogger(lc config.LoggingConfig, debug bool) (*zap.SugaredLogger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = lc.Encoding
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	if lc.Encoding == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.DisableCaller = true
	}

	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
