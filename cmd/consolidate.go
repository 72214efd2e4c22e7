// =============================================================================
// Order Consolidation - Consolidate Command
// =============================================================================
//
// This file defines the 'consolidate' command, which runs one consolidation
// and prints what changed.
//
// COMMAND USAGE:
//   consolidator consolidate [flags]
//
// FLAGS:
//   --report : Render the dashboard after the run
//
// PROCESSING PIPELINE:
//   1. Load the store and both sources (see internal/pipeline)
//   2. Append unseen orders and persist the store when it grew
//   3. Record the run in the history ledger, when one is configured
//   4. Print the summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/order-consolidation/internal/history"
	"github.com/ginjaninja78/order-consolidation/internal/pipeline"
	"github.com/ginjaninja78/order-consolidation/internal/view"
	"github.com/spf13/cobra"
)

// showReport renders the dashboard after consolidating.
var showReport bool

// consolidateCmd represents the 'consolidate' command.
var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge the source exports into the consolidated store",
	Long: `The consolidate command reads every configured source, normalizes the rows
and appends orders whose id is not yet in the consolidated store.

Source problems (a missing period file, a renamed header) are reported as
warnings and never stop the run. The command fails only when nothing could
be loaded at all or when the store could not be written; in the latter case
the previous store is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := refresh(cmd.Context())
		if res != nil {
			printSummary(cmd, res, err)
		}
		if err != nil {
			return err
		}

		if showReport {
			return renderDashboard(cmd, res.Records, view.Filter{}, defaultTop)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consolidateCmd)

	consolidateCmd.Flags().BoolVar(
		&showReport,
		"report",
		false,
		"Render the dashboard after the run",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// refresh runs one consolidation and records it in the run history.
// The result is non-nil even when the run failed.
func refresh(ctx context.Context) (*pipeline.Result, error) {
	res, runErr := pipeline.New(cfg, logger).Run()

	if err := recordRun(ctx, res, runErr); err != nil {
		logger.Warnf("failed to record run %s: %v", res.RunID, err)
	}
	return res, runErr
}

// recordRun appends the run to the history ledger. It is a no-op when no
// ledger is configured.
func recordRun(ctx context.Context, res *pipeline.Result, runErr error) error {
	if cfg.History.Path == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ledger, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	return ledger.Record(ctx, history.FromResult(res, runErr))
}

// printSummary prints the counts of a run. runErr is the error the run
// returned, if any.
func printSummary(cmd *cobra.Command, res *pipeline.Result, runErr error) {
	out := cmd.OutOrStdout()
	s := res.Stats

	if runErr != nil {
		fmt.Fprintln(out, "=== Consolidation Failed ===")
		fmt.Fprintf(out, "Error:           %v\n", runErr)
	} else {
		fmt.Fprintln(out, "=== Consolidation Complete ===")
	}
	fmt.Fprintf(out, "Run:             %s\n", res.RunID)
	fmt.Fprintf(out, "Store:           %s (%s)\n", cfg.Store.Path, s.StoreState)
	fmt.Fprintf(out, "%-17s%d rows\n", cfg.Sources.Primary.System+":", s.PrimaryRows)
	fmt.Fprintf(out, "%-17s%d rows\n", cfg.Sources.Secondary.System+":", s.SecondaryRows)
	fmt.Fprintf(out, "Dropped:         %d rows\n", s.DroppedRows)
	fmt.Fprintf(out, "Baseline:        %d\n", s.Baseline)
	fmt.Fprintf(out, "Appended:        %d\n", s.Appended)
	fmt.Fprintf(out, "Total:           %d\n", s.Total)
	fmt.Fprintf(out, "Persisted:       %t\n", s.Persisted)
	if s.Backup != "" {
		fmt.Fprintf(out, "Backup:          %s\n", s.Backup)
	}
	fmt.Fprintf(out, "Warnings:        %d\n", res.Warnings())
	fmt.Fprintf(out, "Time elapsed:    %s\n", res.Duration)
}
