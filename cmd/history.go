// =============================================================================
// Order Consolidation - History Command
// =============================================================================
//
// This file defines the 'history' command, which lists recorded runs.
//
// COMMAND USAGE:
//   consolidator history [--limit N]
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/ginjaninja78/order-consolidation/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd represents the 'history' command.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded consolidation runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.History.Path == "" {
			return errors.New("run history is disabled; set history.path in the configuration")
		}

		ledger, err := history.Open(cmd.Context(), cfg.History.Path)
		if err != nil {
			return err
		}
		defer ledger.Close()

		runs, err := ledger.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tRUN\tSTORE\tBASELINE\tAPPENDED\tTOTAL\tSAVED\tWARNINGS\tERROR")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%t\t%d\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.ID, r.StoreState, r.Baseline, r.Appended, r.Total, r.Persisted, r.Warnings, r.Error)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show (0 for all)")
}
