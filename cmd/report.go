// =============================================================================
// Order Consolidation - Report Command
// =============================================================================
//
// This file defines the 'report' command, which refreshes the store and
// renders the dashboard in the terminal.
//
// COMMAND USAGE:
//   consolidator report [flags]
//
// FLAGS:
//   --entity     : Show a single group or company
//   --period     : Show a single month (MM/YYYY)
//   --system     : Show a single source system
//   --top        : Leaders per month (default 3)
//   --store-only : Read the store without consolidating first
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/order-consolidation/internal/report"
	"github.com/ginjaninja78/order-consolidation/internal/store"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/view"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// defaultTop is the leaderboard size of the dashboard.
const defaultTop = 3

// filterFlags are the view filters shared by report and export.
type filterFlags struct {
	entity string
	period string
	system string
}

func (f *filterFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.entity, "entity", "", "Only this group or company")
	fs.StringVar(&f.period, "period", "", "Only this month, as MM/YYYY")
	fs.StringVar(&f.system, "system", "", "Only this source system")
}

func (f *filterFlags) filter() view.Filter {
	return view.Filter{Entity: f.entity, Period: f.period, System: f.system}
}

var (
	reportFilters filterFlags
	reportTop     int
	storeOnly     bool
)

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the order dashboard",
	Long: `The report command consolidates the sources (unless --store-only is given)
and renders the dashboard: distinct order totals, per-system monthly tiles,
the monthly leaderboard and the entity-by-month pivot.

The per-system totals ignore the --system filter so both systems stay
comparable; everything else honors every filter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := reportFilters.filter()
		if err := f.Validate(); err != nil {
			return err
		}

		records, err := loadRecords(cmd, storeOnly)
		if err != nil {
			return err
		}
		return renderDashboard(cmd, records, f, reportTop)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportFilters.bind(reportCmd.Flags())
	reportCmd.Flags().IntVar(&reportTop, "top", defaultTop, "Leaders per month (0 for all)")
	reportCmd.Flags().BoolVar(&storeOnly, "store-only", false, "Read the store without consolidating first")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadRecords returns the consolidated records, either by running a
// consolidation or by reading the store as it is.
func loadRecords(cmd *cobra.Command, fromStore bool) ([]types.OrderRecord, error) {
	if fromStore {
		snap := store.NewManager(cfg.Store).Load()
		for _, d := range snap.Diagnostics {
			logDiagnostic(d)
		}
		return snap.Records, nil
	}

	res, err := refresh(cmd.Context())
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// renderDashboard prints the dashboard for records under f.
func renderDashboard(cmd *cobra.Command, records []types.OrderRecord, f view.Filter, top int) error {
	d, err := report.Build(records, f, top)
	if err != nil {
		return fmt.Errorf("failed to build dashboard: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Render(d, report.NewStyles(cfg)))
	return nil
}

// logDiagnostic logs d at its level.
func logDiagnostic(d types.Diagnostic) {
	switch d.Level {
	case types.LevelError:
		logger.Errorf("%s: %s", d.Source, d.Message)
	case types.LevelWarn:
		logger.Warnf("%s: %s", d.Source, d.Message)
	default:
		logger.Infof("%s: %s", d.Source, d.Message)
	}
}
