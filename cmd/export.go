// =============================================================================
// Order Consolidation - Export Command
// =============================================================================
//
// This file defines the 'export' command, which writes the filtered orders
// and their pivot to .xlsx files.
//
// COMMAND USAGE:
//   consolidator export [flags]
//
// FLAGS:
//   --raw        : Write the filtered orders (CONSOLIDATED_<timestamp>.xlsx)
//   --pivot      : Write the pivot (PIVOT_<entity>_<period>_<system>.xlsx)
//   --out        : Output directory (default export.dir)
//   --entity, --period, --system : Same filters as 'report'
//   --store-only : Read the store without consolidating first
//
// With neither --raw nor --pivot both files are written.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/export"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/view"
	"github.com/spf13/cobra"
)

var (
	exportFilters   filterFlags
	exportRaw       bool
	exportPivot     bool
	exportDir       string
	exportStoreOnly bool
)

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered orders and their pivot to .xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := exportFilters.filter()
		if err := f.Validate(); err != nil {
			return err
		}

		records, err := loadRecords(cmd, exportStoreOnly)
		if err != nil {
			return err
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.Export.Dir
		}
		raw, pivot := exportRaw, exportPivot
		if !raw && !pivot {
			raw, pivot = true, true
		}

		written, err := writeExports(records, f, dir, raw, pivot, time.Now())
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s\n", path)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportFilters.bind(exportCmd.Flags())
	exportCmd.Flags().BoolVar(&exportRaw, "raw", false, "Write the filtered orders")
	exportCmd.Flags().BoolVar(&exportPivot, "pivot", false, "Write the pivot table")
	exportCmd.Flags().StringVar(&exportDir, "out", "", "Output directory (default export.dir)")
	exportCmd.Flags().BoolVar(&exportStoreOnly, "store-only", false, "Read the store without consolidating first")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeExports writes the requested files and returns their paths.
//
// PARAMETERS:
//   - records: The consolidated store.
//   - f: The selection. The pivot is split by system unless f.System is set.
//   - now: Timestamp of the raw export name.
func writeExports(records []types.OrderRecord, f view.Filter, dir string, raw, pivot bool, now time.Time) ([]string, error) {
	var written []string

	if raw {
		selected := filterRecords(records, f)
		path, err := export.WriteFile(dir, export.RawFileName(now), func(w io.Writer) error {
			return export.WriteRaw(w, selected, cfg.Export.RawSheet)
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if pivot {
		p := view.BuildPivot(view.Apply(view.Build(records), f), f.System == "")
		path, err := export.WriteFile(dir, export.PivotFileName(f), func(w io.Writer) error {
			return export.WritePivot(w, p, cfg.Theme, cfg.Export.PivotSheet)
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// filterRecords keeps the records whose view row matches f.
func filterRecords(records []types.OrderRecord, f view.Filter) []types.OrderRecord {
	if f.IsZero() {
		return records
	}
	rows := view.Build(records)
	out := make([]types.OrderRecord, 0, len(records))
	for i, r := range rows {
		if f.Matches(r) {
			out = append(out, records[i])
		}
	}
	return out
}
