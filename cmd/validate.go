// =============================================================================
// Order Consolidation - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and probes every source and the store without writing anything.
//
// COMMAND USAGE:
//   consolidator validate
//
// OUTPUT:
//   Informational lines, the numbered list of problems, then a count of
//   readable rows per source.
//   The command fails when the configuration is invalid or when no source
//   and no store could be read.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/order-consolidation/internal/pipeline"
	"github.com/ginjaninja78/order-consolidation/internal/sources"
	"github.com/ginjaninja78/order-consolidation/internal/store"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/validation"
	"github.com/spf13/cobra"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and probe the sources without writing",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The configuration was validated when it was loaded.
		out := cmd.OutOrStdout()
		var diags []types.Diagnostic

		snap := store.NewManager(cfg.Store).Load()
		diags = append(diags, snap.Diagnostics...)

		primary, d := sources.ReadPrimary(cfg.Sources.Primary)
		diags = append(diags, d...)

		secondary, d := sources.ReadSecondary(cfg.Sources.Secondary)
		diags = append(diags, d...)

		var problems []error
		for _, diag := range diags {
			if diag.Level == types.LevelInfo {
				fmt.Fprintf(out, "  %s\n", diag)
				continue
			}
			problems = append(problems, errors.New(diag.String()))
		}
		fmt.Fprintf(out, "\n%s\n", validation.FormatErrors(problems))

		secondaryRows := 0
		for _, b := range secondary {
			secondaryRows += len(b.Rows)
		}

		fmt.Fprintln(out, "=== Validation Complete ===")
		fmt.Fprintf(out, "Store:           %s (%d records)\n", snap.State, snap.Baseline())
		fmt.Fprintf(out, "%-17s%d rows, %d group codes\n", cfg.Sources.Primary.System+":", len(primary.Rows), len(primary.Lookup))
		fmt.Fprintf(out, "%-17s%d rows in %d of %d files\n", cfg.Sources.Secondary.System+":", secondaryRows, len(secondary), len(cfg.Sources.Secondary.Files))

		if snap.Baseline() == 0 && len(primary.Rows) == 0 && secondaryRows == 0 {
			return pipeline.ErrNothingLoaded
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
