// =============================================================================
// Order Consolidation - Watch Command
// =============================================================================
//
// This file defines the 'watch' command, which consolidates once and again
// every time a source file settles after a change.
//
// COMMAND USAGE:
//   consolidator watch [flags]
//
// FLAGS:
//   --debounce : Quiet time before a change triggers a run (default 2s)
//   --report   : Render the dashboard after every run
//
// A run is skipped when the size and modification time of every input,
// store included, match the state after the previous run.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/cache"
	"github.com/ginjaninja78/order-consolidation/internal/pipeline"
	"github.com/ginjaninja78/order-consolidation/internal/view"
	"github.com/ginjaninja78/order-consolidation/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchDebounce time.Duration
	watchReport   bool
)

// watchCmd represents the 'watch' command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Consolidate whenever a source file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var last cache.Cache[*pipeline.Result]
		run := func(ctx context.Context) {
			if fp, err := cache.Fingerprint(cfg.InputPaths()); err == nil {
				if _, ok := last.Get(fp); ok {
					logger.Debugf("inputs unchanged since the last run, skipping")
					return
				}
			}

			res, err := refresh(ctx)
			if res != nil {
				printSummary(cmd, res, err)
			}
			if err != nil {
				logger.Errorf("run failed: %v", err)
				last.Invalidate()
				return
			}
			if watchReport {
				if err := renderDashboard(cmd, res.Records, view.Filter{}, defaultTop); err != nil {
					logger.Errorf("%v", err)
				}
			}

			// Taken after the run so our own store write is part of it.
			fp, err := cache.Fingerprint(cfg.InputPaths())
			if err != nil {
				logger.Warnf("failed to fingerprint inputs: %v", err)
				return
			}
			last.Put(fp, res)
		}

		run(ctx)

		w, err := watch.New(sourcePaths(), watchDebounce, func(ctx context.Context, changed []string) {
			logger.Infof("changed: %s", strings.Join(changed, ", "))
			run(ctx)
		}, logger)
		if err != nil {
			return err
		}
		return w.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet time before a change triggers a run")
	watchCmd.Flags().BoolVar(&watchReport, "report", false, "Render the dashboard after every run")
}

// sourcePaths lists the primary workbook and every period file.
func sourcePaths() []string {
	paths := []string{cfg.Sources.Primary.Path}
	for _, f := range cfg.Sources.Secondary.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
