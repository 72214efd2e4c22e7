// =============================================================================
// Order Consolidation - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Order Consolidation CLI. It hands
// control to the Cobra commands in the cmd package.
//
// USAGE:
//   consolidator consolidate - Merge the source exports into the store
//   consolidator report      - Render the dashboard
//   consolidator export      - Write raw and pivot workbooks
//   consolidator watch       - Consolidate whenever a source changes
//   consolidator history     - List recorded runs
//   consolidator validate    - Probe configuration and sources
//   consolidator version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Readers, normalization, store, views and exports
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/order-consolidation/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
