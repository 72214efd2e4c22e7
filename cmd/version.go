// =============================================================================
// Order Consolidation - Version Command
// =============================================================================
//
// This file defines the 'version' command. It prints the release version and
// the VCS revision the binary was built from.
//
// COMMAND USAGE:
//   consolidator version
//
// VERSION SOURCES:
//   Version is stamped with ldflags by release builds:
//     go build -ldflags "-X 'github.com/ginjaninja78/order-consolidation/cmd.Version=1.2.0'"
//   Without it, the module version and the vcs.* settings embedded by the Go
//   toolchain are used.
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is the release version. Set at build time using ldflags.
var Version = ""

// buildInfo is what the version command reports.
type buildInfo struct {
	Version  string
	Revision string
	Time     string
	Modified bool
}

// readBuildInfo merges the stamped Version with the embedded build settings.
func readBuildInfo() buildInfo {
	info := buildInfo{Version: Version, Revision: "unknown", Time: "unknown"}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		if info.Version == "" {
			info.Version = "dev"
		}
		return info
	}

	if info.Version == "" {
		info.Version = bi.Main.Version
	}
	if info.Version == "" || info.Version == "(devel)" {
		info.Version = "dev"
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.Time = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		info := readBuildInfo()
		out := cmd.OutOrStdout()

		revision := info.Revision
		if info.Modified {
			revision += " (modified)"
		}

		fmt.Fprintln(out, "Order Consolidation")
		fmt.Fprintf(out, "Version:    %s\n", info.Version)
		fmt.Fprintf(out, "Revision:   %s\n", revision)
		fmt.Fprintf(out, "Built:      %s\n", info.Time)
		fmt.Fprintf(out, "Go Version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
