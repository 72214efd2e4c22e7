package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/order-consolidation/internal/pipeline"
	"github.com/ginjaninja78/order-consolidation/internal/testutil"
	"github.com/ginjaninja78/order-consolidation/internal/view"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup writes a primary workbook, one period file and a config pointing
// at them, and returns the config path.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	primary := testutil.PrimaryWorkbook(t, dir,
		[][]interface{}{
			{45853, 100, 7, "ACME LTDA", ""},
			{45854, 101, 99, "Beta SA", ""},
		},
		[][]interface{}{{7, "Acme Group"}},
	)
	july := testutil.SecondaryWorkbook(t, dir, "ARGO-JULHO-25.xlsx", [][]interface{}{
		{"20/07/2025", 100, "Other Co", "Other Group"},
		{"21/07/2025", 500, "Delta", "Delta Group"},
	})

	body := fmt.Sprintf(`
sources:
  primary:
    path: %q
  secondary:
    files:
      - period: "07/2025"
        path: %q
store:
  path: base_consolidada.xlsx
history:
  path: state/history.db
export:
  dir: exports
logging:
  level: error
`, primary, july)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestConsolidateAndHistory(t *testing.T) {
	cfgPath := setup(t)
	dir := filepath.Dir(cfgPath)

	out, err := execute(t, "consolidate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Consolidation Complete ===")
	assert.Contains(t, out, "NO_STORE")
	assert.Contains(t, out, "Appended:        3")
	assert.Contains(t, out, "Persisted:       true")
	assert.FileExists(t, filepath.Join(dir, "base_consolidada.xlsx"))

	out, err = execute(t, "consolidate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "LOADED")
	assert.Contains(t, out, "Appended:        0")
	assert.Contains(t, out, "Persisted:       false")

	out, err = execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STARTED")
	assert.Contains(t, lines[1], "LOADED")
	assert.Contains(t, lines[2], "NO_STORE")

	out, err = execute(t, "history", "--config", cfgPath, "--limit", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestConsolidateFailureSummary(t *testing.T) {
	dir := t.TempDir()
	body := fmt.Sprintf(`
sources:
  primary:
    path: %q
  secondary:
    files:
      - period: "07/2025"
        path: %q
store:
  path: base_consolidada.xlsx
logging:
  level: error
`, filepath.Join(dir, "base.xlsx"), filepath.Join(dir, "ARGO-JULHO-25.xlsx"))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))

	out, err := execute(t, "consolidate", "--config", cfgPath)
	require.ErrorIs(t, err, pipeline.ErrNothingLoaded)
	assert.Contains(t, out, "=== Consolidation Failed ===")
	assert.NotContains(t, out, "=== Consolidation Complete ===")
	assert.Contains(t, out, "Persisted:       false")
}

func TestReport(t *testing.T) {
	cfgPath := setup(t)

	out, err := execute(t, "report", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Distinct orders")
	assert.Contains(t, out, "Acme Group")
	assert.Contains(t, out, "Grand Total")

	out, err = execute(t, "report", "--config", cfgPath, "--store-only", "--system", "ARGOIT")
	require.NoError(t, err)
	assert.Contains(t, out, "Orders per month: ARGOIT")
	assert.NotContains(t, out, "Orders per month: Reserve")

	_, err = execute(t, "report", "--config", cfgPath, "--period", "July")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	cfgPath := setup(t)
	out := filepath.Join(t.TempDir(), "exports")

	_, err := execute(t, "export", "--config", cfgPath, "--out", out)
	require.NoError(t, err)

	raw, err := filepath.Glob(filepath.Join(out, "CONSOLIDATED_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, raw, 1)
	assert.FileExists(t, filepath.Join(out, "PIVOT_ALL_ALL_ALL.xlsx"))

	_, err = execute(t, "export", "--config", cfgPath, "--out", out, "--pivot", "--store-only", "--period", "07/2025", "--system", "Reserve")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "PIVOT_ALL_072025_Reserve.xlsx"))
}

func TestValidate(t *testing.T) {
	cfgPath := setup(t)

	out, err := execute(t, "validate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Validation Complete ===")
	assert.Contains(t, out, "No validation errors.")
	assert.Contains(t, out, "NO_STORE")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(cfgPath), "base_consolidada.xlsx"))
}

func TestExplicitMissingConfigFails(t *testing.T) {
	_, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Order Consolidation")
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, "Revision:")
}

func TestReadBuildInfo(t *testing.T) {
	prev := Version
	t.Cleanup(func() { Version = prev })

	Version = "1.2.0"
	assert.Equal(t, "1.2.0", readBuildInfo().Version)

	Version = ""
	info := readBuildInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Revision)
}

func TestFilterRecords(t *testing.T) {
	cfgPath := setup(t)
	_, err := execute(t, "consolidate", "--config", cfgPath)
	require.NoError(t, err)

	records, err := loadRecords(rootCmd, true)
	require.NoError(t, err)
	require.Len(t, records, 3)

	reserve := filterRecords(records, view.Filter{System: "Reserve"})
	assert.Len(t, reserve, 2)
	assert.Len(t, filterRecords(records, view.Filter{}), 3)
}
