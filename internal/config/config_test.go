package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Reserve", cfg.Sources.Primary.System)
	assert.Equal(t, "ARGOIT", cfg.Sources.Secondary.System)
	assert.Equal(t, 2, cfg.Sources.Secondary.HeaderRow)
	assert.Equal(t, 1, cfg.Sources.Primary.SkipRows)
	assert.Equal(t, []string{"Data Inclusao", "Numero da Solicitacao", "Empresa de Débito", "Cliente"}, cfg.Sources.Secondary.Headers())
	assert.True(t, cfg.Store.KeepCorruptBackup())
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	path := writeConfig(t, `
sources:
  primary:
    path: data/base.xlsx
  secondary:
    files:
      - period: "07/2025"
        path: ARGO-JULHO-25.xlsx
      - period: "08/2025"
        path: /abs/ARGO-AGOSTO-25.xlsx
store:
  path: out/store.xlsx
history:
  path: runs.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "data", "base.xlsx"), cfg.Sources.Primary.Path)
	assert.Equal(t, filepath.Join(dir, "ARGO-JULHO-25.xlsx"), cfg.Sources.Secondary.Files[0].Path)
	assert.Equal(t, "/abs/ARGO-AGOSTO-25.xlsx", cfg.Sources.Secondary.Files[1].Path)
	assert.Equal(t, filepath.Join(dir, "out", "store.xlsx"), cfg.Store.Path)
	assert.Equal(t, filepath.Join(dir, "runs.db"), cfg.History.Path)

	// File order is preserved.
	assert.Equal(t, "07/2025", cfg.Sources.Secondary.Files[0].Period)
	assert.Equal(t, "08/2025", cfg.Sources.Secondary.Files[1].Period)
}

func TestLoadRejectsBadMapping(t *testing.T) {
	path := writeConfig(t, `
sources:
  secondary:
    columns:
      - header: Data
        field: date
      - header: Pedido
        field: order_id
      - header: Pedido
        field: company
      - header: Cliente
        field: nonsense
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `header "Pedido" mapped twice`)
	assert.Contains(t, err.Error(), `unknown field "nonsense"`)
}

func TestValidateReportsMissingRequiredField(t *testing.T) {
	cfg := Default()
	cfg.Sources.Secondary.Columns = []ColumnMapping{
		{Header: "Data", Field: types.FieldDate},
		{Header: "Empresa", Field: types.FieldCompany},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required field "order_id" is not mapped`)
}

func TestValidatePeriods(t *testing.T) {
	cfg := Default()
	cfg.Sources.Secondary.Files = []PeriodFile{
		{Period: "2025-07", Path: "a.xlsx"},
		{Period: "08/2025", Path: "b.xlsx"},
		{Period: "08/2025", Path: "c.xlsx"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `period "2025-07" is not MM/YYYY`)
	assert.Contains(t, err.Error(), `period "08/2025" listed twice`)
}

func TestValidateStoreExtension(t *testing.T) {
	cfg := Default()
	cfg.Store.Path = "store.csv"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an .xlsx file")
}

func TestValidateSystemNamesDistinct(t *testing.T) {
	cfg := Default()
	cfg.Sources.Secondary.System = cfg.Sources.Primary.System
	require.Error(t, cfg.Validate())
}

func TestInputPathsOrder(t *testing.T) {
	cfg := Default()
	cfg.Sources.Secondary.Files = []PeriodFile{{Period: "07/2025", Path: "a.xlsx"}}
	assert.Equal(t, []string{"base_consolidada.xlsx", "base.xlsx", "a.xlsx"}, cfg.InputPaths())
}
