// Package testutil builds spreadsheet fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one sheet of a fixture workbook. An empty row leaves a gap.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook saves an xlsx file with the given sheets in order.
func WriteWorkbook(t testing.TB, path string, sheets ...Sheet) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}
		for r, row := range s.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(s.Name, cell, &values))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

// PrimaryWorkbook writes a primary-source workbook with the default sheet
// names and returns its path. rows are transaction rows without the header.
func PrimaryWorkbook(t testing.TB, dir string, rows [][]interface{}, lookup [][]interface{}) string {
	t.Helper()

	path := filepath.Join(dir, "base.xlsx")
	tx := append([][]interface{}{{"Data", "Pedido", "Cod Grupo", "Empresa", "Grupo"}}, rows...)
	sheets := []Sheet{{Name: "base", Rows: tx}}
	if lookup != nil {
		sheets = append(sheets, Sheet{
			Name: "GRUPOS",
			Rows: append([][]interface{}{{"Codigo", "Nome do Grupo"}}, lookup...),
		})
	}
	WriteWorkbook(t, path, sheets...)
	return path
}

// SecondaryWorkbook writes one period export with a title row, the default
// headers on row 2, and rows below. It returns the path.
func SecondaryWorkbook(t testing.TB, dir, name string, rows [][]interface{}) string {
	t.Helper()

	path := filepath.Join(dir, name)
	all := [][]interface{}{
		{"Relatorio de Solicitacoes"},
		{"Data Inclusao", "Numero da Solicitacao", "Empresa de Débito", "Cliente"},
	}
	WriteWorkbook(t, path, Sheet{Name: "Relatorio", Rows: append(all, rows...)})
	return path
}
