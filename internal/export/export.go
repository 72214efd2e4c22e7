// =============================================================================
// Order Consolidation - Spreadsheet Exports
// =============================================================================
//
// This module writes the two downloadable workbooks:
//   - the raw consolidated store (same layout as the store file)
//   - the styled pivot of the current dashboard selection
//
// PIVOT LAYOUT:
//
//   | Entity     | System  | 07/2025 | 08/2025 | Grand Total |   <- accent header
//   |------------|---------|---------|---------|-------------|
//   | Acme Group | Reserve |   1,204 |     980 |       2,184 |   <- white
//   | Beta SA    | ARGOIT  |      12 |       0 |          12 |   <- alternate row color
//   | Grand Total|         |   1,216 |     980 |       2,196 |   <- accent totals
//
//   Index cells, the header row, the total column and the total row use the
//   accent fill with white bold text. Counts use the #,##0 number format.
//
// =============================================================================

package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/ginjaninja78/order-consolidation/internal/store"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/view"
	"github.com/ginjaninja78/order-consolidation/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// numFmtThousands is the built-in "#,##0" number format.
const numFmtThousands = 3

// =============================================================================
// RAW EXPORT
// =============================================================================

// WriteRaw writes records as a single-sheet workbook in store layout.
func WriteRaw(w io.Writer, records []types.OrderRecord, sheet string) error {
	return store.WriteRecords(w, sheet, records)
}

// =============================================================================
// PIVOT EXPORT
// =============================================================================

// styles holds the style ids used by the pivot sheet.
type styles struct {
	header int
	total  int
	even   int
	odd    int
}

func newStyles(f *excelize.File, theme config.Theme) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}
	accentFont := &excelize.Font{Bold: true, Color: "#FFFFFF"}
	bodyFont := &excelize.Font{Color: "#000000"}

	defs := []*excelize.Style{
		{
			Font:      accentFont,
			Fill:      fill(theme.Accent),
			Border:    border,
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		},
		{Font: accentFont, Fill: fill(theme.Accent), Border: border, NumFmt: numFmtThousands},
		{Font: bodyFont, Fill: fill("#FFFFFF"), Border: border, NumFmt: numFmtThousands},
		{Font: bodyFont, Fill: fill(theme.AltRow), Border: border, NumFmt: numFmtThousands},
	}

	ids := make([]int, len(defs))
	for i, def := range defs {
		id, err := f.NewStyle(def)
		if err != nil {
			return styles{}, fmt.Errorf("failed to create pivot style: %w", err)
		}
		ids[i] = id
	}
	return styles{header: ids[0], total: ids[1], even: ids[2], odd: ids[3]}, nil
}

// WritePivot writes the styled pivot workbook.
//
// PARAMETERS:
//   - w: Destination of the xlsx bytes.
//   - pivot: The table to render, including its Grand Total row.
//   - theme: Supplies the accent and alternate row colors.
//   - sheet: Name of the only sheet.
func WritePivot(w io.Writer, pivot view.Pivot, theme config.Theme, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	st, err := newStyles(f, theme)
	if err != nil {
		return err
	}

	index := []string{"Entity"}
	if pivot.BySystem {
		index = append(index, "System")
	}
	nIndex := len(index)
	nCols := nIndex + len(pivot.Periods) + 1

	// Header row.
	header := make([]interface{}, 0, nCols)
	for _, name := range index {
		header = append(header, name)
	}
	for _, p := range pivot.Periods {
		header = append(header, p.Label())
	}
	header = append(header, view.GrandTotal)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write pivot header: %w", err)
	}
	if err := styleRange(f, sheet, 1, 1, nCols, 1, st.header); err != nil {
		return err
	}

	rows := append(append([]view.PivotRow{}, pivot.Rows...), pivot.Totals)
	for i, r := range rows {
		line := i + 2
		isTotal := i == len(rows)-1

		values := []interface{}{r.Entity}
		if pivot.BySystem {
			values = append(values, r.System)
		}
		for _, c := range r.Counts {
			values = append(values, c)
		}
		values = append(values, r.Total)

		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write pivot row %d: %w", line, err)
		}

		body := st.even
		if i%2 == 1 {
			body = st.odd
		}
		if isTotal {
			body = st.total
		}

		if err := styleRange(f, sheet, 1, line, nIndex, line, st.header); err != nil {
			return err
		}
		if len(pivot.Periods) > 0 {
			if err := styleRange(f, sheet, nIndex+1, line, nCols-1, line, body); err != nil {
				return err
			}
		}
		if err := styleRange(f, sheet, nCols, line, nCols, line, st.total); err != nil {
			return err
		}
	}

	first, _ := excelize.ColumnNumberToName(1)
	lastIndex, _ := excelize.ColumnNumberToName(nIndex)
	if err := f.SetColWidth(sheet, first, lastIndex, 32); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	firstValue, _ := excelize.ColumnNumberToName(nIndex + 1)
	lastValue, _ := excelize.ColumnNumberToName(nCols)
	if err := f.SetColWidth(sheet, firstValue, lastValue, 13); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return nil
}

func styleRange(f *excelize.File, sheet string, col1, row1, col2, row2, style int) error {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return fmt.Errorf("failed to style %s:%s: %w", from, to, err)
	}
	return nil
}

// =============================================================================
// FILES
// =============================================================================

// RawFileName names a raw export taken at t.
func RawFileName(t time.Time) string {
	return fmt.Sprintf("CONSOLIDATED_%s.xlsx", t.Format("20060102_150405"))
}

// PivotFileName names a pivot export for the given selection. Unset filter
// fields appear as ALL.
//
// EXAMPLE:
//   PivotFileName(view.Filter{Period: "07/2025"}) -> "PIVOT_ALL_072025_ALL.xlsx"
func PivotFileName(f view.Filter) string {
	tag := func(s string) string {
		if s == "" {
			return "ALL"
		}
		s = strings.ReplaceAll(s, "/", "")
		s = strings.ReplaceAll(s, " ", "_")
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(`\:*?"<>|`, r) {
				return -1
			}
			return r
		}, s)
	}
	return fmt.Sprintf("PIVOT_%s_%s_%s.xlsx", tag(f.Entity), tag(f.Period), tag(f.System))
}

// WriteFile writes an export to dir/name through an atomic replace and
// returns the full path.
func WriteFile(dir, name string, write func(io.Writer) error) (string, error) {
	path := filepath.Join(dir, name)
	if err := utils.WriteAtomic(path, write); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", name, err)
	}
	return path, nil
}
