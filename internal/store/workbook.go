// =============================================================================
// Order Consolidation - Store Workbook Codec
// =============================================================================
//
// Reads and renders the Consolidated Store workbook.
//
// LAYOUT (single sheet, one row per order):
//
//   | date       | order_id | company   | group_name | source_system |
//   |------------|----------|-----------|------------|---------------|
//   | 15/07/2025 | 100      | ACME LTDA | Acme Group | Reserve       |
//
//   - date cells are real spreadsheet dates styled dd/mm/yyyy
//   - order_id cells are always text, so "0123" keeps its leading zero
//
// =============================================================================

package store

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/order-consolidation/internal/normalize"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/validation"
	"github.com/xuri/excelize/v2"
)

// DateFormat is the number format applied to date cells.
const DateFormat = "dd/mm/yyyy"

// CorruptError describes why an existing store could not be used.
type CorruptError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	return fmt.Sprintf("store %s is unreadable: %s", e.Path, e.Reason)
}

func headers() []string {
	out := make([]string, len(types.StoreFields))
	for i, f := range types.StoreFields {
		out[i] = string(f)
	}
	return out
}

// =============================================================================
// READING
// =============================================================================

// readStore parses the store workbook. A file that cannot be opened or lacks
// a store column is unusable. Rows that cannot be turned back into a record
// are skipped and described in skipped.
func readStore(path, sheet string) (records []types.OrderRecord, skipped []string, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, &CorruptError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil, &CorruptError{Path: path, Reason: fmt.Sprintf("sheet %q not found", sheet)}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, &CorruptError{Path: path, Reason: err.Error()}
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	index, err := validation.HeaderIndex(header, headers())
	if err != nil {
		return nil, nil, &CorruptError{Path: path, Reason: err.Error()}
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	cell := func(row []string, field types.Field) string {
		return validation.Cell(row, index[string(field)])
	}

	records = make([]types.OrderRecord, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if validation.IsRowEmpty(row) {
			continue
		}

		date, ok := normalize.ParseDate(cell(row, types.FieldDate), date1904)
		if !ok {
			skipped = append(skipped, fmt.Sprintf("row %d: invalid date %q", i+1, cell(row, types.FieldDate)))
			continue
		}
		id := cell(row, types.FieldOrderID)
		if id == "" {
			skipped = append(skipped, fmt.Sprintf("row %d: blank order_id", i+1))
			continue
		}
		system := cell(row, types.FieldSourceSystem)
		if system == "" {
			skipped = append(skipped, fmt.Sprintf("row %d: blank source_system", i+1))
			continue
		}

		records = append(records, types.OrderRecord{
			Date:         date,
			OrderID:      id,
			Company:      cell(row, types.FieldCompany),
			GroupName:    normalize.GroupName(cell(row, types.FieldGroupName)),
			SourceSystem: system,
		})
	}
	return records, skipped, nil
}

// =============================================================================
// WRITING
// =============================================================================

// WriteRecords renders records as a single-sheet workbook to w.
//
// PARAMETERS:
//   - w: Destination of the xlsx bytes.
//   - sheet: Name of the only sheet.
//   - records: Rows in store order.
func WriteRecords(w io.Writer, sheet string, records []types.OrderRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(types.StoreFields))
	for i, h := range headers() {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		row := i + 2
		values := []interface{}{r.Date, r.OrderID, r.Company, r.GroupName, r.SourceSystem}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if s, ok := v.(string); ok {
				err = f.SetCellStr(sheet, cell, s)
			} else {
				err = f.SetCellValue(sheet, cell, v)
			}
			if err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := styleStore(f, sheet, len(records)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return nil
}

// styleStore applies the header and date styles once all values are set.
func styleStore(f *excelize.File, sheet string, n int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(types.StoreFields))
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if n > 0 {
		dateFmt := DateFormat
		dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
		if err != nil {
			return fmt.Errorf("failed to create date style: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("A%d", n+1), dateStyle); err != nil {
			return fmt.Errorf("failed to style dates: %w", err)
		}
	}

	widths := []float64{12, 18, 32, 32, 14}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
