// =============================================================================
// Order Consolidation - Workbook Access
// =============================================================================
//
// Thin helpers over excelize shared by the primary and secondary readers.
// Rows are read with RawCellValue so date cells arrive as serial numbers
// and numeric ids are not reformatted by the cell's number format.
//
// =============================================================================

package sources

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/order-consolidation/internal/csvparser"
	"github.com/ginjaninja78/order-consolidation/internal/validation"
	"github.com/xuri/excelize/v2"
)

// table is a row grid read from one sheet or one delimited file.
type table struct {
	// Sheet is the sheet the rows came from, empty for CSV files.
	Sheet string

	Rows [][]string

	// Date1904 is true when the workbook uses the 1904 date epoch.
	Date1904 bool
}

// openWorkbook opens an xlsx file for reading.
func openWorkbook(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, nil
}

// readSheet reads all rows of a sheet. An empty sheet name selects the
// first sheet of the workbook.
func readSheet(f *excelize.File, path, sheet string) (table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return table{}, &validation.SheetNotFoundError{File: path, Sheet: sheet, Sheets: f.GetSheetList()}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return table{}, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	return table{Sheet: sheet, Rows: rows, Date1904: uses1904(f)}, nil
}

// readTable reads a period file, dispatching on its extension.
func readTable(path, sheet, delimiter string) (table, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err := csvparser.ReadTable(path, csvparser.Settings{Delimiter: delimiter})
		if err != nil {
			return table{}, err
		}
		return table{Rows: rows}, nil
	}

	f, err := openWorkbook(path)
	if err != nil {
		return table{}, err
	}
	defer f.Close()

	return readSheet(f, path, sheet)
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}
