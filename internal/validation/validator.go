// =============================================================================
// Order Consolidation - Header Validation
// =============================================================================
//
// This module checks that a sheet's header row carries the columns a typed
// mapping table expects, and produces named, per-file errors when it does
// not. A failed check skips that one file; the pipeline continues.
//
// VALIDATION STRATEGY:
//   - Header cells are compared after trimming surrounding whitespace
//   - Matching is exact on the trimmed text, with a case-insensitive
//     fallback so "CLIENTE" still matches "Cliente"
//   - Every missing header is reported, not just the first
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// MissingColumnsError reports expected headers absent from a sheet.
type MissingColumnsError struct {
	// File is the workbook or CSV file that was checked.
	File string

	// Sheet is the sheet name, empty for CSV files.
	Sheet string

	// HeaderRow is the 1-based row that was read as the header.
	HeaderRow int

	// Missing lists the expected header texts that were not found.
	Missing []string

	// Found lists the header texts present in the row.
	Found []string
}

// Error implements the error interface.
func (e *MissingColumnsError) Error() string {
	where := e.File
	if e.Sheet != "" {
		where = fmt.Sprintf("%s [%s]", e.File, e.Sheet)
	}
	return fmt.Sprintf("%s: header row %d is missing column(s) %s (found: %s)",
		where,
		e.HeaderRow,
		quoteAll(e.Missing),
		quoteAll(e.Found),
	)
}

// SheetNotFoundError reports a sheet absent from a workbook.
type SheetNotFoundError struct {
	File   string
	Sheet  string
	Sheets []string
}

// Error implements the error interface.
func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("%s: sheet %q not found (sheets: %s)", e.File, e.Sheet, quoteAll(e.Sheets))
}

// =============================================================================
// HEADER CHECKS
// =============================================================================

// HeaderIndex locates each expected header in the header row and returns
// the 0-based column index for every expected header. If any are absent a
// *MissingColumnsError is returned with File, Sheet and HeaderRow left for
// the caller to fill in.
func HeaderIndex(header []string, expected []string) (map[string]int, error) {
	exact := make(map[string]int, len(header))
	folded := make(map[string]int, len(header))
	for i := len(header) - 1; i >= 0; i-- {
		h := strings.TrimSpace(header[i])
		if h == "" {
			continue
		}
		// Iterating backwards leaves the leftmost column for duplicates.
		exact[h] = i
		folded[strings.ToLower(h)] = i
	}

	index := make(map[string]int, len(expected))
	var missing []string
	for _, want := range expected {
		w := strings.TrimSpace(want)
		if i, ok := exact[w]; ok {
			index[want] = i
			continue
		}
		if i, ok := folded[strings.ToLower(w)]; ok {
			index[want] = i
			continue
		}
		missing = append(missing, want)
	}

	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Found: nonBlank(header)}
	}
	return index, nil
}

// Cell returns the trimmed value at index in row, or "" when the row is
// shorter. Spreadsheet readers drop trailing empty cells.
func Cell(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// IsRowEmpty checks if a row contains only empty cells.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatErrors formats errors for display or logging.
func FormatErrors(errs []error) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errs)))
	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

func nonBlank(cells []string) []string {
	var out []string
	for _, c := range cells {
		if s := strings.TrimSpace(c); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func quoteAll(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
