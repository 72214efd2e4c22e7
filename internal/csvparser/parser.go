// =============================================================================
// Order Consolidation - CSV Table Reader
// =============================================================================
//
// The secondary system can export a period either as a workbook or as a
// delimited text file. This module reads the text form into the same
// [][]string row grid that excelize's GetRows returns, so the source reader
// applies one header-mapping path to both.
//
// PARSING RULES:
//   - A UTF-8 byte order mark on the first cell is removed
//   - Rows may have different field counts
//   - Lazy quotes are accepted
//   - Trailing empty cells are trimmed, matching spreadsheet row reads
//   - Blank lines become empty rows, so row N is line N of the file
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Settings controls how a delimited file is read.
type Settings struct {
	// Delimiter is a single character, or one of the names "tab", "pipe",
	// "semicolon", "comma".
	// Default: ","
	Delimiter string
}

// ReadTable reads every row of a delimited file.
func ReadTable(filePath string, settings Settings) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, settings)
}

// Read reads every row from r.
func Read(r io.Reader, settings Settings) ([][]string, error) {
	comma, err := Delimiter(settings.Delimiter)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(r))
	configureReader(csvReader, comma)

	var rows [][]string
	lastLine := 0
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(rows) == 0 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}

		// encoding/csv skips blank lines; keep one empty row per skipped
		// line so row numbers match the physical file.
		line, _ := csvReader.FieldPos(0)
		for lastLine+1 < line {
			rows = append(rows, nil)
			lastLine++
		}

		last := len(record) - 1
		endLine, _ := csvReader.FieldPos(last)
		lastLine = endLine + strings.Count(record[last], "\n")

		rows = append(rows, trimTrailingEmpty(record))
	}

	return rows, nil
}

// Delimiter resolves a configured delimiter to a rune.
func Delimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "":
		return ',', nil
	case "\\t", "\t", "tab":
		return '\t', nil
	case "pipe":
		return '|', nil
	case "semicolon":
		return ';', nil
	case "comma":
		return ',', nil
	}

	r, size := utf8.DecodeRuneInString(value)
	if size != len(value) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", value)
	}
	return r, nil
}

// configureReader configures the CSV reader.
func configureReader(reader *csv.Reader, comma rune) {
	reader.Comma = comma

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}
