// =============================================================================
// Order Consolidation - Schema Normalizer
// =============================================================================
//
// This module turns raw source rows into OrderRecords:
//   - trims every string field
//   - parses dates tolerantly (spreadsheet serials, day-before-month text)
//   - normalizes blank / "nan" group names to the absent marker
//   - tags each record with its source system
//   - drops rows without a usable date or order id
//
// It also owns Key, the single key-normalization function used on both
// sides of every group-code join.
//
// =============================================================================

package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// KEY NORMALIZATION
// =============================================================================

var decimalPattern = regexp.MustCompile(`^([+-]?)(\d*)(?:\.(\d*))?(?:[eE]([+-]?\d+))?$`)

// maxExponent bounds the exponent Key expands; larger ones are left as text.
const maxExponent = 1000

// Key normalizes a join key. The value is trimmed; if it then reads as a
// decimal number with an integral value it is rendered as integer text, so
// 7, 7.0, "7" and " 7 " all become "7". Anything else is returned trimmed.
//
// The conversion works on the digits, so codes of any length stay distinct.
func Key(raw string) string {
	s := strings.TrimSpace(raw)
	m := decimalPattern.FindStringSubmatch(s)
	if m == nil || m[2]+m[3] == "" {
		return s
	}
	sign, digits := m[1], m[2]+m[3]

	// point is the position of the decimal point within digits.
	point := len(m[2])
	if m[4] != "" {
		exp, err := strconv.Atoi(m[4])
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return s
		}
		point += exp
	}

	var whole, frac string
	switch {
	case point <= 0:
		whole, frac = "", digits
	case point >= len(digits):
		whole = digits + strings.Repeat("0", point-len(digits))
	default:
		whole, frac = digits[:point], digits[point:]
	}
	if strings.Trim(frac, "0") != "" {
		return s
	}

	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		// Avoid "-0".
		return "0"
	}
	if sign == "-" {
		return "-" + whole
	}
	return whole
}

// =============================================================================
// DATE PARSING
// =============================================================================

// dateLayouts are tried in order. Day-before-month layouts come first.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// Spreadsheet serials outside this range are not dates (1900-01-01 .. 9999-12-31).
const (
	minSerial = 1
	maxSerial = 2958465
)

// ParseDate parses a raw date cell. It accepts spreadsheet serial numbers and
// the text layouts in dateLayouts. The result is truncated to the calendar
// date at midnight UTC. ok is false when nothing matched.
func ParseDate(raw string, date1904 bool) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || v < minSerial || v > maxSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(v, date1904)
		if err != nil {
			return time.Time{}, false
		}
		return Day(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// TEXT FIELDS
// =============================================================================

// GroupName normalizes a group name. Blank values and the literal "nan" token
// (any case) become the absent marker, the empty string.
func GroupName(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Stats counts what Normalize kept and dropped.
type Stats struct {
	Input      int
	Kept       int
	BadDate    int
	BlankOrder int
}

// Dropped is the number of rows that did not become records.
func (s Stats) Dropped() int {
	return s.BadDate + s.BlankOrder
}

// Normalizer converts raw rows of one source system into records.
type Normalizer struct {
	// System is attached to every record.
	System string

	// Date1904 selects the 1904 serial-date epoch of the source workbook.
	Date1904 bool
}

// Normalize converts rows into records in input order. Rows with an
// unparseable date or a blank order id are dropped; a date is never
// synthesized.
func (n Normalizer) Normalize(rows []types.RawRow) ([]types.OrderRecord, Stats) {
	stats := Stats{Input: len(rows)}
	records := make([]types.OrderRecord, 0, len(rows))

	for _, row := range rows {
		date, ok := ParseDate(row.Date, n.Date1904)
		if !ok {
			stats.BadDate++
			continue
		}
		if strings.TrimSpace(row.OrderID) == "" {
			stats.BlankOrder++
			continue
		}

		records = append(records, types.OrderRecord{
			Date:         date,
			OrderID:      strings.TrimSpace(row.OrderID),
			Company:      strings.TrimSpace(row.Company),
			GroupName:    GroupName(row.GroupName),
			SourceSystem: n.System,
		})
	}

	stats.Kept = len(records)
	return records, stats
}

// Accepts reports whether Normalize would keep row.
func (n Normalizer) Accepts(row types.RawRow) bool {
	if _, ok := ParseDate(row.Date, n.Date1904); !ok {
		return false
	}
	return strings.TrimSpace(row.OrderID) != ""
}
