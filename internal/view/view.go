// =============================================================================
// Order Consolidation - Aggregation View Builder
// =============================================================================
//
// This module projects the consolidated store into the flat rows every
// dashboard aggregation works on. The projection is recomputed on each call
// and never persisted.
//
//   | order_id | entity                     | period  | system  | units |
//   |----------|----------------------------|---------|---------|-------|
//   | 100      | group name, else company   | 07/2025 | Reserve | 1     |
//
// =============================================================================

package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/types"
)

// =============================================================================
// PERIOD
// =============================================================================

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the month t falls in.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses an MM/YYYY label.
func ParsePeriod(label string) (Period, error) {
	t, err := time.Parse("01/2006", label)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, expected MM/YYYY: %w", label, err)
	}
	return PeriodOf(t), nil
}

// Label renders the period as MM/YYYY.
func (p Period) Label() string {
	return fmt.Sprintf("%02d/%04d", int(p.Month), p.Year)
}

// String implements fmt.Stringer.
func (p Period) String() string {
	return p.Label()
}

// Before reports whether p is earlier than q.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func sortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
}

// =============================================================================
// ROWS
// =============================================================================

// Row is one order in the aggregation view.
type Row struct {
	OrderID string
	Entity  string
	Period  Period
	System  string

	// Units is always 1; aggregations sum it.
	Units int
}

// Build projects records into view rows, in record order.
func Build(records []types.OrderRecord) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			OrderID: r.OrderID,
			Entity:  r.Entity(),
			Period:  PeriodOf(r.Date),
			System:  r.SourceSystem,
			Units:   1,
		}
	}
	return rows
}

// =============================================================================
// FILTERS
// =============================================================================

// Filter selects view rows. An empty field matches everything.
type Filter struct {
	Entity string
	Period string
	System string
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Validate checks that Period is a well-formed label.
func (f Filter) Validate() error {
	if f.Period == "" {
		return nil
	}
	_, err := ParsePeriod(f.Period)
	return err
}

// Matches reports whether r passes every field of the filter.
func (f Filter) Matches(r Row) bool {
	return f.matchesScope(r) && (f.System == "" || r.System == f.System)
}

// matchesScope applies the entity and period fields only.
func (f Filter) matchesScope(r Row) bool {
	if f.Entity != "" && r.Entity != f.Entity {
		return false
	}
	if f.Period != "" && r.Period.Label() != f.Period {
		return false
	}
	return true
}

// Apply returns the rows that match f, in input order.
func Apply(rows []Row, f Filter) []Row {
	if f.IsZero() {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
