package view

import "sort"

// GrandTotal labels the totals row of a pivot.
const GrandTotal = "Grand Total"

// Pivot is the entity-by-month table of distinct order counts.
type Pivot struct {
	// BySystem is true when rows are split by source system.
	BySystem bool

	// Periods are the columns, in chronological order.
	Periods []Period

	// Rows are sorted by entity, then system.
	Rows []PivotRow

	// Totals is the Grand Total row.
	Totals PivotRow
}

// PivotRow is one index row of a pivot.
type PivotRow struct {
	Entity string

	// System is empty unless the pivot is split by system.
	System string

	// Counts are aligned with Pivot.Periods.
	Counts []int

	// Total is the row margin.
	Total int
}

// Empty reports whether the pivot has no data rows.
func (p Pivot) Empty() bool {
	return len(p.Rows) == 0
}

// BuildPivot counts distinct orders per entity (and system when bySystem)
// and period, with row and column margins.
func BuildPivot(rows []Row, bySystem bool) Pivot {
	type key struct{ entity, system string }
	type cell struct {
		key
		period Period
	}

	seen := make(map[cell]map[string]struct{})
	keys := make(map[key]struct{})
	periodSet := make(map[Period]struct{})
	rowOrders := make(map[key]map[string]struct{})
	colOrders := make(map[Period]map[string]struct{})
	allOrders := make(map[string]struct{})

	add := func(m map[string]struct{}, id string) map[string]struct{} {
		if m == nil {
			m = make(map[string]struct{})
		}
		m[id] = struct{}{}
		return m
	}

	for _, r := range rows {
		k := key{entity: r.Entity}
		if bySystem {
			k.system = r.System
		}
		c := cell{k, r.Period}

		seen[c] = add(seen[c], r.OrderID)
		rowOrders[k] = add(rowOrders[k], r.OrderID)
		colOrders[r.Period] = add(colOrders[r.Period], r.OrderID)
		allOrders[r.OrderID] = struct{}{}
		keys[k] = struct{}{}
		periodSet[r.Period] = struct{}{}
	}

	p := Pivot{BySystem: bySystem}
	for period := range periodSet {
		p.Periods = append(p.Periods, period)
	}
	sortPeriods(p.Periods)

	ordered := make([]key, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].entity != ordered[j].entity {
			return ordered[i].entity < ordered[j].entity
		}
		return ordered[i].system < ordered[j].system
	})

	for _, k := range ordered {
		row := PivotRow{Entity: k.entity, System: k.system, Counts: make([]int, len(p.Periods))}
		for i, period := range p.Periods {
			row.Counts[i] = len(seen[cell{k, period}])
		}
		row.Total = len(rowOrders[k])
		p.Rows = append(p.Rows, row)
	}

	p.Totals = PivotRow{Entity: GrandTotal, Counts: make([]int, len(p.Periods)), Total: len(allOrders)}
	for i, period := range p.Periods {
		p.Totals.Counts[i] = len(colOrders[period])
	}
	return p
}
