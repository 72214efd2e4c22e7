// =============================================================================
// Order Consolidation - Dashboard Aggregations
// =============================================================================
//
// Aggregations behind the report and exports:
//   - Summarize: headline totals, per-system totals and filter options
//   - MonthlyBySystem: per-month counts split by source system
//   - Leaderboard: per-month top-N entities with their system split
//
// =============================================================================

package view

import "sort"

// =============================================================================
// SUMMARY
// =============================================================================

// Summary holds the headline numbers of the dashboard.
type Summary struct {
	// Total is the number of distinct orders after every filter.
	Total int

	// BySystem counts distinct orders per system after the entity and
	// period filters only, so every system tile stays visible when one
	// system is selected.
	BySystem map[string]int

	// Entities, Periods and Systems are the filter options, taken from the
	// unfiltered rows.
	Entities []string
	Periods  []Period
	Systems  []string

	// First and Last bound the periods covered by the unfiltered rows.
	First Period
	Last  Period
}

// Summarize computes the dashboard headline for rows under filter f.
func Summarize(rows []Row, f Filter) Summary {
	s := Summary{BySystem: make(map[string]int)}

	entities := make(map[string]struct{})
	periods := make(map[Period]struct{})
	systems := make(map[string]struct{})
	total := make(map[string]struct{})
	bySystem := make(map[string]map[string]struct{})

	for _, r := range rows {
		entities[r.Entity] = struct{}{}
		periods[r.Period] = struct{}{}
		systems[r.System] = struct{}{}

		if !f.matchesScope(r) {
			continue
		}
		if bySystem[r.System] == nil {
			bySystem[r.System] = make(map[string]struct{})
		}
		bySystem[r.System][r.OrderID] = struct{}{}

		if f.Matches(r) {
			total[r.OrderID] = struct{}{}
		}
	}

	s.Total = len(total)
	for system := range systems {
		s.BySystem[system] = len(bySystem[system])
	}

	s.Entities = sortedKeys(entities)
	s.Systems = sortedKeys(systems)
	for p := range periods {
		s.Periods = append(s.Periods, p)
	}
	sortPeriods(s.Periods)
	if len(s.Periods) > 0 {
		s.First = s.Periods[0]
		s.Last = s.Periods[len(s.Periods)-1]
	}
	return s
}

// =============================================================================
// MONTHLY BREAKDOWN
// =============================================================================

// MonthlyCount is the order count of one period.
type MonthlyCount struct {
	Period   Period
	Total    int
	BySystem map[string]int
}

// MonthlyBySystem counts units per period and system, in chronological order.
func MonthlyBySystem(rows []Row) []MonthlyCount {
	index := make(map[Period]int)
	var out []MonthlyCount

	for _, r := range rows {
		i, ok := index[r.Period]
		if !ok {
			i = len(out)
			index[r.Period] = i
			out = append(out, MonthlyCount{Period: r.Period, BySystem: make(map[string]int)})
		}
		out[i].Total += r.Units
		out[i].BySystem[r.System] += r.Units
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out
}

// =============================================================================
// LEADERBOARD
// =============================================================================

// Leader is one ranked entity of a period.
type Leader struct {
	Rank     int
	Entity   string
	Total    int
	BySystem map[string]int
}

// MonthLeaders is the ranking of one period.
type MonthLeaders struct {
	Period  Period
	Leaders []Leader
}

// Leaderboard ranks entities by units within each period and keeps the top
// n (all when n <= 0). Ties are broken by entity name.
func Leaderboard(rows []Row, n int) []MonthLeaders {
	type key struct {
		period Period
		entity string
	}
	totals := make(map[key]*Leader)
	byPeriod := make(map[Period][]*Leader)

	for _, r := range rows {
		k := key{r.Period, r.Entity}
		l, ok := totals[k]
		if !ok {
			l = &Leader{Entity: r.Entity, BySystem: make(map[string]int)}
			totals[k] = l
			byPeriod[r.Period] = append(byPeriod[r.Period], l)
		}
		l.Total += r.Units
		l.BySystem[r.System] += r.Units
	}

	periods := make([]Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sortPeriods(periods)

	out := make([]MonthLeaders, 0, len(periods))
	for _, p := range periods {
		ranked := byPeriod[p]
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Total != ranked[j].Total {
				return ranked[i].Total > ranked[j].Total
			}
			return ranked[i].Entity < ranked[j].Entity
		})
		if n > 0 && len(ranked) > n {
			ranked = ranked[:n]
		}

		ml := MonthLeaders{Period: p, Leaders: make([]Leader, len(ranked))}
		for i, l := range ranked {
			ml.Leaders[i] = *l
			ml.Leaders[i].Rank = i + 1
		}
		out = append(out, ml)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
