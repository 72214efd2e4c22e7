// =============================================================================
// Order Consolidation - Group Resolver
// =============================================================================
//
// The primary source carries a raw group code on every transaction and a
// separate lookup sheet mapping codes to display names. The resolver joins
// the two on the normalized key (normalize.Key, applied to both sides).
//
// RESOLUTION RULES:
//   - matched code   -> group name becomes the lookup display name
//   - unmatched code -> the raw group text is kept as is (not cleared)
//   - a blank raw group text stays blank and falls back to company later,
//     in the view builder
//
// =============================================================================

package groups

import (
	"strings"

	"github.com/ginjaninja78/order-consolidation/internal/normalize"
	"github.com/ginjaninja78/order-consolidation/internal/types"
)

// Entry is one row of the lookup sheet.
type Entry struct {
	Code string
	Name string
}

// Lookup maps normalized group codes to display names.
type Lookup struct {
	names map[string]string
}

// NewLookup builds a lookup table. The first entry for a code wins; entries
// with a blank code or a blank name are ignored.
func NewLookup(entries []Entry) *Lookup {
	l := &Lookup{names: make(map[string]string, len(entries))}
	for _, e := range entries {
		key := normalize.Key(e.Code)
		name := strings.TrimSpace(e.Name)
		if key == "" || name == "" {
			continue
		}
		if _, exists := l.names[key]; exists {
			continue
		}
		l.names[key] = name
	}
	return l
}

// Len returns the number of distinct codes.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Name returns the display name for a raw code.
func (l *Lookup) Name(code string) (string, bool) {
	if l == nil {
		return "", false
	}
	name, ok := l.names[normalize.Key(code)]
	return name, ok
}

// Resolve returns a copy of rows with GroupName replaced wherever the row's
// group code matches the lookup table, and the number of rows matched.
// A nil lookup leaves every row unchanged.
func Resolve(rows []types.RawRow, lookup *Lookup) ([]types.RawRow, int) {
	out := make([]types.RawRow, len(rows))
	matched := 0
	for i, row := range rows {
		if name, ok := lookup.Name(row.GroupCode); ok {
			row.GroupName = name
			matched++
		}
		out[i] = row
	}
	return out, matched
}
