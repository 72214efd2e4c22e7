// Package dedup collapses order records that share an order id.
package dedup

import "github.com/ginjaninja78/order-consolidation/internal/types"

// ByOrderID returns one record per distinct order id, keeping the first
// occurrence in input order. The relative order of the survivors is the
// input order.
func ByOrderID(records []types.OrderRecord) []types.OrderRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]types.OrderRecord, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.OrderID]; dup {
			continue
		}
		seen[r.OrderID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// IDs returns the set of order ids present in records.
func IDs(records []types.OrderRecord) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.OrderID] = struct{}{}
	}
	return ids
}

// Missing returns the records whose order id is not in ids, in input order.
func Missing(records []types.OrderRecord, ids map[string]struct{}) []types.OrderRecord {
	var out []types.OrderRecord
	for _, r := range records {
		if _, ok := ids[r.OrderID]; !ok {
			out = append(out, r)
		}
	}
	return out
}
