package dedup

import (
	"testing"

	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/stretchr/testify/assert"
)

func rec(id, company string) types.OrderRecord {
	return types.OrderRecord{OrderID: id, Company: company}
}

func TestByOrderIDFirstWins(t *testing.T) {
	in := []types.OrderRecord{
		rec("100", "first"),
		rec("200", "other"),
		rec("100", "second"),
		rec("300", "third"),
		rec("200", "again"),
	}

	out := ByOrderID(in)
	assert.Equal(t, []types.OrderRecord{
		rec("100", "first"),
		rec("200", "other"),
		rec("300", "third"),
	}, out)
}

func TestByOrderIDIsOpaque(t *testing.T) {
	out := ByOrderID([]types.OrderRecord{rec("0123", "a"), rec("123", "b")})
	assert.Len(t, out, 2)
}

func TestByOrderIDEmpty(t *testing.T) {
	assert.Empty(t, ByOrderID(nil))
}

func TestMissing(t *testing.T) {
	existing := []types.OrderRecord{rec("A", "x"), rec("B", "x")}
	batch := []types.OrderRecord{rec("B", "changed"), rec("C", "y")}

	out := Missing(batch, IDs(existing))
	assert.Equal(t, []types.OrderRecord{rec("C", "y")}, out)
}
