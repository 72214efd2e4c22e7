package groups

import (
	"testing"

	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupNormalizesCodes(t *testing.T) {
	l := NewLookup([]Entry{{Code: "7.0", Name: "Seven Group"}})

	for _, code := range []string{"7", "7.0", " 7 ", "7.00"} {
		name, ok := l.Name(code)
		require.True(t, ok, code)
		assert.Equal(t, "Seven Group", name, code)
	}

	_, ok := l.Name("8")
	assert.False(t, ok)
}

func TestLookupFirstEntryWins(t *testing.T) {
	l := NewLookup([]Entry{
		{Code: "12", Name: "First"},
		{Code: "12.0", Name: "Second"},
		{Code: "13", Name: "  "},
		{Code: "", Name: "No code"},
	})
	assert.Equal(t, 1, l.Len())

	name, ok := l.Name("12")
	require.True(t, ok)
	assert.Equal(t, "First", name)

	_, ok = l.Name("13")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	l := NewLookup([]Entry{{Code: "12", Name: "Group Twelve"}})
	rows := []types.RawRow{
		{OrderID: "1", GroupCode: "12.0", GroupName: "raw twelve"},
		{OrderID: "2", GroupCode: "99", GroupName: "raw ninety-nine"},
		{OrderID: "3", GroupCode: "", GroupName: ""},
	}

	out, matched := Resolve(rows, l)
	require.Len(t, out, 3)
	assert.Equal(t, 1, matched)

	assert.Equal(t, "Group Twelve", out[0].GroupName)
	// Unmatched codes keep their raw text.
	assert.Equal(t, "raw ninety-nine", out[1].GroupName)
	assert.Equal(t, "", out[2].GroupName)

	// The input is not modified.
	assert.Equal(t, "raw twelve", rows[0].GroupName)
}

func TestResolveNilLookup(t *testing.T) {
	rows := []types.RawRow{{OrderID: "1", GroupCode: "1", GroupName: "raw"}}
	out, matched := Resolve(rows, nil)
	assert.Equal(t, 0, matched)
	assert.Equal(t, rows, out)
}
