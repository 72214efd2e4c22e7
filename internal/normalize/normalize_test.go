package normalize

import (
	"testing"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7", "7"},
		{"7.0", "7"},
		{" 7 ", "7"},
		{"7.00", "7"},
		{"12.0", "12"},
		{"+3", "3"},
		{"1e3", "1000"},
		{"1.5e1", "15"},
		{"1e-3", "1e-3"},
		{"007", "7"},
		{"-12.00", "-12"},
		{"9007199254740993", "9007199254740993"},
		{"12345678901234567890.0", "12345678901234567890"},
		{"1e5000", "1e5000"},
		{".", "."},
		{"-0.0", "0"},
		{"7.5", "7.5"},
		{"A12", "A12"},
		{"  abc ", "abc"},
		{"", ""},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"0x10", "0x10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.in), "Key(%q)", tt.in)
	}
}

func TestKeyEquivalence(t *testing.T) {
	want := Key("7")
	for _, in := range []string{"7", "7.0", " 7 ", "7.000"} {
		assert.Equal(t, want, Key(in), in)
	}
}

func TestKeyKeepsLongCodesDistinct(t *testing.T) {
	a := Key("12345678901234567890")
	b := Key("12345678901234567891")
	assert.Equal(t, "12345678901234567890", a)
	assert.Equal(t, "12345678901234567891", b)
	assert.NotEqual(t, a, b)
}

func TestParseDate(t *testing.T) {
	july15 := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"15/07/2025", july15},
		{"15/7/2025", july15},
		{"15/07/2025 13:45:10", july15},
		{"15/07/25", july15},
		{"15-07-2025", july15},
		{"15.07.2025", july15},
		{"2025-07-15", july15},
		{"2025-07-15 08:00:00", july15},
		{"2025-07-15T23:59:59Z", july15},
		{"45853", july15},
		{"45853.75", july15},
		// Day before month: 03/04 is the 3rd of April.
		{"03/04/2025", time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in, false)
		require.True(t, ok, "ParseDate(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseDate(%q)", tt.in)
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []string{"", "  ", "nan", "not a date", "31/02/2025", "0", "-5", "99999999"} {
		_, ok := ParseDate(in, false)
		assert.False(t, ok, "ParseDate(%q)", in)
	}
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "", GroupName(""))
	assert.Equal(t, "", GroupName("   "))
	assert.Equal(t, "", GroupName("nan"))
	assert.Equal(t, "", GroupName("NaN"))
	assert.Equal(t, "Acme", GroupName("  Acme "))
	assert.Equal(t, "Nancy", GroupName("Nancy"))
}

func TestNormalize(t *testing.T) {
	n := Normalizer{System: "Reserve"}
	rows := []types.RawRow{
		{Date: "01/08/2025", OrderID: " 100 ", Company: " Acme ", GroupName: "nan"},
		{Date: "garbage", OrderID: "101", Company: "Acme"},
		{Date: "02/08/2025", OrderID: "  ", Company: "Acme"},
		{Date: "03/08/2025", OrderID: "0123", Company: "Beta", GroupName: " Group B "},
	}

	records, stats := n.Normalize(rows)
	require.Len(t, records, 2)

	assert.Equal(t, Stats{Input: 4, Kept: 2, BadDate: 1, BlankOrder: 1}, stats)
	assert.Equal(t, 2, stats.Dropped())

	assert.Equal(t, "100", records[0].OrderID)
	assert.Equal(t, "Acme", records[0].Company)
	assert.False(t, records[0].HasGroup())
	assert.Equal(t, "Reserve", records[0].SourceSystem)
	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), records[0].Date)

	// Order ids are opaque: the leading zero survives.
	assert.Equal(t, "0123", records[1].OrderID)
	assert.Equal(t, "Group B", records[1].GroupName)
}

func TestAccepts(t *testing.T) {
	n := Normalizer{System: "Reserve"}
	assert.True(t, n.Accepts(types.RawRow{Date: "01/08/2025", OrderID: "1"}))
	assert.False(t, n.Accepts(types.RawRow{Date: "bad", OrderID: "1"}))
	assert.False(t, n.Accepts(types.RawRow{Date: "01/08/2025", OrderID: " "}))
}
