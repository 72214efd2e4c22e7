package report

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, month time.Month, company, group, system string) types.OrderRecord {
	return types.OrderRecord{
		Date:         time.Date(2025, month, 3, 0, 0, 0, 0, time.UTC),
		OrderID:      id,
		Company:      company,
		GroupName:    group,
		SourceSystem: system,
	}
}

func records() []types.OrderRecord {
	return []types.OrderRecord{
		record("1", time.July, "ACME LTDA", "Acme", "Reserve"),
		record("2", time.July, "ACME SUL", "Acme", "ARGOIT"),
		record("3", time.July, "Beta", "", "Reserve"),
		record("4", time.August, "Beta", "", "ARGOIT"),
	}
}

func TestBuild(t *testing.T) {
	d, err := Build(records(), view.Filter{}, 3)
	require.NoError(t, err)

	assert.Equal(t, 4, d.Summary.Total)
	require.Len(t, d.Monthly, 2)
	require.Len(t, d.Leaders, 2)
	assert.Equal(t, "Acme", d.Leaders[0].Leaders[0].Entity)
	assert.True(t, d.Pivot.BySystem)

	d, err = Build(records(), view.Filter{System: "ARGOIT"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Summary.Total)
	assert.Equal(t, 2, d.Summary.BySystem["Reserve"])
	assert.False(t, d.Pivot.BySystem)
	assert.Equal(t, 2, d.Pivot.Totals.Total)

	_, err = Build(records(), view.Filter{Period: "2025-07"}, 3)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	d, err := Build(records(), view.Filter{}, 3)
	require.NoError(t, err)

	out := Render(d, NewStyles(config.Default()))

	assert.Contains(t, out, "07/2025 to 08/2025")
	assert.Contains(t, out, "Distinct orders")
	assert.Contains(t, out, "Total Reserve")
	assert.Contains(t, out, "Total ARGOIT")
	assert.Contains(t, out, "Orders per month: Reserve")
	assert.Contains(t, out, "Orders per month: ARGOIT")
	assert.Contains(t, out, "1. Acme (2)")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, view.GrandTotal)
	assert.Contains(t, out, "Beta")
}

func TestRenderHidesOtherSystemTiles(t *testing.T) {
	d, err := Build(records(), view.Filter{System: "Reserve"}, 3)
	require.NoError(t, err)

	out := Render(d, NewStyles(config.Default()))

	assert.Contains(t, out, "Orders per month: Reserve")
	assert.NotContains(t, out, "Orders per month: ARGOIT")
	// KPI tiles of both systems stay visible.
	assert.Contains(t, out, "Total ARGOIT")
}

func TestRenderNoMatches(t *testing.T) {
	d, err := Build(records(), view.Filter{Entity: "Nobody"}, 3)
	require.NoError(t, err)

	out := Render(d, NewStyles(config.Default()))
	assert.Contains(t, out, "No orders match the selected filters.")
	assert.NotContains(t, out, view.GrandTotal)
}

func TestBar(t *testing.T) {
	s := NewStyles(config.Default())
	l := view.Leader{Total: 4, BySystem: map[string]int{"Reserve": 3, "ARGOIT": 1}}

	out := bar(s, l, []string{"ARGOIT", "Reserve"}, 4)
	assert.Equal(t, barWidth, strings.Count(out, "█"))

	half := view.Leader{Total: 2, BySystem: map[string]int{"Reserve": 2}}
	out = bar(s, half, []string{"ARGOIT", "Reserve"}, 4)
	assert.Equal(t, barWidth/2, strings.Count(out, "█"))

	assert.Empty(t, bar(s, l, []string{"Reserve"}, 0))
}

func TestSystemColor(t *testing.T) {
	cfg := config.Default()
	s := NewStyles(cfg)

	assert.Equal(t, lipgloss.Color(cfg.Theme.Primary), s.systemColor("Reserve"))
	assert.Equal(t, lipgloss.Color(cfg.Theme.Secondary), s.systemColor("ARGOIT"))
	assert.Equal(t, lipgloss.Color(cfg.Theme.Accent), s.systemColor("Other"))
}

func TestFormatCount(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1.000",
		1234567:  "1.234.567",
		-12345:   "-12.345",
		100000:   "100.000",
		12345678: "12.345.678",
	}
	for n, want := range cases {
		assert.Equal(t, want, FormatCount(n), "n=%d", n)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
