// =============================================================================
// Order Consolidation - Terminal Dashboard
// =============================================================================
//
// This module renders the dashboard for a terminal using lipgloss:
//
//   1. Headline: covered period range and the current filter
//   2. KPI tiles: distinct orders, plus one tile per source system
//   3. Monthly tiles per system
//   4. Monthly top-N leaderboard with per-system bars
//   5. Pivot table with the Grand Total row and column
//
// The numbers come from the view package; this module only lays them out.
//
// =============================================================================

package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/view"
)

// tilesPerRow matches the four-column layout of the monthly tiles.
const tilesPerRow = 4

// barWidth is the width of a full leaderboard bar in cells.
const barWidth = 24

// =============================================================================
// DASHBOARD DATA
// =============================================================================

// Dashboard is everything the report shows for one filter selection.
type Dashboard struct {
	Filter  view.Filter
	Summary view.Summary
	Monthly []view.MonthlyCount
	Leaders []view.MonthLeaders
	Pivot   view.Pivot
}

// Build computes the dashboard for records under filter f. top is the
// number of leaders per month.
func Build(records []types.OrderRecord, f view.Filter, top int) (Dashboard, error) {
	if err := f.Validate(); err != nil {
		return Dashboard{}, err
	}

	rows := view.Build(records)
	visible := view.Apply(rows, f)

	return Dashboard{
		Filter:  f,
		Summary: view.Summarize(rows, f),
		Monthly: view.MonthlyBySystem(visible),
		Leaders: view.Leaderboard(visible, top),
		// Split by system only when every system is shown.
		Pivot: view.BuildPivot(visible, f.System == ""),
	}, nil
}

// =============================================================================
// STYLES
// =============================================================================

// Styles holds the lipgloss styles of the report.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Muted   lipgloss.Style
	Tile    lipgloss.Style
	Value   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	AltCell lipgloss.Style
	Total   lipgloss.Style

	// systemColors maps a source system to its color.
	systemColors map[string]lipgloss.Color
	accent       lipgloss.Color
}

// NewStyles builds the report styles from the configured theme.
func NewStyles(cfg *config.Config) Styles {
	theme := cfg.Theme
	accent := lipgloss.Color(theme.Accent)
	white := lipgloss.Color("#ffffff")

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Section: lipgloss.NewStyle().
			Foreground(white).
			Bold(true).
			MarginTop(1),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a0a0a0")),

		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Contrast)).
			Padding(0, 1).
			Width(18),

		Value: lipgloss.NewStyle().
			Foreground(white).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(accent).
			Foreground(white).
			Bold(true).
			Padding(0, 1),

		Cell: lipgloss.NewStyle().
			Padding(0, 1),

		AltCell: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.Contrast)).
			Padding(0, 1),

		Total: lipgloss.NewStyle().
			Background(accent).
			Foreground(white).
			Bold(true).
			Padding(0, 1),

		systemColors: map[string]lipgloss.Color{
			cfg.Sources.Primary.System:   lipgloss.Color(theme.Primary),
			cfg.Sources.Secondary.System: lipgloss.Color(theme.Secondary),
		},
		accent: accent,
	}
}

// systemColor returns the color of a system, falling back to the accent.
func (s Styles) systemColor(system string) lipgloss.Color {
	if c, ok := s.systemColors[system]; ok {
		return c
	}
	return s.accent
}

// =============================================================================
// RENDERING
// =============================================================================

// Render lays out the whole dashboard.
func Render(d Dashboard, s Styles) string {
	var b strings.Builder

	b.WriteString(renderHeadline(d, s))
	b.WriteString("\n")
	b.WriteString(renderKPIs(d, s))
	b.WriteString("\n")

	if len(d.Monthly) == 0 {
		b.WriteString(s.Muted.Render("No orders match the selected filters."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(renderMonthly(d, s))
	b.WriteString(renderLeaderboard(d, s))
	b.WriteString(renderPivot(d.Pivot, s))
	return b.String()
}

func renderHeadline(d Dashboard, s Styles) string {
	line := s.Title.Render("Order Consolidation")
	if !d.Summary.First.IsZero() {
		line += s.Muted.Render(fmt.Sprintf("  %s to %s", d.Summary.First.Label(), d.Summary.Last.Label()))
	}

	f := d.Filter
	filter := fmt.Sprintf("entity: %s  period: %s  system: %s", orAll(f.Entity), orAll(f.Period), orAll(f.System))
	return line + "\n" + s.Muted.Render(filter) + "\n"
}

func renderKPIs(d Dashboard, s Styles) string {
	tiles := []string{tile(s, "Distinct orders", d.Summary.Total, s.accent)}
	for _, system := range d.Summary.Systems {
		tiles = append(tiles, tile(s, "Total "+system, d.Summary.BySystem[system], s.systemColor(system)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...) + "\n"
}

func renderMonthly(d Dashboard, s Styles) string {
	var b strings.Builder
	for _, system := range d.Summary.Systems {
		if d.Filter.System != "" && d.Filter.System != system {
			continue
		}

		b.WriteString(s.Section.Render("Orders per month: " + system))
		b.WriteString("\n")

		tiles := make([]string, 0, len(d.Monthly))
		for _, m := range d.Monthly {
			tiles = append(tiles, tile(s, m.Period.Label(), m.BySystem[system], s.systemColor(system)))
		}
		b.WriteString(grid(tiles))
	}
	return b.String()
}

func renderLeaderboard(d Dashboard, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Section.Render("Top entities per month"))
	b.WriteString("\n")

	boxes := make([]string, 0, len(d.Leaders))
	for _, month := range d.Leaders {
		var lines []string
		lines = append(lines, s.Value.Render(month.Period.Label()))

		best := 0
		for _, l := range month.Leaders {
			if l.Total > best {
				best = l.Total
			}
		}

		for _, l := range month.Leaders {
			lines = append(lines, fmt.Sprintf("%d. %s (%s)", l.Rank, truncate(l.Entity, 28), FormatCount(l.Total)))
			lines = append(lines, bar(s, l, d.Summary.Systems, best))
		}
		boxes = append(boxes, s.Tile.Width(36).Render(strings.Join(lines, "\n")))
	}
	b.WriteString(grid(boxes))
	return b.String()
}

// bar draws one stacked bar, each system's share scaled against the
// largest total of the month.
func bar(s Styles, l view.Leader, systems []string, best int) string {
	if best == 0 {
		return ""
	}
	var b strings.Builder
	for _, system := range systems {
		n := l.BySystem[system]
		if n == 0 {
			continue
		}
		width := n * barWidth / best
		if width == 0 {
			width = 1
		}
		b.WriteString(lipgloss.NewStyle().Foreground(s.systemColor(system)).Render(strings.Repeat("█", width)))
	}
	return b.String()
}

func renderPivot(p view.Pivot, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Section.Render("Orders by entity and month"))
	b.WriteString("\n")

	header := []string{"Entity"}
	if p.BySystem {
		header = append(header, "System")
	}
	for _, period := range p.Periods {
		header = append(header, period.Label())
	}
	header = append(header, view.GrandTotal)

	table := [][]string{header}
	for _, r := range append(append([]view.PivotRow{}, p.Rows...), p.Totals) {
		line := []string{truncate(r.Entity, 32)}
		if p.BySystem {
			line = append(line, r.System)
		}
		for _, c := range r.Counts {
			line = append(line, FormatCount(c))
		}
		line = append(line, FormatCount(r.Total))
		table = append(table, line)
	}

	widths := make([]int, len(header))
	for _, line := range table {
		for i, cell := range line {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	nIndex := 1
	if p.BySystem {
		nIndex = 2
	}

	for r, line := range table {
		isHeader := r == 0
		isTotal := r == len(table)-1

		cells := make([]string, len(line))
		for i, cell := range line {
			style := s.Cell
			if (r-1)%2 == 1 {
				style = s.AltCell
			}
			if isHeader || isTotal || i < nIndex || i == len(line)-1 {
				style = s.Total
			}
			if isHeader {
				style = s.Header
			}

			align := lipgloss.Right
			if i < nIndex {
				align = lipgloss.Left
			}
			cells[i] = style.Width(widths[i] + 2).Align(align).Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func tile(s Styles, label string, value int, color lipgloss.Color) string {
	body := s.Muted.Render(label) + "\n" + s.Value.Foreground(color).Render(FormatCount(value))
	return s.Tile.Render(body)
}

// grid lays out boxes tilesPerRow to a row.
func grid(boxes []string) string {
	var b strings.Builder
	for i := 0; i < len(boxes); i += tilesPerRow {
		end := i + tilesPerRow
		if end > len(boxes) {
			end = len(boxes)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes[i:end]...))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCount renders n with "." as the thousands separator, as the
// operators read it: 1234567 -> "1.234.567".
func FormatCount(n int) string {
	digits := strconv.Itoa(n)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}
