// Package render formats generated reports for the terminal.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
	"github.com/Sumatoshi-tech/compatstats/pkg/terminal"
)

const (
	title          = "COMPAT API STATS"
	labelWidth     = 16
	barWidth       = 20
	platformsLabel = "Native Platforms"
	clayAggLabel   = "Clay (Aggregate)"
	clayLabel      = "Clay Platforms"
)

// Group is a titled set of platforms printed together.
type Group struct {
	Title     string
	Platforms []string
}

// Groups splits the report platforms into native, clay aggregate and clay
// sub-platform groups. Empty groups are dropped.
func Groups(opts compat.Options) []Group {
	groups := []Group{{Title: platformsLabel, Platforms: opts.NativePlatforms()}}

	if opts.ClayEnabled() {
		groups = append(groups,
			Group{Title: clayAggLabel, Platforms: []string{opts.ClayName}},
			Group{Title: clayLabel, Platforms: slices.Clone(opts.ClaySubPlatforms)},
		)
	}

	return slices.DeleteFunc(groups, func(g Group) bool { return len(g.Platforms) == 0 })
}

// Renderer writes human-readable summaries.
type Renderer struct {
	term   terminal.Config
	groups []Group
}

// NewRenderer creates a Renderer for the platforms of opts.
func NewRenderer(term terminal.Config, opts compat.Options) *Renderer {
	return &Renderer{term: term, groups: Groups(opts)}
}

// SummaryLines returns the plain summary, one platform per line in the
// form "platform: supported/total (coverage%) +exclusive exclusive".
func (r *Renderer) SummaryLines(stats *compat.APIStats) []string {
	total := stats.Summary.TotalAPIs

	lines := []string{
		"Summary:",
		fmt.Sprintf("  Total APIs: %d", total),
		fmt.Sprintf("  Features: %d", len(stats.Features)),
		fmt.Sprintf("  Timeline points: %d", len(stats.Timeline)),
	}

	for _, g := range r.groups {
		lines = append(lines, "", "  "+g.Title+":")

		for _, p := range g.Platforms {
			ps := stats.Summary.ByPlatform[p]
			lines = append(lines, fmt.Sprintf("    %s: %d/%d (%d%%) +%d exclusive",
				p, ps.SupportedCount, total, ps.CoveragePercent, ps.ExclusiveCount))
		}
	}

	return lines
}

// PlatformTable renders the per-platform summary as a table.
func (r *Renderer) PlatformTable(stats *compat.APIStats) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Group", "Platform", "Supported", "Coverage", "Exclusive"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, g := range r.groups {
		for _, p := range g.Platforms {
			ps := stats.Summary.ByPlatform[p]
			coverage := r.term.Colorize(fmt.Sprintf("%d%%", ps.CoveragePercent), terminal.ColorForCoverage(ps.CoveragePercent))

			tbl.AppendRow(table.Row{g.Title, p, ps.SupportedCount, coverage, ps.ExclusiveCount})
		}
	}

	tbl.AppendFooter(table.Row{"", "Total APIs", stats.Summary.TotalAPIs, "", ""})

	return tbl.Render()
}

// CategoryBars renders one coverage bar per category for platform.
// Categories are listed by key.
func (r *Renderer) CategoryBars(stats *compat.APIStats, platform string) string {
	keys := make([]string, 0, len(stats.Summary.ByCategory))
	for key := range stats.Summary.ByCategory {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	lines := make([]string, 0, len(keys))

	for _, key := range keys {
		cs := stats.Summary.ByCategory[key]
		label := terminal.Truncate(key, labelWidth)

		lines = append(lines, r.term.DrawCoverageBar(label, cs.Coverage[platform], cs.Supported[platform], labelWidth, barWidth))
	}

	return strings.Join(lines, "\n")
}

// Write renders the full terminal report: header, platform table and
// category coverage per native platform.
func (r *Renderer) Write(w io.Writer, stats *compat.APIStats) error {
	width := r.term.Width
	if width <= 0 {
		width = terminal.DefaultWidth
	}

	var sb strings.Builder

	sb.WriteString(terminal.DrawHeader(title, stats.GeneratedAt, width))
	sb.WriteString("\n\n")
	sb.WriteString(r.PlatformTable(stats))
	sb.WriteString("\n")

	if len(r.groups) > 0 {
		for _, p := range r.groups[0].Platforms {
			sb.WriteString("\n")
			sb.WriteString(r.term.Colorize(p, terminal.ColorBlue))
			sb.WriteString("\n")
			sb.WriteString(terminal.DrawSeparator(width))
			sb.WriteString("\n")
			sb.WriteString(r.CategoryBars(stats, p))
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}
