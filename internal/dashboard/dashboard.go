// Package dashboard turns a generated report into an HTML dashboard.
package dashboard

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
	"github.com/Sumatoshi-tech/compatstats/pkg/plotpage"
)

const (
	pageTitle    = "Lynx API Compatibility"
	labelRotate  = 30
	coverageAxis = "Coverage %"
	countAxis    = "APIs"
)

// Build assembles the dashboard page for stats.
func Build(stats *compat.APIStats, opts compat.Options, theme plotpage.Theme) *plotpage.Page {
	page := plotpage.NewPage(pageTitle, fmt.Sprintf("Generated %s", stats.GeneratedAt)).WithTheme(theme)
	page.Footer = fmt.Sprintf("%d features across %d categories", len(stats.Features), len(stats.Categories))

	page.AddStats(headline(stats, opts, theme)...)

	if len(stats.Timeline) > 0 {
		page.Add(timelineSection(stats, opts, theme))
	}

	page.Add(categorySection(stats, opts, theme), platformSection(stats, opts, theme))

	return page
}

// Write builds the dashboard and renders it to w.
func Write(w io.Writer, stats *compat.APIStats, opts compat.Options, theme plotpage.Theme) error {
	err := Build(stats, opts, theme).Render(w)
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	return nil
}

func headline(stats *compat.APIStats, opts compat.Options, theme plotpage.Theme) []plotpage.Stat {
	out := []plotpage.Stat{
		{Label: "Shared APIs", Value: strconv.Itoa(stats.Summary.TotalAPIs)},
		{Label: "Features", Value: strconv.Itoa(len(stats.Features))},
		{Label: "Recent APIs", Value: strconv.Itoa(len(stats.RecentAPIs))},
	}

	for _, p := range opts.NativePlatforms() {
		cov := stats.Summary.ByPlatform[p].CoveragePercent
		out = append(out, plotpage.Stat{
			Label: p + " coverage",
			Value: fmt.Sprintf("%d%%", cov),
			Color: plotpage.CoverageColor(theme, cov),
		})
	}

	return out
}

func timelineSection(stats *compat.APIStats, opts compat.Options, theme plotpage.Theme) plotpage.Section {
	labels := make([]string, len(stats.Timeline))
	for i, point := range stats.Timeline {
		labels[i] = point.Version
	}

	platforms := opts.ReportPlatforms()
	series := make([]plotpage.Series, 0, len(platforms))

	for i, p := range platforms {
		data := make([]int, len(stats.Timeline))
		for j, point := range stats.Timeline {
			data[j] = point.Platforms[p].Coverage
		}

		series = append(series, plotpage.Series{Name: p, Data: data, Color: plotpage.SeriesColor(theme, i)})
	}

	chart := plotpage.BuildLineChart(plotpage.NewChartOpts(theme),
		plotpage.AxisSpec{Labels: labels, YName: coverageAxis, Percent: true, Zoom: true}, series)

	return plotpage.Section{
		Title:    "Coverage over releases",
		Subtitle: "Share of today's shared APIs available at each release",
		Hints:    []string{"A feature counts at a release when its version_added is at or before that release."},
		Chart:    chart,
	}
}

func categorySection(stats *compat.APIStats, opts compat.Options, theme plotpage.Theme) plotpage.Section {
	keys := sortedKeys(stats.Summary.ByCategory)

	labels := make([]string, len(keys))
	for i, key := range keys {
		labels[i] = key
		if detail, ok := stats.Categories[key]; ok && detail.DisplayName != "" {
			labels[i] = detail.DisplayName
		}
	}

	platforms := opts.ReportPlatforms()
	series := make([]plotpage.Series, 0, len(platforms))

	for i, p := range platforms {
		data := make([]int, len(keys))
		for j, key := range keys {
			data[j] = stats.Summary.ByCategory[key].Coverage[p]
		}

		series = append(series, plotpage.Series{Name: p, Data: data, Color: plotpage.SeriesColor(theme, i)})
	}

	chart := plotpage.BuildBarChart(plotpage.NewChartOpts(theme),
		plotpage.AxisSpec{Labels: labels, YName: coverageAxis, Percent: true, LabelRotate: labelRotate}, series)

	return plotpage.Section{
		Title:    "Coverage by category",
		Subtitle: "Coverage of shared APIs per category and platform",
		Chart:    chart,
	}
}

func platformSection(stats *compat.APIStats, opts compat.Options, theme plotpage.Theme) plotpage.Section {
	platforms := opts.ReportPlatforms()
	supported := make([]int, len(platforms))
	exclusive := make([]int, len(platforms))

	for i, p := range platforms {
		ps := stats.Summary.ByPlatform[p]
		supported[i] = ps.SupportedCount
		exclusive[i] = ps.ExclusiveCount
	}

	cfg := plotpage.GetThemeConfig(theme)

	chart := plotpage.BuildBarChart(plotpage.NewChartOpts(theme),
		plotpage.AxisSpec{Labels: platforms, YName: countAxis, LabelRotate: labelRotate},
		[]plotpage.Series{
			{Name: "Supported", Data: supported, Color: cfg.Good},
			{Name: "Exclusive", Data: exclusive, Color: cfg.Accent},
		})

	return plotpage.Section{
		Title:    "Platform support",
		Subtitle: "Supported shared APIs and APIs only one platform provides",
		Hints:    []string{"Exclusive APIs are supported by exactly one tracked platform."},
		Chart:    chart,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
