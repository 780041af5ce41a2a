package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth    = "100%"
	chartHeight   = "420px"
	zoomEnd       = 100
	percentAxisTo = 100
)

// ChartOpts produces themed go-echarts options.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates options for theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// Init returns the initialization options.
func (c *ChartOpts) Init() opts.Initialization {
	return opts.Initialization{Width: chartWidth, Height: chartHeight, BackgroundColor: "transparent"}
}

// Legend returns a scrollable legend.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Type:      "scroll",
		Top:       "0",
		TextStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// XAxis returns themed x-axis options; rotate tilts crowded labels.
func (c *ChartOpts) XAxis(rotate float64) opts.XAxis {
	return opts.XAxis{
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartText, Rotate: rotate, Interval: "0"},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// YAxis returns themed y-axis options. Percent axes are fixed to 0..100.
func (c *ChartOpts) YAxis(name string, percent bool) opts.YAxis {
	y := opts.YAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
		SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid}},
	}

	if percent {
		y.Min = 0
		y.Max = percentAxisTo
	}

	return y
}

// Series is one named data series.
type Series struct {
	Name  string
	Data  []int
	Color string
}

// AxisSpec describes the axes of a chart.
type AxisSpec struct {
	Labels      []string
	YName       string
	Percent     bool
	LabelRotate float64
	Zoom        bool
}

func (c *ChartOpts) global(axes AxisSpec) []charts.GlobalOpts {
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(c.Init()),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(c.Legend()),
		charts.WithXAxisOpts(c.XAxis(axes.LabelRotate)),
		charts.WithYAxisOpts(c.YAxis(axes.YName, axes.Percent)),
		charts.WithGridOpts(opts.Grid{Top: "40", Bottom: "15%", Left: "3%", Right: "3%", ContainLabel: opts.Bool(true)}),
	}

	if axes.Zoom {
		global = append(global, charts.WithDataZoomOpts(
			opts.DataZoom{Type: "slider", Start: 0, End: zoomEnd},
			opts.DataZoom{Type: "inside"},
		))
	}

	return global
}

// BuildBarChart builds a grouped bar chart. A nil cOpts uses the dark theme.
func BuildBarChart(cOpts *ChartOpts, axes AxisSpec, series []Series) *charts.Bar {
	if cOpts == nil {
		cOpts = NewChartOpts(ThemeDark)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(cOpts.global(axes)...)
	bar.SetXAxis(axes.Labels)

	for _, s := range series {
		data := make([]opts.BarData, len(s.Data))
		for i, v := range s.Data {
			data[i] = opts.BarData{Value: v}
		}

		var seriesOpts []charts.SeriesOpts
		if s.Color != "" {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		}

		bar.AddSeries(s.Name, data, seriesOpts...)
	}

	return bar
}

// BuildLineChart builds a line chart with smooth lines and visible points.
func BuildLineChart(cOpts *ChartOpts, axes AxisSpec, series []Series) *charts.Line {
	if cOpts == nil {
		cOpts = NewChartOpts(ThemeDark)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(cOpts.global(axes)...)
	line.SetXAxis(axes.Labels)

	for _, s := range series {
		data := make([]opts.LineData, len(s.Data))
		for i, v := range s.Data {
			data[i] = opts.LineData{Value: v}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
		}

		if s.Color != "" {
			seriesOpts = append(seriesOpts,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
			)
		}

		line.AddSeries(s.Name, data, seriesOpts...)
	}

	return line
}
