// Package plotpage renders single-file HTML dashboards made of go-echarts
// charts.
package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

const styleClose = "</style>"

// Renderable is anything that writes itself as HTML, such as a go-echarts chart.
type Renderable interface {
	Render(w io.Writer) error
}

// Stat is one headline figure shown above the charts.
type Stat struct {
	Label string
	Value string
	// Color tints the value; empty uses the accent color.
	Color string
}

// Section is one chart with a title and optional reading hints.
type Section struct {
	Title    string
	Subtitle string
	Hints    []string
	Chart    Renderable
}

// Page is a complete dashboard.
type Page struct {
	Title       string
	Description string
	Footer      string
	Theme       Theme
	Stats       []Stat
	Sections    []Section
}

// NewPage creates a dark-themed page.
func NewPage(title, description string) *Page {
	return &Page{Title: title, Description: description, Theme: ThemeDark}
}

// WithTheme sets the page theme.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// AddStats appends headline figures.
func (p *Page) AddStats(stats ...Stat) {
	p.Stats = append(p.Stats, stats...)
}

// Add appends sections.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

type sectionView struct {
	Title    string
	Subtitle string
	Hints    []string
	Chart    template.HTML
}

type pageView struct {
	Title       string
	Description string
	Footer      string
	Theme       ThemeConfig
	Dark        bool
	Stats       []Stat
	Sections    []sectionView
}

// Render writes the page as one HTML document.
func (p *Page) Render(w io.Writer) error {
	view := pageView{
		Title:       p.Title,
		Description: p.Description,
		Footer:      p.Footer,
		Theme:       GetThemeConfig(p.Theme),
		Dark:        p.Theme == ThemeDark,
		Stats:       p.Stats,
	}

	for _, s := range p.Sections {
		chart, err := renderChart(s.Chart)
		if err != nil {
			return fmt.Errorf("render section %q: %w", s.Title, err)
		}

		view.Sections = append(view.Sections, sectionView{
			Title:    s.Title,
			Subtitle: s.Subtitle,
			Hints:    s.Hints,
			Chart:    chart,
		})
	}

	html, err := pageLayout.execute(view)
	if err != nil {
		return err
	}

	_, err = w.Write(html)
	if err != nil {
		return fmt.Errorf("write page: %w", err)
	}

	return nil
}

// renderChart renders a chart and keeps only its container and script.
func renderChart(chart Renderable) (template.HTML, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := chart.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}

	// Output is produced by go-echarts, not user input.
	return template.HTML(extractChartContent(buf.String())), nil //nolint:gosec // trusted chart markup.
}

// extractChartContent cuts a go-echarts page down to its chart container.
// Fragments are returned unchanged.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	end := strings.Index(html, `</body>`)

	if start == -1 || end == -1 || end < start {
		return html
	}

	content := strings.ReplaceAll(html[start:end], `class="container"`, `class="chart-box"`)

	return stripStyleTags(content)
}

func stripStyleTags(content string) string {
	for {
		open := strings.Index(content, "<style>")
		if open == -1 {
			return content
		}

		closeAt := strings.Index(content[open:], styleClose)
		if closeAt == -1 {
			return content
		}

		content = content[:open] + content[open+closeAt+len(styleClose):]
	}
}
