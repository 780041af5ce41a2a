package plotpage

import (
	"errors"
	"fmt"
)

// Theme is a page color theme.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrUnknownTheme is returned by ParseTheme.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme converts a configuration value to a Theme.
func ParseTheme(name string) (Theme, error) {
	switch Theme(name) {
	case ThemeLight, ThemeDark:
		return Theme(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds the colors of one theme.
type ThemeConfig struct {
	Background  string
	Surface     string
	Border      string
	TextPrimary string
	TextMuted   string
	Accent      string

	Good    string
	Warning string
	Bad     string

	ChartGrid      string
	ChartAxis      string
	ChartText      string
	ChartTextMuted string
}

// GetThemeConfig returns the colors of theme; unknown themes are light.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// Palette returns the series colors of theme.
func Palette(theme Theme) []string {
	if theme == ThemeDark {
		return darkPalette
	}

	return lightPalette
}

// SeriesColor picks the palette color for the i-th series, cycling.
func SeriesColor(theme Theme, i int) string {
	palette := Palette(theme)

	return palette[((i%len(palette))+len(palette))%len(palette)]
}

// CoverageColor maps a coverage percent to the good, warning or bad color.
func CoverageColor(theme Theme, percent int) string {
	cfg := GetThemeConfig(theme)

	switch {
	case percent >= coverageGood:
		return cfg.Good
	case percent >= coverageFair:
		return cfg.Warning
	default:
		return cfg.Bad
	}
}

const (
	coverageGood = 80
	coverageFair = 50
)

var lightTheme = ThemeConfig{
	Background:  "#fafaf9", // stone-50.
	Surface:     "#ffffff",
	Border:      "#e7e5e4", // stone-200.
	TextPrimary: "#1c1917", // stone-900.
	TextMuted:   "#78716c", // stone-500.
	Accent:      "#a16207", // amber-700.

	Good:    "#16a34a",
	Warning: "#ca8a04",
	Bad:     "#dc2626",

	ChartGrid:      "#e7e5e4",
	ChartAxis:      "#a8a29e",
	ChartText:      "#44403c",
	ChartTextMuted: "#78716c",
}

var darkTheme = ThemeConfig{
	Background:  "#0c0a09", // stone-950.
	Surface:     "#1c1917", // stone-900.
	Border:      "#44403c", // stone-700.
	TextPrimary: "#fafaf9",
	TextMuted:   "#a8a29e",
	Accent:      "#d97706", // amber-600.

	Good:    "#22c55e",
	Warning: "#eab308",
	Bad:     "#ef4444",

	ChartGrid:      "#44403c",
	ChartAxis:      "#57534e",
	ChartText:      "#d6d3d1",
	ChartTextMuted: "#a8a29e",
}

var lightPalette = []string{
	"#a16207", "#0369a1", "#4d7c0f", "#7c3aed", "#be185d",
	"#0891b2", "#c2410c", "#4338ca", "#15803d", "#b91c1c",
}

var darkPalette = []string{
	"#fbbf24", "#38bdf8", "#a3e635", "#a78bfa", "#f472b6",
	"#22d3ee", "#fb923c", "#818cf8", "#4ade80", "#f87171",
}
