package terminal

import "github.com/fatih/color"

// Color is a semantic output color.
type Color int

// Colors.
const (
	ColorNone Color = iota
	ColorGreen
	ColorYellow
	ColorRed
	ColorBlue
	ColorGray
)

// Coverage thresholds in percent.
const (
	CoverageGood = 80
	CoverageFair = 50
)

var attributes = map[Color]color.Attribute{
	ColorGreen:  color.FgGreen,
	ColorYellow: color.FgYellow,
	ColorRed:    color.FgRed,
	ColorBlue:   color.FgBlue,
	ColorGray:   color.FgHiBlack,
}

// Colorize wraps text in the color's escape codes unless NoColor is set.
func (c Config) Colorize(text string, col Color) string {
	attr, ok := attributes[col]
	if !ok || c.NoColor {
		return text
	}

	painter := color.New(attr)
	painter.EnableColor()

	return painter.Sprint(text)
}

// ColorForCoverage picks green, yellow or red for a coverage percent.
func ColorForCoverage(percent int) Color {
	switch {
	case percent >= CoverageGood:
		return ColorGreen
	case percent >= CoverageFair:
		return ColorYellow
	default:
		return ColorRed
	}
}
