package terminal

import (
	"fmt"
	"strings"
)

// Bar glyphs.
const (
	BarFilled = "█"
	BarEmpty  = "░"
)

const percentMax = 100

// DrawBar draws a bar of width cells, filled to percent (clamped to 0..100).
func DrawBar(percent, width int) string {
	if width <= 0 {
		return ""
	}

	percent = min(max(percent, 0), percentMax)
	filled := percent * width / percentMax

	return strings.Repeat(BarFilled, filled) + strings.Repeat(BarEmpty, width-filled)
}

// DrawCoverageBar renders "label  ████░░  68%  (106)".
func (c Config) DrawCoverageBar(label string, percent, count, labelWidth, barWidth int) string {
	bar := c.Colorize(DrawBar(percent, barWidth), ColorForCoverage(percent))

	return fmt.Sprintf("%s %s %3d%%  (%d)", PadRight(label, labelWidth), bar, percent, count)
}
