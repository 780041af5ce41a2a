package terminal

import (
	"strings"
	"unicode/utf8"
)

const (
	lineLight       = "─"
	lineHeavy       = "━"
	heavyVertical   = "┃"
	heavyTopLeft    = "┏"
	heavyTopRight   = "┓"
	heavyBottomLeft = "┗"
	heavyBottomRgt  = "┛"

	// HeaderPadding is the space between the header border and its text.
	HeaderPadding = 1
)

// DrawSeparator draws a thin horizontal line.
func DrawSeparator(width int) string {
	if width <= 0 {
		return ""
	}

	return strings.Repeat(lineLight, width)
}

// DrawHeader draws a heavy box with title on the left and rightText on the
// right. The box grows when the texts do not fit width.
func DrawHeader(title, rightText string, width int) string {
	titleLen := utf8.RuneCountInString(title)
	rightLen := utf8.RuneCountInString(rightText)

	width = max(width, titleLen+rightLen+3+2*HeaderPadding)
	inner := width - 2
	contentWidth := inner - 2*HeaderPadding

	content := PadRight(title, contentWidth)
	if rightText != "" {
		content = title + strings.Repeat(" ", max(contentWidth-titleLen-rightLen, 1)) + rightText
	}

	pad := strings.Repeat(" ", HeaderPadding)

	var sb strings.Builder

	sb.WriteString(heavyTopLeft + strings.Repeat(lineHeavy, inner) + heavyTopRight + "\n")
	sb.WriteString(heavyVertical + pad + content + pad + heavyVertical + "\n")
	sb.WriteString(heavyBottomLeft + strings.Repeat(lineHeavy, inner) + heavyBottomRgt)

	return sb.String()
}
