package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the display width of s. Stage names are plain ASCII,
// but run refs can carry arbitrary branch names, so wide runes are counted
// at their terminal-cell width.
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate trims s to at most width terminal cells. With ellipsis, a single
// "…" rune marks the cut so long target triples in stage names lose as little
// as possible.
func Truncate(s string, width int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if width <= 0 {
		return ""
	}
	if VisualWidth(s) <= width {
		return s
	}
	if ellipsis && width > 1 {
		return runewidth.Truncate(s, width-1, "") + "…"
	}
	return runewidth.Truncate(s, width, "")
}

// TruncateAndPad fits s to exactly width cells. Used for dashboard table
// cells so columns stay aligned regardless of content.
func TruncateAndPad(s string, width int, ellipsis bool) string {
	return runewidth.FillRight(Truncate(s, width, ellipsis), width)
}
