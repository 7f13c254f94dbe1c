package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SortCue renders the arrows that invite the grabbed launch to be moved.
// It is empty when not visible.
func SortCue(style lipgloss.Style, visible bool, scale int) string {
	if !visible {
		return ""
	}
	scale = max(scale, 1)
	return style.Render(strings.Repeat("◀", scale) + " " + strings.Repeat("▶", scale))
}
