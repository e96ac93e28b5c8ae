package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rangosemfila/consumo/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// info (identifier, load time) on the right.
func RenderStatusBar(width int, hints, info string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " " + hints
	right := ""
	if info != "" {
		right = info + " "
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
