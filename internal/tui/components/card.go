// Package components provides reusable TUI widgets for the consumo viewer.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rangosemfila/consumo/internal/tui/theme"
)

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	contentWidth := outerWidth - 2 // subtract border chars
	if contentWidth < 10 {
		contentWidth = 10
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(contentWidth).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n\n"
	}
	content += body

	return cardStyle.Render(content)
}

// FocusCard renders a centered card with an accent border, used for the
// loading and not-found states and the identifier prompt.
func FocusCard(body string) string {
	t := theme.Active

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(body)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	w := outerWidth - 4 // 2 border + 2 padding
	if w < 10 {
		w = 10
	}
	return w
}
