package cmd

import (
	"strings"

	"github.com/rangosemfila/consumo/internal/cli"
	"github.com/rangosemfila/consumo/internal/view"
)

// renderScreen lays out a rendered view for stdout.
func renderScreen(s view.Screen) string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(cli.RenderLogo(cli.ColorAccent, cli.ColorTextMuted))
	b.WriteString("\n\n")

	switch s.State {
	case view.StatePopulated:
		b.WriteString(cli.RenderTitle(s.Title))
		b.WriteString("\n\n")
		for _, row := range s.Rows {
			b.WriteString(cli.RenderDateRow(row.Date, row.Indicator, row.Expanded))
			b.WriteString("\n")
			for _, l := range row.Visible() {
				b.WriteString(cli.RenderItemLine(l.Quantity, l.Item, l.Price))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(cli.RenderSummary(s.SummaryLabel, s.Total))
		b.WriteString("\n\n")
	case view.StateNotFound:
		b.WriteString("  ")
		b.WriteString(cli.RenderWarning(s.Message))
		b.WriteString("\n\n")
	default:
		b.WriteString("  ")
		b.WriteString(cli.RenderMuted(s.Message))
		b.WriteString("\n\n")
	}
	return b.String()
}
