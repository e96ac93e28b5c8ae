package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestContentCard_IncludesTitleAndBody(t *testing.T) {
	card := ContentCard("Resumo", "linha 1\nlinha 2", 30)
	if !strings.Contains(card, "Resumo") || !strings.Contains(card, "linha 2") {
		t.Fatalf("card missing content:\n%s", card)
	}
	for _, line := range strings.Split(card, "\n") {
		if w := lipgloss.Width(line); w != 30 {
			t.Fatalf("line width = %d, want 30: %q", w, line)
		}
	}
}

func TestRenderStatusBar_FillsWidth(t *testing.T) {
	bar := RenderStatusBar(60, "[q]uit", "id abc")
	if w := lipgloss.Width(bar); w != 60 {
		t.Fatalf("status bar width = %d, want 60", w)
	}
	if !strings.HasSuffix(strings.TrimRight(bar, " "), "id abc") {
		t.Fatalf("info should be right-aligned: %q", bar)
	}
}

func TestCardInnerWidth(t *testing.T) {
	if got := CardInnerWidth(40); got != 36 {
		t.Fatalf("CardInnerWidth(40) = %d, want 36", got)
	}
	if got := CardInnerWidth(5); got != 10 {
		t.Fatalf("CardInnerWidth(5) = %d, want 10", got)
	}
}
