// Package tui provides the interactive Bubble Tea viewer for consumption reports.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rangosemfila/consumo/internal/cli"
	"github.com/rangosemfila/consumo/internal/model"
	"github.com/rangosemfila/consumo/internal/tui/components"
	"github.com/rangosemfila/consumo/internal/tui/theme"
	"github.com/rangosemfila/consumo/internal/view"
)

// ReportLoadedMsg is sent when a fetch started by the app finishes.
type ReportLoadedMsg struct {
	Req      view.Request
	Report   *model.ConsumptionReport
	Err      error
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	view    *view.View
	fetcher view.Fetcher

	// Fetch issued at mount, started by Init.
	initial    view.Request
	hasInitial bool
	loadTime   time.Duration

	// UI state
	width    int
	height   int
	cursor   int // selected date row
	offset   int // first visible list line
	showHelp bool

	// Identifier prompt
	editing bool
	input   textinput.Model

	spinner spinner.Model
}

const (
	minTerminalWidth = 40
	maxContentWidth  = 80

	minListHeight = 3 // list lines shown even when the window is too short
)

// NewApp creates the app and mounts its view for id. An empty id shows
// the not-found screen; press i to enter one.
func NewApp(f view.Fetcher, id string, log *zap.Logger) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	v := view.New(log)
	req, ok := v.Mount(view.IdentifierFromURL(id))

	return App{
		view:       v,
		fetcher:    f,
		initial:    req,
		hasInitial: ok,
		spinner:    sp,
		input:      newIdentifierInput(),
	}
}

func newIdentifierInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "id do aluno ou link da página"
	ti.CharLimit = 512
	ti.Width = 40
	return ti
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if !a.hasInitial {
		return nil
	}
	return tea.Batch(a.spinner.Tick, fetchCmd(a.fetcher, a.initial))
}

// fetchCmd runs one fetch off the update loop.
func fetchCmd(f view.Fetcher, req view.Request) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		rep, err := f.Fetch(context.Background(), req.ID)
		return ReportLoadedMsg{
			Req:      req,
			Report:   rep,
			Err:      err,
			LoadTime: time.Since(start),
		}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.scrollToCursor()
		return a, nil

	case spinner.TickMsg:
		if a.view.State() != view.StateLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ReportLoadedMsg:
		if a.view.Deliver(msg.Req, msg.Report, msg.Err) {
			a.loadTime = msg.LoadTime
			a.cursor, a.offset = 0, 0
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if a.editing {
			return a.updateIdentifierInput(msg)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "i", "/":
			a.editing = true
			a.input.SetValue("")
			a.input.Focus()
			return a, a.input.Cursor.BlinkCmd()
		case "r":
			return a, a.start(a.view.Reload())
		}

		if a.view.State() != view.StatePopulated {
			return a, nil
		}

		rows := a.view.Render().Rows
		switch key {
		case "j", "down":
			if a.cursor < len(rows)-1 {
				a.cursor++
			}
		case "k", "up":
			if a.cursor > 0 {
				a.cursor--
			}
		case "g", "home":
			a.cursor = 0
		case "G", "end":
			a.cursor = max(len(rows)-1, 0)
		case "ctrl+d", "pgdown":
			a.cursor = min(a.cursor+a.halfPage(), max(len(rows)-1, 0))
		case "ctrl+u", "pgup":
			a.cursor = max(a.cursor-a.halfPage(), 0)
		case "enter", " ":
			if a.cursor < len(rows) {
				a.view.ToggleDate(rows[a.cursor].Date)
			}
		case "a":
			a.view.SetAllExpanded(!allExpanded(rows))
		}
		a.scrollToCursor()
		return a, nil
	}

	return a, nil
}

func (a App) updateIdentifierInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.editing = false
		a.input.Blur()
		id := view.IdentifierFromURL(a.input.Value())
		return a, a.start(a.view.SetIdentifier(id))
	case "esc":
		a.editing = false
		a.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// start issues the fetch for req when there is one.
func (a *App) start(req view.Request, ok bool) tea.Cmd {
	a.cursor, a.offset = 0, 0
	if !ok {
		return nil
	}
	a.loadTime = 0
	return tea.Batch(a.spinner.Tick, fetchCmd(a.fetcher, req))
}

func allExpanded(rows []view.Row) bool {
	for _, r := range rows {
		if !r.Expanded {
			return false
		}
	}
	return len(rows) > 0
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n  consumo needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}

	if a.showHelp {
		return a.place(viewHelp())
	}

	if a.editing {
		return a.place(a.viewPrompt())
	}

	screen := a.view.Render()
	switch screen.State {
	case view.StatePopulated:
		return a.viewReport(screen)
	case view.StateNotFound:
		return a.place(a.viewNotFound(screen))
	default:
		return a.place(a.viewLoading(screen))
	}
}

func (a App) place(card string) string {
	t := theme.Active
	bar := a.statusBar()
	h := a.height - lipgloss.Height(bar)
	if h < 1 {
		h = 1
	}
	body := lipgloss.Place(a.width, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
	return lipgloss.JoinVertical(lipgloss.Left, body, bar)
}

func logo() string {
	return cli.RenderLogo(theme.Active.Accent, theme.Active.TextMuted)
}

func (a App) viewLoading(screen view.Screen) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logo())
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(muted.Render(" " + screen.Message))
	return components.FocusCard(b.String())
}

func (a App) viewNotFound(screen view.Screen) string {
	t := theme.Active
	warn := lipgloss.NewStyle().Foreground(t.Red).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(logo())
	b.WriteString("\n\n")
	b.WriteString(warn.Render(screen.Message))
	b.WriteString("\n\n")
	b.WriteString(dim.Render("[i] informar id  [q] sair"))
	return components.FocusCard(b.String())
}

func (a App) viewPrompt() string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(label.Render("Id do aluno"))
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")
	b.WriteString(dim.Render("[enter] buscar  [esc] cancelar"))
	return components.FocusCard(b.String())
}

// reportStyles holds the styles of the report card.
type reportStyles struct {
	date, selected, indicator, item, price, total, sep lipgloss.Style
}

func newReportStyles() reportStyles {
	t := theme.Active
	return reportStyles{
		date:      lipgloss.NewStyle().Foreground(t.TextPrimary),
		selected:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		indicator: lipgloss.NewStyle().Foreground(t.TextMuted),
		item:      lipgloss.NewStyle().Foreground(t.TextPrimary),
		price:     lipgloss.NewStyle().Foreground(t.Green),
		total:     lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true),
		sep:       lipgloss.NewStyle().Foreground(t.TextDim),
	}
}

// reportLines flattens the rows into one display line each (date headers
// and expanded purchase lines) and returns the first and last line index
// of the cursor row.
func (a App) reportLines(screen view.Screen, st reportStyles) (lines []string, first, last int) {
	clip := lipgloss.NewStyle().MaxWidth(components.CardInnerWidth(a.contentWidth()))

	for i, row := range screen.Rows {
		marker := "  "
		style := st.date
		if i == a.cursor {
			marker = st.selected.Render("▸ ")
			style = st.selected
			first = len(lines)
		}
		lines = append(lines, clip.Render(marker+style.Render(row.Date)+" "+st.indicator.Render(row.Indicator)))
		for _, line := range row.Visible() {
			lines = append(lines, clip.Render(fmt.Sprintf("    %s %s %s %s",
				st.item.Render(line.Quantity),
				st.item.Render(line.Item),
				st.sep.Render("-"),
				st.price.Render(line.Price))))
		}
		if i == a.cursor {
			last = len(lines) - 1
		}
	}
	return lines, first, last
}

func (a App) reportFooter(screen view.Screen, st reportStyles) string {
	return st.total.Render(screen.SummaryLabel) + " " + st.price.Bold(true).Render(screen.Total)
}

// listHeight is the number of list lines that fit between the logo and card
// chrome above and the total and status bar below.
func (a App) listHeight(screen view.Screen, st reportStyles) int {
	empty := logo() + "\n\n" + components.ContentCard(screen.Title, "\n"+a.reportFooter(screen, st), a.contentWidth())
	h := a.height - lipgloss.Height(a.statusBar()) - lipgloss.Height(empty)
	return max(h, minListHeight)
}

func (a App) halfPage() int {
	if a.view.State() != view.StatePopulated {
		return 1
	}
	return max(a.listHeight(a.view.Render(), newReportStyles())/2, 1)
}

// scrollToCursor moves the offset the least needed to keep the cursor row
// on screen, its expanded lines too when they fit.
func (a *App) scrollToCursor() {
	if a.view.State() != view.StatePopulated || a.height == 0 {
		a.offset = 0
		return
	}
	screen := a.view.Render()
	st := newReportStyles()
	lines, first, last := a.reportLines(screen, st)
	h := a.listHeight(screen, st)

	if last >= a.offset+h {
		a.offset = last - h + 1
	}
	if first < a.offset {
		a.offset = first
	}
	a.offset = max(min(a.offset, len(lines)-h), 0)
}

func (a App) viewReport(screen view.Screen) string {
	t := theme.Active
	st := newReportStyles()

	lines, _, _ := a.reportLines(screen, st)
	h := a.listHeight(screen, st)
	start := min(a.offset, len(lines))
	end := min(start+h, len(lines))

	var b strings.Builder
	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(screen.Rows) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(a.reportFooter(screen, st))

	card := components.ContentCard(screen.Title, b.String(), a.contentWidth())
	page := logo() + "\n\n" + card

	bar := a.statusBar()
	body := lipgloss.Place(a.width, max(a.height-lipgloss.Height(bar), 1), lipgloss.Center, lipgloss.Top, page,
		lipgloss.WithWhitespaceBackground(t.Background))
	return lipgloss.JoinVertical(lipgloss.Left, body, bar)
}

func (a App) statusBar() string {
	hints := "[?]ajuda  [i]d  [r]ecarregar  [q]sair"
	info := ""
	if id := a.view.Identifier(); id != "" {
		info = "id " + id
		if rep := a.view.Report(); rep != nil {
			info += fmt.Sprintf(" · %d itens", rep.LineCount())
		}
		if a.loadTime > 0 {
			info += " · " + cli.FormatLatency(a.loadTime)
		}
	}
	return components.RenderStatusBar(a.width, hints, info)
}

func viewHelp() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Atalhos"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"j k ↑ ↓", "Mover entre as datas"},
		{"Ctrl+d Ctrl+u", "Meia página abaixo / acima"},
		{"Enter Space", "Abrir / fechar data"},
		{"a", "Abrir / fechar todas"},
		{"i /", "Informar outro id"},
		{"r", "Recarregar"},
		{"?", "Ajuda"},
		{"q", "Sair"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-11s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Qualquer tecla fecha"))
	return components.FocusCard(b.String())
}
