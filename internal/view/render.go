package view

import (
	"github.com/rangosemfila/consumo/internal/cli"
	"github.com/rangosemfila/consumo/internal/model"
)

// User-facing text.
const (
	LoadingText  = "Carregando..."
	NotFoundText = "Aluno não encontrado."
	TitlePrefix  = "Resumo do Consumo de "
	SummaryLabel = "Total:"

	IndicatorExpanded  = "🔼"
	IndicatorCollapsed = "🔽"
)

// Screen is a display-ready rendering of the view. Hosts only lay it out.
type Screen struct {
	// State is StateLoading, StateNotFound or StatePopulated.
	State   State
	Message string

	Title        string
	Rows         []Row
	SummaryLabel string
	Total        string
}

// Row is one date group. Lines are always filled in; hosts show them
// only when Expanded is set.
type Row struct {
	Date      string
	Expanded  bool
	Indicator string
	Lines     []Line
}

// Line is one formatted purchase line.
type Line struct {
	Quantity string
	Item     string
	Price    string
	Text     string
}

// Render is a pure function of the view state, the accepted report and
// the expansion map.
func Render(state State, rep *model.ConsumptionReport, expanded map[string]bool) Screen {
	switch state {
	case StatePopulated:
		if rep == nil {
			return Screen{State: StateNotFound, Message: NotFoundText}
		}
		return populated(rep, expanded)
	case StateNotFound:
		return Screen{State: StateNotFound, Message: NotFoundText}
	default:
		// Idle and Resolving have not decided yet, so they look like Loading.
		return Screen{State: StateLoading, Message: LoadingText}
	}
}

func populated(rep *model.ConsumptionReport, expanded map[string]bool) Screen {
	s := Screen{
		State:        StatePopulated,
		Title:        TitlePrefix + rep.Name,
		Rows:         make([]Row, 0, len(rep.Purchases)),
		SummaryLabel: SummaryLabel,
		Total:        cli.FormatTotal(rep.Total),
	}

	for _, group := range rep.Purchases {
		open := expanded[group.Date]
		row := Row{
			Date:      group.Date,
			Expanded:  open,
			Indicator: IndicatorCollapsed,
			Lines:     make([]Line, 0, len(group.Lines)),
		}
		if open {
			row.Indicator = IndicatorExpanded
		}
		for _, l := range group.Lines {
			row.Lines = append(row.Lines, Line{
				Quantity: cli.FormatQuantity(l),
				Item:     l.Item,
				Price:    cli.FormatPrice(l),
				Text:     cli.FormatLine(l),
			})
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// Visible returns the lines a host should display for the row.
func (r Row) Visible() []Line {
	if !r.Expanded {
		return nil
	}
	return r.Lines
}
