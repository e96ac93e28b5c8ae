package cmd

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rangosemfila/consumo/internal/config"
	"github.com/rangosemfila/consumo/internal/model"
	"github.com/rangosemfila/consumo/internal/view"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderScreen_Populated(t *testing.T) {
	rep := &model.ConsumptionReport{
		Name: "Ana",
		Purchases: []model.DatePurchases{
			{Date: "2024-05-03", Lines: []model.PurchaseLine{
				{Item: "Banana", Quantity: 2_500_000, TotalPrice: 15_750_000, ByWeight: true},
			}},
			{Date: "2024-05-01", Lines: []model.PurchaseLine{
				{Item: "Suco", Quantity: 3, TotalPrice: 9.5},
			}},
		},
		Total: 42,
	}
	out := renderScreen(view.Render(view.StatePopulated, rep, map[string]bool{"2024-05-03": true}))

	for _, want := range []string{"Resumo do Consumo de Ana", "2024-05-03 " + view.IndicatorExpanded, "2024-05-01 " + view.IndicatorCollapsed, "2.500 kg Banana - R$ 15.75", "Total: R$ 42.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Suco") {
		t.Fatalf("collapsed date leaked its lines:\n%s", out)
	}
}

func TestRenderScreen_NotFoundAndLoading(t *testing.T) {
	if out := renderScreen(view.Render(view.StateNotFound, nil, nil)); !strings.Contains(out, "Aluno não encontrado.") {
		t.Fatalf("not-found text missing:\n%s", out)
	}
	if out := renderScreen(view.Render(view.StateLoading, nil, nil)); !strings.Contains(out, "Carregando...") {
		t.Fatalf("loading text missing:\n%s", out)
	}
}

func TestResolveIdentifier(t *testing.T) {
	defer func() { flagID = "" }()

	if got := resolveIdentifier([]string{"https://x/consumption?id=abc"}); got != "abc" {
		t.Fatalf("from url = %q", got)
	}
	flagID = "from-flag"
	if got := resolveIdentifier([]string{"abc"}); got != "from-flag" {
		t.Fatalf("--id should win, got %q", got)
	}
}

func TestApplySetup(t *testing.T) {
	cfg := config.DefaultConfig()
	err := applySetup(&cfg, setupValues{
		baseURL:   " http://localhost:9000/ ",
		timeout:   "10",
		addr:      "0.0.0.0:8081",
		themeName: "tokyo-night",
		journal:   false,
		retention: "7",
	})
	if err != nil {
		t.Fatalf("applySetup: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSec != 10 || cfg.Journal.RetentionDays != 7 || cfg.Journal.Enabled {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("Theme = %q", cfg.Appearance.Theme)
	}

	if err := applySetup(&cfg, setupValues{timeout: "x", retention: "1"}); err == nil {
		t.Error("expected error for bad timeout")
	}
}

func TestNonNegativeInt(t *testing.T) {
	for _, ok := range []string{"0", "30", " 5 "} {
		if err := nonNegativeInt(ok); err != nil {
			t.Errorf("nonNegativeInt(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "-1", "abc"} {
		if err := nonNegativeInt(bad); err == nil {
			t.Errorf("nonNegativeInt(%q) should fail", bad)
		}
	}
}
