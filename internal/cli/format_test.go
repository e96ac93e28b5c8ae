package cli

import (
	"testing"
	"time"

	"github.com/rangosemfila/consumo/internal/model"
)

func TestFormatQuantityAndPrice_ByWeight(t *testing.T) {
	l := model.PurchaseLine{Item: "Banana", Quantity: 2_500_000, TotalPrice: 15_750_000, ByWeight: true}

	if got := FormatQuantity(l); got != "2.500 kg" {
		t.Fatalf("FormatQuantity = %q, want %q", got, "2.500 kg")
	}
	if got := FormatPrice(l); got != "R$ 15.75" {
		t.Fatalf("FormatPrice = %q, want %q", got, "R$ 15.75")
	}
	if got := FormatLine(l); got != "2.500 kg Banana - R$ 15.75" {
		t.Fatalf("FormatLine = %q", got)
	}
}

func TestFormatQuantityAndPrice_ByCount(t *testing.T) {
	l := model.PurchaseLine{Item: "Suco", Quantity: 3, TotalPrice: 9.5}

	if got := FormatQuantity(l); got != "3x" {
		t.Fatalf("FormatQuantity = %q, want %q", got, "3x")
	}
	if got := FormatPrice(l); got != "R$ 9.50" {
		t.Fatalf("FormatPrice = %q, want %q", got, "R$ 9.50")
	}
	if got := FormatLine(l); got != "3x Suco - R$ 9.50" {
		t.Fatalf("FormatLine = %q", got)
	}
}

func TestFormatTotal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{42, "R$ 42.00"},
		{0, "R$ 0.00"},
		{12.345678, "R$ 12.35"},
		{1234.5, "R$ 1234.50"},
	}
	for _, tt := range tests {
		if got := FormatTotal(tt.in); got != tt.want {
			t.Errorf("FormatTotal(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// These match what a browser prints for (x).toFixed(places).
func TestToFixed_MatchesJavaScript(t *testing.T) {
	tests := []struct {
		in     float64
		places int32
		want   string
	}{
		{1.005, 2, "1.00"}, // binary value is just below the tie
		{0.125, 2, "0.13"}, // exact tie rounds away from zero
		{2.5, 0, "3"},
		{-2.5, 0, "-3"},
		{-0.0, 2, "0.00"},
		{-0.001, 2, "-0.00"},
		{1.45, 1, "1.4"},
		{1.5, 0, "2"},
		{0.1 + 0.2, 2, "0.30"},
		{1_234_567 / 1e6, 3, "1.235"},
		{10, 3, "10.000"},
	}
	for _, tt := range tests {
		if got := ToFixed(tt.in, tt.places); got != tt.want {
			t.Errorf("ToFixed(%v, %d) = %q, want %q", tt.in, tt.places, got, tt.want)
		}
	}
}

func TestFormatQuantity_FractionalCount(t *testing.T) {
	l := model.PurchaseLine{Quantity: 2.5}
	if got := FormatQuantity(l); got != "2.5x" {
		t.Fatalf("FormatQuantity = %q, want %q", got, "2.5x")
	}
}

func TestFormatLatency(t *testing.T) {
	if got := FormatLatency(850 * time.Millisecond); got != "850ms" {
		t.Errorf("FormatLatency(850ms) = %q", got)
	}
	if got := FormatLatency(2300 * time.Millisecond); got != "2.3s" {
		t.Errorf("FormatLatency(2.3s) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-1000); got != "-1,000" {
		t.Errorf("FormatNumber = %q", got)
	}
}
