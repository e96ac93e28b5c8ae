// Package model defines the consumption report types shared by the client and the views.
package model

// ConsumptionReport is one client's purchase history, grouped by date.
// Purchases keeps the order in which the API listed the dates.
type ConsumptionReport struct {
	Name      string
	Purchases []DatePurchases
	Total     float64 // currency units, as computed by the backend
}

// DatePurchases holds the lines bought on a single date label.
type DatePurchases struct {
	Date  string
	Lines []PurchaseLine
}

// PurchaseLine is a single item on a report.
// For ByWeight lines Quantity and TotalPrice are micro-units (x1,000,000).
type PurchaseLine struct {
	Item       string
	Quantity   float64
	UnitPrice  float64
	TotalPrice float64
	ByWeight   bool
}

// MicroUnit is the scale factor applied to byWeight quantities and prices.
const MicroUnit = 1_000_000

// Dates returns the date labels in source order.
func (r *ConsumptionReport) Dates() []string {
	if r == nil {
		return nil
	}
	dates := make([]string, 0, len(r.Purchases))
	for _, p := range r.Purchases {
		dates = append(dates, p.Date)
	}
	return dates
}

// LineCount returns the number of purchase lines across all dates.
func (r *ConsumptionReport) LineCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, p := range r.Purchases {
		n += len(p.Lines)
	}
	return n
}
