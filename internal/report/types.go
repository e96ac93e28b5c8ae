package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rangosemfila/consumo/internal/model"
)

var errDuplicateDate = errors.New("duplicate date key")

// reportResponse is the raw API payload. Pointer fields tell a missing
// value apart from a zero one so validation can reject absent fields;
// an empty name is still a name.
type reportResponse struct {
	Name      *string         `json:"name" validate:"required"`
	Purchases *purchaseGroups `json:"purchases" validate:"required,dive"`
	Total     *Number         `json:"total" validate:"required"`
}

// purchaseGroups is the "purchases" object decoded in key order.
type purchaseGroups []purchaseGroup

type purchaseGroup struct {
	Date  string
	Lines []purchaseLine `validate:"required,dive"`
}

type purchaseLine struct {
	Item       string  `json:"item" validate:"required"`
	Quantity   *Number `json:"quantity" validate:"required"`
	UnitPrice  *Number `json:"unitPrice" validate:"required"`
	TotalPrice *Number `json:"totalPrice" validate:"required"`
	ByWeight   bool    `json:"byWeight"`
}

// Number is a JSON number that the API sometimes sends as a numeric string.
type Number float64

// UnmarshalJSON accepts 12, 12.5, "12" and " 12.5 ".
func (n *Number) UnmarshalJSON(data []byte) error {
	v, ok := parseNumber(data)
	if !ok {
		return fmt.Errorf("not a number: %s", data)
	}
	*n = Number(v)
	return nil
}

// parseNumber defensively parses a field that may be a number or a string.
func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// UnmarshalJSON walks the object token by token so date order is kept.
func (g *purchaseGroups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("purchases: expected object, got %v", tok)
	}

	groups := purchaseGroups{}
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		date, _ := keyTok.(string)
		if _, dup := seen[date]; dup {
			return fmt.Errorf("purchases: %w %q", errDuplicateDate, date)
		}
		seen[date] = struct{}{}

		var lines []purchaseLine
		if err := dec.Decode(&lines); err != nil {
			return fmt.Errorf("purchases[%s]: %w", date, err)
		}
		groups = append(groups, purchaseGroup{Date: date, Lines: lines})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*g = groups
	return nil
}

func (r *reportResponse) toModel() *model.ConsumptionReport {
	rep := &model.ConsumptionReport{
		Name:  *r.Name,
		Total: float64(*r.Total),
	}
	for _, g := range *r.Purchases {
		dp := model.DatePurchases{
			Date:  g.Date,
			Lines: make([]model.PurchaseLine, 0, len(g.Lines)),
		}
		for _, l := range g.Lines {
			dp.Lines = append(dp.Lines, model.PurchaseLine{
				Item:       l.Item,
				Quantity:   float64(*l.Quantity),
				UnitPrice:  float64(*l.UnitPrice),
				TotalPrice: float64(*l.TotalPrice),
				ByWeight:   l.ByWeight,
			})
		}
		rep.Purchases = append(rep.Purchases, dp)
	}
	return rep
}
