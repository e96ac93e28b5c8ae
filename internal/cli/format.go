// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rangosemfila/consumo/internal/model"
)

// CurrencyPrefix precedes every price and total.
const CurrencyPrefix = "R$ "

// ToFixed renders x with exactly places decimals the way JavaScript's
// Number.prototype.toFixed does: the exact binary value is rounded,
// ties away from zero.
func ToFixed(x float64, places int32) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}

	// 1100 digits covers the longest exact expansion of a float64.
	exact := new(big.Float).SetFloat64(x).Text('f', 1100)
	s := decimal.RequireFromString(exact).StringFixed(places)
	if x < 0 && !strings.HasPrefix(s, "-") {
		// -0.001 -> "-0.00"
		s = "-" + s
	}
	return s
}

// FormatQuantity formats a line quantity.
// e.g., byWeight 2500000 -> "2.500 kg", 3 -> "3x"
func FormatQuantity(l model.PurchaseLine) string {
	if l.ByWeight {
		return ToFixed(l.Quantity/model.MicroUnit, 3) + " kg"
	}
	return strconv.FormatFloat(l.Quantity, 'f', -1, 64) + "x"
}

// FormatPrice formats a line total in currency units.
// e.g., byWeight 15750000 -> "R$ 15.75", 9.5 -> "R$ 9.50"
func FormatPrice(l model.PurchaseLine) string {
	price := l.TotalPrice
	if l.ByWeight {
		price /= model.MicroUnit
	}
	return CurrencyPrefix + ToFixed(price, 2)
}

// FormatTotal formats the report grand total.
func FormatTotal(total float64) string {
	return CurrencyPrefix + ToFixed(total, 2)
}

// FormatLine renders a purchase line as "<quantity> <item> - <price>".
func FormatLine(l model.PurchaseLine) string {
	return fmt.Sprintf("%s %s - %s", FormatQuantity(l), l.Item, FormatPrice(l))
}

// FormatLatency formats a request duration.
// e.g., 850ms -> "850ms", 2300ms -> "2.3s"
func FormatLatency(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
