package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Format renders a monetary value for display with two decimals and a
// currency sign. Calculation stays in float64; rounding happens only here,
// at the display edge. Non-finite values render as zero instead of letting
// decimal.NewFromFloat panic mid-render.
func Format(v float64) string {
	return "$" + decimal.NewFromFloat(finite(v)).StringFixed(2)
}

// Round2 rounds a monetary value to two decimals for embedding in stored
// summaries and chart data.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(finite(v)).Round(2).Float64()
	return f
}

// FormatPercent renders a fraction in [0,1] as a percentage with one decimal.
func FormatPercent(frac float64) string {
	return decimal.NewFromFloat(finite(frac)*100).StringFixed(1) + "%"
}

func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
