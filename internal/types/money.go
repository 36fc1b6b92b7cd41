package types

import "github.com/shopspring/decimal"

// Round2 rounds v to two decimal places, half away from zero. Used for money
// (cents) and percentages in every engine output.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
