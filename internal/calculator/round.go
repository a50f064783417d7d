package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Decimal places of the presentation contract.
const (
	PricePlaces   = 2
	PercentPlaces = 4
)

// Round rounds v half away from zero to the given decimal places.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundPrice rounds a price field.
func RoundPrice(v float64) float64 { return Round(v, PricePlaces) }

// RoundPercent rounds a percentage field.
func RoundPercent(v float64) float64 { return Round(v, PercentPlaces) }
