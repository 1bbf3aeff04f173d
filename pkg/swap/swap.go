// Package swap implements cross-currency conversion. Both sides are priced
// in USD, so converting is a valuation-preserving ratio of the two rates.
package swap

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrUnusable signals that a conversion cannot be computed: a missing or
// non-positive rate, or identical currencies. Swapping a currency into
// itself is invalid, not a no-op; callers reject it before confirm.
var ErrUnusable = errors.New("conversion unavailable")

// Convert returns amount valued in to-units: amount * rate(from) / rate(to).
// The result is full precision; truncate only for display.
func Convert(amount float64, from, to string, rates map[string]float64) (float64, error) {
	if from == to {
		return math.NaN(), ErrUnusable
	}
	rateFrom, okFrom := rates[from]
	rateTo, okTo := rates[to]
	if !okFrom || !okTo || rateFrom <= 0 || rateTo <= 0 {
		return math.NaN(), ErrUnusable
	}
	return amount * rateFrom / rateTo, nil
}

// Inverse converts an edited destination amount back into source units so
// the source field (and its validation) can follow a destination-side edit.
func Inverse(toAmount float64, from, to string, rates map[string]float64) (float64, error) {
	return Convert(toAmount, to, from, rates)
}

// Display truncates a converted value to the destination currency's
// fractional digits. Truncated, never rounded.
func Display(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloat(value).Truncate(int32(decimals)).StringFixed(int32(decimals))
}
