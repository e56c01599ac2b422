package cart

import (
	"math"

	"github.com/shopspring/decimal"
)

// maxMoney caps every monetary value to guard against corrupted input.
var maxMoney = decimal.RequireFromString("999999.99")

var minMoney = maxMoney.Neg()

const (
	minQuantity = 1
	maxQuantity = 9999
)

// sanitizeMoney converts an untrusted price input to a safe monetary value.
// Prices are never negative; NaN, infinite and negative inputs coerce to zero.
// The result is rounded to 2 decimal places and capped at maxMoney.
func sanitizeMoney(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.GreaterThan(maxMoney) {
		return maxMoney
	}
	return d
}

// sanitizeSignedMoney is sanitizeMoney for values where the sign is
// meaningful (adjustment amounts: negative = discount, positive = surcharge).
func sanitizeSignedMoney(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.GreaterThan(maxMoney) {
		return maxMoney
	}
	if d.LessThan(minMoney) {
		return minMoney
	}
	return d
}

// sanitizeSignedDecimal clamps a signed decimal into [-maxMoney, maxMoney].
func sanitizeSignedDecimal(d decimal.Decimal) decimal.Decimal {
	d = d.Round(2)
	if d.GreaterThan(maxMoney) {
		return maxMoney
	}
	if d.LessThan(minMoney) {
		return minMoney
	}
	return d
}

// sanitizeDecimal re-sanitizes a monetary value that already arrived as a
// decimal (catalog snapshots, inbound order rows).
func sanitizeDecimal(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	d = d.Round(2)
	if d.GreaterThan(maxMoney) {
		return maxMoney
	}
	return d
}

// clampQuantity clamps a quantity into [1, 9999].
func clampQuantity(q int) int {
	if q < minQuantity {
		return minQuantity
	}
	if q > maxQuantity {
		return maxQuantity
	}
	return q
}

// SanitizeQuantity rounds an untrusted numeric quantity input to the nearest
// integer and clamps it into the valid range. Used at the JSON boundary where
// quantities arrive as arbitrary numbers.
func SanitizeQuantity(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return minQuantity
	}
	return clampQuantity(int(math.Round(v)))
}
