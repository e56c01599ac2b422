package cart

import (
	"github.com/shopspring/decimal"
)

// Adjustment is a named percentage or fixed modifier to the order subtotal.
// There is no separate discount/surcharge type: the sign of Value/Amount
// encodes intent (negative = discount, positive = surcharge).
//
// Exactly one of Value (when IsPercentage) or Amount (when not) is
// authoritative; the other field is ignored. A soft-deleted adjustment stays
// in the working list so it can be restored, but is excluded from every total
// and from the outgoing payload.
type Adjustment struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	IsPercentage bool            `json:"is_percentage"`
	Value        decimal.Decimal `json:"value"`
	Amount       decimal.Decimal `json:"amount"`
	IsNew        bool            `json:"is_new,omitempty"`
	IsDeleted    bool            `json:"is_deleted,omitempty"`
}

// ResolveAmount resolves the monetary effect of the adjustment against the
// given subtotal.
func (a Adjustment) ResolveAmount(subtotal decimal.Decimal) decimal.Decimal {
	if a.IsPercentage {
		return subtotal.Mul(a.Value).Div(decimal.NewFromInt(100)).Round(2)
	}
	return a.Amount
}

// AdjustmentsTotal sums the resolved amounts of all live adjustments.
func AdjustmentsTotal(adjustments []Adjustment, subtotal decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range adjustments {
		if a.IsDeleted {
			continue
		}
		total = total.Add(a.ResolveAmount(subtotal))
	}
	return total
}

// OrderTotal applies the adjustments to the subtotal. The result never goes
// negative regardless of discount magnitude; over-discounting clamps to zero.
func OrderTotal(subtotal decimal.Decimal, adjustments []Adjustment) decimal.Decimal {
	total := subtotal.Add(AdjustmentsTotal(adjustments, subtotal))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func adjustmentsEqual(a, b []Adjustment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].Name != b[i].Name ||
			a[i].IsPercentage != b[i].IsPercentage ||
			a[i].IsDeleted != b[i].IsDeleted ||
			!a[i].Value.Equal(b[i].Value) ||
			!a[i].Amount.Equal(b[i].Amount) {
			return false
		}
	}
	return true
}

func cloneAdjustments(in []Adjustment) []Adjustment {
	return append([]Adjustment(nil), in...)
}
