package cart

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotal(t *testing.T) {
	mods := []ItemModifier{
		{ID: "mod-1", Name: "Extra cheese", Price: dec("1.50")},
		{ID: "mod-2", Name: "Bacon", Price: dec("2.00")},
	}

	total := ComputeTotal(dec("10.00"), mods, dec("0.50"), 3)

	// (10.00 + 1.50 + 2.00 + 0.50) * 3 = 42.00
	if !total.Equal(dec("42.00")) {
		t.Errorf("total: got %s, want 42.00", total)
	}
}

func TestComputeTotalNoAddons(t *testing.T) {
	total := ComputeTotal(dec("7.25"), nil, decimal.Zero, 2)
	if !total.Equal(dec("14.50")) {
		t.Errorf("total: got %s, want 14.50", total)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	it := Item{
		ProductID: "p1",
		Quantity:  2,
		UnitPrice: dec("5.00"),
		Modifiers: []ItemModifier{{ID: "m1", Price: dec("0.75")}},
	}
	it.recompute()
	first := it.TotalPrice
	it.recompute()

	if !it.TotalPrice.Equal(first) {
		t.Errorf("recompute changed total: %s -> %s", first, it.TotalPrice)
	}
	if !first.Equal(dec("11.50")) {
		t.Errorf("total: got %s, want 11.50", first)
	}
}

func TestGroupKeyIgnoresModifierOrder(t *testing.T) {
	a := Item{
		ProductID: "p1",
		Modifiers: []ItemModifier{{ID: "m1"}, {ID: "m2"}},
	}
	b := Item{
		ProductID: "p1",
		Modifiers: []ItemModifier{{ID: "m2"}, {ID: "m1"}},
	}

	if !equivalent(a, b, false) {
		t.Error("modifier order should not affect equivalence")
	}
}

func TestGroupKeyDistinguishesVariantAndNotes(t *testing.T) {
	base := Item{ProductID: "p1", VariantID: "v1"}

	noVariant := base
	noVariant.VariantID = ""
	if equivalent(base, noVariant, false) {
		t.Error("variant should affect equivalence")
	}

	withNotes := base
	withNotes.PreparationNotes = "no onions"
	if equivalent(base, withNotes, false) {
		t.Error("preparation notes should affect equivalence")
	}
}

func TestGroupKeyStatusParticipation(t *testing.T) {
	a := Item{ProductID: "p1", PreparationStatus: "PENDING"}
	b := Item{ProductID: "p1", PreparationStatus: "READY"}

	if equivalent(a, b, true) {
		t.Error("status should split lines when included in the key")
	}
	if !equivalent(a, b, false) {
		t.Error("status should be ignored when excluded from the key")
	}
}

func TestGroupKeyNilVariantDoesNotCollideWithLiteral(t *testing.T) {
	// A missing variant encodes as "null"; a product id ending differently
	// must not produce the same key.
	a := Item{ProductID: "p1", VariantID: ""}
	key := a.groupKey(false)
	if !strings.Contains(key, "|null|") {
		t.Errorf("empty variant should encode as null placeholder, got %q", key)
	}
}

func TestLocked(t *testing.T) {
	cases := map[string]bool{
		"NEW":         false,
		"PENDING":     false,
		"IN_PROGRESS": false,
		"READY":       true,
		"DELIVERED":   true,
		"CANCELLED":   false,
		"":            false,
	}
	for status, want := range cases {
		it := Item{PreparationStatus: status}
		if it.Locked() != want {
			t.Errorf("Locked() for %q: got %v, want %v", status, it.Locked(), want)
		}
	}
}

func TestIsNew(t *testing.T) {
	if !(Item{ID: NewTempID()}).IsNew() {
		t.Error("temp-id item should be new")
	}
	if (Item{ID: "server-row-1"}).IsNew() {
		t.Error("server-id item should not be new")
	}
}

func TestSanitizeQuantity(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{3, 3},
		{2.6, 3},
		{0, 1},
		{-5, 1},
		{100000, 9999},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}
	for _, c := range cases {
		if got := SanitizeQuantity(c.in); got != c.want {
			t.Errorf("SanitizeQuantity(%v): got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSanitizeMoney(t *testing.T) {
	if !sanitizeMoney(-5).Equal(decimal.Zero) {
		t.Error("negative price should coerce to zero")
	}
	if !sanitizeMoney(math.NaN()).Equal(decimal.Zero) {
		t.Error("NaN should coerce to zero")
	}
	if !sanitizeMoney(2000000).Equal(maxMoney) {
		t.Error("oversized price should cap at maxMoney")
	}
	if !sanitizeMoney(9.999).Equal(dec("10.00")) {
		t.Errorf("price should round to 2 decimals, got %s", sanitizeMoney(9.999))
	}
}

func TestSanitizeSignedMoney(t *testing.T) {
	if !sanitizeSignedMoney(-10.5).Equal(dec("-10.5")) {
		t.Error("negative adjustment values must keep their sign")
	}
	if !sanitizeSignedMoney(-2000000).Equal(minMoney) {
		t.Error("oversized negative value should clamp at minMoney")
	}
}
