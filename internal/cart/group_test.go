package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

// stubResolver resolves every modifier id to a fixed-price snapshot, the way
// a menu lookup would.
func stubResolver(id string) ItemModifier {
	return ItemModifier{ID: id, Name: "Resolved " + id, Price: dec("1.00")}
}

func TestGroupItemsMergesIdenticalRows(t *testing.T) {
	rows := []OrderItemRow{
		{ID: "r1", ProductID: "p1", ProductName: "Margherita", BasePrice: 10, PreparationStatus: "PENDING"},
		{ID: "r2", ProductID: "p1", ProductName: "Margherita", BasePrice: 10, PreparationStatus: "PENDING"},
		{ID: "r3", ProductID: "p1", ProductName: "Margherita", BasePrice: 10, PreparationStatus: "PENDING"},
	}

	items := GroupItems(rows, stubResolver)

	if len(items) != 1 {
		t.Fatalf("expected 1 display line, got %d", len(items))
	}
	line := items[0]
	if line.Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", line.Quantity)
	}
	if len(line.BackendIDs) != 3 {
		t.Fatalf("backend ids: got %d, want 3", len(line.BackendIDs))
	}
	want := []string{"r1", "r2", "r3"}
	for i, id := range want {
		if line.BackendIDs[i] != id {
			t.Errorf("backend id %d: got %s, want %s", i, line.BackendIDs[i], id)
		}
	}
	if line.ID != "r1" {
		t.Errorf("line id should be the first row id, got %s", line.ID)
	}
	if !line.TotalPrice.Equal(dec("30.00")) {
		t.Errorf("total: got %s, want 30.00", line.TotalPrice)
	}
}

func TestGroupItemsSplitsOnStatus(t *testing.T) {
	rows := []OrderItemRow{
		{ID: "r1", ProductID: "p1", BasePrice: 10, PreparationStatus: "PENDING"},
		{ID: "r2", ProductID: "p1", BasePrice: 10, PreparationStatus: "READY"},
	}

	items := GroupItems(rows, stubResolver)

	if len(items) != 2 {
		t.Fatalf("rows with different statuses must not merge, got %d lines", len(items))
	}
	if items[0].PreparationStatus != "PENDING" || items[1].PreparationStatus != "READY" {
		t.Errorf("statuses: got %s/%s", items[0].PreparationStatus, items[1].PreparationStatus)
	}
}

func TestGroupItemsSplitsOnNotes(t *testing.T) {
	rows := []OrderItemRow{
		{ID: "r1", ProductID: "p1", BasePrice: 10},
		{ID: "r2", ProductID: "p1", BasePrice: 10, PreparationNotes: "extra spicy"},
	}

	items := GroupItems(rows, stubResolver)

	if len(items) != 2 {
		t.Fatalf("rows with different notes must not merge, got %d lines", len(items))
	}
}

func TestGroupItemsPreservesInsertionOrder(t *testing.T) {
	rows := []OrderItemRow{
		{ID: "r1", ProductID: "p1", BasePrice: 10},
		{ID: "r2", ProductID: "p2", BasePrice: 5},
		{ID: "r3", ProductID: "p1", BasePrice: 10},
	}

	items := GroupItems(rows, stubResolver)

	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].ProductID != "p1" || items[1].ProductID != "p2" {
		t.Errorf("insertion order not preserved: %s, %s", items[0].ProductID, items[1].ProductID)
	}
	if items[0].Quantity != 2 {
		t.Errorf("later duplicate should merge into the first line, quantity got %d", items[0].Quantity)
	}
}

func TestNormalizeModifiersResolvesReferences(t *testing.T) {
	row := OrderItemRow{
		ID:        "r1",
		ProductID: "p1",
		BasePrice: 10,
		Modifiers: []ModifierRef{{ModifierID: "m1"}, {ModifierID: "m2"}},
	}

	items := GroupItems([]OrderItemRow{row}, stubResolver)

	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	mods := items[0].Modifiers
	if len(mods) != 2 {
		t.Fatalf("modifiers: got %d, want 2", len(mods))
	}
	if mods[0].Name != "Resolved m1" {
		t.Errorf("modifier should come from the resolver, got %q", mods[0].Name)
	}
	// base 10 + two resolved 1.00 modifiers
	if !items[0].TotalPrice.Equal(dec("12.00")) {
		t.Errorf("total: got %s, want 12.00", items[0].TotalPrice)
	}
}

func TestNormalizeModifiersLegacyEmbeddedWins(t *testing.T) {
	// Legacy rows carry the full modifier object with the price snapshot
	// taken at order time; that snapshot wins over a fresh menu lookup.
	row := OrderItemRow{
		ID:        "r1",
		ProductID: "p1",
		BasePrice: 10,
		Modifiers: []ModifierRef{{ModifierID: "m1"}},
		ProductModifiers: []EmbeddedModifier{
			{ID: "m1", Name: "Old cheese", Price: 2.50},
		},
	}

	items := GroupItems([]OrderItemRow{row}, stubResolver)

	mods := items[0].Modifiers
	if len(mods) != 1 {
		t.Fatalf("modifiers: got %d, want 1", len(mods))
	}
	if mods[0].Name != "Old cheese" {
		t.Errorf("embedded modifier should win, got %q", mods[0].Name)
	}
	if !mods[0].Price.Equal(dec("2.50")) {
		t.Errorf("embedded price snapshot should win, got %s", mods[0].Price)
	}
}

func TestGroupItemsMergesRowsWithEquivalentModifierSets(t *testing.T) {
	rows := []OrderItemRow{
		{ID: "r1", ProductID: "p1", BasePrice: 10, Modifiers: []ModifierRef{{ModifierID: "m1"}, {ModifierID: "m2"}}},
		{ID: "r2", ProductID: "p1", BasePrice: 10, Modifiers: []ModifierRef{{ModifierID: "m2"}, {ModifierID: "m1"}}},
	}

	items := GroupItems(rows, stubResolver)

	if len(items) != 1 {
		t.Fatalf("modifier order must not prevent merging, got %d lines", len(items))
	}
	if items[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", items[0].Quantity)
	}
}

func TestGroupItemsPizzaCustomizations(t *testing.T) {
	rows := []OrderItemRow{
		{
			ID: "r1", ProductID: "pizza-1", BasePrice: 12, PizzaExtraCost: 1.5,
			PizzaCustomizations: []PizzaCustomizationRow{
				{PizzaCustomizationID: "c1", Half: "HALF_1", Action: "ADD"},
			},
		},
		{
			ID: "r2", ProductID: "pizza-1", BasePrice: 12, PizzaExtraCost: 1.5,
			PizzaCustomizations: []PizzaCustomizationRow{
				{PizzaCustomizationID: "c1", Half: "HALF_2", Action: "ADD"},
			},
		},
	}

	items := GroupItems(rows, stubResolver)

	if len(items) != 2 {
		t.Fatalf("different halves must not merge, got %d lines", len(items))
	}
	if !items[0].TotalPrice.Equal(dec("13.50")) {
		t.Errorf("total should include pizza extra cost, got %s", items[0].TotalPrice)
	}
}

func TestGroupItemsSanitizesCorruptPrices(t *testing.T) {
	rows := []OrderItemRow{
		{ID: "r1", ProductID: "p1", BasePrice: -10},
	}

	items := GroupItems(rows, stubResolver)

	if !items[0].UnitPrice.Equal(decimal.Zero) {
		t.Errorf("negative inbound price should coerce to zero, got %s", items[0].UnitPrice)
	}
}
