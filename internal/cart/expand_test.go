package cart

import (
	"testing"
)

func TestExpandItemsCreateMode(t *testing.T) {
	it := Item{
		ID:        NewTempID(),
		ProductID: "p1",
		VariantID: "v1",
		Quantity:  3,
		UnitPrice: dec("10.00"),
		Modifiers: []ItemModifier{{ID: "m1", Price: dec("1.00")}},
	}
	it.recompute()

	dtos := ExpandItems([]Item{it}, false)

	if len(dtos) != 3 {
		t.Fatalf("expected 3 DTOs, got %d", len(dtos))
	}
	for i, dto := range dtos {
		if dto.ID != "" {
			t.Errorf("DTO %d: creation mode must emit id-less DTOs, got %q", i, dto.ID)
		}
		if dto.ProductVariantID == nil || *dto.ProductVariantID != "v1" {
			t.Errorf("DTO %d: variant not carried", i)
		}
		if !dto.BasePrice.Equal(dec("10.00")) {
			t.Errorf("DTO %d: base price got %s", i, dto.BasePrice)
		}
		if !dto.FinalPrice.Equal(dec("11.00")) {
			t.Errorf("DTO %d: final price got %s, want per-unit 11.00", i, dto.FinalPrice)
		}
		if len(dto.ModifierIDs) != 1 || dto.ModifierIDs[0] != "m1" {
			t.Errorf("DTO %d: modifier ids got %v", i, dto.ModifierIDs)
		}
	}
}

func TestExpandItemsEditModeReusesBackendIDs(t *testing.T) {
	it := Item{
		ID:         "r1",
		BackendIDs: []string{"r1", "r2"},
		ProductID:  "p1",
		Quantity:   5,
		UnitPrice:  dec("4.00"),
	}
	it.recompute()

	dtos := ExpandItems([]Item{it}, true)

	if len(dtos) != 5 {
		t.Fatalf("expected 5 DTOs, got %d", len(dtos))
	}
	if dtos[0].ID != "r1" || dtos[1].ID != "r2" {
		t.Errorf("first DTOs should reuse backend ids in order, got %q, %q", dtos[0].ID, dtos[1].ID)
	}
	for i := 2; i < 5; i++ {
		if dtos[i].ID != "" {
			t.Errorf("DTO %d: surplus units must be create DTOs, got id %q", i, dtos[i].ID)
		}
	}
}

func TestExpandItemsEditModeQuantityBelowBackendIDs(t *testing.T) {
	// Quantity reduced from 3 to 2: only the first two ids survive, the
	// third row is implicitly deleted by its absence.
	it := Item{
		ID:         "r1",
		BackendIDs: []string{"r1", "r2", "r3"},
		ProductID:  "p1",
		Quantity:   2,
		UnitPrice:  dec("4.00"),
	}
	it.recompute()

	dtos := ExpandItems([]Item{it}, true)

	if len(dtos) != 2 {
		t.Fatalf("expected 2 DTOs, got %d", len(dtos))
	}
	if dtos[0].ID != "r1" || dtos[1].ID != "r2" {
		t.Errorf("ids should be reused in order, got %q, %q", dtos[0].ID, dtos[1].ID)
	}
}

func TestExpandItemsEditModeNewLineIgnoresBackendIDs(t *testing.T) {
	it := Item{
		ID:         NewTempID(),
		BackendIDs: []string{"stale-1"},
		ProductID:  "p1",
		Quantity:   2,
		UnitPrice:  dec("4.00"),
	}
	it.recompute()

	dtos := ExpandItems([]Item{it}, true)

	for i, dto := range dtos {
		if dto.ID != "" {
			t.Errorf("DTO %d: client-only lines must never reuse ids, got %q", i, dto.ID)
		}
	}
}

func TestGroupExpandRoundTrip(t *testing.T) {
	rows := []OrderItemRow{
		{ID: "r1", ProductID: "p1", BasePrice: 10, PreparationStatus: "PENDING"},
		{ID: "r2", ProductID: "p1", BasePrice: 10, PreparationStatus: "PENDING"},
		{ID: "r3", ProductID: "p2", BasePrice: 6, PreparationStatus: "PENDING"},
	}

	items := GroupItems(rows, stubResolver)
	dtos := ExpandItems(items, true)

	if len(dtos) != len(rows) {
		t.Fatalf("round trip changed row count: got %d, want %d", len(dtos), len(rows))
	}
	for i, row := range rows {
		if dtos[i].ID != row.ID {
			t.Errorf("row %d: id got %q, want %q", i, dtos[i].ID, row.ID)
		}
	}
}

func TestPerUnitPriceDividesTotal(t *testing.T) {
	it := Item{
		ProductID:      "p1",
		Quantity:       3,
		UnitPrice:      dec("10.00"),
		Modifiers:      []ItemModifier{{ID: "m1", Price: dec("0.50")}},
		PizzaExtraCost: dec("1.00"),
	}
	it.recompute()

	dtos := ExpandItems([]Item{it}, false)
	if !dtos[0].FinalPrice.Equal(dec("11.50")) {
		t.Errorf("final price: got %s, want 11.50", dtos[0].FinalPrice)
	}
}
