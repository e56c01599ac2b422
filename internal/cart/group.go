package cart

import (
	"time"
)

// ModifierResolver looks up a modifier snapshot by id in the menu.
// Implementations must synthesize a stub (generic name, zero price) on a
// miss rather than fail, so the cart stays renderable under partial menu
// data. Satisfied by *catalog.Menu.
type ModifierResolver func(id string) ItemModifier

// OrderSnapshot is the inbound shape of an existing order as returned by the
// order service when it is loaded into edit mode.
type OrderSnapshot struct {
	ID           string           `json:"id"`
	OrderType    string           `json:"order_type"`
	TableID      string           `json:"table_id,omitempty"`
	Table        *TableInfo       `json:"table,omitempty"`
	ScheduledAt  *time.Time       `json:"scheduled_at,omitempty"`
	DeliveryInfo *DeliveryInfo    `json:"delivery_info,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Adjustments  []AdjustmentRow  `json:"adjustments,omitempty"`
	Items        []OrderItemRow   `json:"order_items"`
}

// TableInfo carries the table header of a dine-in order.
type TableInfo struct {
	AreaID      string `json:"area_id,omitempty"`
	IsTemporary bool   `json:"is_temporary,omitempty"`
	Name        string `json:"name,omitempty"`
}

// AdjustmentRow is one stored adjustment on an inbound order.
type AdjustmentRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	IsPercentage bool    `json:"is_percentage"`
	Value        float64 `json:"value"`
	Amount       float64 `json:"amount"`
}

// OrderItemRow is one physical unit row of an inbound order. The server
// stores one row per unit; quantity only exists client-side after grouping.
//
// Modifiers arrive in one of two shapes: the current reference-by-id shape
// (Modifiers) or the legacy embedded-object shape (ProductModifiers). Both
// must be supported; normalizeModifiers collapses them into the single
// canonical ItemModifier form immediately on ingestion so the rest of the
// engine never branches on shape again.
type OrderItemRow struct {
	ID                  string                  `json:"id"`
	ProductID           string                  `json:"product_id"`
	ProductName         string                  `json:"product_name"`
	ProductVariantID    string                  `json:"product_variant_id,omitempty"`
	VariantName         string                  `json:"variant_name,omitempty"`
	BasePrice           float64                 `json:"base_price"`
	PreparationNotes    string                  `json:"preparation_notes,omitempty"`
	PreparationStatus   string                  `json:"preparation_status,omitempty"`
	Modifiers           []ModifierRef           `json:"modifiers,omitempty"`
	ProductModifiers    []EmbeddedModifier      `json:"product_modifiers,omitempty"`
	PizzaCustomizations []PizzaCustomizationRow `json:"selected_pizza_customizations,omitempty"`
	PizzaExtraCost      float64                 `json:"pizza_extra_cost,omitempty"`
}

// ModifierRef is the current modifier shape: a reference into the menu.
type ModifierRef struct {
	ModifierID string `json:"modifier_id"`
}

// EmbeddedModifier is the legacy modifier shape: the full object stored on
// the row.
type EmbeddedModifier struct {
	ID              string  `json:"id"`
	ModifierGroupID string  `json:"modifier_group_id,omitempty"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
}

// PizzaCustomizationRow is one stored half/action tuple on an inbound row.
type PizzaCustomizationRow struct {
	PizzaCustomizationID string `json:"pizza_customization_id"`
	Half                 string `json:"half"`
	Action               string `json:"action"`
}

// normalizeModifiers converts either inbound modifier shape into the
// canonical form. The legacy embedded shape wins when both are present
// because it already carries the price snapshot taken at order time.
func normalizeModifiers(row OrderItemRow, resolve ModifierResolver) []ItemModifier {
	if len(row.ProductModifiers) > 0 {
		out := make([]ItemModifier, len(row.ProductModifiers))
		for i, m := range row.ProductModifiers {
			out[i] = ItemModifier{
				ID:              m.ID,
				ModifierGroupID: m.ModifierGroupID,
				Name:            m.Name,
				Price:           sanitizeMoney(m.Price),
			}
		}
		return out
	}
	out := make([]ItemModifier, len(row.Modifiers))
	for i, ref := range row.Modifiers {
		out[i] = resolve(ref.ModifierID)
		out[i].Price = sanitizeDecimal(out[i].Price)
	}
	return out
}

func normalizeCustomizations(rows []PizzaCustomizationRow) []PizzaCustomization {
	if len(rows) == 0 {
		return nil
	}
	out := make([]PizzaCustomization, len(rows))
	for i, r := range rows {
		out[i] = PizzaCustomization{
			PizzaCustomizationID: r.PizzaCustomizationID,
			Half:                 r.Half,
			Action:               r.Action,
		}
	}
	return out
}

// GroupItems collapses one-row-per-unit server rows into deduplicated,
// quantity-bearing display lines, preserving insertion order. Rows sharing
// the full composite key (product, variant, modifier set, pizza tuples,
// notes, preparation status) merge into one line whose BackendIDs keeps every
// constituent row id for later expansion. A row whose status differs starts
// its own line even when everything else matches: status participates in the
// key, so status-specific rules keep applying per kitchen state.
func GroupItems(rows []OrderItemRow, resolve ModifierResolver) []Item {
	index := make(map[string]int, len(rows))
	var out []Item

	for _, row := range rows {
		it := Item{
			ID:                  row.ID,
			BackendIDs:          []string{row.ID},
			ProductID:           row.ProductID,
			ProductName:         row.ProductName,
			VariantID:           row.ProductVariantID,
			VariantName:         row.VariantName,
			Quantity:            1,
			UnitPrice:           sanitizeMoney(row.BasePrice),
			Modifiers:           normalizeModifiers(row, resolve),
			PizzaCustomizations: normalizeCustomizations(row.PizzaCustomizations),
			PizzaExtraCost:      sanitizeMoney(row.PizzaExtraCost),
			PreparationNotes:    row.PreparationNotes,
			PreparationStatus:   row.PreparationStatus,
		}
		it.recompute()

		key := it.groupKey(true)
		if pos, ok := index[key]; ok {
			line := &out[pos]
			line.Quantity++
			line.BackendIDs = append(line.BackendIDs, row.ID)
			line.recompute()
			continue
		}
		index[key] = len(out)
		out = append(out, it)
	}
	return out
}

func sanitizeAdjustmentRow(r AdjustmentRow) Adjustment {
	return Adjustment{
		ID:           r.ID,
		Name:         r.Name,
		IsPercentage: r.IsPercentage,
		Value:        sanitizeSignedMoney(r.Value),
		Amount:       sanitizeSignedMoney(r.Amount),
	}
}
