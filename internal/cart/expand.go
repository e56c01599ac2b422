package cart

import (
	"github.com/shopspring/decimal"
)

// ItemDTO is one backend order-item row in the outbound payload. A DTO
// without an ID asks the server to create a new row; a DTO carrying an ID
// updates the existing row.
type ItemDTO struct {
	ID                  string                  `json:"id,omitempty"`
	ProductID           string                  `json:"product_id"`
	ProductVariantID    *string                 `json:"product_variant_id"`
	BasePrice           decimal.Decimal         `json:"base_price"`
	FinalPrice          decimal.Decimal         `json:"final_price"`
	PreparationNotes    *string                 `json:"preparation_notes"`
	ModifierIDs         []string                `json:"modifier_ids"`
	PizzaCustomizations []PizzaCustomizationRow `json:"selected_pizza_customizations,omitempty"`
}

// ExpandItems is the inverse of GroupItems: it turns quantity-bearing display
// lines back into one DTO per physical unit.
//
// In edit mode a line holding N backend ids with quantity Q emits min(N, Q)
// DTOs reusing the existing ids in order, then the remaining create DTOs with
// no id. Lines that only exist client-side (temporary id prefix) emit Q
// create DTOs regardless of anything in BackendIDs. In creation mode every
// line expands into Q create DTOs unconditionally.
//
// Each DTO carries per-unit values: BasePrice is the unit price excluding
// add-ons, FinalPrice is the per-unit price including modifiers and pizza
// extra cost (TotalPrice / Quantity).
func ExpandItems(items []Item, editMode bool) []ItemDTO {
	var out []ItemDTO
	for _, it := range items {
		proto := itemProto(it)

		existing := it.BackendIDs
		if !editMode || it.IsNew() {
			existing = nil
		}

		for i := 0; i < it.Quantity; i++ {
			dto := proto
			if i < len(existing) {
				dto.ID = existing[i]
			}
			out = append(out, dto)
		}
	}
	return out
}

// itemProto builds the per-unit DTO template shared by every expanded row of
// a line.
func itemProto(it Item) ItemDTO {
	dto := ItemDTO{
		ProductID:  it.ProductID,
		BasePrice:  it.UnitPrice,
		FinalPrice: perUnitPrice(it),
	}
	if it.VariantID != "" {
		v := it.VariantID
		dto.ProductVariantID = &v
	}
	if it.PreparationNotes != "" {
		n := it.PreparationNotes
		dto.PreparationNotes = &n
	}
	dto.ModifierIDs = make([]string, len(it.Modifiers))
	for i, m := range it.Modifiers {
		dto.ModifierIDs[i] = m.ID
	}
	if len(it.PizzaCustomizations) > 0 {
		dto.PizzaCustomizations = make([]PizzaCustomizationRow, len(it.PizzaCustomizations))
		for i, p := range it.PizzaCustomizations {
			dto.PizzaCustomizations[i] = PizzaCustomizationRow{
				PizzaCustomizationID: p.PizzaCustomizationID,
				Half:                 p.Half,
				Action:               p.Action,
			}
		}
	}
	return dto
}

func perUnitPrice(it Item) decimal.Decimal {
	if it.Quantity <= 0 {
		return it.TotalPrice
	}
	return it.TotalPrice.Div(decimal.NewFromInt(int64(it.Quantity))).Round(2)
}
