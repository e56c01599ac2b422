package cart

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/enum"
)

// TempIDPrefix marks line items that do not exist on the server yet.
const TempIDPrefix = "new-"

// NewTempID generates a client-side identifier for a not-yet-saved line item.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// ItemModifier is a priced add-on snapshot copied from the menu at selection
// time. It is deliberately not a live reference: menu price changes never
// retroactively alter an existing cart line.
type ItemModifier struct {
	ID              string          `json:"id"`
	ModifierGroupID string          `json:"modifier_group_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
}

// PizzaCustomization is one half/action tuple applied to a pizza item.
type PizzaCustomization struct {
	PizzaCustomizationID string `json:"pizza_customization_id"`
	Half                 string `json:"half"`
	Action               string `json:"action"`
}

// Item is one displayed cart line. A single line may represent several
// physical order-item rows on the server; BackendIDs preserves every
// constituent row id so the expansion step can recover them.
type Item struct {
	ID                  string               `json:"id"`
	BackendIDs          []string             `json:"backend_ids,omitempty"`
	ProductID           string               `json:"product_id"`
	ProductName         string               `json:"product_name"`
	VariantID           string               `json:"variant_id,omitempty"`
	VariantName         string               `json:"variant_name,omitempty"`
	Quantity            int                  `json:"quantity"`
	UnitPrice           decimal.Decimal      `json:"unit_price"`
	Modifiers           []ItemModifier       `json:"modifiers"`
	PizzaCustomizations []PizzaCustomization `json:"pizza_customizations,omitempty"`
	PizzaExtraCost      decimal.Decimal      `json:"pizza_extra_cost"`
	PreparationNotes    string               `json:"preparation_notes,omitempty"`
	PreparationStatus   string               `json:"preparation_status,omitempty"`
	TotalPrice          decimal.Decimal      `json:"total_price"`
}

// ComputeTotal is the single source of truth for a line total:
// (unitPrice + sum of modifier prices + pizzaExtraCost) * quantity.
// Every mutation that changes any input must recompute through this function;
// TotalPrice is never adjusted independently.
func ComputeTotal(unitPrice decimal.Decimal, modifiers []ItemModifier, pizzaExtraCost decimal.Decimal, quantity int) decimal.Decimal {
	perUnit := unitPrice
	for _, m := range modifiers {
		perUnit = perUnit.Add(m.Price)
	}
	perUnit = perUnit.Add(pizzaExtraCost)
	return perUnit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// recompute refreshes the derived TotalPrice.
func (it *Item) recompute() {
	it.TotalPrice = ComputeTotal(it.UnitPrice, it.Modifiers, it.PizzaExtraCost, it.Quantity)
}

// IsNew reports whether the line only exists client-side.
func (it Item) IsNew() bool {
	return strings.HasPrefix(it.ID, TempIDPrefix)
}

// Locked reports whether the kitchen state forbids removing the line or
// changing its quantity.
func (it Item) Locked() bool {
	return it.PreparationStatus == enum.PreparationStatusReady ||
		it.PreparationStatus == enum.PreparationStatusDelivered
}

// groupKey builds the composite identity used to decide whether two lines are
// the same displayed row. Modifier ids and pizza tuples compare as sets, so
// both are sorted before joining. Preparation status participates only when
// includeStatus is set (grouping server rows, edit-mode equivalence); merging
// on add in creation mode ignores it because no status exists yet.
func (it Item) groupKey(includeStatus bool) string {
	var b strings.Builder
	b.WriteString(it.ProductID)
	b.WriteByte('|')
	if it.VariantID == "" {
		b.WriteString("null")
	} else {
		b.WriteString(it.VariantID)
	}
	b.WriteByte('|')

	modIDs := make([]string, len(it.Modifiers))
	for i, m := range it.Modifiers {
		modIDs[i] = m.ID
	}
	sort.Strings(modIDs)
	b.WriteString(strings.Join(modIDs, ","))
	b.WriteByte('|')

	tuples := make([]string, len(it.PizzaCustomizations))
	for i, p := range it.PizzaCustomizations {
		tuples[i] = p.PizzaCustomizationID + ":" + p.Half + ":" + p.Action
	}
	sort.Strings(tuples)
	b.WriteString(strings.Join(tuples, ","))
	b.WriteByte('|')

	b.WriteString(it.PreparationNotes)
	if includeStatus {
		b.WriteByte('|')
		b.WriteString(it.PreparationStatus)
	}
	return b.String()
}

// equivalent reports structural equivalence per the merge invariant.
func equivalent(a, b Item, includeStatus bool) bool {
	return a.groupKey(includeStatus) == b.groupKey(includeStatus)
}

// clone deep-copies the line so snapshots cannot alias live state.
func (it Item) clone() Item {
	c := it
	c.BackendIDs = append([]string(nil), it.BackendIDs...)
	c.Modifiers = append([]ItemModifier(nil), it.Modifiers...)
	c.PizzaCustomizations = append([]PizzaCustomization(nil), it.PizzaCustomizations...)
	return c
}

// itemsEqual compares two lines structurally for the unsaved-changes diff.
// Modifier and customization order is irrelevant; monetary fields compare by
// value, not representation.
func itemsEqual(a, b Item) bool {
	if a.ID != b.ID ||
		a.ProductID != b.ProductID ||
		a.VariantID != b.VariantID ||
		a.Quantity != b.Quantity ||
		a.PreparationNotes != b.PreparationNotes ||
		a.PreparationStatus != b.PreparationStatus {
		return false
	}
	if !a.UnitPrice.Equal(b.UnitPrice) || !a.PizzaExtraCost.Equal(b.PizzaExtraCost) {
		return false
	}
	if len(a.BackendIDs) != len(b.BackendIDs) {
		return false
	}
	for i := range a.BackendIDs {
		if a.BackendIDs[i] != b.BackendIDs[i] {
			return false
		}
	}
	if !modifierSetsEqual(a.Modifiers, b.Modifiers) {
		return false
	}
	return a.groupKey(true) == b.groupKey(true)
}

func modifierSetsEqual(a, b []ItemModifier) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]ItemModifier(nil), a...)
	bs := append([]ItemModifier(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i].ID < as[j].ID })
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
	for i := range as {
		if as[i].ID != bs[i].ID ||
			as[i].ModifierGroupID != bs[i].ModifierGroupID ||
			as[i].Name != bs[i].Name ||
			!as[i].Price.Equal(bs[i].Price) {
			return false
		}
	}
	return true
}

func itemListsEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !itemsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
