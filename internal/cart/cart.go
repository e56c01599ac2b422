package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/enum"
)

// Errors returned by cart mutations.
var (
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrItemLocked         = errors.New("item is already prepared and cannot be modified")
	ErrAdjustmentNotFound = errors.New("adjustment not found")
)

// Mode selects between building a brand-new order and editing one that
// already exists on the server.
type Mode string

const (
	ModeCreate Mode = "CREATE"
	ModeEdit   Mode = "EDIT"
)

// Prepayment references a payment registered before order confirmation.
type Prepayment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// Cart is the canonical in-memory state of one order session: display lines,
// the order form, price adjustments and (in edit mode) the original snapshot
// the unsaved-changes diff runs against.
//
// A Cart is an explicit context object with exactly one logical writer (the
// owning session); it holds no locks of its own and performs no I/O.
type Cart struct {
	mode        Mode
	orderID     string
	items       []Item
	form        FormState
	adjustments []Adjustment
	prepayment  *Prepayment

	original *snapshot
	unsaved  bool
}

// New creates an empty creation-mode cart defaulting to dine-in.
func New() *Cart {
	return &Cart{
		mode: ModeCreate,
		form: FormState{OrderType: enum.OrderTypeDineIn},
	}
}

// Load builds an edit-mode cart from an inbound order snapshot: server rows
// are grouped into display lines, the header is mapped onto the form, and the
// original snapshot is captured as the diff baseline.
func Load(order OrderSnapshot, resolve ModifierResolver) *Cart {
	c := &Cart{
		mode:    ModeEdit,
		orderID: order.ID,
		items:   GroupItems(order.Items, resolve),
		form: FormState{
			OrderType:   order.OrderType,
			TableID:     order.TableID,
			ScheduledAt: order.ScheduledAt,
			Notes:       order.Notes,
		},
	}
	if order.Table != nil {
		c.form.AreaID = order.Table.AreaID
		c.form.IsTemporaryTable = order.Table.IsTemporary
		if order.Table.IsTemporary {
			c.form.TemporaryTableName = order.Table.Name
		}
	}
	if order.DeliveryInfo != nil {
		c.form.DeliveryInfo = CleanDeliveryInfo(order.OrderType, *order.DeliveryInfo)
	}
	for _, row := range order.Adjustments {
		c.adjustments = append(c.adjustments, sanitizeAdjustmentRow(row))
	}
	c.captureSnapshot()
	c.refresh()
	return c
}

// Mode returns the cart mode.
func (c *Cart) Mode() Mode { return c.mode }

// OrderID returns the server order id in edit mode, empty otherwise.
func (c *Cart) OrderID() string { return c.orderID }

// Items returns a copy of the display lines.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// Form returns the current order form state.
func (c *Cart) Form() FormState { return c.form }

// Adjustments returns a copy of the working adjustment list, soft-deleted
// entries included.
func (c *Cart) Adjustments() []Adjustment { return cloneAdjustments(c.adjustments) }

// Prepayment returns the tracked prepayment reference, if any.
func (c *Cart) Prepayment() *Prepayment {
	if c.prepayment == nil {
		return nil
	}
	p := *c.prepayment
	return &p
}

// ── Item mutations ──

// AddItemParams is the input to AddItem. Prices arrive untrusted and are
// sanitized on entry.
type AddItemParams struct {
	ProductID           string
	ProductName         string
	VariantID           string
	VariantName         string
	Quantity            int
	UnitPrice           float64
	Modifiers           []ItemModifier
	PreparationNotes    string
	PizzaCustomizations []PizzaCustomization
	PizzaExtraCost      float64
}

// AddItem adds units of a product to the cart.
//
// In creation mode a structurally equivalent line absorbs the new units
// (merge-or-append). In edit mode every add creates a fresh line with a
// temporary id and status NEW: a unit added to an in-progress order must be
// trackable and cancellable independently of previously confirmed units, so
// merging is never allowed there.
func (c *Cart) AddItem(p AddItemParams) Item {
	it := Item{
		ProductID:           p.ProductID,
		ProductName:         p.ProductName,
		VariantID:           p.VariantID,
		VariantName:         p.VariantName,
		Quantity:            clampQuantity(p.Quantity),
		UnitPrice:           sanitizeMoney(p.UnitPrice),
		Modifiers:           sanitizeModifiers(p.Modifiers),
		PizzaCustomizations: append([]PizzaCustomization(nil), p.PizzaCustomizations...),
		PizzaExtraCost:      sanitizeMoney(p.PizzaExtraCost),
		PreparationNotes:    p.PreparationNotes,
	}

	if c.mode == ModeCreate {
		for i := range c.items {
			if equivalent(c.items[i], it, false) {
				line := &c.items[i]
				line.Quantity = clampQuantity(line.Quantity + it.Quantity)
				line.recompute()
				c.refresh()
				return line.clone()
			}
		}
	} else {
		it.PreparationStatus = enum.PreparationStatusNew
	}

	it.ID = NewTempID()
	it.recompute()
	c.items = append(c.items, it)
	c.refresh()
	return it.clone()
}

// RemoveItem hard-deletes a line from the cart. Lines the kitchen has already
// prepared (READY/DELIVERED) cannot be removed.
func (c *Cart) RemoveItem(itemID string) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	if c.items[idx].Locked() {
		return ErrItemLocked
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.refresh()
	return nil
}

// UpdateItemQuantity sets a line's quantity. Zero or negative routes to
// RemoveItem; anything else is clamped into [1, 9999] and the total
// recomputed.
func (c *Cart) UpdateItemQuantity(itemID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(itemID)
	}
	idx := c.indexOf(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	line := &c.items[idx]
	if line.Locked() {
		return ErrItemLocked
	}
	line.Quantity = clampQuantity(quantity)
	line.recompute()
	c.refresh()
	return nil
}

// UpdateItemParams is the input to UpdateItem. Nil pointer fields keep the
// current value.
type UpdateItemParams struct {
	Quantity            int
	Modifiers           []ItemModifier
	PreparationNotes    *string
	VariantID           *string
	VariantName         *string
	UnitPrice           *float64
	PizzaCustomizations []PizzaCustomization
	PizzaExtraCost      *float64
}

// UpdateItem replaces a line's customizable fields in one step, as happens
// after re-customizing through the product editor, and recomputes the total.
// Quantity changes on prepared lines are still rejected.
func (c *Cart) UpdateItem(itemID string, p UpdateItemParams) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	line := &c.items[idx]

	qty := clampQuantity(p.Quantity)
	if line.Locked() && qty != line.Quantity {
		return ErrItemLocked
	}

	line.Quantity = qty
	line.Modifiers = sanitizeModifiers(p.Modifiers)
	line.PizzaCustomizations = append([]PizzaCustomization(nil), p.PizzaCustomizations...)
	if p.PreparationNotes != nil {
		line.PreparationNotes = *p.PreparationNotes
	}
	if p.VariantID != nil {
		line.VariantID = *p.VariantID
	}
	if p.VariantName != nil {
		line.VariantName = *p.VariantName
	}
	if p.UnitPrice != nil {
		line.UnitPrice = sanitizeMoney(*p.UnitPrice)
	}
	if p.PizzaExtraCost != nil {
		line.PizzaExtraCost = sanitizeMoney(*p.PizzaExtraCost)
	}
	line.recompute()
	c.refresh()
	return nil
}

func (c *Cart) indexOf(itemID string) int {
	for i := range c.items {
		if c.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func sanitizeModifiers(in []ItemModifier) []ItemModifier {
	out := make([]ItemModifier, len(in))
	for i, m := range in {
		m.Price = sanitizeDecimal(m.Price)
		out[i] = m
	}
	return out
}

// ── Adjustment mutations ──

// AddAdjustment appends a new working adjustment and returns it with its
// generated id.
func (c *Cart) AddAdjustment(a Adjustment) Adjustment {
	if a.ID == "" {
		a.ID = NewTempID()
	}
	a.IsNew = true
	a.IsDeleted = false
	a.Value = sanitizeSignedDecimal(a.Value)
	a.Amount = sanitizeSignedDecimal(a.Amount)
	c.adjustments = append(c.adjustments, a)
	c.refresh()
	return a
}

// UpdateAdjustment replaces the named fields of an existing adjustment.
func (c *Cart) UpdateAdjustment(id string, name string, isPercentage bool, value, amount float64) error {
	for i := range c.adjustments {
		if c.adjustments[i].ID == id {
			c.adjustments[i].Name = name
			c.adjustments[i].IsPercentage = isPercentage
			c.adjustments[i].Value = sanitizeSignedMoney(value)
			c.adjustments[i].Amount = sanitizeSignedMoney(amount)
			c.refresh()
			return nil
		}
	}
	return ErrAdjustmentNotFound
}

// RemoveAdjustment removes an adjustment. Entries that already exist on the
// server are soft-deleted so they can be restored before saving; entries
// created in this session are dropped outright.
func (c *Cart) RemoveAdjustment(id string) error {
	for i := range c.adjustments {
		if c.adjustments[i].ID != id {
			continue
		}
		if c.adjustments[i].IsNew {
			c.adjustments = append(c.adjustments[:i], c.adjustments[i+1:]...)
		} else {
			c.adjustments[i].IsDeleted = true
		}
		c.refresh()
		return nil
	}
	return ErrAdjustmentNotFound
}

// RestoreAdjustment undoes a soft delete.
func (c *Cart) RestoreAdjustment(id string) error {
	for i := range c.adjustments {
		if c.adjustments[i].ID == id {
			c.adjustments[i].IsDeleted = false
			c.refresh()
			return nil
		}
	}
	return ErrAdjustmentNotFound
}

// ── Form mutations ──

// SetOrderType switches the order type, applying its clearing rules.
func (c *Cart) SetOrderType(orderType string) {
	c.form.SetOrderType(orderType)
	c.refresh()
}

// SetTable selects an existing table for a dine-in order.
func (c *Cart) SetTable(areaID, tableID string) {
	c.form.AreaID = areaID
	c.form.TableID = tableID
	c.form.IsTemporaryTable = false
	c.form.TemporaryTableName = ""
	c.refresh()
}

// SetTemporaryTable names an ad-hoc table inside an area.
func (c *Cart) SetTemporaryTable(areaID, name string) {
	c.form.AreaID = areaID
	c.form.TableID = ""
	c.form.IsTemporaryTable = true
	c.form.TemporaryTableName = name
	c.refresh()
}

// SetScheduledAt sets or clears the scheduled serving time.
func (c *Cart) SetScheduledAt(t *time.Time) {
	c.form.ScheduledAt = t
	c.refresh()
}

// SetDeliveryInfo replaces the delivery details, cleaned for the current
// order type.
func (c *Cart) SetDeliveryInfo(d DeliveryInfo) {
	c.form.DeliveryInfo = CleanDeliveryInfo(c.form.OrderType, d)
	c.refresh()
}

// SetNotes replaces the order-level notes.
func (c *Cart) SetNotes(notes string) {
	c.form.Notes = notes
	c.refresh()
}

// ── Prepayment ──

// SetPrepayment tracks a payment registered before confirmation.
func (c *Cart) SetPrepayment(id string, amount float64) {
	c.prepayment = &Prepayment{ID: id, Amount: sanitizeMoney(amount)}
	c.refresh()
}

// ClearPrepayment drops the tracked prepayment reference.
func (c *Cart) ClearPrepayment() {
	c.prepayment = nil
	c.refresh()
}

// ── Totals ──

// Totals is the derived pricing summary of the cart.
type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	AdjustmentsTotal decimal.Decimal `json:"adjustments_total"`
	Total            decimal.Decimal `json:"total"`
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

// Totals computes the full pricing summary. AdjustmentsTotal is reported
// unclamped so callers can detect over-discounting; Total never goes below
// zero.
func (c *Cart) Totals() Totals {
	subtotal := c.Subtotal()
	return Totals{
		Subtotal:         subtotal,
		AdjustmentsTotal: AdjustmentsTotal(c.adjustments, subtotal),
		Total:            OrderTotal(subtotal, c.adjustments),
	}
}
