package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/enum"
)

// ValidationResult reports whether the cart can be submitted. Gaps are
// expected user input and are returned as data for inline rendering, never
// as errors.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

// AdjustmentDTO is one adjustment in the outbound payload. Amount always
// carries the resolved monetary effect so the server does not recompute
// percentages.
type AdjustmentDTO struct {
	OrderID      string          `json:"order_id"`
	Name         string          `json:"name"`
	IsPercentage bool            `json:"is_percentage"`
	Value        decimal.Decimal `json:"value"`
	Amount       decimal.Decimal `json:"amount"`
}

// Payload is the full order-mutation request shipped to the order service.
type Payload struct {
	OrderType            string          `json:"order_type"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Total                decimal.Decimal `json:"total"`
	Items                []ItemDTO       `json:"items"`
	TableID              string          `json:"table_id,omitempty"`
	IsTemporaryTable     bool            `json:"is_temporary_table,omitempty"`
	TemporaryTableName   string          `json:"temporary_table_name,omitempty"`
	TemporaryTableAreaID string          `json:"temporary_table_area_id,omitempty"`
	ScheduledAt          *time.Time      `json:"scheduled_at,omitempty"`
	DeliveryInfo         DeliveryInfo    `json:"delivery_info"`
	Notes                string          `json:"notes,omitempty"`
	Adjustments          []AdjustmentDTO `json:"adjustments,omitempty"`
	PrepaymentID         string          `json:"prepayment_id,omitempty"`
	UserID               string          `json:"user_id"`
}

// Validate runs the submission gate: non-empty cart, type-specific form
// requirements, and (outside edit mode) the prepayment not exceeding the
// total.
func (c *Cart) Validate() ValidationResult {
	var errs []string
	if len(c.items) == 0 {
		errs = append(errs, "order must contain at least one item")
	}
	errs = append(errs, c.form.Validate()...)
	if c.prepayment != nil && c.mode != ModeEdit {
		if c.prepayment.Amount.GreaterThan(c.Totals().Total) {
			errs = append(errs, "prepayment amount exceeds order total")
		}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// BuildPayload assembles the outbound request: totals, expanded per-unit
// items, delivery info cleaned for the order type, live adjustments (edit
// mode only) and the prepayment reference. The validation gate must pass
// first; on failure the payload is nil and the result carries the messages.
func (c *Cart) BuildPayload(userID string) (*Payload, ValidationResult) {
	res := c.Validate()
	if !res.IsValid {
		return nil, res
	}

	totals := c.Totals()
	p := &Payload{
		OrderType:    c.form.OrderType,
		Subtotal:     totals.Subtotal,
		Total:        totals.Total,
		Items:        ExpandItems(c.items, c.mode == ModeEdit),
		ScheduledAt:  c.form.ScheduledAt,
		DeliveryInfo: CleanDeliveryInfo(c.form.OrderType, c.form.DeliveryInfo),
		Notes:        c.form.Notes,
		UserID:       userID,
	}

	if c.form.OrderType == enum.OrderTypeDineIn {
		if c.form.IsTemporaryTable {
			p.IsTemporaryTable = true
			p.TemporaryTableName = c.form.TemporaryTableName
			p.TemporaryTableAreaID = c.form.AreaID
		} else {
			p.TableID = c.form.TableID
		}
	}

	if c.mode == ModeEdit {
		subtotal := totals.Subtotal
		for _, a := range c.adjustments {
			if a.IsDeleted {
				continue
			}
			p.Adjustments = append(p.Adjustments, AdjustmentDTO{
				OrderID:      c.orderID,
				Name:         a.Name,
				IsPercentage: a.IsPercentage,
				Value:        a.Value,
				Amount:       a.ResolveAmount(subtotal),
			})
		}
	}

	if c.prepayment != nil {
		p.PrepaymentID = c.prepayment.ID
	}
	return p, res
}
