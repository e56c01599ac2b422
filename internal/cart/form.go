package cart

import (
	"time"

	"github.com/tavolo-pos/api/internal/enum"
)

// DeliveryInfo carries recipient details for take-away and delivery orders.
type DeliveryInfo struct {
	RecipientName        string `json:"recipient_name,omitempty"`
	RecipientPhone       string `json:"recipient_phone,omitempty"`
	FullAddress          string `json:"full_address,omitempty"`
	DeliveryInstructions string `json:"delivery_instructions,omitempty"`
}

func (d DeliveryInfo) isEmpty() bool {
	return d == DeliveryInfo{}
}

// FormState is the order header being edited alongside the items: order type,
// table selection, scheduling and delivery details. Which fields are relevant
// (and required) depends on the order type.
type FormState struct {
	OrderType          string       `json:"order_type"`
	AreaID             string       `json:"area_id,omitempty"`
	TableID            string       `json:"table_id,omitempty"`
	IsTemporaryTable   bool         `json:"is_temporary_table,omitempty"`
	TemporaryTableName string       `json:"temporary_table_name,omitempty"`
	ScheduledAt        *time.Time   `json:"scheduled_at,omitempty"`
	DeliveryInfo       DeliveryInfo `json:"delivery_info"`
	Notes              string       `json:"notes,omitempty"`
}

// SetOrderType switches the order type and applies the type-specific clearing
// rules: fields irrelevant to the new type are dropped immediately so stale
// values can never leak into a later payload.
func (f *FormState) SetOrderType(orderType string) {
	f.OrderType = orderType
	f.DeliveryInfo = CleanDeliveryInfo(orderType, f.DeliveryInfo)
	if orderType != enum.OrderTypeDineIn {
		f.AreaID = ""
		f.TableID = ""
		f.IsTemporaryTable = false
		f.TemporaryTableName = ""
	}
}

// CleanDeliveryInfo strips delivery fields irrelevant to the order type.
// DINE_IN keeps nothing, TAKE_AWAY keeps recipient name and phone, DELIVERY
// keeps the full set.
func CleanDeliveryInfo(orderType string, d DeliveryInfo) DeliveryInfo {
	switch orderType {
	case enum.OrderTypeTakeAway:
		return DeliveryInfo{
			RecipientName:  d.RecipientName,
			RecipientPhone: d.RecipientPhone,
		}
	case enum.OrderTypeDelivery:
		return d
	default:
		return DeliveryInfo{}
	}
}

// Validate checks the type-specific required fields and returns one message
// per gap. An empty slice means the form is valid. Gaps are expected user
// input, so they are returned as data rather than errors.
func (f FormState) Validate() []string {
	var errs []string
	switch f.OrderType {
	case enum.OrderTypeDineIn:
		if f.IsTemporaryTable {
			if f.TemporaryTableName == "" {
				errs = append(errs, "temporary table name is required for dine-in orders")
			}
			if f.AreaID == "" {
				errs = append(errs, "area is required for a temporary table")
			}
		} else if f.TableID == "" {
			errs = append(errs, "table is required for dine-in orders")
		}
	case enum.OrderTypeTakeAway:
		if f.DeliveryInfo.RecipientName == "" {
			errs = append(errs, "recipient name is required for take-away orders")
		}
	case enum.OrderTypeDelivery:
		if f.DeliveryInfo.FullAddress == "" {
			errs = append(errs, "address is required for delivery orders")
		}
		if f.DeliveryInfo.RecipientPhone == "" {
			errs = append(errs, "recipient phone is required for delivery orders")
		}
	default:
		errs = append(errs, "invalid order type")
	}
	return errs
}

func formsEqual(a, b FormState) bool {
	if a.OrderType != b.OrderType ||
		a.AreaID != b.AreaID ||
		a.TableID != b.TableID ||
		a.IsTemporaryTable != b.IsTemporaryTable ||
		a.TemporaryTableName != b.TemporaryTableName ||
		a.DeliveryInfo != b.DeliveryInfo ||
		a.Notes != b.Notes {
		return false
	}
	return timesEqual(a.ScheduledAt, b.ScheduledAt)
}

// timesEqual compares scheduled times by timestamp value, treating nil as
// equal only to nil.
func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
