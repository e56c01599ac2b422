package enum

// ── Order lifecycle ──

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeAway = "TAKE_AWAY"
	OrderTypeDelivery = "DELIVERY"
)

// Preparation status of a single order item as reported by the kitchen.
// READY and DELIVERED items are locked: they cannot be removed and their
// quantity cannot change.
const (
	PreparationStatusNew        = "NEW"
	PreparationStatusPending    = "PENDING"
	PreparationStatusInProgress = "IN_PROGRESS"
	PreparationStatusReady      = "READY"
	PreparationStatusDelivered  = "DELIVERED"
	PreparationStatusCancelled  = "CANCELLED"
)

// ── Pizza customizations ──

const (
	PizzaHalfFull = "FULL"
	PizzaHalf1    = "HALF_1"
	PizzaHalf2    = "HALF_2"
)

const (
	CustomizationActionAdd    = "ADD"
	CustomizationActionRemove = "REMOVE"
)

// ── Users ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleWaiter  = "WAITER"
)
