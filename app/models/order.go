package models

// OrderStatus is the order lifecycle state. Transitions are linear:
// pending moves to paid or failed, paid moves to fulfilled. Nothing moves
// backward, and pending cannot skip straight to fulfilled.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderFulfilled OrderStatus = "fulfilled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderFailed, OrderFulfilled:
		return true
	}
	return false
}

// Entitles reports whether an order in this status grants download access
// to its items.
func (s OrderStatus) Entitles() bool {
	return s == OrderPaid || s == OrderFulfilled
}

// CanTransition reports whether the move from s to next is legal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderPaid || next == OrderFailed
	case OrderPaid:
		return next == OrderFulfilled
	}
	// failed and fulfilled are terminal.
	return false
}

// Order is the durable record of a purchase. Total and item prices are
// frozen at creation; later catalog changes never alter them.
type Order struct {
	Model
	UserID     string      `gorm:"size:36;not null;index" json:"user_id"`
	Total      int64       `gorm:"not null" json:"total"`
	Status     OrderStatus `gorm:"size:20;not null;default:pending" json:"status"`
	PaymentRef *string     `gorm:"size:255;index" json:"payment_ref,omitempty"`
	Items      []OrderItem `json:"items"`
}
