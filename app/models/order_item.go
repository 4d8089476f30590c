package models

// OrderItem is one line of an order. UnitPrice is the effective price at
// purchase time and is never recomputed from the live catalog. ProductID
// goes nil when the product is later deleted; the row itself survives so
// receipts and totals stay intact.
type OrderItem struct {
	Model
	OrderID   string   `gorm:"size:36;not null;index" json:"order_id"`
	ProductID *string  `gorm:"size:36;index" json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	UnitPrice int64    `gorm:"not null" json:"unit_price"`
	Quantity  int      `gorm:"not null" json:"quantity"`
}
