package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores a slice of storage keys as a JSON text column, which
// keeps the schema portable across every supported database driver.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("models: cannot scan %T into StringList", src)
	}
}

// Product is a sellable digital asset. Price is in integer minor units
// (cents); decimal representations exist only at the UI edge. FileKey is
// an opaque object-store key under the private namespace, never a URL.
type Product struct {
	Model
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Price       int64      `gorm:"not null" json:"price"`
	Category    string     `gorm:"size:100;index" json:"category"`
	FileKey     string     `gorm:"size:512;not null" json:"-"` // private, gated by entitlement
	PreviewKeys StringList `gorm:"type:text" json:"preview_keys"`
	DiscountID  *string    `gorm:"size:36;index" json:"discount_id,omitempty"`
	Discount    *Discount  `json:"discount,omitempty"`
}
