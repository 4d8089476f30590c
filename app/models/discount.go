package models

// Discount is a percentage off a product's base price, applied at read
// time. Percentage is validated into [0, 100] at write time so pricing
// never has to defend against bad values.
type Discount struct {
	Model
	Name       string `gorm:"size:255;not null" json:"name"`
	Percentage int    `gorm:"not null" json:"percentage"`
	Active     bool   `gorm:"not null;default:true" json:"active"`
}
