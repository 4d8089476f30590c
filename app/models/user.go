package models

// User is an account holder. Admin widens into a capability set when a
// token is minted; handlers check capabilities, not this flag.
type User struct {
	Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Avatar   string `gorm:"size:512" json:"avatar"` // public/ storage key
	Bio      string `gorm:"size:1024" json:"bio"`
	Admin    bool   `gorm:"not null;default:false" json:"admin"`
}
