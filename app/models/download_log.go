package models

// DownloadLog is an audit row written after a signed download URL is
// issued. It is insight only and never gates access. ProductID follows
// the same nullify-on-delete rule as order items.
type DownloadLog struct {
	Model
	UserID    string  `gorm:"size:36;not null;index" json:"user_id"`
	ProductID *string `gorm:"size:36;index" json:"product_id"`
	IP        string  `gorm:"size:64" json:"ip"`
	UserAgent string  `gorm:"size:512" json:"user_agent"`
}
