package models

import "github.com/google/uuid"

// Address is a saved delivery address. At most one address per user is
// the default; the swap is enforced transactionally at write time.
type Address struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label        string    `json:"label"`
	Line1        string    `json:"line1"`
	Line2        string    `json:"line2"`
	City         string    `json:"city"`
	Area         string    `json:"area"`
	Postcode     string    `json:"postcode"`
	Country      string    `gorm:"default:SA" json:"country"`
	Phone        string    `json:"phone"`
	Instructions string    `json:"instructions"`
	IsDefault    bool      `json:"is_default"`
}
