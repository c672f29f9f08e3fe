package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryZone prices delivery by postcode prefix. Overlapping prefixes
// are allowed; the longest matching prefix wins.
type DeliveryZone struct {
	BaseModel
	Name           string          `json:"name"`
	PostcodePrefix string          `gorm:"index" json:"postcode_prefix"`
	Fee            decimal.Decimal `gorm:"type:decimal(10,2)" json:"fee"`
	ETAMinutes     int             `gorm:"column:eta_minutes;default:60" json:"eta_minutes"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
}

// Courier is a delivery driver with an optional last known position.
type Courier struct {
	BaseModel
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	LastLat        *float64   `json:"last_lat"`
	LastLng        *float64   `json:"last_lng"`
	LastLocationAt *time.Time `json:"last_location_at"`
}
