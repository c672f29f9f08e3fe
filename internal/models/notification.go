package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken registers a push-notification token for a user's device.
// Tokens are unique; re-registering moves the token to the new user.
type DeviceToken struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `json:"user,omitempty"`
	Token      string     `gorm:"uniqueIndex" json:"token"`
	Platform   string     `gorm:"default:unknown" json:"platform"`
	DeviceID   string     `json:"device_id"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at"`
}
