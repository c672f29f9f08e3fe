package models

// User represents a customer or administrator account.
type User struct {
	BaseModel
	Email        string    `gorm:"uniqueIndex" json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	IsAdmin      bool      `json:"is_admin"`
	PasswordHash string    `json:"-"`
	Addresses    []Address `json:"addresses,omitempty"`
	Orders       []Order   `json:"orders,omitempty"`
}
