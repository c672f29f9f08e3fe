package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Cart holds the single active cart per user. Updates replace the item
// set wholesale rather than merging.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Items  []CartItem `json:"items,omitempty"`
}

// CartItem references a live product; the immutable snapshot is taken
// only when the cart converts into an order.
type CartItem struct {
	BaseModel
	CartID            uuid.UUID         `gorm:"type:uuid;index" json:"cart_id"`
	ProductID         uuid.UUID         `gorm:"type:uuid" json:"product_id"`
	Product           *Product          `json:"product,omitempty"`
	Quantity          int               `json:"quantity"`
	SelectedOptions   datatypes.JSONMap `json:"selected_options"`
	ExtraInstructions string            `json:"extra_instructions"`
}
