package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Category is a catalog node. Top-level categories have no parent;
// subcategories point at their parent category.
type Category struct {
	BaseModel
	Name      string     `json:"name"`
	ImageURL  string     `json:"image_url"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	SortOrder int        `json:"sort_order"`
}

// Product is a sellable catalog item. OptionsJSON holds the free-form
// option definitions (sizes, extras) the storefront renders.
type Product struct {
	BaseModel
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(10,2)" json:"base_price"`
	IsAvailable   bool            `gorm:"default:true" json:"is_available"`
	OptionsJSON   datatypes.JSON  `gorm:"column:options_json" json:"options"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	SubCategoryID uuid.UUID       `gorm:"type:uuid;index" json:"sub_category_id"`
}
