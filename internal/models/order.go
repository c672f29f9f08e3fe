package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order statuses. Pending is the only initial state; delivered and
// cancelled are terminal.
const (
	OrderStatusPending    = "pending"
	OrderStatusPreparing  = "preparing"
	OrderStatusReady      = "ready"
	OrderStatusOnTheWay   = "onTheWay"
	OrderStatusInProgress = "inProgress"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusOnTheWay,
	OrderStatusInProgress,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is the placed-order aggregate. Totals and item snapshots are
// fixed at creation; only status, payment status, courier and
// StatusUpdatedAt mutate afterwards.
type Order struct {
	BaseModel
	UserID                   uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User                     *User           `json:"user,omitempty"`
	Subtotal                 decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	DeliveryFee              decimal.Decimal `gorm:"type:decimal(10,2)" json:"delivery_fee"`
	VATAmount                decimal.Decimal `gorm:"type:decimal(10,2)" json:"vat_amount"`
	Total                    decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	DeliveryAddress          string          `json:"delivery_address"`
	DeliveryPostcode         string          `json:"delivery_postcode"`
	DeliveryArea             string          `json:"delivery_area"`
	DeliveryPhone            string          `json:"delivery_phone"`
	DeliveryInstructions     string          `json:"delivery_instructions"`
	DeliveryTime             time.Time       `json:"delivery_time"`
	EstimatedDeliveryMinutes *int            `json:"estimated_delivery_minutes"`
	Status                   string          `gorm:"index" json:"status"`
	StatusUpdatedAt          time.Time       `json:"status_updated_at"`
	PaymentMethod            string          `json:"payment_method"`
	PaymentStatus            string          `json:"payment_status"`
	PaymentIntentID          string          `json:"payment_intent_id"`
	CourierID                *uuid.UUID      `gorm:"type:uuid" json:"courier_id"`
	Courier                  *Courier        `json:"courier,omitempty"`
	Items                    []OrderItem     `json:"items,omitempty"`
	StatusLogs               []OrderStatusLog `json:"status_logs,omitempty"`
	Payments                 []Payment       `json:"payments,omitempty"`
	Invoice                  *Invoice        `json:"invoice,omitempty"`
}

// OrderItem is an immutable line item. ProductSnapshot preserves the
// product as it was at order time so later edits never change history.
type OrderItem struct {
	BaseModel
	OrderID           uuid.UUID         `gorm:"type:uuid;index" json:"order_id"`
	ProductID         uuid.UUID         `gorm:"type:uuid" json:"product_id"`
	ProductSnapshot   datatypes.JSON    `json:"product_snapshot"`
	SelectedOptions   datatypes.JSONMap `json:"selected_options"`
	Quantity          int               `json:"quantity"`
	Price             decimal.Decimal   `gorm:"type:decimal(10,2)" json:"price"`
	ExtraInstructions string            `json:"extra_instructions"`
}

// OrderStatusLog is the append-only audit trail of status transitions.
type OrderStatusLog struct {
	BaseModel
	OrderID         uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	Status          string     `json:"status"`
	ChangedByUserID *uuid.UUID `gorm:"type:uuid" json:"changed_by_user_id"`
}
