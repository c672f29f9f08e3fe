package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods and statuses.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodStripe = "stripe"

	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// PaymentStatuses lists every valid payment status.
var PaymentStatuses = []string{
	PaymentStatusUnpaid,
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	for _, known := range PaymentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Payment records one payment attempt against an order. Rows accumulate
// across retries; the most recent by creation time is authoritative and
// Order.PaymentStatus mirrors it.
type Payment struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	Order       *Order          `json:"order,omitempty"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Currency    string          `json:"currency"`
	Provider    string          `json:"provider"`
	ProviderRef string          `json:"provider_ref"`
}

// Invoice is issued exactly once per order, in the same transaction
// that creates the order, and is never regenerated.
type Invoice struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Order     *Order          `json:"order,omitempty"`
	Number    string          `gorm:"uniqueIndex" json:"number"`
	Currency  string          `json:"currency"`
	VATRate   decimal.Decimal `gorm:"type:decimal(6,4)" json:"vat_rate"`
	VATAmount decimal.Decimal `gorm:"type:decimal(10,2)" json:"vat_amount"`
	IssuedAt  time.Time       `gorm:"autoCreateTime" json:"issued_at"`
}
