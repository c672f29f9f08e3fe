package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/models"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNotOwner             = errors.New("forbidden")
	ErrOrderCancelled       = errors.New("order is cancelled")
	ErrOrderAlreadyPaid     = errors.New("order already paid")
	ErrStripeNotConfigured  = errors.New("stripe is not configured")
	ErrRefundUnsupported    = errors.New("refunds supported for stripe payments only")
	ErrMissingIntentRef     = errors.New("missing payment intent reference")
	ErrNoChargeToRefund     = errors.New("no charge found to refund")
	ErrInvalidIntent        = errors.New("invalid payment intent")
	ErrInvalidAmount        = errors.New("invalid order amount")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrWebhookVerification  = errors.New("webhook verification failed")
)

// IntentRef is a provider-neutral view of a payment intent.
type IntentRef struct {
	ID           string
	ClientSecret string
	Status       string
	OrderID      string
	ChargeID     string
}

// WebhookEvent is a verified provider webhook notification. Intent is
// nil for event types the reconciler does not act on.
type WebhookEvent struct {
	Type   string
	Intent *IntentRef
}

// RefundInput describes a provider refund request.
type RefundInput struct {
	ChargeID    string
	AmountMinor *int64
	OrderID     string
	PaymentID   string
}

// PaymentProvider abstracts the card-payment provider so the
// reconciler can be exercised without network calls.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, orderID, userID string) (*IntentRef, error)
	RetrieveIntent(ctx context.Context, id string) (*IntentRef, error)
	Refund(ctx context.Context, in RefundInput) (string, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// MapIntentStatus maps a provider intent status onto the domain
// payment-status vocabulary. ok is false when the status implies no
// domain change (still pending).
func MapIntentStatus(status string) (string, bool) {
	switch status {
	case "succeeded":
		return models.PaymentStatusPaid, true
	case "canceled", "requires_payment_method":
		return models.PaymentStatusFailed, true
	default:
		return "", false
	}
}

// PaymentService reconciles provider payment state with orders.
type PaymentService struct {
	db       *gorm.DB
	cfg      *config.Config
	provider PaymentProvider
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(db *gorm.DB, cfg *config.Config, provider PaymentProvider) *PaymentService {
	return &PaymentService{db: db, cfg: cfg, provider: provider}
}

// IntentResult is returned to clients starting a card payment.
type IntentResult struct {
	OrderID         uuid.UUID `json:"order_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
	PublishableKey  string    `json:"publishable_key"`
}

// CreateIntent starts (or restarts) a card payment for an order.
func (s *PaymentService) CreateIntent(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*IntentResult, error) {
	if s.cfg.StripeSecretKey == "" || s.cfg.StripePublishableKey == "" {
		return nil, ErrStripeNotConfigured
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, ErrNotOwner
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, ErrOrderCancelled
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrOrderAlreadyPaid
	}

	amountMinor := order.Total.Shift(2).IntPart()
	if amountMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	intent, err := s.provider.CreateIntent(ctx, amountMinor, s.cfg.Currency, order.ID.String(), order.UserID.String())
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest models.Payment
		err := tx.Where("order_id = ?", order.ID).
			Order("created_at desc").
			First(&latest).Error
		switch {
		case err == nil && latest.Method == models.PaymentMethodStripe:
			if err := tx.Model(&models.Payment{}).Where("id = ?", latest.ID).Updates(map[string]interface{}{
				"status":       models.PaymentStatusPending,
				"provider":     models.PaymentMethodStripe,
				"provider_ref": intent.ID,
			}).Error; err != nil {
				return err
			}
		case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
			payment := models.Payment{
				OrderID:     order.ID,
				Method:      models.PaymentMethodStripe,
				Status:      models.PaymentStatusPending,
				Amount:      order.Total,
				Currency:    s.cfg.Currency,
				Provider:    models.PaymentMethodStripe,
				ProviderRef: intent.ID,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"payment_method":    models.PaymentMethodStripe,
			"payment_status":    models.PaymentStatusPending,
			"payment_intent_id": intent.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &IntentResult{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  s.cfg.StripePublishableKey,
	}, nil
}

// ConfirmResult reports the reconciled state after a confirmation poll.
type ConfirmResult struct {
	OrderID         uuid.UUID       `json:"order_id"`
	PaymentIntentID string          `json:"payment_intent_id"`
	ProviderStatus  string          `json:"provider_status"`
	PaymentStatus   string          `json:"payment_status,omitempty"`
	Payment         *models.Payment `json:"payment,omitempty"`
}

// Confirm retrieves the intent from the provider and applies its
// status to the payment and order.
func (s *PaymentService) Confirm(ctx context.Context, intentID string, userID uuid.UUID, isAdmin bool) (*ConfirmResult, error) {
	intent, err := s.provider.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.OrderID == "" {
		return nil, ErrInvalidIntent
	}

	orderID, err := uuid.Parse(intent.OrderID)
	if err != nil {
		return nil, ErrInvalidIntent
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, ErrNotOwner
	}

	result := &ConfirmResult{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		ProviderStatus:  intent.Status,
	}

	status, ok := MapIntentStatus(intent.Status)
	if !ok {
		return result, nil
	}

	if err := s.applyIntentStatus(ctx, orderID, intent.ID, status); err != nil {
		return nil, err
	}

	result.PaymentStatus = status
	var payment models.Payment
	if err := s.db.WithContext(ctx).
		Where("order_id = ? AND method = ?", orderID, models.PaymentMethodStripe).
		Order("created_at desc").
		First(&payment).Error; err == nil {
		result.Payment = &payment
	}
	return result, nil
}

// HandleWebhook verifies and applies a provider webhook notification.
// Replayed terminal events are no-ops in effect: the update is an
// unconditional set, never an increment.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookVerification, err)
	}
	if event.Intent == nil || event.Intent.OrderID == "" {
		return nil
	}

	status, ok := MapIntentStatus(event.Intent.Status)
	if !ok {
		return nil
	}

	orderID, err := uuid.Parse(event.Intent.OrderID)
	if err != nil {
		log.Printf("[Stripe] webhook %s carries unparseable order id %q", event.Type, event.Intent.OrderID)
		return nil
	}

	return s.applyIntentStatus(ctx, orderID, event.Intent.ID, status)
}

// applyIntentStatus updates the most recent stripe payment row and the
// order's payment status in one transaction so the two never diverge.
func (s *PaymentService) applyIntentStatus(ctx context.Context, orderID uuid.UUID, intentID, status string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("order_id = ? AND method = ?", orderID, models.PaymentMethodStripe).
			Order("created_at desc").
			First(&payment).Error
		if err == nil {
			if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
				"status":       status,
				"provider":     models.PaymentMethodStripe,
				"provider_ref": intentID,
			}).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"payment_method":    models.PaymentMethodStripe,
			"payment_status":    status,
			"payment_intent_id": intentID,
		}).Error
	})
}

// ConfirmCOD records a cash-on-delivery payment attempt for an order.
func (s *PaymentService) ConfirmCOD(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, ErrNotOwner
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment := models.Payment{
			OrderID:  order.ID,
			Method:   models.PaymentMethodCOD,
			Status:   models.PaymentStatusPending,
			Amount:   order.Total,
			Currency: s.cfg.Currency,
			Provider: models.PaymentMethodCOD,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"payment_method": models.PaymentMethodCOD,
			"payment_status": models.PaymentStatusPending,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	var updated models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Preload("Invoice").
		First(&updated, "id = ?", order.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// Refund refunds a stripe payment, fully or partially, and mirrors the
// refunded state onto the order.
func (s *PaymentService) Refund(ctx context.Context, paymentID uuid.UUID, amount *decimal.Decimal) (string, *models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).Preload("Order").First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrPaymentNotFound
		}
		return "", nil, err
	}
	if payment.Method != models.PaymentMethodStripe {
		return "", nil, ErrRefundUnsupported
	}

	intentID := payment.ProviderRef
	if payment.Order != nil && payment.Order.PaymentIntentID != "" {
		intentID = payment.Order.PaymentIntentID
	}
	if intentID == "" {
		return "", nil, ErrMissingIntentRef
	}

	intent, err := s.provider.RetrieveIntent(ctx, intentID)
	if err != nil {
		return "", nil, err
	}
	if intent.ChargeID == "" {
		return "", nil, ErrNoChargeToRefund
	}

	var amountMinor *int64
	if amount != nil {
		minor := amount.Shift(2).IntPart()
		amountMinor = &minor
	}

	refundID, err := s.provider.Refund(ctx, RefundInput{
		ChargeID:    intent.ChargeID,
		AmountMinor: amountMinor,
		OrderID:     payment.OrderID.String(),
		PaymentID:   payment.ID.String(),
	})
	if err != nil {
		return "", nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
			"status":       models.PaymentStatusRefunded,
			"provider":     "stripe_refund",
			"provider_ref": refundID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
			Update("payment_status", models.PaymentStatusRefunded).Error
	})
	if err != nil {
		return "", nil, err
	}

	var updated models.Payment
	if err := s.db.WithContext(ctx).Preload("Order").First(&updated, "id = ?", payment.ID).Error; err != nil {
		return "", nil, err
	}
	return refundID, &updated, nil
}

// SetStatus force-sets a payment status (admin) and keeps the order's
// payment status in sync with the most recent payment.
func (s *PaymentService) SetStatus(ctx context.Context, paymentID uuid.UUID, status string) (*models.Payment, error) {
	if !models.ValidPaymentStatus(status) {
		return nil, ErrInvalidPaymentStatus
	}

	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).
			Update("status", status).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
			Update("payment_status", status).Error
	})
	if err != nil {
		return nil, err
	}

	var updated models.Payment
	if err := s.db.WithContext(ctx).Preload("Order").First(&updated, "id = ?", payment.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}
