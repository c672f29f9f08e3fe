package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/middleware"
	"github.com/example/halalexpress/internal/models"
	"github.com/example/halalexpress/internal/services"
	"github.com/example/halalexpress/internal/utils"
)

// PaymentHandler exposes card payments, COD confirmation, refunds and
// the provider webhook.
type PaymentHandler struct {
	db      *gorm.DB
	cfg     *config.Config
	service *services.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(db *gorm.DB, cfg *config.Config, service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{db: db, cfg: cfg, service: service}
}

// Config tells clients which publishable key to init the card SDK with.
func (h *PaymentHandler) Config(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"publishable_key": h.cfg.StripePublishableKey,
			"currency":        h.cfg.Currency,
		},
	})
}

type intentRequest struct {
	OrderID string `json:"order_id"`
}

// CreateIntent starts a card payment for an order.
func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req intentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order_id")
	}

	result, err := h.service.CreateIntent(c.Context(), orderID, claims.UserID, claims.IsAdmin)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": result})
}

type confirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// Confirm polls the provider for the intent's final status and applies
// it to the payment and order.
func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PaymentIntentID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payment_intent_id is required")
	}

	result, err := h.service.Confirm(c.Context(), req.PaymentIntentID, claims.UserID, claims.IsAdmin)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": result})
}

type codConfirmRequest struct {
	OrderID string `json:"order_id"`
}

// ConfirmCOD marks a cash-on-delivery order as paid.
func (h *PaymentHandler) ConfirmCOD(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req codConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order_id")
	}

	order, err := h.service.ConfirmCOD(c.Context(), orderID, claims.UserID, claims.IsAdmin)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// Webhook receives provider events. The signature is verified against
// the raw body before anything is trusted. Only verification failures
// map to 400; internal errors stay 500 so the provider retries
// delivery.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	if err := h.service.HandleWebhook(c.Context(), payload, signature); err != nil {
		if errors.Is(err, services.ErrWebhookVerification) {
			return fiber.NewError(fiber.StatusBadRequest, "webhook verification failed")
		}
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}

// MyPayments lists the user's payments, newest first.
func (h *PaymentHandler) MyPayments(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var payments []models.Payment
	if err := h.db.
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.user_id = ?", claims.UserID).
		Order("payments.created_at desc").
		Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": payments})
}

// AdminListPayments lists all payments with pagination and optional
// status/method filters.
func (h *PaymentHandler) AdminListPayments(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.Payment{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var payments []models.Payment
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).Find(&payments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payments,
		"meta":    fiber.Map{"page": pg.Page, "limit": pg.Limit, "total": total},
	})
}

type refundRequest struct {
	Amount *string `json:"amount"`
}

// Refund refunds a card payment, fully or for the given amount.
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var amount *decimal.Decimal
	if req.Amount != nil && *req.Amount != "" {
		parsed, err := decimal.NewFromString(*req.Amount)
		if err != nil || !parsed.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid amount")
		}
		amount = &parsed
	}

	refundID, payment, err := h.service.Refund(c.Context(), paymentID, amount)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"refund_id": refundID, "payment": payment},
	})
}

type paymentStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus force-sets a payment's status, mirroring it on the order.
func (h *PaymentHandler) SetStatus(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req paymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payment, err := h.service.SetStatus(c.Context(), paymentID, req.Status)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": payment})
}
