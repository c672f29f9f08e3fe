package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/middleware"
	"github.com/example/halalexpress/internal/models"
	"github.com/example/halalexpress/internal/services"
	"github.com/example/halalexpress/internal/utils"
)

// OrderHandler exposes order placement and history.
type OrderHandler struct {
	db      *gorm.DB
	service *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, service *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, service: service}
}

type orderItemRequest struct {
	ProductID         string                 `json:"product_id"`
	Quantity          int                    `json:"quantity"`
	SelectedOptions   map[string]interface{} `json:"selected_options"`
	ExtraInstructions string                 `json:"extra_instructions"`
}

type createOrderRequest struct {
	AddressID       *string            `json:"address_id"`
	DeliveryAddress string             `json:"delivery_address"`
	DeliveryPhone   string             `json:"delivery_phone"`
	Postcode        string             `json:"postcode"`
	Area            string             `json:"area"`
	Instructions    string             `json:"instructions"`
	Notes           string             `json:"notes"`
	DeliveryTime    string             `json:"delivery_time"`
	DeliveryFee     *string            `json:"delivery_fee"`
	PaymentMethod   string             `json:"payment_method"`
	Items           []orderItemRequest `json:"items"`
}

// CreateOrder places a new order from the request items or, when none
// are given, from the user's cart.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	in := services.CreateOrderInput{
		UserID:          claims.UserID,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryPhone:   req.DeliveryPhone,
		Postcode:        req.Postcode,
		Area:            req.Area,
		Instructions:    req.Instructions,
		Notes:           req.Notes,
		DeliveryTime:    req.DeliveryTime,
		PaymentMethod:   req.PaymentMethod,
	}

	if req.AddressID != nil && *req.AddressID != "" {
		id, err := uuid.Parse(*req.AddressID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid address_id")
		}
		in.AddressID = &id
	}
	if req.DeliveryFee != nil && *req.DeliveryFee != "" {
		fee, err := decimal.NewFromString(*req.DeliveryFee)
		if err != nil || fee.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid delivery_fee")
		}
		in.DeliveryFee = &fee
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
		}
		in.Items = append(in.Items, services.OrderItemInput{
			ProductID:         productID,
			Quantity:          item.Quantity,
			SelectedOptions:   item.SelectedOptions,
			ExtraInstructions: item.ExtraInstructions,
		})
	}

	order, err := h.service.Create(c.Context(), in)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns the user's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.Order{}).Where("user_id = ?", claims.UserID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Invoice").
		Order("created_at desc").Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"meta":    fiber.Map{"page": pg.Page, "limit": pg.Limit, "total": total},
	})
}

// GetOrder returns one order with its items, payments, status history
// and invoice. Non-admins only see their own orders.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.service.GetFull(c.Context(), orderID)
	if err != nil {
		return serviceError(err)
	}
	if !claims.IsAdmin && order.UserID != claims.UserID {
		return serviceError(services.ErrNotOwner)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// GetInvoicePDF renders and streams the order's invoice as a PDF.
func (h *OrderHandler) GetInvoicePDF(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.service.GetFull(c.Context(), orderID)
	if err != nil {
		return serviceError(err)
	}
	if !claims.IsAdmin && order.UserID != claims.UserID {
		return serviceError(services.ErrNotOwner)
	}
	if order.Invoice == nil {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", order.UserID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	pdf, err := services.RenderInvoicePDF(*order.Invoice, *order, &user)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, invoiceContentDisposition(order.Invoice.Number))
	return c.Send(pdf)
}

// invoiceContentDisposition renders the invoice inline so browsers open
// it instead of downloading.
func invoiceContentDisposition(number string) string {
	return fmt.Sprintf("inline; filename=%s.pdf", number)
}
