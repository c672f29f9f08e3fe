package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/models"
)

var (
	ErrInvalidDeliveryTime = errors.New("invalid delivery time")
	ErrInvalidAddress      = errors.New("invalid address id")
	ErrAddressRequired     = errors.New("delivery address and phone are required")
	ErrProductNotFound     = errors.New("one or more products not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
)

const invoiceNumberAttempts = 5

// OrderService owns order placement and status transitions.
type OrderService struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewOrderService constructs OrderService.
func NewOrderService(db *gorm.DB, cfg *config.Config) *OrderService {
	return &OrderService{db: db, cfg: cfg}
}

// OrderItemInput is one requested order line.
type OrderItemInput struct {
	ProductID         uuid.UUID
	Quantity          int
	SelectedOptions   map[string]interface{}
	ExtraInstructions string
}

// CreateOrderInput carries everything needed to place an order. Either
// AddressID or the raw delivery fields must resolve to a non-empty
// address and phone.
type CreateOrderInput struct {
	UserID          uuid.UUID
	AddressID       *uuid.UUID
	DeliveryAddress string
	DeliveryPhone   string
	Postcode        string
	Area            string
	Instructions    string
	Notes           string
	DeliveryTime    string
	DeliveryFee     *decimal.Decimal
	PaymentMethod   string
	Items           []OrderItemInput
}

// Create places an order: it resolves the address, prices the items
// against live products, gates on delivery zones, then writes order,
// items, status log, payment and invoice in one transaction and clears
// the user's cart. Nothing persists if any step fails.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	deliveryTime, err := ParseDeliveryTime(in.DeliveryTime)
	if err != nil {
		return nil, err
	}

	address := in.DeliveryAddress
	phone := in.DeliveryPhone
	postcode := in.Postcode
	area := in.Area
	instructions := in.Instructions
	if instructions == "" {
		instructions = in.Notes
	}

	if in.AddressID != nil {
		var saved models.Address
		if err := s.db.WithContext(ctx).
			First(&saved, "id = ? AND user_id = ?", *in.AddressID, in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidAddress
			}
			return nil, err
		}

		address = FlattenAddress(saved)
		if saved.Phone != "" {
			phone = saved.Phone
		}
		postcode = saved.Postcode
		if saved.Area != "" {
			area = saved.Area
		}
		if saved.Instructions != "" {
			instructions = saved.Instructions
		}
	}

	if strings.TrimSpace(address) == "" || strings.TrimSpace(phone) == "" {
		return nil, ErrAddressRequired
	}

	items := in.Items
	if len(items) == 0 {
		items, err = s.cartItems(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	products, err := s.resolveProducts(ctx, items)
	if err != nil {
		return nil, err
	}

	orderItems, priced, err := BuildOrderItems(items, products)
	if err != nil {
		return nil, err
	}

	zoneFee, etaMinutes, err := s.resolveZone(ctx, postcode)
	if err != nil {
		return nil, err
	}

	fee := s.cfg.DefaultDeliveryFee
	if in.DeliveryFee != nil {
		fee = *in.DeliveryFee
	}
	if zoneFee != nil {
		fee = *zoneFee
	}

	totals, err := ComputeTotals(priced, fee, s.cfg.VATRate)
	if err != nil {
		return nil, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCOD
	}
	paymentStatus := models.PaymentStatusUnpaid
	if method == models.PaymentMethodCOD {
		paymentStatus = models.PaymentStatusPending
	}

	order := models.Order{
		UserID:                   in.UserID,
		Subtotal:                 totals.Subtotal,
		DeliveryFee:              totals.DeliveryFee,
		VATAmount:                totals.VATAmount,
		Total:                    totals.Total,
		DeliveryAddress:          address,
		DeliveryPostcode:         postcode,
		DeliveryArea:             area,
		DeliveryPhone:            phone,
		DeliveryInstructions:     instructions,
		DeliveryTime:             deliveryTime,
		EstimatedDeliveryMinutes: etaMinutes,
		Status:                   models.OrderStatusPending,
		StatusUpdatedAt:          time.Now(),
		PaymentMethod:            method,
		PaymentStatus:            paymentStatus,
		Items:                    orderItems,
	}

	changedBy := in.UserID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		log := models.OrderStatusLog{
			OrderID:         order.ID,
			Status:          models.OrderStatusPending,
			ChangedByUserID: &changedBy,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		payment := models.Payment{
			OrderID:  order.ID,
			Method:   method,
			Status:   paymentStatus,
			Amount:   totals.Total,
			Currency: s.cfg.Currency,
			Provider: method,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := createInvoice(tx, order.ID, s.cfg.Currency, s.cfg.VATRate, totals.VATAmount); err != nil {
			return err
		}

		return clearCart(tx, in.UserID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetFull(ctx, order.ID)
}

// GetFull loads an order with all of its relations.
func (s *OrderService) GetFull(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Invoice").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Courier").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatus applies a status transition, stamps StatusUpdatedAt and
// appends one audit log row, optionally assigning a courier.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, changedBy uuid.UUID, courierID *uuid.UUID) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"status":            status,
			"status_updated_at": time.Now(),
		}
		if courierID != nil {
			updates["courier_id"] = *courierID
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return err
		}

		log := models.OrderStatusLog{
			OrderID:         orderID,
			Status:          status,
			ChangedByUserID: &changedBy,
		}
		return tx.Create(&log).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetFull(ctx, orderID)
}

func (s *OrderService) cartItems(ctx context.Context, userID uuid.UUID) ([]OrderItemInput, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).Preload("Items").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	items := make([]OrderItemInput, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, OrderItemInput{
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			SelectedOptions:   it.SelectedOptions,
			ExtraInstructions: it.ExtraInstructions,
		})
	}
	return items, nil
}

func (s *OrderService) resolveProducts(ctx context.Context, items []OrderItemInput) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, ErrProductNotFound
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// resolveZone applies the zone gate: with no active zones delivery is
// unrestricted and the fee falls back to configuration; with any active
// zone a postcode is mandatory and must match one.
func (s *OrderService) resolveZone(ctx context.Context, postcode string) (*decimal.Decimal, *int, error) {
	var zones []models.DeliveryZone
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&zones).Error; err != nil {
		return nil, nil, err
	}
	if len(zones) == 0 {
		return nil, nil, nil
	}

	if strings.TrimSpace(postcode) == "" {
		return nil, nil, ErrPostcodeRequired
	}

	zone := MatchZone(postcode, zones)
	if zone == nil {
		return nil, nil, ErrZoneUnavailable
	}

	fee := zone.Fee
	eta := zone.ETAMinutes
	return &fee, &eta, nil
}

// productSnapshot is the immutable copy of a product embedded in an
// order item.
type productSnapshot struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	BasePrice     string    `json:"base_price"`
	CategoryID    uuid.UUID `json:"category_id"`
	SubCategoryID uuid.UUID `json:"sub_category_id"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildOrderItems turns requested lines into persisted order items with
// product snapshots, and the priced lines used for the totals.
func BuildOrderItems(items []OrderItemInput, products map[uuid.UUID]models.Product) ([]models.OrderItem, []PricedItem, error) {
	orderItems := make([]models.OrderItem, 0, len(items))
	priced := make([]PricedItem, 0, len(items))

	for _, it := range items {
		product, ok := products[it.ProductID]
		if !ok {
			return nil, nil, ErrProductNotFound
		}
		if it.Quantity < 1 {
			return nil, nil, ErrInvalidQuantity
		}

		snapshot, err := json.Marshal(productSnapshot{
			ID:            product.ID,
			Name:          product.Name,
			Description:   product.Description,
			ImageURL:      product.ImageURL,
			BasePrice:     product.BasePrice.StringFixed(2),
			CategoryID:    product.CategoryID,
			SubCategoryID: product.SubCategoryID,
			IsAvailable:   product.IsAvailable,
			CreatedAt:     product.CreatedAt,
		})
		if err != nil {
			return nil, nil, err
		}

		options := it.SelectedOptions
		if options == nil {
			options = map[string]interface{}{}
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID:         product.ID,
			ProductSnapshot:   datatypes.JSON(snapshot),
			SelectedOptions:   datatypes.JSONMap(options),
			Quantity:          it.Quantity,
			Price:             product.BasePrice.Round(2),
			ExtraInstructions: it.ExtraInstructions,
		})
		priced = append(priced, PricedItem{UnitPrice: product.BasePrice, Quantity: it.Quantity})
	}

	return orderItems, priced, nil
}

// FlattenAddress joins the non-empty address parts into the single
// line stored on the order.
func FlattenAddress(a models.Address) string {
	parts := []string{a.Label, a.Line1, a.Line2, a.Area, a.City, a.Postcode, a.Country}
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

var deliveryTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDeliveryTime accepts the common date/time shapes clients send.
func ParseDeliveryTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range deliveryTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDeliveryTime
}

const invoiceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateInvoiceNumber formats INV-YYYYMMDD-XXXXXX with a random
// base36 suffix.
func GenerateInvoiceNumber(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(invoiceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = invoiceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), string(suffix)), nil
}

// createInvoice inserts the invoice, regenerating the number on a
// unique-constraint collision. Each insert runs in its own savepoint:
// Postgres aborts the enclosing transaction on a failed INSERT, so
// without one no retry could ever succeed.
func createInvoice(tx *gorm.DB, orderID uuid.UUID, currency string, vatRate, vatAmount decimal.Decimal) error {
	return retryOnDuplicate(invoiceNumberAttempts, func() error {
		number, err := GenerateInvoiceNumber(time.Now())
		if err != nil {
			return err
		}
		invoice := models.Invoice{
			OrderID:   orderID,
			Number:    number,
			Currency:  currency,
			VATRate:   vatRate,
			VATAmount: vatAmount,
			IssuedAt:  time.Now(),
		}
		return tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&invoice).Error
		})
	})
}

// retryOnDuplicate runs fn up to attempts times, retrying only on
// unique-constraint collisions.
func retryOnDuplicate(attempts int, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

func clearCart(tx *gorm.DB, userID uuid.UUID) error {
	sub := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
	return tx.Where("cart_id IN (?)", sub).Delete(&models.CartItem{}).Error
}
