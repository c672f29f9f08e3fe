package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/middleware"
	"github.com/example/halalexpress/internal/models"
	"github.com/example/halalexpress/internal/services"
)

// CartHandler manages the per-user cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// GetCart returns the user's cart with product details.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var cart models.Cart
	err := h.db.Preload("Items.Product").
		First(&cart, "user_id = ?", claims.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"items": []models.CartItem{}}})
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"updated_at": cart.UpdatedAt,
		"items":      cart.Items,
	}})
}

type cartItemRequest struct {
	ProductID         string                 `json:"product_id"`
	Quantity          int                    `json:"quantity"`
	SelectedOptions   map[string]interface{} `json:"selected_options"`
	ExtraInstructions string                 `json:"extra_instructions"`
}

type replaceCartRequest struct {
	Items []cartItemRequest `json:"items"`
}

// ReplaceCart replaces the cart contents wholesale: existing items are
// deleted and the submitted set recreated in one transaction.
func (h *CartHandler) ReplaceCart(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req replaceCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	newItems := make([]models.CartItem, 0, len(req.Items))
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	seen := map[uuid.UUID]bool{}
	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
		}
		if it.Quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, services.ErrInvalidQuantity.Error())
		}
		if !seen[productID] {
			seen[productID] = true
			productIDs = append(productIDs, productID)
		}

		options := it.SelectedOptions
		if options == nil {
			options = map[string]interface{}{}
		}
		newItems = append(newItems, models.CartItem{
			ProductID:         productID,
			Quantity:          it.Quantity,
			SelectedOptions:   datatypes.JSONMap(options),
			ExtraInstructions: it.ExtraInstructions,
		})
	}

	if len(productIDs) > 0 {
		var count int64
		if err := h.db.Model(&models.Product{}).Where("id IN ?", productIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(productIDs)) {
			return fiber.NewError(fiber.StatusBadRequest, services.ErrProductNotFound.Error())
		}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.First(&cart, "user_id = ?", claims.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Cart{UserID: claims.UserID}
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		for i := range newItems {
			newItems[i].CartID = cart.ID
		}
		if len(newItems) > 0 {
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}

		return tx.Model(&cart).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return err
	}

	return h.GetCart(c)
}

// ClearCart deletes all items from the user's cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	sub := h.db.Model(&models.Cart{}).Select("id").Where("user_id = ?", claims.UserID)
	if err := h.db.Where("cart_id IN (?)", sub).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
