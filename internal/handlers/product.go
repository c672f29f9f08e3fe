package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/models"
)

// ProductHandler manages product endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns available products filtered by category or
// subcategory. Without a filter it returns an empty list, matching the
// storefront's navigation model.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	categoryID := c.Query("category_id")
	subCategoryID := c.Query("sub_category_id")
	if categoryID == "" && subCategoryID == "" {
		return c.JSON(fiber.Map{"success": true, "data": []models.Product{}})
	}

	query := h.db.Model(&models.Product{}).
		Where("is_available = ?", true).
		Order("created_at desc")

	if categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		query = query.Where("category_id = ?", id)
	}
	if subCategoryID != "" {
		id, err := uuid.Parse(subCategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sub_category_id")
		}
		query = query.Where("sub_category_id = ?", id)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": products})
}

// GetProduct returns a single product by ID.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	BasePrice     *string         `json:"base_price"`
	IsAvailable   *bool           `json:"is_available"`
	Options       json.RawMessage `json:"options"`
	CategoryID    string          `json:"category_id"`
	SubCategoryID string          `json:"sub_category_id"`
}

// CreateProduct persists a new product.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.BasePrice == nil {
		return fiber.NewError(fiber.StatusBadRequest, "name and base_price are required")
	}

	price, err := decimal.NewFromString(*req.BasePrice)
	if err != nil || price.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid base_price")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
	}
	subCategoryID, err := uuid.Parse(req.SubCategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid sub_category_id")
	}

	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		BasePrice:     price.Round(2),
		IsAvailable:   true,
		OptionsJSON:   datatypes.JSON([]byte("[]")),
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	if len(req.Options) > 0 {
		product.OptionsJSON = datatypes.JSON(req.Options)
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates an existing product.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.BasePrice != nil {
		price, err := decimal.NewFromString(*req.BasePrice)
		if err != nil || price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid base_price")
		}
		updates["base_price"] = price.Round(2)
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if len(req.Options) > 0 {
		updates["options_json"] = datatypes.JSON(req.Options)
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		updates["category_id"] = categoryID
	}
	if req.SubCategoryID != "" {
		subCategoryID, err := uuid.Parse(req.SubCategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sub_category_id")
		}
		updates["sub_category_id"] = subCategoryID
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product by ID.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
