package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/middleware"
	"github.com/example/halalexpress/internal/models"
)

// AddressHandler manages saved delivery addresses.
type AddressHandler struct {
	db *gorm.DB
}

// NewAddressHandler constructs AddressHandler.
func NewAddressHandler(db *gorm.DB) *AddressHandler {
	return &AddressHandler{db: db}
}

// ListAddresses returns the user's addresses, default first.
func (h *AddressHandler) ListAddresses(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var addresses []models.Address
	if err := h.db.Where("user_id = ?", claims.UserID).
		Order("is_default desc").Order("created_at desc").
		Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type addressRequest struct {
	Label        *string `json:"label"`
	Line1        *string `json:"line1"`
	Line2        *string `json:"line2"`
	City         *string `json:"city"`
	Area         *string `json:"area"`
	Postcode     *string `json:"postcode"`
	Country      *string `json:"country"`
	Phone        *string `json:"phone"`
	Instructions *string `json:"instructions"`
	IsDefault    *bool   `json:"is_default"`
}

// CreateAddress creates an address for the user. Marking it default
// clears the previous default inside the same transaction.
func (h *AddressHandler) CreateAddress(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Line1 == nil || *req.Line1 == "" || req.Postcode == nil || *req.Postcode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "line1 and postcode are required")
	}

	address := models.Address{
		UserID:   claims.UserID,
		Line1:    *req.Line1,
		Postcode: *req.Postcode,
		Country:  "SA",
	}
	applyAddressFields(&address, req)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefaultAddress(tx, claims.UserID); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

// UpdateAddress updates a user address; setting is_default swaps the
// default transactionally.
func (h *AddressHandler) UpdateAddress(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var address models.Address
	if err := h.db.First(&address, "id = ? AND user_id = ?", addrID, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "address not found")
		}
		return err
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil && *req.IsDefault && !address.IsDefault {
			if err := clearDefaultAddress(tx, claims.UserID); err != nil {
				return err
			}
		}
		applyAddressFields(&address, req)
		return tx.Save(&address).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": address})
}

// SetDefaultAddress makes the address the user's only default.
func (h *AddressHandler) SetDefaultAddress(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var address models.Address
	if err := h.db.First(&address, "id = ? AND user_id = ?", addrID, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "address not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := clearDefaultAddress(tx, claims.UserID); err != nil {
			return err
		}
		return tx.Model(&models.Address{}).Where("id = ?", address.ID).
			Update("is_default", true).Error
	})
	if err != nil {
		return err
	}

	address.IsDefault = true
	return c.JSON(fiber.Map{"success": true, "data": address})
}

// DeleteAddress removes a user address.
func (h *AddressHandler) DeleteAddress(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Where("id = ? AND user_id = ?", addrID, claims.UserID).
		Delete(&models.Address{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

func clearDefaultAddress(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func applyAddressFields(address *models.Address, req addressRequest) {
	if req.Label != nil {
		address.Label = *req.Label
	}
	if req.Line1 != nil {
		address.Line1 = *req.Line1
	}
	if req.Line2 != nil {
		address.Line2 = *req.Line2
	}
	if req.City != nil {
		address.City = *req.City
	}
	if req.Area != nil {
		address.Area = *req.Area
	}
	if req.Postcode != nil {
		address.Postcode = *req.Postcode
	}
	if req.Country != nil && *req.Country != "" {
		address.Country = *req.Country
	}
	if req.Phone != nil {
		address.Phone = *req.Phone
	}
	if req.Instructions != nil {
		address.Instructions = *req.Instructions
	}
	if req.IsDefault != nil {
		address.IsDefault = *req.IsDefault
	}
}
