package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/models"
	"github.com/example/halalexpress/internal/services"
)

// DeliveryHandler manages delivery zones, couriers and fee quotes.
type DeliveryHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(db *gorm.DB, cfg *config.Config) *DeliveryHandler {
	return &DeliveryHandler{db: db, cfg: cfg}
}

// ListZones returns the active zones for client-side display.
func (h *DeliveryHandler) ListZones(c *fiber.Ctx) error {
	var zones []models.DeliveryZone
	if err := h.db.Where("is_active = ?", true).
		Order("postcode_prefix asc").Find(&zones).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": zones})
}

// ListZonesAdmin returns every zone including inactive ones.
func (h *DeliveryHandler) ListZonesAdmin(c *fiber.Ctx) error {
	var zones []models.DeliveryZone
	if err := h.db.Order("is_active desc").Order("postcode_prefix asc").
		Order("created_at desc").Find(&zones).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": zones})
}

type quoteRequest struct {
	Postcode string `json:"postcode"`
}

// Quote resolves the delivery fee and ETA for a postcode. With no zones
// configured it falls back to the configured defaults.
func (h *DeliveryHandler) Quote(c *fiber.Ctx) error {
	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Postcode) < 2 {
		return fiber.NewError(fiber.StatusBadRequest, "postcode is required")
	}

	var zones []models.DeliveryZone
	if err := h.db.Where("is_active = ?", true).Find(&zones).Error; err != nil {
		return err
	}

	if len(zones) == 0 {
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"zone_id":     "default",
				"zone_name":   "Default",
				"fee":         h.cfg.DefaultDeliveryFee,
				"eta_minutes": h.cfg.DefaultETAMinutes,
			},
		})
	}

	zone := services.MatchZone(req.Postcode, zones)
	if zone == nil {
		return fiber.NewError(fiber.StatusBadRequest, "delivery not available for this postcode")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"zone_id":     zone.ID,
			"zone_name":   zone.Name,
			"fee":         zone.Fee,
			"eta_minutes": zone.ETAMinutes,
		},
	})
}

type zoneRequest struct {
	Name           *string `json:"name"`
	PostcodePrefix *string `json:"postcode_prefix"`
	Fee            *string `json:"fee"`
	ETAMinutes     *int    `json:"eta_minutes"`
	IsActive       *bool   `json:"is_active"`
}

// CreateZone creates a delivery zone.
func (h *DeliveryHandler) CreateZone(c *fiber.Ctx) error {
	var req zoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil || *req.Name == "" || req.PostcodePrefix == nil || *req.PostcodePrefix == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and postcode_prefix are required")
	}
	if req.Fee == nil {
		return fiber.NewError(fiber.StatusBadRequest, "fee is required")
	}
	fee, err := decimal.NewFromString(*req.Fee)
	if err != nil || fee.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid fee")
	}

	zone := models.DeliveryZone{
		Name:           *req.Name,
		PostcodePrefix: *req.PostcodePrefix,
		Fee:            fee,
		ETAMinutes:     60,
		IsActive:       true,
	}
	if req.ETAMinutes != nil {
		if *req.ETAMinutes < 1 || *req.ETAMinutes > 24*60 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid eta_minutes")
		}
		zone.ETAMinutes = *req.ETAMinutes
	}
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}

	if err := h.db.Create(&zone).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": zone})
}

// UpdateZone applies a partial update to a zone.
func (h *DeliveryHandler) UpdateZone(c *fiber.Ctx) error {
	zoneID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var zone models.DeliveryZone
	if err := h.db.First(&zone, "id = ?", zoneID).Error; err != nil {
		return notFoundOr(err, "zone not found")
	}

	var req zoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		zone.Name = *req.Name
	}
	if req.PostcodePrefix != nil {
		zone.PostcodePrefix = *req.PostcodePrefix
	}
	if req.Fee != nil {
		fee, err := decimal.NewFromString(*req.Fee)
		if err != nil || fee.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid fee")
		}
		zone.Fee = fee
	}
	if req.ETAMinutes != nil {
		if *req.ETAMinutes < 1 || *req.ETAMinutes > 24*60 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid eta_minutes")
		}
		zone.ETAMinutes = *req.ETAMinutes
	}
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}

	if err := h.db.Save(&zone).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": zone})
}

// DeleteZone removes a zone.
func (h *DeliveryHandler) DeleteZone(c *fiber.Ctx) error {
	zoneID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Where("id = ?", zoneID).Delete(&models.DeliveryZone{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "zone not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListCouriers returns all couriers, active first.
func (h *DeliveryHandler) ListCouriers(c *fiber.Ctx) error {
	var couriers []models.Courier
	if err := h.db.Order("is_active desc").Order("created_at desc").
		Find(&couriers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": couriers})
}

type courierRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// CreateCourier creates a courier.
func (h *DeliveryHandler) CreateCourier(c *fiber.Ctx) error {
	var req courierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil || *req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	courier := models.Courier{Name: *req.Name, IsActive: true}
	if req.Phone != nil {
		courier.Phone = *req.Phone
	}
	if req.IsActive != nil {
		courier.IsActive = *req.IsActive
	}

	if err := h.db.Create(&courier).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": courier})
}

// UpdateCourier applies a partial update to a courier.
func (h *DeliveryHandler) UpdateCourier(c *fiber.Ctx) error {
	courierID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var courier models.Courier
	if err := h.db.First(&courier, "id = ?", courierID).Error; err != nil {
		return notFoundOr(err, "courier not found")
	}

	var req courierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		courier.Name = *req.Name
	}
	if req.Phone != nil {
		courier.Phone = *req.Phone
	}
	if req.IsActive != nil {
		courier.IsActive = *req.IsActive
	}

	if err := h.db.Save(&courier).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": courier})
}

type courierLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// UpdateCourierLocation records the courier's latest position.
func (h *DeliveryHandler) UpdateCourierLocation(c *fiber.Ctx) error {
	courierID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req courierLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Lat == nil || req.Lng == nil ||
		*req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lng must be valid coordinates")
	}

	var courier models.Courier
	if err := h.db.First(&courier, "id = ?", courierID).Error; err != nil {
		return notFoundOr(err, "courier not found")
	}

	now := nowUTC()
	courier.LastLat = req.Lat
	courier.LastLng = req.Lng
	courier.LastLocationAt = &now

	if err := h.db.Save(&courier).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": courier})
}
