package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/middleware"
	"github.com/example/halalexpress/internal/models"
	"github.com/example/halalexpress/internal/utils"
)

var deviceTokenPlatforms = map[string]bool{
	"android": true,
	"ios":     true,
	"web":     true,
	"unknown": true,
}

// NotificationHandler manages push device tokens.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// MyTokens lists the user's device tokens, active first.
func (h *NotificationHandler) MyTokens(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var tokens []models.DeviceToken
	if err := h.db.Where("user_id = ?", claims.UserID).
		Order("is_active desc").Order("updated_at desc").
		Find(&tokens).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": tokens})
}

type registerTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
	DeviceID string `json:"device_id"`
}

// RegisterToken registers a push token for the user. The token value is
// globally unique, so registering an existing token moves it to the
// current user and reactivates it.
func (h *NotificationHandler) RegisterToken(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req registerTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Token) < 10 {
		return fiber.NewError(fiber.StatusBadRequest, "token is too short")
	}
	if req.Platform == "" {
		req.Platform = "unknown"
	}
	if !deviceTokenPlatforms[req.Platform] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid platform")
	}

	now := nowUTC()

	var token models.DeviceToken
	err := h.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("token = ?", req.Token).First(&token).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			token = models.DeviceToken{
				UserID:     claims.UserID,
				Token:      req.Token,
				Platform:   req.Platform,
				DeviceID:   req.DeviceID,
				IsActive:   true,
				LastSeenAt: &now,
			}
			return tx.Create(&token).Error
		case err != nil:
			return err
		default:
			token.UserID = claims.UserID
			token.Platform = req.Platform
			token.DeviceID = req.DeviceID
			token.IsActive = true
			token.LastSeenAt = &now
			return tx.Save(&token).Error
		}
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": token})
}

type deactivateTokenRequest struct {
	Token string `json:"token"`
}

// DeactivateToken marks the user's token inactive. Unknown tokens are a
// no-op with count zero.
func (h *NotificationHandler) DeactivateToken(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req deactivateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Token) < 10 {
		return fiber.NewError(fiber.StatusBadRequest, "token is too short")
	}

	result := h.db.Model(&models.DeviceToken{}).
		Where("token = ? AND user_id = ?", req.Token, claims.UserID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"count": result.RowsAffected}})
}

// AdminListTokens lists all device tokens with pagination.
func (h *NotificationHandler) AdminListTokens(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.DeviceToken{})
	if platform := c.Query("platform"); platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var tokens []models.DeviceToken
	if err := query.Order("updated_at desc").
		Limit(pg.Limit).Offset(pg.Offset).Find(&tokens).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tokens,
		"meta":    fiber.Map{"page": pg.Page, "limit": pg.Limit, "total": total},
	})
}
