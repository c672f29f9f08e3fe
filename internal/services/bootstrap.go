package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/models"
	"github.com/example/halalexpress/internal/utils"
)

// EnsureAdminUser creates or promotes the configured admin account at
// startup. A missing ADMIN_EMAIL or ADMIN_PASSWORD skips the step.
func EnsureAdminUser(db *gorm.DB, cfg *config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsAdmin {
			return nil
		}
		return db.Model(&models.User{}).Where("id = ?", existing.ID).
			Update("is_admin", true).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := utils.HashPassword(cfg.AdminPassword)
		if err != nil {
			return err
		}
		admin := models.User{
			Email:        email,
			Name:         "Admin",
			IsAdmin:      true,
			PasswordHash: hash,
		}
		return db.Create(&admin).Error
	default:
		return err
	}
}
