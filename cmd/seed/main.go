package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/database"
	"github.com/example/halalexpress/internal/models"
)

// Seeds demo catalog, zones and a courier for local development. Safe
// to re-run: existing rows are matched by name or prefix and skipped.
func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := seed(db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Println("seed applied")
}

func seed(db *gorm.DB) error {
	grills, err := ensureCategory(db, "Grills", nil, 1)
	if err != nil {
		return err
	}
	shawarma, err := ensureCategory(db, "Shawarma", &grills.ID, 1)
	if err != nil {
		return err
	}
	kebab, err := ensureCategory(db, "Kebab", &grills.ID, 2)
	if err != nil {
		return err
	}
	drinks, err := ensureCategory(db, "Drinks", nil, 2)
	if err != nil {
		return err
	}
	juices, err := ensureCategory(db, "Fresh Juices", &drinks.ID, 1)
	if err != nil {
		return err
	}

	products := []models.Product{
		{
			Name:          "Chicken Shawarma Wrap",
			Description:   "Marinated chicken, garlic sauce and pickles in saj bread",
			BasePrice:     decimal.RequireFromString("18.00"),
			IsAvailable:   true,
			OptionsJSON:   datatypes.JSON(`[{"name":"Size","choices":["Regular","Large"]},{"name":"Spice","choices":["Mild","Hot"]}]`),
			CategoryID:    grills.ID,
			SubCategoryID: shawarma.ID,
		},
		{
			Name:          "Mixed Grill Platter",
			Description:   "Kebab, shish taouk and kofta with rice",
			BasePrice:     decimal.RequireFromString("55.00"),
			IsAvailable:   true,
			OptionsJSON:   datatypes.JSON(`[]`),
			CategoryID:    grills.ID,
			SubCategoryID: kebab.ID,
		},
		{
			Name:          "Fresh Orange Juice",
			Description:   "Squeezed to order",
			BasePrice:     decimal.RequireFromString("12.00"),
			IsAvailable:   true,
			OptionsJSON:   datatypes.JSON(`[{"name":"Size","choices":["Small","Large"]}]`),
			CategoryID:    drinks.ID,
			SubCategoryID: juices.ID,
		},
	}
	for i := range products {
		if err := ensureProduct(db, &products[i]); err != nil {
			return err
		}
	}

	zones := []models.DeliveryZone{
		{Name: "Riyadh Central", PostcodePrefix: "11", Fee: decimal.RequireFromString("10.00"), ETAMinutes: 45, IsActive: true},
		{Name: "Riyadh North", PostcodePrefix: "113", Fee: decimal.RequireFromString("8.00"), ETAMinutes: 30, IsActive: true},
		{Name: "Jeddah", PostcodePrefix: "21", Fee: decimal.RequireFromString("15.00"), ETAMinutes: 60, IsActive: true},
	}
	for i := range zones {
		if err := ensureZone(db, &zones[i]); err != nil {
			return err
		}
	}

	return ensureCourier(db, &models.Courier{
		Name:     "Demo Courier",
		Phone:    "+966500000000",
		IsActive: true,
	})
}

func ensureCategory(db *gorm.DB, name string, parentID *uuid.UUID, sortOrder int) (*models.Category, error) {
	var category models.Category
	query := db.Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	err := query.First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = models.Category{Name: name, ParentID: parentID, SortOrder: sortOrder}
	if err := db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category %s: %w", name, err)
	}
	return &category, nil
}

func ensureProduct(db *gorm.DB, product *models.Product) error {
	var existing models.Product
	err := db.Where("name = ?", product.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := db.Create(product).Error; err != nil {
		return fmt.Errorf("create product %s: %w", product.Name, err)
	}
	return nil
}

func ensureZone(db *gorm.DB, zone *models.DeliveryZone) error {
	var existing models.DeliveryZone
	err := db.Where("postcode_prefix = ?", zone.PostcodePrefix).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := db.Create(zone).Error; err != nil {
		return fmt.Errorf("create zone %s: %w", zone.Name, err)
	}
	return nil
}

func ensureCourier(db *gorm.DB, courier *models.Courier) error {
	var existing models.Courier
	err := db.Where("name = ?", courier.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := db.Create(courier).Error; err != nil {
		return fmt.Errorf("create courier %s: %w", courier.Name, err)
	}
	return nil
}
