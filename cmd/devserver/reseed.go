package main

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/nlstn/go-filters/internal/sampledata"
)

// seedDatabase drops and recreates the catalogue tables and loads the
// sample products and addresses.
func seedDatabase(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&sampledata.Address{}, &sampledata.Product{}); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	if err := db.AutoMigrate(&sampledata.Product{}, &sampledata.Address{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	products := sampledata.Products()
	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	addresses := sampledata.Addresses()
	if err := db.Create(&addresses).Error; err != nil {
		return fmt.Errorf("failed to seed addresses: %w", err)
	}

	slog.Info("Database seeded", "products", len(products), "addresses", len(addresses))
	return nil
}
