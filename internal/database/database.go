package database

import (
	"fmt"

	"coinbase-dca-bot-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase opens the ledger database and performs auto-migration.
// Migration only ever adds schema; the ledger tables are append-only and
// must survive restarts, so nothing is dropped here.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Transaction{},
		&models.UninvestedBalance{},
		&models.PurchaseMarker{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}
