package database

import (
	"fmt"

	"github.com/Jay666-max/shapan/internal/config"
	"github.com/Jay666-max/shapan/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the ledger database, migrates the schema and seeds the
// trader roster from config.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db, cfg.Traders); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and populates the trader roster. Seeding uses
// FirstOrCreate so a renamed trader keeps its name if the same DSN is reopened
// within a session.
func Migrate(db *gorm.DB, seeds []config.TraderSeed) error {
	if err := db.AutoMigrate(&models.Trader{}, &models.Position{}, &models.CloseEvent{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for _, seed := range seeds {
		trader := models.Trader{ID: seed.ID, Name: seed.Name}
		if err := db.FirstOrCreate(&trader, models.Trader{ID: seed.ID}).Error; err != nil {
			return fmt.Errorf("failed to seed trader %q: %w", seed.ID, err)
		}
	}

	return nil
}
