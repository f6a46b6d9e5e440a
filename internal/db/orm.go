package db

import (
	"fmt"

	"travelbook/airports/internal/config"
	"travelbook/airports/internal/logging"
	gormModels "travelbook/airports/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// airportTextIndex backs free-text search on Postgres; sqlite falls back to LIKE scans.
const airportTextIndex = `
CREATE INDEX IF NOT EXISTS idx_airports_text ON airports USING GIN (
	to_tsvector('simple',
		coalesce(name, '') || ' ' || coalesce(city, '') || ' ' ||
		coalesce(country, '') || ' ' || coalesce(code, '') || ' ' ||
		coalesce(detailed_name, ''))
)`

// Open connects GORM to the configured driver.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	logging.Info("Connected to database via GORM", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates the airports table and its indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&gormModels.Airport{}); err != nil {
		return fmt.Errorf("failed to migrate airports: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(airportTextIndex).Error; err != nil {
			return fmt.Errorf("failed to create airport text index: %w", err)
		}
	}
	return nil
}
