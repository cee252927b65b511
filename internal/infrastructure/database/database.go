package database

import (
	"fishlink-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers.
// TranslateError lets services detect duplicate-key conflicts portably
// (idempotent creates depend on gorm.ErrDuplicatedKey).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.SizePriceTier{},
		&models.DeliveryFeeTier{},
		&models.PricingConfig{},
		&models.Order{},
		&models.Notification{},
		&models.Review{},
	)
}
