package db

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"trafficinsight/internal/config"
)

// Connect opens a GORM database connection using APP_DATABASE_URL (PostgreSQL URL).
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	// TranslateError: true so a duplicate-day insert surfaces as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&TrafficMetric{}, &APIKey{}); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureBootstrapAPIKey makes sure there is at least one active API key
// matching APP_API_KEY from config. When no key is configured, one is
// generated and logged once so a fresh deployment can record metrics
// immediately.
func EnsureBootstrapAPIKey(db *gorm.DB, cfg *config.Config, log zerolog.Logger) error {
	key := cfg.APIKey
	if key == "" {
		key = uuid.NewString()
	}

	var existing APIKey
	if err := db.Where("key = ?", key).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if existing.ID != 0 {
		if !existing.Active {
			existing.Active = true
			return db.Save(&existing).Error
		}
		return nil
	}

	if cfg.APIKey == "" {
		log.Info().Str("api_key", key).Msg("no APP_API_KEY configured, generated bootstrap key")
	}
	return db.Create(&APIKey{Name: "bootstrap", Key: key, Active: true}).Error
}
