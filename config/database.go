package config

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/slidewise/slidewise-server/models"
)

// ConnectDB opens PostgreSQL and migrates every table.
func ConnectDB(cfg Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Invitation{},
		&models.Presentation{},
	); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}

	slog.Info("connected to PostgreSQL and migrated")
	return db, nil
}
