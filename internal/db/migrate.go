package db

import (
	"fmt"

	"github.com/spravuz/spravbot/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the durable relations in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Request{},
		&models.Reply{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
