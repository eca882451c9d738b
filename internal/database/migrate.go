package database

import (
	"fmt"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Credential{},
		&models.Ad{},
		&models.Comment{},
	}
}

// Migrate brings the schema up to date with PersistentModels. Dependent rows are
// removed by the services, so no foreign key carries ON DELETE CASCADE.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	middleware.Logger.Info("Database migration completed")
	return nil
}
