package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate auto-migrates the domain models and then applies the indexes
// AutoMigrate cannot express.
func Migrate(db *gorm.DB, models ...interface{}) error {
	// uuid_generate_v4() backs the uuid primary key defaults
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	return MigrateConstraints(db)
}
