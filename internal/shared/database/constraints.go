package database

import (
	"fmt"

	"gorm.io/gorm"
)

var constraintStatements = []string{
	// release sweep scans by due time
	`CREATE INDEX IF NOT EXISTS idx_release_tasks_due_at ON release_tasks (due_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_show_id ON bookings (show_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_paid ON bookings (user_id, is_paid)`,
	`CREATE INDEX IF NOT EXISTS idx_shows_movie_start ON shows (movie_id, show_date_time)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_favorites_pair ON user_favorites (user_id, movie_id)`,
}

// MigrateConstraints adds indexes used by the booking hot paths.
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return nil
}
