package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations executes the migrations AutoMigrate cannot express
func RunMigrations(db *gorm.DB) error {
	// Create indexes for better performance
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates database indexes
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// Admin FIR list filters
		`CREATE INDEX IF NOT EXISTS idx_firs_filters
		ON firs(status, station_id, officer_id)`,

		// Overdue sweep
		`CREATE INDEX IF NOT EXISTS idx_firs_deadline
		ON firs(status, investigation_deadline)`,

		// Team lookups by officer
		`CREATE INDEX IF NOT EXISTS idx_fir_team_members_user
		ON fir_team_members(user_id)`,

		// Unread notification badge
		`CREATE INDEX IF NOT EXISTS idx_notifications_inbox
		ON notifications(user_id, read, created_at)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
