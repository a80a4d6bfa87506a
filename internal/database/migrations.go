package database

import (
	"fmt"

	"habitbot-api/internal/journal"
	"habitbot-api/internal/payment"
	"habitbot-api/internal/user"

	"gorm.io/gorm"
)

// RunMigrations performs auto-migration for all application tables
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&user.User{},
		&journal.Event{},
		&payment.Payment{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates performance indexes beyond what the model tags declare
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_review_time ON users(review_time)",
		"CREATE INDEX IF NOT EXISTS idx_users_timezone_offset ON users(timezone_offset)",
		"CREATE INDEX IF NOT EXISTS idx_events_user_created ON events(user_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_events_user_analyzed ON events(user_id, analyzed)",
		"CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
