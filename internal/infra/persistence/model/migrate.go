package model

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the loyalty tables, then adds the partial
// unique indexes GORM tags cannot express. Both PostgreSQL and SQLite accept
// the same partial index syntax, so the test store reuses this as-is.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&LoyaltyAccountModel{},
		&LedgerEntryModel{},
		&RewardModel{},
		&VoucherModel{},
	); err != nil {
		return fmt.Errorf("auto migrate loyalty tables: %w", err)
	}

	// One earning per order, one signup bonus per user, one first-order bonus
	// per user. Concurrent duplicates surface as unique violations and roll
	// the whole transaction back.
	partialIndexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_ledger_order_earned
			ON ledger_entries (order_id) WHERE type = 'earned'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_ledger_user_signup
			ON ledger_entries (user_id) WHERE type = 'signup'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_ledger_user_first_order
			ON ledger_entries (user_id) WHERE type = 'first_order'`,
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial unique index: %w", err)
		}
	}

	return nil
}
