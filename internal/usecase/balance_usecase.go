package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// BalanceUsecase serves informational reads of the ledger. These are
// unlocked, eventually-consistent snapshots and may race harmlessly with
// concurrent credits and debits.
type BalanceUsecase interface {
	// GetBalance returns the user's account, zero-valued when the user has
	// never earned points. Reading never creates a row.
	GetBalance(ctx context.Context, userID uuid.UUID) (*entity.LoyaltyAccount, error)

	// ListTransactions returns the user's ledger entries, newest first.
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LedgerEntry, error)

	// ListRewards returns the active reward catalog, cheapest first.
	ListRewards(ctx context.Context) ([]*entity.RewardDefinition, error)
}
