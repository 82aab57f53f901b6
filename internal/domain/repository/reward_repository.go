package repository

import (
	"context"
	"errors"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRewardNotFound is returned when a reward definition does not exist.
var ErrRewardNotFound = errors.New("reward not found")

// ErrRewardExhausted is returned by IncrementRedemptions when the reward is
// inactive or its redemption cap is already reached. No write happened.
var ErrRewardExhausted = errors.New("reward inactive or redemption cap reached")

// RewardRepository owns reward definitions and their redemption counters.
// Catalog administration (create/update/deactivate) lives outside this
// subsystem; this interface only reads definitions and advances counters.
type RewardRepository interface {
	// FindByID retrieves a single reward definition.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RewardDefinition, error)

	// ListActive returns all currently active reward definitions, cheapest first.
	ListActive(ctx context.Context) ([]*entity.RewardDefinition, error)

	// IncrementRedemptions atomically advances CurrentRedemptions by one,
	// only while the reward is active and below its cap
	// (max_redemptions IS NULL OR current_redemptions < max_redemptions).
	// The counter never decreases; a redemption rollback is achieved by
	// rolling back the surrounding transaction, never by decrementing.
	IncrementRedemptions(ctx context.Context, id uuid.UUID) error
}
