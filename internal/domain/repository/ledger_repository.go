package repository

import (
	"context"
	"errors"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDuplicateOrderEarning is returned when an earned-type entry already
// exists for the order, i.e. the order completion was already awarded.
var ErrDuplicateOrderEarning = errors.New("order already awarded points")

// ErrDuplicateSignupAward is returned when a signup-type entry already
// exists for the user.
var ErrDuplicateSignupAward = errors.New("signup bonus already awarded")

// ErrDuplicateFirstOrder is returned when a first_order-type entry already
// exists for the user, i.e. the one-time bonus was already granted.
var ErrDuplicateFirstOrder = errors.New("first order bonus already awarded")

// LedgerRepository owns the append-only LedgerEntry log. Entries are never
// updated or deleted.
type LedgerRepository interface {
	// Append persists a new ledger entry. The implementation assigns ID and
	// CreatedAt when unset. Unique-constraint violations on the one-earning-
	// per-order, one-signup-per-user and one-first-order-bonus-per-user
	// guards surface as ErrDuplicateOrderEarning / ErrDuplicateSignupAward /
	// ErrDuplicateFirstOrder.
	Append(ctx context.Context, entry *entity.LedgerEntry) error

	// ListByUser returns the user's entries, newest first, capped at limit.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LedgerEntry, error)

	// HasEntryOfType reports whether the user already has an entry of the
	// given type. Used for the signup guard and first-order detection.
	HasEntryOfType(ctx context.Context, userID uuid.UUID, entryType entity.EntryType) (bool, error)

	// HasOrderEarning reports whether an earned-type entry exists for the order.
	HasOrderEarning(ctx context.Context, orderID uuid.UUID) (bool, error)

	// SumDeltas returns the sum of the user's PointsDelta values. By the
	// ledger invariant this always equals the account's PointsBalance.
	SumDeltas(ctx context.Context, userID uuid.UUID) (int64, error)
}
