// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when a loyalty account row does not exist.
var ErrAccountNotFound = errors.New("loyalty account not found")

// ErrInsufficientPoints is returned by Debit when the account balance does
// not cover the requested amount. The implementation guarantees no write
// happened in that case.
var ErrInsufficientPoints = errors.New("insufficient points balance")

// AccountRepository owns the per-user LoyaltyAccount row.
//
// Credit and Debit are atomic single-row mutations: the balance check and
// the balance change happen in one conditional statement, so concurrent
// calls for the same user serialize on the row while different users never
// block each other. Both are expected to run inside a transaction driven by
// the TransactionManager whenever a ledger entry is appended alongside.
type AccountRepository interface {
	// FindByUserID retrieves the account for a user. It never creates a row;
	// callers wanting a zero-valued view of an absent account handle
	// ErrAccountNotFound themselves.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.LoyaltyAccount, error)

	// Credit atomically increments PointsBalance and TotalEarned by amount
	// and stamps LastEarnedAt. The account row is created lazily when absent.
	// Returns the account after the credit.
	Credit(ctx context.Context, userID uuid.UUID, amount int64, earnedAt time.Time) (*entity.LoyaltyAccount, error)

	// Debit atomically decrements PointsBalance and increments TotalRedeemed
	// by amount, only if PointsBalance >= amount. Returns
	// ErrInsufficientPoints (or ErrAccountNotFound) without writing otherwise.
	// Returns the account after the debit.
	Debit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.LoyaltyAccount, error)
}
