// Package entity contains the core business objects of the loyalty subsystem,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyAccount is the per-user mutable summary of the points ledger.
// It is created lazily on the first credit; reads of a missing account
// observe a zero-valued account rather than an error.
//
// Invariant: PointsBalance == TotalEarned - TotalRedeemed at all times,
// and both lifetime totals are monotonically non-decreasing.
type LoyaltyAccount struct {
	UserID        uuid.UUID // The owning user. One account per user.
	PointsBalance int64     // Currently spendable points, never negative.
	TotalEarned   int64     // Lifetime points credited.
	TotalRedeemed int64     // Lifetime points debited through redemptions.
	LastEarnedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ZeroAccount returns the balance view of a user that has never earned points.
func ZeroAccount(userID uuid.UUID) *LoyaltyAccount {
	return &LoyaltyAccount{UserID: userID}
}
