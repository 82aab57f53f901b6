package entity

import (
	"time"

	"github.com/google/uuid"
)

// EntryType classifies a ledger entry by the event that produced it.
type EntryType string

const (
	EntryTypeEarned     EntryType = "earned"      // Base points for a completed order.
	EntryTypeBonus      EntryType = "bonus"       // Program bonus (e.g. large-order multiplier paid separately).
	EntryTypeSignup     EntryType = "signup"      // One-time signup bonus.
	EntryTypeFirstOrder EntryType = "first_order" // One-time first completed order bonus.
	EntryTypeRedeemed   EntryType = "redeemed"    // Points converted into a voucher.
	EntryTypeAdjustment EntryType = "adjustment"  // Manual correction.
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeEarned, EntryTypeBonus, EntryTypeSignup, EntryTypeFirstOrder,
		EntryTypeRedeemed, EntryTypeAdjustment:
		return true
	}

	return false
}

// LedgerEntry is an immutable audit record of a single balance change.
// Entries are only ever appended, never updated or deleted.
//
// Invariant: the sum of a user's PointsDelta values equals that user's
// LoyaltyAccount.PointsBalance.
type LedgerEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	OrderID     *uuid.UUID // Set for order-driven entries (earned, first_order, redeemed with order context).
	Type        EntryType
	PointsDelta int64 // Signed. Positive for credits, negative for debits.
	Description string
	CreatedAt   time.Time
}
