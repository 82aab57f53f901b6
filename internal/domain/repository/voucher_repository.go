package repository

import (
	"context"
	"errors"
	"time"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrVoucherNotFound is returned when no voucher exists for a code.
var ErrVoucherNotFound = errors.New("voucher not found")

// ErrVoucherNotUsable is returned by MarkUsed when the voucher is not in a
// consumable state (already used, expired, or past its expiry time).
var ErrVoucherNotUsable = errors.New("voucher expired or already used")

// ErrDuplicateVoucherCode is returned by Create on a code collision.
var ErrDuplicateVoucherCode = errors.New("voucher code already exists")

// VoucherRepository owns voucher rows. Status only ever moves
// active -> used or active -> expired.
type VoucherRepository interface {
	// Create persists a newly issued voucher.
	Create(ctx context.Context, voucher *entity.Voucher) error

	// FindByCode retrieves a voucher by its globally unique code.
	FindByCode(ctx context.Context, code string) (*entity.Voucher, error)

	// ListActiveByUser returns the user's vouchers still marked active,
	// including stale rows whose ExpiresAt has already passed; callers
	// normalize those.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Voucher, error)

	// MarkUsed atomically transitions the voucher to used, stamping UsedAt
	// and AppliedOrderID, only while status is active and ExpiresAt is after
	// now. Of two concurrent applications of the same code exactly one
	// succeeds; the other gets ErrVoucherNotUsable. Returns the voucher
	// after the transition.
	MarkUsed(ctx context.Context, code string, orderID uuid.UUID, now time.Time) (*entity.Voucher, error)

	// MarkExpired transitions the given active vouchers to expired. Used to
	// normalize stale rows observed during reads; never reverses used.
	MarkExpired(ctx context.Context, ids []uuid.UUID) error
}
