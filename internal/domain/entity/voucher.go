package entity

import (
	"time"

	"github.com/google/uuid"
)

// VoucherStatus is the lifecycle state of a voucher. The only legal
// transitions are active -> used and active -> expired; neither is ever
// reversed.
type VoucherStatus string

const (
	VoucherStatusActive  VoucherStatus = "active"
	VoucherStatusUsed    VoucherStatus = "used"
	VoucherStatusExpired VoucherStatus = "expired"
)

// DiscountType determines how a voucher's discount is computed against an
// order total.
type DiscountType string

const (
	DiscountTypeFixed       DiscountType = "fixed"
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeDeliveryFee DiscountType = "delivery_fee"
)

// Voucher is a single-use, time-limited discount instrument issued by
// redeeming a reward. Discount terms are snapshotted from the reward at
// issue time, so later catalog edits never change an issued voucher.
type Voucher struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	RewardID       uuid.UUID
	Code           string // Globally unique redemption code.
	DiscountAmount float64
	DiscountType   DiscountType
	MinOrderAmount float64
	Status         VoucherStatus
	ExpiresAt      time.Time
	AppliedOrderID *uuid.UUID
	UsedAt         *time.Time
	CreatedAt      time.Time
}

// Expired reports whether the voucher's validity window has passed at now,
// regardless of the stored status. Expiry is enforced lazily: there is no
// background sweep, so an 'active' row can already be unusable.
func (v *Voucher) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// Usable reports whether the voucher can still be applied to an order at now.
func (v *Voucher) Usable(now time.Time) bool {
	return v.Status == VoucherStatusActive && !v.Expired(now)
}

// DiscountFor computes the discount this voucher grants against the given
// order total. It returns 0 when the order total does not meet the
// voucher's minimum.
func (v *Voucher) DiscountFor(orderTotal float64) float64 {
	if orderTotal < v.MinOrderAmount {
		return 0
	}

	switch v.DiscountType {
	case DiscountTypePercentage:
		return orderTotal * v.DiscountAmount / 100
	default:
		// Fixed discounts and delivery-fee waivers are flat amounts.
		return v.DiscountAmount
	}
}
