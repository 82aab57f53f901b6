package entity

import (
	"time"

	"github.com/google/uuid"
)

// RewardType describes the benefit a reward grants when redeemed.
// It maps one-to-one onto the DiscountType of the voucher it issues.
type RewardType string

const (
	RewardTypeFixedDiscount      RewardType = "fixed_discount"
	RewardTypePercentageDiscount RewardType = "percentage_discount"
	RewardTypeDeliveryFeeWaiver  RewardType = "delivery_fee_waiver"
)

// Valid reports whether t is one of the known reward types.
func (t RewardType) Valid() bool {
	switch t {
	case RewardTypeFixedDiscount, RewardTypePercentageDiscount, RewardTypeDeliveryFeeWaiver:
		return true
	}

	return false
}

// RewardDefinition is a catalog entry describing a redeemable benefit,
// its point cost and an optional redemption cap.
//
// Invariant: when MaxRedemptions is set, CurrentRedemptions never exceeds
// it, and the counter only ever increases.
type RewardDefinition struct {
	ID                 uuid.UUID
	Name               string
	Description        string
	PointsRequired     int64 // Always > 0.
	RewardType         RewardType
	RewardValue        float64 // Amount for fixed/waiver types, percent for percentage type.
	MinOrderAmount     float64 // Minimum order total a resulting voucher applies to.
	IsActive           bool
	MaxRedemptions     *int64 // nil means uncapped.
	CurrentRedemptions int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Redeemable reports whether the reward can currently be redeemed,
// ignoring the redeeming user's balance.
func (r *RewardDefinition) Redeemable() bool {
	if !r.IsActive {
		return false
	}
	if r.MaxRedemptions != nil && r.CurrentRedemptions >= *r.MaxRedemptions {
		return false
	}

	return true
}

// DiscountType returns the voucher discount type this reward snapshots into
// issued vouchers.
func (r *RewardDefinition) DiscountType() DiscountType {
	switch r.RewardType {
	case RewardTypePercentageDiscount:
		return DiscountTypePercentage
	case RewardTypeDeliveryFeeWaiver:
		return DiscountTypeDeliveryFee
	default:
		return DiscountTypeFixed
	}
}
