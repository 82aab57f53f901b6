package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// RedemptionUsecase converts points into vouchers. Redeem is deliberately
// not idempotent: resubmitting the same logical request redeems twice.
type RedemptionUsecase interface {
	// Redeem atomically debits the account by the reward's point cost,
	// advances the reward's redemption counter and issues a voucher with
	// terms snapshotted from the reward. Validation order is fixed: reward
	// exists and is active, cap not reached, then sufficient balance; the
	// first failing check aborts with no side effects.
	Redeem(ctx context.Context, input *RedeemInput) (*RedemptionResult, error)
}

// RedeemInput identifies the redeeming user and the target reward. OrderID
// optionally links the redemption to the order it was initiated from.
type RedeemInput struct {
	UserID   uuid.UUID  `json:"user_id" validate:"required"`
	RewardID uuid.UUID  `json:"reward_id" validate:"required"`
	OrderID  *uuid.UUID `json:"order_id,omitempty"`
}

// RedemptionResult carries the post-redemption balance and the issued voucher.
type RedemptionResult struct {
	Account *entity.LoyaltyAccount `json:"account"`
	Voucher *entity.Voucher        `json:"voucher"`
}
