// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// EarningUsecase coordinates point awarding triggered by external events.
// Callers (order and registration subsystems) are responsible for invoking
// each hook once per event; both hooks are additionally idempotent here.
type EarningUsecase interface {
	// OnOrderCompleted credits points for a completed order: base points per
	// the earning calculator, plus the first-order bonus when this is the
	// user's first completed order. Both credits commit in one transaction.
	// A repeated invocation for the same order is a no-op.
	OnOrderCompleted(ctx context.Context, input *OrderCompletedInput) (*EarningResult, error)

	// OnSignup credits the one-time signup bonus. A repeated invocation for
	// the same user is a no-op.
	OnSignup(ctx context.Context, userID uuid.UUID) (*EarningResult, error)
}

// OrderCompletedInput carries the order-completion event payload.
type OrderCompletedInput struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	OrderAmount float64   `json:"order_amount" validate:"gte=0"`
}

// EarningResult reports the outcome of an earning hook.
type EarningResult struct {
	Account       *entity.LoyaltyAccount `json:"account"`
	PointsAwarded int64                  `json:"points_awarded"` // Total credited by this invocation, 0 when duplicate.
	FirstOrder    bool                   `json:"first_order"`    // Whether the first-order bonus was included.
	Duplicate     bool                   `json:"duplicate"`      // Whether the event had already been awarded.
}
