package service

import (
	"context"
)

// Loyalty event types published after a committed ledger mutation.
const (
	EventTypePointsEarned  = "points.earned"
	EventTypeVoucherIssued = "voucher.issued"
	EventTypeVoucherUsed   = "voucher.used"
)

// LoyaltyEvent describes a committed loyalty ledger mutation for downstream
// consumers (CRM, analytics). Events are best-effort and published after
// commit; a publish failure never fails the originating operation.
type LoyaltyEvent struct {
	RequestID   string `json:"request_id,omitempty"` // For distributed tracing
	EventID     string `json:"event_id"`
	Type        string `json:"type"`
	UserID      string `json:"user_id"`
	OrderID     string `json:"order_id,omitempty"`
	RewardID    string `json:"reward_id,omitempty"`
	VoucherCode string `json:"voucher_code,omitempty"`
	PointsDelta int64  `json:"points_delta,omitempty"`
	Balance     int64  `json:"balance"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishLoyaltyEvent publishes a loyalty event for async processing
	PublishLoyaltyEvent(ctx context.Context, event *LoyaltyEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
