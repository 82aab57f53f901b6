package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// VoucherUsecase consumes and lists vouchers.
type VoucherUsecase interface {
	// ApplyToOrder validates and consumes a voucher for an order, returning
	// the computed discount. Exactly one application of a code can ever
	// succeed; expiry is checked lazily against the current time.
	ApplyToOrder(ctx context.Context, input *ApplyVoucherInput) (*ApplyVoucherResult, error)

	// ListActiveVouchers returns the user's usable vouchers. When orderTotal
	// is non-nil each voucher is annotated with its computed discount and
	// applicability for that total, sorted best-discount-first with
	// points-cost as tiebreak. Stale active-but-expired rows are normalized
	// to expired and excluded.
	ListActiveVouchers(ctx context.Context, userID uuid.UUID, orderTotal *float64) ([]*AnnotatedVoucher, error)

	// VoucherQR renders the voucher's code as a PNG QR image.
	VoucherQR(ctx context.Context, code string) ([]byte, error)
}

// ApplyVoucherInput carries a voucher application request.
type ApplyVoucherInput struct {
	Code       string    `json:"code" validate:"required"`
	OrderID    uuid.UUID `json:"order_id" validate:"required"`
	OrderTotal float64   `json:"order_total" validate:"gt=0"`
}

// ApplyVoucherResult reports the consumed voucher and the discount granted.
type ApplyVoucherResult struct {
	Voucher        *entity.Voucher `json:"voucher"`
	DiscountAmount float64         `json:"discount_amount"`
}

// AnnotatedVoucher is a voucher decorated with its value against a given
// order total.
type AnnotatedVoucher struct {
	Voucher        *entity.Voucher `json:"voucher"`
	Discount       float64         `json:"discount"`        // Computed discount for the order total, 0 when not annotated.
	Applicable     bool            `json:"applicable"`      // Whether the order total meets the voucher's minimum.
	PointsRequired int64           `json:"points_required"` // Point cost of the originating reward, for tiebreak display.
}
