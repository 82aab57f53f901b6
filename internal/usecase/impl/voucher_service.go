package impl

import (
	"context"
	"log/slog"
	"sort"
	"time"

	deliverycontext "loyalty/internal/delivery/context"
	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/domain/service"
	"loyalty/internal/infra/metrics"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// voucherService implements the VoucherUsecase interface.
type voucherService struct {
	txManager     repository.TransactionManager
	voucherRepo   repository.VoucherRepository
	rewardRepo    repository.RewardRepository
	qrcodeService service.QRCodeService
	publisher     service.EventPublisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// VoucherServiceParams holds dependencies for VoucherService, injected by Fx.
type VoucherServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	VoucherRepo   repository.VoucherRepository
	RewardRepo    repository.RewardRepository
	QRCodeService service.QRCodeService
	Publisher     service.EventPublisher
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// NewVoucherService is the constructor for voucherService.
func NewVoucherService(params VoucherServiceParams) usecase.VoucherUsecase {
	return &voucherService{
		txManager:     params.TxManager,
		voucherRepo:   params.VoucherRepo,
		rewardRepo:    params.RewardRepo,
		qrcodeService: params.QRCodeService,
		publisher:     params.Publisher,
		metrics:       params.Metrics,
		logger:        params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *voucherService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ApplyToOrder validates and consumes a voucher. The conditional
// active-and-unexpired transition in MarkUsed guarantees that of two
// concurrent applications of the same code exactly one succeeds.
func (srv *voucherService) ApplyToOrder(ctx context.Context, input *usecase.ApplyVoucherInput) (*usecase.ApplyVoucherResult, error) {
	if input == nil || input.Code == "" || input.OrderID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("voucher code and order id are required")
	}
	if input.OrderTotal <= 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("order total must be positive")
	}

	now := time.Now()
	result := &usecase.ApplyVoucherResult{}
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		voucherRepo := repoFactory.VoucherRepo()

		voucher, err := voucherRepo.FindByCode(ctx, input.Code)
		if err != nil {
			if errors.Is(err, repository.ErrVoucherNotFound) {
				return domainerrors.ErrVoucherNotFound.WrapMessage("no voucher for code")
			}

			return errors.Wrap(err, "failed to find voucher")
		}

		// Validation order: status, expiry, then minimum order amount.
		if !voucher.Usable(now) {
			return domainerrors.ErrVoucherExpiredOrUsed.WrapMessage("voucher is not active or has expired")
		}
		if input.OrderTotal < voucher.MinOrderAmount {
			return domainerrors.ErrVoucherMinOrderNotMet.WrapMessage("order total below voucher minimum")
		}

		used, err := voucherRepo.MarkUsed(ctx, input.Code, input.OrderID, now)
		if err != nil {
			if errors.Is(err, repository.ErrVoucherNotUsable) || errors.Is(err, repository.ErrVoucherNotFound) {
				return domainerrors.ErrVoucherExpiredOrUsed.WrapMessage("voucher was consumed concurrently")
			}

			return errors.Wrap(err, "failed to mark voucher used")
		}

		result.Voucher = used
		result.DiscountAmount = used.DiscountFor(input.OrderTotal)

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.metrics.VouchersApplied.Inc()
	srv.publishUsed(ctx, input, result)

	return result, nil
}

// ListActiveVouchers returns the user's usable vouchers. Stale rows whose
// expiry has passed are normalized to expired and dropped from the result.
func (srv *voucherService) ListActiveVouchers(ctx context.Context, userID uuid.UUID, orderTotal *float64) ([]*usecase.AnnotatedVoucher, error) {
	if userID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id is required")
	}

	vouchers, err := srv.voucherRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vouchers")
	}

	now := time.Now()
	usable := make([]*entity.Voucher, 0, len(vouchers))
	var stale []uuid.UUID
	for _, voucher := range vouchers {
		if voucher.Expired(now) {
			stale = append(stale, voucher.ID)

			continue
		}
		usable = append(usable, voucher)
	}

	if len(stale) > 0 {
		if err := srv.voucherRepo.MarkExpired(ctx, stale); err != nil {
			// Normalization is opportunistic; the stale rows stay excluded
			// from this response either way.
			srv.log(ctx).Warn("Failed to expire stale vouchers",
				slog.String("userId", userID.String()),
				slog.Int("count", len(stale)),
				slog.Any("error", err),
			)
		}
	}

	annotated := make([]*usecase.AnnotatedVoucher, 0, len(usable))
	for _, voucher := range usable {
		item := &usecase.AnnotatedVoucher{Voucher: voucher}
		if reward, err := srv.rewardRepo.FindByID(ctx, voucher.RewardID); err == nil {
			item.PointsRequired = reward.PointsRequired
		}
		if orderTotal != nil {
			item.Applicable = *orderTotal >= voucher.MinOrderAmount
			item.Discount = voucher.DiscountFor(*orderTotal)
		}
		annotated = append(annotated, item)
	}

	if orderTotal != nil {
		sort.SliceStable(annotated, func(i, j int) bool {
			if annotated[i].Discount != annotated[j].Discount {
				return annotated[i].Discount > annotated[j].Discount
			}

			return annotated[i].PointsRequired < annotated[j].PointsRequired
		})
	}

	return annotated, nil
}

// VoucherQR renders the voucher's code as a PNG QR image.
func (srv *voucherService) VoucherQR(ctx context.Context, code string) ([]byte, error) {
	if code == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("voucher code is required")
	}

	if _, err := srv.voucherRepo.FindByCode(ctx, code); err != nil {
		if errors.Is(err, repository.ErrVoucherNotFound) {
			return nil, domainerrors.ErrVoucherNotFound.WrapMessage("no voucher for code")
		}

		return nil, errors.Wrap(err, "failed to find voucher")
	}

	png, err := srv.qrcodeService.GenerateVoucherQR(code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render voucher QR")
	}

	return png, nil
}

// publishUsed emits a voucher.used event after commit, best effort.
func (srv *voucherService) publishUsed(ctx context.Context, input *usecase.ApplyVoucherInput, result *usecase.ApplyVoucherResult) {
	event := &service.LoyaltyEvent{
		RequestID:   deliverycontext.GetRequestIDFromContext(ctx),
		EventID:     uuid.New().String(),
		Type:        service.EventTypeVoucherUsed,
		UserID:      result.Voucher.UserID.String(),
		OrderID:     input.OrderID.String(),
		RewardID:    result.Voucher.RewardID.String(),
		VoucherCode: result.Voucher.Code,
	}

	if err := srv.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish voucher.used event",
			slog.String("code", input.Code),
			slog.Any("error", err),
		)
	}
}
