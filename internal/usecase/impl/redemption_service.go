package impl

import (
	"context"
	"log/slog"
	"time"

	"loyalty/config"
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

// Voucher code collisions are resolved by regenerating; the odds of two
// collisions in a row are negligible.
const maxCodeAttempts = 3

// redemptionService implements the RedemptionUsecase interface. It is the
// only writer that mutates account, reward and voucher state in a single
// operation, and it always does so inside one transaction.
type redemptionService struct {
	txManager     repository.TransactionManager
	codeGenerator service.VoucherCodeGenerator
	publisher     service.EventPublisher
	metrics       *metrics.Metrics
	voucherTTL    time.Duration
	logger        *slog.Logger
}

// RedemptionServiceParams holds dependencies for RedemptionService, injected by Fx.
type RedemptionServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	CodeGenerator service.VoucherCodeGenerator
	Publisher     service.EventPublisher
	Metrics       *metrics.Metrics
	Config        *config.Config
	Logger        *slog.Logger
}

// NewRedemptionService is the constructor for redemptionService.
func NewRedemptionService(params RedemptionServiceParams) usecase.RedemptionUsecase {
	voucherTTL := config.DefaultVoucherValidity
	if params.Config != nil && params.Config.Loyalty != nil && params.Config.Loyalty.VoucherValidity > 0 {
		voucherTTL = params.Config.Loyalty.VoucherValidity
	}

	return &redemptionService{
		txManager:     params.TxManager,
		codeGenerator: params.CodeGenerator,
		publisher:     params.Publisher,
		metrics:       params.Metrics,
		voucherTTL:    voucherTTL,
		logger:        params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *redemptionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Redeem converts points into a voucher. All writes happen in one
// transaction, in a fixed order: reward counter, account debit, ledger
// entry, voucher row. Any failure rolls the whole transaction back, so
// there is never a partial debit, a stray counter increment or an orphaned
// voucher.
func (srv *redemptionService) Redeem(ctx context.Context, input *usecase.RedeemInput) (*usecase.RedemptionResult, error) {
	if input == nil || input.UserID == uuid.Nil || input.RewardID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id and reward id are required")
	}

	now := time.Now()
	result := &usecase.RedemptionResult{}
	var pointsSpent int64
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		rewardRepo := repoFactory.RewardRepo()

		// Validation order is fixed: reward exists and is active, cap not
		// reached, then balance. The reads give clean error ordering; the
		// conditional updates below are the authoritative checks under
		// contention.
		reward, err := rewardRepo.FindByID(ctx, input.RewardID)
		if err != nil {
			if errors.Is(err, repository.ErrRewardNotFound) {
				return domainerrors.ErrRewardNotFound.WrapMessage("reward does not exist")
			}

			return errors.Wrap(err, "failed to find reward")
		}
		if !reward.Redeemable() {
			return domainerrors.ErrRewardInactiveOrExhausted.WrapMessage("reward is inactive or its cap is reached")
		}

		if err := rewardRepo.IncrementRedemptions(ctx, reward.ID); err != nil {
			if errors.Is(err, repository.ErrRewardExhausted) || errors.Is(err, repository.ErrRewardNotFound) {
				return domainerrors.ErrRewardInactiveOrExhausted.WrapMessage("reward cap reached concurrently")
			}

			return errors.Wrap(err, "failed to increment redemption counter")
		}

		account, err := repoFactory.AccountRepo().Debit(ctx, input.UserID, reward.PointsRequired)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientPoints) || errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrInsufficientPoints.WrapMessage("balance does not cover the reward cost")
			}

			return errors.Wrap(err, "failed to debit points")
		}

		if err := repoFactory.LedgerRepo().Append(ctx, &entity.LedgerEntry{
			UserID:      input.UserID,
			OrderID:     input.OrderID,
			Type:        entity.EntryTypeRedeemed,
			PointsDelta: -reward.PointsRequired,
			Description: "Redeemed reward: " + reward.Name,
		}); err != nil {
			return errors.Wrap(err, "failed to append redeemed entry")
		}

		voucher, err := srv.issueVoucher(ctx, repoFactory.VoucherRepo(), input.UserID, reward, now)
		if err != nil {
			return err
		}

		result.Account = account
		result.Voucher = voucher
		pointsSpent = reward.PointsRequired

		return nil
	})
	if err != nil {
		srv.metrics.RedemptionsAborted.WithLabelValues(abortReason(err)).Inc()

		return nil, err
	}

	srv.metrics.RedemptionsCommitted.Inc()
	srv.publishIssued(ctx, input, result, pointsSpent)

	return result, nil
}

// issueVoucher creates the voucher row with terms snapshotted from the
// reward, regenerating the code on the rare unique-index collision.
func (srv *redemptionService) issueVoucher(ctx context.Context, voucherRepo repository.VoucherRepository, userID uuid.UUID, reward *entity.RewardDefinition, now time.Time) (*entity.Voucher, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := srv.codeGenerator.NewCode()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate voucher code")
		}

		voucher := &entity.Voucher{
			UserID:         userID,
			RewardID:       reward.ID,
			Code:           code,
			DiscountAmount: reward.RewardValue,
			DiscountType:   reward.DiscountType(),
			MinOrderAmount: reward.MinOrderAmount,
			Status:         entity.VoucherStatusActive,
			ExpiresAt:      now.Add(srv.voucherTTL),
		}

		if err := voucherRepo.Create(ctx, voucher); err != nil {
			if errors.Is(err, repository.ErrDuplicateVoucherCode) {
				continue
			}

			return nil, errors.Wrap(err, "failed to create voucher")
		}

		return voucher, nil
	}

	return nil, domainerrors.ErrInternalError.WrapMessage("could not generate a unique voucher code")
}

// abortReason buckets a redemption failure for metrics.
func abortReason(err error) string {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.ErrorCode() {
		case domainerrors.ErrInsufficientPoints.ErrorCode():
			return "insufficient_points"
		case domainerrors.ErrRewardInactiveOrExhausted.ErrorCode(), domainerrors.ErrRewardNotFound.ErrorCode():
			return "reward_unavailable"
		case domainerrors.ErrConcurrencyContention.ErrorCode():
			return "contention"
		}
	}

	return "internal"
}

// publishIssued emits a voucher.issued event after commit, best effort.
func (srv *redemptionService) publishIssued(ctx context.Context, input *usecase.RedeemInput, result *usecase.RedemptionResult, pointsSpent int64) {
	event := &service.LoyaltyEvent{
		RequestID:   deliverycontext.GetRequestIDFromContext(ctx),
		EventID:     uuid.New().String(),
		Type:        service.EventTypeVoucherIssued,
		UserID:      input.UserID.String(),
		RewardID:    input.RewardID.String(),
		VoucherCode: result.Voucher.Code,
		PointsDelta: -pointsSpent,
		Balance:     result.Account.PointsBalance,
	}
	if input.OrderID != nil {
		event.OrderID = input.OrderID.String()
	}

	if err := srv.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish voucher.issued event",
			slog.String("userId", input.UserID.String()),
			slog.Any("error", err),
		)
	}
}
