// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "loyalty/internal/delivery/context"
	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/points"
	"loyalty/internal/domain/repository"
	"loyalty/internal/domain/service"
	"loyalty/internal/infra/metrics"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// earningService implements the EarningUsecase interface.
type earningService struct {
	txManager       repository.TransactionManager
	programProvider service.ProgramProvider
	publisher       service.EventPublisher
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

// EarningServiceParams holds dependencies for EarningService, injected by Fx.
type EarningServiceParams struct {
	fx.In

	TxManager       repository.TransactionManager
	ProgramProvider service.ProgramProvider
	Publisher       service.EventPublisher
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// NewEarningService is the constructor for earningService.
func NewEarningService(params EarningServiceParams) usecase.EarningUsecase {
	return &earningService{
		txManager:       params.TxManager,
		programProvider: params.ProgramProvider,
		publisher:       params.Publisher,
		metrics:         params.Metrics,
		logger:          params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *earningService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// OnOrderCompleted awards points for a completed order. Base points and the
// optional first-order bonus commit in a single transaction; a repeated
// invocation for the same order changes nothing.
func (srv *earningService) OnOrderCompleted(ctx context.Context, input *usecase.OrderCompletedInput) (*usecase.EarningResult, error) {
	if input == nil || input.UserID == uuid.Nil || input.OrderID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id and order id are required")
	}
	if input.OrderAmount < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("order amount must not be negative")
	}

	program, err := srv.programProvider.ActiveProgram(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active program")
	}

	basePoints := points.ComputeOrderPoints(input.OrderAmount, program)
	now := time.Now()

	// The one-time bonus is guarded by a unique ledger index. Losing that
	// race under concurrent completions rolls the whole transaction back, so
	// run it once more; the rerun sees the committed bonus entry and awards
	// base points only.
	var result *usecase.EarningResult
	for attempt := 0; ; attempt++ {
		result = &usecase.EarningResult{}
		err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			return srv.awardOrder(ctx, repoFactory, input, program, basePoints, now, result)
		})
		if errors.Is(err, repository.ErrDuplicateFirstOrder) && attempt == 0 {
			continue
		}

		break
	}
	if err != nil {
		if result.Duplicate {
			return srv.duplicateResult(ctx, input.UserID)
		}
		srv.log(ctx).Error("Order point awarding failed",
			slog.String("userId", input.UserID.String()),
			slog.String("orderId", input.OrderID.String()),
			slog.Any("error", err),
		)

		return nil, err
	}
	if result.Duplicate {
		return srv.duplicateResult(ctx, input.UserID)
	}

	srv.metrics.PointsEarned.Add(float64(result.PointsAwarded))
	srv.publishEarned(ctx, input.UserID, &input.OrderID, result)

	return result, nil
}

// awardOrder is the transaction body of OnOrderCompleted. It reports
// ErrDuplicateFirstOrder unwrapped so the caller can rerun without the bonus.
func (srv *earningService) awardOrder(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	input *usecase.OrderCompletedInput,
	program points.Program,
	basePoints int64,
	now time.Time,
	result *usecase.EarningResult,
) error {
	ledgerRepo := repoFactory.LedgerRepo()
	accountRepo := repoFactory.AccountRepo()

	awarded, err := ledgerRepo.HasOrderEarning(ctx, input.OrderID)
	if err != nil {
		return errors.Wrap(err, "failed to check order earning")
	}
	if awarded {
		result.Duplicate = true

		return nil
	}

	hasEarned, err := ledgerRepo.HasEntryOfType(ctx, input.UserID, entity.EntryTypeEarned)
	if err != nil {
		return errors.Wrap(err, "failed to check earning history")
	}
	hasBonus, err := ledgerRepo.HasEntryOfType(ctx, input.UserID, entity.EntryTypeFirstOrder)
	if err != nil {
		return errors.Wrap(err, "failed to check first order bonus")
	}
	firstOrder := !hasEarned && !hasBonus

	// Credit even when basePoints is 0 so the account row and the
	// per-order earned entry exist; the entry doubles as the
	// idempotency marker.
	account, err := accountRepo.Credit(ctx, input.UserID, basePoints, now)
	if err != nil {
		return errors.Wrap(err, "failed to credit base points")
	}

	orderID := input.OrderID
	if err := ledgerRepo.Append(ctx, &entity.LedgerEntry{
		UserID:      input.UserID,
		OrderID:     &orderID,
		Type:        entity.EntryTypeEarned,
		PointsDelta: basePoints,
		Description: "Points earned for completed order",
	}); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrderEarning) {
			// Lost a race with a concurrent award of the same order;
			// roll back our credit and report the duplicate.
			result.Duplicate = true

			return err
		}

		return errors.Wrap(err, "failed to append earned entry")
	}

	result.PointsAwarded = basePoints
	if firstOrder && program.PointsForFirstOrder > 0 {
		// The unique one-bonus-per-user index is the authoritative guard;
		// the read above only gives clean common-path ordering.
		if err := ledgerRepo.Append(ctx, &entity.LedgerEntry{
			UserID:      input.UserID,
			OrderID:     &orderID,
			Type:        entity.EntryTypeFirstOrder,
			PointsDelta: program.PointsForFirstOrder,
			Description: "First order bonus",
		}); err != nil {
			if errors.Is(err, repository.ErrDuplicateFirstOrder) {
				return err
			}

			return errors.Wrap(err, "failed to append first order entry")
		}

		account, err = accountRepo.Credit(ctx, input.UserID, program.PointsForFirstOrder, now)
		if err != nil {
			return errors.Wrap(err, "failed to credit first order bonus")
		}

		result.PointsAwarded += program.PointsForFirstOrder
		result.FirstOrder = true
	}

	result.Account = account

	return nil
}

// OnSignup credits the one-time signup bonus. The ledger's one-signup-per-user
// guard makes a second invocation a no-op.
func (srv *earningService) OnSignup(ctx context.Context, userID uuid.UUID) (*usecase.EarningResult, error) {
	if userID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id is required")
	}

	program, err := srv.programProvider.ActiveProgram(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active program")
	}

	now := time.Now()
	result := &usecase.EarningResult{}
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		ledgerRepo := repoFactory.LedgerRepo()

		awarded, err := ledgerRepo.HasEntryOfType(ctx, userID, entity.EntryTypeSignup)
		if err != nil {
			return errors.Wrap(err, "failed to check signup history")
		}
		if awarded {
			result.Duplicate = true

			return nil
		}

		account, err := repoFactory.AccountRepo().Credit(ctx, userID, program.PointsForSignup, now)
		if err != nil {
			return errors.Wrap(err, "failed to credit signup bonus")
		}

		if err := ledgerRepo.Append(ctx, &entity.LedgerEntry{
			UserID:      userID,
			Type:        entity.EntryTypeSignup,
			PointsDelta: program.PointsForSignup,
			Description: "Signup bonus",
		}); err != nil {
			if errors.Is(err, repository.ErrDuplicateSignupAward) {
				result.Duplicate = true

				return err
			}

			return errors.Wrap(err, "failed to append signup entry")
		}

		result.Account = account
		result.PointsAwarded = program.PointsForSignup

		return nil
	})
	if err != nil {
		if result.Duplicate {
			return srv.duplicateResult(ctx, userID)
		}
		srv.log(ctx).Error("Signup point awarding failed",
			slog.String("userId", userID.String()),
			slog.Any("error", err),
		)

		return nil, err
	}
	if result.Duplicate {
		return srv.duplicateResult(ctx, userID)
	}

	srv.metrics.PointsEarned.Add(float64(result.PointsAwarded))
	srv.publishEarned(ctx, userID, nil, result)

	return result, nil
}

// duplicateResult builds the no-op outcome for an already-awarded event,
// reporting the current balance.
func (srv *earningService) duplicateResult(ctx context.Context, userID uuid.UUID) (*usecase.EarningResult, error) {
	account, err := srv.currentAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Earning event already awarded, skipping",
		slog.String("userId", userID.String()),
	)

	return &usecase.EarningResult{Account: account, Duplicate: true}, nil
}

func (srv *earningService) currentAccount(ctx context.Context, userID uuid.UUID) (*entity.LoyaltyAccount, error) {
	var account *entity.LoyaltyAccount
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AccountRepo().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				found = entity.ZeroAccount(userID)
			} else {
				return errors.Wrap(err, "failed to find account")
			}
		}
		account = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// publishEarned emits a points.earned event after commit, best effort.
func (srv *earningService) publishEarned(ctx context.Context, userID uuid.UUID, orderID *uuid.UUID, result *usecase.EarningResult) {
	event := &service.LoyaltyEvent{
		RequestID:   deliverycontext.GetRequestIDFromContext(ctx),
		EventID:     uuid.New().String(),
		Type:        service.EventTypePointsEarned,
		UserID:      userID.String(),
		PointsDelta: result.PointsAwarded,
	}
	if orderID != nil {
		event.OrderID = orderID.String()
	}
	if result.Account != nil {
		event.Balance = result.Account.PointsBalance
	}

	if err := srv.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish points.earned event",
			slog.String("userId", userID.String()),
			slog.Any("error", err),
		)
	}
}
