package impl

import (
	"context"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

// balanceService implements the BalanceUsecase interface. All reads here
// are plain unlocked snapshots.
type balanceService struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	rewardRepo  repository.RewardRepository
}

// BalanceServiceParams holds dependencies for BalanceService, injected by Fx.
type BalanceServiceParams struct {
	fx.In

	AccountRepo repository.AccountRepository
	LedgerRepo  repository.LedgerRepository
	RewardRepo  repository.RewardRepository
}

// NewBalanceService is the constructor for balanceService.
func NewBalanceService(params BalanceServiceParams) usecase.BalanceUsecase {
	return &balanceService{
		accountRepo: params.AccountRepo,
		ledgerRepo:  params.LedgerRepo,
		rewardRepo:  params.RewardRepo,
	}
}

// GetBalance returns the account, zero-valued for users that never earned.
func (srv *balanceService) GetBalance(ctx context.Context, userID uuid.UUID) (*entity.LoyaltyAccount, error) {
	if userID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id is required")
	}

	account, err := srv.accountRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return entity.ZeroAccount(userID), nil
		}

		return nil, errors.Wrap(err, "failed to find account")
	}

	return account, nil
}

// ListTransactions returns the user's ledger entries, newest first.
func (srv *balanceService) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id is required")
	}
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	entries, err := srv.ledgerRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ledger entries")
	}

	return entries, nil
}

// ListRewards returns the active reward catalog.
func (srv *balanceService) ListRewards(ctx context.Context) ([]*entity.RewardDefinition, error) {
	rewards, err := srv.rewardRepo.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rewards")
	}

	return rewards, nil
}
