// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements the repository.AccountRepository interface.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{
		db: db,
	}
}

// FindByUserID retrieves the loyalty account for a user.
func (repo *accountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.LoyaltyAccount, error) {
	var accountM model.LoyaltyAccountModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find loyalty account by user ID")
	}

	return accountM.ToEntity(), nil
}

// Credit atomically adds amount to the balance, creating the account row on
// first contact. The increment happens in the upsert itself, so concurrent
// credits for the same user serialize on the row and never lose an update.
func (repo *accountRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64, earnedAt time.Time) (*entity.LoyaltyAccount, error) {
	accountM := &model.LoyaltyAccountModel{
		UserID:        userID,
		PointsBalance: amount,
		TotalEarned:   amount,
		LastEarnedAt:  &earnedAt,
	}

	if err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points_balance": gorm.Expr("points_balance + ?", amount),
			"total_earned":   gorm.Expr("total_earned + ?", amount),
			"last_earned_at": earnedAt,
			"updated_at":     time.Now(),
		}),
	}).Create(accountM).Error; err != nil {
		if isLockContention(err) {
			return nil, domainerrors.ErrConcurrencyContention
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to credit loyalty account")
	}

	return repo.FindByUserID(ctx, userID)
}

// Debit atomically subtracts amount from the balance, only when the balance
// covers it. The guard and the write are one conditional UPDATE; a zero
// rows-affected result means nothing was written.
func (repo *accountRepository) Debit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.LoyaltyAccount, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.LoyaltyAccountModel{}).
		Where("user_id = ? AND points_balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"points_balance": gorm.Expr("points_balance - ?", amount),
			"total_redeemed": gorm.Expr("total_redeemed + ?", amount),
		})
	if result.Error != nil {
		if isLockContention(result.Error) {
			return nil, domainerrors.ErrConcurrencyContention
		}
		if isCheckConstraintViolation(result.Error) {
			// Backstop for the points_balance >= 0 check; the WHERE guard
			// above makes this unreachable unless the row was corrupted.
			return nil, repository.ErrInsufficientPoints
		}

		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to debit loyalty account")
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing account from an insufficient balance.
		if _, err := repo.FindByUserID(ctx, userID); err != nil {
			return nil, err
		}

		return nil, repository.ErrInsufficientPoints
	}

	return repo.FindByUserID(ctx, userID)
}
