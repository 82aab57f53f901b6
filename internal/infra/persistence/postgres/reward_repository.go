// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// rewardRepository implements the repository.RewardRepository interface.
type rewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository is the constructor for rewardRepository.
func NewRewardRepository(db *gorm.DB) repository.RewardRepository {
	return &rewardRepository{
		db: db,
	}
}

// FindByID retrieves a single reward definition.
func (repo *rewardRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RewardDefinition, error) {
	var rewardM model.RewardModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rewardM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRewardNotFound
		}

		return nil, errors.Wrap(err, "failed to find reward by ID")
	}

	return rewardM.ToEntity(), nil
}

// ListActive returns all currently active reward definitions, cheapest first.
func (repo *rewardRepository) ListActive(ctx context.Context) ([]*entity.RewardDefinition, error) {
	var rewardMs []model.RewardModel

	if err := repo.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("points_required ASC").
		Find(&rewardMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list active rewards")
	}

	rewards := make([]*entity.RewardDefinition, 0, len(rewardMs))
	for i := range rewardMs {
		rewards = append(rewards, rewardMs[i].ToEntity())
	}

	return rewards, nil
}

// IncrementRedemptions advances the redemption counter by one. The activity
// and cap checks live in the WHERE clause, so under concurrency at most
// max_redemptions increments ever succeed. A failed increment is reported
// without writing; the counter itself is never decremented.
func (repo *rewardRepository) IncrementRedemptions(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RewardModel{}).
		Where("id = ? AND is_active = ? AND (max_redemptions IS NULL OR current_redemptions < max_redemptions)", id, true).
		Update("current_redemptions", gorm.Expr("current_redemptions + 1"))
	if result.Error != nil {
		if isLockContention(result.Error) {
			return domainerrors.ErrConcurrencyContention
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to increment reward redemptions")
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing reward from an inactive or exhausted one.
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}

		return repository.ErrRewardExhausted
	}

	return nil
}
