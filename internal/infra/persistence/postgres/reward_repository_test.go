package postgres

import (
	"context"
	"testing"

	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedReward(t *testing.T, db *gorm.DB, reward *entity.RewardDefinition) {
	t.Helper()

	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	require.NoError(t, db.Create(model.RewardFromEntity(reward)).Error)
}

func TestRewardRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRewardRepository(db)
	ctx := context.Background()

	reward := &entity.RewardDefinition{
		Name:           "$5 off",
		PointsRequired: 200,
		RewardType:     entity.RewardTypeFixedDiscount,
		RewardValue:    5,
		IsActive:       true,
	}
	seedReward(t, db, reward)

	found, err := repo.FindByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, reward.Name, found.Name)
	assert.Equal(t, int64(200), found.PointsRequired)

	_, err = repo.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrRewardNotFound)
}

func TestRewardRepository_ListActiveCheapestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRewardRepository(db)
	ctx := context.Background()

	seedReward(t, db, &entity.RewardDefinition{Name: "expensive", PointsRequired: 500, RewardType: entity.RewardTypeFixedDiscount, RewardValue: 15, IsActive: true})
	seedReward(t, db, &entity.RewardDefinition{Name: "cheap", PointsRequired: 100, RewardType: entity.RewardTypeDeliveryFeeWaiver, RewardValue: 3, IsActive: true})
	seedReward(t, db, &entity.RewardDefinition{Name: "retired", PointsRequired: 50, RewardType: entity.RewardTypeFixedDiscount, RewardValue: 1, IsActive: false})

	rewards, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rewards, 2)
	assert.Equal(t, "cheap", rewards[0].Name)
	assert.Equal(t, "expensive", rewards[1].Name)
}

func TestRewardRepository_IncrementStopsAtCap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRewardRepository(db)
	ctx := context.Background()

	cap := int64(3)
	reward := &entity.RewardDefinition{
		Name:           "limited",
		PointsRequired: 100,
		RewardType:     entity.RewardTypeFixedDiscount,
		RewardValue:    5,
		IsActive:       true,
		MaxRedemptions: &cap,
	}
	seedReward(t, db, reward)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementRedemptions(ctx, reward.ID))
	}

	err := repo.IncrementRedemptions(ctx, reward.ID)
	require.ErrorIs(t, err, repository.ErrRewardExhausted)

	found, err := repo.FindByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), found.CurrentRedemptions)
}

func TestRewardRepository_IncrementUncapped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRewardRepository(db)
	ctx := context.Background()

	reward := &entity.RewardDefinition{
		Name:           "open-ended",
		PointsRequired: 100,
		RewardType:     entity.RewardTypePercentageDiscount,
		RewardValue:    10,
		IsActive:       true,
	}
	seedReward(t, db, reward)

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.IncrementRedemptions(ctx, reward.ID))
	}
}

func TestRewardRepository_IncrementInactiveOrMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRewardRepository(db)
	ctx := context.Background()

	reward := &entity.RewardDefinition{
		Name:           "retired",
		PointsRequired: 100,
		RewardType:     entity.RewardTypeFixedDiscount,
		RewardValue:    5,
		IsActive:       false,
	}
	seedReward(t, db, reward)

	err := repo.IncrementRedemptions(ctx, reward.ID)
	require.ErrorIs(t, err, repository.ErrRewardExhausted)

	err = repo.IncrementRedemptions(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrRewardNotFound)
}
