package impl

import (
	"context"
	"testing"
	"time"

	"loyalty/config"
	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/service"
	"loyalty/internal/errors"
	"loyalty/internal/infra/persistence/model"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedemptionService(env *testEnv, codeGen service.VoucherCodeGenerator) usecase.RedemptionUsecase {
	return NewRedemptionService(RedemptionServiceParams{
		TxManager:     env.txManager,
		CodeGenerator: codeGen,
		Publisher:     env.publisher,
		Metrics:       env.metrics,
		Config:        &config.Config{},
		Logger:        env.logger,
	})
}

func seedTestReward(t *testing.T, env *testEnv, reward *entity.RewardDefinition) *entity.RewardDefinition {
	t.Helper()

	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	require.NoError(t, env.db.Create(model.RewardFromEntity(reward)).Error)

	return reward
}

func fundAccount(t *testing.T, env *testEnv, userID uuid.UUID, amount int64) {
	t.Helper()

	_, err := env.accountRepo.Credit(context.Background(), userID, amount, time.Now())
	require.NoError(t, err)
}

func TestRedemptionService_Redeem(t *testing.T) {
	env := newTestEnv(t)
	svc := newRedemptionService(env, newQueuedCodeGenerator())
	ctx := context.Background()

	reward := seedTestReward(t, env, &entity.RewardDefinition{
		Name:           "$5 off",
		PointsRequired: 200,
		RewardType:     entity.RewardTypeFixedDiscount,
		RewardValue:    5,
		MinOrderAmount: 20,
		IsActive:       true,
	})

	userID := uuid.New()
	fundAccount(t, env, userID, 240)

	before := time.Now()
	result, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(40), result.Account.PointsBalance)
	assert.Equal(t, int64(200), result.Account.TotalRedeemed)

	voucher := result.Voucher
	require.NotNil(t, voucher)
	assert.Equal(t, entity.VoucherStatusActive, voucher.Status)
	assert.Equal(t, entity.DiscountTypeFixed, voucher.DiscountType)
	assert.Equal(t, float64(5), voucher.DiscountAmount)
	assert.Equal(t, float64(20), voucher.MinOrderAmount)
	assert.NotEmpty(t, voucher.Code)
	// Default validity window of 30 days.
	assert.WithinDuration(t, before.Add(config.DefaultVoucherValidity), voucher.ExpiresAt, time.Minute)

	found, err := env.rewardRepo.FindByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.CurrentRedemptions)

	sum, err := env.ledgerRepo.SumDeltas(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), sum)

	events := env.publisher.eventsOfType(service.EventTypeVoucherIssued)
	require.Len(t, events, 1)
	assert.Equal(t, voucher.Code, events[0].VoucherCode)
	assert.Equal(t, int64(-200), events[0].PointsDelta)
}

func TestRedemptionService_Redeem_NotIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := newRedemptionService(env, newQueuedCodeGenerator())
	ctx := context.Background()

	reward := seedTestReward(t, env, &entity.RewardDefinition{
		Name: "$5 off", PointsRequired: 100, RewardType: entity.RewardTypeFixedDiscount, RewardValue: 5, IsActive: true,
	})
	userID := uuid.New()
	fundAccount(t, env, userID, 250)

	first, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
	require.NoError(t, err)
	second, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
	require.NoError(t, err)

	// Two distinct vouchers, two debits.
	assert.NotEqual(t, first.Voucher.Code, second.Voucher.Code)
	assert.Equal(t, int64(50), second.Account.PointsBalance)
}

func TestRedemptionService_Redeem_InsufficientPoints(t *testing.T) {
	env := newTestEnv(t)
	svc := newRedemptionService(env, newQueuedCodeGenerator())
	ctx := context.Background()

	reward := seedTestReward(t, env, &entity.RewardDefinition{
		Name: "$5 off", PointsRequired: 200, RewardType: entity.RewardTypeFixedDiscount, RewardValue: 5, IsActive: true,
	})
	userID := uuid.New()
	fundAccount(t, env, userID, 199)

	_, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainerrors.ErrInsufficientPoints.ErrorCode(), appErr.ErrorCode())

	// Nothing moved: balance intact, counter rolled back, no voucher.
	account, err := env.accountRepo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(199), account.PointsBalance)

	found, err := env.rewardRepo.FindByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), found.CurrentRedemptions)

	vouchers, err := env.voucherRepo.ListActiveByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, vouchers)
}

func TestRedemptionService_Redeem_RewardUnavailable(t *testing.T) {
	env := newTestEnv(t)
	svc := newRedemptionService(env, newQueuedCodeGenerator())
	ctx := context.Background()
	userID := uuid.New()
	fundAccount(t, env, userID, 1000)

	t.Run("unknown reward", func(t *testing.T) {
		_, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: uuid.New()})
		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, domainerrors.ErrRewardNotFound.ErrorCode(), appErr.ErrorCode())
	})

	t.Run("inactive reward", func(t *testing.T) {
		reward := seedTestReward(t, env, &entity.RewardDefinition{
			Name: "retired", PointsRequired: 100, RewardType: entity.RewardTypeFixedDiscount, RewardValue: 5, IsActive: false,
		})
		_, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, domainerrors.ErrRewardInactiveOrExhausted.ErrorCode(), appErr.ErrorCode())
	})

	t.Run("exhausted cap", func(t *testing.T) {
		cap := int64(1)
		reward := seedTestReward(t, env, &entity.RewardDefinition{
			Name: "limited", PointsRequired: 100, RewardType: entity.RewardTypeFixedDiscount, RewardValue: 5,
			IsActive: true, MaxRedemptions: &cap, CurrentRedemptions: 1,
		})
		_, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, domainerrors.ErrRewardInactiveOrExhausted.ErrorCode(), appErr.ErrorCode())

		// The failed attempt spent nothing.
		account, findErr := env.accountRepo.FindByUserID(ctx, userID)
		require.NoError(t, findErr)
		assert.Equal(t, int64(1000), account.PointsBalance)
	})
}

func TestRedemptionService_Redeem_RetriesOnCodeCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	taken := "AAAA-BBBB-CCCC-DDDD"
	require.NoError(t, env.voucherRepo.Create(ctx, &entity.Voucher{
		UserID:       uuid.New(),
		RewardID:     uuid.New(),
		Code:         taken,
		DiscountType: entity.DiscountTypeFixed,
		Status:       entity.VoucherStatusActive,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}))

	// First generated code collides with the existing voucher.
	svc := newRedemptionService(env, newQueuedCodeGenerator(taken))

	reward := seedTestReward(t, env, &entity.RewardDefinition{
		Name: "$5 off", PointsRequired: 100, RewardType: entity.RewardTypeFixedDiscount, RewardValue: 5, IsActive: true,
	})
	userID := uuid.New()
	fundAccount(t, env, userID, 100)

	result, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
	require.NoError(t, err)
	assert.NotEqual(t, taken, result.Voucher.Code)
}

func TestRedemptionService_Redeem_SnapshotsRewardTerms(t *testing.T) {
	env := newTestEnv(t)
	svc := newRedemptionService(env, newQueuedCodeGenerator())
	ctx := context.Background()

	reward := seedTestReward(t, env, &entity.RewardDefinition{
		Name: "10% off", PointsRequired: 100, RewardType: entity.RewardTypePercentageDiscount, RewardValue: 10,
		MinOrderAmount: 30, IsActive: true,
	})
	userID := uuid.New()
	fundAccount(t, env, userID, 100)

	result, err := svc.Redeem(ctx, &usecase.RedeemInput{UserID: userID, RewardID: reward.ID})
	require.NoError(t, err)

	// Later catalog edits must not change the issued voucher.
	require.NoError(t, env.db.Model(&model.RewardModel{}).
		Where("id = ?", reward.ID).
		Updates(map[string]interface{}{"reward_value": 50, "min_order_amount": 5}).Error)

	found, err := env.voucherRepo.FindByCode(ctx, result.Voucher.Code)
	require.NoError(t, err)
	assert.Equal(t, float64(10), found.DiscountAmount)
	assert.Equal(t, float64(30), found.MinOrderAmount)
	assert.Equal(t, entity.DiscountTypePercentage, found.DiscountType)
}
