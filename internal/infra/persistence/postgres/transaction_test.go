package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"
	"loyalty/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_CommitsOnSuccess(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()
	userID := uuid.New()

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		if _, err := f.AccountRepo().Credit(ctx, userID, 100, time.Now()); err != nil {
			return err
		}

		return f.LedgerRepo().Append(ctx, &entity.LedgerEntry{
			UserID:      userID,
			Type:        entity.EntryTypeSignup,
			PointsDelta: 100,
		})
	})
	require.NoError(t, err)

	account, err := NewAccountRepository(db).FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.PointsBalance)

	sum, err := NewLedgerRepository(db).SumDeltas(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, account.PointsBalance, sum)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	cap := int64(5)
	reward := &entity.RewardDefinition{
		Name:           "limited",
		PointsRequired: 200,
		RewardType:     entity.RewardTypeFixedDiscount,
		RewardValue:    5,
		IsActive:       true,
		MaxRedemptions: &cap,
	}
	seedReward(t, db, reward)

	userID := uuid.New()
	_, err := NewAccountRepository(db).Credit(ctx, userID, 50, time.Now())
	require.NoError(t, err)

	// The counter increment succeeds inside the transaction, then the debit
	// fails on balance. The rollback must also undo the increment.
	err = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.RewardRepo().IncrementRedemptions(ctx, reward.ID); err != nil {
			return err
		}
		if _, err := f.AccountRepo().Debit(ctx, userID, reward.PointsRequired); err != nil {
			return err
		}

		return nil
	})
	require.ErrorIs(t, err, repository.ErrInsufficientPoints)

	found, err := NewRewardRepository(db).FindByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), found.CurrentRedemptions)

	account, err := NewAccountRepository(db).FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), account.PointsBalance)
}

func TestTransactionManager_RollsBackOnPanic(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()
	userID := uuid.New()

	require.Panics(t, func() {
		_ = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
			if _, err := f.AccountRepo().Credit(ctx, userID, 100, time.Now()); err != nil {
				return err
			}
			panic("boom")
		})
	})

	_, err := NewAccountRepository(db).FindByUserID(ctx, userID)
	require.ErrorIs(t, err, repository.ErrAccountNotFound)
}

// Ten users race for a reward capped at four redemptions. Exactly four
// transactions may commit, and every aborted one must leave its user's
// balance and ledger untouched.
func TestTransactionManager_ConcurrentRedemptionsHonorCap(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	cap := int64(4)
	reward := &entity.RewardDefinition{
		Name:           "limited",
		PointsRequired: 200,
		RewardType:     entity.RewardTypeFixedDiscount,
		RewardValue:    5,
		IsActive:       true,
		MaxRedemptions: &cap,
	}
	seedReward(t, db, reward)

	const users = 10
	userIDs := make([]uuid.UUID, users)
	for i := range userIDs {
		userIDs[i] = uuid.New()
		_, err := NewAccountRepository(db).Credit(ctx, userIDs[i], 200, time.Now())
		require.NoError(t, err)
	}

	var succeeded, exhausted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()

			err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
				if err := f.RewardRepo().IncrementRedemptions(ctx, reward.ID); err != nil {
					return err
				}
				if _, err := f.AccountRepo().Debit(ctx, userID, reward.PointsRequired); err != nil {
					return err
				}

				return f.LedgerRepo().Append(ctx, &entity.LedgerEntry{
					UserID:      userID,
					Type:        entity.EntryTypeRedeemed,
					PointsDelta: -reward.PointsRequired,
				})
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, repository.ErrRewardExhausted):
				exhausted.Add(1)
			}
		}(userIDs[i])
	}
	wg.Wait()

	assert.Equal(t, int64(4), succeeded.Load())
	assert.Equal(t, int64(6), exhausted.Load())

	found, err := NewRewardRepository(db).FindByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), found.CurrentRedemptions)

	var debited int
	for _, userID := range userIDs {
		account, err := NewAccountRepository(db).FindByUserID(ctx, userID)
		require.NoError(t, err)

		sum, err := NewLedgerRepository(db).SumDeltas(ctx, userID)
		require.NoError(t, err)
		// Ledger and balance stay consistent whether or not the user won.
		assert.Equal(t, account.PointsBalance, 200+sum)

		if account.PointsBalance == 0 {
			debited++
		} else {
			assert.Equal(t, int64(200), account.PointsBalance)
		}
	}
	assert.Equal(t, 4, debited)
}

// One user fires concurrent redemptions worth more than the balance covers.
// The conditional debit admits only what the balance affords.
func TestTransactionManager_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	reward := &entity.RewardDefinition{
		Name:           "open-ended",
		PointsRequired: 200,
		RewardType:     entity.RewardTypeFixedDiscount,
		RewardValue:    5,
		IsActive:       true,
	}
	seedReward(t, db, reward)

	userID := uuid.New()
	_, err := NewAccountRepository(db).Credit(ctx, userID, 650, time.Now())
	require.NoError(t, err)

	var succeeded, insufficient atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
				if err := f.RewardRepo().IncrementRedemptions(ctx, reward.ID); err != nil {
					return err
				}
				if _, err := f.AccountRepo().Debit(ctx, userID, reward.PointsRequired); err != nil {
					return err
				}

				return f.LedgerRepo().Append(ctx, &entity.LedgerEntry{
					UserID:      userID,
					Type:        entity.EntryTypeRedeemed,
					PointsDelta: -reward.PointsRequired,
				})
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, repository.ErrInsufficientPoints):
				insufficient.Add(1)
			}
		}()
	}
	wg.Wait()

	// 650 points cover exactly three 200-point redemptions.
	assert.Equal(t, int64(3), succeeded.Load())
	assert.Equal(t, int64(5), insufficient.Load())

	account, err := NewAccountRepository(db).FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), account.PointsBalance)

	// Aborted transactions roll their counter increments back.
	found, err := NewRewardRepository(db).FindByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), found.CurrentRedemptions)
}
