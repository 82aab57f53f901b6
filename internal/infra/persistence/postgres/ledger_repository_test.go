package postgres

import (
	"context"
	"testing"
	"time"

	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_AppendAssignsIDAndTimestamp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	entry := &entity.LedgerEntry{
		UserID:      uuid.New(),
		Type:        entity.EntryTypeBonus,
		PointsDelta: 50,
		Description: "signup campaign",
	}
	require.NoError(t, repo.Append(ctx, entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestLedgerRepository_DuplicateOrderEarningRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	orderID := uuid.New()

	first := &entity.LedgerEntry{
		UserID:      uuid.New(),
		OrderID:     &orderID,
		Type:        entity.EntryTypeEarned,
		PointsDelta: 90,
	}
	require.NoError(t, repo.Append(ctx, first))

	second := &entity.LedgerEntry{
		UserID:      first.UserID,
		OrderID:     &orderID,
		Type:        entity.EntryTypeEarned,
		PointsDelta: 90,
	}
	err := repo.Append(ctx, second)
	require.ErrorIs(t, err, repository.ErrDuplicateOrderEarning)

	exists, err := repo.HasOrderEarning(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLedgerRepository_SameOrderDifferentTypesAllowed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	earned := &entity.LedgerEntry{UserID: userID, OrderID: &orderID, Type: entity.EntryTypeEarned, PointsDelta: 90}
	require.NoError(t, repo.Append(ctx, earned))

	// A redemption against the same order is a different entry type and must
	// not trip the one-earning-per-order guard.
	redeemed := &entity.LedgerEntry{UserID: userID, OrderID: &orderID, Type: entity.EntryTypeRedeemed, PointsDelta: -200}
	require.NoError(t, repo.Append(ctx, redeemed))

	bonus := &entity.LedgerEntry{UserID: userID, OrderID: &orderID, Type: entity.EntryTypeFirstOrder, PointsDelta: 50}
	require.NoError(t, repo.Append(ctx, bonus))
}

func TestLedgerRepository_DuplicateSignupRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{
		UserID:      userID,
		Type:        entity.EntryTypeSignup,
		PointsDelta: 100,
	}))

	err := repo.Append(ctx, &entity.LedgerEntry{
		UserID:      userID,
		Type:        entity.EntryTypeSignup,
		PointsDelta: 100,
	})
	require.ErrorIs(t, err, repository.ErrDuplicateSignupAward)

	has, err := repo.HasEntryOfType(ctx, userID, entity.EntryTypeSignup)
	require.NoError(t, err)
	assert.True(t, has)

	// Another user's signup bonus is unaffected.
	require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{
		UserID:      uuid.New(),
		Type:        entity.EntryTypeSignup,
		PointsDelta: 100,
	}))
}

func TestLedgerRepository_DuplicateFirstOrderRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{
		UserID:      userID,
		OrderID:     &orderID,
		Type:        entity.EntryTypeFirstOrder,
		PointsDelta: 50,
	}))

	// A second first-order bonus for the same user is rejected even when it
	// references a different order.
	otherOrderID := uuid.New()
	err := repo.Append(ctx, &entity.LedgerEntry{
		UserID:      userID,
		OrderID:     &otherOrderID,
		Type:        entity.EntryTypeFirstOrder,
		PointsDelta: 50,
	})
	require.ErrorIs(t, err, repository.ErrDuplicateFirstOrder)

	// Another user's first-order bonus is unaffected.
	require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{
		UserID:      uuid.New(),
		OrderID:     &otherOrderID,
		Type:        entity.EntryTypeFirstOrder,
		PointsDelta: 50,
	}))
}

func TestLedgerRepository_ListByUserNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{
			UserID:      userID,
			Type:        entity.EntryTypeBonus,
			PointsDelta: int64(i + 1),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.ListByUser(ctx, userID, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(5), entries[0].PointsDelta)
	assert.Equal(t, int64(4), entries[1].PointsDelta)
	assert.Equal(t, int64(3), entries[2].PointsDelta)
}

func TestLedgerRepository_SumDeltas(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	sum, err := repo.SumDeltas(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)

	require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{UserID: userID, Type: entity.EntryTypeSignup, PointsDelta: 100}))
	require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{UserID: userID, Type: entity.EntryTypeBonus, PointsDelta: 140}))
	require.NoError(t, repo.Append(ctx, &entity.LedgerEntry{UserID: userID, Type: entity.EntryTypeRedeemed, PointsDelta: -200}))

	sum, err = repo.SumDeltas(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), sum)
}
