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
)

// ledgerRepository implements the repository.LedgerRepository interface.
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository is the constructor for ledgerRepository.
func NewLedgerRepository(db *gorm.DB) repository.LedgerRepository {
	return &ledgerRepository{
		db: db,
	}
}

// Append persists a new ledger entry. Entries are append-only, so this is
// the only write path for the table.
func (repo *ledgerRepository) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	entryM := model.LedgerEntryFromEntity(entry)

	if err := repo.db.WithContext(ctx).Create(entryM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			// The partial unique indexes guard one earning per order, one
			// signup bonus per user and one first-order bonus per user.
			switch entry.Type {
			case entity.EntryTypeEarned:
				return repository.ErrDuplicateOrderEarning
			case entity.EntryTypeSignup:
				return repository.ErrDuplicateSignupAward
			case entity.EntryTypeFirstOrder:
				return repository.ErrDuplicateFirstOrder
			}
		}
		if isLockContention(err) {
			return domainerrors.ErrConcurrencyContention
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to append ledger entry")
	}

	return nil
}

// ListByUser returns the user's entries, newest first, capped at limit.
func (repo *ledgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LedgerEntry, error) {
	var entryMs []model.LedgerEntryModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entryMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list ledger entries by user")
	}

	entries := make([]*entity.LedgerEntry, 0, len(entryMs))
	for i := range entryMs {
		entries = append(entries, entryMs[i].ToEntity())
	}

	return entries, nil
}

// HasEntryOfType reports whether the user already has an entry of the given type.
func (repo *ledgerRepository) HasEntryOfType(ctx context.Context, userID uuid.UUID, entryType entity.EntryType) (bool, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.LedgerEntryModel{}).
		Where("user_id = ? AND type = ?", userID, string(entryType)).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to count ledger entries by type")
	}

	return count > 0, nil
}

// HasOrderEarning reports whether an earned-type entry exists for the order.
func (repo *ledgerRepository) HasOrderEarning(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.LedgerEntryModel{}).
		Where("order_id = ? AND type = ?", orderID, string(entity.EntryTypeEarned)).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check order earning")
	}

	return count > 0, nil
}

// SumDeltas returns the sum of the user's point deltas. It always equals the
// account's balance because both are written in the same transaction.
func (repo *ledgerRepository) SumDeltas(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64

	if err := repo.db.WithContext(ctx).
		Model(&model.LedgerEntryModel{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points_delta), 0)").
		Scan(&sum).Error; err != nil {
		return 0, errors.Wrap(err, "failed to sum ledger deltas")
	}

	return sum, nil
}
