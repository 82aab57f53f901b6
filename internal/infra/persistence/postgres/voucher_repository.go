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

// voucherRepository implements the repository.VoucherRepository interface.
type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository is the constructor for voucherRepository.
func NewVoucherRepository(db *gorm.DB) repository.VoucherRepository {
	return &voucherRepository{
		db: db,
	}
}

// Create persists a newly issued voucher.
func (repo *voucherRepository) Create(ctx context.Context, voucher *entity.Voucher) error {
	if voucher.ID == uuid.Nil {
		voucher.ID = uuid.New()
	}
	if voucher.CreatedAt.IsZero() {
		voucher.CreatedAt = time.Now()
	}

	voucherM := model.VoucherFromEntity(voucher)

	if err := repo.db.WithContext(ctx).Create(voucherM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateVoucherCode
		}
		if isLockContention(err) {
			return domainerrors.ErrConcurrencyContention
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create voucher")
	}

	return nil
}

// FindByCode retrieves a voucher by its globally unique code.
func (repo *voucherRepository) FindByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	var voucherM model.VoucherModel

	if err := repo.db.WithContext(ctx).
		Where("code = ?", code).
		First(&voucherM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVoucherNotFound
		}

		return nil, errors.Wrap(err, "failed to find voucher by code")
	}

	return voucherM.ToEntity(), nil
}

// ListActiveByUser returns the user's vouchers still marked active, soonest
// expiry first. Rows whose ExpiresAt already passed are included; callers
// normalize those to expired.
func (repo *voucherRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Voucher, error) {
	var voucherMs []model.VoucherModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(entity.VoucherStatusActive)).
		Order("expires_at ASC").
		Find(&voucherMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list active vouchers by user")
	}

	vouchers := make([]*entity.Voucher, 0, len(voucherMs))
	for i := range voucherMs {
		vouchers = append(vouchers, voucherMs[i].ToEntity())
	}

	return vouchers, nil
}

// MarkUsed transitions the voucher to used. The status and expiry checks live
// in the WHERE clause of a single UPDATE, so of two concurrent applications
// of the same code exactly one wins; the loser observes zero rows affected.
func (repo *voucherRepository) MarkUsed(ctx context.Context, code string, orderID uuid.UUID, now time.Time) (*entity.Voucher, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.VoucherModel{}).
		Where("code = ? AND status = ? AND expires_at > ?", code, string(entity.VoucherStatusActive), now).
		Updates(map[string]interface{}{
			"status":           string(entity.VoucherStatusUsed),
			"used_at":          now,
			"applied_order_id": orderID,
		})
	if result.Error != nil {
		if isLockContention(result.Error) {
			return nil, domainerrors.ErrConcurrencyContention
		}

		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark voucher used")
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing voucher from one already used or expired.
		if _, err := repo.FindByCode(ctx, code); err != nil {
			return nil, err
		}

		return nil, repository.ErrVoucherNotUsable
	}

	return repo.FindByCode(ctx, code)
}

// MarkExpired transitions the given vouchers to expired, only while they are
// still active. Used rows are never touched.
func (repo *voucherRepository) MarkExpired(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	if err := repo.db.WithContext(ctx).
		Model(&model.VoucherModel{}).
		Where("id IN ? AND status = ?", ids, string(entity.VoucherStatusActive)).
		Update("status", string(entity.VoucherStatusExpired)).Error; err != nil {
		if isLockContention(err) {
			return domainerrors.ErrConcurrencyContention
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to mark vouchers expired")
	}

	return nil
}
