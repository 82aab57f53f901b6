package model

import (
	"time"

	"github.com/google/uuid"

	"loyalty/internal/domain/entity"
)

// VoucherModel mirrors the 'vouchers' table. Discount terms are copied from
// the reward at issue time and never updated afterwards.
type VoucherModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	RewardID       uuid.UUID `gorm:"type:uuid;not null"`
	Code           string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	DiscountAmount float64   `gorm:"not null"`
	DiscountType   string    `gorm:"type:varchar(32);not null"`
	MinOrderAmount float64   `gorm:"not null;default:0"`
	Status         string    `gorm:"type:varchar(16);not null;index"`
	ExpiresAt      time.Time `gorm:"not null"`
	AppliedOrderID *uuid.UUID `gorm:"type:uuid"`
	UsedAt         *time.Time
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (VoucherModel) TableName() string {
	return "vouchers"
}

// ToEntity converts the model to a domain entity.
func (m *VoucherModel) ToEntity() *entity.Voucher {
	return &entity.Voucher{
		ID:             m.ID,
		UserID:         m.UserID,
		RewardID:       m.RewardID,
		Code:           m.Code,
		DiscountAmount: m.DiscountAmount,
		DiscountType:   entity.DiscountType(m.DiscountType),
		MinOrderAmount: m.MinOrderAmount,
		Status:         entity.VoucherStatus(m.Status),
		ExpiresAt:      m.ExpiresAt,
		AppliedOrderID: m.AppliedOrderID,
		UsedAt:         m.UsedAt,
		CreatedAt:      m.CreatedAt,
	}
}

// VoucherFromEntity converts a domain entity to a model for insertion.
func VoucherFromEntity(e *entity.Voucher) *VoucherModel {
	return &VoucherModel{
		ID:             e.ID,
		UserID:         e.UserID,
		RewardID:       e.RewardID,
		Code:           e.Code,
		DiscountAmount: e.DiscountAmount,
		DiscountType:   string(e.DiscountType),
		MinOrderAmount: e.MinOrderAmount,
		Status:         string(e.Status),
		ExpiresAt:      e.ExpiresAt,
		AppliedOrderID: e.AppliedOrderID,
		UsedAt:         e.UsedAt,
		CreatedAt:      e.CreatedAt,
	}
}
