package model

import (
	"time"

	"github.com/google/uuid"

	"loyalty/internal/domain/entity"
)

// LoyaltyAccountModel mirrors the 'loyalty_accounts' table. One row per user,
// created lazily on the first earning event.
type LoyaltyAccountModel struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PointsBalance int64     `gorm:"not null;default:0;check:points_balance >= 0"`
	TotalEarned   int64     `gorm:"not null;default:0"`
	TotalRedeemed int64     `gorm:"not null;default:0"`
	LastEarnedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (LoyaltyAccountModel) TableName() string {
	return "loyalty_accounts"
}

// ToEntity converts the model to a domain entity.
func (m *LoyaltyAccountModel) ToEntity() *entity.LoyaltyAccount {
	return &entity.LoyaltyAccount{
		UserID:        m.UserID,
		PointsBalance: m.PointsBalance,
		TotalEarned:   m.TotalEarned,
		TotalRedeemed: m.TotalRedeemed,
		LastEarnedAt:  m.LastEarnedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
