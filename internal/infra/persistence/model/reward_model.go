package model

import (
	"time"

	"github.com/google/uuid"

	"loyalty/internal/domain/entity"
)

// RewardModel mirrors the 'reward_definitions' table. CurrentRedemptions is
// only ever moved by the conditional increment in the reward repository, so it
// never overshoots MaxRedemptions.
type RewardModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name               string    `gorm:"type:varchar(255);not null"`
	Description        string    `gorm:"type:text"`
	PointsRequired     int64     `gorm:"not null;check:points_required > 0"`
	RewardType         string    `gorm:"type:varchar(32);not null"`
	RewardValue        float64   `gorm:"not null"`
	MinOrderAmount     float64   `gorm:"not null;default:0"`
	IsActive           bool      `gorm:"not null;default:true;index"`
	MaxRedemptions     *int64
	CurrentRedemptions int64 `gorm:"not null;default:0;check:current_redemptions >= 0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (RewardModel) TableName() string {
	return "reward_definitions"
}

// ToEntity converts the model to a domain entity.
func (m *RewardModel) ToEntity() *entity.RewardDefinition {
	return &entity.RewardDefinition{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		PointsRequired:     m.PointsRequired,
		RewardType:         entity.RewardType(m.RewardType),
		RewardValue:        m.RewardValue,
		MinOrderAmount:     m.MinOrderAmount,
		IsActive:           m.IsActive,
		MaxRedemptions:     m.MaxRedemptions,
		CurrentRedemptions: m.CurrentRedemptions,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// RewardFromEntity converts a domain entity to a model for insertion.
func RewardFromEntity(e *entity.RewardDefinition) *RewardModel {
	return &RewardModel{
		ID:                 e.ID,
		Name:               e.Name,
		Description:        e.Description,
		PointsRequired:     e.PointsRequired,
		RewardType:         string(e.RewardType),
		RewardValue:        e.RewardValue,
		MinOrderAmount:     e.MinOrderAmount,
		IsActive:           e.IsActive,
		MaxRedemptions:     e.MaxRedemptions,
		CurrentRedemptions: e.CurrentRedemptions,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}
