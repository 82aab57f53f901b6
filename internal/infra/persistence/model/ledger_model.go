package model

import (
	"time"

	"github.com/google/uuid"

	"loyalty/internal/domain/entity"
)

// LedgerEntryModel mirrors the 'ledger_entries' table. Entries are append-only;
// the partial unique indexes created in AutoMigrate back the idempotency guards
// for order earnings and signup bonuses.
type LedgerEntryModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID     *uuid.UUID `gorm:"type:uuid"`
	Type        string     `gorm:"type:varchar(32);not null"`
	PointsDelta int64      `gorm:"not null"`
	Description string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToEntity converts the model to a domain entity.
func (m *LedgerEntryModel) ToEntity() *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:          m.ID,
		UserID:      m.UserID,
		OrderID:     m.OrderID,
		Type:        entity.EntryType(m.Type),
		PointsDelta: m.PointsDelta,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// LedgerEntryFromEntity converts a domain entity to a model for insertion.
func LedgerEntryFromEntity(e *entity.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:          e.ID,
		UserID:      e.UserID,
		OrderID:     e.OrderID,
		Type:        string(e.Type),
		PointsDelta: e.PointsDelta,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}
