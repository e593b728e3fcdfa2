package persistence

import (
	"context"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/contract"
	"gorm.io/gorm"
)

// GormAuditTrail implements contract.AuditTrail using GORM. The table is
// append-only: no update or delete path exists.
type GormAuditTrail struct {
	db *gorm.DB
}

// NewGormAuditTrail creates a new GormAuditTrail
func NewGormAuditTrail(db *gorm.DB) *GormAuditTrail {
	return &GormAuditTrail{db: db}
}

// Log appends one audit entry, stamping the write time
func (t *GormAuditTrail) Log(ctx context.Context, contractID int64, actor contract.Actor, action contract.AuditAction, details string) error {
	entry := contract.AuditEntry{
		ContractID: contractID,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		Details:    details,
		Timestamp:  time.Now(),
	}
	return t.db.WithContext(ctx).Create(&entry).Error
}

// GetHistory returns the entries for a contract in insertion order
func (t *GormAuditTrail) GetHistory(ctx context.Context, contractID int64) ([]contract.AuditEntry, error) {
	var entries []contract.AuditEntry
	err := t.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
