package persistence

import (
	"context"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAllowlistRepository implements identity.AllowlistRepository using GORM
type GormAllowlistRepository struct {
	db *gorm.DB
}

// NewGormAllowlistRepository creates a new GormAllowlistRepository
func NewGormAllowlistRepository(db *gorm.DB) *GormAllowlistRepository {
	return &GormAllowlistRepository{db: db}
}

// IsAllowed reports whether the subject is whitelisted
func (r *GormAllowlistRepository) IsAllowed(ctx context.Context, kind identity.SubjectKind, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&identity.AllowEntry{}).
		Where("subject_name = ? AND kind = ? AND allowed = ?", name, kind, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Allow whitelists the subject
func (r *GormAllowlistRepository) Allow(ctx context.Context, kind identity.SubjectKind, name string) error {
	entry := identity.AllowEntry{
		SubjectName: name,
		Kind:        kind,
		Allowed:     true,
		CreatedAt:   time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_name"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"allowed"}),
		}).
		Create(&entry).Error
}

// Disallow removes the subject from the whitelist
func (r *GormAllowlistRepository) Disallow(ctx context.Context, kind identity.SubjectKind, name string) error {
	result := r.db.WithContext(ctx).
		Delete(&identity.AllowEntry{}, "subject_name = ? AND kind = ?", name, kind)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Allowed lists the whitelisted subjects of a kind
func (r *GormAllowlistRepository) Allowed(ctx context.Context, kind identity.SubjectKind) ([]identity.AllowEntry, error) {
	var entries []identity.AllowEntry
	err := r.db.WithContext(ctx).
		Where("kind = ? AND allowed = ?", kind, true).
		Order("subject_name ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
