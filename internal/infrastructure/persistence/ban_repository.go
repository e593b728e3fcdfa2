package persistence

import (
	"context"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBanRepository implements identity.BanRepository using GORM
type GormBanRepository struct {
	db *gorm.DB
}

// NewGormBanRepository creates a new GormBanRepository
func NewGormBanRepository(db *gorm.DB) *GormBanRepository {
	return &GormBanRepository{db: db}
}

// IsBanned reports whether the character has an active ban
func (r *GormBanRepository) IsBanned(ctx context.Context, characterName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&identity.BanEntry{}).
		Where("character_name = ? AND allowed = ?", characterName, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ban records a veto for the character
func (r *GormBanRepository) Ban(ctx context.Context, characterName string) error {
	entry := identity.BanEntry{
		CharacterName: characterName,
		Allowed:       false,
		CreatedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "character_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"allowed"}),
		}).
		Create(&entry).Error
}

// Unban removes the veto for the character
func (r *GormBanRepository) Unban(ctx context.Context, characterName string) error {
	result := r.db.WithContext(ctx).
		Delete(&identity.BanEntry{}, "character_name = ?", characterName)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Banned lists the active bans
func (r *GormBanRepository) Banned(ctx context.Context) ([]identity.BanEntry, error) {
	var entries []identity.BanEntry
	err := r.db.WithContext(ctx).
		Where("allowed = ?", false).
		Order("character_name ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
