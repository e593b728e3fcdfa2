package persistence

import (
	"context"
	"errors"

	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCharacterRepository implements identity.CharacterRepository using GORM
type GormCharacterRepository struct {
	db *gorm.DB
}

// NewGormCharacterRepository creates a new GormCharacterRepository
func NewGormCharacterRepository(db *gorm.DB) *GormCharacterRepository {
	return &GormCharacterRepository{db: db}
}

// Save upserts a character profile keyed by its external id
func (r *GormCharacterRepository) Save(ctx context.Context, character *identity.Character) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(character).Error
}

// FindByID finds a character by external id
func (r *GormCharacterRepository) FindByID(ctx context.Context, id int64) (*identity.Character, error) {
	var character identity.Character
	err := r.db.WithContext(ctx).First(&character, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &character, nil
}

// FindByToken finds a character by session token
func (r *GormCharacterRepository) FindByToken(ctx context.Context, token string) (*identity.Character, error) {
	var character identity.Character
	err := r.db.WithContext(ctx).First(&character, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &character, nil
}

// FindByName finds a character by exact name
func (r *GormCharacterRepository) FindByName(ctx context.Context, name string) (*identity.Character, error) {
	var character identity.Character
	err := r.db.WithContext(ctx).First(&character, "character_name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &character, nil
}

// SetFreighter flips the freighter flag for a character by name
func (r *GormCharacterRepository) SetFreighter(ctx context.Context, name string, freighter bool) error {
	result := r.db.WithContext(ctx).
		Model(&identity.Character{}).
		Where("character_name = ?", name).
		Update("freighter", freighter)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Freighters lists characters carrying the freighter flag
func (r *GormCharacterRepository) Freighters(ctx context.Context) ([]identity.Character, error) {
	var characters []identity.Character
	err := r.db.WithContext(ctx).
		Where("freighter = ?", true).
		Order("character_name ASC").
		Find(&characters).Error
	if err != nil {
		return nil, err
	}
	return characters, nil
}
