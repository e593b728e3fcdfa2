package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/admin"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements admin.SettingsRepository using GORM.
// The settings row is a singleton with id 1.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the settings singleton
func (r *GormSettingsRepository) Get(ctx context.Context) (*admin.Settings, error) {
	var settings admin.Settings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Save upserts the settings singleton
func (r *GormSettingsRepository) Save(ctx context.Context, settings *admin.Settings) error {
	settings.ID = 1
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(settings).Error
}

// GormDestinationRepository implements admin.DestinationRepository using GORM
type GormDestinationRepository struct {
	db *gorm.DB
}

// NewGormDestinationRepository creates a new GormDestinationRepository
func NewGormDestinationRepository(db *gorm.DB) *GormDestinationRepository {
	return &GormDestinationRepository{db: db}
}

// All lists the destination catalog
func (r *GormDestinationRepository) All(ctx context.Context) ([]admin.Destination, error) {
	var destinations []admin.Destination
	err := r.db.WithContext(ctx).Order("name ASC").Find(&destinations).Error
	if err != nil {
		return nil, err
	}
	return destinations, nil
}

// Add inserts a destination
func (r *GormDestinationRepository) Add(ctx context.Context, destination admin.Destination) error {
	destination.CreatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"image"}),
		}).
		Create(&destination).Error
}

// Remove deletes a destination by name
func (r *GormDestinationRepository) Remove(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Delete(&admin.Destination{}, "name = ?", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("NOT_FOUND", "Destination not found")
	}
	return nil
}

// GormExclusionRepository implements admin.ExclusionRepository using GORM.
// It also backs the pricing engine's exclusion checks.
type GormExclusionRepository struct {
	db *gorm.DB
}

// NewGormExclusionRepository creates a new GormExclusionRepository
func NewGormExclusionRepository(db *gorm.DB) *GormExclusionRepository {
	return &GormExclusionRepository{db: db}
}

// IsItemExcluded reports whether the item type is barred
func (r *GormExclusionRepository) IsItemExcluded(ctx context.Context, typeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&admin.ExcludedItemType{}).
		Where("type_id = ?", typeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsMarketGroupExcluded reports whether the market group is barred
func (r *GormExclusionRepository) IsMarketGroupExcluded(ctx context.Context, marketGroupID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&admin.ExcludedMarketGroup{}).
		Where("market_group_id = ?", marketGroupID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExcludeItem bars an item type
func (r *GormExclusionRepository) ExcludeItem(ctx context.Context, item admin.ExcludedItemType) error {
	item.CreatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&item).Error
}

// ReincludeItem lifts an item type exclusion
func (r *GormExclusionRepository) ReincludeItem(ctx context.Context, typeID int64) error {
	result := r.db.WithContext(ctx).Delete(&admin.ExcludedItemType{}, "type_id = ?", typeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExcludeGroup bars a market group
func (r *GormExclusionRepository) ExcludeGroup(ctx context.Context, group admin.ExcludedMarketGroup) error {
	group.CreatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "market_group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&group).Error
}

// ReincludeGroup lifts a market group exclusion
func (r *GormExclusionRepository) ReincludeGroup(ctx context.Context, marketGroupID int64) error {
	result := r.db.WithContext(ctx).Delete(&admin.ExcludedMarketGroup{}, "market_group_id = ?", marketGroupID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExcludedItems lists the barred item types
func (r *GormExclusionRepository) ExcludedItems(ctx context.Context) ([]admin.ExcludedItemType, error) {
	var items []admin.ExcludedItemType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ExcludedGroups lists the barred market groups
func (r *GormExclusionRepository) ExcludedGroups(ctx context.Context) ([]admin.ExcludedMarketGroup, error) {
	var groups []admin.ExcludedMarketGroup
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
