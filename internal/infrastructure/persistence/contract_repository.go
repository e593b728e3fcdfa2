package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/contract"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormContractRepository implements contract.Repository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// Create inserts a new contract
func (r *GormContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID finds a contract by id
func (r *GormContractRepository) FindByID(ctx context.Context, id int64) (*contract.Contract, error) {
	var c contract.Contract
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CompareAndSwap persists the mutated contract with optimistic locking.
// The UPDATE only matches when the stored version still equals
// expectedVersion; zero rows affected means another writer won the race.
func (r *GormContractRepository) CompareAndSwap(ctx context.Context, c *contract.Contract, expectedVersion int) error {
	c.Version = expectedVersion + 1
	c.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(c).
		Where("id = ? AND version = ?", c.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     c.Status,
			"reward":     c.Reward,
			"version":    c.Version,
			"updated_at": c.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		c.Version = expectedVersion
		return shared.NewConcurrentModificationError(c.ID)
	}
	return nil
}

// FindByStatus lists contracts in any of the given statuses, newest first.
// ownerID 0 means all submitters.
func (r *GormContractRepository) FindByStatus(ctx context.Context, statuses []contract.Status, ownerID int64) ([]contract.Contract, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("submitted_at DESC")

	if ownerID != 0 {
		query = query.Where("submitter_id = ?", ownerID)
	}

	var contracts []contract.Contract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
