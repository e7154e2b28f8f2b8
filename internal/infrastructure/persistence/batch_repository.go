package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tradeops/backoffice/internal/domain/inventory"
	"github.com/tradeops/backoffice/internal/domain/shared"
	"github.com/tradeops/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForAllocation loads the batches for an item/warehouse in expiry order
// with FOR UPDATE row locks, so concurrent confirmations cannot both allocate
// the same stock. Must run inside a transaction.
func (r *GormBatchRepository) FindForAllocation(ctx context.Context, itemID, warehouseID uuid.UUID) ([]inventory.Batch, error) {
	var modelList []models.BatchModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		Order("expiry_date ASC, created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(modelList), nil
}

// FindByItem returns all batches for an item/warehouse without locking
func (r *GormBatchRepository) FindByItem(ctx context.Context, itemID, warehouseID uuid.UUID) ([]inventory.Batch, error) {
	var modelList []models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		Order("expiry_date ASC, created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(modelList), nil
}

// Save persists batch state including remaining quantity changes
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	model := models.BatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Save(model).Error
}

// Create persists a new batch
func (r *GormBatchRepository) Create(ctx context.Context, batch *inventory.Batch) error {
	model := models.BatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Create(model).Error
}

func toDomainBatches(modelList []models.BatchModel) []inventory.Batch {
	batches := make([]inventory.Batch, 0, len(modelList))
	for i := range modelList {
		batches = append(batches, *modelList[i].ToDomain())
	}
	return batches
}

// Ensure GormBatchRepository implements BatchRepository
var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
