package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradeops/backoffice/internal/domain/inventory"
	"github.com/tradeops/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The movement journal is append only.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append persists a new stock movement
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	var model models.StockMovementModel
	model.FromDomain(movement)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByReference returns all movements recorded for a reference document
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]inventory.StockMovement, error) {
	var modelList []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	movements := make([]inventory.StockMovement, 0, len(modelList))
	for i := range modelList {
		movements = append(movements, *modelList[i].ToDomain())
	}
	return movements, nil
}

// GormBatchAllocationRepository implements BatchAllocationRepository using GORM
type GormBatchAllocationRepository struct {
	db *gorm.DB
}

// NewGormBatchAllocationRepository creates a new GormBatchAllocationRepository
func NewGormBatchAllocationRepository(db *gorm.DB) *GormBatchAllocationRepository {
	return &GormBatchAllocationRepository{db: db}
}

// SaveAll persists the allocations produced by a confirmation
func (r *GormBatchAllocationRepository) SaveAll(ctx context.Context, allocations []inventory.BatchAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	modelList := make([]models.BatchAllocationModel, 0, len(allocations))
	for i := range allocations {
		var m models.BatchAllocationModel
		m.FromDomain(&allocations[i])
		modelList = append(modelList, m)
	}
	return r.db.WithContext(ctx).Create(&modelList).Error
}

// FindByInvoice returns the allocations recorded for an invoice in the order
// they were applied
func (r *GormBatchAllocationRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]inventory.BatchAllocation, error) {
	var modelList []models.BatchAllocationModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	allocations := make([]inventory.BatchAllocation, 0, len(modelList))
	for i := range modelList {
		allocations = append(allocations, *modelList[i].ToDomain())
	}
	return allocations, nil
}

// Ensure interfaces are implemented
var (
	_ inventory.StockMovementRepository   = (*GormStockMovementRepository)(nil)
	_ inventory.BatchAllocationRepository = (*GormBatchAllocationRepository)(nil)
)
