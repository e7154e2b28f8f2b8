package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tradeops/backoffice/internal/domain/billing"
	"github.com/tradeops/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaxConfigRepository implements TaxConfigRepository using GORM.
// FindByCode returns (nil, nil) for unknown codes; the calculator turns that
// into a TaxConfigNotFoundError, so missing rows are not transport errors.
type GormTaxConfigRepository struct {
	db *gorm.DB
}

// NewGormTaxConfigRepository creates a new GormTaxConfigRepository
func NewGormTaxConfigRepository(db *gorm.DB) *GormTaxConfigRepository {
	return &GormTaxConfigRepository{db: db}
}

// FindByCode retrieves a tax configuration by its code
func (r *GormTaxConfigRepository) FindByCode(ctx context.Context, code string) (*billing.TaxConfig, error) {
	var model models.TaxConfigModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a tax configuration
func (r *GormTaxConfigRepository) Save(ctx context.Context, config *billing.TaxConfig) error {
	var model models.TaxConfigModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", config.Code).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	model.Code = config.Code
	model.Name = config.Name
	model.Rate = config.Rate
	model.Type = config.Type
	model.CompoundTax = config.CompoundTax
	model.InclusivePricing = config.InclusivePricing
	model.IsActive = config.IsActive
	return r.db.WithContext(ctx).Save(&model).Error
}

// Ensure interfaces are implemented
var (
	_ billing.TaxConfigRepository = (*GormTaxConfigRepository)(nil)
	_ billing.TaxConfigSource     = (*GormTaxConfigRepository)(nil)
)
