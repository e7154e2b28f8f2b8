package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradeops/backoffice/internal/domain/ledger"
	"github.com/tradeops/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// Entries are append only; reversals add mirrored rows.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// AppendAll persists the entries of a validated posting
func (r *GormLedgerEntryRepository) AppendAll(ctx context.Context, entries []ledger.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	modelList := make([]models.LedgerEntryModel, 0, len(entries))
	for i := range entries {
		var m models.LedgerEntryModel
		m.FromDomain(&entries[i])
		modelList = append(modelList, m)
	}
	return r.db.WithContext(ctx).Create(&modelList).Error
}

// FindByReference retrieves all entries for a reference document
func (r *GormLedgerEntryRepository) FindByReference(ctx context.Context, referenceType string, referenceID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var modelList []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	entries := make([]ledger.LedgerEntry, 0, len(modelList))
	for i := range modelList {
		entries = append(entries, *modelList[i].ToDomain())
	}
	return entries, nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ ledger.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
