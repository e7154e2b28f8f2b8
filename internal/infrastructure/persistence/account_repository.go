package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tradeops/backoffice/internal/domain/ledger"
	"github.com/tradeops/backoffice/internal/domain/shared"
	"github.com/tradeops/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID retrieves an account by its ID with a FOR UPDATE lock so balance
// updates within the transaction are serialized
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode retrieves an account by its unique code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindControlAccounts resolves the fixed control accounts in one query
func (r *GormAccountRepository) FindControlAccounts(ctx context.Context) (*ledger.ControlAccounts, error) {
	codes := []string{
		ledger.AccountCodeRevenue,
		ledger.AccountCodeTaxPayable,
		ledger.AccountCodeTaxInput,
		ledger.AccountCodeInventory,
	}

	var modelList []models.AccountModel
	if err := r.db.WithContext(ctx).Where("code IN ?", codes).Find(&modelList).Error; err != nil {
		return nil, err
	}

	byCode := make(map[string]*ledger.Account, len(modelList))
	for i := range modelList {
		byCode[modelList[i].Code] = modelList[i].ToDomain()
	}

	for _, code := range codes {
		if byCode[code] == nil {
			return nil, fmt.Errorf("control account %s is not provisioned", code)
		}
	}

	return &ledger.ControlAccounts{
		Revenue:    byCode[ledger.AccountCodeRevenue],
		TaxPayable: byCode[ledger.AccountCodeTaxPayable],
		TaxInput:   byCode[ledger.AccountCodeTaxInput],
		Inventory:  byCode[ledger.AccountCodeInventory],
	}, nil
}

// Save persists account state including balance changes
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	var model models.AccountModel
	model.FromDomain(account)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Create persists a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *ledger.Account) error {
	var model models.AccountModel
	model.FromDomain(account)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
