package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/billing"
	"github.com/tradeops/backoffice/internal/domain/shared"
	"github.com/tradeops/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID retrieves a party by its ID
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetCreditLimit returns the party's credit limit, zero meaning unlimited
func (r *GormPartyRepository) GetCreditLimit(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	party, err := r.FindByID(ctx, partyID)
	if err != nil {
		return decimal.Zero, err
	}
	return party.CreditLimit, nil
}

// GetOutstandingBalance reads the balance of the party's subsidiary account.
// Every confirmed invoice and reversal posts to that account, so its balance
// is the party's current exposure.
func (r *GormPartyRepository) GetOutstandingBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	party, err := r.FindByID(ctx, partyID)
	if err != nil {
		return decimal.Zero, err
	}

	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", party.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, shared.ErrNotFound
		}
		return decimal.Zero, err
	}
	return model.Balance, nil
}

// Ensure GormPartyRepository implements PartyRepository
var _ billing.PartyRepository = (*GormPartyRepository)(nil)
