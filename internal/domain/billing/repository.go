package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// InvoiceRepository is the persistence contract for the Invoice aggregate
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads the invoice with a row lock so the status check
	// acts as an idempotency guard for concurrent confirmations
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, invoice *Invoice) error
	GenerateInvoiceNumber(ctx context.Context, invoiceType InvoiceType) (string, error)
}

// TaxConfigRepository is the persistence contract for tax configurations
type TaxConfigRepository interface {
	FindByCode(ctx context.Context, code string) (*TaxConfig, error)
	Save(ctx context.Context, config *TaxConfig) error
}

// Party is a customer or supplier as seen by the engine: only credit and tax
// attributes are consumed, the rest of party management lives elsewhere
type Party struct {
	ID             uuid.UUID
	Name           string
	AccountID      uuid.UUID // subsidiary receivable/payable account
	CreditLimit    decimal.Decimal
	NonFiler       bool
	AdvanceTaxRate decimal.Decimal
	IsActive       bool
}

// TaxProfile derives the tax profile from party attributes
func (p *Party) TaxProfile() TaxProfile {
	return TaxProfile{
		NonFiler:       p.NonFiler,
		AdvanceTaxRate: p.AdvanceTaxRate,
	}
}

// PartyRepository exposes the customer/supplier attributes the engine needs
type PartyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)
	GetCreditLimit(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
	GetOutstandingBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
}
