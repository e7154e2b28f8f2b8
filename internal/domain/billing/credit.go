package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditInfoSource exposes the party credit attributes consumed by the
// validator. Implemented by the customer/supplier repository.
type CreditInfoSource interface {
	GetCreditLimit(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
	GetOutstandingBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
}

// CreditLimitValidator is a leaf validator checking that a sales confirmation
// does not push the customer past their credit limit. A zero limit means
// unlimited credit.
type CreditLimitValidator struct {
	source CreditInfoSource
}

// NewCreditLimitValidator creates a new CreditLimitValidator
func NewCreditLimitValidator(source CreditInfoSource) *CreditLimitValidator {
	return &CreditLimitValidator{source: source}
}

// Validate fails with CreditLimitExceededError when
// outstanding + requested > limit
func (v *CreditLimitValidator) Validate(ctx context.Context, partyID uuid.UUID, requested decimal.Decimal) error {
	limit, err := v.source.GetCreditLimit(ctx, partyID)
	if err != nil {
		return err
	}
	if limit.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	outstanding, err := v.source.GetOutstandingBalance(ctx, partyID)
	if err != nil {
		return err
	}

	if outstanding.Add(requested).GreaterThan(limit) {
		return &CreditLimitExceededError{
			PartyID:     partyID,
			Limit:       limit,
			Outstanding: outstanding,
			Requested:   requested,
		}
	}
	return nil
}
