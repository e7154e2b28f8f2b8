package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// Reference types attached to ledger entries
const (
	ReferenceTypeInvoice  = "INVOICE"
	ReferenceTypeReversal = "REVERSAL"
)

// LedgerEntry is one side of a double-entry posting. Exactly one of
// Debit/Credit is non-zero, and both are non-negative.
type LedgerEntry struct {
	shared.BaseEntity
	AccountID     uuid.UUID
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	ReferenceType string
	ReferenceID   uuid.UUID
	EntryDate     time.Time
	Description   string
}

// NewDebit creates a debit entry
func NewDebit(accountID uuid.UUID, amount decimal.Decimal, referenceType string, referenceID uuid.UUID, entryDate time.Time, description string) (*LedgerEntry, error) {
	if err := validateEntry(accountID, amount, referenceID); err != nil {
		return nil, err
	}
	return &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		AccountID:     accountID,
		Debit:         amount,
		Credit:        decimal.Zero,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		EntryDate:     entryDate,
		Description:   description,
	}, nil
}

// NewCredit creates a credit entry
func NewCredit(accountID uuid.UUID, amount decimal.Decimal, referenceType string, referenceID uuid.UUID, entryDate time.Time, description string) (*LedgerEntry, error) {
	if err := validateEntry(accountID, amount, referenceID); err != nil {
		return nil, err
	}
	return &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		AccountID:     accountID,
		Debit:         decimal.Zero,
		Credit:        amount,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		EntryDate:     entryDate,
		Description:   description,
	}, nil
}

func validateEntry(accountID uuid.UUID, amount decimal.Decimal, referenceID uuid.UUID) error {
	if accountID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACCOUNT", "Entry account cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Entry amount must be positive")
	}
	if referenceID == uuid.Nil {
		return shared.NewDomainError("INVALID_REFERENCE", "Entry reference cannot be empty")
	}
	return nil
}

// IsDebit returns true if this is the debit side of a posting
func (e *LedgerEntry) IsDebit() bool {
	return e.Debit.GreaterThan(decimal.Zero)
}

// Amount returns the non-zero side of the entry
func (e *LedgerEntry) Amount() decimal.Decimal {
	if e.IsDebit() {
		return e.Debit
	}
	return e.Credit
}

// Reversed returns an equal-and-opposite entry with debit/credit roles
// swapped, referencing the same document as a reversal
func (e *LedgerEntry) Reversed(entryDate time.Time, description string) *LedgerEntry {
	return &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		AccountID:     e.AccountID,
		Debit:         e.Credit,
		Credit:        e.Debit,
		ReferenceType: ReferenceTypeReversal,
		ReferenceID:   e.ReferenceID,
		EntryDate:     entryDate,
		Description:   description,
	}
}
