package ledger

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository provides access to the chart of accounts
type AccountRepository interface {
	// FindByID retrieves an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByCode retrieves an account by its unique code
	FindByCode(ctx context.Context, code string) (*Account, error)

	// FindControlAccounts resolves the fixed control accounts in one call
	FindControlAccounts(ctx context.Context) (*ControlAccounts, error)

	// Save persists account state including balance changes
	Save(ctx context.Context, account *Account) error

	// Create persists a new account
	Create(ctx context.Context, account *Account) error
}

// LedgerEntryRepository provides append-only access to the journal
type LedgerEntryRepository interface {
	// AppendAll persists the entries of a validated posting
	AppendAll(ctx context.Context, entries []LedgerEntry) error

	// FindByReference retrieves all entries for a reference document,
	// original postings and reversals alike
	FindByReference(ctx context.Context, referenceType string, referenceID uuid.UUID) ([]LedgerEntry, error)
}
