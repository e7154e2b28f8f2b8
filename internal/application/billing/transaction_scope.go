package billing

import (
	"context"

	"github.com/tradeops/backoffice/internal/domain/billing"
	"github.com/tradeops/backoffice/internal/domain/inventory"
	"github.com/tradeops/backoffice/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories a
// posting touches. When a function is executed within a transaction scope,
// all repository operations are part of the same database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories touched by a
// posting within one transaction. A confirm spans three bounded contexts
// (invoice, stock, ledger) and must commit or roll back as one unit, so all
// repositories returned here share the same underlying transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// BatchRepo returns the stock batch repository scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// MovementRepo returns the append-only stock movement repository
	MovementRepo() inventory.StockMovementRepository
	// AllocationRepo returns the batch allocation record repository
	AllocationRepo() inventory.BatchAllocationRepository
	// AccountRepo returns the ledger account repository
	AccountRepo() ledger.AccountRepository
	// EntryRepo returns the append-only ledger entry repository
	EntryRepo() ledger.LedgerEntryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	invoiceRepo    billing.InvoiceRepository
	batchRepo      inventory.BatchRepository
	movementRepo   inventory.StockMovementRepository
	allocationRepo inventory.BatchAllocationRepository
	accountRepo    ledger.AccountRepository
	entryRepo      ledger.LedgerEntryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	batchRepo inventory.BatchRepository,
	movementRepo inventory.StockMovementRepository,
	allocationRepo inventory.BatchAllocationRepository,
	accountRepo ledger.AccountRepository,
	entryRepo ledger.LedgerEntryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:    invoiceRepo,
		batchRepo:      batchRepo,
		movementRepo:   movementRepo,
		allocationRepo: allocationRepo,
		accountRepo:    accountRepo,
		entryRepo:      entryRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// BatchRepo returns the stock batch repository.
func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository {
	return s.batchRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// AllocationRepo returns the batch allocation repository.
func (s *NoOpTransactionScope) AllocationRepo() inventory.BatchAllocationRepository {
	return s.allocationRepo
}

// AccountRepo returns the ledger account repository.
func (s *NoOpTransactionScope) AccountRepo() ledger.AccountRepository {
	return s.accountRepo
}

// EntryRepo returns the ledger entry repository.
func (s *NoOpTransactionScope) EntryRepo() ledger.LedgerEntryRepository {
	return s.entryRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
