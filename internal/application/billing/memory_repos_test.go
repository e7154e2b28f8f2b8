package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/billing"
	"github.com/tradeops/backoffice/internal/domain/inventory"
	"github.com/tradeops/backoffice/internal/domain/ledger"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// In-memory repositories for service tests. Reads return copies so a failed
// operation leaves the stores untouched, mimicking transaction rollback.

type memInvoiceRepo struct {
	byID map[uuid.UUID]*billing.Invoice
	seq  int
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{byID: make(map[uuid.UUID]*billing.Invoice)}
}

func cloneInvoice(inv *billing.Invoice) *billing.Invoice {
	copied := *inv
	copied.Lines = make([]billing.InvoiceLine, len(inv.Lines))
	copy(copied.Lines, inv.Lines)
	return &copied
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneInvoice(inv), nil
}

func (r *memInvoiceRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r *memInvoiceRepo) FindByNumber(_ context.Context, invoiceNumber string) (*billing.Invoice, error) {
	for _, inv := range r.byID {
		if inv.InvoiceNumber == invoiceNumber {
			return cloneInvoice(inv), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindAll(_ context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	result := make([]billing.Invoice, 0)
	for _, inv := range r.byID {
		if status, ok := filter.Filters["status"]; ok && inv.Status.String() != status {
			continue
		}
		if invType, ok := filter.Filters["type"]; ok && inv.Type.String() != invType {
			continue
		}
		result = append(result, *cloneInvoice(inv))
	}
	return result, nil
}

func (r *memInvoiceRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	invoices, err := r.FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(invoices)), nil
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *billing.Invoice) error {
	r.byID[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (r *memInvoiceRepo) GenerateInvoiceNumber(_ context.Context, invoiceType billing.InvoiceType) (string, error) {
	r.seq++
	prefix := "SI"
	switch invoiceType {
	case billing.InvoiceTypePurchase:
		prefix = "PI"
	case billing.InvoiceTypeReturnSales:
		prefix = "SR"
	case billing.InvoiceTypeReturnPurchase:
		prefix = "PR"
	}
	return fmt.Sprintf("%s-%04d", prefix, r.seq), nil
}

type memBatchRepo struct {
	byID  map[uuid.UUID]*inventory.Batch
	order []uuid.UUID
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{byID: make(map[uuid.UUID]*inventory.Batch)}
}

func (r *memBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Batch, error) {
	batch, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *batch
	return &copied, nil
}

func (r *memBatchRepo) FindForAllocation(_ context.Context, itemID, warehouseID uuid.UUID) ([]inventory.Batch, error) {
	result := make([]inventory.Batch, 0)
	for _, id := range r.order {
		batch := r.byID[id]
		if batch.ItemID == itemID && batch.WarehouseID == warehouseID {
			result = append(result, *batch)
		}
	}
	return result, nil
}

func (r *memBatchRepo) FindByItem(ctx context.Context, itemID, warehouseID uuid.UUID) ([]inventory.Batch, error) {
	return r.FindForAllocation(ctx, itemID, warehouseID)
}

func (r *memBatchRepo) Save(_ context.Context, batch *inventory.Batch) error {
	if _, ok := r.byID[batch.ID]; !ok {
		r.order = append(r.order, batch.ID)
	}
	copied := *batch
	r.byID[batch.ID] = &copied
	return nil
}

func (r *memBatchRepo) Create(ctx context.Context, batch *inventory.Batch) error {
	return r.Save(ctx, batch)
}

type memMovementRepo struct {
	movements []inventory.StockMovement
}

func (r *memMovementRepo) Append(_ context.Context, movement *inventory.StockMovement) error {
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, referenceID uuid.UUID) ([]inventory.StockMovement, error) {
	result := make([]inventory.StockMovement, 0)
	for _, m := range r.movements {
		if m.ReferenceID == referenceID {
			result = append(result, m)
		}
	}
	return result, nil
}

type memAllocationRepo struct {
	allocations []inventory.BatchAllocation
}

func (r *memAllocationRepo) SaveAll(_ context.Context, allocations []inventory.BatchAllocation) error {
	r.allocations = append(r.allocations, allocations...)
	return nil
}

func (r *memAllocationRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]inventory.BatchAllocation, error) {
	result := make([]inventory.BatchAllocation, 0)
	for _, a := range r.allocations {
		if a.InvoiceID == invoiceID {
			result = append(result, a)
		}
	}
	return result, nil
}

type memAccountRepo struct {
	byID map[uuid.UUID]*ledger.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{byID: make(map[uuid.UUID]*ledger.Account)}
}

func (r *memAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	account, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *memAccountRepo) FindByCode(_ context.Context, code string) (*ledger.Account, error) {
	for _, account := range r.byID {
		if account.Code == code {
			copied := *account
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) FindControlAccounts(ctx context.Context) (*ledger.ControlAccounts, error) {
	revenue, err := r.FindByCode(ctx, ledger.AccountCodeRevenue)
	if err != nil {
		return nil, err
	}
	taxPayable, err := r.FindByCode(ctx, ledger.AccountCodeTaxPayable)
	if err != nil {
		return nil, err
	}
	taxInput, err := r.FindByCode(ctx, ledger.AccountCodeTaxInput)
	if err != nil {
		return nil, err
	}
	stock, err := r.FindByCode(ctx, ledger.AccountCodeInventory)
	if err != nil {
		return nil, err
	}
	return &ledger.ControlAccounts{
		Revenue:    revenue,
		TaxPayable: taxPayable,
		TaxInput:   taxInput,
		Inventory:  stock,
	}, nil
}

func (r *memAccountRepo) Save(_ context.Context, account *ledger.Account) error {
	copied := *account
	r.byID[account.ID] = &copied
	return nil
}

func (r *memAccountRepo) Create(ctx context.Context, account *ledger.Account) error {
	return r.Save(ctx, account)
}

type memEntryRepo struct {
	entries []ledger.LedgerEntry
}

func (r *memEntryRepo) AppendAll(_ context.Context, entries []ledger.LedgerEntry) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *memEntryRepo) FindByReference(_ context.Context, referenceType string, referenceID uuid.UUID) ([]ledger.LedgerEntry, error) {
	result := make([]ledger.LedgerEntry, 0)
	for _, e := range r.entries {
		if e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			result = append(result, e)
		}
	}
	return result, nil
}

type memPartyRepo struct {
	parties     map[uuid.UUID]*billing.Party
	outstanding map[uuid.UUID]decimal.Decimal
}

func newMemPartyRepo() *memPartyRepo {
	return &memPartyRepo{
		parties:     make(map[uuid.UUID]*billing.Party),
		outstanding: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (r *memPartyRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Party, error) {
	party, ok := r.parties[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return party, nil
}

func (r *memPartyRepo) GetCreditLimit(_ context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	party, ok := r.parties[partyID]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	return party.CreditLimit, nil
}

func (r *memPartyRepo) GetOutstandingBalance(_ context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	return r.outstanding[partyID], nil
}

type memTaxSource struct {
	configs map[string]*billing.TaxConfig
}

func (s *memTaxSource) FindByCode(_ context.Context, code string) (*billing.TaxConfig, error) {
	return s.configs[strings.ToUpper(code)], nil
}
