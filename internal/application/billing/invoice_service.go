package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/billing"
	"github.com/tradeops/backoffice/internal/domain/inventory"
	"github.com/tradeops/backoffice/internal/domain/ledger"
	"github.com/tradeops/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// Scheme2Mode controls when scheme2 claim entries are posted
type Scheme2Mode string

const (
	// Scheme2ModeConfirm posts claim entries inside the confirm transaction
	Scheme2ModeConfirm Scheme2Mode = "confirm"
	// Scheme2ModeDeferred validates the claim account at confirm but posts
	// the claim entries through an explicit PostScheme2Claim call
	Scheme2ModeDeferred Scheme2Mode = "deferred"
)

// InvoicePostingService orchestrates the invoice lifecycle: draft creation,
// confirmation (calculation, stock allocation, ledger posting as one
// transaction), payment marking, cancellation with full reversal, and
// returns.
type InvoicePostingService struct {
	scope       TransactionScope
	parties     billing.PartyRepository
	calculator  *billing.LineCalculator
	credit      *billing.CreditLimitValidator
	scheme      *billing.SchemeTracker
	allocator   *inventory.FEFOAllocator
	poster      *ledger.Poster
	reversal    *ReversalEngine
	scheme2Mode Scheme2Mode
	logger      *zap.Logger
}

// NewInvoicePostingService creates a new InvoicePostingService
func NewInvoicePostingService(
	scope TransactionScope,
	parties billing.PartyRepository,
	taxSource billing.TaxConfigSource,
	scheme2Mode Scheme2Mode,
	logger *zap.Logger,
) *InvoicePostingService {
	if scheme2Mode == "" {
		scheme2Mode = Scheme2ModeConfirm
	}
	poster := ledger.NewPoster()
	return &InvoicePostingService{
		scope:       scope,
		parties:     parties,
		calculator:  billing.NewLineCalculator(billing.NewTaxCalculator(taxSource)),
		credit:      billing.NewCreditLimitValidator(parties),
		scheme:      billing.NewSchemeTracker(),
		allocator:   inventory.NewFEFOAllocator(),
		poster:      poster,
		reversal:    NewReversalEngine(poster, logger),
		scheme2Mode: scheme2Mode,
		logger:      logger,
	}
}

// claimAccountChecker adapts the ledger account repository to the domain's
// claim validation contract
type claimAccountChecker struct {
	ctx      context.Context
	accounts ledger.AccountRepository
}

// CheckClaimAccount verifies the claim account exists, is active and is a
// claim-type account
func (c *claimAccountChecker) CheckClaimAccount(accountID uuid.UUID) error {
	account, err := c.accounts.FindByID(c.ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return billing.ErrClaimAccountNotFound
		}
		return err
	}
	if account == nil || account.Type != ledger.AccountTypeClaim {
		return billing.ErrClaimAccountNotFound
	}
	if !account.IsActive {
		return billing.ErrClaimAccountInactive
	}
	return nil
}

// CreateDraft creates a new draft invoice with its lines. Nothing moves in
// stock or ledger until the draft is confirmed.
func (s *InvoicePostingService) CreateDraft(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	party, err := s.parties.FindByID(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}

	var response *InvoiceResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoiceNumber, err := repos.InvoiceRepo().GenerateInvoiceNumber(ctx, req.Type)
		if err != nil {
			return err
		}

		invoiceDate := time.Now()
		if req.InvoiceDate != nil {
			invoiceDate = *req.InvoiceDate
		}

		inv, err := billing.NewInvoice(invoiceNumber, req.Type, party.ID, party.AccountID, req.WarehouseID, party.Name, invoiceDate)
		if err != nil {
			return err
		}
		inv.DueDate = req.DueDate

		if req.ClaimAccountID != nil {
			if err := inv.SetClaimAccount(*req.ClaimAccountID); err != nil {
				return err
			}
		}

		for _, lineReq := range req.Lines {
			line, err := billing.NewInvoiceLine(inv.ID, lineReq.ItemID, lineReq.ItemName, lineReq.Quantity, lineReq.UnitPrice)
			if err != nil {
				return err
			}
			if err := line.SetDiscounts(lineReq.Discount1Percent, lineReq.Discount2Percent); err != nil {
				return err
			}
			if err := line.SetSchemeQuantities(lineReq.Scheme1Quantity, lineReq.Scheme2Quantity); err != nil {
				return err
			}
			line.TaxCodes = lineReq.TaxCodes
			if lineReq.BatchNumber != "" {
				if lineReq.ManufacturingDate == nil || lineReq.ExpiryDate == nil {
					return shared.NewDomainError("MISSING_BATCH_METADATA", "Batch number requires manufacturing and expiry dates")
				}
				if err := line.SetBatchMetadata(lineReq.BatchNumber, *lineReq.ManufacturingDate, *lineReq.ExpiryDate, lineReq.UnitCost); err != nil {
					return err
				}
			}
			if err := inv.AddLine(line); err != nil {
				return err
			}
		}

		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		inv.ClearDomainEvents()

		resp := ToInvoiceResponse(inv)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice draft created",
		zap.String("invoice_number", response.InvoiceNumber),
		zap.String("type", response.Type.String()))

	return response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoicePostingService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		resp := ToInvoiceResponse(inv)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoicePostingService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}

	var responses []InvoiceResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.InvoiceRepo().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		responses = make([]InvoiceResponse, 0, len(invoices))
		for idx := range invoices {
			responses = append(responses, ToInvoiceResponse(&invoices[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// CalculateLineTotals runs the calculation pipeline as a pure preview.
// Nothing is persisted and no stock or ledger state is touched; the figures
// are exactly what a confirm would record.
func (s *InvoicePostingService) CalculateLineTotals(ctx context.Context, invoiceID uuid.UUID) (*LineTotalsResponse, error) {
	var inv *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		inv = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	party, err := s.parties.FindByID(ctx, inv.PartyID)
	if err != nil {
		return nil, err
	}

	comp, err := s.calculator.Calculate(ctx, inv, party.TaxProfile())
	if err != nil {
		return nil, err
	}

	return &LineTotalsResponse{Lines: comp.Lines, Totals: comp.Totals}, nil
}

// Confirm transitions a draft invoice to confirmed. Calculation, credit
// check, stock allocation, ledger posting and the status change happen in
// one transaction; any failure rolls back everything.
func (s *InvoicePostingService) Confirm(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Row lock plus status check doubles as the idempotency guard for
		// concurrent confirmations of the same invoice
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !inv.IsDraft() {
			return &billing.InvalidInvoiceStatusError{InvoiceID: inv.ID, Current: inv.Status, Attempted: "confirm"}
		}
		if err := inv.ValidateDraft(); err != nil {
			return err
		}

		party, err := s.parties.FindByID(ctx, inv.PartyID)
		if err != nil {
			return err
		}

		checker := &claimAccountChecker{ctx: ctx, accounts: repos.AccountRepo()}
		if err := s.scheme.ValidateClaimLinkage(inv, checker); err != nil {
			return err
		}

		comp, err := s.calculator.Calculate(ctx, inv, party.TaxProfile())
		if err != nil {
			return err
		}

		if inv.Type == billing.InvoiceTypeSales {
			if err := s.credit.Validate(ctx, inv.PartyID, comp.Totals.GrandTotal); err != nil {
				return err
			}
		}

		if err := s.moveStock(ctx, repos, inv); err != nil {
			return err
		}

		if err := s.postLedger(ctx, repos, inv, comp.Totals); err != nil {
			return err
		}

		if err := comp.Apply(inv); err != nil {
			return err
		}
		if err := inv.Confirm(comp.Totals); err != nil {
			return err
		}
		inv.IncrementVersion()
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		inv.ClearDomainEvents()

		resp := ToInvoiceResponse(inv)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice confirmed",
		zap.String("invoice_number", response.InvoiceNumber),
		zap.String("type", response.Type.String()),
		zap.String("grand_total", response.GrandTotal.String()))

	return response, nil
}

// moveStock applies the invoice's full physical quantities to batch stock.
// Scheme units move stock exactly like billable units. Every batch change
// writes a movement audit record and an allocation record for reversal.
func (s *InvoicePostingService) moveStock(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice) error {
	switch {
	case inv.Type.IsOutbound():
		return s.allocateOutbound(ctx, repos, inv)
	case inv.Type == billing.InvoiceTypePurchase:
		return s.receivePurchase(ctx, repos, inv)
	case inv.Type == billing.InvoiceTypeReturnSales:
		return s.restoreSalesReturn(ctx, repos, inv)
	default:
		return shared.NewDomainError("INVALID_INVOICE_TYPE", "Unknown stock direction for invoice type "+inv.Type.String())
	}
}

func (s *InvoicePostingService) allocateOutbound(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice) error {
	allocations := make([]inventory.BatchAllocation, 0)

	for idx := range inv.Lines {
		line := &inv.Lines[idx]

		batches, err := repos.BatchRepo().FindForAllocation(ctx, line.ItemID, inv.WarehouseID)
		if err != nil {
			return err
		}

		plan, err := s.allocator.Plan(line.ItemID, inv.WarehouseID, line.Quantity, batches)
		if err != nil {
			return err
		}

		ptrs := make([]*inventory.Batch, len(batches))
		for i := range batches {
			ptrs[i] = &batches[i]
		}
		if err := s.allocator.Apply(plan, ptrs); err != nil {
			return err
		}

		planned := make(map[uuid.UUID]bool, len(plan.Deductions))
		for _, deduction := range plan.Deductions {
			planned[deduction.BatchID] = true
		}
		for _, batch := range ptrs {
			if !planned[batch.ID] {
				continue
			}
			if err := repos.BatchRepo().Save(ctx, batch); err != nil {
				return err
			}
		}

		for _, deduction := range plan.Deductions {
			movement, err := inventory.NewStockMovement(line.ItemID, inv.WarehouseID, deduction.BatchID,
				deduction.Quantity, inventory.MovementDirectionOut,
				inventory.MovementReferenceInvoice, inv.ID, inv.InvoiceNumber)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return err
			}
			allocations = append(allocations, *inventory.NewBatchAllocation(
				inv.ID, deduction.BatchID, line.ItemID,
				deduction.Quantity, deduction.UnitCost, inventory.MovementDirectionOut))
		}
	}

	return repos.AllocationRepo().SaveAll(ctx, allocations)
}

func (s *InvoicePostingService) receivePurchase(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice) error {
	allocations := make([]inventory.BatchAllocation, 0, len(inv.Lines))

	for idx := range inv.Lines {
		line := &inv.Lines[idx]

		batch, err := inventory.NewBatch(line.ItemID, inv.WarehouseID, line.BatchNumber,
			*line.ManufacturingDate, *line.ExpiryDate, line.Quantity, line.UnitCost)
		if err != nil {
			return err
		}
		if err := repos.BatchRepo().Create(ctx, batch); err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(line.ItemID, inv.WarehouseID, batch.ID,
			line.Quantity, inventory.MovementDirectionIn,
			inventory.MovementReferenceInvoice, inv.ID, inv.InvoiceNumber)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}

		allocations = append(allocations, *inventory.NewBatchAllocation(
			inv.ID, batch.ID, line.ItemID, line.Quantity, line.UnitCost, inventory.MovementDirectionIn))
	}

	return repos.AllocationRepo().SaveAll(ctx, allocations)
}

// restoreSalesReturn puts returned stock back into the batches the original
// sale drew from. Batches that no longer exist or cannot absorb the quantity
// fall through to an adjustment batch.
func (s *InvoicePostingService) restoreSalesReturn(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice) error {
	if inv.OriginalInvoiceID == nil {
		return shared.NewDomainError("INVALID_ORIGINAL", "Sales return has no original invoice")
	}

	original, err := repos.AllocationRepo().FindByInvoice(ctx, *inv.OriginalInvoiceID)
	if err != nil {
		return err
	}

	allocations := make([]inventory.BatchAllocation, 0, len(inv.Lines))

	for idx := range inv.Lines {
		line := &inv.Lines[idx]
		remaining := line.Quantity

		for _, alloc := range original {
			if remaining.IsZero() {
				break
			}
			if alloc.ItemID != line.ItemID || alloc.Direction != inventory.MovementDirectionOut {
				continue
			}

			batch, err := repos.BatchRepo().FindByID(ctx, alloc.BatchID)
			if err != nil || batch == nil {
				continue
			}

			restore := decimal.Min(remaining, alloc.Quantity)
			headroom := batch.Quantity.Sub(batch.RemainingQuantity)
			restore = decimal.Min(restore, headroom)
			if restore.IsZero() {
				continue
			}
			if err := batch.Restore(restore); err != nil {
				return err
			}
			if err := repos.BatchRepo().Save(ctx, batch); err != nil {
				return err
			}

			movement, err := inventory.NewStockMovement(line.ItemID, inv.WarehouseID, batch.ID,
				restore, inventory.MovementDirectionIn,
				inventory.MovementReferenceInvoice, inv.ID, inv.InvoiceNumber)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return err
			}

			allocations = append(allocations, *inventory.NewBatchAllocation(
				inv.ID, batch.ID, line.ItemID, restore, alloc.UnitCost, inventory.MovementDirectionIn))
			remaining = remaining.Sub(restore)
		}

		if remaining.GreaterThan(decimal.Zero) {
			batch, err := inventory.NewBatch(line.ItemID, inv.WarehouseID,
				fmt.Sprintf("ADJ-%s", inv.InvoiceNumber),
				time.Now().AddDate(0, 0, -1), time.Now().AddDate(1, 0, 0),
				remaining, line.UnitCost)
			if err != nil {
				return err
			}
			if err := repos.BatchRepo().Create(ctx, batch); err != nil {
				return err
			}

			movement, err := inventory.NewStockMovement(line.ItemID, inv.WarehouseID, batch.ID,
				remaining, inventory.MovementDirectionIn,
				inventory.MovementReferenceInvoice, inv.ID, inv.InvoiceNumber)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return err
			}

			allocations = append(allocations, *inventory.NewBatchAllocation(
				inv.ID, batch.ID, line.ItemID, remaining, line.UnitCost, inventory.MovementDirectionIn))
		}
	}

	return repos.AllocationRepo().SaveAll(ctx, allocations)
}

// postLedger builds the balanced posting for the invoice direction, appends
// the entries and applies the balance changes to the touched accounts.
func (s *InvoicePostingService) postLedger(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice, totals billing.InvoiceTotals) error {
	control, err := repos.AccountRepo().FindControlAccounts(ctx)
	if err != nil {
		return err
	}

	amounts := ledger.PostingAmounts{
		GrandTotal:  totals.GrandTotal,
		NetSubtotal: totals.TaxableTotal,
		TaxTotal:    totals.TaxTotal,
	}

	var posting *ledger.Posting
	switch inv.Type {
	case billing.InvoiceTypeSales:
		posting, err = s.poster.BuildSalesPosting(inv.ID, inv.PartyAccountID, *control, amounts, inv.InvoiceDate, inv.InvoiceNumber)
	case billing.InvoiceTypePurchase:
		posting, err = s.poster.BuildPurchasePosting(inv.ID, inv.PartyAccountID, *control, amounts, inv.InvoiceDate, inv.InvoiceNumber)
	case billing.InvoiceTypeReturnSales:
		posting, err = s.poster.BuildReturnSalesPosting(inv.ID, inv.PartyAccountID, *control, amounts, inv.InvoiceDate, inv.InvoiceNumber)
	case billing.InvoiceTypeReturnPurchase:
		posting, err = s.poster.BuildReturnPurchasePosting(inv.ID, inv.PartyAccountID, *control, amounts, inv.InvoiceDate, inv.InvoiceNumber)
	default:
		return shared.NewDomainError("INVALID_INVOICE_TYPE", "No posting direction for invoice type "+inv.Type.String())
	}
	if err != nil {
		return err
	}

	if err := s.commitPosting(ctx, repos, posting); err != nil {
		return err
	}

	if inv.HasScheme2() && s.scheme2Mode == Scheme2ModeConfirm {
		claim, err := s.poster.BuildClaimPosting(inv.ID, *inv.ClaimAccountID, inv.PartyAccountID,
			totals.Scheme2Total, inv.InvoiceDate, inv.InvoiceNumber+" scheme claim")
		if err != nil {
			return err
		}
		if err := s.commitPosting(ctx, repos, claim); err != nil {
			return err
		}
	}

	return nil
}

// commitPosting appends the posting's entries and moves account balances
func (s *InvoicePostingService) commitPosting(ctx context.Context, repos TransactionalRepositories, posting *ledger.Posting) error {
	if err := repos.EntryRepo().AppendAll(ctx, posting.Entries()); err != nil {
		return err
	}
	for _, entry := range posting.Entries() {
		account, err := repos.AccountRepo().FindByID(ctx, entry.AccountID)
		if err != nil {
			return err
		}
		account.ApplyEntry(entry.Debit, entry.Credit)
		if err := repos.AccountRepo().Save(ctx, account); err != nil {
			return err
		}
	}
	return nil
}

// PostScheme2Claim posts the deferred scheme2 claim entries for a confirmed
// invoice. Only meaningful in deferred mode; posting twice is rejected.
func (s *InvoicePostingService) PostScheme2Claim(ctx context.Context, invoiceID uuid.UUID) error {
	if s.scheme2Mode != Scheme2ModeDeferred {
		return shared.NewDomainError("INVALID_STATE", "Scheme2 claims are posted at confirmation in this configuration")
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !inv.IsConfirmed() && !inv.IsPaid() {
			return &billing.InvalidInvoiceStatusError{InvoiceID: inv.ID, Current: inv.Status, Attempted: "post scheme2 claim"}
		}
		if inv.Scheme2Total.IsZero() {
			return shared.NewDomainError("INVALID_STATE", "Invoice has no scheme2 value to post")
		}
		if inv.ClaimAccountID == nil {
			return &billing.ClaimAccountRequiredError{Reason: "invoice carries scheme2 quantities"}
		}

		entries, err := repos.EntryRepo().FindByReference(ctx, ledger.ReferenceTypeInvoice, inv.ID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.AccountID == *inv.ClaimAccountID {
				return shared.NewDomainError("INVALID_STATE", "Scheme2 claim already posted for this invoice")
			}
		}

		claim, err := s.poster.BuildClaimPosting(inv.ID, *inv.ClaimAccountID, inv.PartyAccountID,
			inv.Scheme2Total, time.Now(), inv.InvoiceNumber+" scheme claim")
		if err != nil {
			return err
		}
		return s.commitPosting(ctx, repos, claim)
	})
	if err != nil {
		return err
	}

	s.logger.Info("scheme2 claim posted", zap.String("invoice_id", invoiceID.String()))
	return nil
}

// Cancel cancels an invoice. Draft cancellation is a pure status change;
// confirmed cancellation reverses every stock and ledger effect in the same
// transaction. Paid invoices are rejected, the caller must create a return.
func (s *InvoicePostingService) Cancel(ctx context.Context, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		wasConfirmed := inv.IsConfirmed()
		if err := inv.Cancel(reason); err != nil {
			return err
		}

		if wasConfirmed {
			if err := s.reversal.Reverse(ctx, repos, inv); err != nil {
				return err
			}
		}

		inv.IncrementVersion()
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		inv.ClearDomainEvents()

		resp := ToInvoiceResponse(inv)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice cancelled",
		zap.String("invoice_number", response.InvoiceNumber),
		zap.String("reason", reason))

	return response, nil
}

// MarkPaid marks a confirmed invoice as fully paid
func (s *InvoicePostingService) MarkPaid(ctx context.Context, invoiceID uuid.UUID, note string) (*InvoiceResponse, error) {
	return s.markPayment(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.MarkPaid(note)
	})
}

// MarkPartiallyPaid records a partial payment on a confirmed invoice
func (s *InvoicePostingService) MarkPartiallyPaid(ctx context.Context, invoiceID uuid.UUID, note string) (*InvoiceResponse, error) {
	return s.markPayment(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.MarkPartiallyPaid(note)
	})
}

func (s *InvoicePostingService) markPayment(ctx context.Context, invoiceID uuid.UUID, apply func(*billing.Invoice) error) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := apply(inv); err != nil {
			return err
		}
		inv.IncrementVersion()
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		inv.ClearDomainEvents()

		resp := ToInvoiceResponse(inv)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// CreateReturn creates a draft return invoice against a confirmed or paid
// original. Return quantities may not exceed the original line quantities;
// prices, discounts and tax codes are copied from the original lines.
func (s *InvoicePostingService) CreateReturn(ctx context.Context, originalID uuid.UUID, req CreateReturnRequest) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.InvoiceRepo().FindByID(ctx, originalID)
		if err != nil {
			return err
		}
		if !original.IsConfirmed() && !original.IsPaid() {
			return &billing.InvalidInvoiceStatusError{InvoiceID: original.ID, Current: original.Status, Attempted: "return"}
		}

		returnType, err := billing.ReturnTypeFor(original.Type)
		if err != nil {
			return err
		}

		invoiceNumber, err := repos.InvoiceRepo().GenerateInvoiceNumber(ctx, returnType)
		if err != nil {
			return err
		}

		ret, err := billing.NewInvoice(invoiceNumber, returnType, original.PartyID, original.PartyAccountID,
			original.WarehouseID, original.PartyName, time.Now())
		if err != nil {
			return err
		}
		if err := ret.LinkOriginal(original.ID); err != nil {
			return err
		}
		if original.ClaimAccountID != nil {
			if err := ret.SetClaimAccount(*original.ClaimAccountID); err != nil {
				return err
			}
		}

		if len(req.Lines) == 0 {
			return shared.NewDomainError("NO_LINES", "Return must specify at least one line")
		}

		for _, lineReq := range req.Lines {
			origLine := original.GetLineByItem(lineReq.ItemID)
			if origLine == nil {
				return &billing.ReturnExceedsOriginalError{
					ItemID:    lineReq.ItemID,
					Original:  decimal.Zero,
					Requested: lineReq.Quantity,
				}
			}
			if lineReq.Quantity.GreaterThan(origLine.Quantity) {
				return &billing.ReturnExceedsOriginalError{
					ItemID:    lineReq.ItemID,
					Original:  origLine.Quantity,
					Requested: lineReq.Quantity,
				}
			}

			line, err := billing.NewInvoiceLine(ret.ID, origLine.ItemID, origLine.ItemName, lineReq.Quantity, origLine.UnitPrice)
			if err != nil {
				return err
			}
			if err := line.SetDiscounts(origLine.Discount1Percent, origLine.Discount2Percent); err != nil {
				return err
			}
			line.TaxCodes = origLine.TaxCodes
			line.UnitCost = origLine.UnitCost
			if err := ret.AddLine(line); err != nil {
				return err
			}
		}

		ret.AddDomainEvent(billing.NewInvoiceReturnCreatedEvent(ret, original.ID))

		if err := repos.InvoiceRepo().Save(ctx, ret); err != nil {
			return err
		}
		ret.ClearDomainEvents()

		resp := ToInvoiceResponse(ret)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return invoice created",
		zap.String("invoice_number", response.InvoiceNumber),
		zap.String("original_invoice_id", originalID.String()))

	return response, nil
}
