package billing

import (
	"context"
	"time"

	"github.com/tradeops/backoffice/internal/domain/billing"
	"github.com/tradeops/backoffice/internal/domain/inventory"
	"github.com/tradeops/backoffice/internal/domain/ledger"
	"go.uber.org/zap"
)

// ReversalEngine undoes the stock and ledger effects of a confirmed invoice.
// It replays the recorded batch allocations and reverses the stored ledger
// entries; nothing is recomputed, so the reversal is exact even if tax rates,
// discounts or batch states changed since confirmation.
type ReversalEngine struct {
	poster *ledger.Poster
	logger *zap.Logger
}

// NewReversalEngine creates a new ReversalEngine
func NewReversalEngine(poster *ledger.Poster, logger *zap.Logger) *ReversalEngine {
	return &ReversalEngine{poster: poster, logger: logger}
}

// Reverse compensates all effects of the invoice within the caller's
// transaction. Outbound allocations are restored to their batches; inbound
// allocations are deducted back out, failing if the received stock was
// already consumed.
func (e *ReversalEngine) Reverse(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice) error {
	if err := e.reverseStock(ctx, repos, inv); err != nil {
		return err
	}
	if err := e.reverseLedger(ctx, repos, inv); err != nil {
		return err
	}

	e.logger.Info("invoice effects reversed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("invoice_id", inv.ID.String()))

	return nil
}

func (e *ReversalEngine) reverseStock(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice) error {
	allocations, err := repos.AllocationRepo().FindByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}

	for idx := range allocations {
		alloc := &allocations[idx]

		batch, err := repos.BatchRepo().FindByID(ctx, alloc.BatchID)
		if err != nil {
			return err
		}

		switch alloc.Direction {
		case inventory.MovementDirectionOut:
			// The original confirm shipped this quantity; put it back
			if err := batch.Restore(alloc.Quantity); err != nil {
				return err
			}
		case inventory.MovementDirectionIn:
			// The original confirm received this quantity; take it back out.
			// Stock already sold on cannot be reversed.
			if alloc.Quantity.GreaterThan(batch.RemainingQuantity) {
				return &inventory.InsufficientStockError{
					ItemID:      alloc.ItemID,
					WarehouseID: batch.WarehouseID,
					Available:   batch.RemainingQuantity,
					Required:    alloc.Quantity,
					Shortfall:   alloc.Quantity.Sub(batch.RemainingQuantity),
				}
			}
			if err := batch.Deduct(alloc.Quantity); err != nil {
				return err
			}
		}

		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(alloc.ItemID, inv.WarehouseID, alloc.BatchID,
			alloc.Quantity, alloc.Direction.Inverse(),
			inventory.MovementReferenceReversal, inv.ID, "reversal of "+inv.InvoiceNumber)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}
	}

	return nil
}

func (e *ReversalEngine) reverseLedger(ctx context.Context, repos TransactionalRepositories, inv *billing.Invoice) error {
	entries, err := repos.EntryRepo().FindByReference(ctx, ledger.ReferenceTypeInvoice, inv.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	reversal, err := e.poster.BuildReversal(entries, time.Now(), "reversal of "+inv.InvoiceNumber)
	if err != nil {
		return err
	}
	if err := repos.EntryRepo().AppendAll(ctx, reversal.Entries()); err != nil {
		return err
	}

	for _, entry := range reversal.Entries() {
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
