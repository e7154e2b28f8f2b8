package inventory

import (
	"context"

	"github.com/google/uuid"
)

// BatchRepository is the persistence contract for stock batches
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	// FindForAllocation loads the batches for an item/warehouse with row
	// locks held until the surrounding transaction ends, so concurrent
	// confirmations cannot both allocate the same stock
	FindForAllocation(ctx context.Context, itemID, warehouseID uuid.UUID) ([]Batch, error)
	FindByItem(ctx context.Context, itemID, warehouseID uuid.UUID) ([]Batch, error)
	Save(ctx context.Context, batch *Batch) error
	Create(ctx context.Context, batch *Batch) error
}

// StockMovementRepository is append-only: movements are written once and
// queried by reference, never updated
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindByReference(ctx context.Context, referenceID uuid.UUID) ([]StockMovement, error)
}

// BatchAllocationRepository records the batch deductions/additions made by
// an invoice confirmation for later reversal
type BatchAllocationRepository interface {
	SaveAll(ctx context.Context, allocations []BatchAllocation) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]BatchAllocation, error)
}
