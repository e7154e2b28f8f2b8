package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// MovementDirection is the direction of a stock movement
type MovementDirection string

const (
	MovementDirectionIn  MovementDirection = "IN"
	MovementDirectionOut MovementDirection = "OUT"
)

// String returns the string representation of MovementDirection
func (d MovementDirection) String() string {
	return string(d)
}

// Inverse returns the opposite direction
func (d MovementDirection) Inverse() MovementDirection {
	if d == MovementDirectionIn {
		return MovementDirectionOut
	}
	return MovementDirectionIn
}

// Reference types attached to stock movements
const (
	MovementReferenceInvoice  = "INVOICE"
	MovementReferenceReversal = "REVERSAL"
)

// StockMovement is the append-only audit record for every batch quantity
// change. Movements are never mutated or deleted; reversals append opposite
// movements instead.
type StockMovement struct {
	shared.BaseEntity
	ItemID        uuid.UUID
	WarehouseID   uuid.UUID
	BatchID       uuid.UUID
	Quantity      decimal.Decimal
	Direction     MovementDirection
	ReferenceType string
	ReferenceID   uuid.UUID
	Remark        string
}

// NewStockMovement creates a new stock movement audit record
func NewStockMovement(itemID, warehouseID, batchID uuid.UUID, quantity decimal.Decimal, direction MovementDirection, referenceType string, referenceID uuid.UUID, remark string) (*StockMovement, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if referenceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Movement reference cannot be empty")
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		ItemID:        itemID,
		WarehouseID:   warehouseID,
		BatchID:       batchID,
		Quantity:      quantity,
		Direction:     direction,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Remark:        remark,
	}, nil
}

// BatchAllocation records which batch an invoice drew from (or filled into)
// at confirmation time. Reversals replay these records instead of
// recomputing an allocation.
type BatchAllocation struct {
	shared.BaseEntity
	InvoiceID uuid.UUID
	BatchID   uuid.UUID
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Direction MovementDirection
}

// NewBatchAllocation creates a new batch allocation record
func NewBatchAllocation(invoiceID, batchID, itemID uuid.UUID, quantity, unitCost decimal.Decimal, direction MovementDirection) *BatchAllocation {
	return &BatchAllocation{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  invoiceID,
		BatchID:    batchID,
		ItemID:     itemID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		Direction:  direction,
	}
}
