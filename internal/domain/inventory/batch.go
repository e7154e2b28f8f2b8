package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// BatchStatus is the lifecycle status of a stock batch. It is derived from
// dates and remaining quantity; callers never set it directly.
type BatchStatus string

const (
	BatchStatusPending     BatchStatus = "PENDING"
	BatchStatusActive      BatchStatus = "ACTIVE"
	BatchStatusExpired     BatchStatus = "EXPIRED"
	BatchStatusDepleted    BatchStatus = "DEPLETED"
	BatchStatusQuarantined BatchStatus = "QUARANTINED"
)

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// InvalidBatchDatesError is raised when a batch's expiry date does not follow
// its manufacturing date
type InvalidBatchDatesError struct {
	BatchNumber       string
	ManufacturingDate time.Time
	ExpiryDate        time.Time
}

func (e *InvalidBatchDatesError) Error() string {
	return fmt.Sprintf("batch %s: expiry date %s must be after manufacturing date %s",
		e.BatchNumber, e.ExpiryDate.Format("2006-01-02"), e.ManufacturingDate.Format("2006-01-02"))
}

// ErrorCode returns the stable error code
func (e *InvalidBatchDatesError) ErrorCode() string {
	return "INVALID_BATCH_DATES"
}

// BatchExpiredError is raised when receiving an already-expired batch
type BatchExpiredError struct {
	BatchNumber string
	ExpiryDate  time.Time
}

func (e *BatchExpiredError) Error() string {
	return fmt.Sprintf("batch %s expired on %s and cannot be received",
		e.BatchNumber, e.ExpiryDate.Format("2006-01-02"))
}

// ErrorCode returns the stable error code
func (e *BatchExpiredError) ErrorCode() string {
	return "BATCH_EXPIRED"
}

var (
	_ shared.CodedError = (*InvalidBatchDatesError)(nil)
	_ shared.CodedError = (*BatchExpiredError)(nil)
)

// Batch is a dated, quantity-tracked lot of a stocked item within a
// warehouse. Quantity is the issued amount and never changes after receipt;
// RemainingQuantity moves between 0 and Quantity through allocations and
// reversals.
type Batch struct {
	shared.BaseEntity
	ItemID            uuid.UUID
	WarehouseID       uuid.UUID
	BatchNumber       string
	ManufacturingDate time.Time
	ExpiryDate        time.Time
	Quantity          decimal.Decimal
	RemainingQuantity decimal.Decimal
	UnitCost          decimal.Decimal
	Quarantined       bool
}

// NewBatch creates a new batch from inbound receipt metadata. The expiry
// date must be after the manufacturing date, and already-expired batches are
// rejected.
func NewBatch(itemID, warehouseID uuid.UUID, batchNumber string, manufacturingDate, expiryDate time.Time, quantity, unitCost decimal.Decimal) (*Batch, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_COST", "Unit cost cannot be negative")
	}
	if !expiryDate.After(manufacturingDate) {
		return nil, &InvalidBatchDatesError{
			BatchNumber:       batchNumber,
			ManufacturingDate: manufacturingDate,
			ExpiryDate:        expiryDate,
		}
	}
	if !expiryDate.After(time.Now()) {
		return nil, &BatchExpiredError{BatchNumber: batchNumber, ExpiryDate: expiryDate}
	}

	return &Batch{
		BaseEntity:        shared.NewBaseEntity(),
		ItemID:            itemID,
		WarehouseID:       warehouseID,
		BatchNumber:       batchNumber,
		ManufacturingDate: manufacturingDate,
		ExpiryDate:        expiryDate,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		UnitCost:          unitCost,
	}, nil
}

// Status derives the batch status from dates and remaining quantity
func (b *Batch) Status() BatchStatus {
	if b.Quarantined {
		return BatchStatusQuarantined
	}
	if b.RemainingQuantity.LessThanOrEqual(decimal.Zero) {
		return BatchStatusDepleted
	}
	now := time.Now()
	if now.After(b.ExpiryDate) {
		return BatchStatusExpired
	}
	if now.Before(b.ManufacturingDate) {
		return BatchStatusPending
	}
	return BatchStatusActive
}

// IsAllocatable returns true if stock may be drawn from this batch
func (b *Batch) IsAllocatable() bool {
	return b.Status() == BatchStatusActive
}

// IsExpired returns true if the batch is past its expiry date
func (b *Batch) IsExpired() bool {
	return time.Now().After(b.ExpiryDate)
}

// IsDepleted returns true if no quantity remains
func (b *Batch) IsDepleted() bool {
	return b.RemainingQuantity.LessThanOrEqual(decimal.Zero)
}

// Quarantine marks the batch unavailable for allocation
func (b *Batch) Quarantine() {
	b.Quarantined = true
	b.UpdatedAt = time.Now()
}

// ReleaseQuarantine makes the batch available again
func (b *Batch) ReleaseQuarantine() {
	b.Quarantined = false
	b.UpdatedAt = time.Now()
}

// Deduct reduces the remaining quantity. Driving it negative is an internal
// invariant violation, not a user-facing error.
func (b *Batch) Deduct(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if quantity.GreaterThan(b.RemainingQuantity) {
		return shared.ErrInternal
	}
	b.RemainingQuantity = b.RemainingQuantity.Sub(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// Restore returns previously deducted quantity to the batch. The remaining
// quantity can never exceed the issued quantity.
func (b *Batch) Restore(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Restore quantity must be positive")
	}
	if b.RemainingQuantity.Add(quantity).GreaterThan(b.Quantity) {
		return shared.ErrInternal
	}
	b.RemainingQuantity = b.RemainingQuantity.Add(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// DaysUntilExpiry returns the number of whole days until expiry
func (b *Batch) DaysUntilExpiry() int {
	return int(time.Until(b.ExpiryDate).Hours() / 24)
}

// RemainingValue returns remainingQuantity * unitCost
func (b *Batch) RemainingValue() decimal.Decimal {
	return b.RemainingQuantity.Mul(b.UnitCost)
}
