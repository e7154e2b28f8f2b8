package inventory

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// InsufficientStockError is raised when the eligible batches cannot cover a
// requested quantity. The whole allocation fails atomically; no partial
// deduction is planned or committed.
type InsufficientStockError struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Available   decimal.Decimal
	Required    decimal.Decimal
	Shortfall   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: available %s, required %s, shortfall %s",
		e.ItemID, e.Available, e.Required, e.Shortfall)
}

// ErrorCode returns the stable error code
func (e *InsufficientStockError) ErrorCode() string {
	return "INSUFFICIENT_STOCK"
}

var _ shared.CodedError = (*InsufficientStockError)(nil)

// BatchDeduction is one planned deduction from a specific batch
type BatchDeduction struct {
	BatchID        uuid.UUID       `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
	Depleted       bool            `json:"depleted"`
}

// AllocationPlan is the complete set of batch deductions satisfying one
// requested quantity
type AllocationPlan struct {
	ItemID         uuid.UUID        `json:"item_id"`
	WarehouseID    uuid.UUID        `json:"warehouse_id"`
	Requested      decimal.Decimal  `json:"requested"`
	Deductions     []BatchDeduction `json:"deductions"`
	TotalAllocated decimal.Decimal  `json:"total_allocated"`
	TotalCost      decimal.Decimal  `json:"total_cost"`
}

// FEFOAllocator plans batch deductions in first-expired-first-out order:
// batches are consumed greedily in ascending expiry date order.
type FEFOAllocator struct{}

// NewFEFOAllocator creates a new FEFOAllocator
func NewFEFOAllocator() *FEFOAllocator {
	return &FEFOAllocator{}
}

// Plan selects batches for the requested quantity. Only allocatable batches
// (active, not quarantined, remaining > 0) are considered. If the total
// available quantity is less than requested the plan fails with
// InsufficientStockError carrying the shortfall.
func (a *FEFOAllocator) Plan(itemID, warehouseID uuid.UUID, requested decimal.Decimal, batches []Batch) (*AllocationPlan, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	eligible := make([]Batch, 0, len(batches))
	available := decimal.Zero
	for _, batch := range batches {
		if batch.IsAllocatable() {
			eligible = append(eligible, batch)
			available = available.Add(batch.RemainingQuantity)
		}
	}

	if available.LessThan(requested) {
		return nil, &InsufficientStockError{
			ItemID:      itemID,
			WarehouseID: warehouseID,
			Available:   available,
			Required:    requested,
			Shortfall:   requested.Sub(available),
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].ExpiryDate.Equal(eligible[j].ExpiryDate) {
			return eligible[i].ExpiryDate.Before(eligible[j].ExpiryDate)
		}
		// Stable tie-break on receipt order
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	plan := &AllocationPlan{
		ItemID:         itemID,
		WarehouseID:    warehouseID,
		Requested:      requested,
		Deductions:     make([]BatchDeduction, 0),
		TotalAllocated: decimal.Zero,
		TotalCost:      decimal.Zero,
	}

	remaining := requested
	for _, batch := range eligible {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(remaining, batch.RemainingQuantity)
		after := batch.RemainingQuantity.Sub(take)

		plan.Deductions = append(plan.Deductions, BatchDeduction{
			BatchID:        batch.ID,
			BatchNumber:    batch.BatchNumber,
			Quantity:       take,
			UnitCost:       batch.UnitCost,
			RemainingAfter: after,
			Depleted:       after.IsZero(),
		})
		plan.TotalAllocated = plan.TotalAllocated.Add(take)
		plan.TotalCost = plan.TotalCost.Add(take.Mul(batch.UnitCost))
		remaining = remaining.Sub(take)
	}

	return plan, nil
}

// Apply executes a plan against the loaded batch entities. A mismatch
// between plan and batches is an internal invariant violation.
func (a *FEFOAllocator) Apply(plan *AllocationPlan, batches []*Batch) error {
	if plan == nil {
		return shared.NewDomainError("INVALID_PLAN", "Allocation plan cannot be nil")
	}

	byID := make(map[uuid.UUID]*Batch, len(batches))
	for _, batch := range batches {
		byID[batch.ID] = batch
	}

	for _, deduction := range plan.Deductions {
		batch, ok := byID[deduction.BatchID]
		if !ok {
			return shared.ErrInternal
		}
		if err := batch.Deduct(deduction.Quantity); err != nil {
			return err
		}
	}
	return nil
}
