package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SchemeSplit is the separation of a line's physical quantity into billable
// and promotional units. Promotional units are free for revenue purposes but
// consume stock identically to billable units.
type SchemeSplit struct {
	ItemID           uuid.UUID       `json:"item_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	BillableQuantity decimal.Decimal `json:"billable_quantity"`
	Scheme1Quantity  decimal.Decimal `json:"scheme1_quantity"`
	Scheme2Quantity  decimal.Decimal `json:"scheme2_quantity"`
	// Scheme2Value is scheme2Quantity * unitPrice, posted against the claim account
	Scheme2Value decimal.Decimal `json:"scheme2_value"`
}

// ClaimAccountChecker validates claim account existence and activity.
// Implemented by the ledger account repository at the application boundary.
type ClaimAccountChecker interface {
	// CheckClaimAccount returns ErrClaimAccountNotFound or
	// ErrClaimAccountInactive when the account cannot absorb claims
	CheckClaimAccount(accountID uuid.UUID) error
}

// SchemeTracker separates promotional quantities from billable quantities
// and enforces claim-account linkage for scheme2
type SchemeTracker struct{}

// NewSchemeTracker creates a new SchemeTracker
func NewSchemeTracker() *SchemeTracker {
	return &SchemeTracker{}
}

// Split computes billableQuantity = quantity - scheme1 - scheme2 for a line
func (t *SchemeTracker) Split(line *InvoiceLine) (*SchemeSplit, error) {
	if line.Scheme1Quantity.IsNegative() || line.Scheme2Quantity.IsNegative() ||
		line.Scheme1Quantity.Add(line.Scheme2Quantity).GreaterThan(line.Quantity) {
		return nil, &SchemeExceedsQuantityError{
			ItemID:          line.ItemID,
			Quantity:        line.Quantity,
			Scheme1Quantity: line.Scheme1Quantity,
			Scheme2Quantity: line.Scheme2Quantity,
		}
	}

	return &SchemeSplit{
		ItemID:           line.ItemID,
		Quantity:         line.Quantity,
		BillableQuantity: line.Quantity.Sub(line.Scheme1Quantity).Sub(line.Scheme2Quantity),
		Scheme1Quantity:  line.Scheme1Quantity,
		Scheme2Quantity:  line.Scheme2Quantity,
		Scheme2Value:     line.Scheme2Value(),
	}, nil
}

// ValidateClaimLinkage enforces the scheme2 claim-account rules across a
// whole invoice: any scheme2 quantity requires a claim account, and the
// account must exist and be active
func (t *SchemeTracker) ValidateClaimLinkage(inv *Invoice, checker ClaimAccountChecker) error {
	if !inv.HasScheme2() {
		return nil
	}
	if inv.ClaimAccountID == nil {
		return &ClaimAccountRequiredError{Reason: "invoice carries scheme2 quantities"}
	}
	return checker.CheckClaimAccount(*inv.ClaimAccountID)
}

// TotalScheme2Value sums the claim value of all scheme2 units on an invoice
func (t *SchemeTracker) TotalScheme2Value(inv *Invoice) decimal.Decimal {
	total := decimal.Zero
	for idx := range inv.Lines {
		total = total.Add(inv.Lines[idx].Scheme2Value())
	}
	return total
}
