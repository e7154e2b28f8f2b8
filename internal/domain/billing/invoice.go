package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// InvoiceType represents the commercial direction of an invoice
type InvoiceType string

const (
	InvoiceTypeSales          InvoiceType = "SALES"
	InvoiceTypePurchase       InvoiceType = "PURCHASE"
	InvoiceTypeReturnSales    InvoiceType = "RETURN_SALES"
	InvoiceTypeReturnPurchase InvoiceType = "RETURN_PURCHASE"
)

// IsValid checks if the type is a valid InvoiceType
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeSales, InvoiceTypePurchase, InvoiceTypeReturnSales, InvoiceTypeReturnPurchase:
		return true
	}
	return false
}

// String returns the string representation of InvoiceType
func (t InvoiceType) String() string {
	return string(t)
}

// IsReturn returns true for return invoice types
func (t InvoiceType) IsReturn() bool {
	return t == InvoiceTypeReturnSales || t == InvoiceTypeReturnPurchase
}

// IsOutbound returns true if confirming this invoice ships stock out of the
// warehouse (sales and purchase returns)
func (t InvoiceType) IsOutbound() bool {
	return t == InvoiceTypeSales || t == InvoiceTypeReturnPurchase
}

// IsInbound returns true if confirming this invoice receives stock into the
// warehouse (purchases and sales returns)
func (t InvoiceType) IsInbound() bool {
	return t == InvoiceTypePurchase || t == InvoiceTypeReturnSales
}

// ReturnTypeFor returns the return invoice type matching an original type
func ReturnTypeFor(original InvoiceType) (InvoiceType, error) {
	switch original {
	case InvoiceTypeSales:
		return InvoiceTypeReturnSales, nil
	case InvoiceTypePurchase:
		return InvoiceTypeReturnPurchase, nil
	default:
		return "", shared.NewDomainError("INVALID_INVOICE_TYPE", "Returns can only be created against sales or purchase invoices")
	}
}

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusConfirmed InvoiceStatus = "CONFIRMED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusConfirmed, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusConfirmed || target == InvoiceStatusCancelled
	case InvoiceStatusConfirmed:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus represents how much of a confirmed invoice has been settled
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// InvoiceLine represents a line item on an invoice.
// Input fields are set at construction; computed fields are written by the
// line calculator during preview or confirmation and are zero until then.
type InvoiceLine struct {
	shared.BaseEntity
	InvoiceID        uuid.UUID
	ItemID           uuid.UUID
	ItemName         string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	Discount1Percent decimal.Decimal
	Discount2Percent decimal.Decimal
	Scheme1Quantity  decimal.Decimal
	Scheme2Quantity  decimal.Decimal
	TaxCodes         TaxCodeList `gorm:"type:text"`

	// Inbound batch metadata, required on purchase lines
	BatchNumber       string
	ManufacturingDate *time.Time
	ExpiryDate        *time.Time
	UnitCost          decimal.Decimal

	// Computed fields
	BillableQuantity decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxableAmount    decimal.Decimal
	TaxAmount        decimal.Decimal
	LineTotal        decimal.Decimal
}

// NewInvoiceLine creates and validates a new invoice line
func NewInvoiceLine(invoiceID, itemID uuid.UUID, itemName string, quantity, unitPrice decimal.Decimal) (*InvoiceLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &InvoiceLine{
		BaseEntity:       shared.NewBaseEntity(),
		InvoiceID:        invoiceID,
		ItemID:           itemID,
		ItemName:         itemName,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		Discount1Percent: decimal.Zero,
		Discount2Percent: decimal.Zero,
		Scheme1Quantity:  decimal.Zero,
		Scheme2Quantity:  decimal.Zero,
		UnitCost:         decimal.Zero,
	}, nil
}

// SetDiscounts sets the two-tier discount percentages for the line
func (l *InvoiceLine) SetDiscounts(d1, d2 decimal.Decimal) error {
	hundred := decimal.NewFromInt(100)
	if d1.IsNegative() || d1.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount1 must be between 0 and 100")
	}
	if d2.IsNegative() || d2.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount2 must be between 0 and 100")
	}
	l.Discount1Percent = d1
	l.Discount2Percent = d2
	l.UpdatedAt = time.Now()
	return nil
}

// SetSchemeQuantities sets the promotional quantities for the line
func (l *InvoiceLine) SetSchemeQuantities(scheme1, scheme2 decimal.Decimal) error {
	if scheme1.IsNegative() || scheme2.IsNegative() {
		return &SchemeExceedsQuantityError{
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			Scheme1Quantity: scheme1,
			Scheme2Quantity: scheme2,
		}
	}
	if scheme1.Add(scheme2).GreaterThan(l.Quantity) {
		return &SchemeExceedsQuantityError{
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			Scheme1Quantity: scheme1,
			Scheme2Quantity: scheme2,
		}
	}
	l.Scheme1Quantity = scheme1
	l.Scheme2Quantity = scheme2
	l.UpdatedAt = time.Now()
	return nil
}

// SetBatchMetadata sets the inbound batch details for a purchase line
func (l *InvoiceLine) SetBatchMetadata(batchNumber string, manufacturingDate, expiryDate time.Time, unitCost decimal.Decimal) error {
	if batchNumber == "" {
		return shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_UNIT_COST", "Unit cost cannot be negative")
	}
	l.BatchNumber = batchNumber
	l.ManufacturingDate = &manufacturingDate
	l.ExpiryDate = &expiryDate
	l.UnitCost = unitCost
	l.UpdatedAt = time.Now()
	return nil
}

// GrossAmount returns quantity * unitPrice before any computation
func (l *InvoiceLine) GrossAmount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Scheme2Value returns the claim value of the line's scheme2 units
func (l *InvoiceLine) Scheme2Value() decimal.Decimal {
	return l.Scheme2Quantity.Mul(l.UnitPrice)
}

// Invoice is the aggregate root for the posting engine. It owns its line
// items and the lifecycle transitions; stock and ledger side effects are
// orchestrated by the application layer within one transaction.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber     string
	Type              InvoiceType
	Status            InvoiceStatus
	PaymentStatus     PaymentStatus
	PartyID           uuid.UUID
	PartyName         string
	PartyAccountID    uuid.UUID
	WarehouseID       uuid.UUID
	ClaimAccountID    *uuid.UUID
	OriginalInvoiceID *uuid.UUID
	InvoiceDate       time.Time
	DueDate           *time.Time
	Lines             []InvoiceLine `gorm:"foreignKey:InvoiceID"`

	// Recorded totals, written once at confirmation and used as the source
	// of truth for reversals
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	Scheme2Total  decimal.Decimal

	ConfirmedAt  *time.Time
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelReason string
	PaymentNote  string
}

// NewInvoice creates a new draft invoice
func NewInvoice(invoiceNumber string, invoiceType InvoiceType, partyID, partyAccountID, warehouseID uuid.UUID, partyName string, invoiceDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Unknown invoice type")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if partyAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY_ACCOUNT", "Party account ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		Type:              invoiceType,
		Status:            InvoiceStatusDraft,
		PaymentStatus:     PaymentStatusPending,
		PartyID:           partyID,
		PartyName:         partyName,
		PartyAccountID:    partyAccountID,
		WarehouseID:       warehouseID,
		InvoiceDate:       invoiceDate,
		Lines:             make([]InvoiceLine, 0),
		Subtotal:          decimal.Zero,
		DiscountTotal:     decimal.Zero,
		TaxTotal:          decimal.Zero,
		GrandTotal:        decimal.Zero,
		Scheme2Total:      decimal.Zero,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// SetClaimAccount links a claim account for discount2/scheme2 offsets
// Only allowed in DRAFT status
func (i *Invoice) SetClaimAccount(accountID uuid.UUID) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot set claim account on a non-draft invoice")
	}
	if accountID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLAIM_ACCOUNT", "Claim account ID cannot be empty")
	}
	i.ClaimAccountID = &accountID
	i.UpdatedAt = time.Now()
	return nil
}

// LinkOriginal marks this invoice as a return against an original invoice
func (i *Invoice) LinkOriginal(originalID uuid.UUID) error {
	if !i.Type.IsReturn() {
		return shared.NewDomainError("INVALID_STATE", "Only return invoices can link an original invoice")
	}
	if originalID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORIGINAL", "Original invoice ID cannot be empty")
	}
	i.OriginalInvoiceID = &originalID
	i.UpdatedAt = time.Now()
	return nil
}

// AddLine adds a new line to the invoice
// Only allowed in DRAFT status
func (i *Invoice) AddLine(line *InvoiceLine) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft invoice")
	}
	if line == nil {
		return shared.NewDomainError("INVALID_LINE", "Line cannot be nil")
	}
	line.InvoiceID = i.ID
	i.Lines = append(i.Lines, *line)
	i.UpdatedAt = time.Now()
	return nil
}

// RemoveLine removes a line from the invoice
// Only allowed in DRAFT status
func (i *Invoice) RemoveLine(lineID uuid.UUID) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-draft invoice")
	}
	for idx, line := range i.Lines {
		if line.ID == lineID {
			i.Lines = append(i.Lines[:idx], i.Lines[idx+1:]...)
			i.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Invoice line not found")
}

// ValidateDraft runs the pure input validations required before confirmation.
// It performs no I/O and causes no side effects.
func (i *Invoice) ValidateDraft() error {
	if len(i.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot confirm an invoice without lines")
	}
	for idx := range i.Lines {
		line := &i.Lines[idx]
		if line.ItemID == uuid.Nil {
			return shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Line %d has no item", idx))
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Line %d quantity must be positive", idx))
		}
		if line.Scheme1Quantity.IsNegative() || line.Scheme2Quantity.IsNegative() ||
			line.Scheme1Quantity.Add(line.Scheme2Quantity).GreaterThan(line.Quantity) {
			return &SchemeExceedsQuantityError{
				ItemID:          line.ItemID,
				Quantity:        line.Quantity,
				Scheme1Quantity: line.Scheme1Quantity,
				Scheme2Quantity: line.Scheme2Quantity,
			}
		}
		if i.Type == InvoiceTypePurchase {
			if line.BatchNumber == "" || line.ManufacturingDate == nil || line.ExpiryDate == nil {
				return shared.NewDomainError("MISSING_BATCH_METADATA", fmt.Sprintf("Purchase line %d requires batch metadata", idx))
			}
		}
	}
	return nil
}

// HasScheme2 returns true if any line carries scheme2 quantity
func (i *Invoice) HasScheme2() bool {
	for idx := range i.Lines {
		if i.Lines[idx].Scheme2Quantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// Confirm transitions the invoice from DRAFT to CONFIRMED and records the
// computed totals. The orchestrator must have completed line calculation,
// credit validation, stock allocation and ledger posting before calling this.
func (i *Invoice) Confirm(totals InvoiceTotals) error {
	if i.Status != InvoiceStatusDraft {
		return &InvalidInvoiceStatusError{InvoiceID: i.ID, Current: i.Status, Attempted: "confirm"}
	}

	now := time.Now()
	i.Status = InvoiceStatusConfirmed
	i.Subtotal = totals.Subtotal
	i.DiscountTotal = totals.DiscountTotal
	i.TaxTotal = totals.TaxTotal
	i.GrandTotal = totals.GrandTotal
	i.Scheme2Total = totals.Scheme2Total
	i.ConfirmedAt = &now
	i.UpdatedAt = now

	i.AddDomainEvent(NewInvoiceConfirmedEvent(i))

	return nil
}

// MarkPaid marks a confirmed invoice as fully paid.
// Structural edits are forbidden afterwards; only payment fields may change.
func (i *Invoice) MarkPaid(note string) error {
	if i.Status != InvoiceStatusConfirmed {
		return &InvalidInvoiceStatusError{InvoiceID: i.ID, Current: i.Status, Attempted: "mark paid"}
	}

	now := time.Now()
	i.Status = InvoiceStatusPaid
	i.PaymentStatus = PaymentStatusPaid
	i.PaymentNote = note
	i.PaidAt = &now
	i.UpdatedAt = now

	i.AddDomainEvent(NewInvoicePaidEvent(i))

	return nil
}

// MarkPartiallyPaid records a partial payment against a confirmed invoice
func (i *Invoice) MarkPartiallyPaid(note string) error {
	if i.Status != InvoiceStatusConfirmed {
		return &InvalidInvoiceStatusError{InvoiceID: i.ID, Current: i.Status, Attempted: "mark partially paid"}
	}
	i.PaymentStatus = PaymentStatusPartial
	i.PaymentNote = note
	i.UpdatedAt = time.Now()
	return nil
}

// Cancel transitions the invoice to CANCELLED. Cancelling a confirmed invoice
// requires the reversal engine to have compensated stock and ledger effects
// within the same transaction. Paid invoices cannot be cancelled.
func (i *Invoice) Cancel(reason string) error {
	if i.Status == InvoiceStatusPaid {
		return &CannotCancelPaidInvoiceError{InvoiceID: i.ID}
	}
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return &InvalidInvoiceStatusError{InvoiceID: i.ID, Current: i.Status, Attempted: "cancel"}
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasConfirmed := i.Status == InvoiceStatusConfirmed
	now := time.Now()
	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &now
	i.CancelReason = reason
	i.UpdatedAt = now

	i.AddDomainEvent(NewInvoiceCancelledEvent(i, wasConfirmed))

	return nil
}

// IsDraft returns true if the invoice is in draft status
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// IsConfirmed returns true if the invoice is confirmed
func (i *Invoice) IsConfirmed() bool {
	return i.Status == InvoiceStatusConfirmed
}

// IsPaid returns true if the invoice is paid
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// IsCancelled returns true if the invoice is cancelled
func (i *Invoice) IsCancelled() bool {
	return i.Status == InvoiceStatusCancelled
}

// GetLineByItem returns the first line for the given item, or nil
func (i *Invoice) GetLineByItem(itemID uuid.UUID) *InvoiceLine {
	for idx := range i.Lines {
		if i.Lines[idx].ItemID == itemID {
			return &i.Lines[idx]
		}
	}
	return nil
}
