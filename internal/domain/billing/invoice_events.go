package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceConfirmed     = "InvoiceConfirmed"
	EventTypeInvoicePaid          = "InvoicePaid"
	EventTypeInvoiceCancelled     = "InvoiceCancelled"
	EventTypeInvoiceReturnCreated = "InvoiceReturnCreated"
)

// InvoiceCreatedEvent is raised when a new draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID   `json:"invoice_id"`
	InvoiceNumber string      `json:"invoice_number"`
	InvoiceType   InvoiceType `json:"invoice_type"`
	PartyID       uuid.UUID   `json:"party_id"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceType:     inv.Type,
		PartyID:         inv.PartyID,
	}
}

// InvoiceConfirmedEvent is raised when an invoice is confirmed and its stock
// and ledger effects have been committed
type InvoiceConfirmedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceType   InvoiceType     `json:"invoice_type"`
	PartyID       uuid.UUID       `json:"party_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
}

// NewInvoiceConfirmedEvent creates a new InvoiceConfirmedEvent
func NewInvoiceConfirmedEvent(inv *Invoice) *InvoiceConfirmedEvent {
	return &InvoiceConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceConfirmed, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceType:     inv.Type,
		PartyID:         inv.PartyID,
		GrandTotal:      inv.GrandTotal,
		TaxTotal:        inv.TaxTotal,
	}
}

// InvoicePaidEvent is raised when an invoice is marked fully paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		GrandTotal:      inv.GrandTotal,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled.
// WasConfirmed indicates whether stock and ledger reversal took place.
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reason        string    `json:"reason"`
	WasConfirmed  bool      `json:"was_confirmed"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, wasConfirmed bool) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          inv.CancelReason,
		WasConfirmed:    wasConfirmed,
	}
}

// InvoiceReturnCreatedEvent is raised when a return invoice is created
// against an original invoice
type InvoiceReturnCreatedEvent struct {
	shared.BaseDomainEvent
	ReturnInvoiceID   uuid.UUID   `json:"return_invoice_id"`
	OriginalInvoiceID uuid.UUID   `json:"original_invoice_id"`
	InvoiceType       InvoiceType `json:"invoice_type"`
}

// NewInvoiceReturnCreatedEvent creates a new InvoiceReturnCreatedEvent
func NewInvoiceReturnCreatedEvent(ret *Invoice, originalID uuid.UUID) *InvoiceReturnCreatedEvent {
	return &InvoiceReturnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceReturnCreated, AggregateTypeInvoice, ret.ID),
		ReturnInvoiceID: ret.ID,
		OriginalInvoiceID: originalID,
		InvoiceType:     ret.Type,
	}
}
