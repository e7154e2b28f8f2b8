package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/billing"
)

// InvoiceLineRequest is a line on a draft invoice creation request
type InvoiceLineRequest struct {
	ItemID           uuid.UUID       `json:"item_id"`
	ItemName         string          `json:"item_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Discount1Percent decimal.Decimal `json:"discount1_percent"`
	Discount2Percent decimal.Decimal `json:"discount2_percent"`
	Scheme1Quantity  decimal.Decimal `json:"scheme1_quantity"`
	Scheme2Quantity  decimal.Decimal `json:"scheme2_quantity"`
	TaxCodes         []string        `json:"tax_codes"`

	// Batch metadata, required on purchase lines
	BatchNumber       string          `json:"batch_number"`
	ManufacturingDate *time.Time      `json:"manufacturing_date"`
	ExpiryDate        *time.Time      `json:"expiry_date"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
}

// CreateInvoiceRequest creates a draft invoice with its lines
type CreateInvoiceRequest struct {
	Type           billing.InvoiceType  `json:"type"`
	PartyID        uuid.UUID            `json:"party_id"`
	WarehouseID    uuid.UUID            `json:"warehouse_id"`
	ClaimAccountID *uuid.UUID           `json:"claim_account_id"`
	InvoiceDate    *time.Time           `json:"invoice_date"`
	DueDate        *time.Time           `json:"due_date"`
	Lines          []InvoiceLineRequest `json:"lines"`
}

// ReturnLineRequest requests a quantity of an original line to return
type ReturnLineRequest struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateReturnRequest creates a draft return invoice against a confirmed or
// paid original
type CreateReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines"`
}

// InvoiceListFilter filters invoice listings
type InvoiceListFilter struct {
	Status   string `json:"status"`
	Type     string `json:"type"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// InvoiceLineResponse is an invoice line in API responses
type InvoiceLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ItemID           uuid.UUID       `json:"item_id"`
	ItemName         string          `json:"item_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Discount1Percent decimal.Decimal `json:"discount1_percent"`
	Discount2Percent decimal.Decimal `json:"discount2_percent"`
	Scheme1Quantity  decimal.Decimal `json:"scheme1_quantity"`
	Scheme2Quantity  decimal.Decimal `json:"scheme2_quantity"`
	TaxCodes         []string        `json:"tax_codes"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	BillableQuantity decimal.Decimal `json:"billable_quantity"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the full invoice view returned by the service
type InvoiceResponse struct {
	ID                uuid.UUID             `json:"id"`
	InvoiceNumber     string                `json:"invoice_number"`
	Type              billing.InvoiceType   `json:"type"`
	Status            billing.InvoiceStatus `json:"status"`
	PaymentStatus     billing.PaymentStatus `json:"payment_status"`
	PartyID           uuid.UUID             `json:"party_id"`
	PartyName         string                `json:"party_name"`
	WarehouseID       uuid.UUID             `json:"warehouse_id"`
	ClaimAccountID    *uuid.UUID            `json:"claim_account_id,omitempty"`
	OriginalInvoiceID *uuid.UUID            `json:"original_invoice_id,omitempty"`
	InvoiceDate       time.Time             `json:"invoice_date"`
	DueDate           *time.Time            `json:"due_date,omitempty"`
	Lines             []InvoiceLineResponse `json:"lines"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	DiscountTotal     decimal.Decimal       `json:"discount_total"`
	TaxTotal          decimal.Decimal       `json:"tax_total"`
	GrandTotal        decimal.Decimal       `json:"grand_total"`
	Scheme2Total      decimal.Decimal       `json:"scheme2_total"`
	ConfirmedAt       *time.Time            `json:"confirmed_at,omitempty"`
	PaidAt            *time.Time            `json:"paid_at,omitempty"`
	CancelledAt       *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason      string                `json:"cancel_reason,omitempty"`
	Version           int                   `json:"version"`
}

// ToInvoiceLineResponse converts a domain line to its response form
func ToInvoiceLineResponse(line *billing.InvoiceLine) InvoiceLineResponse {
	return InvoiceLineResponse{
		ID:               line.ID,
		ItemID:           line.ItemID,
		ItemName:         line.ItemName,
		Quantity:         line.Quantity,
		UnitPrice:        line.UnitPrice,
		Discount1Percent: line.Discount1Percent,
		Discount2Percent: line.Discount2Percent,
		Scheme1Quantity:  line.Scheme1Quantity,
		Scheme2Quantity:  line.Scheme2Quantity,
		TaxCodes:         line.TaxCodes,
		BatchNumber:      line.BatchNumber,
		BillableQuantity: line.BillableQuantity,
		DiscountAmount:   line.DiscountAmount,
		TaxableAmount:    line.TaxableAmount,
		TaxAmount:        line.TaxAmount,
		LineTotal:        line.LineTotal,
	}
}

// ToInvoiceResponse converts a domain invoice to its response form
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for idx := range inv.Lines {
		lines = append(lines, ToInvoiceLineResponse(&inv.Lines[idx]))
	}

	return InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		Type:              inv.Type,
		Status:            inv.Status,
		PaymentStatus:     inv.PaymentStatus,
		PartyID:           inv.PartyID,
		PartyName:         inv.PartyName,
		WarehouseID:       inv.WarehouseID,
		ClaimAccountID:    inv.ClaimAccountID,
		OriginalInvoiceID: inv.OriginalInvoiceID,
		InvoiceDate:       inv.InvoiceDate,
		DueDate:           inv.DueDate,
		Lines:             lines,
		Subtotal:          inv.Subtotal,
		DiscountTotal:     inv.DiscountTotal,
		TaxTotal:          inv.TaxTotal,
		GrandTotal:        inv.GrandTotal,
		Scheme2Total:      inv.Scheme2Total,
		ConfirmedAt:       inv.ConfirmedAt,
		PaidAt:            inv.PaidAt,
		CancelledAt:       inv.CancelledAt,
		CancelReason:      inv.CancelReason,
		Version:           inv.Version,
	}
}

// LineTotalsResponse is the result of a pure calculation preview. Nothing is
// persisted; the figures match what a confirm would record.
type LineTotalsResponse struct {
	Lines  []billing.ComputedLine `json:"lines"`
	Totals billing.InvoiceTotals  `json:"totals"`
}
