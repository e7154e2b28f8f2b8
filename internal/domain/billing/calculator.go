package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceTotals are the header-level amounts recorded on confirmation
type InvoiceTotals struct {
	// Subtotal is the gross billable amount before discounts
	Subtotal decimal.Decimal `json:"subtotal"`
	// DiscountTotal is the combined discount1 + discount2 amount
	DiscountTotal decimal.Decimal `json:"discount_total"`
	// TaxableTotal is the net taxable amount across all lines. Under
	// inclusive pricing it is smaller than Subtotal - DiscountTotal
	// because the tax is carved out of the quoted price.
	TaxableTotal decimal.Decimal `json:"taxable_total"`
	// TaxTotal is all taxes and surcharges
	TaxTotal decimal.Decimal `json:"tax_total"`
	// GrandTotal is the receivable/payable amount
	GrandTotal decimal.Decimal `json:"grand_total"`
	// Scheme2Total is the claim value of all scheme2 units
	Scheme2Total decimal.Decimal `json:"scheme2_total"`
}

// ComputedLine is the result of running the calculation pipeline for one line
type ComputedLine struct {
	LineID           uuid.UUID       `json:"line_id"`
	ItemID           uuid.UUID       `json:"item_id"`
	BillableQuantity decimal.Decimal `json:"billable_quantity"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	Discount2Amount  decimal.Decimal `json:"discount2_amount"`
	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Scheme2Value     decimal.Decimal `json:"scheme2_value"`
	Tax              *TaxBreakdown   `json:"tax"`
}

// InvoiceComputation is the full result of the line calculation pipeline.
// It is pure output; applying it to the aggregate is a separate step.
type InvoiceComputation struct {
	Lines  []ComputedLine `json:"lines"`
	Totals InvoiceTotals  `json:"totals"`
}

// LineCalculator runs the Tax -> Discount -> Scheme pipeline over invoice
// lines. It performs no persistence; confirmation applies its output inside
// the posting transaction, and previews discard it.
type LineCalculator struct {
	tax      *TaxCalculator
	discount *DiscountCalculator
	scheme   *SchemeTracker
}

// NewLineCalculator creates a new LineCalculator
func NewLineCalculator(tax *TaxCalculator) *LineCalculator {
	return &LineCalculator{
		tax:      tax,
		discount: NewDiscountCalculator(),
		scheme:   NewSchemeTracker(),
	}
}

// Calculate computes every line of the invoice and the header totals.
// Revenue is computed on billable quantity only; scheme units are priced at
// zero but still appear in TotalStockQuantity for allocation.
func (c *LineCalculator) Calculate(ctx context.Context, inv *Invoice, profile TaxProfile) (*InvoiceComputation, error) {
	result := &InvoiceComputation{
		Lines: make([]ComputedLine, 0, len(inv.Lines)),
		Totals: InvoiceTotals{
			Subtotal:      decimal.Zero,
			DiscountTotal: decimal.Zero,
			TaxableTotal:  decimal.Zero,
			TaxTotal:      decimal.Zero,
			GrandTotal:    decimal.Zero,
			Scheme2Total:  decimal.Zero,
		},
	}

	totalDiscount2 := decimal.Zero

	for idx := range inv.Lines {
		line := &inv.Lines[idx]

		split, err := c.scheme.Split(line)
		if err != nil {
			return nil, err
		}

		gross := split.BillableQuantity.Mul(line.UnitPrice)
		discounts := c.discount.Apply(gross, line.Discount1Percent, line.Discount2Percent)

		tax, err := c.tax.Calculate(ctx, discounts.AfterDiscount2, line.TaxCodes, profile)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", idx, err)
		}

		computed := ComputedLine{
			LineID:           line.ID,
			ItemID:           line.ItemID,
			BillableQuantity: split.BillableQuantity,
			GrossAmount:      gross,
			DiscountAmount:   discounts.TotalDiscount,
			Discount2Amount:  discounts.Discount2Amount,
			TaxableAmount:    tax.NetTaxable,
			TaxAmount:        tax.TotalTax,
			LineTotal:        tax.NetTaxable.Add(tax.TotalTax),
			Scheme2Value:     split.Scheme2Value,
			Tax:              tax,
		}
		result.Lines = append(result.Lines, computed)

		result.Totals.Subtotal = result.Totals.Subtotal.Add(gross)
		result.Totals.DiscountTotal = result.Totals.DiscountTotal.Add(discounts.TotalDiscount)
		result.Totals.TaxableTotal = result.Totals.TaxableTotal.Add(tax.NetTaxable)
		result.Totals.TaxTotal = result.Totals.TaxTotal.Add(tax.TotalTax)
		result.Totals.GrandTotal = result.Totals.GrandTotal.Add(computed.LineTotal)
		result.Totals.Scheme2Total = result.Totals.Scheme2Total.Add(split.Scheme2Value)
		totalDiscount2 = totalDiscount2.Add(discounts.Discount2Amount)
	}

	if err := c.discount.RequireClaimAccount(totalDiscount2, inv.ClaimAccountID != nil); err != nil {
		return nil, err
	}

	return result, nil
}

// Apply writes the computed fields back onto the invoice lines.
// Called inside the posting transaction, after all validations pass.
func (comp *InvoiceComputation) Apply(inv *Invoice) error {
	if len(comp.Lines) != len(inv.Lines) {
		return fmt.Errorf("computation covers %d lines but invoice has %d", len(comp.Lines), len(inv.Lines))
	}
	for idx := range inv.Lines {
		line := &inv.Lines[idx]
		computed := &comp.Lines[idx]
		if line.ID != computed.LineID {
			return fmt.Errorf("computation line %d does not match invoice line %s", idx, line.ID)
		}
		line.BillableQuantity = computed.BillableQuantity
		line.DiscountAmount = computed.DiscountAmount
		line.TaxableAmount = computed.TaxableAmount
		line.TaxAmount = computed.TaxAmount
		line.LineTotal = computed.LineTotal
	}
	return nil
}
