package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, invoiceType InvoiceType) *Invoice {
	t.Helper()
	inv, err := NewInvoice("INV-0001", invoiceType, uuid.New(), uuid.New(), uuid.New(), "Test Party", time.Now())
	require.NoError(t, err)
	return inv
}

func TestLineCalculator(t *testing.T) {
	ctx := context.Background()
	calc := NewLineCalculator(NewTaxCalculator(newTestTaxSource()))

	t.Run("Full pipeline with discounts and GST", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		line := newTestLine(t, 10, 100)
		require.NoError(t, line.SetDiscounts(decimal.NewFromInt(10), decimal.NewFromInt(5)))
		line.TaxCodes = TaxCodeList{"GST-18"}
		require.NoError(t, inv.SetClaimAccount(uuid.New()))
		require.NoError(t, inv.AddLine(line))

		result, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.NoError(t, err)

		require.Len(t, result.Lines, 1)
		computed := result.Lines[0]
		// 1000 -> 900 -> 855, GST 18% = 153.9
		assert.True(t, computed.GrossAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, computed.DiscountAmount.Equal(decimal.NewFromInt(145)))
		assert.True(t, computed.TaxableAmount.Equal(decimal.NewFromInt(855)))
		assert.True(t, computed.TaxAmount.Equal(decimal.NewFromFloat(153.9)))
		assert.True(t, computed.LineTotal.Equal(decimal.NewFromFloat(1008.9)))

		assert.True(t, result.Totals.Subtotal.Equal(decimal.NewFromInt(1000)))
		assert.True(t, result.Totals.DiscountTotal.Equal(decimal.NewFromInt(145)))
		assert.True(t, result.Totals.TaxTotal.Equal(decimal.NewFromFloat(153.9)))
		assert.True(t, result.Totals.GrandTotal.Equal(decimal.NewFromFloat(1008.9)))
	})

	t.Run("Scheme units are excluded from revenue", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		line := newTestLine(t, 13, 100)
		require.NoError(t, line.SetSchemeQuantities(decimal.NewFromInt(1), decimal.Zero))
		require.NoError(t, inv.AddLine(line))

		result, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.NoError(t, err)

		// 12 billable units, 1 free
		assert.True(t, result.Lines[0].BillableQuantity.Equal(decimal.NewFromInt(12)))
		assert.True(t, result.Lines[0].GrossAmount.Equal(decimal.NewFromInt(1200)))
		assert.True(t, result.Totals.GrandTotal.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("Scheme2 value accumulates into totals", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		require.NoError(t, inv.SetClaimAccount(uuid.New()))
		line := newTestLine(t, 10, 100)
		require.NoError(t, line.SetSchemeQuantities(decimal.Zero, decimal.NewFromInt(2)))
		require.NoError(t, inv.AddLine(line))

		result, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.NoError(t, err)

		assert.True(t, result.Lines[0].BillableQuantity.Equal(decimal.NewFromInt(8)))
		assert.True(t, result.Totals.Scheme2Total.Equal(decimal.NewFromInt(200)))
	})

	t.Run("Multiple lines accumulate totals", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		first := newTestLine(t, 10, 100)
		first.TaxCodes = TaxCodeList{"GST-18"}
		second := newTestLine(t, 5, 200)
		require.NoError(t, inv.AddLine(first))
		require.NoError(t, inv.AddLine(second))

		result, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.NoError(t, err)

		require.Len(t, result.Lines, 2)
		assert.True(t, result.Totals.Subtotal.Equal(decimal.NewFromInt(2000)))
		assert.True(t, result.Totals.TaxTotal.Equal(decimal.NewFromInt(180)))
		assert.True(t, result.Totals.GrandTotal.Equal(decimal.NewFromInt(2180)))
	})

	t.Run("Non-filer profile adds surcharge per line", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		line := newTestLine(t, 10, 100)
		require.NoError(t, inv.AddLine(line))

		result, err := calc.Calculate(ctx, inv, TaxProfile{NonFiler: true})
		require.NoError(t, err)

		assert.True(t, result.Totals.TaxTotal.Equal(decimal.NewFromInt(1)))
		assert.True(t, result.Totals.GrandTotal.Equal(decimal.NewFromInt(1001)))
	})

	t.Run("Discount2 without claim account fails", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		line := newTestLine(t, 10, 100)
		require.NoError(t, line.SetDiscounts(decimal.Zero, decimal.NewFromInt(5)))
		require.NoError(t, inv.AddLine(line))

		_, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.Error(t, err)

		var claimErr *ClaimAccountRequiredError
		assert.ErrorAs(t, err, &claimErr)
	})

	t.Run("Unknown tax code surfaces with line context", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		line := newTestLine(t, 10, 100)
		line.TaxCodes = TaxCodeList{"MISSING"}
		require.NoError(t, inv.AddLine(line))

		_, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.Error(t, err)

		var notFound *TaxConfigNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestInvoiceComputationApply(t *testing.T) {
	ctx := context.Background()
	calc := NewLineCalculator(NewTaxCalculator(newTestTaxSource()))

	t.Run("Apply writes computed fields back to lines", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		line := newTestLine(t, 10, 100)
		require.NoError(t, line.SetDiscounts(decimal.NewFromInt(10), decimal.Zero))
		line.TaxCodes = TaxCodeList{"GST-18"}
		require.NoError(t, inv.AddLine(line))

		result, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.NoError(t, err)
		require.NoError(t, result.Apply(inv))

		applied := &inv.Lines[0]
		assert.True(t, applied.BillableQuantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, applied.DiscountAmount.Equal(decimal.NewFromInt(100)))
		assert.True(t, applied.TaxableAmount.Equal(decimal.NewFromInt(900)))
		assert.True(t, applied.TaxAmount.Equal(decimal.NewFromInt(162)))
		assert.True(t, applied.LineTotal.Equal(decimal.NewFromInt(1062)))
	})

	t.Run("Apply rejects mismatched line sets", func(t *testing.T) {
		inv := newTestInvoice(t, InvoiceTypeSales)
		require.NoError(t, inv.AddLine(newTestLine(t, 10, 100)))

		result, err := calc.Calculate(ctx, inv, TaxProfile{})
		require.NoError(t, err)

		other := newTestInvoice(t, InvoiceTypeSales)
		require.NoError(t, other.AddLine(newTestLine(t, 10, 100)))
		require.NoError(t, other.AddLine(newTestLine(t, 5, 100)))

		assert.Error(t, result.Apply(other))
	})
}
