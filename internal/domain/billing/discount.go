package billing

import (
	"github.com/shopspring/decimal"
)

// DiscountResult holds the outcome of sequential two-tier discount
// application on a line subtotal
type DiscountResult struct {
	AfterDiscount1 decimal.Decimal `json:"after_discount1"`
	AfterDiscount2 decimal.Decimal `json:"after_discount2"`
	// Discount1Amount is subtotal - afterDiscount1
	Discount1Amount decimal.Decimal `json:"discount1_amount"`
	// Discount2Amount is afterDiscount1 - afterDiscount2
	Discount2Amount decimal.Decimal `json:"discount2_amount"`
	// TotalDiscount is subtotal - afterDiscount2
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

// DiscountCalculator applies the two-tier discount scheme. Discount2 applies
// to the already-discounted remainder, not the original subtotal.
type DiscountCalculator struct{}

// NewDiscountCalculator creates a new DiscountCalculator
func NewDiscountCalculator() *DiscountCalculator {
	return &DiscountCalculator{}
}

// Apply computes afterD1 = subtotal * (1 - d1/100) and
// afterD2 = afterD1 * (1 - d2/100)
func (c *DiscountCalculator) Apply(subtotal, discount1Percent, discount2Percent decimal.Decimal) DiscountResult {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	afterD1 := subtotal.Mul(one.Sub(discount1Percent.Div(hundred)))
	afterD2 := afterD1.Mul(one.Sub(discount2Percent.Div(hundred)))

	return DiscountResult{
		AfterDiscount1:  afterD1,
		AfterDiscount2:  afterD2,
		Discount1Amount: subtotal.Sub(afterD1),
		Discount2Amount: afterD1.Sub(afterD2),
		TotalDiscount:   subtotal.Sub(afterD2),
	}
}

// RequireClaimAccount enforces that a non-zero total discount2 amount across
// an invoice has a claim account to absorb it
func (c *DiscountCalculator) RequireClaimAccount(totalDiscount2 decimal.Decimal, hasClaimAccount bool) error {
	if totalDiscount2.GreaterThan(decimal.Zero) && !hasClaimAccount {
		return &ClaimAccountRequiredError{Reason: "invoice carries discount2 amounts"}
	}
	return nil
}
