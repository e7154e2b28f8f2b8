package billing

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxType classifies a tax configuration
type TaxType string

const (
	TaxTypeGST      TaxType = "GST"
	TaxTypeWHT      TaxType = "WHT"
	TaxTypeSalesTax TaxType = "SALES_TAX"
	TaxTypeCustom   TaxType = "CUSTOM"
)

// IsValid checks if the tax type is valid
func (t TaxType) IsValid() bool {
	switch t {
	case TaxTypeGST, TaxTypeWHT, TaxTypeSalesTax, TaxTypeCustom:
		return true
	}
	return false
}

// String returns the string representation of TaxType
func (t TaxType) String() string {
	return string(t)
}

// NonFilerSurchargeRate is the flat surcharge applied to non-filer parties
// on top of any GST/WHT, computed on the same taxable base
var NonFilerSurchargeRate = decimal.NewFromFloat(0.001)

// TaxConfig is a resolved tax configuration. Rates are decimal fractions
// (0.18 means 18%).
type TaxConfig struct {
	Code             string
	Name             string
	Rate             decimal.Decimal
	Type             TaxType
	CompoundTax      bool
	InclusivePricing bool
	IsActive         bool
}

// TaxCodeList is an ordered list of tax codes referenced by an invoice line.
// It persists as a comma-separated text column.
type TaxCodeList []string

// Value implements driver.Valuer
func (l TaxCodeList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner
func (l *TaxCodeList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TaxCodeList", value)
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}

// TaxProfile carries the party-level attributes that influence tax
// computation
type TaxProfile struct {
	NonFiler       bool
	AdvanceTaxRate decimal.Decimal // 0 when not an advance-tax party; typically 0.005 or 0.025
}

// TaxConfigSource resolves tax configurations by code. The production
// implementation reads through an explicit TTL cache; tests supply a stub.
type TaxConfigSource interface {
	FindByCode(ctx context.Context, code string) (*TaxConfig, error)
}

// TaxComponent is a single applied tax within a breakdown
type TaxComponent struct {
	Code   string          `json:"code"`
	Type   TaxType         `json:"type"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// TaxBreakdown is the result of computing all taxes for one taxable amount
type TaxBreakdown struct {
	// NetTaxable is the taxable amount net of inclusive taxes. For purely
	// exclusive pricing it equals the input amount.
	NetTaxable decimal.Decimal `json:"net_taxable"`
	Components []TaxComponent  `json:"components"`
	// NonFilerSurcharge is the flat non-filer surcharge, zero for filers
	NonFilerSurcharge decimal.Decimal `json:"non_filer_surcharge"`
	// AdvanceTaxSurcharge is the advance-tax surcharge, zero when not configured
	AdvanceTaxSurcharge decimal.Decimal `json:"advance_tax_surcharge"`
	// TotalTax is the sum of all components and surcharges
	TotalTax decimal.Decimal `json:"total_tax"`
}

// hasWithholdingBase reports whether the breakdown contains a GST or WHT
// component. The non-filer surcharge rides on those taxes only; a line taxed
// purely under sales tax or a custom levy carries no surcharge.
func (b *TaxBreakdown) hasWithholdingBase() bool {
	for _, component := range b.Components {
		if component.Type == TaxTypeGST || component.Type == TaxTypeWHT {
			return true
		}
	}
	return false
}

// TaxCalculator computes per-line taxes from resolved tax configurations.
// It is stateless; the config source is passed in at construction so caching
// is explicit rather than ambient.
type TaxCalculator struct {
	configs TaxConfigSource
}

// NewTaxCalculator creates a new TaxCalculator
func NewTaxCalculator(configs TaxConfigSource) *TaxCalculator {
	return &TaxCalculator{configs: configs}
}

// Calculate computes the taxes for a post-discount taxable amount.
//
// For exclusive pricing each tax is amount * rate. For inclusive pricing the
// given amount is treated as gross: taxable = gross / (1 + rate) and
// tax = gross - taxable. Taxes apply additively unless a config sets
// CompoundTax, in which case the component is computed on
// taxable + previously applied taxes.
//
// Non-filer and advance-tax surcharges are computed independently on the
// same net taxable base and added to the total. The non-filer surcharge
// applies only when the line carries a GST or WHT component.
func (c *TaxCalculator) Calculate(ctx context.Context, taxable decimal.Decimal, codes []string, profile TaxProfile) (*TaxBreakdown, error) {
	breakdown := &TaxBreakdown{
		NetTaxable:          taxable,
		Components:          make([]TaxComponent, 0, len(codes)),
		NonFilerSurcharge:   decimal.Zero,
		AdvanceTaxSurcharge: decimal.Zero,
		TotalTax:            decimal.Zero,
	}

	one := decimal.NewFromInt(1)
	applied := decimal.Zero

	for _, code := range codes {
		cfg, err := c.configs.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if cfg == nil || !cfg.IsActive {
			return nil, &TaxConfigNotFoundError{Code: code}
		}

		base := breakdown.NetTaxable
		if cfg.CompoundTax {
			base = base.Add(applied)
		}

		var tax decimal.Decimal
		if cfg.InclusivePricing {
			// The base already contains the tax; carve it out
			net := base.Div(one.Add(cfg.Rate)).Round(4)
			tax = base.Sub(net)
			breakdown.NetTaxable = breakdown.NetTaxable.Sub(tax)
		} else {
			tax = base.Mul(cfg.Rate)
		}

		applied = applied.Add(tax)
		breakdown.Components = append(breakdown.Components, TaxComponent{
			Code:   cfg.Code,
			Type:   cfg.Type,
			Rate:   cfg.Rate,
			Amount: tax,
		})
	}

	if profile.NonFiler && breakdown.hasWithholdingBase() {
		breakdown.NonFilerSurcharge = breakdown.NetTaxable.Mul(NonFilerSurchargeRate)
	}
	if profile.AdvanceTaxRate.GreaterThan(decimal.Zero) {
		breakdown.AdvanceTaxSurcharge = breakdown.NetTaxable.Mul(profile.AdvanceTaxRate)
	}

	breakdown.TotalTax = applied.
		Add(breakdown.NonFilerSurcharge).
		Add(breakdown.AdvanceTaxSurcharge)

	return breakdown, nil
}
