package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// UnbalancedPostingError indicates the debit and credit sums of a posting
// diverge. This is a programming error, never a user-facing condition; the
// posting is aborted rather than truncated.
type UnbalancedPostingError struct {
	ReferenceID uuid.UUID
	DebitSum    decimal.Decimal
	CreditSum   decimal.Decimal
}

func (e *UnbalancedPostingError) Error() string {
	return fmt.Sprintf("unbalanced posting for reference %s: debits %s != credits %s",
		e.ReferenceID, e.DebitSum, e.CreditSum)
}

// ErrorCode returns the stable error code
func (e *UnbalancedPostingError) ErrorCode() string {
	return "UNBALANCED_POSTING"
}

var _ shared.CodedError = (*UnbalancedPostingError)(nil)

// Posting is a set of ledger entries that commit together or not at all.
// Validate must pass before any entry is persisted.
type Posting struct {
	ReferenceType string
	ReferenceID   uuid.UUID
	EntryDate     time.Time
	entries       []LedgerEntry
}

// NewPosting creates an empty posting for a reference document
func NewPosting(referenceType string, referenceID uuid.UUID, entryDate time.Time) *Posting {
	return &Posting{
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		EntryDate:     entryDate,
		entries:       make([]LedgerEntry, 0, 4),
	}
}

// Debit adds a debit entry to the posting
func (p *Posting) Debit(accountID uuid.UUID, amount decimal.Decimal, description string) error {
	if amount.IsZero() {
		return nil // zero legs are omitted, not posted
	}
	entry, err := NewDebit(accountID, amount, p.ReferenceType, p.ReferenceID, p.EntryDate, description)
	if err != nil {
		return err
	}
	p.entries = append(p.entries, *entry)
	return nil
}

// Credit adds a credit entry to the posting
func (p *Posting) Credit(accountID uuid.UUID, amount decimal.Decimal, description string) error {
	if amount.IsZero() {
		return nil
	}
	entry, err := NewCredit(accountID, amount, p.ReferenceType, p.ReferenceID, p.EntryDate, description)
	if err != nil {
		return err
	}
	p.entries = append(p.entries, *entry)
	return nil
}

// Entries returns the posting's entries
func (p *Posting) Entries() []LedgerEntry {
	return p.entries
}

// DebitSum returns the sum of all debit amounts
func (p *Posting) DebitSum() decimal.Decimal {
	sum := decimal.Zero
	for idx := range p.entries {
		sum = sum.Add(p.entries[idx].Debit)
	}
	return sum
}

// CreditSum returns the sum of all credit amounts
func (p *Posting) CreditSum() decimal.Decimal {
	sum := decimal.Zero
	for idx := range p.entries {
		sum = sum.Add(p.entries[idx].Credit)
	}
	return sum
}

// Validate checks the double-entry invariant
func (p *Posting) Validate() error {
	if len(p.entries) == 0 {
		return shared.NewDomainError("EMPTY_POSTING", "Posting has no entries")
	}
	debits := p.DebitSum()
	credits := p.CreditSum()
	if !debits.Equal(credits) {
		return &UnbalancedPostingError{
			ReferenceID: p.ReferenceID,
			DebitSum:    debits,
			CreditSum:   credits,
		}
	}
	return nil
}

// PostingAmounts are the computed invoice totals a posting is built from
type PostingAmounts struct {
	// GrandTotal is the receivable/payable amount
	GrandTotal decimal.Decimal
	// NetSubtotal is the revenue/inventory amount: the net taxable total,
	// which under inclusive pricing excludes the carved-out tax
	NetSubtotal decimal.Decimal
	// TaxTotal is the total tax and surcharges
	TaxTotal decimal.Decimal
}

// Poster builds balanced postings against the chart of accounts
type Poster struct{}

// NewPoster creates a new Poster
func NewPoster() *Poster {
	return &Poster{}
}

// BuildSalesPosting posts a sales confirmation:
// debit the customer's receivable account for the grand total, credit
// revenue for the net subtotal and tax payable for the tax total.
func (p *Poster) BuildSalesPosting(invoiceID, receivableAccountID uuid.UUID, control ControlAccounts, amounts PostingAmounts, entryDate time.Time, memo string) (*Posting, error) {
	posting := NewPosting(ReferenceTypeInvoice, invoiceID, entryDate)
	if err := posting.Debit(receivableAccountID, amounts.GrandTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Credit(control.Revenue.ID, amounts.NetSubtotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Credit(control.TaxPayable.ID, amounts.TaxTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Validate(); err != nil {
		return nil, err
	}
	return posting, nil
}

// BuildPurchasePosting posts a purchase confirmation:
// debit inventory for the net subtotal and tax input for the tax total,
// credit the supplier's payable account for the grand total.
func (p *Poster) BuildPurchasePosting(invoiceID, payableAccountID uuid.UUID, control ControlAccounts, amounts PostingAmounts, entryDate time.Time, memo string) (*Posting, error) {
	posting := NewPosting(ReferenceTypeInvoice, invoiceID, entryDate)
	if err := posting.Debit(control.Inventory.ID, amounts.NetSubtotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Debit(control.TaxInput.ID, amounts.TaxTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Credit(payableAccountID, amounts.GrandTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Validate(); err != nil {
		return nil, err
	}
	return posting, nil
}

// BuildReturnSalesPosting mirrors a sales posting for a sales return:
// credit the customer's receivable, debit revenue and tax payable.
func (p *Poster) BuildReturnSalesPosting(invoiceID, receivableAccountID uuid.UUID, control ControlAccounts, amounts PostingAmounts, entryDate time.Time, memo string) (*Posting, error) {
	posting := NewPosting(ReferenceTypeInvoice, invoiceID, entryDate)
	if err := posting.Credit(receivableAccountID, amounts.GrandTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Debit(control.Revenue.ID, amounts.NetSubtotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Debit(control.TaxPayable.ID, amounts.TaxTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Validate(); err != nil {
		return nil, err
	}
	return posting, nil
}

// BuildReturnPurchasePosting mirrors a purchase posting for a purchase
// return: debit the supplier's payable, credit inventory and tax input.
func (p *Poster) BuildReturnPurchasePosting(invoiceID, payableAccountID uuid.UUID, control ControlAccounts, amounts PostingAmounts, entryDate time.Time, memo string) (*Posting, error) {
	posting := NewPosting(ReferenceTypeInvoice, invoiceID, entryDate)
	if err := posting.Debit(payableAccountID, amounts.GrandTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Credit(control.Inventory.ID, amounts.NetSubtotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Credit(control.TaxInput.ID, amounts.TaxTotal, memo); err != nil {
		return nil, err
	}
	if err := posting.Validate(); err != nil {
		return nil, err
	}
	return posting, nil
}

// BuildClaimPosting posts the scheme2 promotional offset: debit the claim
// account and credit the customer/supplier account for the scheme2 value.
func (p *Poster) BuildClaimPosting(invoiceID, claimAccountID, partyAccountID uuid.UUID, value decimal.Decimal, entryDate time.Time, memo string) (*Posting, error) {
	posting := NewPosting(ReferenceTypeInvoice, invoiceID, entryDate)
	if err := posting.Debit(claimAccountID, value, memo); err != nil {
		return nil, err
	}
	if err := posting.Credit(partyAccountID, value, memo); err != nil {
		return nil, err
	}
	if err := posting.Validate(); err != nil {
		return nil, err
	}
	return posting, nil
}

// BuildReversal creates the exact inverse of previously committed entries:
// debit/credit roles swapped, absolute values preserved. The original
// recorded entries are the source of truth, so the reversal nets to zero
// even if rates changed since the original posting.
func (p *Poster) BuildReversal(entries []LedgerEntry, entryDate time.Time, memo string) (*Posting, error) {
	if len(entries) == 0 {
		return nil, shared.NewDomainError("EMPTY_POSTING", "No entries to reverse")
	}
	posting := NewPosting(ReferenceTypeReversal, entries[0].ReferenceID, entryDate)
	for idx := range entries {
		posting.entries = append(posting.entries, *entries[idx].Reversed(entryDate, memo))
	}
	if err := posting.Validate(); err != nil {
		return nil, err
	}
	return posting, nil
}
