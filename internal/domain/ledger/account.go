package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// AccountType classifies an account in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
	AccountTypeClaim     AccountType = "CLAIM"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense, AccountTypeClaim:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// IsDebitNormal returns true for account types whose balance increases with
// debits (assets, expenses and claim accounts)
func (t AccountType) IsDebitNormal() bool {
	switch t {
	case AccountTypeAsset, AccountTypeExpense, AccountTypeClaim:
		return true
	}
	return false
}

// Well-known control account codes resolved by the poster
const (
	AccountCodeRevenue    = "REV"
	AccountCodeTaxPayable = "TAX-PAY"
	AccountCodeTaxInput   = "TAX-IN"
	AccountCodeInventory  = "INV"
)

// Account is a ledger account. Its balance is mutated only by applying
// ledger entries inside a posting transaction, never directly by callers.
type Account struct {
	shared.BaseEntity
	Code     string
	Name     string
	Type     AccountType
	Balance  decimal.Decimal
	IsActive bool
}

// NewAccount creates a new active account with zero balance
func NewAccount(code, name string, accountType AccountType) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Unknown account type")
	}

	return &Account{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Type:       accountType,
		Balance:    decimal.Zero,
		IsActive:   true,
	}, nil
}

// ApplyEntry moves the balance according to the account's normal side:
// debit-normal balances rise with debits, credit-normal with credits
func (a *Account) ApplyEntry(debit, credit decimal.Decimal) {
	delta := debit.Sub(credit)
	if !a.Type.IsDebitNormal() {
		delta = delta.Neg()
	}
	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = time.Now()
}

// Deactivate marks the account inactive; inactive accounts reject new postings
func (a *Account) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now()
}

// ControlAccounts holds the resolved control accounts the poster needs for
// one posting transaction
type ControlAccounts struct {
	Revenue    *Account
	TaxPayable *Account
	TaxInput   *Account
	Inventory  *Account
}
