package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/ledger"
)

// AccountModel is the persistence model for ledger accounts.
type AccountModel struct {
	BaseModel
	Code     string             `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name     string             `gorm:"type:varchar(200);not null"`
	Type     ledger.AccountType `gorm:"type:varchar(20);not null"`
	Balance  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	IsActive bool               `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Type:       m.Type,
		Balance:    m.Balance,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.Balance = a.Balance
	m.IsActive = a.IsActive
}

// LedgerEntryModel is the persistence model for ledger entries.
// Rows are append only; reversals add mirrored rows rather than mutating.
type LedgerEntryModel struct {
	BaseModel
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType string          `gorm:"type:varchar(30);not null;index:idx_entries_reference,priority:1"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_entries_reference,priority:2"`
	EntryDate     time.Time       `gorm:"not null;index"`
	Description   string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry.
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	return &ledger.LedgerEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		AccountID:     m.AccountID,
		Debit:         m.Debit,
		Credit:        m.Credit,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		EntryDate:     m.EntryDate,
		Description:   m.Description,
	}
}

// FromDomain populates the persistence model from a domain LedgerEntry.
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.AccountID = e.AccountID
	m.Debit = e.Debit
	m.Credit = e.Credit
	m.ReferenceType = e.ReferenceType
	m.ReferenceID = e.ReferenceID
	m.EntryDate = e.EntryDate
	m.Description = e.Description
}
