package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/billing"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber     string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type              billing.InvoiceType   `gorm:"type:varchar(20);not null;index"`
	Status            billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentStatus     billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PartyID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	PartyName         string                `gorm:"type:varchar(200);not null"`
	PartyAccountID    uuid.UUID             `gorm:"type:uuid;not null"`
	WarehouseID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	ClaimAccountID    *uuid.UUID            `gorm:"type:uuid"`
	OriginalInvoiceID *uuid.UUID            `gorm:"type:uuid;index"`
	InvoiceDate       time.Time             `gorm:"not null;index"`
	DueDate           *time.Time
	Subtotal          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	DiscountTotal     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TaxTotal          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	GrandTotal        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Scheme2Total      decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	ConfirmedAt       *time.Time
	PaidAt            *time.Time
	CancelledAt       *time.Time
	CancelReason      string             `gorm:"type:varchar(500)"`
	PaymentNote       string             `gorm:"type:varchar(500)"`
	Lines             []InvoiceLineModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the persistence model for an invoice line.
type InvoiceLineModel struct {
	BaseModel
	InvoiceID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	ItemID            uuid.UUID           `gorm:"type:uuid;not null;index"`
	ItemName          string              `gorm:"type:varchar(200);not null"`
	Quantity          decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	UnitPrice         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Discount1Percent  decimal.Decimal     `gorm:"type:decimal(9,4);not null"`
	Discount2Percent  decimal.Decimal     `gorm:"type:decimal(9,4);not null"`
	Scheme1Quantity   decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Scheme2Quantity   decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TaxCodes          billing.TaxCodeList `gorm:"type:text"`
	BatchNumber       string              `gorm:"type:varchar(100)"`
	ManufacturingDate *time.Time
	ExpiryDate        *time.Time
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BillableQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxableAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber:     m.InvoiceNumber,
		Type:              m.Type,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		PartyID:           m.PartyID,
		PartyName:         m.PartyName,
		PartyAccountID:    m.PartyAccountID,
		WarehouseID:       m.WarehouseID,
		ClaimAccountID:    m.ClaimAccountID,
		OriginalInvoiceID: m.OriginalInvoiceID,
		InvoiceDate:       m.InvoiceDate,
		DueDate:           m.DueDate,
		Subtotal:          m.Subtotal,
		DiscountTotal:     m.DiscountTotal,
		TaxTotal:          m.TaxTotal,
		GrandTotal:        m.GrandTotal,
		Scheme2Total:      m.Scheme2Total,
		ConfirmedAt:       m.ConfirmedAt,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		PaymentNote:       m.PaymentNote,
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	inv.Lines = make([]billing.InvoiceLine, 0, len(m.Lines))
	for i := range m.Lines {
		inv.Lines = append(inv.Lines, *m.Lines[i].ToDomain())
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.Type = inv.Type
	m.Status = inv.Status
	m.PaymentStatus = inv.PaymentStatus
	m.PartyID = inv.PartyID
	m.PartyName = inv.PartyName
	m.PartyAccountID = inv.PartyAccountID
	m.WarehouseID = inv.WarehouseID
	m.ClaimAccountID = inv.ClaimAccountID
	m.OriginalInvoiceID = inv.OriginalInvoiceID
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.Subtotal = inv.Subtotal
	m.DiscountTotal = inv.DiscountTotal
	m.TaxTotal = inv.TaxTotal
	m.GrandTotal = inv.GrandTotal
	m.Scheme2Total = inv.Scheme2Total
	m.ConfirmedAt = inv.ConfirmedAt
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
	m.PaymentNote = inv.PaymentNote
	m.Lines = make([]InvoiceLineModel, 0, len(inv.Lines))
	for i := range inv.Lines {
		var lm InvoiceLineModel
		lm.FromDomain(&inv.Lines[i])
		m.Lines = append(m.Lines, lm)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ToDomain converts the persistence model to a domain InvoiceLine.
func (m *InvoiceLineModel) ToDomain() *billing.InvoiceLine {
	return &billing.InvoiceLine{
		BaseEntity:        m.BaseModel.ToDomain(),
		InvoiceID:         m.InvoiceID,
		ItemID:            m.ItemID,
		ItemName:          m.ItemName,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		Discount1Percent:  m.Discount1Percent,
		Discount2Percent:  m.Discount2Percent,
		Scheme1Quantity:   m.Scheme1Quantity,
		Scheme2Quantity:   m.Scheme2Quantity,
		TaxCodes:          m.TaxCodes,
		BatchNumber:       m.BatchNumber,
		ManufacturingDate: m.ManufacturingDate,
		ExpiryDate:        m.ExpiryDate,
		UnitCost:          m.UnitCost,
		BillableQuantity:  m.BillableQuantity,
		DiscountAmount:    m.DiscountAmount,
		TaxableAmount:     m.TaxableAmount,
		TaxAmount:         m.TaxAmount,
		LineTotal:         m.LineTotal,
	}
}

// FromDomain populates the persistence model from a domain InvoiceLine.
func (m *InvoiceLineModel) FromDomain(line *billing.InvoiceLine) {
	m.FromDomainBaseEntity(line.BaseEntity)
	m.InvoiceID = line.InvoiceID
	m.ItemID = line.ItemID
	m.ItemName = line.ItemName
	m.Quantity = line.Quantity
	m.UnitPrice = line.UnitPrice
	m.Discount1Percent = line.Discount1Percent
	m.Discount2Percent = line.Discount2Percent
	m.Scheme1Quantity = line.Scheme1Quantity
	m.Scheme2Quantity = line.Scheme2Quantity
	m.TaxCodes = line.TaxCodes
	m.BatchNumber = line.BatchNumber
	m.ManufacturingDate = line.ManufacturingDate
	m.ExpiryDate = line.ExpiryDate
	m.UnitCost = line.UnitCost
	m.BillableQuantity = line.BillableQuantity
	m.DiscountAmount = line.DiscountAmount
	m.TaxableAmount = line.TaxableAmount
	m.TaxAmount = line.TaxAmount
	m.LineTotal = line.LineTotal
}

// PartyModel is the persistence model for billing counterparties.
type PartyModel struct {
	BaseModel
	Name           string          `gorm:"type:varchar(200);not null"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null"`
	CreditLimit    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NonFiler       bool            `gorm:"not null;default:false"`
	AdvanceTaxRate decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	IsActive       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party.
func (m *PartyModel) ToDomain() *billing.Party {
	return &billing.Party{
		ID:             m.ID,
		Name:           m.Name,
		AccountID:      m.AccountID,
		CreditLimit:    m.CreditLimit,
		NonFiler:       m.NonFiler,
		AdvanceTaxRate: m.AdvanceTaxRate,
		IsActive:       m.IsActive,
	}
}

// TaxConfigModel is the persistence model for tax configurations.
type TaxConfigModel struct {
	BaseModel
	Code             string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name             string          `gorm:"type:varchar(100);not null"`
	Rate             decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	Type             billing.TaxType `gorm:"type:varchar(20);not null"`
	CompoundTax      bool            `gorm:"not null;default:false"`
	InclusivePricing bool            `gorm:"not null;default:false"`
	IsActive         bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (TaxConfigModel) TableName() string {
	return "tax_configs"
}

// ToDomain converts the persistence model to a domain TaxConfig.
func (m *TaxConfigModel) ToDomain() *billing.TaxConfig {
	return &billing.TaxConfig{
		Code:             m.Code,
		Name:             m.Name,
		Rate:             m.Rate,
		Type:             m.Type,
		CompoundTax:      m.CompoundTax,
		InclusivePricing: m.InclusivePricing,
		IsActive:         m.IsActive,
	}
}
