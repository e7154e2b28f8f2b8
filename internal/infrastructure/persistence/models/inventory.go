package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/inventory"
)

// BatchModel is the persistence model for stock batches.
type BatchModel struct {
	BaseModel
	ItemID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_batches_item_warehouse,priority:1"`
	WarehouseID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_batches_item_warehouse,priority:2"`
	BatchNumber       string          `gorm:"type:varchar(100);not null"`
	ManufacturingDate time.Time       `gorm:"not null"`
	ExpiryDate        time.Time       `gorm:"not null;index"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quarantined       bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch.
func (m *BatchModel) ToDomain() *inventory.Batch {
	return &inventory.Batch{
		BaseEntity:        m.BaseModel.ToDomain(),
		ItemID:            m.ItemID,
		WarehouseID:       m.WarehouseID,
		BatchNumber:       m.BatchNumber,
		ManufacturingDate: m.ManufacturingDate,
		ExpiryDate:        m.ExpiryDate,
		Quantity:          m.Quantity,
		RemainingQuantity: m.RemainingQuantity,
		UnitCost:          m.UnitCost,
		Quarantined:       m.Quarantined,
	}
}

// FromDomain populates the persistence model from a domain Batch.
func (m *BatchModel) FromDomain(b *inventory.Batch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ItemID = b.ItemID
	m.WarehouseID = b.WarehouseID
	m.BatchNumber = b.BatchNumber
	m.ManufacturingDate = b.ManufacturingDate
	m.ExpiryDate = b.ExpiryDate
	m.Quantity = b.Quantity
	m.RemainingQuantity = b.RemainingQuantity
	m.UnitCost = b.UnitCost
	m.Quarantined = b.Quarantined
}

// BatchModelFromDomain creates a new persistence model from a domain Batch.
func BatchModelFromDomain(b *inventory.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}

// StockMovementModel is the persistence model for the stock movement journal.
type StockMovementModel struct {
	BaseModel
	ItemID        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	WarehouseID   uuid.UUID                   `gorm:"type:uuid;not null;index"`
	BatchID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Direction     inventory.MovementDirection `gorm:"type:varchar(5);not null"`
	ReferenceType string                      `gorm:"type:varchar(30);not null"`
	ReferenceID   uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Remark        string                      `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:    m.BaseModel.ToDomain(),
		ItemID:        m.ItemID,
		WarehouseID:   m.WarehouseID,
		BatchID:       m.BatchID,
		Quantity:      m.Quantity,
		Direction:     m.Direction,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Remark:        m.Remark,
	}
}

// FromDomain populates the persistence model from a domain StockMovement.
func (m *StockMovementModel) FromDomain(mv *inventory.StockMovement) {
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.ItemID = mv.ItemID
	m.WarehouseID = mv.WarehouseID
	m.BatchID = mv.BatchID
	m.Quantity = mv.Quantity
	m.Direction = mv.Direction
	m.ReferenceType = mv.ReferenceType
	m.ReferenceID = mv.ReferenceID
	m.Remark = mv.Remark
}

// BatchAllocationModel records which batches served an invoice line, and is
// replayed verbatim during reversal.
type BatchAllocationModel struct {
	BaseModel
	InvoiceID uuid.UUID                   `gorm:"type:uuid;not null;index"`
	BatchID   uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID                   `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	UnitCost  decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Direction inventory.MovementDirection `gorm:"type:varchar(5);not null"`
}

// TableName returns the table name for GORM
func (BatchAllocationModel) TableName() string {
	return "batch_allocations"
}

// ToDomain converts the persistence model to a domain BatchAllocation.
func (m *BatchAllocationModel) ToDomain() *inventory.BatchAllocation {
	return &inventory.BatchAllocation{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		BatchID:    m.BatchID,
		ItemID:     m.ItemID,
		Quantity:   m.Quantity,
		UnitCost:   m.UnitCost,
		Direction:  m.Direction,
	}
}

// FromDomain populates the persistence model from a domain BatchAllocation.
func (m *BatchAllocationModel) FromDomain(a *inventory.BatchAllocation) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.InvoiceID = a.InvoiceID
	m.BatchID = a.BatchID
	m.ItemID = a.ItemID
	m.Quantity = a.Quantity
	m.UnitCost = a.UnitCost
	m.Direction = a.Direction
}
