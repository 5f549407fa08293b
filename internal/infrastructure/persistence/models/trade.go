package models

import (
	"time"

	"github.com/erp/subcontracting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate.
type PurchaseOrderModel struct {
	AggregateModel
	OrderNumber          string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	PartnerID            uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Status               trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	DatePlanned          time.Time                 `gorm:"not null"`
	ProductionExternalID *uuid.UUID                `gorm:"type:uuid;index"`
	TotalAmount          decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	ConfirmedAt          *time.Time
	Lines                []PurchaseOrderLineModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		BaseAggregateRoot:    m.ToDomainAggregate(),
		OrderNumber:          m.OrderNumber,
		PartnerID:            m.PartnerID,
		Status:               m.Status,
		DatePlanned:          m.DatePlanned,
		ProductionExternalID: m.ProductionExternalID,
		TotalAmount:          m.TotalAmount,
		ConfirmedAt:          m.ConfirmedAt,
		Lines:                make([]trade.PurchaseOrderLine, len(m.Lines)),
	}
	for i := range m.Lines {
		po.Lines[i] = m.Lines[i].ToDomain()
	}
	return po
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder.
// Lines are converted separately by the repository.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		OrderNumber:          o.OrderNumber,
		PartnerID:            o.PartnerID,
		Status:               o.Status,
		DatePlanned:          o.DatePlanned,
		ProductionExternalID: o.ProductionExternalID,
		TotalAmount:          o.TotalAmount,
		ConfirmedAt:          o.ConfirmedAt,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// PurchaseOrderLineModel is the persistence model for purchase order lines.
type PurchaseOrderLineModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null"`
	Name                 string          `gorm:"type:varchar(300);not null"`
	Quantity             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM                  string          `gorm:"type:varchar(20)"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DatePlanned          time.Time       `gorm:"not null"`
	ProductionExternalID *uuid.UUID      `gorm:"type:uuid;index"`
	SubMoveLineID        *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	CreatedAt            time.Time       `gorm:"not null"`
	UpdatedAt            time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the persistence model to a domain PurchaseOrderLine
func (m *PurchaseOrderLineModel) ToDomain() trade.PurchaseOrderLine {
	return trade.PurchaseOrderLine{
		ID:                   m.ID,
		OrderID:              m.OrderID,
		ProductID:            m.ProductID,
		Name:                 m.Name,
		Quantity:             m.Quantity,
		UOM:                  m.UOM,
		UnitPrice:            m.UnitPrice,
		Amount:               m.Amount,
		DatePlanned:          m.DatePlanned,
		ProductionExternalID: m.ProductionExternalID,
		SubMoveLineID:        m.SubMoveLineID,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// PurchaseOrderLineModelFromDomain creates a persistence model from a domain line
func PurchaseOrderLineModelFromDomain(l *trade.PurchaseOrderLine) *PurchaseOrderLineModel {
	return &PurchaseOrderLineModel{
		ID:                   l.ID,
		OrderID:              l.OrderID,
		ProductID:            l.ProductID,
		Name:                 l.Name,
		Quantity:             l.Quantity,
		UOM:                  l.UOM,
		UnitPrice:            l.UnitPrice,
		Amount:               l.Amount,
		DatePlanned:          l.DatePlanned,
		ProductionExternalID: l.ProductionExternalID,
		SubMoveLineID:        l.SubMoveLineID,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}
