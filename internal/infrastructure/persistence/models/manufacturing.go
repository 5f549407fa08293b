package models

import (
	"time"

	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionOrderModel is the persistence model for the ProductionOrder aggregate.
type ProductionOrderModel struct {
	AggregateModel
	Name                  string                        `gorm:"type:varchar(100);not null;uniqueIndex"`
	ProductID             uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Quantity              decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	UOM                   string                        `gorm:"type:varchar(20)"`
	BOMID                 uuid.UUID                     `gorm:"column:bom_id;type:uuid;not null"`
	RoutingID             *uuid.UUID                    `gorm:"type:uuid"`
	LocationSrcID         uuid.UUID                     `gorm:"type:uuid;not null"`
	LocationDestID        uuid.UUID                     `gorm:"type:uuid;not null"`
	PickingTypeID         uuid.UUID                     `gorm:"type:uuid"`
	State                 manufacturing.ProductionState `gorm:"type:varchar(20);not null;default:'draft';index"`
	DatePlannedStart      time.Time                     `gorm:"not null"`
	DatePlannedFinished   *time.Time
	DatePlannedStartWO    *time.Time  `gorm:"column:date_planned_start_wo"`
	DatePlannedFinishedWO *time.Time  `gorm:"column:date_planned_finished_wo"`
	ExternalPickingIDs    []uuid.UUID `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (ProductionOrderModel) TableName() string {
	return "production_orders"
}

// ToDomain converts the persistence model to a domain ProductionOrder
func (m *ProductionOrderModel) ToDomain() *manufacturing.ProductionOrder {
	return &manufacturing.ProductionOrder{
		BaseAggregateRoot:     m.ToDomainAggregate(),
		Name:                  m.Name,
		ProductID:             m.ProductID,
		Quantity:              m.Quantity,
		UOM:                   m.UOM,
		BOMID:                 m.BOMID,
		RoutingID:             m.RoutingID,
		LocationSrcID:         m.LocationSrcID,
		LocationDestID:        m.LocationDestID,
		PickingTypeID:         m.PickingTypeID,
		State:                 m.State,
		DatePlannedStart:      m.DatePlannedStart,
		DatePlannedFinished:   m.DatePlannedFinished,
		DatePlannedStartWO:    m.DatePlannedStartWO,
		DatePlannedFinishedWO: m.DatePlannedFinishedWO,
		ExternalPickingIDs:    m.ExternalPickingIDs,
	}
}

// ProductionOrderModelFromDomain creates a persistence model from a domain ProductionOrder
func ProductionOrderModelFromDomain(p *manufacturing.ProductionOrder) *ProductionOrderModel {
	m := &ProductionOrderModel{
		Name:                  p.Name,
		ProductID:             p.ProductID,
		Quantity:              p.Quantity,
		UOM:                   p.UOM,
		BOMID:                 p.BOMID,
		RoutingID:             p.RoutingID,
		LocationSrcID:         p.LocationSrcID,
		LocationDestID:        p.LocationDestID,
		PickingTypeID:         p.PickingTypeID,
		State:                 p.State,
		DatePlannedStart:      p.DatePlannedStart,
		DatePlannedFinished:   p.DatePlannedFinished,
		DatePlannedStartWO:    p.DatePlannedStartWO,
		DatePlannedFinishedWO: p.DatePlannedFinishedWO,
		ExternalPickingIDs:    p.ExternalPickingIDs,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// WorkOrderModel is the persistence model for the WorkOrder aggregate.
type WorkOrderModel struct {
	AggregateModel
	ProductionID        uuid.UUID                    `gorm:"type:uuid;not null;index"`
	OperationID         uuid.UUID                    `gorm:"type:uuid;not null"`
	Name                string                       `gorm:"type:varchar(200);not null"`
	State               manufacturing.WorkOrderState `gorm:"type:varchar(20);not null;default:'pending'"`
	DatePlannedStart    *time.Time
	DatePlannedFinished *time.Time
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the persistence model to a domain WorkOrder
func (m *WorkOrderModel) ToDomain() *manufacturing.WorkOrder {
	return &manufacturing.WorkOrder{
		BaseAggregateRoot:   m.ToDomainAggregate(),
		ProductionID:        m.ProductionID,
		OperationID:         m.OperationID,
		Name:                m.Name,
		State:               m.State,
		DatePlannedStart:    m.DatePlannedStart,
		DatePlannedFinished: m.DatePlannedFinished,
	}
}

// WorkOrderModelFromDomain creates a persistence model from a domain WorkOrder
func WorkOrderModelFromDomain(w *manufacturing.WorkOrder) *WorkOrderModel {
	m := &WorkOrderModel{
		ProductionID:        w.ProductionID,
		OperationID:         w.OperationID,
		Name:                w.Name,
		State:               w.State,
		DatePlannedStart:    w.DatePlannedStart,
		DatePlannedFinished: w.DatePlannedFinished,
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}

// BOMModel is the persistence model for the BOM aggregate.
type BOMModel struct {
	AggregateModel
	Code              string                `gorm:"type:varchar(64)"`
	ProductID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	Quantity          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UOM               string                `gorm:"type:varchar(20)"`
	Type              manufacturing.BOMType `gorm:"type:varchar(20);not null;default:'normal'"`
	RoutingID         *uuid.UUID            `gorm:"type:uuid"`
	PickingTypeID     *uuid.UUID            `gorm:"type:uuid"`
	ExternalProductID *uuid.UUID            `gorm:"type:uuid"`
	Lines             []BOMLineModel        `gorm:"foreignKey:BOMID"`
}

// TableName returns the table name for GORM
func (BOMModel) TableName() string {
	return "boms"
}

// ToDomain converts the persistence model to a domain BOM
func (m *BOMModel) ToDomain() *manufacturing.BOM {
	bom := &manufacturing.BOM{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Code:              m.Code,
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
		UOM:               m.UOM,
		Type:              m.Type,
		RoutingID:         m.RoutingID,
		PickingTypeID:     m.PickingTypeID,
		ExternalProductID: m.ExternalProductID,
		Lines:             make([]manufacturing.BOMLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		bom.Lines[i] = manufacturing.BOMLine{
			ID:          l.ID,
			BOMID:       l.BOMID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UOM:         l.UOM,
			Sequence:    l.Sequence,
			OperationID: l.OperationID,
		}
	}
	return bom
}

// BOMModelFromDomain creates a persistence model from a domain BOM.
// Lines are converted separately by the repository.
func BOMModelFromDomain(b *manufacturing.BOM) *BOMModel {
	m := &BOMModel{
		Code:              b.Code,
		ProductID:         b.ProductID,
		Quantity:          b.Quantity,
		UOM:               b.UOM,
		Type:              b.Type,
		RoutingID:         b.RoutingID,
		PickingTypeID:     b.PickingTypeID,
		ExternalProductID: b.ExternalProductID,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// BOMLineModel is the persistence model for BOM component lines.
type BOMLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BOMID       uuid.UUID       `gorm:"column:bom_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM         string          `gorm:"type:varchar(20)"`
	Sequence    int             `gorm:"not null;default:1"`
	OperationID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BOMLineModel) TableName() string {
	return "bom_lines"
}

// BOMLineModelFromDomain creates a persistence model from a domain BOM line
func BOMLineModelFromDomain(l *manufacturing.BOMLine) *BOMLineModel {
	return &BOMLineModel{
		ID:          l.ID,
		BOMID:       l.BOMID,
		ProductID:   l.ProductID,
		Quantity:    l.Quantity,
		UOM:         l.UOM,
		Sequence:    l.Sequence,
		OperationID: l.OperationID,
	}
}
