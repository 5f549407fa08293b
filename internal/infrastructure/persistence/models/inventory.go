package models

import (
	"time"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMoveModel is the persistence model for stock moves.
type StockMoveModel struct {
	BaseModel
	Name                    string              `gorm:"type:varchar(300)"`
	ProductID               uuid.UUID           `gorm:"type:uuid;not null;index"`
	Quantity                decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	UOM                     string              `gorm:"type:varchar(20)"`
	LocationID              uuid.UUID           `gorm:"type:uuid;not null"`
	LocationDestID          uuid.UUID           `gorm:"type:uuid;not null"`
	DateExpected            time.Time           `gorm:"not null"`
	State                   inventory.MoveState `gorm:"type:varchar(20);not null;default:'draft';index"`
	UnitFactor              decimal.Decimal     `gorm:"type:decimal(18,6);not null;default:1"`
	Note                    string              `gorm:"type:text"`
	Origin                  string              `gorm:"type:varchar(300)"`
	WarehouseID             *uuid.UUID          `gorm:"type:uuid"`
	ProductionID            *uuid.UUID          `gorm:"type:uuid;index"`
	RawMaterialProductionID *uuid.UUID          `gorm:"type:uuid;index"`
	ExternalProductionID    *uuid.UUID          `gorm:"type:uuid;index"`
	WorkOrderID             *uuid.UUID          `gorm:"type:uuid;index"`
	OperationID             *uuid.UUID          `gorm:"type:uuid"`
	PartnerID               *uuid.UUID          `gorm:"type:uuid"`
	PickingID               *uuid.UUID          `gorm:"type:uuid;index"`
	PurchaseLineID          *uuid.UUID          `gorm:"type:uuid"`
	OriginalMoveState       inventory.MoveState `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (StockMoveModel) TableName() string {
	return "stock_moves"
}

// ToDomain converts the persistence model to a domain StockMove
func (m *StockMoveModel) ToDomain() *inventory.StockMove {
	return &inventory.StockMove{
		BaseEntity:              m.BaseModel.ToDomain(),
		Name:                    m.Name,
		ProductID:               m.ProductID,
		Quantity:                m.Quantity,
		UOM:                     m.UOM,
		LocationID:              m.LocationID,
		LocationDestID:          m.LocationDestID,
		DateExpected:            m.DateExpected,
		State:                   m.State,
		UnitFactor:              m.UnitFactor,
		Note:                    m.Note,
		Origin:                  m.Origin,
		WarehouseID:             m.WarehouseID,
		ProductionID:            m.ProductionID,
		RawMaterialProductionID: m.RawMaterialProductionID,
		ExternalProductionID:    m.ExternalProductionID,
		WorkOrderID:             m.WorkOrderID,
		OperationID:             m.OperationID,
		PartnerID:               m.PartnerID,
		PickingID:               m.PickingID,
		PurchaseLineID:          m.PurchaseLineID,
		OriginalMoveState:       m.OriginalMoveState,
	}
}

// StockMoveModelFromDomain creates a persistence model from a domain StockMove
func StockMoveModelFromDomain(s *inventory.StockMove) *StockMoveModel {
	m := &StockMoveModel{
		Name:                    s.Name,
		ProductID:               s.ProductID,
		Quantity:                s.Quantity,
		UOM:                     s.UOM,
		LocationID:              s.LocationID,
		LocationDestID:          s.LocationDestID,
		DateExpected:            s.DateExpected,
		State:                   s.State,
		UnitFactor:              s.UnitFactor,
		Note:                    s.Note,
		Origin:                  s.Origin,
		WarehouseID:             s.WarehouseID,
		ProductionID:            s.ProductionID,
		RawMaterialProductionID: s.RawMaterialProductionID,
		ExternalProductionID:    s.ExternalProductionID,
		WorkOrderID:             s.WorkOrderID,
		OperationID:             s.OperationID,
		PartnerID:               s.PartnerID,
		PickingID:               s.PickingID,
		PurchaseLineID:          s.PurchaseLineID,
		OriginalMoveState:       s.OriginalMoveState,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// PickingModel is the persistence model for the Picking aggregate.
type PickingModel struct {
	AggregateModel
	Origin          string                            `gorm:"type:varchar(300)"`
	PartnerID       uuid.UUID                         `gorm:"type:uuid;not null;index"`
	LocationID      uuid.UUID                         `gorm:"type:uuid;not null"`
	LocationDestID  uuid.UUID                         `gorm:"type:uuid;not null"`
	PickingTypeID   uuid.UUID                         `gorm:"type:uuid;not null"`
	ScheduledDate   time.Time                         `gorm:"not null"`
	MaxDate         *time.Time                        `gorm:"column:max_date"`
	State           inventory.PickingState            `gorm:"type:varchar(20);not null;default:'draft'"`
	MoveType        inventory.PickingMoveType         `gorm:"type:varchar(20);not null;default:'direct'"`
	Operation       inventory.SubcontractingOperation `gorm:"type:varchar(20)"`
	SubProductionID uuid.UUID                         `gorm:"type:uuid;not null;index"`
	SubWorkOrderID  *uuid.UUID                        `gorm:"type:uuid;index"`
	PickOutID       *uuid.UUID                        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PickingModel) TableName() string {
	return "pickings"
}

// ToDomain converts the persistence model to a domain Picking
func (m *PickingModel) ToDomain() *inventory.Picking {
	return &inventory.Picking{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Origin:            m.Origin,
		PartnerID:         m.PartnerID,
		LocationID:        m.LocationID,
		LocationDestID:    m.LocationDestID,
		PickingTypeID:     m.PickingTypeID,
		ScheduledDate:     m.ScheduledDate,
		MaxDate:           m.MaxDate,
		State:             m.State,
		MoveType:          m.MoveType,
		Operation:         m.Operation,
		SubProductionID:   m.SubProductionID,
		SubWorkOrderID:    m.SubWorkOrderID,
		PickOutID:         m.PickOutID,
	}
}

// PickingModelFromDomain creates a persistence model from a domain Picking
func PickingModelFromDomain(p *inventory.Picking) *PickingModel {
	m := &PickingModel{
		Origin:          p.Origin,
		PartnerID:       p.PartnerID,
		LocationID:      p.LocationID,
		LocationDestID:  p.LocationDestID,
		PickingTypeID:   p.PickingTypeID,
		ScheduledDate:   p.ScheduledDate,
		MaxDate:         p.MaxDate,
		State:           p.State,
		MoveType:        p.MoveType,
		Operation:       p.Operation,
		SubProductionID: p.SubProductionID,
		SubWorkOrderID:  p.SubWorkOrderID,
		PickOutID:       p.PickOutID,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// PickingTypeModel is the persistence model for operation types.
type PickingTypeModel struct {
	BaseModel
	Name        string                    `gorm:"type:varchar(100);not null"`
	Code        inventory.PickingTypeCode `gorm:"type:varchar(20);not null"`
	WarehouseID *uuid.UUID                `gorm:"type:uuid;index"`
	Active      bool                      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PickingTypeModel) TableName() string {
	return "picking_types"
}

// ToDomain converts the persistence model to a domain PickingType
func (m *PickingTypeModel) ToDomain() *inventory.PickingType {
	return &inventory.PickingType{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Code:        m.Code,
		WarehouseID: m.WarehouseID,
		Active:      m.Active,
	}
}

// PickingTypeModelFromDomain creates a persistence model from a domain PickingType
func PickingTypeModelFromDomain(t *inventory.PickingType) *PickingTypeModel {
	m := &PickingTypeModel{Name: t.Name, Code: t.Code, WarehouseID: t.WarehouseID, Active: t.Active}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// LocationModel is the persistence model for stock locations.
type LocationModel struct {
	BaseModel
	Name        string                  `gorm:"type:varchar(200);not null"`
	Usage       inventory.LocationUsage `gorm:"type:varchar(20);not null;default:'internal'"`
	WarehouseID *uuid.UUID              `gorm:"type:uuid;index"`
	Active      bool                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location
func (m *LocationModel) ToDomain() *inventory.Location {
	return &inventory.Location{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Usage:       m.Usage,
		WarehouseID: m.WarehouseID,
		Active:      m.Active,
	}
}

// LocationModelFromDomain creates a persistence model from a domain Location
func LocationModelFromDomain(l *inventory.Location) *LocationModel {
	m := &LocationModel{Name: l.Name, Usage: l.Usage, WarehouseID: l.WarehouseID, Active: l.Active}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// WarehouseModel is the persistence model for warehouses.
type WarehouseModel struct {
	BaseModel
	Code            string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name            string    `gorm:"type:varchar(200);not null"`
	StockLocationID uuid.UUID `gorm:"type:uuid;not null"`
	IsDefault       bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse
func (m *WarehouseModel) ToDomain() *inventory.Warehouse {
	return &inventory.Warehouse{
		BaseEntity:      m.BaseModel.ToDomain(),
		Code:            m.Code,
		Name:            m.Name,
		StockLocationID: m.StockLocationID,
		IsDefault:       m.IsDefault,
	}
}

// WarehouseModelFromDomain creates a persistence model from a domain Warehouse
func WarehouseModelFromDomain(w *inventory.Warehouse) *WarehouseModel {
	m := &WarehouseModel{Code: w.Code, Name: w.Name, StockLocationID: w.StockLocationID, IsDefault: w.IsDefault}
	m.FromDomainBaseEntity(w.BaseEntity)
	return m
}

// ReorderRuleModel is the persistence model for minimum stock rules.
type ReorderRuleModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_reorder_product_warehouse"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_reorder_product_warehouse"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null"`
	MinQty      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxQty      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active      bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReorderRuleModel) TableName() string {
	return "reorder_rules"
}

// ToDomain converts the persistence model to a domain ReorderRule
func (m *ReorderRuleModel) ToDomain() *inventory.ReorderRule {
	return &inventory.ReorderRule{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		LocationID:  m.LocationID,
		MinQty:      m.MinQty,
		MaxQty:      m.MaxQty,
		Active:      m.Active,
	}
}

// ReorderRuleModelFromDomain creates a persistence model from a domain ReorderRule
func ReorderRuleModelFromDomain(r *inventory.ReorderRule) *ReorderRuleModel {
	m := &ReorderRuleModel{
		Name:        r.Name,
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		LocationID:  r.LocationID,
		MinQty:      r.MinQty,
		MaxQty:      r.MaxQty,
		Active:      r.Active,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// StockQuantModel is the persistence model for on-hand quantities.
type StockQuantModel struct {
	BaseModel
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_quant_product_location"`
	LocationID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_quant_product_location"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockQuantModel) TableName() string {
	return "stock_quants"
}

// StockQuantModelFromDomain creates a persistence model from a domain StockQuant
func StockQuantModelFromDomain(q *inventory.StockQuant) *StockQuantModel {
	m := &StockQuantModel{
		ProductID:        q.ProductID,
		LocationID:       q.LocationID,
		Quantity:         q.Quantity,
		ReservedQuantity: q.ReservedQuantity,
	}
	m.FromDomainBaseEntity(q.BaseEntity)
	return m
}
