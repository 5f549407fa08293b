package models

import (
	"github.com/erp/subcontracting/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	AggregateModel
	Code             string              `gorm:"type:varchar(64);index"`
	Name             string              `gorm:"type:varchar(200);not null"`
	Type             catalog.ProductType `gorm:"type:varchar(20);not null;default:'product'"`
	PurchaseOK       bool                `gorm:"not null"`
	UOM              string              `gorm:"type:varchar(20)"`
	PurchaseUOM      string              `gorm:"type:varchar(20)"`
	ProduceDelayDays int                 `gorm:"not null;default:0"`
	StandardPrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Code:              m.Code,
		Name:              m.Name,
		Type:              m.Type,
		PurchaseOK:        m.PurchaseOK,
		UOM:               m.UOM,
		PurchaseUOM:       m.PurchaseUOM,
		ProduceDelayDays:  m.ProduceDelayDays,
		StandardPrice:     m.StandardPrice,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:             p.Code,
		Name:             p.Name,
		Type:             p.Type,
		PurchaseOK:       p.PurchaseOK,
		UOM:              p.UOM,
		PurchaseUOM:      p.PurchaseUOM,
		ProduceDelayDays: p.ProduceDelayDays,
		StandardPrice:    p.StandardPrice,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// SupplierInfoModel is the persistence model for vendor price list entries.
type SupplierInfoModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence    int             `gorm:"not null;default:0"`
	UOM         string          `gorm:"type:varchar(20)"`
	MinQty      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DelayDays   int             `gorm:"not null;default:0"`
	RoutingID   *uuid.UUID      `gorm:"type:uuid"`
	OperationID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (SupplierInfoModel) TableName() string {
	return "supplier_infos"
}

// ToDomain converts the persistence model to a domain SupplierInfo
func (m *SupplierInfoModel) ToDomain() *catalog.SupplierInfo {
	return &catalog.SupplierInfo{
		BaseEntity:  m.BaseModel.ToDomain(),
		ProductID:   m.ProductID,
		PartnerID:   m.PartnerID,
		Sequence:    m.Sequence,
		UOM:         m.UOM,
		MinQty:      m.MinQty,
		Price:       m.Price,
		DelayDays:   m.DelayDays,
		RoutingID:   m.RoutingID,
		OperationID: m.OperationID,
	}
}

// SupplierInfoModelFromDomain creates a persistence model from a domain SupplierInfo
func SupplierInfoModelFromDomain(s *catalog.SupplierInfo) *SupplierInfoModel {
	m := &SupplierInfoModel{
		ProductID:   s.ProductID,
		PartnerID:   s.PartnerID,
		Sequence:    s.Sequence,
		UOM:         s.UOM,
		MinQty:      s.MinQty,
		Price:       s.Price,
		DelayDays:   s.DelayDays,
		RoutingID:   s.RoutingID,
		OperationID: s.OperationID,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
