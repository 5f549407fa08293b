package models

import (
	"github.com/erp/subcontracting/internal/domain/partner"
	"github.com/google/uuid"
)

// PartnerModel is the persistence model for the Partner aggregate.
type PartnerModel struct {
	AggregateModel
	Name       string     `gorm:"type:varchar(200);not null"`
	Email      string     `gorm:"type:varchar(200)"`
	Phone      string     `gorm:"type:varchar(50)"`
	LocationID *uuid.UUID `gorm:"type:uuid"`
	Active     bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the persistence model to a domain Partner
func (m *PartnerModel) ToDomain() *partner.Partner {
	return &partner.Partner{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		LocationID:        m.LocationID,
		Active:            m.Active,
	}
}

// PartnerModelFromDomain creates a persistence model from a domain Partner
func PartnerModelFromDomain(p *partner.Partner) *PartnerModel {
	m := &PartnerModel{
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		LocationID: p.LocationID,
		Active:     p.Active,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
