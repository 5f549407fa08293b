package partner

import (
	"strings"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
)

// Partner is a business partner. Subcontractors hold stock at their own location.
type Partner struct {
	shared.BaseAggregateRoot
	Name  string
	Email string
	Phone string
	// LocationID is the partner's stock location, used to route subcontracting transfers
	LocationID *uuid.UUID
	Active     bool
}

// NewPartner creates a new active partner
func NewPartner(name string) (*Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Partner name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Partner name cannot exceed 200 characters")
	}
	return &Partner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Active:            true,
	}, nil
}

// SetLocation assigns the partner's stock location
func (p *Partner) SetLocation(locationID uuid.UUID) {
	p.LocationID = &locationID
	p.IncrementVersion()
}

// RequireLocation returns the partner location or a validation error naming the partner
func (p *Partner) RequireLocation() (uuid.UUID, error) {
	if p.LocationID == nil || *p.LocationID == uuid.Nil {
		return uuid.Nil, shared.NewValidationError("Partner %s has no location setup", p.Name)
	}
	return *p.LocationID, nil
}
