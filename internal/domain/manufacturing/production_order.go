package manufacturing

import (
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionState is the lifecycle state of a production order
type ProductionState string

const (
	ProductionStateDraft     ProductionState = "draft"
	ProductionStateConfirmed ProductionState = "confirmed"
	ProductionStateWaiting   ProductionState = "waiting"
	ProductionStateAssigned  ProductionState = "assigned"
	ProductionStateExternal  ProductionState = "external"
	ProductionStateDone      ProductionState = "done"
	ProductionStateCancel    ProductionState = "cancel"
)

// IsValid checks if the state is a known value
func (s ProductionState) IsValid() bool {
	switch s {
	case ProductionStateDraft, ProductionStateConfirmed, ProductionStateWaiting,
		ProductionStateAssigned, ProductionStateExternal, ProductionStateDone, ProductionStateCancel:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s ProductionState) IsTerminal() bool {
	return s == ProductionStateDone || s == ProductionStateCancel
}

// CanTransitionTo checks if the state can transition to the target.
// The external branch is only entered from an order that is confirmed and
// not yet produced; it leaves through done once the inbound goods arrive.
func (s ProductionState) CanTransitionTo(target ProductionState) bool {
	if s.IsTerminal() {
		return false
	}
	if target == ProductionStateCancel {
		return true
	}
	switch s {
	case ProductionStateDraft:
		return target == ProductionStateConfirmed
	case ProductionStateConfirmed:
		return target == ProductionStateWaiting || target == ProductionStateAssigned || target == ProductionStateExternal
	case ProductionStateWaiting:
		return target == ProductionStateAssigned || target == ProductionStateExternal
	case ProductionStateAssigned:
		return target == ProductionStateWaiting || target == ProductionStateExternal || target == ProductionStateDone
	case ProductionStateExternal:
		return target == ProductionStateDone
	}
	return false
}

// ProductionOrder is a manufacturing job producing a finished product from raw materials.
// Raw and finished lines live in the inventory context as stock moves that reference
// the order by ID.
type ProductionOrder struct {
	shared.BaseAggregateRoot
	Name                  string
	ProductID             uuid.UUID
	Quantity              decimal.Decimal
	UOM                   string
	BOMID                 uuid.UUID
	RoutingID             *uuid.UUID
	LocationSrcID         uuid.UUID
	LocationDestID        uuid.UUID
	PickingTypeID         uuid.UUID
	State                 ProductionState
	DatePlannedStart      time.Time
	DatePlannedFinished   *time.Time
	DatePlannedStartWO    *time.Time
	DatePlannedFinishedWO *time.Time
	ExternalPickingIDs    []uuid.UUID
}

// NewProductionOrder creates a draft production order
func NewProductionOrder(name string, productID, bomID uuid.UUID, qty decimal.Decimal, uom string, locationSrcID, locationDestID, pickingTypeID uuid.UUID) (*ProductionOrder, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Production order name cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if bomID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Bill of materials cannot be empty")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if locationSrcID == uuid.Nil || locationDestID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Source and destination locations are required")
	}

	return &ProductionOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ProductID:         productID,
		Quantity:          qty,
		UOM:               uom,
		BOMID:             bomID,
		LocationSrcID:     locationSrcID,
		LocationDestID:    locationDestID,
		PickingTypeID:     pickingTypeID,
		State:             ProductionStateDraft,
		DatePlannedStart:  time.Now(),
	}, nil
}

func (p *ProductionOrder) transitionTo(target ProductionState) error {
	if !p.State.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Production order %s cannot move from %s to %s", p.Name, p.State, target))
	}
	p.State = target
	p.IncrementVersion()
	return nil
}

// Confirm moves a draft order to confirmed
func (p *ProductionOrder) Confirm() error {
	return p.transitionTo(ProductionStateConfirmed)
}

// MarkExternal hands the order over to one or more subcontractors
func (p *ProductionOrder) MarkExternal() error {
	from := p.State
	if err := p.transitionTo(ProductionStateExternal); err != nil {
		return err
	}
	p.AddDomainEvent(NewProductionExternalizedEvent(p, from))
	return nil
}

// MarkDone closes the order once production (internal or external) completed
func (p *ProductionOrder) MarkDone() error {
	return p.transitionTo(ProductionStateDone)
}

// Cancel cancels a non-terminal order
func (p *ProductionOrder) Cancel() error {
	return p.transitionTo(ProductionStateCancel)
}

// RecordExternalPickings stores the transfers generated for the subcontractors
// together with the planned window derived from them.
func (p *ProductionOrder) RecordExternalPickings(pickingIDs []uuid.UUID, start, finish *time.Time) {
	p.ExternalPickingIDs = append([]uuid.UUID(nil), pickingIDs...)
	p.DatePlannedStartWO = start
	p.DatePlannedFinishedWO = finish
	p.IncrementVersion()
}

// LinkExternalPickings appends transfers generated for a single work order
func (p *ProductionOrder) LinkExternalPickings(pickingIDs ...uuid.UUID) {
	p.ExternalPickingIDs = append(p.ExternalPickingIDs, pickingIDs...)
	p.IncrementVersion()
}
