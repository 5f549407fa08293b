package inventory

import (
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
)

// SubcontractingOperation tags the direction of a subcontracting transfer
type SubcontractingOperation string

const (
	// OperationOpen ships materials to the subcontractor
	OperationOpen SubcontractingOperation = "open"
	// OperationClose receives finished goods back from the subcontractor
	OperationClose SubcontractingOperation = "close"
)

// PickingState is the state of a transfer document
type PickingState string

const (
	PickingStateDraft    PickingState = "draft"
	PickingStateAssigned PickingState = "assigned"
	PickingStateDone     PickingState = "done"
	PickingStateCancel   PickingState = "cancel"
)

// PickingMoveType controls whether goods ship as soon as possible or all at once
type PickingMoveType string

const (
	MoveTypeDirect PickingMoveType = "direct"
	MoveTypeOne    PickingMoveType = "one"
)

// Picking is a transfer document grouping moves with one source/destination pair and partner
type Picking struct {
	shared.BaseAggregateRoot
	Origin          string
	PartnerID       uuid.UUID
	LocationID      uuid.UUID
	LocationDestID  uuid.UUID
	PickingTypeID   uuid.UUID
	ScheduledDate   time.Time
	MaxDate         *time.Time
	State           PickingState
	MoveType        PickingMoveType
	Operation       SubcontractingOperation
	SubProductionID uuid.UUID
	SubWorkOrderID  *uuid.UUID
	// PickOutID links an inbound transfer to the outbound one of the same subcontractor
	PickOutID *uuid.UUID
}

// NewSubcontractingPicking creates a draft subcontracting transfer
func NewSubcontractingPicking(op SubcontractingOperation, partnerID, locationID, locationDestID, pickingTypeID, productionID uuid.UUID, origin string, scheduled time.Time) (*Picking, error) {
	if op != OperationOpen && op != OperationClose {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown subcontracting operation")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Picking partner is required")
	}
	if locationID == uuid.Nil || locationDestID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Picking locations are required")
	}
	if pickingTypeID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Picking type is required")
	}
	return &Picking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Origin:            origin,
		PartnerID:         partnerID,
		LocationID:        locationID,
		LocationDestID:    locationDestID,
		PickingTypeID:     pickingTypeID,
		ScheduledDate:     scheduled,
		State:             PickingStateDraft,
		MoveType:          MoveTypeDirect,
		Operation:         op,
		SubProductionID:   productionID,
	}, nil
}

// AttachMoves places moves into this picking. Every move is routed through the
// picking's own source and destination.
func (p *Picking) AttachMoves(moves ...*StockMove) {
	for _, m := range moves {
		id := p.ID
		m.PickingID = &id
		m.LocationID = p.LocationID
		m.LocationDestID = p.LocationDestID
		m.Touch()
		if p.MaxDate == nil || m.DateExpected.After(*p.MaxDate) {
			d := m.DateExpected
			p.MaxDate = &d
		}
	}
	p.Touch()
}
