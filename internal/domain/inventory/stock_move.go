package inventory

import (
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveState is the state of a stock move
type MoveState string

const (
	MoveStateDraft     MoveState = "draft"
	MoveStateWaiting   MoveState = "waiting"
	MoveStateConfirmed MoveState = "confirmed"
	MoveStateAssigned  MoveState = "assigned"
	MoveStateDone      MoveState = "done"
	MoveStateCancel    MoveState = "cancel"
)

// IsValid checks if the state is a known value
func (s MoveState) IsValid() bool {
	switch s {
	case MoveStateDraft, MoveStateWaiting, MoveStateConfirmed, MoveStateAssigned, MoveStateDone, MoveStateCancel:
		return true
	}
	return false
}

// IsLive reports whether the move still counts towards planned quantities
func (s MoveState) IsLive() bool {
	return s != MoveStateDone && s != MoveStateCancel
}

// StockMove is a planned or executed transfer of a product quantity between two locations.
// Links to orders, work orders, pickings and purchase lines are plain IDs.
type StockMove struct {
	shared.BaseEntity
	Name           string
	ProductID      uuid.UUID
	Quantity       decimal.Decimal
	UOM            string
	LocationID     uuid.UUID
	LocationDestID uuid.UUID
	DateExpected   time.Time
	State          MoveState
	UnitFactor     decimal.Decimal
	Note           string
	Origin         string
	WarehouseID    *uuid.UUID

	// ProductionID is set on finished lines of a production order
	ProductionID *uuid.UUID
	// RawMaterialProductionID is set on raw lines consumed by a production order
	RawMaterialProductionID *uuid.UUID
	// ExternalProductionID is set on lines generated for a subcontracted order
	ExternalProductionID *uuid.UUID
	WorkOrderID          *uuid.UUID
	OperationID          *uuid.UUID
	PartnerID            *uuid.UUID
	PickingID            *uuid.UUID
	PurchaseLineID       *uuid.UUID

	// OriginalMoveState is the state the move had when it was cancelled for subcontracting
	OriginalMoveState MoveState
}

// NewStockMove creates a draft move
func NewStockMove(name string, productID uuid.UUID, qty decimal.Decimal, uom string, locationID, locationDestID uuid.UUID) (*StockMove, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if qty.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Move quantity cannot be negative")
	}
	if locationID == uuid.Nil || locationDestID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Move locations are required")
	}
	return &StockMove{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           name,
		ProductID:      productID,
		Quantity:       qty,
		UOM:            uom,
		LocationID:     locationID,
		LocationDestID: locationDestID,
		DateExpected:   time.Now(),
		State:          MoveStateDraft,
		UnitFactor:     decimal.NewFromInt(1),
	}, nil
}

// IsRawOf reports whether the move is a raw line of the production order
func (m *StockMove) IsRawOf(productionID uuid.UUID) bool {
	return m.RawMaterialProductionID != nil && *m.RawMaterialProductionID == productionID
}

// IsFinishedOf reports whether the move is a finished line of the production order
func (m *StockMove) IsFinishedOf(productionID uuid.UUID) bool {
	return m.ProductionID != nil && *m.ProductionID == productionID
}

// IsForPartner reports whether the move was generated for the given subcontractor
func (m *StockMove) IsForPartner(partnerID uuid.UUID) bool {
	return m.PartnerID != nil && *m.PartnerID == partnerID
}

// Confirm marks a draft or waiting move as confirmed
func (m *StockMove) Confirm() error {
	if m.State != MoveStateDraft && m.State != MoveStateWaiting && m.State != MoveStateConfirmed {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot confirm move in state %s", m.State))
	}
	m.State = MoveStateConfirmed
	m.Touch()
	return nil
}

// StampOriginalState records the current state for audit before cancellation
func (m *StockMove) StampOriginalState() {
	m.OriginalMoveState = m.State
}

// Cancel cancels the move. Cancelling a cancelled move is a no-op; done moves cannot be cancelled.
func (m *StockMove) Cancel() error {
	switch m.State {
	case MoveStateCancel:
		return nil
	case MoveStateDone:
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot cancel a move that is already done")
	}
	m.State = MoveStateCancel
	m.Touch()
	return nil
}

// MoveOption overrides a field on a copied move
type MoveOption func(*StockMove)

// WithName overrides the move description
func WithName(name string) MoveOption {
	return func(m *StockMove) { m.Name = name }
}

// WithLocations overrides source and destination
func WithLocations(locationID, locationDestID uuid.UUID) MoveOption {
	return func(m *StockMove) {
		m.LocationID = locationID
		m.LocationDestID = locationDestID
	}
}

// WithoutProductionLinks detaches the copy from any production order
func WithoutProductionLinks() MoveOption {
	return func(m *StockMove) {
		m.ProductionID = nil
		m.RawMaterialProductionID = nil
		m.ExternalProductionID = nil
	}
}

// Copy duplicates the move as a new draft record. Picking, purchase and audit
// links are never carried over.
func (m *StockMove) Copy(opts ...MoveOption) *StockMove {
	cp := *m
	cp.BaseEntity = shared.NewBaseEntity()
	cp.State = MoveStateDraft
	cp.PickingID = nil
	cp.PurchaseLineID = nil
	cp.OriginalMoveState = ""
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}
