package subcontracting

import (
	"fmt"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/google/uuid"
)

// ScopeKind tells whether a worksheet targets a whole order or one work order
type ScopeKind string

const (
	ScopeOrder     ScopeKind = "production"
	ScopeWorkOrder ScopeKind = "workorder"
)

// Scope is the target of a worksheet. It decides which order lines are
// affected and how transfer documents are labelled.
type Scope struct {
	Kind         ScopeKind  `json:"kind"`
	ProductionID uuid.UUID  `json:"production_id"`
	WorkOrderID  *uuid.UUID `json:"work_order_id,omitempty"`
	OperationID  *uuid.UUID `json:"operation_id,omitempty"`
}

// OrderScope targets a whole production order
func OrderScope(productionID uuid.UUID) Scope {
	return Scope{Kind: ScopeOrder, ProductionID: productionID}
}

// WorkOrderScope targets a single work order of a production order
func WorkOrderScope(productionID, workOrderID uuid.UUID, operationID *uuid.UUID) Scope {
	return Scope{Kind: ScopeWorkOrder, ProductionID: productionID, WorkOrderID: &workOrderID, OperationID: operationID}
}

// IsWorkOrder reports whether the scope is a single work order
func (s Scope) IsWorkOrder() bool {
	return s.Kind == ScopeWorkOrder
}

func (s Scope) ownsWorkOrder(id *uuid.UUID) bool {
	return id != nil && s.WorkOrderID != nil && *id == *s.WorkOrderID
}

// IncludesRaw reports whether a live order raw move falls inside the scope
func (s Scope) IncludesRaw(m *inventory.StockMove) bool {
	if !m.IsRawOf(s.ProductionID) {
		return false
	}
	return !s.IsWorkOrder() || s.ownsWorkOrder(m.WorkOrderID)
}

// IncludesFinished reports whether a live order finished move is replaced by the run.
// Work order runs leave the order's own finished output alone.
func (s Scope) IncludesFinished(m *inventory.StockMove) bool {
	return !s.IsWorkOrder() && m.IsFinishedOf(s.ProductionID)
}

// CopiesFinished reports whether an order finished move is offered on the worksheet
func (s Scope) CopiesFinished(m *inventory.StockMove) bool {
	if !m.IsFinishedOf(s.ProductionID) {
		return false
	}
	return !s.IsWorkOrder() || m.WorkOrderID == nil || s.ownsWorkOrder(m.WorkOrderID)
}

// IncludesLine reports whether a worksheet raw line is processed by the run
func (s Scope) IncludesLine(l WorksheetLine) bool {
	return !s.IsWorkOrder() || s.ownsWorkOrder(l.WorkOrderID)
}

// Origin builds the source document label of generated transfers
func (s Scope) Origin(orderName, workOrderName, partnerName string) string {
	if !s.IsWorkOrder() {
		return orderName
	}
	return fmt.Sprintf("%s - %s - %s", orderName, workOrderName, partnerName)
}
