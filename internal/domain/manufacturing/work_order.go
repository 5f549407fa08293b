package manufacturing

import (
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkOrderState is the lifecycle state of a work order
type WorkOrderState string

const (
	WorkOrderStatePending  WorkOrderState = "pending"
	WorkOrderStateReady    WorkOrderState = "ready"
	WorkOrderStateProgress WorkOrderState = "progress"
	WorkOrderStateExternal WorkOrderState = "external"
	WorkOrderStateDone     WorkOrderState = "done"
	WorkOrderStateCancel   WorkOrderState = "cancel"
)

// CanTransitionTo checks if the work order state can transition to the target
func (s WorkOrderState) CanTransitionTo(target WorkOrderState) bool {
	switch s {
	case WorkOrderStatePending:
		return target == WorkOrderStateReady || target == WorkOrderStateExternal || target == WorkOrderStateCancel
	case WorkOrderStateReady:
		return target == WorkOrderStateProgress || target == WorkOrderStateExternal || target == WorkOrderStateCancel
	case WorkOrderStateProgress:
		return target == WorkOrderStateDone || target == WorkOrderStateCancel
	case WorkOrderStateExternal:
		return target == WorkOrderStateDone || target == WorkOrderStateCancel
	}
	return false
}

// WorkOrder is one routing operation of a production order
type WorkOrder struct {
	shared.BaseAggregateRoot
	ProductionID        uuid.UUID
	OperationID         uuid.UUID
	Name                string
	State               WorkOrderState
	DatePlannedStart    *time.Time
	DatePlannedFinished *time.Time
}

// NewWorkOrder creates a pending work order for an operation of a production order
func NewWorkOrder(productionID, operationID uuid.UUID, name string) (*WorkOrder, error) {
	if productionID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Production order ID cannot be empty")
	}
	if operationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Operation ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Work order name cannot be empty")
	}
	return &WorkOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductionID:      productionID,
		OperationID:       operationID,
		Name:              name,
		State:             WorkOrderStatePending,
	}, nil
}

// MarkExternal hands this operation to a subcontractor. The parent order keeps its state.
func (w *WorkOrder) MarkExternal() error {
	if !w.State.CanTransitionTo(WorkOrderStateExternal) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Work order %s cannot move from %s to %s", w.Name, w.State, WorkOrderStateExternal))
	}
	from := w.State
	w.State = WorkOrderStateExternal
	w.IncrementVersion()
	w.AddDomainEvent(NewWorkOrderExternalizedEvent(w, from))
	return nil
}

// SetPlannedDates records the window derived from the subcontracting transfers
func (w *WorkOrder) SetPlannedDates(start, finish *time.Time) {
	w.DatePlannedStart = start
	w.DatePlannedFinished = finish
	w.IncrementVersion()
}
