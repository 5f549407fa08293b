package manufacturing

import (
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeProductionOrder = "ProductionOrder"
	AggregateTypeWorkOrder       = "WorkOrder"

	EventTypeProductionExternalized = "ProductionExternalized"
	EventTypeWorkOrderExternalized  = "WorkOrderExternalized"
)

// ProductionExternalizedEvent is raised when a whole order is handed to subcontractors
type ProductionExternalizedEvent struct {
	shared.BaseDomainEvent
	ProductionID uuid.UUID       `json:"production_id"`
	Name         string          `json:"name"`
	FromState    ProductionState `json:"from_state"`
}

// NewProductionExternalizedEvent creates a ProductionExternalizedEvent
func NewProductionExternalizedEvent(p *ProductionOrder, from ProductionState) *ProductionExternalizedEvent {
	return &ProductionExternalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionExternalized, AggregateTypeProductionOrder, p.ID),
		ProductionID:    p.ID,
		Name:            p.Name,
		FromState:       from,
	}
}

// WorkOrderExternalizedEvent is raised when a single operation is handed to subcontractors
type WorkOrderExternalizedEvent struct {
	shared.BaseDomainEvent
	WorkOrderID  uuid.UUID      `json:"work_order_id"`
	ProductionID uuid.UUID      `json:"production_id"`
	FromState    WorkOrderState `json:"from_state"`
}

// NewWorkOrderExternalizedEvent creates a WorkOrderExternalizedEvent
func NewWorkOrderExternalizedEvent(w *WorkOrder, from WorkOrderState) *WorkOrderExternalizedEvent {
	return &WorkOrderExternalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkOrderExternalized, AggregateTypeWorkOrder, w.ID),
		WorkOrderID:     w.ID,
		ProductionID:    w.ProductionID,
		FromState:       from,
	}
}
