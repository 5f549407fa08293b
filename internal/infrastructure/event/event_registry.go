package event

import (
	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/trade"
)

// RegisterAllEvents registers every event the external production workflow publishes
func RegisterAllEvents(s *EventSerializer) {
	registerEvent[manufacturing.ProductionExternalizedEvent](s, manufacturing.EventTypeProductionExternalized)
	registerEvent[manufacturing.WorkOrderExternalizedEvent](s, manufacturing.EventTypeWorkOrderExternalized)
	registerEvent[trade.PurchaseOrderCreatedEvent](s, trade.EventTypePurchaseOrderCreated)
	registerEvent[trade.PurchaseOrderConfirmedEvent](s, trade.EventTypePurchaseOrderConfirmed)
}
