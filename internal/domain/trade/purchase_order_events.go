package trade

import (
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypePurchaseOrder = "PurchaseOrder"

	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderConfirmed = "PurchaseOrderConfirmed"
)

// PurchaseOrderCreatedEvent announces a new draft order for a vendor
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	PartnerID   uuid.UUID `json:"partner_id"`
	DatePlanned time.Time `json:"date_planned"`
}

func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PartnerID:       o.PartnerID,
		DatePlanned:     o.DatePlanned,
	}
}

// PurchaseOrderConfirmedEvent carries the confirmed totals. ProductionID is
// set when the order pays for subcontracted production.
type PurchaseOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	ProductionID *uuid.UUID      `json:"production_id,omitempty"`
	LineCount    int             `json:"line_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

func NewPurchaseOrderConfirmedEvent(o *PurchaseOrder) *PurchaseOrderConfirmedEvent {
	return &PurchaseOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderConfirmed, AggregateTypePurchaseOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PartnerID:       o.PartnerID,
		ProductionID:    o.ProductionExternalID,
		LineCount:       len(o.Lines),
		TotalAmount:     o.TotalAmount,
	}
}
