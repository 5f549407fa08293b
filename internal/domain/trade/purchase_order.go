package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "sent"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "purchase"
	PurchaseOrderStatusDone      PurchaseOrderStatus = "done"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancel"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusDone, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether lines can still be appended (draft or sent quotation)
func (s PurchaseOrderStatus) IsOpen() bool {
	return s == PurchaseOrderStatusDraft || s == PurchaseOrderStatusSent
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusDone || target == PurchaseOrderStatusCancelled
	}
	return false
}

// PurchaseOrderLine is a line of a purchase order
type PurchaseOrderLine struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Name        string
	Quantity    decimal.Decimal
	UOM         string
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	DatePlanned time.Time
	// ProductionExternalID is the production order subcontracted through this line
	ProductionExternalID *uuid.UUID
	// SubMoveLineID is the inbound move this line pays for
	SubMoveLineID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PurchaseOrder represents a purchase order aggregate root
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber          string
	PartnerID            uuid.UUID
	Status               PurchaseOrderStatus
	DatePlanned          time.Time
	ProductionExternalID *uuid.UUID
	Lines                []PurchaseOrderLine
	TotalAmount          decimal.Decimal
	ConfirmedAt          *time.Time
}

// NewOrderNumber generates a purchase order reference
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("PO-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}

// NewPurchaseOrder creates a new draft purchase order for a vendor
func NewPurchaseOrder(orderNumber string, partnerID uuid.UUID, datePlanned time.Time) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot exceed 50 characters")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Partner ID cannot be empty")
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		PartnerID:         partnerID,
		Status:            PurchaseOrderStatusDraft,
		DatePlanned:       datePlanned,
		TotalAmount:       decimal.Zero,
	}
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// AddLine appends a line. Only allowed while the order is a draft or sent quotation.
func (o *PurchaseOrder) AddLine(productID uuid.UUID, name string, qty decimal.Decimal, uom string, unitPrice decimal.Decimal, datePlanned time.Time) (*PurchaseOrderLine, error) {
	if !o.Status.IsOpen() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot add lines to an order in %s status", o.Status))
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}

	now := time.Now()
	o.Lines = append(o.Lines, PurchaseOrderLine{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		Name:        name,
		Quantity:    qty,
		UOM:         uom,
		UnitPrice:   unitPrice,
		Amount:      qty.Mul(unitPrice),
		DatePlanned: datePlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	o.recalculateTotals()
	o.IncrementVersion()
	return &o.Lines[len(o.Lines)-1], nil
}

// Confirm turns the quotation into a confirmed purchase. Requires at least one line.
func (o *PurchaseOrder) Confirm() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusConfirmed) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot confirm order without lines")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.IncrementVersion()
	o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o))
	return nil
}

// Cancel cancels the order
func (o *PurchaseOrder) Cancel() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	o.Status = PurchaseOrderStatusCancelled
	o.IncrementVersion()
	return nil
}

func (o *PurchaseOrder) recalculateTotals() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Amount)
	}
	o.TotalAmount = total
}
