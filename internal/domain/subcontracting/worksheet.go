package subcontracting

import (
	"time"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationType selects how raw lines are proposed
type OperationType string

const (
	// OperationNormal copies the order's current lines
	OperationNormal OperationType = "normal"
	// OperationConsume explodes a chosen bill of materials
	OperationConsume OperationType = "consume"
)

// IsValid checks if the operation type is known
func (t OperationType) IsValid() bool {
	return t == OperationNormal || t == OperationConsume
}

// DefaultDelayDays is the delay proposed for a new partner selection
const DefaultDelayDays = 1

// PartnerSelection is a subcontractor chosen for the run with its commercial terms
type PartnerSelection struct {
	PartnerID uuid.UUID       `json:"partner_id"`
	Default   bool            `json:"default"`
	Price     decimal.Decimal `json:"price"`
	DelayDays int             `json:"delay_days"`
	MinQty    decimal.Decimal `json:"min_qty"`
}

// NewPartnerSelection creates a selection with the default delay
func NewPartnerSelection(partnerID uuid.UUID) PartnerSelection {
	return PartnerSelection{PartnerID: partnerID, DelayDays: DefaultDelayDays}
}

// WorksheetLine is an editable copy of a raw or finished move. It never
// references the live move it was copied from.
type WorksheetLine struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	UOM            string          `json:"uom"`
	LocationID     uuid.UUID       `json:"location_id"`
	LocationDestID uuid.UUID       `json:"location_dest_id"`
	DateExpected   time.Time       `json:"date_expected"`
	Note           string          `json:"note,omitempty"`
	Origin         string          `json:"origin,omitempty"`
	UnitFactor     decimal.Decimal `json:"unit_factor"`
	WorkOrderID    *uuid.UUID      `json:"work_order_id,omitempty"`
	OperationID    *uuid.UUID      `json:"operation_id,omitempty"`
	WarehouseID    *uuid.UUID      `json:"warehouse_id,omitempty"`

	QtyAvailable      decimal.Decimal `json:"qty_available"`
	LocationAvailable *uuid.UUID      `json:"location_available,omitempty"`
}

// LineFromMove copies a move into a worksheet line
func LineFromMove(m *inventory.StockMove) WorksheetLine {
	return WorksheetLine{
		ID:             uuid.New(),
		ProductID:      m.ProductID,
		Name:           m.Name,
		Quantity:       m.Quantity,
		UOM:            m.UOM,
		LocationID:     m.LocationID,
		LocationDestID: m.LocationDestID,
		DateExpected:   m.DateExpected,
		Note:           m.Note,
		Origin:         m.Origin,
		UnitFactor:     m.UnitFactor,
		WorkOrderID:    m.WorkOrderID,
		OperationID:    m.OperationID,
		WarehouseID:    m.WarehouseID,
	}
}

// Defaults are the initial flag values of a new worksheet
type Defaults struct {
	CreatePurchaseOrder  bool
	MergePurchaseOrder   bool
	ConfirmPurchaseOrder bool
	SameProductInOut     bool
}

// DefaultFlags returns the stock defaults: purchase orders are created and confirmed, never merged
func DefaultFlags() Defaults {
	return Defaults{CreatePurchaseOrder: true, ConfirmPurchaseOrder: true}
}

// Worksheet is the transient editing document of an external production run
type Worksheet struct {
	ID    uuid.UUID `json:"id"`
	Scope Scope     `json:"scope"`

	Partners      []PartnerSelection `json:"partners"`
	RawLines      []WorksheetLine    `json:"raw_lines"`
	FinishedLines []WorksheetLine    `json:"finished_lines"`

	CreatePurchaseOrder  bool `json:"create_purchase_order"`
	MergePurchaseOrder   bool `json:"merge_purchase_order"`
	ConfirmPurchaseOrder bool `json:"confirm_purchase_order"`
	SameProductInOut     bool `json:"same_product_in_out"`

	OperationType        OperationType   `json:"operation_type"`
	ConsumeProductID     *uuid.UUID      `json:"consume_product_id,omitempty"`
	ConsumeBOMID         *uuid.UUID      `json:"consume_bom_id,omitempty"`
	ConsumeQuantity      decimal.Decimal `json:"consume_quantity"`
	ConsumePickingTypeID *uuid.UUID      `json:"consume_picking_type_id,omitempty"`

	RequestDate        time.Time  `json:"request_date"`
	ExternalLocationID *uuid.UUID `json:"external_location_id,omitempty"`
	// StockPartnerID selects whose location is used for availability checks
	StockPartnerID *uuid.UUID `json:"stock_partner_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWorksheet creates an empty worksheet for the scope
func NewWorksheet(scope Scope, defaults Defaults, now time.Time) (*Worksheet, error) {
	if scope.ProductionID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Production order is required")
	}
	if scope.IsWorkOrder() && (scope.WorkOrderID == nil || *scope.WorkOrderID == uuid.Nil) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Work order is required")
	}
	return &Worksheet{
		ID:                   uuid.New(),
		Scope:                scope,
		CreatePurchaseOrder:  defaults.CreatePurchaseOrder,
		MergePurchaseOrder:   defaults.MergePurchaseOrder,
		ConfirmPurchaseOrder: defaults.ConfirmPurchaseOrder,
		SameProductInOut:     defaults.SameProductInOut,
		OperationType:        OperationNormal,
		ConsumeQuantity:      decimal.NewFromInt(1),
		RequestDate:          now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Validate checks the preconditions of a commit
func (w *Worksheet) Validate() error {
	partners := SelectedPartnerIDs(w)
	if len(partners) == 0 {
		return shared.NewValidationError("No external partner set")
	}
	if !w.CreatePurchaseOrder && len(partners) != 1 {
		return shared.NewValidationError("Exactly one external partner is allowed when purchase orders are not created automatically, got %d", len(partners))
	}
	if !w.OperationType.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unknown operation type "+string(w.OperationType))
	}
	for _, lines := range [][]WorksheetLine{w.RawLines, w.FinishedLines} {
		for _, l := range lines {
			if !l.Quantity.IsPositive() {
				return shared.NewValidationError("Quantity of line %q must be positive, got %s", l.Name, l.Quantity.String())
			}
		}
	}
	return nil
}

// Partner returns the selection of the partner, if selected
func (w *Worksheet) Partner(partnerID uuid.UUID) (PartnerSelection, bool) {
	for _, p := range w.Partners {
		if p.PartnerID == partnerID {
			return p, true
		}
	}
	return PartnerSelection{}, false
}

// SelectedPartnerIDs returns the distinct selected partners in selection order
func SelectedPartnerIDs(w *Worksheet) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(w.Partners))
	ids := make([]uuid.UUID, 0, len(w.Partners))
	for _, p := range w.Partners {
		if p.PartnerID == uuid.Nil {
			continue
		}
		if _, ok := seen[p.PartnerID]; ok {
			continue
		}
		seen[p.PartnerID] = struct{}{}
		ids = append(ids, p.PartnerID)
	}
	return ids
}

// RawMaterialDate is the date raw materials must leave so the subcontractor
// can deliver on the request date
func RawMaterialDate(requestDate time.Time, delayDays int) time.Time {
	if delayDays < 0 {
		delayDays = 0
	}
	return requestDate.AddDate(0, 0, -delayDays)
}

// ApplyRequestDate propagates the request date to every line. Raw lines are
// moved back by the lead time of their product.
func ApplyRequestDate(w *Worksheet, leadTimes map[uuid.UUID]int) {
	for i := range w.FinishedLines {
		w.FinishedLines[i].DateExpected = w.RequestDate
	}
	for i := range w.RawLines {
		w.RawLines[i].DateExpected = RawMaterialDate(w.RequestDate, leadTimes[w.RawLines[i].ProductID])
	}
}

// ApplyExternalLocation routes raw lines to the location and finished lines from it
func ApplyExternalLocation(w *Worksheet, locationID uuid.UUID) {
	w.ExternalLocationID = &locationID
	for i := range w.RawLines {
		w.RawLines[i].LocationDestID = locationID
	}
	for i := range w.FinishedLines {
		w.FinishedLines[i].LocationID = locationID
	}
}
