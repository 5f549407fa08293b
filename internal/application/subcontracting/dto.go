package subcontracting

import (
	"time"

	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenWorksheetRequest opens a worksheet on a production order or one of its work orders.
// Exactly one of ProductionOrderID and WorkOrderID is set.
type OpenWorksheetRequest struct {
	ProductionOrderID *uuid.UUID       `json:"production_order_id" binding:"required_without=WorkOrderID,excluded_with=WorkOrderID"`
	WorkOrderID       *uuid.UUID       `json:"work_order_id" binding:"required_without=ProductionOrderID"`
	OperationType     string           `json:"operation_type" binding:"omitempty,oneof=normal consume"`
	ConsumeProductID  *uuid.UUID       `json:"consume_product_id"`
	ConsumeBOMID      *uuid.UUID       `json:"consume_bom_id"`
	ConsumeQuantity   *decimal.Decimal `json:"consume_quantity"`
}

// PartnerSelectionInput is a subcontractor picked on the worksheet
type PartnerSelectionInput struct {
	PartnerID uuid.UUID        `json:"partner_id" binding:"required"`
	Default   bool             `json:"default"`
	Price     *decimal.Decimal `json:"price"`
	DelayDays *int             `json:"delay_days" binding:"omitempty,min=0"`
	MinQty    *decimal.Decimal `json:"min_qty"`
}

// ToSelection converts the input, applying the default delay
func (in PartnerSelectionInput) ToSelection() subcontracting.PartnerSelection {
	sel := subcontracting.NewPartnerSelection(in.PartnerID)
	sel.Default = in.Default
	if in.Price != nil {
		sel.Price = *in.Price
	}
	if in.DelayDays != nil {
		sel.DelayDays = *in.DelayDays
	}
	if in.MinQty != nil {
		sel.MinQty = *in.MinQty
	}
	return sel
}

// WorksheetLineInput is an edited raw or finished line. A line read from the
// worksheet can be sent back unchanged.
type WorksheetLineInput struct {
	ID             *uuid.UUID       `json:"id"`
	ProductID      uuid.UUID        `json:"product_id" binding:"required"`
	Name           string           `json:"name" binding:"max=200"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UOM            string           `json:"uom" binding:"max=20"`
	LocationID     uuid.UUID        `json:"location_id" binding:"required"`
	LocationDestID uuid.UUID        `json:"location_dest_id" binding:"required"`
	DateExpected   *time.Time       `json:"date_expected"`
	Note           string           `json:"note" binding:"max=2000"`
	UnitFactor     *decimal.Decimal `json:"unit_factor"`
	WorkOrderID    *uuid.UUID       `json:"work_order_id"`
	OperationID    *uuid.UUID       `json:"operation_id"`
	WarehouseID    *uuid.UUID       `json:"warehouse_id"`
}

// ToLine converts the input into a worksheet line. A missing unit factor means 1.
func (in WorksheetLineInput) ToLine() subcontracting.WorksheetLine {
	id := uuid.New()
	if in.ID != nil {
		id = *in.ID
	}
	line := subcontracting.WorksheetLine{
		ID:             id,
		ProductID:      in.ProductID,
		Name:           in.Name,
		Quantity:       in.Quantity,
		UOM:            in.UOM,
		LocationID:     in.LocationID,
		LocationDestID: in.LocationDestID,
		Note:           in.Note,
		UnitFactor:     decimal.NewFromInt(1),
		WorkOrderID:    in.WorkOrderID,
		OperationID:    in.OperationID,
		WarehouseID:    in.WarehouseID,
	}
	if in.UnitFactor != nil && !in.UnitFactor.IsZero() {
		line.UnitFactor = *in.UnitFactor
	}
	if in.DateExpected != nil {
		line.DateExpected = *in.DateExpected
	}
	return line
}

// UpdateWorksheetRequest replaces the editable fields of a worksheet. Nil fields are left unchanged.
type UpdateWorksheetRequest struct {
	Partners             []PartnerSelectionInput `json:"partners" binding:"omitempty,partner_selection,dive"`
	RawLines             []WorksheetLineInput    `json:"raw_lines" binding:"omitempty,dive"`
	FinishedLines        []WorksheetLineInput    `json:"finished_lines" binding:"omitempty,dive"`
	CreatePurchaseOrder  *bool                   `json:"create_purchase_order"`
	MergePurchaseOrder   *bool                   `json:"merge_purchase_order"`
	ConfirmPurchaseOrder *bool                   `json:"confirm_purchase_order"`
	SameProductInOut     *bool                   `json:"same_product_in_out"`
	OperationType        *string                 `json:"operation_type" binding:"omitempty,oneof=normal consume"`
	ConsumeProductID     *uuid.UUID              `json:"consume_product_id"`
	ConsumeBOMID         *uuid.UUID              `json:"consume_bom_id"`
	ConsumeQuantity      *decimal.Decimal        `json:"consume_quantity"`
	RequestDate          *time.Time              `json:"request_date"`
	ExternalLocationID   *uuid.UUID              `json:"external_location_id"`
	StockPartnerID       *uuid.UUID              `json:"stock_partner_id"`
}

// PartnerResult lists the documents generated for one subcontractor
type PartnerResult struct {
	PartnerID         uuid.UUID   `json:"partner_id"`
	OutgoingPickingID *uuid.UUID  `json:"outgoing_picking_id,omitempty"`
	IncomingPickingID *uuid.UUID  `json:"incoming_picking_id,omitempty"`
	PurchaseOrderID   *uuid.UUID  `json:"purchase_order_id,omitempty"`
	PurchaseLineIDs   []uuid.UUID `json:"purchase_line_ids,omitempty"`
}

// ProduceResult is the outcome of a ProduceExternally call
type ProduceResult struct {
	ProductionOrderID uuid.UUID       `json:"production_order_id"`
	WorkOrderID       *uuid.UUID      `json:"work_order_id,omitempty"`
	State             string          `json:"state"`
	Partners          []PartnerResult `json:"partners"`
	CancelledMoveIDs  []uuid.UUID     `json:"cancelled_move_ids"`
}

func (r *ProduceResult) partner(id uuid.UUID) *PartnerResult {
	for i := range r.Partners {
		if r.Partners[i].PartnerID == id {
			return &r.Partners[i]
		}
	}
	r.Partners = append(r.Partners, PartnerResult{PartnerID: id})
	return &r.Partners[len(r.Partners)-1]
}
