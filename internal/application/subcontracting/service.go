package subcontracting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const spanService = "external_production"

// ExternalProductionService drives the external production workflow: it builds
// worksheets from production orders and commits them into moves, transfers and
// purchase orders.
type ExternalProductionService struct {
	repos          Repositories
	txScope        TransactionScope
	store          subcontracting.WorksheetStore
	ports          PortsFactory
	defaults       subcontracting.Defaults
	eventPublisher shared.EventPublisher
	metrics        *telemetry.SubcontractingMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewExternalProductionService creates a new ExternalProductionService.
// repos serves reads outside of a commit; txScope serves the commit itself.
func NewExternalProductionService(
	repos Repositories,
	txScope TransactionScope,
	store subcontracting.WorksheetStore,
	logger *zap.Logger,
) *ExternalProductionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExternalProductionService{
		repos:    repos,
		txScope:  txScope,
		store:    store,
		ports:    DefaultPorts,
		defaults: subcontracting.DefaultFlags(),
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ExternalProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the workflow counters
func (s *ExternalProductionService) SetMetrics(metrics *telemetry.SubcontractingMetrics) {
	s.metrics = metrics
}

// SetDefaults overrides the initial flags of new worksheets
func (s *ExternalProductionService) SetDefaults(defaults subcontracting.Defaults) {
	s.defaults = defaults
}

// SetPortsFactory replaces the collaborators bound to each run
func (s *ExternalProductionService) SetPortsFactory(factory PortsFactory) {
	s.ports = factory
}

// SetClock replaces the time source
func (s *ExternalProductionService) SetClock(now func() time.Time) {
	s.now = now
}

// Open dispatches to OpenForProduction or OpenForWorkOrder and applies the requested operation type
func (s *ExternalProductionService) Open(ctx context.Context, req OpenWorksheetRequest) (*subcontracting.Worksheet, error) {
	var (
		ws  *subcontracting.Worksheet
		err error
	)
	switch {
	case req.WorkOrderID != nil:
		ws, err = s.OpenForWorkOrder(ctx, *req.WorkOrderID)
	case req.ProductionOrderID != nil:
		ws, err = s.OpenForProduction(ctx, *req.ProductionOrderID)
	default:
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Either production_order_id or work_order_id is required")
	}
	if err != nil {
		return nil, err
	}
	if req.OperationType == "" || subcontracting.OperationType(req.OperationType) == subcontracting.OperationNormal {
		return ws, nil
	}
	return s.SetOperationType(ctx, ws.ID, subcontracting.OperationType(req.OperationType), req.ConsumeProductID, req.ConsumeBOMID, req.ConsumeQuantity)
}

// OpenForProduction creates a worksheet covering the whole production order
func (s *ExternalProductionService) OpenForProduction(ctx context.Context, productionID uuid.UUID) (*subcontracting.Worksheet, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "open_for_production")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrProductionOrderID, productionID.String())

	order, err := s.repos.ProductionOrders().FindByID(ctx, productionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ws, err := subcontracting.NewWorksheet(subcontracting.OrderScope(order.ID), s.defaults, s.now())
	if err != nil {
		return nil, err
	}
	return s.openWorksheet(ctx, span, ws, order)
}

// OpenForWorkOrder creates a worksheet covering one work order of a production order
func (s *ExternalProductionService) OpenForWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*subcontracting.Worksheet, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "open_for_work_order")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrWorkOrderID, workOrderID.String())

	wo, err := s.repos.WorkOrders().FindByID(ctx, workOrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	order, err := s.repos.ProductionOrders().FindByID(ctx, wo.ProductionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	operationID := wo.OperationID
	ws, err := subcontracting.NewWorksheet(subcontracting.WorkOrderScope(order.ID, wo.ID, &operationID), s.defaults, s.now())
	if err != nil {
		return nil, err
	}
	return s.openWorksheet(ctx, span, ws, order)
}

func (s *ExternalProductionService) openWorksheet(ctx context.Context, span trace.Span, ws *subcontracting.Worksheet, order *manufacturing.ProductionOrder) (*subcontracting.Worksheet, error) {
	if err := s.copyOrderLines(ctx, ws, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if loc, err := s.warehouseStockLocation(ctx, order.LocationSrcID); err == nil {
		ws.ExternalLocationID = &loc
	} else if !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.store.Save(ctx, ws); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save worksheet: %w", err)
	}

	s.metrics.RecordWorksheetOpened(ctx, string(ws.Scope.Kind))
	s.logger.Info("External production worksheet opened",
		zap.String("worksheet_id", ws.ID.String()),
		zap.String("production_order_id", order.ID.String()),
		zap.String("scope", string(ws.Scope.Kind)),
		zap.Int("raw_lines", len(ws.RawLines)),
		zap.Int("finished_lines", len(ws.FinishedLines)),
	)
	telemetry.SetOK(span)
	return ws, nil
}

// copyOrderLines copies the live lines of the scope onto the worksheet. The order is not touched.
func (s *ExternalProductionService) copyOrderLines(ctx context.Context, ws *subcontracting.Worksheet, order *manufacturing.ProductionOrder) error {
	moves, err := s.repos.StockMoves().FindByProduction(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	ws.RawLines = ws.RawLines[:0]
	ws.FinishedLines = ws.FinishedLines[:0]
	for i := range moves {
		m := &moves[i]
		if !m.State.IsLive() {
			continue
		}
		switch {
		case ws.Scope.IncludesRaw(m):
			ws.RawLines = append(ws.RawLines, subcontracting.LineFromMove(m))
		case ws.Scope.CopiesFinished(m):
			ws.FinishedLines = append(ws.FinishedLines, subcontracting.LineFromMove(m))
		}
	}
	return nil
}

// warehouseStockLocation returns the stock location of the warehouse owning locationID
func (s *ExternalProductionService) warehouseStockLocation(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error) {
	loc, err := s.repos.Locations().FindByID(ctx, locationID)
	if err != nil {
		return uuid.Nil, err
	}
	if loc.WarehouseID == nil {
		return uuid.Nil, shared.ErrNotFound
	}
	wh, err := s.repos.Warehouses().FindByID(ctx, *loc.WarehouseID)
	if err != nil {
		return uuid.Nil, err
	}
	return wh.StockLocationID, nil
}

// GetWorksheet returns a worksheet
func (s *ExternalProductionService) GetWorksheet(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	return s.store.Get(ctx, id)
}

// SetOperationType switches how raw lines are proposed. "normal" copies the order
// lines again; "consume" replaces raw lines with the exploded BOM of the chosen product.
func (s *ExternalProductionService) SetOperationType(ctx context.Context, id uuid.UUID, opType subcontracting.OperationType, productID, bomID *uuid.UUID, qty *decimal.Decimal) (*subcontracting.Worksheet, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "set_operation_type")
	defer span.End()

	if !opType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown operation type %q", opType))
	}
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ws.OperationType = opType
	if productID != nil {
		ws.ConsumeProductID = productID
	}
	if bomID != nil {
		ws.ConsumeBOMID = bomID
	}
	if qty != nil {
		ws.ConsumeQuantity = *qty
	}
	if err := s.rebuildRawLines(ctx, ws); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ws.UpdatedAt = s.now()
	if err := s.store.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to save worksheet: %w", err)
	}
	telemetry.SetOK(span)
	return ws, nil
}

func (s *ExternalProductionService) rebuildRawLines(ctx context.Context, ws *subcontracting.Worksheet) error {
	order, err := s.repos.ProductionOrders().FindByID(ctx, ws.Scope.ProductionID)
	if err != nil {
		return err
	}
	if ws.OperationType == subcontracting.OperationNormal {
		finished := ws.FinishedLines
		if err := s.copyOrderLines(ctx, ws, order); err != nil {
			return err
		}
		ws.FinishedLines = finished
		return nil
	}

	productID := order.ProductID
	if ws.ConsumeProductID != nil {
		productID = *ws.ConsumeProductID
	}
	var bom *manufacturing.BOM
	if ws.ConsumeBOMID != nil {
		bom, err = s.repos.BOMs().FindByID(ctx, *ws.ConsumeBOMID)
	} else {
		bom, err = s.repos.BOMs().FindByProduct(ctx, productID, &order.PickingTypeID)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError("No bill of materials found for the product to consume")
	}
	if err != nil {
		return err
	}
	qty := ws.ConsumeQuantity
	if !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}
	pickingTypeID := order.PickingTypeID
	if ws.ConsumePickingTypeID != nil {
		pickingTypeID = *ws.ConsumePickingTypeID
	}

	_, requirements, err := s.ports(s.repos).Exploder.Explode(ctx, bom, productID, qty, &pickingTypeID)
	if err != nil {
		return err
	}

	dest := order.LocationDestID
	if ws.ExternalLocationID != nil {
		dest = *ws.ExternalLocationID
	}
	lines := make([]subcontracting.WorksheetLine, 0, len(requirements))
	for _, req := range requirements {
		product, err := s.repos.Products().FindByID(ctx, req.Line.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load component %s: %w", req.Line.ProductID, err)
		}
		line := subcontracting.WorksheetLine{
			ID:             uuid.New(),
			ProductID:      product.ID,
			Name:           product.DisplayName(),
			Quantity:       req.Quantity,
			UOM:            req.Line.UOM,
			LocationID:     order.LocationSrcID,
			LocationDestID: dest,
			DateExpected:   subcontracting.RawMaterialDate(ws.RequestDate, product.LeadTimeDays()),
			UnitFactor:     decimal.NewFromInt(1),
			OperationID:    req.Line.OperationID,
		}
		if ws.Scope.IsWorkOrder() {
			line.WorkOrderID = ws.Scope.WorkOrderID
		}
		lines = append(lines, line)
	}
	ws.RawLines = lines
	return nil
}

// UpdateWorksheet replaces the editable fields and re-runs the onchange rules
// for the request date and the external location.
func (s *ExternalProductionService) UpdateWorksheet(ctx context.Context, id uuid.UUID, req UpdateWorksheetRequest) (*subcontracting.Worksheet, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "update_worksheet")
	defer span.End()

	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Partners != nil {
		ws.Partners = make([]subcontracting.PartnerSelection, 0, len(req.Partners))
		for _, p := range req.Partners {
			ws.Partners = append(ws.Partners, p.ToSelection())
		}
	}
	if req.RawLines != nil {
		ws.RawLines = toLines(req.RawLines)
	}
	if req.FinishedLines != nil {
		ws.FinishedLines = toLines(req.FinishedLines)
	}
	if req.CreatePurchaseOrder != nil {
		ws.CreatePurchaseOrder = *req.CreatePurchaseOrder
	}
	if req.MergePurchaseOrder != nil {
		ws.MergePurchaseOrder = *req.MergePurchaseOrder
	}
	if req.ConfirmPurchaseOrder != nil {
		ws.ConfirmPurchaseOrder = *req.ConfirmPurchaseOrder
	}
	if req.SameProductInOut != nil {
		ws.SameProductInOut = *req.SameProductInOut
	}
	if req.StockPartnerID != nil {
		ws.StockPartnerID = req.StockPartnerID
	}

	consumeChanged := req.ConsumeProductID != nil || req.ConsumeBOMID != nil || req.ConsumeQuantity != nil
	if req.ConsumeProductID != nil {
		ws.ConsumeProductID = req.ConsumeProductID
	}
	if req.ConsumeBOMID != nil {
		ws.ConsumeBOMID = req.ConsumeBOMID
	}
	if req.ConsumeQuantity != nil {
		ws.ConsumeQuantity = *req.ConsumeQuantity
	}
	if req.OperationType != nil {
		opType := subcontracting.OperationType(*req.OperationType)
		if !opType.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown operation type %q", opType))
		}
		consumeChanged = consumeChanged || opType != ws.OperationType
		ws.OperationType = opType
	}
	if consumeChanged && req.RawLines == nil {
		if err := s.rebuildRawLines(ctx, ws); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if req.RequestDate != nil {
		ws.RequestDate = *req.RequestDate
		leadTimes, err := s.leadTimes(ctx, ws.RawLines)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		subcontracting.ApplyRequestDate(ws, leadTimes)
	}
	if req.ExternalLocationID != nil {
		subcontracting.ApplyExternalLocation(ws, *req.ExternalLocationID)
	}

	ws.UpdatedAt = s.now()
	if err := s.store.Save(ctx, ws); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save worksheet: %w", err)
	}
	telemetry.SetOK(span)
	return ws, nil
}

func toLines(inputs []WorksheetLineInput) []subcontracting.WorksheetLine {
	lines := make([]subcontracting.WorksheetLine, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, in.ToLine())
	}
	return lines
}

func (s *ExternalProductionService) leadTimes(ctx context.Context, lines []subcontracting.WorksheetLine) (map[uuid.UUID]int, error) {
	leadTimes := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if _, ok := leadTimes[line.ProductID]; ok {
			continue
		}
		product, err := s.repos.Products().FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", line.ProductID, err)
		}
		leadTimes[line.ProductID] = product.LeadTimeDays()
	}
	return leadTimes, nil
}

// PrefillVendors proposes the vendors of the service product of the order BOM.
// In work order scope only vendors registered for the work order's operation are used.
func (s *ExternalProductionService) PrefillVendors(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "prefill_vendors")
	defer span.End()

	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.repos.ProductionOrders().FindByID(ctx, ws.Scope.ProductionID)
	if err != nil {
		return nil, err
	}
	bom, err := s.repos.BOMs().FindByID(ctx, order.BOMID)
	if err != nil {
		return nil, err
	}

	ws.Partners = ws.Partners[:0]
	if bom.ExternalProductID != nil {
		sellers, err := s.repos.SupplierInfos().FindByProduct(ctx, *bom.ExternalProductID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		seen := make(map[uuid.UUID]bool, len(sellers))
		for _, seller := range sellers {
			if ws.Scope.IsWorkOrder() && !sameID(seller.OperationID, ws.Scope.OperationID) {
				continue
			}
			if seen[seller.PartnerID] {
				continue
			}
			seen[seller.PartnerID] = true
			ws.Partners = append(ws.Partners, subcontracting.PartnerSelection{
				PartnerID: seller.PartnerID,
				Price:     seller.Price,
				DelayDays: seller.DelayDays,
				MinQty:    seller.MinQty,
			})
		}
	}

	ws.UpdatedAt = s.now()
	if err := s.store.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to save worksheet: %w", err)
	}
	telemetry.SetAttributes(span, "partners_count", len(ws.Partners))
	telemetry.SetOK(span)
	return ws, nil
}

// ComputeStock stamps every line with its on-hand quantity. The location is the
// stock partner's location, else the external location, else the stock location
// of the default warehouse.
func (s *ExternalProductionService) ComputeStock(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "compute_stock")
	defer span.End()

	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	locationID, err := s.stockLocation(ctx, ws)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	stamp := func(lines []subcontracting.WorksheetLine) error {
		for i := range lines {
			qty, err := s.repos.StockQuants().QuantityAt(ctx, lines[i].ProductID, locationID)
			if err != nil {
				return fmt.Errorf("failed to read stock of %s: %w", lines[i].ProductID, err)
			}
			loc := locationID
			lines[i].QtyAvailable = qty
			lines[i].LocationAvailable = &loc
		}
		return nil
	}
	if err := stamp(ws.RawLines); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := stamp(ws.FinishedLines); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	ws.UpdatedAt = s.now()
	if err := s.store.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to save worksheet: %w", err)
	}
	telemetry.SetOK(span)
	return ws, nil
}

func (s *ExternalProductionService) stockLocation(ctx context.Context, ws *subcontracting.Worksheet) (uuid.UUID, error) {
	if ws.StockPartnerID != nil {
		p, err := s.repos.Partners().FindByID(ctx, *ws.StockPartnerID)
		if err != nil {
			return uuid.Nil, err
		}
		return p.RequireLocation()
	}
	if ws.ExternalLocationID != nil {
		return *ws.ExternalLocationID, nil
	}
	wh, err := s.repos.Warehouses().FindDefault(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, shared.NewConfigurationError("No default warehouse configured")
	}
	if err != nil {
		return uuid.Nil, err
	}
	return wh.StockLocationID, nil
}

// CloseWorksheet discards a worksheet. Closing an unknown worksheet succeeds.
func (s *ExternalProductionService) CloseWorksheet(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete worksheet: %w", err)
	}
	s.logger.Debug("External production worksheet closed", zap.String("worksheet_id", id.String()))
	return nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
