package subcontracting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/domain/catalog"
	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/partner"
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/erp/subcontracting/internal/domain/trade"
	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// run holds the state of one ProduceExternally call. Everything it touches is
// loaded through the repositories of the enclosing transaction.
type run struct {
	ws     *subcontracting.Worksheet
	repos  Repositories
	ports  Ports
	now    time.Time
	logger *zap.Logger

	order     *manufacturing.ProductionOrder
	workOrder *manufacturing.WorkOrder
	partners  []*partner.Partner
	locations map[uuid.UUID]uuid.UUID
	outType   *inventory.PickingType
	inType    *inventory.PickingType
	// warehouseID receives the reorder rules of touched products
	warehouseID uuid.UUID
	finished    *catalog.Product

	products   map[uuid.UUID]*catalog.Product
	incoming   map[uuid.UUID][]*inventory.StockMove
	pickingIDs []uuid.UUID
	purchases  []*trade.PurchaseOrder
	result     *ProduceResult
}

// ProduceExternally commits a worksheet: the scope's order lines are cancelled
// and replaced by per-partner moves, one outbound and one inbound transfer is
// created per partner, and purchase orders are derived when requested. All
// writes share one transaction. A worksheet can only be committed once.
func (s *ExternalProductionService) ProduceExternally(ctx context.Context, id uuid.UUID) (*ProduceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "produce_externally")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrWorksheetID, id.String())

	fail := func(err error) (*ProduceResult, error) {
		telemetry.RecordError(span, err)
		s.metrics.RecordEngineError(ctx, errorCode(err))
		return nil, err
	}

	first, err := s.store.MarkSubmitted(ctx, id)
	if err != nil {
		return fail(fmt.Errorf("failed to mark worksheet submitted: %w", err))
	}
	if !first {
		return fail(shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Worksheet %s was already submitted", id)))
	}

	var r *run
	err = func() error {
		ws, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := ws.Validate(); err != nil {
			return err
		}
		return s.txScope.Execute(ctx, func(repos Repositories) error {
			r = &run{
				ws:        ws,
				repos:     repos,
				ports:     s.ports(repos),
				now:       s.now(),
				logger:    s.logger,
				locations: map[uuid.UUID]uuid.UUID{},
				products:  map[uuid.UUID]*catalog.Product{},
				incoming:  map[uuid.UUID][]*inventory.StockMove{},
				result:    &ProduceResult{ProductionOrderID: ws.Scope.ProductionID, WorkOrderID: ws.Scope.WorkOrderID},
			}
			if err := r.prepare(ctx); err != nil {
				return err
			}
			if err := r.commit(ctx); err != nil {
				return err
			}
			if err := r.createPickings(ctx); err != nil {
				return err
			}
			if ws.CreatePurchaseOrder {
				if err := r.createPurchases(ctx); err != nil {
					return err
				}
			}
			return nil
		})
	}()
	if err != nil {
		if releaseErr := s.store.ReleaseSubmitted(ctx, id); releaseErr != nil {
			s.logger.Warn("Failed to release worksheet submission marker",
				zap.String("worksheet_id", id.String()), zap.Error(releaseErr))
		}
		s.logger.Info("External production rejected",
			zap.String("worksheet_id", id.String()),
			zap.String("code", errorCode(err)),
			zap.Error(err),
		)
		return fail(err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to discard committed worksheet", zap.String("worksheet_id", id.String()), zap.Error(err))
	}
	s.publishEvents(ctx, r)

	purchaseLines := 0
	for _, p := range r.result.Partners {
		purchaseLines += len(p.PurchaseLineIDs)
	}
	s.metrics.RecordProduction(ctx, string(r.ws.Scope.Kind), len(r.pickingIDs), purchaseLines)
	s.logger.Info("Production sent to external partners",
		zap.String("worksheet_id", id.String()),
		zap.String("production_order_id", r.order.ID.String()),
		zap.String("scope", string(r.ws.Scope.Kind)),
		zap.Int("partners", len(r.partners)),
		zap.Int("pickings", len(r.pickingIDs)),
		zap.Int("purchase_lines", purchaseLines),
	)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductionOrderID, r.order.ID.String(),
		"partners_count", len(r.partners),
		"pickings_count", len(r.pickingIDs),
	)
	telemetry.SetOK(span)
	return r.result, nil
}

func (s *ExternalProductionService) publishEvents(ctx context.Context, r *run) {
	if s.eventPublisher == nil {
		return
	}
	var events []shared.DomainEvent
	events = append(events, r.order.GetDomainEvents()...)
	r.order.ClearDomainEvents()
	if r.workOrder != nil {
		events = append(events, r.workOrder.GetDomainEvents()...)
		r.workOrder.ClearDomainEvents()
	}
	for _, po := range r.purchases {
		events = append(events, po.GetDomainEvents()...)
		po.ClearDomainEvents()
	}
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish external production events", zap.Error(err))
	}
}

func errorCode(err error) string {
	if code := shared.ErrorCode(err); code != "" {
		return code
	}
	return "INTERNAL_ERROR"
}

// prepare loads every record of the run and checks all preconditions before the first write
func (r *run) prepare(ctx context.Context) error {
	order, err := r.repos.ProductionOrders().FindByID(ctx, r.ws.Scope.ProductionID)
	if err != nil {
		return fmt.Errorf("failed to load production order: %w", err)
	}
	r.order = order

	if r.ws.Scope.IsWorkOrder() {
		wo, err := r.repos.WorkOrders().FindByID(ctx, *r.ws.Scope.WorkOrderID)
		if err != nil {
			return fmt.Errorf("failed to load work order: %w", err)
		}
		if wo.ProductionID != order.ID {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Work order %s does not belong to %s", wo.Name, order.Name))
		}
		if !wo.State.CanTransitionTo(manufacturing.WorkOrderStateExternal) {
			return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Work order %s cannot be produced externally in state %s", wo.Name, wo.State))
		}
		r.workOrder = wo
	} else if !order.State.CanTransitionTo(manufacturing.ProductionStateExternal) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Production order %s cannot be produced externally in state %s", order.Name, order.State))
	}

	for _, partnerID := range subcontracting.SelectedPartnerIDs(r.ws) {
		p, err := r.repos.Partners().FindByID(ctx, partnerID)
		if err != nil {
			return fmt.Errorf("failed to load partner %s: %w", partnerID, err)
		}
		loc, err := p.RequireLocation()
		if err != nil {
			return err
		}
		r.partners = append(r.partners, p)
		r.locations[p.ID] = loc
	}

	if err := r.resolvePickingTypes(ctx); err != nil {
		return err
	}
	if err := r.resolveWarehouse(ctx); err != nil {
		return err
	}

	if r.ws.CreatePurchaseOrder {
		finished, err := r.product(ctx, order.ProductID)
		if err != nil {
			return err
		}
		if _, err := catalog.ServiceCodeFor(finished); err != nil {
			return err
		}
		r.finished = finished
	}
	return nil
}

// resolvePickingTypes finds the outgoing and incoming operation types of the
// warehouse owning the order's operation type.
func (r *run) resolvePickingTypes(ctx context.Context) error {
	orderType, err := r.repos.PickingTypes().FindByID(ctx, r.order.PickingTypeID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewConfigurationError("Production order %s has no operation type", r.order.Name)
	}
	if err != nil {
		return err
	}
	if orderType.WarehouseID == nil {
		return shared.NewConfigurationError("Operation type %s is not attached to a warehouse", orderType.Name)
	}
	wh, err := r.repos.Warehouses().FindByID(ctx, *orderType.WarehouseID)
	if err != nil {
		return fmt.Errorf("failed to load warehouse: %w", err)
	}

	find := func(code inventory.PickingTypeCode) (*inventory.PickingType, error) {
		pt, err := r.repos.PickingTypes().FindActiveByCode(ctx, wh.ID, code)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewConfigurationError("No active %s operation type configured for warehouse %s", code, wh.Name)
		}
		return pt, err
	}
	if r.outType, err = find(inventory.PickingTypeOutgoing); err != nil {
		return err
	}
	if r.inType, err = find(inventory.PickingTypeIncoming); err != nil {
		return err
	}
	r.warehouseID = wh.ID
	return nil
}

// resolveWarehouse prefers the warehouse of the order's source location for reorder rules
func (r *run) resolveWarehouse(ctx context.Context) error {
	loc, err := r.repos.Locations().FindByID(ctx, r.order.LocationSrcID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if loc.WarehouseID != nil {
		r.warehouseID = *loc.WarehouseID
	}
	return nil
}

func (r *run) product(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	p, err := r.repos.Products().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	r.products[id] = p
	return p, nil
}

func (r *run) cancelMove(ctx context.Context, m *inventory.StockMove) error {
	if err := m.Cancel(); err != nil {
		return err
	}
	if err := r.repos.StockMoves().Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save move %s: %w", m.ID, err)
	}
	r.result.CancelledMoveIDs = append(r.result.CancelledMoveIDs, m.ID)
	return nil
}
