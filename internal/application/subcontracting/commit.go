package subcontracting

import (
	"context"
	"fmt"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// commit cancels the scope's live lines, creates the confirmed per-partner
// moves and moves the order (or work order) to external.
func (r *run) commit(ctx context.Context) error {
	if err := r.cancelScopeLines(ctx); err != nil {
		return err
	}

	touched := make([]uuid.UUID, 0)
	seen := map[uuid.UUID]bool{}
	touch := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			touched = append(touched, id)
		}
	}

	for _, p := range r.partners {
		partnerID := p.ID
		for _, line := range r.ws.FinishedLines {
			m, err := r.newMove(line, line.LocationID, line.LocationDestID, partnerID)
			if err != nil {
				return err
			}
			m.DateExpected = r.ws.RequestDate
			orderID := r.order.ID
			m.ProductionID = &orderID
			if err := r.confirmMove(ctx, m); err != nil {
				return err
			}
			touch(m.ProductID)
		}

		for _, line := range r.ws.RawLines {
			if !r.ws.Scope.IncludesLine(line) {
				continue
			}
			product, err := r.product(ctx, line.ProductID)
			if err != nil {
				return err
			}
			m, err := r.newMove(line, r.order.LocationSrcID, line.LocationDestID, partnerID)
			if err != nil {
				return err
			}
			m.DateExpected = subcontracting.RawMaterialDate(r.ws.RequestDate, product.LeadTimeDays())
			orderID := r.order.ID
			m.ExternalProductionID = &orderID
			if err := r.confirmMove(ctx, m); err != nil {
				return err
			}
			touch(m.ProductID)
		}
	}

	if r.workOrder != nil {
		if err := r.workOrder.MarkExternal(); err != nil {
			return err
		}
		if err := r.repos.WorkOrders().SaveWithLock(ctx, r.workOrder); err != nil {
			return fmt.Errorf("failed to save work order: %w", err)
		}
		r.result.State = string(r.workOrder.State)
	} else {
		if err := r.order.MarkExternal(); err != nil {
			return err
		}
		if err := r.repos.ProductionOrders().SaveWithLock(ctx, r.order); err != nil {
			return fmt.Errorf("failed to save production order: %w", err)
		}
		r.result.State = string(r.order.State)
	}

	if r.warehouseID != uuid.Nil {
		for _, productID := range touched {
			if err := r.ports.Reorder.CheckCreateReorderRule(ctx, productID, r.warehouseID); err != nil {
				return fmt.Errorf("failed to check reorder rule: %w", err)
			}
		}
	}
	return nil
}

// cancelScopeLines cancels the live raw and finished lines of the scope,
// recording each line's state beforehand.
func (r *run) cancelScopeLines(ctx context.Context) error {
	moves, err := r.repos.StockMoves().FindByProduction(ctx, r.order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	for i := range moves {
		m := &moves[i]
		if !m.State.IsLive() {
			continue
		}
		if !r.ws.Scope.IncludesRaw(m) && !r.ws.Scope.IncludesFinished(m) {
			continue
		}
		m.StampOriginalState()
		if err := r.cancelMove(ctx, m); err != nil {
			return err
		}
	}
	r.logger.Debug("Order lines cancelled for external production",
		zap.String("production_order_id", r.order.ID.String()),
		zap.Int("cancelled", len(r.result.CancelledMoveIDs)),
	)
	return nil
}

func (r *run) newMove(line subcontracting.WorksheetLine, locationID, locationDestID, partnerID uuid.UUID) (*inventory.StockMove, error) {
	m, err := inventory.NewStockMove(line.Name, line.ProductID, line.Quantity, line.UOM, locationID, locationDestID)
	if err != nil {
		return nil, err
	}
	m.Note = line.Note
	m.Origin = r.order.Name
	if !line.UnitFactor.IsZero() {
		m.UnitFactor = line.UnitFactor
	}
	m.WarehouseID = line.WarehouseID
	m.WorkOrderID = line.WorkOrderID
	m.OperationID = line.OperationID
	m.PartnerID = &partnerID
	return m, nil
}

func (r *run) confirmMove(ctx context.Context, m *inventory.StockMove) error {
	if err := m.Confirm(); err != nil {
		return err
	}
	if err := r.repos.StockMoves().Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save move: %w", err)
	}
	return nil
}
