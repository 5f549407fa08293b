package subcontracting

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/partner"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// createPickings builds one outbound and one inbound transfer per partner from
// the moves confirmed by commit, then cancels the moves they replace.
func (r *run) createPickings(ctx context.Context) error {
	var start, finish *time.Time
	workOrderName := ""
	if r.workOrder != nil {
		workOrderName = r.workOrder.Name
	}

	for _, p := range r.partners {
		moves, err := r.repos.StockMoves().FindByProduction(ctx, r.order.ID)
		if err != nil {
			return fmt.Errorf("failed to load order lines: %w", err)
		}
		var rawCandidates, finishedCandidates []*inventory.StockMove
		for i := range moves {
			m := &moves[i]
			if m.State != inventory.MoveStateConfirmed || !m.IsForPartner(p.ID) {
				continue
			}
			switch {
			case m.IsFinishedOf(r.order.ID):
				finishedCandidates = append(finishedCandidates, m)
			case m.ProductionID == nil && m.ExternalProductionID != nil && *m.ExternalProductionID == r.order.ID:
				rawCandidates = append(rawCandidates, m)
			}
		}

		origin := r.ws.Scope.Origin(r.order.Name, workOrderName, p.Name)
		out, err := r.outboundPicking(ctx, p, origin, rawCandidates, finishedCandidates)
		if err != nil {
			return err
		}
		in, err := r.inboundPicking(ctx, p, origin, out, finishedCandidates)
		if err != nil {
			return err
		}

		res := r.result.partner(p.ID)
		fields := []zap.Field{zap.String("partner_id", p.ID.String())}
		attrs := []any{telemetry.SpanAttrPartnerID, p.ID}
		if out != nil {
			outID := out.ID
			res.OutgoingPickingID = &outID
			r.pickingIDs = append(r.pickingIDs, out.ID)
			start = latest(start, out.MaxDate)
			fields = append(fields, zap.String("outgoing_picking_id", out.ID.String()))
			attrs = append(attrs, "outgoing_picking_id", out.ID)
		}
		if in != nil {
			inID := in.ID
			res.IncomingPickingID = &inID
			r.pickingIDs = append(r.pickingIDs, in.ID)
			finish = latest(finish, in.MaxDate)
			fields = append(fields, zap.String("incoming_picking_id", in.ID.String()))
			attrs = append(attrs, "incoming_picking_id", in.ID)
		}

		telemetry.AddEvent(trace.SpanFromContext(ctx), "transfers.created", attrs...)
		r.logger.Debug("Subcontracting transfers created", fields...)
	}

	if r.workOrder != nil {
		r.workOrder.SetPlannedDates(start, finish)
		if err := r.repos.WorkOrders().Save(ctx, r.workOrder); err != nil {
			return fmt.Errorf("failed to save work order: %w", err)
		}
		r.order.LinkExternalPickings(r.pickingIDs...)
	} else {
		r.order.RecordExternalPickings(r.pickingIDs, start, finish)
	}
	if err := r.repos.ProductionOrders().Save(ctx, r.order); err != nil {
		return fmt.Errorf("failed to save production order: %w", err)
	}

	if !r.ws.Scope.IsWorkOrder() {
		return r.cancelLeftovers(ctx)
	}
	return nil
}

// outboundPicking ships raw materials from the order source location to the partner.
// It returns a nil picking when there is nothing to ship.
func (r *run) outboundPicking(ctx context.Context, p *partner.Partner, origin string, rawCandidates, finishedCandidates []*inventory.StockMove) (*inventory.Picking, error) {
	pick, err := inventory.NewSubcontractingPicking(inventory.OperationOpen, p.ID,
		r.order.LocationSrcID, r.locations[p.ID], r.outType.ID, r.order.ID, origin, r.now)
	if err != nil {
		return nil, err
	}
	pick.SubWorkOrderID = r.ws.Scope.WorkOrderID

	var moves []*inventory.StockMove
	switch {
	case !r.ws.Scope.IsWorkOrder():
		moves = r.copyMoves(rawCandidates, origin)
	case r.ws.SameProductInOut:
		moves = r.copyMoves(finishedCandidates, origin)
	default:
		for _, line := range r.ws.RawLines {
			if !r.ws.Scope.IncludesLine(line) {
				continue
			}
			product, err := r.product(ctx, line.ProductID)
			if err != nil {
				return nil, err
			}
			m, err := r.newMove(line, pick.LocationID, pick.LocationDestID, p.ID)
			if err != nil {
				return nil, err
			}
			m.Origin = origin
			m.DateExpected = subcontracting.RawMaterialDate(r.ws.RequestDate, product.LeadTimeDays())
			moves = append(moves, m)
		}
	}

	for _, m := range rawCandidates {
		if err := r.cancelMove(ctx, m); err != nil {
			return nil, err
		}
	}
	if len(moves) == 0 {
		return nil, nil
	}
	if err := r.savePicking(ctx, pick, moves); err != nil {
		return nil, err
	}
	return pick, nil
}

// inboundPicking brings finished goods back from the partner to the local stock
// the order draws from. It returns a nil picking when nothing comes back.
func (r *run) inboundPicking(ctx context.Context, p *partner.Partner, origin string, out *inventory.Picking, finishedCandidates []*inventory.StockMove) (*inventory.Picking, error) {
	pick, err := inventory.NewSubcontractingPicking(inventory.OperationClose, p.ID,
		r.locations[p.ID], r.order.LocationSrcID, r.inType.ID, r.order.ID, origin, r.order.DatePlannedStart)
	if err != nil {
		return nil, err
	}
	pick.SubWorkOrderID = r.ws.Scope.WorkOrderID
	if out != nil {
		outID := out.ID
		pick.PickOutID = &outID
	}

	var moves []*inventory.StockMove
	if r.ws.Scope.IsWorkOrder() {
		for _, line := range r.ws.FinishedLines {
			m, err := r.newMove(line, pick.LocationID, pick.LocationDestID, p.ID)
			if err != nil {
				return nil, err
			}
			m.Origin = origin
			m.DateExpected = r.ws.RequestDate
			moves = append(moves, m)
		}
	} else {
		moves = r.copyMoves(finishedCandidates, origin)
	}

	for _, m := range finishedCandidates {
		if err := r.cancelMove(ctx, m); err != nil {
			return nil, err
		}
	}
	if len(moves) == 0 {
		return nil, nil
	}
	if err := r.savePicking(ctx, pick, moves); err != nil {
		return nil, err
	}
	r.incoming[p.ID] = moves
	return pick, nil
}

func (r *run) copyMoves(moves []*inventory.StockMove, origin string) []*inventory.StockMove {
	copies := make([]*inventory.StockMove, 0, len(moves))
	for _, m := range moves {
		cp := m.Copy(inventory.WithoutProductionLinks())
		cp.Origin = origin
		copies = append(copies, cp)
	}
	return copies
}

func (r *run) savePicking(ctx context.Context, pick *inventory.Picking, moves []*inventory.StockMove) error {
	pick.AttachMoves(moves...)
	if err := r.repos.Pickings().Save(ctx, pick); err != nil {
		return fmt.Errorf("failed to save picking: %w", err)
	}
	for _, m := range moves {
		if err := r.repos.StockMoves().Save(ctx, m); err != nil {
			return fmt.Errorf("failed to save picking move: %w", err)
		}
	}
	return nil
}

// cancelLeftovers cancels order moves that neither were replaced by a transfer
// nor carry an audit stamp from the commit.
func (r *run) cancelLeftovers(ctx context.Context) error {
	moves, err := r.repos.StockMoves().FindByProduction(ctx, r.order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	for i := range moves {
		m := &moves[i]
		if !m.State.IsLive() || m.OriginalMoveState != "" || m.PickingID != nil {
			continue
		}
		if err := r.cancelMove(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func latest(current, candidate *time.Time) *time.Time {
	if candidate == nil {
		return current
	}
	if current == nil || candidate.After(*current) {
		d := *candidate
		return &d
	}
	return current
}
