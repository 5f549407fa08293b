package subcontracting

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/subcontracting/internal/domain/catalog"
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// createPurchases buys the subcontracted work: one purchase order per partner,
// one line per inbound move of that partner's transfer. Partners with nothing
// coming back are not billed.
func (r *run) createPurchases(ctx context.Context) error {
	if !r.hasIncoming() {
		r.logger.Debug("No finished goods to buy back, purchase orders skipped")
		return nil
	}
	service, err := r.serviceProduct(ctx)
	if err != nil {
		return err
	}

	for _, p := range r.partners {
		if len(r.incoming[p.ID]) == 0 {
			continue
		}
		sel, _ := r.ws.Partner(p.ID)
		if err := r.ensureSeller(ctx, service, catalog.SellerTerms{
			PartnerID: p.ID,
			Price:     sel.Price,
			DelayDays: sel.DelayDays,
			MinQty:    sel.MinQty,
		}); err != nil {
			return err
		}

		po, err := r.purchaseOrderFor(ctx, p.ID)
		if err != nil {
			return err
		}
		res := r.result.partner(p.ID)
		for _, m := range r.incoming[p.ID] {
			line, err := po.AddLine(service.ID, service.PurchaseLineName(), m.Quantity, service.PurchaseUOM, sel.Price, r.ws.RequestDate)
			if err != nil {
				return err
			}
			moveID, orderID := m.ID, r.order.ID
			line.SubMoveLineID = &moveID
			line.ProductionExternalID = &orderID
			lineID := line.ID
			m.PurchaseLineID = &lineID
			if err := r.repos.StockMoves().Save(ctx, m); err != nil {
				return fmt.Errorf("failed to link move to purchase line: %w", err)
			}
			res.PurchaseLineIDs = append(res.PurchaseLineIDs, lineID)
		}

		if err := r.repos.PurchaseOrders().Save(ctx, po); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		if r.ws.ConfirmPurchaseOrder {
			if err := r.ports.Purchases.Confirm(ctx, po); err != nil {
				return err
			}
		}
		poID := po.ID
		res.PurchaseOrderID = &poID
		r.purchases = append(r.purchases, po)

		r.logger.Debug("Subcontracting purchase order prepared",
			zap.String("partner_id", p.ID.String()),
			zap.String("purchase_order_id", po.ID.String()),
			zap.String("status", string(po.Status)),
			zap.Int("lines", len(res.PurchaseLineIDs)),
		)
	}
	return nil
}

func (r *run) hasIncoming() bool {
	for _, moves := range r.incoming {
		if len(moves) > 0 {
			return true
		}
	}
	return false
}

// serviceProduct returns the service product of the order BOM, creating and
// caching it on the BOM when needed.
func (r *run) serviceProduct(ctx context.Context) (*catalog.Product, error) {
	bom, err := r.repos.BOMs().FindByID(ctx, r.order.BOMID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bill of materials: %w", err)
	}
	if bom.ExternalProductID != nil {
		return r.product(ctx, *bom.ExternalProductID)
	}

	code, err := catalog.ServiceCodeFor(r.finished)
	if err != nil {
		return nil, err
	}
	service, err := r.repos.Products().FindByCode(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		service, err = catalog.NewSubcontractingService(r.finished)
		if err != nil {
			return nil, err
		}
		if err := r.repos.Products().Save(ctx, service); err != nil {
			return nil, fmt.Errorf("failed to create service product: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	bom.SetExternalProduct(service.ID)
	if err := r.repos.BOMs().Save(ctx, bom); err != nil {
		return nil, fmt.Errorf("failed to save bill of materials: %w", err)
	}
	r.products[service.ID] = service
	return service, nil
}

// ensureSeller registers the partner as a vendor of the service product
func (r *run) ensureSeller(ctx context.Context, service *catalog.Product, terms catalog.SellerTerms) error {
	existing, err := r.repos.SupplierInfos().FindByProduct(ctx, service.ID)
	if err != nil {
		return err
	}
	var entry *catalog.SupplierInfo
	if r.ws.Scope.IsWorkOrder() {
		entry = catalog.NextSellerEntry(service, existing, terms, r.order.RoutingID, r.ws.Scope.OperationID)
	} else {
		entry = catalog.NextSellerEntry(service, existing, terms, nil, nil)
	}
	if entry == nil {
		return nil
	}
	if err := r.repos.SupplierInfos().Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to register vendor: %w", err)
	}
	return nil
}

// purchaseOrderFor reuses an open order of the partner when merging, otherwise starts a new one
func (r *run) purchaseOrderFor(ctx context.Context, partnerID uuid.UUID) (*trade.PurchaseOrder, error) {
	if r.ws.MergePurchaseOrder {
		po, err := r.repos.PurchaseOrders().FindOpenByPartner(ctx, partnerID)
		if err == nil {
			return po, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	po, err := trade.NewPurchaseOrder(trade.NewOrderNumber(r.now), partnerID, r.ws.RequestDate)
	if err != nil {
		return nil, err
	}
	orderID := r.order.ID
	po.ProductionExternalID = &orderID
	return po, nil
}
