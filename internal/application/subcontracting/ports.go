package subcontracting

import (
	"context"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMExploder expands a bill of materials into flat component requirements
type BOMExploder interface {
	Explode(ctx context.Context, bom *manufacturing.BOM, productID uuid.UUID, qty decimal.Decimal, pickingTypeID *uuid.UUID) ([]manufacturing.ExplodedBOM, []manufacturing.ComponentRequirement, error)
}

// ReorderRuleChecker makes sure a product has a reorder rule in a warehouse
type ReorderRuleChecker interface {
	CheckCreateReorderRule(ctx context.Context, productID, warehouseID uuid.UUID) error
}

// PurchaseConfirmer confirms a purchase order
type PurchaseConfirmer interface {
	Confirm(ctx context.Context, order *trade.PurchaseOrder) error
}

// Ports are the collaborators of one run, bound to the run's repositories
type Ports struct {
	Exploder  BOMExploder
	Reorder   ReorderRuleChecker
	Purchases PurchaseConfirmer
}

// PortsFactory binds collaborators to a set of repositories
type PortsFactory func(repos Repositories) Ports

// DefaultPorts binds the domain services of each context
func DefaultPorts(repos Repositories) Ports {
	return Ports{
		Exploder:  manufacturing.NewBOMExplosionService(repos.BOMs()),
		Reorder:   inventory.NewReorderRuleService(repos.ReorderRules(), repos.Warehouses()),
		Purchases: trade.NewConfirmationService(repos.PurchaseOrders()),
	}
}

var (
	_ BOMExploder        = (*manufacturing.BOMExplosionService)(nil)
	_ ReorderRuleChecker = (*inventory.ReorderRuleService)(nil)
	_ PurchaseConfirmer  = (*trade.ConfirmationService)(nil)
)
