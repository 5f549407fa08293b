package subcontracting

import (
	"context"

	"github.com/erp/subcontracting/internal/domain/catalog"
	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/partner"
	"github.com/erp/subcontracting/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories touched by a run.
// Every write of one ProduceExternally call happens inside a single Execute.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories bundles the repositories of every aggregate the engine reads or writes.
// Inside a transaction scope all of them share the same transaction.
type Repositories interface {
	ProductionOrders() manufacturing.ProductionOrderRepository
	WorkOrders() manufacturing.WorkOrderRepository
	BOMs() manufacturing.BOMRepository
	StockMoves() inventory.StockMoveRepository
	Pickings() inventory.PickingRepository
	PickingTypes() inventory.PickingTypeRepository
	Locations() inventory.LocationRepository
	Warehouses() inventory.WarehouseRepository
	ReorderRules() inventory.ReorderRuleRepository
	StockQuants() inventory.StockQuantRepository
	Products() catalog.ProductRepository
	SupplierInfos() catalog.SupplierInfoRepository
	Partners() partner.PartnerRepository
	PurchaseOrders() trade.PurchaseOrderRepository
}
