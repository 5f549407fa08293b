package persistence

import (
	"context"

	appsub "github.com/erp/subcontracting/internal/application/subcontracting"
	"github.com/erp/subcontracting/internal/domain/catalog"
	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/partner"
	"github.com/erp/subcontracting/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsub.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories builds every repository the engine uses on one *gorm.DB.
// Passing a transaction handle scopes all of them to that transaction.
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates a repository bundle bound to db.
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

func (r *GormRepositories) ProductionOrders() manufacturing.ProductionOrderRepository {
	return NewGormProductionOrderRepository(r.db)
}

func (r *GormRepositories) WorkOrders() manufacturing.WorkOrderRepository {
	return NewGormWorkOrderRepository(r.db)
}

func (r *GormRepositories) BOMs() manufacturing.BOMRepository {
	return NewGormBOMRepository(r.db)
}

func (r *GormRepositories) StockMoves() inventory.StockMoveRepository {
	return NewGormStockMoveRepository(r.db)
}

func (r *GormRepositories) Pickings() inventory.PickingRepository {
	return NewGormPickingRepository(r.db)
}

func (r *GormRepositories) PickingTypes() inventory.PickingTypeRepository {
	return NewGormPickingTypeRepository(r.db)
}

func (r *GormRepositories) Locations() inventory.LocationRepository {
	return NewGormLocationRepository(r.db)
}

func (r *GormRepositories) Warehouses() inventory.WarehouseRepository {
	return NewGormWarehouseRepository(r.db)
}

func (r *GormRepositories) ReorderRules() inventory.ReorderRuleRepository {
	return NewGormReorderRuleRepository(r.db)
}

func (r *GormRepositories) StockQuants() inventory.StockQuantRepository {
	return NewGormStockQuantRepository(r.db)
}

func (r *GormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *GormRepositories) SupplierInfos() catalog.SupplierInfoRepository {
	return NewGormSupplierInfoRepository(r.db)
}

func (r *GormRepositories) Partners() partner.PartnerRepository {
	return NewGormPartnerRepository(r.db)
}

func (r *GormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.db)
}

var (
	_ appsub.TransactionScope = (*GormTransactionScope)(nil)
	_ appsub.Repositories     = (*GormRepositories)(nil)
)
