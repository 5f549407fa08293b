package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMoveRepository defines the interface for stock move persistence
type StockMoveRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockMove, error)
	// FindByProduction returns every move linked to the order as raw, finished or externally generated line
	FindByProduction(ctx context.Context, productionID uuid.UUID) ([]StockMove, error)
	FindByPicking(ctx context.Context, pickingID uuid.UUID) ([]StockMove, error)
	Save(ctx context.Context, move *StockMove) error
}

// PickingRepository defines the interface for transfer persistence
type PickingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Picking, error)
	FindByProduction(ctx context.Context, productionID uuid.UUID) ([]Picking, error)
	Save(ctx context.Context, picking *Picking) error
}

// PickingTypeRepository defines the interface for operation type lookup
type PickingTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PickingType, error)
	// FindActiveByCode returns the first active type of the warehouse with the code,
	// or shared.ErrNotFound when none is configured.
	FindActiveByCode(ctx context.Context, warehouseID uuid.UUID, code PickingTypeCode) (*PickingType, error)
}

// LocationRepository defines the interface for location lookup
type LocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)
}

// WarehouseRepository defines the interface for warehouse lookup
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindDefault(ctx context.Context) (*Warehouse, error)
}

// ReorderRuleRepository defines the interface for reorder rule persistence
type ReorderRuleRepository interface {
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*ReorderRule, error)
	Save(ctx context.Context, rule *ReorderRule) error
}

// StockQuantRepository reads on-hand quantities
type StockQuantRepository interface {
	QuantityAt(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error)
}
