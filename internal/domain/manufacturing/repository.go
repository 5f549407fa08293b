package manufacturing

import (
	"context"

	"github.com/google/uuid"
)

// ProductionOrderRepository defines the interface for production order persistence
type ProductionOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	Save(ctx context.Context, order *ProductionOrder) error
	// SaveWithLock updates an order changed once since it was loaded. It returns
	// shared.ErrConcurrencyConflict when the stored version is no longer Version-1.
	SaveWithLock(ctx context.Context, order *ProductionOrder) error
}

// WorkOrderRepository defines the interface for work order persistence
type WorkOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	FindByProduction(ctx context.Context, productionID uuid.UUID) ([]WorkOrder, error)
	Save(ctx context.Context, workOrder *WorkOrder) error
	// SaveWithLock is the version-checked update of a work order
	SaveWithLock(ctx context.Context, workOrder *WorkOrder) error
}

// BOMRepository defines the interface for bill of materials persistence
type BOMRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BOM, error)
	// FindByProduct returns the preferred BOM of a product, restricted to BOMs
	// without a picking type or matching pickingTypeID. Returns shared.ErrNotFound when none.
	FindByProduct(ctx context.Context, productID uuid.UUID, pickingTypeID *uuid.UUID) (*BOM, error)
	Save(ctx context.Context, bom *BOM) error
}
