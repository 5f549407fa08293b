package trade

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindOpenByPartner returns the oldest draft or sent order of the vendor,
	// or shared.ErrNotFound when there is none.
	FindOpenByPartner(ctx context.Context, partnerID uuid.UUID) (*PurchaseOrder, error)
	FindByProductionExternal(ctx context.Context, productionID uuid.UUID) ([]PurchaseOrder, error)
	Save(ctx context.Context, order *PurchaseOrder) error
}
