package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByCode returns shared.ErrNotFound when no product has the code
	FindByCode(ctx context.Context, code string) (*Product, error)
	Save(ctx context.Context, product *Product) error
}

// SupplierInfoRepository defines the interface for vendor price list persistence
type SupplierInfoRepository interface {
	// FindByProduct returns the sellers of a product ordered by sequence
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]SupplierInfo, error)
	Save(ctx context.Context, info *SupplierInfo) error
}
