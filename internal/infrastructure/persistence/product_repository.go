package persistence

import (
	"context"

	"github.com/erp/subcontracting/internal/domain/catalog"
	"github.com/erp/subcontracting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds the oldest product with the internal reference
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("created_at").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// GormSupplierInfoRepository implements SupplierInfoRepository using GORM
type GormSupplierInfoRepository struct {
	db *gorm.DB
}

// NewGormSupplierInfoRepository creates a new GormSupplierInfoRepository
func NewGormSupplierInfoRepository(db *gorm.DB) *GormSupplierInfoRepository {
	return &GormSupplierInfoRepository{db: db}
}

// FindByProduct returns the sellers of a product ordered by sequence
func (r *GormSupplierInfoRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.SupplierInfo, error) {
	var rows []models.SupplierInfoModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sequence").
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.SupplierInfo, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a seller entry
func (r *GormSupplierInfoRepository) Save(ctx context.Context, info *catalog.SupplierInfo) error {
	return r.db.WithContext(ctx).Save(models.SupplierInfoModelFromDomain(info)).Error
}

var (
	_ catalog.ProductRepository      = (*GormProductRepository)(nil)
	_ catalog.SupplierInfoRepository = (*GormSupplierInfoRepository)(nil)
)
