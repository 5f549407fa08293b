package persistence

import (
	"context"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Warehouse, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindDefault returns the warehouse flagged as default, else the oldest one
func (r *GormWarehouseRepository) FindDefault(ctx context.Context) (*inventory.Warehouse, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Order("is_default DESC").
		Order("created_at").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, wh *inventory.Warehouse) error {
	return r.db.WithContext(ctx).Save(models.WarehouseModelFromDomain(wh)).Error
}

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by its ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, loc *inventory.Location) error {
	return r.db.WithContext(ctx).Save(models.LocationModelFromDomain(loc)).Error
}

// GormPickingTypeRepository implements PickingTypeRepository using GORM
type GormPickingTypeRepository struct {
	db *gorm.DB
}

// NewGormPickingTypeRepository creates a new GormPickingTypeRepository
func NewGormPickingTypeRepository(db *gorm.DB) *GormPickingTypeRepository {
	return &GormPickingTypeRepository{db: db}
}

// FindByID finds an operation type by its ID
func (r *GormPickingTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.PickingType, error) {
	var model models.PickingTypeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByCode returns the oldest active operation type of a warehouse with the code
func (r *GormPickingTypeRepository) FindActiveByCode(ctx context.Context, warehouseID uuid.UUID, code inventory.PickingTypeCode) (*inventory.PickingType, error) {
	var model models.PickingTypeModel
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND code = ? AND active = ?", warehouseID, code, true).
		Order("created_at").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates an operation type
func (r *GormPickingTypeRepository) Save(ctx context.Context, pt *inventory.PickingType) error {
	return r.db.WithContext(ctx).Save(models.PickingTypeModelFromDomain(pt)).Error
}

var (
	_ inventory.WarehouseRepository   = (*GormWarehouseRepository)(nil)
	_ inventory.LocationRepository    = (*GormLocationRepository)(nil)
	_ inventory.PickingTypeRepository = (*GormPickingTypeRepository)(nil)
)
