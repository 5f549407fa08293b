package persistence

import (
	"context"

	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductionOrderRepository implements ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// FindByID finds a production order by its ID
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.ProductionOrder, error) {
	var model models.ProductionOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a production order
func (r *GormProductionOrderRepository) Save(ctx context.Context, order *manufacturing.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(models.ProductionOrderModelFromDomain(order)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormProductionOrderRepository) SaveWithLock(ctx context.Context, order *manufacturing.ProductionOrder) error {
	return updateWithLock(r.db.WithContext(ctx), models.ProductionOrderModelFromDomain(order), order.Version)
}

// GormWorkOrderRepository implements WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByID finds a work order by its ID
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProduction returns the work orders of a production order in creation order
func (r *GormWorkOrderRepository) FindByProduction(ctx context.Context, productionID uuid.UUID) ([]manufacturing.WorkOrder, error) {
	var rows []models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Where("production_id = ?", productionID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]manufacturing.WorkOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, wo *manufacturing.WorkOrder) error {
	return r.db.WithContext(ctx).Save(models.WorkOrderModelFromDomain(wo)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormWorkOrderRepository) SaveWithLock(ctx context.Context, wo *manufacturing.WorkOrder) error {
	return updateWithLock(r.db.WithContext(ctx), models.WorkOrderModelFromDomain(wo), wo.Version)
}

// GormBOMRepository implements BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

func preloadBOMLines(db *gorm.DB) *gorm.DB {
	return db.Order("sequence")
}

// FindByID finds a BOM with its lines
func (r *GormBOMRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.BOM, error) {
	var model models.BOMModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadBOMLines).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProduct returns the preferred BOM of a product. BOMs bound to
// pickingTypeID win over BOMs without a picking type; ties go to the oldest.
func (r *GormBOMRepository) FindByProduct(ctx context.Context, productID uuid.UUID, pickingTypeID *uuid.UUID) (*manufacturing.BOM, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", preloadBOMLines).
		Where("product_id = ?", productID)
	if pickingTypeID != nil {
		query = query.
			Where("picking_type_id IS NULL OR picking_type_id = ?", *pickingTypeID).
			Order("CASE WHEN picking_type_id IS NULL THEN 1 ELSE 0 END")
	} else {
		query = query.Where("picking_type_id IS NULL")
	}

	var model models.BOMModel
	if err := query.Order("created_at").First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a BOM and replaces its lines
func (r *GormBOMRepository) Save(ctx context.Context, bom *manufacturing.BOM) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(models.BOMModelFromDomain(bom)).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, len(bom.Lines))
		for i := range bom.Lines {
			keep[i] = bom.Lines[i].ID
		}
		stale := tx.Where("bom_id = ?", bom.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.BOMLineModel{}).Error; err != nil {
			return err
		}

		for i := range bom.Lines {
			bom.Lines[i].BOMID = bom.ID
			if err := tx.Save(models.BOMLineModelFromDomain(&bom.Lines[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var (
	_ manufacturing.ProductionOrderRepository = (*GormProductionOrderRepository)(nil)
	_ manufacturing.WorkOrderRepository       = (*GormWorkOrderRepository)(nil)
	_ manufacturing.BOMRepository             = (*GormBOMRepository)(nil)
)
