package persistence

import (
	"context"

	"github.com/erp/subcontracting/internal/domain/inventory"
	"github.com/erp/subcontracting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMoveRepository implements StockMoveRepository using GORM
type GormStockMoveRepository struct {
	db *gorm.DB
}

// NewGormStockMoveRepository creates a new GormStockMoveRepository
func NewGormStockMoveRepository(db *gorm.DB) *GormStockMoveRepository {
	return &GormStockMoveRepository{db: db}
}

// FindByID finds a stock move by its ID
func (r *GormStockMoveRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMove, error) {
	var model models.StockMoveModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProduction returns the raw, finished and externally generated moves of an order
func (r *GormStockMoveRepository) FindByProduction(ctx context.Context, productionID uuid.UUID) ([]inventory.StockMove, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("production_id = ? OR raw_material_production_id = ? OR external_production_id = ?",
			productionID, productionID, productionID))
}

// FindByPicking returns the moves of a transfer
func (r *GormStockMoveRepository) FindByPicking(ctx context.Context, pickingID uuid.UUID) ([]inventory.StockMove, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("picking_id = ?", pickingID))
}

func (r *GormStockMoveRepository) find(_ context.Context, query *gorm.DB) ([]inventory.StockMove, error) {
	var rows []models.StockMoveModel
	if err := query.Order("created_at").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.StockMove, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a stock move
func (r *GormStockMoveRepository) Save(ctx context.Context, move *inventory.StockMove) error {
	return r.db.WithContext(ctx).Save(models.StockMoveModelFromDomain(move)).Error
}

// GormPickingRepository implements PickingRepository using GORM
type GormPickingRepository struct {
	db *gorm.DB
}

// NewGormPickingRepository creates a new GormPickingRepository
func NewGormPickingRepository(db *gorm.DB) *GormPickingRepository {
	return &GormPickingRepository{db: db}
}

// FindByID finds a picking by its ID
func (r *GormPickingRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Picking, error) {
	var model models.PickingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProduction returns the subcontracting transfers generated for an order
func (r *GormPickingRepository) FindByProduction(ctx context.Context, productionID uuid.UUID) ([]inventory.Picking, error) {
	var rows []models.PickingModel
	if err := r.db.WithContext(ctx).
		Where("sub_production_id = ?", productionID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Picking, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a picking
func (r *GormPickingRepository) Save(ctx context.Context, picking *inventory.Picking) error {
	return r.db.WithContext(ctx).Save(models.PickingModelFromDomain(picking)).Error
}

// GormReorderRuleRepository implements ReorderRuleRepository using GORM
type GormReorderRuleRepository struct {
	db *gorm.DB
}

// NewGormReorderRuleRepository creates a new GormReorderRuleRepository
func NewGormReorderRuleRepository(db *gorm.DB) *GormReorderRuleRepository {
	return &GormReorderRuleRepository{db: db}
}

// FindByProductAndWarehouse finds the rule of a product in a warehouse
func (r *GormReorderRuleRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.ReorderRule, error) {
	var model models.ReorderRuleModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a reorder rule
func (r *GormReorderRuleRepository) Save(ctx context.Context, rule *inventory.ReorderRule) error {
	return r.db.WithContext(ctx).Save(models.ReorderRuleModelFromDomain(rule)).Error
}

// GormStockQuantRepository implements StockQuantRepository using GORM
type GormStockQuantRepository struct {
	db *gorm.DB
}

// NewGormStockQuantRepository creates a new GormStockQuantRepository
func NewGormStockQuantRepository(db *gorm.DB) *GormStockQuantRepository {
	return &GormStockQuantRepository{db: db}
}

// QuantityAt sums the on-hand quantity of a product at a location
func (r *GormStockQuantRepository) QuantityAt(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&models.StockQuantModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Save creates or updates a quant
func (r *GormStockQuantRepository) Save(ctx context.Context, quant *inventory.StockQuant) error {
	return r.db.WithContext(ctx).Save(models.StockQuantModelFromDomain(quant)).Error
}

var (
	_ inventory.StockMoveRepository   = (*GormStockMoveRepository)(nil)
	_ inventory.PickingRepository     = (*GormPickingRepository)(nil)
	_ inventory.ReorderRuleRepository = (*GormReorderRuleRepository)(nil)
	_ inventory.StockQuantRepository  = (*GormStockQuantRepository)(nil)
)
