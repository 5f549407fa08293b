package persistence

import (
	"context"

	"github.com/erp/subcontracting/internal/domain/trade"
	"github.com/erp/subcontracting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at").Order("id")
}

// FindByID finds a purchase order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindOpenByPartner returns the oldest order of the vendor still in draft or sent
func (r *GormPurchaseOrderRepository) FindOpenByPartner(ctx context.Context, partnerID uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("partner_id = ? AND status IN ?", partnerID,
			[]trade.PurchaseOrderStatus{trade.PurchaseOrderStatusDraft, trade.PurchaseOrderStatusSent}).
		Order("created_at").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProductionExternal returns the orders created for a production order
func (r *GormPurchaseOrderRepository) FindByProductionExternal(ctx context.Context, productionID uuid.UUID) ([]trade.PurchaseOrder, error) {
	var rows []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("production_external_id = ?", productionID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a purchase order and its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(models.PurchaseOrderModelFromDomain(order)).Error; err != nil {
			return err
		}

		lineIDs := make([]uuid.UUID, len(order.Lines))
		for i := range order.Lines {
			lineIDs[i] = order.Lines[i].ID
		}
		removed := tx.Where("order_id = ?", order.ID)
		if len(lineIDs) > 0 {
			removed = removed.Where("id NOT IN ?", lineIDs)
		}
		if err := removed.Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return err
		}

		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(models.PurchaseOrderLineModelFromDomain(&order.Lines[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
