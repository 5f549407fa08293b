package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReorderRule is a minimum stock rule for a product in a warehouse
type ReorderRule struct {
	shared.BaseEntity
	Name        string
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	LocationID  uuid.UUID
	MinQty      decimal.Decimal
	MaxQty      decimal.Decimal
	Active      bool
}

// ReorderRuleService makes sure every product touched by a workflow has a reorder rule
type ReorderRuleService struct {
	rules      ReorderRuleRepository
	warehouses WarehouseRepository
}

// NewReorderRuleService creates a new ReorderRuleService
func NewReorderRuleService(rules ReorderRuleRepository, warehouses WarehouseRepository) *ReorderRuleService {
	return &ReorderRuleService{rules: rules, warehouses: warehouses}
}

// CheckCreateReorderRule creates an empty (0/0) rule on the warehouse stock
// location when the product has none in that warehouse.
func (s *ReorderRuleService) CheckCreateReorderRule(ctx context.Context, productID, warehouseID uuid.UUID) error {
	_, err := s.rules.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	wh, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("load warehouse %s: %w", warehouseID, err)
	}
	rule := &ReorderRule{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        fmt.Sprintf("%s/OP/%s", wh.Code, productID.String()[:8]),
		ProductID:   productID,
		WarehouseID: warehouseID,
		LocationID:  wh.StockLocationID,
		MinQty:      decimal.Zero,
		MaxQty:      decimal.Zero,
		Active:      true,
	}
	return s.rules.Save(ctx, rule)
}
