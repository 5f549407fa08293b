package manufacturing

import (
	"context"
	"errors"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExplodedBOM is a BOM visited during explosion with the quantity it was exploded for
type ExplodedBOM struct {
	BOM          *BOM
	Quantity     decimal.Decimal
	ParentLineID *uuid.UUID
}

// ComponentRequirement is a flat leaf requirement produced by explosion
type ComponentRequirement struct {
	Line         BOMLine
	Quantity     decimal.Decimal
	ParentLineID *uuid.UUID
}

// BOMExplosionService expands a BOM into component requirements,
// descending into phantom kits of components.
type BOMExplosionService struct {
	boms BOMRepository
}

// NewBOMExplosionService creates a new BOMExplosionService
func NewBOMExplosionService(boms BOMRepository) *BOMExplosionService {
	return &BOMExplosionService{boms: boms}
}

// Explode computes the requirements to produce qty units of productID with bom.
// pickingTypeID narrows which phantom BOMs apply to components.
func (s *BOMExplosionService) Explode(ctx context.Context, bom *BOM, productID uuid.UUID, qty decimal.Decimal, pickingTypeID *uuid.UUID) ([]ExplodedBOM, []ComponentRequirement, error) {
	if bom == nil {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "BOM is required")
	}
	if productID != bom.ProductID {
		return nil, nil, shared.NewValidationError("BOM %s does not produce the requested product", bom.Code)
	}

	var (
		boms  []ExplodedBOM
		lines []ComponentRequirement
	)
	visiting := map[uuid.UUID]bool{}

	var walk func(b *BOM, qty decimal.Decimal, parent *uuid.UUID) error
	walk = func(b *BOM, qty decimal.Decimal, parent *uuid.UUID) error {
		if visiting[b.ID] {
			return shared.NewValidationError("Recursion error: a product with a bill of materials cannot contain itself in its BOM or child BOMs")
		}
		visiting[b.ID] = true
		defer delete(visiting, b.ID)

		boms = append(boms, ExplodedBOM{BOM: b, Quantity: qty, ParentLineID: parent})
		factor := qty.Div(b.Quantity)

		for _, line := range b.Lines {
			lineQty := line.Quantity.Mul(factor)
			child, err := s.boms.FindByProduct(ctx, line.ProductID, pickingTypeID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if child != nil && child.Type == BOMTypePhantom {
				lineID := line.ID
				if err := walk(child, lineQty, &lineID); err != nil {
					return err
				}
				continue
			}
			lines = append(lines, ComponentRequirement{Line: line, Quantity: lineQty, ParentLineID: parent})
		}
		return nil
	}

	if err := walk(bom, qty, nil); err != nil {
		return nil, nil, err
	}
	return boms, lines, nil
}
