package manufacturing

import (
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMType distinguishes manufactured kits from phantom (exploded) kits
type BOMType string

const (
	BOMTypeNormal  BOMType = "normal"
	BOMTypePhantom BOMType = "phantom"
)

// BOM is a bill of materials: the recipe producing Quantity units of ProductID
type BOM struct {
	shared.BaseAggregateRoot
	Code          string
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UOM           string
	Type          BOMType
	RoutingID     *uuid.UUID
	PickingTypeID *uuid.UUID
	// ExternalProductID caches the service product used to buy this BOM from subcontractors
	ExternalProductID *uuid.UUID
	Lines             []BOMLine
}

// BOMLine is one component of a BOM
type BOMLine struct {
	ID          uuid.UUID
	BOMID       uuid.UUID
	ProductID   uuid.UUID
	Quantity    decimal.Decimal
	UOM         string
	Sequence    int
	OperationID *uuid.UUID
}

// NewBOM creates a BOM producing qty units of a product
func NewBOM(productID uuid.UUID, qty decimal.Decimal, uom string, bomType BOMType) (*BOM, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "BOM quantity must be positive")
	}
	if bomType == "" {
		bomType = BOMTypeNormal
	}
	return &BOM{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          qty,
		UOM:               uom,
		Type:              bomType,
	}, nil
}

// AddLine appends a component line
func (b *BOM) AddLine(productID uuid.UUID, qty decimal.Decimal, uom string, operationID *uuid.UUID) (*BOMLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Component product ID cannot be empty")
	}
	if productID == b.ProductID {
		return nil, shared.NewValidationError("BOM line cannot reference the product it produces")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Component quantity must be positive")
	}
	line := BOMLine{
		ID:          uuid.New(),
		BOMID:       b.ID,
		ProductID:   productID,
		Quantity:    qty,
		UOM:         uom,
		Sequence:    len(b.Lines) + 1,
		OperationID: operationID,
	}
	b.Lines = append(b.Lines, line)
	b.IncrementVersion()
	return &b.Lines[len(b.Lines)-1], nil
}

// SetExternalProduct caches the subcontracting service product on the BOM
func (b *BOM) SetExternalProduct(productID uuid.UUID) {
	b.ExternalProductID = &productID
	b.IncrementVersion()
}
