package inventory

import (
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockQuant is the on-hand quantity of a product at one location
type StockQuant struct {
	shared.BaseEntity
	ProductID        uuid.UUID
	LocationID       uuid.UUID
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
}

// NewStockQuant creates an empty quant for a product at a location
func NewStockQuant(productID, locationID uuid.UUID) (*StockQuant, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Location ID cannot be empty")
	}
	return &StockQuant{
		BaseEntity:       shared.NewBaseEntity(),
		ProductID:        productID,
		LocationID:       locationID,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
	}, nil
}

// Available returns the unreserved quantity
func (q *StockQuant) Available() decimal.Decimal {
	return q.Quantity.Sub(q.ReservedQuantity)
}
