package catalog

import (
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierInfo is a vendor price list entry of a product
type SupplierInfo struct {
	shared.BaseEntity
	ProductID   uuid.UUID
	PartnerID   uuid.UUID
	Sequence    int
	UOM         string
	MinQty      decimal.Decimal
	Price       decimal.Decimal
	DelayDays   int
	RoutingID   *uuid.UUID
	OperationID *uuid.UUID
}

// SellerTerms are the commercial terms proposed for a vendor
type SellerTerms struct {
	PartnerID uuid.UUID
	Price     decimal.Decimal
	DelayDays int
	MinQty    decimal.Decimal
}

// NextSellerEntry builds the catalog entry for a new vendor of product, placed after
// existing sellers. Returns nil when the vendor is already listed.
func NextSellerEntry(product *Product, existing []SupplierInfo, terms SellerTerms, routingID, operationID *uuid.UUID) *SupplierInfo {
	highest := 0
	for _, s := range existing {
		if s.PartnerID == terms.PartnerID {
			return nil
		}
		if s.Sequence > highest {
			highest = s.Sequence
		}
	}
	return &SupplierInfo{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   product.ID,
		PartnerID:   terms.PartnerID,
		Sequence:    highest + 1,
		UOM:         product.PurchaseUOM,
		MinQty:      terms.MinQty,
		Price:       terms.Price,
		DelayDays:   terms.DelayDays,
		RoutingID:   routingID,
		OperationID: operationID,
	}
}
