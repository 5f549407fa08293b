package catalog

import (
	"fmt"
	"strings"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductType classifies how a product is tracked
type ProductType string

const (
	ProductTypeStockable  ProductType = "product"
	ProductTypeConsumable ProductType = "consu"
	ProductTypeService    ProductType = "service"
)

// ServiceCodePrefix prefixes the code of subcontracting service products
const ServiceCodePrefix = "S-"

// Product represents a product in the catalog
type Product struct {
	shared.BaseAggregateRoot
	// Code is the internal reference (default code); it may be empty
	Code             string
	Name             string
	Type             ProductType
	PurchaseOK       bool
	UOM              string
	PurchaseUOM      string
	ProduceDelayDays int
	StandardPrice    decimal.Decimal
}

// NewProduct creates a new product
func NewProduct(code, name string, productType ProductType, uom string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot exceed 200 characters")
	}
	switch productType {
	case ProductTypeStockable, ProductTypeConsumable, ProductTypeService:
	default:
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown product type %q", productType))
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.TrimSpace(code),
		Name:              name,
		Type:              productType,
		PurchaseOK:        true,
		UOM:               uom,
		PurchaseUOM:       uom,
		StandardPrice:     decimal.Zero,
	}, nil
}

// DisplayName renders "[CODE] Name", or just the name without a code
func (p *Product) DisplayName() string {
	if p.Code == "" {
		return p.Name
	}
	return fmt.Sprintf("[%s] %s", p.Code, p.Name)
}

// PurchaseLineName renders the description used on purchase lines
func (p *Product) PurchaseLineName() string {
	if p.Code == "" {
		return p.Name
	}
	return p.Code + " - " + p.Name
}

// LeadTimeDays returns the manufacturing lead time, never negative
func (p *Product) LeadTimeDays() int {
	if p.ProduceDelayDays < 0 {
		return 0
	}
	return p.ProduceDelayDays
}

// NewSubcontractingService derives the purchasable service product that
// represents subcontracted work on the finished product.
func NewSubcontractingService(finished *Product) (*Product, error) {
	if finished.Code == "" {
		return nil, shared.NewValidationError("No default code assigned to product %q", finished.Name)
	}
	svc, err := NewProduct(ServiceCodePrefix+finished.Code, finished.DisplayName(), ProductTypeService, finished.UOM)
	if err != nil {
		return nil, err
	}
	svc.PurchaseOK = true
	return svc, nil
}

// ServiceCodeFor returns the code of the service product derived from a finished product
func ServiceCodeFor(finished *Product) (string, error) {
	if finished.Code == "" {
		return "", shared.NewValidationError("No default code assigned to product %q", finished.Name)
	}
	return ServiceCodePrefix + finished.Code, nil
}
