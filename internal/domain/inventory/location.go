package inventory

import (
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
)

// LocationUsage describes what a location is used for
type LocationUsage string

const (
	LocationUsageInternal   LocationUsage = "internal"
	LocationUsageSupplier   LocationUsage = "supplier"
	LocationUsageCustomer   LocationUsage = "customer"
	LocationUsageProduction LocationUsage = "production"
	LocationUsageView       LocationUsage = "view"
)

// Location is a physical or virtual place holding stock
type Location struct {
	shared.BaseEntity
	Name        string
	Usage       LocationUsage
	WarehouseID *uuid.UUID
	Active      bool
}

// Warehouse groups locations and operation types
type Warehouse struct {
	shared.BaseEntity
	Code            string
	Name            string
	StockLocationID uuid.UUID
	IsDefault       bool
}

// PickingTypeCode is the direction of an operation type
type PickingTypeCode string

const (
	PickingTypeIncoming     PickingTypeCode = "incoming"
	PickingTypeOutgoing     PickingTypeCode = "outgoing"
	PickingTypeInternal     PickingTypeCode = "internal"
	PickingTypeMrpOperation PickingTypeCode = "mrp_operation"
)

// PickingType is a warehouse operation type
type PickingType struct {
	shared.BaseEntity
	Name        string
	Code        PickingTypeCode
	WarehouseID *uuid.UUID
	Active      bool
}
