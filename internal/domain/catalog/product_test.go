package catalog

import (
	"testing"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubcontractingService(t *testing.T) {
	t.Run("derives service from finished product code", func(t *testing.T) {
		finished, err := NewProduct("TABLE01", "Oak table", ProductTypeStockable, "Units")
		require.NoError(t, err)

		svc, err := NewSubcontractingService(finished)
		require.NoError(t, err)
		assert.Equal(t, "S-TABLE01", svc.Code)
		assert.Equal(t, "[TABLE01] Oak table", svc.Name)
		assert.Equal(t, ProductTypeService, svc.Type)
		assert.True(t, svc.PurchaseOK)
		assert.Equal(t, "S-TABLE01 - [TABLE01] Oak table", svc.PurchaseLineName())
	})

	t.Run("missing code is a validation error", func(t *testing.T) {
		finished, err := NewProduct("", "Oak table", ProductTypeStockable, "Units")
		require.NoError(t, err)

		_, err = NewSubcontractingService(finished)
		assert.True(t, shared.IsValidationError(err))

		_, err = ServiceCodeFor(finished)
		assert.True(t, shared.IsValidationError(err))
	})
}

func TestProduct_LeadTimeDays(t *testing.T) {
	p, err := NewProduct("B", "Bolt", ProductTypeConsumable, "Units")
	require.NoError(t, err)

	p.ProduceDelayDays = 3
	assert.Equal(t, 3, p.LeadTimeDays())
	p.ProduceDelayDays = -2
	assert.Equal(t, 0, p.LeadTimeDays())
}

func TestNextSellerEntry(t *testing.T) {
	product, _ := NewProduct("S-X", "Service", ProductTypeService, "Units")
	p1, p2 := uuid.New(), uuid.New()
	terms := SellerTerms{PartnerID: p2, Price: decimal.NewFromInt(12), DelayDays: 4, MinQty: decimal.NewFromInt(1)}

	t.Run("first seller gets sequence 1", func(t *testing.T) {
		entry := NextSellerEntry(product, nil, terms, nil, nil)
		require.NotNil(t, entry)
		assert.Equal(t, 1, entry.Sequence)
		assert.Equal(t, p2, entry.PartnerID)
	})

	t.Run("sequence follows the highest existing one", func(t *testing.T) {
		existing := []SupplierInfo{{PartnerID: p1, Sequence: 1}, {PartnerID: uuid.New(), Sequence: 7}}
		opID := uuid.New()
		entry := NextSellerEntry(product, existing, terms, nil, &opID)
		require.NotNil(t, entry)
		assert.Equal(t, 8, entry.Sequence)
		assert.Equal(t, &opID, entry.OperationID)
	})

	t.Run("already listed vendor is skipped", func(t *testing.T) {
		existing := []SupplierInfo{{PartnerID: p2, Sequence: 3}}
		assert.Nil(t, NextSellerEntry(product, existing, terms, nil, nil))
	})
}
