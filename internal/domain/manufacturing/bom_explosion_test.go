package manufacturing

import (
	"context"
	"testing"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBOMRepository struct {
	mock.Mock
}

func (m *MockBOMRepository) FindByID(ctx context.Context, id uuid.UUID) (*BOM, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BOM), args.Error(1)
}

func (m *MockBOMRepository) FindByProduct(ctx context.Context, productID uuid.UUID, pickingTypeID *uuid.UUID) (*BOM, error) {
	args := m.Called(ctx, productID, pickingTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BOM), args.Error(1)
}

func (m *MockBOMRepository) Save(ctx context.Context, bom *BOM) error {
	args := m.Called(ctx, bom)
	return args.Error(0)
}

func TestBOMExplosionService_Explode(t *testing.T) {
	ctx := context.Background()

	t.Run("flat bom scales by requested quantity", func(t *testing.T) {
		repo := new(MockBOMRepository)
		svc := NewBOMExplosionService(repo)

		finished := uuid.New()
		compA, compB := uuid.New(), uuid.New()
		bom, err := NewBOM(finished, decimal.NewFromInt(2), "Units", BOMTypeNormal)
		require.NoError(t, err)
		_, err = bom.AddLine(compA, decimal.NewFromInt(4), "Units", nil)
		require.NoError(t, err)
		_, err = bom.AddLine(compB, decimal.NewFromInt(1), "Units", nil)
		require.NoError(t, err)

		repo.On("FindByProduct", ctx, mock.Anything, (*uuid.UUID)(nil)).Return(nil, shared.ErrNotFound)

		boms, lines, err := svc.Explode(ctx, bom, finished, decimal.NewFromInt(1), nil)
		require.NoError(t, err)
		assert.Len(t, boms, 1)
		require.Len(t, lines, 2)
		assert.True(t, decimal.NewFromInt(2).Equal(lines[0].Quantity))
		assert.True(t, decimal.NewFromFloat(0.5).Equal(lines[1].Quantity))
	})

	t.Run("phantom component is expanded", func(t *testing.T) {
		repo := new(MockBOMRepository)
		svc := NewBOMExplosionService(repo)

		finished, kit, screw := uuid.New(), uuid.New(), uuid.New()
		bom, _ := NewBOM(finished, decimal.NewFromInt(1), "Units", BOMTypeNormal)
		_, _ = bom.AddLine(kit, decimal.NewFromInt(2), "Units", nil)

		kitBOM, _ := NewBOM(kit, decimal.NewFromInt(1), "Units", BOMTypePhantom)
		_, _ = kitBOM.AddLine(screw, decimal.NewFromInt(3), "Units", nil)

		repo.On("FindByProduct", ctx, kit, (*uuid.UUID)(nil)).Return(kitBOM, nil)
		repo.On("FindByProduct", ctx, screw, (*uuid.UUID)(nil)).Return(nil, shared.ErrNotFound)

		boms, lines, err := svc.Explode(ctx, bom, finished, decimal.NewFromInt(1), nil)
		require.NoError(t, err)
		assert.Len(t, boms, 2)
		require.Len(t, lines, 1)
		assert.Equal(t, screw, lines[0].Line.ProductID)
		assert.True(t, decimal.NewFromInt(6).Equal(lines[0].Quantity))
		require.NotNil(t, lines[0].ParentLineID)
		assert.Equal(t, bom.Lines[0].ID, *lines[0].ParentLineID)
	})

	t.Run("cycle is rejected", func(t *testing.T) {
		repo := new(MockBOMRepository)
		svc := NewBOMExplosionService(repo)

		finished, kit := uuid.New(), uuid.New()
		bom, _ := NewBOM(finished, decimal.NewFromInt(1), "Units", BOMTypeNormal)
		_, _ = bom.AddLine(kit, decimal.NewFromInt(1), "Units", nil)
		kitBOM, _ := NewBOM(kit, decimal.NewFromInt(1), "Units", BOMTypePhantom)
		_, _ = kitBOM.AddLine(uuid.New(), decimal.NewFromInt(1), "Units", nil)
		kitBOM.Lines[0].ProductID = kit

		repo.On("FindByProduct", ctx, kit, (*uuid.UUID)(nil)).Return(kitBOM, nil)

		_, _, err := svc.Explode(ctx, bom, finished, decimal.NewFromInt(1), nil)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("product mismatch", func(t *testing.T) {
		svc := NewBOMExplosionService(new(MockBOMRepository))
		bom, _ := NewBOM(uuid.New(), decimal.NewFromInt(1), "Units", BOMTypeNormal)

		_, _, err := svc.Explode(ctx, bom, uuid.New(), decimal.NewFromInt(1), nil)
		assert.True(t, shared.IsValidationError(err))
	})
}
