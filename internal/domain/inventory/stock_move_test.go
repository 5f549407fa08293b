package inventory

import (
	"testing"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestMove(t *testing.T) *StockMove {
	m, err := NewStockMove("Steel bar", uuid.New(), decimal.NewFromInt(5), "Units", uuid.New(), uuid.New())
	require.NoError(t, err)
	return m
}

func TestStockMove_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		state   MoveState
		wantErr bool
		want    MoveState
	}{
		{"draft", MoveStateDraft, false, MoveStateCancel},
		{"confirmed", MoveStateConfirmed, false, MoveStateCancel},
		{"assigned", MoveStateAssigned, false, MoveStateCancel},
		{"already cancelled", MoveStateCancel, false, MoveStateCancel},
		{"done", MoveStateDone, true, MoveStateDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createTestMove(t)
			m.State = tt.state
			err := m.Cancel()
			if tt.wantErr {
				assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, m.State)
		})
	}
}

func TestStockMove_StampOriginalState(t *testing.T) {
	m := createTestMove(t)
	m.State = MoveStateAssigned
	m.StampOriginalState()
	require.NoError(t, m.Cancel())

	assert.Equal(t, MoveStateAssigned, m.OriginalMoveState)
	assert.Equal(t, MoveStateCancel, m.State)
}

func TestStockMove_Copy(t *testing.T) {
	m := createTestMove(t)
	orderID := uuid.New()
	pickingID := uuid.New()
	lineID := uuid.New()
	m.State = MoveStateConfirmed
	m.RawMaterialProductionID = &orderID
	m.ExternalProductionID = &orderID
	m.PickingID = &pickingID
	m.PurchaseLineID = &lineID
	m.OriginalMoveState = MoveStateConfirmed

	src, dst := uuid.New(), uuid.New()
	cp := m.Copy(WithName("copy"), WithLocations(src, dst), WithoutProductionLinks())

	assert.NotEqual(t, m.ID, cp.ID)
	assert.Equal(t, MoveStateDraft, cp.State)
	assert.Equal(t, "copy", cp.Name)
	assert.Equal(t, src, cp.LocationID)
	assert.Equal(t, dst, cp.LocationDestID)
	assert.Nil(t, cp.RawMaterialProductionID)
	assert.Nil(t, cp.ExternalProductionID)
	assert.Nil(t, cp.PickingID)
	assert.Nil(t, cp.PurchaseLineID)
	assert.Empty(t, cp.OriginalMoveState)
	assert.True(t, m.Quantity.Equal(cp.Quantity))

	// the source is untouched
	assert.Equal(t, &orderID, m.RawMaterialProductionID)
	assert.Equal(t, MoveStateConfirmed, m.State)
}

func TestPicking_AttachMoves(t *testing.T) {
	partnerLoc, stock := uuid.New(), uuid.New()
	p, err := NewSubcontractingPicking(OperationOpen, uuid.New(), stock, partnerLoc, uuid.New(), uuid.New(), "MO/0001", time.Now())
	require.NoError(t, err)

	early := createTestMove(t)
	early.DateExpected = time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	late := createTestMove(t)
	late.DateExpected = time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	p.AttachMoves(early, late)

	for _, m := range []*StockMove{early, late} {
		require.NotNil(t, m.PickingID)
		assert.Equal(t, p.ID, *m.PickingID)
		assert.Equal(t, stock, m.LocationID)
		assert.Equal(t, partnerLoc, m.LocationDestID)
	}
	require.NotNil(t, p.MaxDate)
	assert.Equal(t, late.DateExpected, *p.MaxDate)
	assert.Equal(t, PickingStateDraft, p.State)
	assert.Equal(t, MoveTypeDirect, p.MoveType)
}

func TestNewSubcontractingPicking_Validation(t *testing.T) {
	_, err := NewSubcontractingPicking(OperationClose, uuid.New(), uuid.New(), uuid.New(), uuid.Nil, uuid.New(), "", time.Now())
	assert.Error(t, err)

	_, err = NewSubcontractingPicking("sideways", uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(), "", time.Now())
	assert.Error(t, err)
}
