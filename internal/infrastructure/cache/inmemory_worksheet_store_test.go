package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorksheet(t *testing.T) *subcontracting.Worksheet {
	ws, err := subcontracting.NewWorksheet(subcontracting.OrderScope(uuid.New()), subcontracting.DefaultFlags(), time.Now())
	require.NoError(t, err)
	ws.Partners = []subcontracting.PartnerSelection{subcontracting.NewPartnerSelection(uuid.New())}
	ws.RawLines = []subcontracting.WorksheetLine{{ID: uuid.New(), ProductID: uuid.New(), Quantity: decimal.NewFromInt(5)}}
	return ws
}

func TestInMemoryWorksheetStore_SaveGet(t *testing.T) {
	store := NewInMemoryWorksheetStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	t.Run("round trips a worksheet", func(t *testing.T) {
		ws := newWorksheet(t)
		require.NoError(t, store.Save(ctx, ws))

		got, err := store.Get(ctx, ws.ID)
		require.NoError(t, err)
		assert.Equal(t, ws.ID, got.ID)
		assert.Equal(t, ws.Scope, got.Scope)
		require.Len(t, got.RawLines, 1)
		assert.True(t, decimal.NewFromInt(5).Equal(got.RawLines[0].Quantity))
	})

	t.Run("returned worksheet is a copy", func(t *testing.T) {
		ws := newWorksheet(t)
		require.NoError(t, store.Save(ctx, ws))

		got, err := store.Get(ctx, ws.ID)
		require.NoError(t, err)
		got.Partners = nil

		again, err := store.Get(ctx, ws.ID)
		require.NoError(t, err)
		assert.Len(t, again.Partners, 1)
	})

	t.Run("unknown worksheet", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInMemoryWorksheetStore_Expiry(t *testing.T) {
	store := NewInMemoryWorksheetStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	ws := newWorksheet(t)
	require.NoError(t, store.Save(ctx, ws))
	time.Sleep(20 * time.Millisecond)

	_, err := store.Get(ctx, ws.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	store.cleanup()
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryWorksheetStore_Delete(t *testing.T) {
	store := NewInMemoryWorksheetStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	ws := newWorksheet(t)
	require.NoError(t, store.Save(ctx, ws))
	require.NoError(t, store.Delete(ctx, ws.ID))
	assert.NoError(t, store.Delete(ctx, ws.ID), "deleting twice is not an error")
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryWorksheetStore_MarkSubmitted(t *testing.T) {
	store := NewInMemoryWorksheetStore(time.Hour)
	defer store.Close()
	ctx := context.Background()
	id := uuid.New()

	first, err := store.MarkSubmitted(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkSubmitted(ctx, id)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, store.ReleaseSubmitted(ctx, id))
	afterRelease, err := store.MarkSubmitted(ctx, id)
	require.NoError(t, err)
	assert.True(t, afterRelease)
}

func TestInMemoryWorksheetStore_ConcurrentSubmit(t *testing.T) {
	store := NewInMemoryWorksheetStore(time.Hour)
	defer store.Close()
	ctx := context.Background()
	id := uuid.New()

	const numGoroutines = 50
	results := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			ok, err := store.MarkSubmitted(ctx, id)
			results <- err == nil && ok
		}()
	}

	winners := 0
	for i := 0; i < numGoroutines; i++ {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one submit should win")
}

func TestInMemoryWorksheetStore_Close(t *testing.T) {
	store := NewInMemoryWorksheetStore(0)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
