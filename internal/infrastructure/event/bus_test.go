package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/subcontracting/internal/domain/manufacturing"
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus, err := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("routes events by type", func(t *testing.T) {
		bus := startedBus(t)
		externalized := newTestHandler(manufacturing.EventTypeProductionExternalized)
		purchases := newTestHandler(trade.EventTypePurchaseOrderCreated, trade.EventTypePurchaseOrderConfirmed)
		bus.Subscribe(externalized)
		bus.Subscribe(purchases)

		err := bus.Publish(ctx,
			newTestEvent(manufacturing.EventTypeProductionExternalized),
			newTestEvent(trade.EventTypePurchaseOrderCreated),
			newTestEvent(trade.EventTypePurchaseOrderConfirmed),
		)
		require.NoError(t, err)
		assert.Equal(t, 1, externalized.count())
		assert.Equal(t, 2, purchases.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := startedBus(t)
		all := newTestHandler()
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 2, all.count())
	})

	t.Run("explicit types override handler types", func(t *testing.T) {
		bus := startedBus(t)
		h := newTestHandler("A")
		bus.Subscribe(h, "B")

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("failing handler does not block others", func(t *testing.T) {
		bus := startedBus(t)
		failing := newTestHandler("A")
		failing.err = errors.New("handler failed")
		panicking := newTestHandler("A")
		panicking.panics = true
		ok := newTestHandler("A")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(ok)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 1, failing.count())
		assert.Equal(t, 1, ok.count())
	})

	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := startedBus(t)
		h := newTestHandler("A")
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 0, h.count())
	})

	t.Run("stopped bus drops events", func(t *testing.T) {
		bus, err := NewInMemoryEventBus(zap.NewNop())
		require.NoError(t, err)
		h := newTestHandler("A")
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 0, h.count())
	})
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	assert.Equal(t, []string{
		manufacturing.EventTypeProductionExternalized,
		trade.EventTypePurchaseOrderConfirmed,
		trade.EventTypePurchaseOrderCreated,
		manufacturing.EventTypeWorkOrderExternalized,
	}, serializer.RegisteredTypes())

	order, err := manufacturing.NewProductionOrder("MO/0007", uuid.New(), uuid.New(), decimalOne(), "Unit", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	original := manufacturing.NewProductionExternalizedEvent(order, manufacturing.ProductionStateConfirmed)

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize(manufacturing.EventTypeProductionExternalized, data)
	require.NoError(t, err)
	got, ok := decoded.(*manufacturing.ProductionExternalizedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, order.ID, got.ProductionID)
	assert.Equal(t, "MO/0007", got.Name)
	assert.Equal(t, manufacturing.ProductionStateConfirmed, got.FromState)

	_, err = serializer.Deserialize("Unknown", data)
	assert.Error(t, err)
	_, err = serializer.Serialize(nil)
	assert.Error(t, err)
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	bus := startedBus(t)
	bus.Subscribe(NewAuditLogHandler(serializer, zap.New(core)))

	event := newTestEvent(manufacturing.EventTypeWorkOrderExternalized)
	require.NoError(t, bus.Publish(context.Background(), event))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, manufacturing.EventTypeWorkOrderExternalized, fields["event_type"])
	assert.Equal(t, event.AggregateID().String(), fields["aggregate_id"])
	assert.Equal(t, "audit", entries[0].LoggerName)
}

func TestInMemoryEventBus_WithMeter(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	bus, err := NewInMemoryEventBus(zap.NewNop(), WithMeter(provider.Meter("events")))
	require.NoError(t, err)
	require.NoError(t, bus.Start(ctx))

	failing := newTestHandler(trade.EventTypePurchaseOrderCreated)
	failing.err = errors.New("handler failed")
	bus.Subscribe(failing)
	bus.Subscribe(newTestHandler(trade.EventTypePurchaseOrderCreated))

	require.NoError(t, bus.Publish(ctx, newTestEvent(trade.EventTypePurchaseOrderCreated)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), totals["subcontracting_event_deliveries_total"])
	assert.Equal(t, int64(1), totals["subcontracting_event_delivery_failures_total"])
}

func decimalOne() decimal.Decimal {
	return decimal.NewFromInt(1)
}
