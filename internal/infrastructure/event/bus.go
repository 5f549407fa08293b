package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus) error

// WithMeter counts delivered and failed deliveries per event type
func WithMeter(meter metric.Meter) BusOption {
	return func(b *InMemoryEventBus) error {
		delivered, err := telemetry.NewCounter(meter, "subcontracting_event_deliveries_total",
			"Domain events delivered to a handler", "{delivery}")
		if err != nil {
			return err
		}
		failed, err := telemetry.NewCounter(meter, "subcontracting_event_delivery_failures_total",
			"Domain event deliveries that returned an error or panicked", "{delivery}")
		if err != nil {
			return err
		}
		b.delivered, b.failed = delivered, failed
		return nil
	}
}

// InMemoryEventBus delivers events synchronously to subscribed handlers.
// A failing handler is logged and does not stop delivery to the others.
// Events published while the bus is stopped are dropped.
type InMemoryEventBus struct {
	subs     *subscriptions
	logger   *zap.Logger
	running  atomic.Bool
	inFlight sync.WaitGroup

	delivered *telemetry.Counter
	failed    *telemetry.Counter
}

// NewInMemoryEventBus creates a stopped bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) (*InMemoryEventBus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{subs: newSubscriptions(), logger: logger.Named("events")}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Publish implements shared.EventPublisher
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Warn("Event bus not running, events dropped", zap.Int("count", len(events)))
		return nil
	}
	b.inFlight.Add(1)
	defer b.inFlight.Done()

	for _, e := range events {
		typeAttr := attribute.String("event_type", e.EventType())
		for _, h := range b.subs.handlersFor(e.EventType()) {
			if err := b.deliver(ctx, h, e); err != nil {
				b.count(ctx, b.failed, typeAttr)
				b.logger.Error("Event handler failed",
					zap.String("event_type", e.EventType()),
					zap.String("event_id", e.EventID().String()),
					zap.String("aggregate_id", e.AggregateID().String()),
					zap.Error(err),
				)
				continue
			}
			b.count(ctx, b.delivered, typeAttr)
		}
	}
	return nil
}

func (b *InMemoryEventBus) count(ctx context.Context, c *telemetry.Counter, attrs ...attribute.KeyValue) {
	if c != nil {
		c.Inc(ctx, attrs...)
	}
}

// Subscribe registers handler for eventTypes, falling back to handler.EventTypes()
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.add(handler, eventTypes)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.remove(handler)
}

// Start enables delivery
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started")
	return nil
}

// Stop disables delivery and waits for in-flight publishes
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.running.Store(false)
	b.inFlight.Wait()
	b.logger.Info("Event bus stopped")
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
