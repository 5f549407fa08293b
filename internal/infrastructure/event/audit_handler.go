package event

import (
	"context"
	"encoding/json"

	"github.com/erp/subcontracting/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes every published event to the log as one structured
// record carrying the serialized payload.
type AuditLogHandler struct {
	serializer *EventSerializer
	logger     *zap.Logger
	eventTypes []string
}

// NewAuditLogHandler creates a handler for the given event types, or all events when none are given
func NewAuditLogHandler(serializer *EventSerializer, logger *zap.Logger, eventTypes ...string) *AuditLogHandler {
	return &AuditLogHandler{
		serializer: serializer,
		logger:     logger.Named("audit"),
		eventTypes: eventTypes,
	}
}

// Handle implements shared.EventHandler
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	payload, err := h.serializer.Serialize(event)
	if err != nil {
		return err
	}
	h.logger.Info("domain event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.Any("payload", json.RawMessage(payload)),
	)
	return nil
}

// EventTypes implements shared.EventHandler
func (h *AuditLogHandler) EventTypes() []string {
	return h.eventTypes
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
