package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/shared"
)

// AuditLogHandler records every published domain event in the
// application log. It subscribes with EventTypeAll.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventType returns the subscription key for this handler
func (h *AuditLogHandler) EventType() string {
	return EventTypeAll
}

// Ensure AuditLogHandler implements EventHandler
var _ shared.EventHandler = (*AuditLogHandler)(nil)
