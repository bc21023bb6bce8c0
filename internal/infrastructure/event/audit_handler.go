package event

import (
	"context"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log entry per domain event.
// It subscribes to every event type.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(zapLogger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: zapLogger.Named("audit")}
}

// EventTypes returns nil to receive every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with the fields an operator needs to trace it
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	fields = append(fields, auditFields(event)...)

	logger.WithLogger(ctx, h.logger).Info("Domain event", fields...)
	return nil
}

func auditFields(event shared.DomainEvent) []zap.Field {
	switch e := event.(type) {
	case *inventory.ProjectCreatedEvent:
		return []zap.Field{zap.String("name", e.Name), zap.Int("capacity", e.Capacity)}
	case *inventory.ProjectRestructuredEvent:
		return []zap.Field{zap.Int("released_units", e.ReleasedUnits)}
	case *inventory.ModelAddedEvent:
		return []zap.Field{zap.String("model_id", e.ModelID)}
	case *inventory.ModelUpdatedEvent:
		return []zap.Field{zap.String("model_id", e.ModelID)}
	case *inventory.ModelRemovedEvent:
		return []zap.Field{zap.String("model_id", e.ModelID), zap.Int("released_units", e.ReleasedUnits)}
	case *inventory.UnitAssignedEvent:
		return []zap.Field{
			zap.String("unit_key", string(e.UnitKey)),
			zap.String("model_id", e.ModelID),
			zap.String("previous_model_id", e.PreviousModelID),
		}
	case *inventory.UnitUnassignedEvent:
		return []zap.Field{zap.String("unit_key", string(e.UnitKey)), zap.String("model_id", e.ModelID)}
	case *inventory.UnitStatusChangedEvent:
		return []zap.Field{
			zap.String("unit_key", string(e.UnitKey)),
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)),
		}
	case *inventory.BookingRecordedEvent:
		return []zap.Field{
			zap.String("unit_key", string(e.UnitKey)),
			zap.String("booking_type", string(e.Type)),
			zap.Bool("external_marketer", e.IsExternalMarketer),
		}
	}
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
