package event

import (
	"context"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
)

// Assignment actions recorded by InventoryMetricsHandler
const (
	AssignmentAssigned   = "assigned"
	AssignmentReassigned = "reassigned"
	AssignmentUnassigned = "unassigned"
)

// InventoryRecorder receives inventory counters.
// *telemetry.InventoryMetrics satisfies it.
type InventoryRecorder interface {
	RecordStatusTransition(ctx context.Context, from, to string)
	RecordBooking(ctx context.Context, status string)
	RecordAssignment(ctx context.Context, action string)
}

// InventoryMetricsHandler turns unit events into counters
type InventoryMetricsHandler struct {
	recorder InventoryRecorder
}

// NewInventoryMetricsHandler creates a new InventoryMetricsHandler
func NewInventoryMetricsHandler(recorder InventoryRecorder) *InventoryMetricsHandler {
	return &InventoryMetricsHandler{recorder: recorder}
}

// EventTypes returns the unit event types
func (h *InventoryMetricsHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeUnitAssigned,
		inventory.EventTypeUnitUnassigned,
		inventory.EventTypeUnitStatusChanged,
		inventory.EventTypeBookingRecorded,
	}
}

// Handle records the event; other event types are ignored
func (h *InventoryMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.UnitStatusChangedEvent:
		h.recorder.RecordStatusTransition(ctx, string(e.From), string(e.To))
	case *inventory.BookingRecordedEvent:
		h.recorder.RecordBooking(ctx, string(e.Type))
	case *inventory.UnitAssignedEvent:
		action := AssignmentAssigned
		if e.PreviousModelID != "" {
			action = AssignmentReassigned
		}
		h.recorder.RecordAssignment(ctx, action)
	case *inventory.UnitUnassignedEvent:
		h.recorder.RecordAssignment(ctx, AssignmentUnassigned)
	}
	return nil
}

var _ shared.EventHandler = (*InventoryMetricsHandler)(nil)
