package event

import (
	"github.com/ryznreal/offers/internal/domain/inventory"
)

// RegisterInventoryEvents registers every project event type with the
// serializer so broker consumers can decode them
func RegisterInventoryEvents(serializer *EventSerializer) {
	serializer.Register(inventory.EventTypeProjectCreated, &inventory.ProjectCreatedEvent{})
	serializer.Register(inventory.EventTypeProjectUpdated, &inventory.ProjectUpdatedEvent{})
	serializer.Register(inventory.EventTypeProjectRestructured, &inventory.ProjectRestructuredEvent{})

	serializer.Register(inventory.EventTypeModelAdded, &inventory.ModelAddedEvent{})
	serializer.Register(inventory.EventTypeModelUpdated, &inventory.ModelUpdatedEvent{})
	serializer.Register(inventory.EventTypeModelRemoved, &inventory.ModelRemovedEvent{})

	serializer.Register(inventory.EventTypeUnitAssigned, &inventory.UnitAssignedEvent{})
	serializer.Register(inventory.EventTypeUnitUnassigned, &inventory.UnitUnassignedEvent{})
	serializer.Register(inventory.EventTypeUnitStatusChanged, &inventory.UnitStatusChangedEvent{})
	serializer.Register(inventory.EventTypeBookingRecorded, &inventory.BookingRecordedEvent{})
}
