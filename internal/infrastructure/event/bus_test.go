package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testHandler records every event it handles
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func projectEvent(eventType string, projectID uuid.UUID) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, inventory.AggregateTypeProject, projectID, time.Now())
}

func statusChanged(from, to inventory.Availability) *inventory.UnitStatusChangedEvent {
	id := uuid.New()
	return &inventory.UnitStatusChangedEvent{
		BaseDomainEvent: projectEvent(inventory.EventTypeUnitStatusChanged, id),
		ProjectID:       id,
		UnitKey:         inventory.FloorKey(2, 1),
		ModelID:         "a",
		From:            from,
		To:              to,
	}
}

func unitAssigned(previous string) *inventory.UnitAssignedEvent {
	id := uuid.New()
	return &inventory.UnitAssignedEvent{
		BaseDomainEvent: projectEvent(inventory.EventTypeUnitAssigned, id),
		ProjectID:       id,
		UnitKey:         inventory.AnnexKey(1),
		ModelID:         "b",
		PreviousModelID: previous,
	}
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("dispatches in order to matching handlers", func(t *testing.T) {
		bus := startedBus(t)
		handler := newTestHandler(inventory.EventTypeUnitStatusChanged)
		other := newTestHandler(inventory.EventTypeBookingRecorded)
		bus.Subscribe(handler)
		bus.Subscribe(other)

		first := statusChanged(inventory.Available, inventory.Reserved)
		second := statusChanged(inventory.Reserved, inventory.Sold)
		require.NoError(t, bus.Publish(context.Background(), first, second))

		handled := handler.getHandled()
		require.Len(t, handled, 2)
		assert.Equal(t, first, handled[0])
		assert.Equal(t, second, handled[1])
		assert.Empty(t, other.getHandled())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := startedBus(t)
		handler := newTestHandler(inventory.EventTypeBookingRecorded)
		bus.Subscribe(handler, inventory.EventTypeUnitAssigned)

		require.NoError(t, bus.Publish(context.Background(), unitAssigned("")))
		assert.Len(t, handler.getHandled(), 1)
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := startedBus(t)
		wildcard := newTestHandler()
		bus.Subscribe(wildcard)

		require.NoError(t, bus.Publish(context.Background(),
			unitAssigned(""), statusChanged(inventory.Available, inventory.Sold)))
		assert.Len(t, wildcard.getHandled(), 2)
	})
}

func TestInMemoryEventBus_HandlerFailures(t *testing.T) {
	bus := startedBus(t)

	failing := newTestHandler(inventory.EventTypeUnitAssigned)
	failing.err = errors.New("handler error")
	panicking := newTestHandler(inventory.EventTypeUnitAssigned)
	panicking.panicWith = "boom"
	healthy := newTestHandler(inventory.EventTypeUnitAssigned)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), unitAssigned(""))

	require.NoError(t, err)
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, panicking.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	handler := newTestHandler(inventory.EventTypeUnitAssigned)
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), unitAssigned(""))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), unitAssigned(""))

	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(inventory.EventTypeUnitAssigned)
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), unitAssigned(""))
	assert.ErrorIs(t, err, ErrBusStopped)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), unitAssigned("")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	assert.ErrorIs(t, bus.Publish(context.Background(), unitAssigned("")), ErrBusStopped)
	assert.Len(t, handler.getHandled(), 1)
}

func TestHandlerPanicError(t *testing.T) {
	err := &HandlerPanicError{EventType: inventory.EventTypeBookingRecorded, Value: "boom"}
	assert.Contains(t, err.Error(), inventory.EventTypeBookingRecorded)
}
