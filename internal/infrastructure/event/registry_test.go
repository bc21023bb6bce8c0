package event

import (
	"testing"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler, inventory.EventTypeUnitAssigned, inventory.EventTypeUnitUnassigned)

		assert.Equal(t, handler, registry.GetHandlers(inventory.EventTypeUnitAssigned)[0])
		assert.Len(t, registry.GetHandlers(inventory.EventTypeUnitUnassigned), 1)
		assert.Empty(t, registry.GetHandlers(inventory.EventTypeBookingRecorded))
	})

	t.Run("wildcard handlers come after typed handlers", func(t *testing.T) {
		registry := NewHandlerRegistry()
		typed := newTestHandler()
		wildcard := newTestHandler()
		registry.Register(wildcard)
		registry.Register(typed, inventory.EventTypeBookingRecorded)

		handlers := registry.GetHandlers(inventory.EventTypeBookingRecorded)
		assert.Len(t, handlers, 2)
		assert.Equal(t, typed, handlers[0])
		assert.Equal(t, wildcard, handlers[1])

		assert.Len(t, registry.GetHandlers("Anything"), 1)
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler, inventory.EventTypeUnitAssigned)
		registry.Register(handler, inventory.EventTypeUnitAssigned)
		registry.Register(handler)
		registry.Register(handler)

		assert.Len(t, registry.GetHandlers(inventory.EventTypeUnitAssigned), 2)
		assert.Len(t, registry.GetAllHandlers(), 1)
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newTestHandler()
	second := newTestHandler()
	wildcard := newTestHandler()
	registry.Register(first, inventory.EventTypeUnitAssigned)
	registry.Register(second, inventory.EventTypeUnitAssigned)
	registry.Register(wildcard)

	registry.Unregister(first)
	registry.Unregister(wildcard)

	handlers := registry.GetHandlers(inventory.EventTypeUnitAssigned)
	assert.Len(t, handlers, 1)
	assert.Equal(t, second, handlers[0])
	assert.Empty(t, registry.GetHandlers("Anything"))

	registry.Unregister(second)
	assert.Empty(t, registry.GetAllHandlers())
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	shared := newTestHandler()
	registry.Register(shared, inventory.EventTypeUnitAssigned, inventory.EventTypeUnitStatusChanged)
	registry.Register(newTestHandler(), inventory.EventTypeBookingRecorded)
	registry.Register(newTestHandler())

	assert.Len(t, registry.GetAllHandlers(), 3)
}
