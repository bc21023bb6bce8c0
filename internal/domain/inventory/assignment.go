package inventory

import (
	"time"

	"github.com/ryznreal/offers/internal/domain/shared"
)

// AssignUnit binds key to modelID. Assigning a unit to the model it is
// already bound to unassigns it, clearing its status and booking.
// A newly assigned unit starts Available; rebinding an assigned unit to
// another model keeps its status and booking.
func (p *Project) AssignUnit(key UnitKey, modelID string) (*Project, error) {
	i, err := p.layout.Resolve(key)
	if err != nil {
		return nil, err
	}
	if !p.HasModel(modelID) {
		return nil, shared.NewDomainErrorf(shared.CodeModelNotFound, "Model %q not found in project", modelID)
	}
	return p.mutate(func(next *Project, _ time.Time) error {
		slot := next.slots[i]
		switch {
		case slot.modelID == modelID:
			next.slots[i] = unitSlot{}
			next.AddDomainEvent(NewUnitUnassignedEvent(next, key, modelID))
		case !slot.assigned():
			next.slots[i] = unitSlot{modelID: modelID, status: Available}
			next.AddDomainEvent(NewUnitAssignedEvent(next, key, modelID, ""))
		default:
			previous := slot.modelID
			slot.modelID = modelID
			next.slots[i] = slot
			next.AddDomainEvent(NewUnitAssignedEvent(next, key, modelID, previous))
		}
		return nil
	})
}

// ModelOf returns the model bound to key
func (p *Project) ModelOf(key UnitKey) (string, bool) {
	i, ok := p.layout.IndexOf(key)
	if !ok || !p.slots[i].assigned() {
		return "", false
	}
	return p.slots[i].modelID, true
}

// UnitsOf returns the keys bound to modelID in blueprint order
func (p *Project) UnitsOf(modelID string) []UnitKey {
	var keys []UnitKey
	for i, slot := range p.slots {
		if slot.modelID == modelID {
			keys = append(keys, p.layout.Key(i))
		}
	}
	return keys
}

// AvailableByModel counts Available units per model ID
func (p *Project) AvailableByModel() map[string]int {
	counts := make(map[string]int, len(p.models))
	for _, slot := range p.slots {
		if slot.assigned() && slot.status == Available {
			counts[slot.modelID]++
		}
	}
	return counts
}

// assignedSlot resolves key and requires it to be assigned
func (p *Project) assignedSlot(key UnitKey) (int, error) {
	if _, err := ParseUnitKey(string(key)); err != nil {
		return -1, err
	}
	i, ok := p.layout.IndexOf(key)
	if !ok || !p.slots[i].assigned() {
		return -1, shared.NewDomainErrorf(shared.CodeNotAssigned, "Unit %s has no model assigned", key)
	}
	return i, nil
}
