package inventory

import "github.com/ryznreal/offers/internal/domain/shared"

// UnitLayout is the dense slot arena of one structure. Keys are enumerated
// once in blueprint order and indexed; per-unit state lives in slices that
// share this indexing. A layout is never mutated after construction, so
// snapshots of the same structure share it.
type UnitLayout struct {
	structure Structure
	keys      []UnitKey
	refs      []UnitRef
	index     map[UnitKey]int
}

// NewUnitLayout enumerates s and builds the key index
func NewUnitLayout(s Structure) *UnitLayout {
	keys := EnumerateUnits(s)
	l := &UnitLayout{
		structure: s.Normalized(),
		keys:      keys,
		refs:      make([]UnitRef, len(keys)),
		index:     make(map[UnitKey]int, len(keys)),
	}
	for i, k := range keys {
		// enumerated keys are canonical by construction
		ref, _ := ParseUnitKey(string(k))
		l.refs[i] = ref
		l.index[k] = i
	}
	return l
}

// Structure returns the normalized structure the layout was built from
func (l *UnitLayout) Structure() Structure { return l.structure }

// Len returns the number of slots
func (l *UnitLayout) Len() int { return len(l.keys) }

// Key returns the key at slot i
func (l *UnitLayout) Key(i int) UnitKey { return l.keys[i] }

// Ref returns the parsed key at slot i
func (l *UnitLayout) Ref(i int) UnitRef { return l.refs[i] }

// Keys returns a copy of all keys in blueprint order
func (l *UnitLayout) Keys() []UnitKey {
	out := make([]UnitKey, len(l.keys))
	copy(out, l.keys)
	return out
}

// IndexOf returns the slot index of key
func (l *UnitLayout) IndexOf(key UnitKey) (int, bool) {
	i, ok := l.index[key]
	return i, ok
}

// Resolve maps a raw key to its slot. Malformed keys fail with
// MALFORMED_KEY, well-formed keys outside the grid with UNIT_OUT_OF_RANGE.
func (l *UnitLayout) Resolve(key UnitKey) (int, error) {
	if _, err := ParseUnitKey(string(key)); err != nil {
		return -1, err
	}
	i, ok := l.index[key]
	if !ok {
		return -1, shared.NewDomainErrorf(shared.CodeUnitOutOfRange, "Unit %s is outside the building structure", key)
	}
	return i, nil
}
