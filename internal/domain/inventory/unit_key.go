package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ryznreal/offers/internal/domain/shared"
)

// Zone is the part of a building a unit slot belongs to
type Zone string

const (
	ZoneFloor    Zone = "floor"
	ZoneAnnex    Zone = "annex"
	ZoneBasement Zone = "basement"
)

// UnitKey addresses one physical unit slot inside a project:
// floor-{floor}-{slot}, annex-{index} or basement-{index}.
type UnitKey string

// String returns the key as a plain string
func (k UnitKey) String() string {
	return string(k)
}

// UnitRef is a parsed UnitKey
type UnitRef struct {
	Zone  Zone
	Floor int // floor number, zero outside ZoneFloor
	Index int // slot on the floor, or annex/basement index
}

// FloorKey builds the key for slot on floor
func FloorKey(floor, slot int) UnitKey {
	return UnitKey(fmt.Sprintf("%s-%d-%d", ZoneFloor, floor, slot))
}

// AnnexKey builds the key for annex unit i
func AnnexKey(i int) UnitKey {
	return UnitKey(fmt.Sprintf("%s-%d", ZoneAnnex, i))
}

// BasementKey builds the key for basement unit i
func BasementKey(i int) UnitKey {
	return UnitKey(fmt.Sprintf("%s-%d", ZoneBasement, i))
}

// ParseUnitKey splits a key into its zone and positions.
// Only canonical keys are accepted: positive decimal numbers without
// sign or leading zeros, so every accepted key round-trips through Key.
func ParseUnitKey(key string) (UnitRef, error) {
	parts := strings.Split(key, "-")
	switch Zone(parts[0]) {
	case ZoneFloor:
		if len(parts) != 3 {
			break
		}
		floor, okFloor := parsePosition(parts[1])
		slot, okSlot := parsePosition(parts[2])
		if okFloor && okSlot {
			return UnitRef{Zone: ZoneFloor, Floor: floor, Index: slot}, nil
		}
	case ZoneAnnex, ZoneBasement:
		if len(parts) != 2 {
			break
		}
		if i, ok := parsePosition(parts[1]); ok {
			return UnitRef{Zone: Zone(parts[0]), Index: i}, nil
		}
	}
	return UnitRef{}, shared.NewDomainErrorf(shared.CodeMalformedKey, "Malformed unit key %q", key)
}

func parsePosition(s string) (int, bool) {
	if s == "" || s[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Key renders the canonical key for the reference
func (r UnitRef) Key() UnitKey {
	switch r.Zone {
	case ZoneFloor:
		return FloorKey(r.Floor, r.Index)
	case ZoneAnnex:
		return AnnexKey(r.Index)
	default:
		return BasementKey(r.Index)
	}
}

// Number renders the unit number shown to buyers and on bookings:
// floor units as {floor}{slot:02} (floor-3-2 -> "302"), annex units
// as M{index} and basement units as B{index}.
func (r UnitRef) Number() string {
	switch r.Zone {
	case ZoneFloor:
		return fmt.Sprintf("%d%02d", r.Floor, r.Index)
	case ZoneAnnex:
		return fmt.Sprintf("M%d", r.Index)
	default:
		return fmt.Sprintf("B%d", r.Index)
	}
}

// UnitNumber parses key and renders its unit number
func UnitNumber(key UnitKey) (string, error) {
	ref, err := ParseUnitKey(string(key))
	if err != nil {
		return "", err
	}
	return ref.Number(), nil
}
