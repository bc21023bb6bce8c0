package inventory

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Structure is the developer-entered building shape
type Structure struct {
	FloorsCount   int `json:"floors_count"`
	UnitsPerFloor int `json:"units_per_floor"`
	AnnexCount    int `json:"annex_count"`
	BasementCount int `json:"basement_count"`
}

// Ceilings of the structural counts. Counts above them are clamped, which
// bounds a layout to MaxCapacity slots.
const (
	MaxFloors        = 200
	MaxUnitsPerFloor = 50
	MaxAnnexUnits    = 50
	MaxBasementUnits = 50

	MaxCapacity = MaxAnnexUnits + MaxFloors*MaxUnitsPerFloor + MaxBasementUnits
)

// NewStructure builds a Structure, clamping every count into [0, ceiling]
func NewStructure(floors, unitsPerFloor, annex, basement int) Structure {
	return Structure{
		FloorsCount:   clampCount(floors, MaxFloors),
		UnitsPerFloor: clampCount(unitsPerFloor, MaxUnitsPerFloor),
		AnnexCount:    clampCount(annex, MaxAnnexUnits),
		BasementCount: clampCount(basement, MaxBasementUnits),
	}
}

func clampCount(n, ceiling int) int {
	return min(max(n, 0), ceiling)
}

// Normalized returns a copy with every count clamped into range
func (s Structure) Normalized() Structure {
	return NewStructure(s.FloorsCount, s.UnitsPerFloor, s.AnnexCount, s.BasementCount)
}

// Capacity is the number of unit slots the structure defines, at most MaxCapacity
func (s Structure) Capacity() int {
	n := s.Normalized()
	return n.AnnexCount + n.FloorsCount*n.UnitsPerFloor + n.BasementCount
}

// Contains reports whether ref lies inside the structure
func (s Structure) Contains(ref UnitRef) bool {
	n := s.Normalized()
	switch ref.Zone {
	case ZoneFloor:
		return ref.Floor >= 1 && ref.Floor <= n.FloorsCount && ref.Index >= 1 && ref.Index <= n.UnitsPerFloor
	case ZoneAnnex:
		return ref.Index >= 1 && ref.Index <= n.AnnexCount
	case ZoneBasement:
		return ref.Index >= 1 && ref.Index <= n.BasementCount
	}
	return false
}

// EnumerateUnits lists every unit key of the structure in blueprint order:
// annex ascending, floors from the top down with slots ascending, then
// basement ascending. Negative counts contribute nothing and oversized
// counts are cut to their ceiling.
func EnumerateUnits(s Structure) []UnitKey {
	n := s.Normalized()
	keys := make([]UnitKey, 0, n.Capacity())
	for i := 1; i <= n.AnnexCount; i++ {
		keys = append(keys, AnnexKey(i))
	}
	for f := n.FloorsCount; f >= 1; f-- {
		for slot := 1; slot <= n.UnitsPerFloor; slot++ {
			keys = append(keys, FloorKey(f, slot))
		}
	}
	for i := 1; i <= n.BasementCount; i++ {
		keys = append(keys, BasementKey(i))
	}
	return keys
}

var digitFolder = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// ParseCount reads a structural count typed by an operator. Arabic-Indic
// and Extended Arabic-Indic digits are accepted; blank, non-numeric or
// negative input yields zero. Values too large for an int32 saturate at
// math.MaxInt32 so callers can still reject them as over the ceiling.
func ParseCount(raw string) int {
	s := strings.TrimSpace(digitFolder.Replace(raw))
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-") {
			return math.MaxInt32
		}
		return 0
	}
	return max(int(n), 0)
}
