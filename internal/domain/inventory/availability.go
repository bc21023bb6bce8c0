package inventory

import "github.com/ryznreal/offers/internal/domain/shared"

// Availability is the sale lifecycle state of an assigned unit.
// Every state may move to every other one; sold -> available models
// a cancelled sale.
type Availability string

const (
	Available Availability = "available"
	Reserved  Availability = "reserved"
	Sold      Availability = "sold"
)

// IsValid checks if the availability is a known state
func (a Availability) IsValid() bool {
	switch a {
	case Available, Reserved, Sold:
		return true
	}
	return false
}

// String returns the string representation of Availability
func (a Availability) String() string {
	return string(a)
}

// ParseAvailability converts s into an Availability
func ParseAvailability(s string) (Availability, error) {
	a := Availability(s)
	if !a.IsValid() {
		return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown unit availability %q", s)
	}
	return a, nil
}
