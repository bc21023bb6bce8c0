package inventory

import (
	"slices"
	"time"

	"github.com/ryznreal/offers/internal/domain/shared"
)

// SetUnitStatus moves an assigned unit to status. Moving to Available
// discards the unit's booking. Moving elsewhere keeps an existing booking,
// retyped to the new status, or writes a placeholder booking.
func (p *Project) SetUnitStatus(key UnitKey, status Availability) (*Project, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown unit availability %q", status)
	}
	i, err := p.assignedSlot(key)
	if err != nil {
		return nil, err
	}
	return p.mutate(func(next *Project, at time.Time) error {
		next.applyStatus(i, status, at)
		return nil
	})
}

func (p *Project) applyStatus(i int, status Availability, at time.Time) {
	slot := p.slots[i]
	from := slot.status
	slot.status = status
	switch {
	case status == Available:
		slot.booking = nil
	case slot.booking == nil:
		slot.booking = placeholderBooking(p.layout.Ref(i), status, at)
	default:
		b := *slot.booking
		b.Type = status
		slot.booking = &b
	}
	p.slots[i] = slot
	if from != status {
		p.AddDomainEvent(NewUnitStatusChangedEvent(p, p.layout.Key(i), slot.modelID, from, status))
	}
}

// RecordBooking stores the commercial record of a unit and moves it to
// in.Type. Quick mode behaves like SetUnitStatus. Detailed mode replaces
// the marketer, customer and fee fields, refreshes the timestamp and
// derives the unit number from the key. Recording an Available booking
// releases the unit.
func (p *Project) RecordBooking(key UnitKey, in BookingInput, mode BookingMode) (*Project, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown booking mode %q", mode)
	}
	if !in.Type.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown unit availability %q", in.Type)
	}
	if mode == BookingModeDetailed && in.Type != Available {
		if err := in.validateCommercial(); err != nil {
			return nil, err
		}
	}
	i, err := p.assignedSlot(key)
	if err != nil {
		return nil, err
	}
	return p.mutate(func(next *Project, at time.Time) error {
		next.applyStatus(i, in.Type, at)
		if in.Type == Available || mode == BookingModeQuick {
			return nil
		}
		ref := next.layout.Ref(i)
		booking := &BookingDetails{
			UnitKey:            ref.Key(),
			UnitNumber:         ref.Number(),
			MarketerName:       in.MarketerName,
			MarketerPhone:      in.MarketerPhone,
			CustomerName:       in.CustomerName,
			CustomerPhone:      in.CustomerPhone,
			Type:               in.Type,
			Timestamp:          at,
			BrokerageFee:       in.BrokerageFee,
			MarketerPercentage: in.MarketerPercentage,
			IsExternalMarketer: in.IsExternalMarketer,
		}
		next.slots[i].booking = booking
		next.AddDomainEvent(NewBookingRecordedEvent(next, next.slots[i].modelID, *booking))
		return nil
	})
}

// StatusOf returns the availability of an assigned unit
func (p *Project) StatusOf(key UnitKey) (Availability, bool) {
	i, ok := p.layout.IndexOf(key)
	if !ok || !p.slots[i].assigned() {
		return "", false
	}
	return p.slots[i].status, true
}

// BookingOf returns the booking of a unit
func (p *Project) BookingOf(key UnitKey) (BookingDetails, bool) {
	i, ok := p.layout.IndexOf(key)
	if !ok || !p.slots[i].assigned() || p.slots[i].booking == nil {
		return BookingDetails{}, false
	}
	return *p.slots[i].booking, true
}

// ListBookings returns every booking, newest first. Bookings with equal
// timestamps keep blueprint order.
func (p *Project) ListBookings() []BookingDetails {
	var out []BookingDetails
	for _, slot := range p.slots {
		if slot.assigned() && slot.booking != nil {
			out = append(out, *slot.booking)
		}
	}
	slices.SortStableFunc(out, func(a, b BookingDetails) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// UnitStats summarizes the sale state of a project
type UnitStats struct {
	Capacity  int
	Assigned  int
	Available int
	Reserved  int
	Sold      int
}

// Stats counts units by state
func (p *Project) Stats() UnitStats {
	stats := UnitStats{Capacity: p.layout.Len()}
	for _, slot := range p.slots {
		if !slot.assigned() {
			continue
		}
		stats.Assigned++
		switch slot.status {
		case Available:
			stats.Available++
		case Reserved:
			stats.Reserved++
		case Sold:
			stats.Sold++
		}
	}
	return stats
}

// UnitView is one slot of the blueprint
type UnitView struct {
	Key     UnitKey
	Zone    Zone
	Floor   int
	Index   int
	Number  string
	ModelID string
	Status  Availability
	Booking *BookingDetails
}

// Assigned reports whether the unit is bound to a model
func (v UnitView) Assigned() bool { return v.ModelID != "" }

// Units returns every slot in blueprint order
func (p *Project) Units() []UnitView {
	out := make([]UnitView, p.layout.Len())
	for i, slot := range p.slots {
		ref := p.layout.Ref(i)
		view := UnitView{
			Key:     p.layout.Key(i),
			Zone:    ref.Zone,
			Floor:   ref.Floor,
			Index:   ref.Index,
			Number:  ref.Number(),
			ModelID: slot.modelID,
			Status:  slot.status,
		}
		if slot.booking != nil {
			b := *slot.booking
			view.Booking = &b
		}
		out[i] = view
	}
	return out
}
