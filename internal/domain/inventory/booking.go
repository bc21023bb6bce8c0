package inventory

import (
	"time"

	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BookingMode selects how RecordBooking treats commercial details
type BookingMode string

const (
	// BookingModeQuick only flips the unit state, keeping any prior booking
	BookingModeQuick BookingMode = "quick"
	// BookingModeDetailed replaces the commercial record
	BookingModeDetailed BookingMode = "detailed"
)

// IsValid checks if the mode is known
func (m BookingMode) IsValid() bool {
	return m == BookingModeQuick || m == BookingModeDetailed
}

// Placeholder values written when a unit leaves Available without details
const (
	PlaceholderName  = "quick update"
	PlaceholderPhone = "-"
)

var hundred = decimal.NewFromInt(100)

// BookingDetails is the commercial record of a reserved or sold unit
type BookingDetails struct {
	UnitKey            UnitKey
	UnitNumber         string
	MarketerName       string
	MarketerPhone      string
	CustomerName       string
	CustomerPhone      string
	Type               Availability
	Timestamp          time.Time
	BrokerageFee       decimal.Decimal
	MarketerPercentage decimal.Decimal
	IsExternalMarketer bool
}

// IsPlaceholder reports whether the booking was written without details
func (b BookingDetails) IsPlaceholder() bool {
	return b.MarketerName == PlaceholderName && b.CustomerName == PlaceholderName
}

// BookingInput is what an operator submits for a booking
type BookingInput struct {
	Type               Availability
	MarketerName       string
	MarketerPhone      string
	CustomerName       string
	CustomerPhone      string
	BrokerageFee       decimal.Decimal
	MarketerPercentage decimal.Decimal
	IsExternalMarketer bool
}

func (in BookingInput) validateCommercial() error {
	if in.BrokerageFee.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Brokerage fee cannot be negative")
	}
	if in.MarketerPercentage.IsNegative() || in.MarketerPercentage.GreaterThan(hundred) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Marketer percentage must be between 0 and 100")
	}
	return nil
}

func placeholderBooking(ref UnitRef, status Availability, at time.Time) *BookingDetails {
	return &BookingDetails{
		UnitKey:       ref.Key(),
		UnitNumber:    ref.Number(),
		MarketerName:  PlaceholderName,
		MarketerPhone: PlaceholderPhone,
		CustomerName:  PlaceholderName,
		CustomerPhone: PlaceholderPhone,
		Type:          status,
		Timestamp:     at,
	}
}
