package listing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// nowFunc is the clock used for timestamps; tests replace it
var nowFunc = time.Now

// PropertyType distinguishes built units from land plots
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "residential"
	PropertyTypeLand        PropertyType = "land"
)

// IsValid checks if the property type is known
func (t PropertyType) IsValid() bool {
	return t == PropertyTypeResidential || t == PropertyTypeLand
}

// UnitType is the kind of residential unit
type UnitType string

const (
	UnitTypeApartment UnitType = "apartment"
	UnitTypeFloor     UnitType = "floor"
	UnitTypeAnnex     UnitType = "annex"
	UnitTypeDuplex    UnitType = "duplex"
	UnitTypeVilla     UnitType = "villa"
)

// IsValid checks if the unit type is known
func (t UnitType) IsValid() bool {
	switch t {
	case UnitTypeApartment, UnitTypeFloor, UnitTypeAnnex, UnitTypeDuplex, UnitTypeVilla:
		return true
	}
	return false
}

// LandUse is the zoning of a land plot
type LandUse string

const (
	LandUseResidential LandUse = "residential"
	LandUseCommercial  LandUse = "commercial"
	LandUseInvestment  LandUse = "investment"
	LandUseMixed       LandUse = "mixed"
)

// IsValid checks if the land use is known
func (u LandUse) IsValid() bool {
	switch u {
	case LandUseResidential, LandUseCommercial, LandUseInvestment, LandUseMixed:
		return true
	}
	return false
}

// Property is one entry of the public catalog. Synthesized entries carry
// ProjectID and ModelID back-references and never land-specific fields.
type Property struct {
	ID          string
	Type        PropertyType
	City        string
	District    string
	Developer   string
	ProjectName string
	Price       decimal.Decimal
	MapURL      string
	CreatedAt   time.Time

	ProjectID          string
	ModelID            string
	ProjectDescription string
	ProjectBrochureURL string

	// Residential
	Status     inventory.ProjectStatus
	UnitType   UnitType
	Rooms      int
	Bathrooms  int
	Area       decimal.Decimal
	Floor      string
	Finishing  inventory.Finishing
	YearBuilt  int
	Notes      string
	UnitNumber string

	// Land
	LandArea          decimal.Decimal
	PricePerMeter     decimal.Decimal
	TotalPrice        decimal.Decimal
	LandWidth         decimal.Decimal
	LandDepth         decimal.Decimal
	StreetWidth       decimal.Decimal
	IsCorner          bool
	LandUse           LandUse
	InvestmentAllowed bool
	LandNotes         string
}

// IsSynthesized reports whether the entry was derived from a project
func (p Property) IsSynthesized() bool {
	return strings.HasPrefix(p.ID, SyntheticIDPrefix)
}

// EffectivePrice is the price used for filtering and sorting: Price, or
// TotalPrice for land entries that only carry a total.
func (p Property) EffectivePrice() decimal.Decimal {
	if !p.Price.IsZero() {
		return p.Price
	}
	return p.TotalPrice
}

// NewStandaloneProperty validates a hand-entered property and stamps its
// identity. Land plots derive TotalPrice from area and price per meter,
// and Price from TotalPrice, when those are missing.
func NewStandaloneProperty(p Property) (Property, error) {
	p.City = strings.TrimSpace(p.City)
	p.District = strings.TrimSpace(p.District)
	p.Developer = strings.TrimSpace(p.Developer)

	if !p.Type.IsValid() {
		return Property{}, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown property type %q", p.Type)
	}
	if p.City == "" {
		return Property{}, shared.NewDomainError(shared.CodeInvalidInput, "Property city cannot be empty")
	}
	if p.Price.IsNegative() || p.TotalPrice.IsNegative() || p.Area.IsNegative() || p.LandArea.IsNegative() {
		return Property{}, shared.NewDomainError(shared.CodeInvalidInput, "Prices and areas cannot be negative")
	}
	if p.Rooms < 0 || p.Bathrooms < 0 {
		return Property{}, shared.NewDomainError(shared.CodeInvalidInput, "Room counts cannot be negative")
	}

	switch p.Type {
	case PropertyTypeResidential:
		if p.UnitType != "" && !p.UnitType.IsValid() {
			return Property{}, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown unit type %q", p.UnitType)
		}
		if p.Status != "" && !p.Status.IsValid() {
			return Property{}, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown status %q", p.Status)
		}
	case PropertyTypeLand:
		if p.LandUse != "" && !p.LandUse.IsValid() {
			return Property{}, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown land use %q", p.LandUse)
		}
		if p.TotalPrice.IsZero() && !p.LandArea.IsZero() && !p.PricePerMeter.IsZero() {
			p.TotalPrice = p.LandArea.Mul(p.PricePerMeter)
		}
		if p.Price.IsZero() {
			p.Price = p.TotalPrice
		}
	}

	if p.ID == "" || strings.HasPrefix(p.ID, SyntheticIDPrefix) {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = nowFunc()
	}
	p.ProjectID = ""
	p.ModelID = ""
	return p, nil
}
