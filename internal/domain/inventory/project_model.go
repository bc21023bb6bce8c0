package inventory

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Finishing is the interior finishing grade of a model
type Finishing string

const (
	FinishingEconomic Finishing = "economic"
	FinishingMedium   Finishing = "medium"
	FinishingLuxury   Finishing = "luxury"
)

// IsValid checks if the finishing grade is known
func (f Finishing) IsValid() bool {
	switch f {
	case FinishingEconomic, FinishingMedium, FinishingLuxury:
		return true
	}
	return false
}

// ModelAttributes are the mutable attributes of a ProjectModel
type ModelAttributes struct {
	Name      string
	ColorTag  string
	Area      decimal.Decimal
	Price     decimal.Decimal
	Rooms     int
	Bathrooms int
	Halls     int
	Finishing Finishing
	Features  []string
}

// Validate checks the attributes
func (a ModelAttributes) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Model name cannot be empty")
	}
	if a.Price.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Model price cannot be negative")
	}
	if a.Area.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Model area cannot be negative")
	}
	if a.Rooms < 0 || a.Bathrooms < 0 || a.Halls < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Room counts cannot be negative")
	}
	if a.Finishing != "" && !a.Finishing.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown finishing %q", a.Finishing)
	}
	return nil
}

// ProjectModel is a sellable floor plan. ID is immutable once created.
type ProjectModel struct {
	ID string
	ModelAttributes
}

// NewProjectModel creates a model, generating an ID when id is empty
func NewProjectModel(id string, attrs ModelAttributes) (ProjectModel, error) {
	if err := attrs.Validate(); err != nil {
		return ProjectModel{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	attrs.Name = strings.TrimSpace(attrs.Name)
	attrs.Features = slices.Clone(attrs.Features)
	return ProjectModel{ID: id, ModelAttributes: attrs}, nil
}

func (m ProjectModel) clone() ProjectModel {
	m.Features = slices.Clone(m.Features)
	return m
}
