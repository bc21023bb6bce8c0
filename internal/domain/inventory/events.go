package inventory

import (
	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProject = "Project"

// Event type constants
const (
	EventTypeProjectCreated      = "ProjectCreated"
	EventTypeProjectUpdated      = "ProjectUpdated"
	EventTypeProjectRestructured = "ProjectRestructured"
	EventTypeModelAdded          = "ModelAdded"
	EventTypeModelUpdated        = "ModelUpdated"
	EventTypeModelRemoved        = "ModelRemoved"
	EventTypeUnitAssigned        = "UnitAssigned"
	EventTypeUnitUnassigned      = "UnitUnassigned"
	EventTypeUnitStatusChanged   = "UnitStatusChanged"
	EventTypeBookingRecorded     = "BookingRecorded"
)

func newProjectEvent(eventType string, p *Project) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeProject, p.ID, p.UpdatedAt)
}

// ProjectCreatedEvent is raised when a project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID  uuid.UUID `json:"project_id"`
	Name       string    `json:"name"`
	Capacity   int       `json:"capacity"`
	ModelCount int       `json:"model_count"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeProjectCreated, p),
		ProjectID:       p.ID,
		Name:            p.Name,
		Capacity:        p.layout.Len(),
		ModelCount:      len(p.models),
	}
}

// ProjectUpdatedEvent is raised when descriptive fields change
type ProjectUpdatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
}

// NewProjectUpdatedEvent creates a new ProjectUpdatedEvent
func NewProjectUpdatedEvent(p *Project) *ProjectUpdatedEvent {
	return &ProjectUpdatedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeProjectUpdated, p),
		ProjectID:       p.ID,
		Name:            p.Name,
	}
}

// ProjectRestructuredEvent is raised when the building structure changes
type ProjectRestructuredEvent struct {
	shared.BaseDomainEvent
	ProjectID     uuid.UUID `json:"project_id"`
	Structure     Structure `json:"structure"`
	ReleasedUnits int       `json:"released_units"`
}

// NewProjectRestructuredEvent creates a new ProjectRestructuredEvent
func NewProjectRestructuredEvent(p *Project, released int) *ProjectRestructuredEvent {
	return &ProjectRestructuredEvent{
		BaseDomainEvent: newProjectEvent(EventTypeProjectRestructured, p),
		ProjectID:       p.ID,
		Structure:       p.layout.Structure(),
		ReleasedUnits:   released,
	}
}

// ModelAddedEvent is raised when a model joins the catalog
type ModelAddedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID       `json:"project_id"`
	ModelID   string          `json:"model_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// NewModelAddedEvent creates a new ModelAddedEvent
func NewModelAddedEvent(p *Project, m ProjectModel) *ModelAddedEvent {
	return &ModelAddedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeModelAdded, p),
		ProjectID:       p.ID,
		ModelID:         m.ID,
		Name:            m.Name,
		Price:           m.Price,
	}
}

// ModelUpdatedEvent is raised when model attributes change
type ModelUpdatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID       `json:"project_id"`
	ModelID   string          `json:"model_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// NewModelUpdatedEvent creates a new ModelUpdatedEvent
func NewModelUpdatedEvent(p *Project, m ProjectModel) *ModelUpdatedEvent {
	return &ModelUpdatedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeModelUpdated, p),
		ProjectID:       p.ID,
		ModelID:         m.ID,
		Name:            m.Name,
		Price:           m.Price,
	}
}

// ModelRemovedEvent is raised when a model is removed together with its units
type ModelRemovedEvent struct {
	shared.BaseDomainEvent
	ProjectID     uuid.UUID `json:"project_id"`
	ModelID       string    `json:"model_id"`
	ReleasedUnits int       `json:"released_units"`
}

// NewModelRemovedEvent creates a new ModelRemovedEvent
func NewModelRemovedEvent(p *Project, modelID string, released int) *ModelRemovedEvent {
	return &ModelRemovedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeModelRemoved, p),
		ProjectID:       p.ID,
		ModelID:         modelID,
		ReleasedUnits:   released,
	}
}

// UnitAssignedEvent is raised when a unit is bound or rebound to a model
type UnitAssignedEvent struct {
	shared.BaseDomainEvent
	ProjectID       uuid.UUID `json:"project_id"`
	UnitKey         UnitKey   `json:"unit_key"`
	ModelID         string    `json:"model_id"`
	PreviousModelID string    `json:"previous_model_id,omitempty"`
}

// NewUnitAssignedEvent creates a new UnitAssignedEvent
func NewUnitAssignedEvent(p *Project, key UnitKey, modelID, previous string) *UnitAssignedEvent {
	return &UnitAssignedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeUnitAssigned, p),
		ProjectID:       p.ID,
		UnitKey:         key,
		ModelID:         modelID,
		PreviousModelID: previous,
	}
}

// UnitUnassignedEvent is raised when a unit loses its model
type UnitUnassignedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	UnitKey   UnitKey   `json:"unit_key"`
	ModelID   string    `json:"model_id"`
}

// NewUnitUnassignedEvent creates a new UnitUnassignedEvent
func NewUnitUnassignedEvent(p *Project, key UnitKey, modelID string) *UnitUnassignedEvent {
	return &UnitUnassignedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeUnitUnassigned, p),
		ProjectID:       p.ID,
		UnitKey:         key,
		ModelID:         modelID,
	}
}

// UnitStatusChangedEvent is raised on every availability transition
type UnitStatusChangedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID    `json:"project_id"`
	UnitKey   UnitKey      `json:"unit_key"`
	ModelID   string       `json:"model_id"`
	From      Availability `json:"from"`
	To        Availability `json:"to"`
}

// NewUnitStatusChangedEvent creates a new UnitStatusChangedEvent
func NewUnitStatusChangedEvent(p *Project, key UnitKey, modelID string, from, to Availability) *UnitStatusChangedEvent {
	return &UnitStatusChangedEvent{
		BaseDomainEvent: newProjectEvent(EventTypeUnitStatusChanged, p),
		ProjectID:       p.ID,
		UnitKey:         key,
		ModelID:         modelID,
		From:            from,
		To:              to,
	}
}

// BookingRecordedEvent is raised when detailed booking terms are stored
type BookingRecordedEvent struct {
	shared.BaseDomainEvent
	ProjectID          uuid.UUID       `json:"project_id"`
	ModelID            string          `json:"model_id"`
	UnitKey            UnitKey         `json:"unit_key"`
	UnitNumber         string          `json:"unit_number"`
	Type               Availability    `json:"type"`
	BrokerageFee       decimal.Decimal `json:"brokerage_fee"`
	MarketerPercentage decimal.Decimal `json:"marketer_percentage"`
	IsExternalMarketer bool            `json:"is_external_marketer"`
}

// NewBookingRecordedEvent creates a new BookingRecordedEvent
func NewBookingRecordedEvent(p *Project, modelID string, b BookingDetails) *BookingRecordedEvent {
	return &BookingRecordedEvent{
		BaseDomainEvent:    newProjectEvent(EventTypeBookingRecorded, p),
		ProjectID:          p.ID,
		ModelID:            modelID,
		UnitKey:            b.UnitKey,
		UnitNumber:         b.UnitNumber,
		Type:               b.Type,
		BrokerageFee:       b.BrokerageFee,
		MarketerPercentage: b.MarketerPercentage,
		IsExternalMarketer: b.IsExternalMarketer,
	}
}
