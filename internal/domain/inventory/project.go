package inventory

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/shared"
)

// nowFunc is the clock used for timestamps; tests replace it
var nowFunc = time.Now

// ProjectStatus is the construction stage of a project
type ProjectStatus string

const (
	ProjectStatusReady             ProjectStatus = "ready"
	ProjectStatusUnderConstruction ProjectStatus = "under_construction"
	ProjectStatusUnderFinishing    ProjectStatus = "under_finishing"
)

// IsValid checks if the status is known
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusReady, ProjectStatusUnderConstruction, ProjectStatusUnderFinishing:
		return true
	}
	return false
}

// ProjectDetails are the descriptive fields of a project
type ProjectDetails struct {
	Name         string
	DeveloperID  string
	Developer    string
	Description  string
	City         string
	District     string
	GoogleMapURL string
	BrochureURL  string
	Status       ProjectStatus
}

func (d ProjectDetails) normalize() (ProjectDetails, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Developer = strings.TrimSpace(d.Developer)
	d.City = strings.TrimSpace(d.City)
	d.District = strings.TrimSpace(d.District)
	if d.Name == "" {
		return d, shared.NewDomainError(shared.CodeInvalidInput, "Project name cannot be empty")
	}
	if d.Developer == "" {
		return d, shared.NewDomainError(shared.CodeInvalidInput, "Project developer cannot be empty")
	}
	if d.City == "" {
		return d, shared.NewDomainError(shared.CodeInvalidInput, "Project city cannot be empty")
	}
	if d.Status == "" {
		d.Status = ProjectStatusUnderConstruction
	}
	if !d.Status.IsValid() {
		return d, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown project status %q", d.Status)
	}
	return d, nil
}

// unitSlot is the state of one layout slot. The zero value is an
// unassigned unit.
type unitSlot struct {
	modelID string
	status  Availability
	booking *BookingDetails
}

func (s unitSlot) assigned() bool { return s.modelID != "" }

// Project is the aggregate root of a building: its structure, model
// catalog and per-unit assignment, availability and booking state.
//
// Projects are immutable snapshots. Every mutator returns a new *Project
// carrying the domain events of that change and leaves the receiver as it
// was. A failed mutator returns a nil snapshot.
type Project struct {
	shared.BaseAggregateRoot
	ProjectDetails

	layout *UnitLayout
	models []ProjectModel
	slots  []unitSlot
}

// NewProject creates a project. At least one model is required.
func NewProject(details ProjectDetails, structure Structure, models []ProjectModel) (*Project, error) {
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvariantViolation, "A project needs at least one model")
	}
	seen := make(map[string]struct{}, len(models))
	catalog := make([]ProjectModel, 0, len(models))
	for _, m := range models {
		if m.ID == "" {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Model ID cannot be empty")
		}
		if _, dup := seen[m.ID]; dup {
			return nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "Duplicate model ID %q", m.ID)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		seen[m.ID] = struct{}{}
		catalog = append(catalog, m.clone())
	}

	layout := NewUnitLayout(structure)
	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(nowFunc()),
		ProjectDetails:    details,
		layout:            layout,
		models:            catalog,
		slots:             make([]unitSlot, layout.Len()),
	}
	p.AddDomainEvent(NewProjectCreatedEvent(p))
	return p, nil
}

// ProjectSnapshot is the persisted shape of a project, with unit state
// keyed by unit key.
type ProjectSnapshot struct {
	ID           uuid.UUID
	Details      ProjectDetails
	Structure    Structure
	Models       []ProjectModel
	UnitMapping  map[UnitKey]string
	UnitStatus   map[UnitKey]Availability
	UnitBookings map[UnitKey]BookingDetails
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int
}

// RestoreProject rebuilds a project from persisted state. Unit entries
// whose key is malformed, outside the structure, or bound to a model that
// no longer exists are dropped, as are status and booking entries of
// unassigned units. Non-available units without a booking get a placeholder.
func RestoreProject(s ProjectSnapshot) *Project {
	layout := NewUnitLayout(s.Structure)
	p := &Project{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
			Version:    s.Version,
		},
		ProjectDetails: s.Details,
		layout:         layout,
		models:         make([]ProjectModel, 0, len(s.Models)),
		slots:          make([]unitSlot, layout.Len()),
	}
	for _, m := range s.Models {
		p.models = append(p.models, m.clone())
	}
	for key, modelID := range s.UnitMapping {
		i, ok := layout.IndexOf(key)
		if !ok || !p.HasModel(modelID) {
			continue
		}
		status := s.UnitStatus[key]
		if !status.IsValid() {
			status = Available
		}
		slot := unitSlot{modelID: modelID, status: status}
		if status != Available {
			if b, ok := s.UnitBookings[key]; ok {
				b.UnitKey = key
				b.UnitNumber = layout.Ref(i).Number()
				b.Type = status
				slot.booking = &b
			} else {
				slot.booking = placeholderBooking(layout.Ref(i), status, s.UpdatedAt)
			}
		}
		p.slots[i] = slot
	}
	return p
}

// Snapshot exports the project in its persisted shape
func (p *Project) Snapshot() ProjectSnapshot {
	return ProjectSnapshot{
		ID:           p.ID,
		Details:      p.ProjectDetails,
		Structure:    p.layout.Structure(),
		Models:       p.Models(),
		UnitMapping:  p.UnitMapping(),
		UnitStatus:   p.UnitStatus(),
		UnitBookings: p.UnitBookings(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// clone copies the project for a new snapshot. The layout is shared,
// slots and models are copied; bookings are replaced, never edited in place.
func (p *Project) clone() *Project {
	next := &Project{
		BaseAggregateRoot: p.BaseAggregateRoot.Fork(),
		ProjectDetails:    p.ProjectDetails,
		layout:            p.layout,
		models:            make([]ProjectModel, len(p.models)),
		slots:             slices.Clone(p.slots),
	}
	for i, m := range p.models {
		next.models[i] = m.clone()
	}
	return next
}

// mutate applies fn to a clone and stamps the resulting snapshot
func (p *Project) mutate(fn func(next *Project, at time.Time) error) (*Project, error) {
	next := p.clone()
	at := nowFunc()
	next.Touch(at)
	if err := fn(next, at); err != nil {
		return nil, err
	}
	next.IncrementVersion()
	return next, nil
}

// Structure returns the project's building structure
func (p *Project) Structure() Structure {
	return p.layout.Structure()
}

// Layout returns the project's unit arena
func (p *Project) Layout() *UnitLayout {
	return p.layout
}

// UpdateDetails replaces the descriptive fields
func (p *Project) UpdateDetails(details ProjectDetails) (*Project, error) {
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	return p.mutate(func(next *Project, _ time.Time) error {
		next.ProjectDetails = details
		next.AddDomainEvent(NewProjectUpdatedEvent(next))
		return nil
	})
}

// SetBrochureURL points the project at an uploaded brochure
func (p *Project) SetBrochureURL(url string) (*Project, error) {
	return p.mutate(func(next *Project, _ time.Time) error {
		next.BrochureURL = url
		next.AddDomainEvent(NewProjectUpdatedEvent(next))
		return nil
	})
}

// Restructure changes the building structure. State of units that still
// exist in the new grid is carried over; units that fell outside it lose
// their assignment, status and booking.
func (p *Project) Restructure(structure Structure) (*Project, error) {
	return p.mutate(func(next *Project, _ time.Time) error {
		layout := NewUnitLayout(structure)
		slots := make([]unitSlot, layout.Len())
		purged := 0
		for i, slot := range p.slots {
			if !slot.assigned() {
				continue
			}
			j, ok := layout.IndexOf(p.layout.Key(i))
			if !ok {
				purged++
				continue
			}
			slots[j] = slot
		}
		next.layout = layout
		next.slots = slots
		next.AddDomainEvent(NewProjectRestructuredEvent(next, purged))
		return nil
	})
}

// UnitMapping returns unit key -> model ID for every assigned unit
func (p *Project) UnitMapping() map[UnitKey]string {
	out := make(map[UnitKey]string)
	for i, slot := range p.slots {
		if slot.assigned() {
			out[p.layout.Key(i)] = slot.modelID
		}
	}
	return out
}

// UnitStatus returns unit key -> availability for every assigned unit
func (p *Project) UnitStatus() map[UnitKey]Availability {
	out := make(map[UnitKey]Availability)
	for i, slot := range p.slots {
		if slot.assigned() {
			out[p.layout.Key(i)] = slot.status
		}
	}
	return out
}

// UnitBookings returns unit key -> booking for every booked unit
func (p *Project) UnitBookings() map[UnitKey]BookingDetails {
	out := make(map[UnitKey]BookingDetails)
	for i, slot := range p.slots {
		if slot.assigned() && slot.booking != nil {
			out[p.layout.Key(i)] = *slot.booking
		}
	}
	return out
}
