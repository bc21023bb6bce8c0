package inventory

import (
	"time"

	"github.com/ryznreal/offers/internal/domain/shared"
)

// Models returns a copy of the model catalog in catalog order
func (p *Project) Models() []ProjectModel {
	out := make([]ProjectModel, len(p.models))
	for i, m := range p.models {
		out[i] = m.clone()
	}
	return out
}

// Model looks up a model by ID
func (p *Project) Model(id string) (ProjectModel, bool) {
	i := p.modelIndex(id)
	if i < 0 {
		return ProjectModel{}, false
	}
	return p.models[i].clone(), true
}

// HasModel reports whether the catalog contains id
func (p *Project) HasModel(id string) bool {
	return p.modelIndex(id) >= 0
}

func (p *Project) modelIndex(id string) int {
	for i := range p.models {
		if p.models[i].ID == id {
			return i
		}
	}
	return -1
}

// AddModel appends a model to the catalog
func (p *Project) AddModel(model ProjectModel) (*Project, error) {
	if model.ID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Model ID cannot be empty")
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if p.HasModel(model.ID) {
		return nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "Model %q already exists in project", model.ID)
	}
	return p.mutate(func(next *Project, _ time.Time) error {
		next.models = append(next.models, model.clone())
		next.AddDomainEvent(NewModelAddedEvent(next, model))
		return nil
	})
}

// UpdateModel replaces the attributes of model id; its identity and unit
// bindings are kept.
func (p *Project) UpdateModel(id string, attrs ModelAttributes) (*Project, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	i := p.modelIndex(id)
	if i < 0 {
		return nil, shared.NewDomainErrorf(shared.CodeModelNotFound, "Model %q not found in project", id)
	}
	updated, err := NewProjectModel(id, attrs)
	if err != nil {
		return nil, err
	}
	return p.mutate(func(next *Project, _ time.Time) error {
		next.models[i] = updated
		next.AddDomainEvent(NewModelUpdatedEvent(next, updated))
		return nil
	})
}

// RemoveModel deletes a model and releases every unit bound to it,
// together with their status and booking. The last model of a project
// cannot be removed.
func (p *Project) RemoveModel(id string) (*Project, error) {
	i := p.modelIndex(id)
	if i < 0 {
		return nil, shared.NewDomainErrorf(shared.CodeModelNotFound, "Model %q not found in project", id)
	}
	if len(p.models) == 1 {
		return nil, shared.NewDomainError(shared.CodeInvariantViolation, "Cannot remove the last model of a project")
	}
	return p.mutate(func(next *Project, _ time.Time) error {
		next.models = append(next.models[:i:i], next.models[i+1:]...)
		released := 0
		for j := range next.slots {
			if next.slots[j].modelID == id {
				next.slots[j] = unitSlot{}
				released++
			}
		}
		next.AddDomainEvent(NewModelRemovedEvent(next, id, released))
		return nil
	})
}
