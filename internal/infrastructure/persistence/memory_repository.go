package persistence

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/listing"
	"github.com/ryznreal/offers/internal/domain/shared"
)

// MemoryProjectRepository keeps project snapshots in process memory.
// It backs the memory database driver and is lost on restart.
type MemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]inventory.ProjectSnapshot
}

// NewMemoryProjectRepository creates an empty MemoryProjectRepository
func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{projects: make(map[uuid.UUID]inventory.ProjectSnapshot)}
}

// FindByID returns a fresh copy of the stored project
func (r *MemoryProjectRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inventory.RestoreProject(snap), nil
}

// FindAll returns matching projects sorted and paginated like the SQL repository
func (r *MemoryProjectRepository) FindAll(_ context.Context, filter shared.Filter) ([]*inventory.Project, error) {
	r.mu.RLock()
	matched := r.match(filter)
	r.mu.RUnlock()

	order := projectOrder(filter)
	slices.SortFunc(matched, func(a, b inventory.ProjectSnapshot) int {
		c := compareSnapshots(a, b, order.Column)
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if order.Desc {
			return -c
		}
		return c
	})

	if filter.PageSize > 0 {
		start := min(filter.Offset(), len(matched))
		end := min(start+filter.PageSize, len(matched))
		matched = matched[start:end]
	}

	projects := make([]*inventory.Project, len(matched))
	for i, snap := range matched {
		projects[i] = inventory.RestoreProject(snap)
	}
	return projects, nil
}

// Count counts projects matching the filter search
func (r *MemoryProjectRepository) Count(_ context.Context, filter shared.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.match(filter))), nil
}

// Save stores a snapshot of project, replacing any previous one
func (r *MemoryProjectRepository) Save(_ context.Context, project *inventory.Project) error {
	snap := project.Snapshot()
	r.mu.Lock()
	r.projects[snap.ID] = snap
	r.mu.Unlock()
	return nil
}

// match must be called with r.mu held
func (r *MemoryProjectRepository) match(filter shared.Filter) []inventory.ProjectSnapshot {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]inventory.ProjectSnapshot, 0, len(r.projects))
	for _, snap := range r.projects {
		if search != "" &&
			!strings.Contains(strings.ToLower(snap.Details.Name), search) &&
			!strings.Contains(strings.ToLower(snap.Details.City), search) {
			continue
		}
		out = append(out, snap)
	}
	return out
}

func compareSnapshots(a, b inventory.ProjectSnapshot, field string) int {
	switch field {
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "name":
		return cmp.Compare(a.Details.Name, b.Details.Name)
	case "city":
		return cmp.Compare(a.Details.City, b.Details.City)
	case "developer":
		return cmp.Compare(a.Details.Developer, b.Details.Developer)
	case "status":
		return cmp.Compare(a.Details.Status, b.Details.Status)
	case "id":
		return strings.Compare(a.ID.String(), b.ID.String())
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// MemoryPropertyRepository keeps standalone properties in catalog order
type MemoryPropertyRepository struct {
	mu    sync.RWMutex
	props []listing.Property
}

// NewMemoryPropertyRepository creates an empty MemoryPropertyRepository
func NewMemoryPropertyRepository() *MemoryPropertyRepository {
	return &MemoryPropertyRepository{}
}

// FindAll returns a copy of every property, newest batch first
func (r *MemoryPropertyRepository) FindAll(_ context.Context) ([]listing.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.props), nil
}

// FindByID finds a property by its ID
func (r *MemoryPropertyRepository) FindByID(_ context.Context, id string) (*listing.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.props {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

// SaveBatch prepends props in input order. A batch whose IDs collide with
// stored properties or with each other is rejected whole.
func (r *MemoryPropertyRepository) SaveBatch(_ context.Context, props []listing.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(r.props)+len(props))
	for _, p := range r.props {
		seen[p.ID] = struct{}{}
	}
	for _, p := range props {
		if _, dup := seen[p.ID]; dup {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A property with this ID already exists")
		}
		seen[p.ID] = struct{}{}
	}
	r.props = append(slices.Clone(props), r.props...)
	return nil
}

// Delete removes a property, returning shared.ErrNotFound when absent
func (r *MemoryPropertyRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.props, func(p listing.Property) bool { return p.ID == id })
	if i < 0 {
		return shared.ErrNotFound
	}
	r.props = slices.Delete(r.props, i, i+1)
	return nil
}

var (
	_ inventory.ProjectRepository = (*MemoryProjectRepository)(nil)
	_ listing.PropertyRepository  = (*MemoryPropertyRepository)(nil)
)
