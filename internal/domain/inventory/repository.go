package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/shared"
)

// ProjectRepository persists project snapshots. Save is last-write-wins.
type ProjectRepository interface {
	// FindByID returns shared.ErrNotFound when the project does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindAll returns projects newest first, filtered by name/city search.
	// A PageSize of zero or less returns every matching project.
	FindAll(ctx context.Context, filter shared.Filter) ([]*Project, error)

	// Count returns the number of projects matching filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	Save(ctx context.Context, project *Project) error
}
