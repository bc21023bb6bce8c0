package listing

import "context"

// PropertyRepository persists standalone properties. Synthesized entries
// are never stored.
type PropertyRepository interface {
	// FindAll returns properties newest first; a batch saved together keeps
	// its input order.
	FindAll(ctx context.Context) ([]Property, error)

	// FindByID returns shared.ErrNotFound when the property does not exist
	FindByID(ctx context.Context, id string) (*Property, error)

	// SaveBatch stores properties ahead of existing ones, in the given order
	SaveBatch(ctx context.Context, props []Property) error

	Delete(ctx context.Context, id string) error
}
