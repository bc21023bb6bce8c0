package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProjectRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProjectRepository()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := newProject(t, "Palm Towers", "Cairo", base)
	newest := newProject(t, "Sea View", "Alexandria", base.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, oldest))
	require.NoError(t, repo.Save(ctx, newest))

	t.Run("FindByID returns ErrNotFound for unknown IDs", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("stored snapshots are isolated from later mutations", func(t *testing.T) {
		next, err := oldest.AssignUnit(inventory.FloorKey(2, 1), "b")
		require.NoError(t, err)
		assert.NotEmpty(t, next.UnitMapping())

		loaded, err := repo.FindByID(ctx, oldest.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.UnitMapping())
	})

	t.Run("FindAll sorts newest first and searches", func(t *testing.T) {
		all, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newest.ID, all[0].ID)

		asc, err := repo.FindAll(ctx, shared.Filter{OrderBy: "name", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, "Palm Towers", asc[0].Name)

		found, err := repo.FindAll(ctx, shared.Filter{Search: "cairo"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, oldest.ID, found[0].ID)
	})

	t.Run("pagination past the end is empty", func(t *testing.T) {
		page, err := repo.FindAll(ctx, shared.Filter{Page: 3, PageSize: 1})
		require.NoError(t, err)
		assert.Empty(t, page)

		count, err := repo.Count(ctx, shared.Filter{Page: 3, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
