package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProjectRepository creates a GormProjectRepository with a mocked SQL connection
func newMockProjectRepository(t *testing.T) (*GormProjectRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormProjectRepository(gormDB), mock, mockDB
}

func testProjectModel(t *testing.T, id string, price int64) inventory.ProjectModel {
	t.Helper()
	m, err := inventory.NewProjectModel(id, inventory.ModelAttributes{
		Name:      "Model " + id,
		Area:      decimal.NewFromInt(140),
		Price:     decimal.NewFromInt(price),
		Rooms:     3,
		Bathrooms: 2,
		Halls:     1,
		Finishing: inventory.FinishingMedium,
		Features:  []string{"balcony"},
	})
	require.NoError(t, err)
	return m
}

// newProject builds a 3x2 project with one annex and two models,
// stamped with the given creation time
func newProject(t *testing.T, name, city string, createdAt time.Time) *inventory.Project {
	t.Helper()
	p, err := inventory.NewProject(
		inventory.ProjectDetails{Name: name, Developer: "Nile Developments", City: city},
		inventory.NewStructure(3, 2, 1, 0),
		[]inventory.ProjectModel{testProjectModel(t, "a", 1500000), testProjectModel(t, "b", 2100000)},
	)
	require.NoError(t, err)
	snap := p.Snapshot()
	snap.CreatedAt = createdAt
	snap.UpdatedAt = createdAt
	return inventory.RestoreProject(snap)
}

// bookedProject assigns three units and books one of them
func bookedProject(t *testing.T) *inventory.Project {
	t.Helper()
	p := newProject(t, "Palm Towers", "Cairo", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	var err error
	p, err = p.AssignUnit(inventory.FloorKey(1, 1), "a")
	require.NoError(t, err)
	p, err = p.AssignUnit(inventory.FloorKey(3, 2), "a")
	require.NoError(t, err)
	p, err = p.AssignUnit(inventory.AnnexKey(1), "b")
	require.NoError(t, err)
	p, err = p.RecordBooking(inventory.FloorKey(1, 1), inventory.BookingInput{
		Type:               inventory.Reserved,
		MarketerName:       "Omar",
		MarketerPhone:      "0100",
		CustomerName:       "Laila",
		CustomerPhone:      "0111",
		BrokerageFee:       decimal.RequireFromString("2.5"),
		MarketerPercentage: decimal.NewFromInt(40),
	}, inventory.BookingModeDetailed)
	require.NoError(t, err)
	p, err = p.SetUnitStatus(inventory.AnnexKey(1), inventory.Sold)
	require.NoError(t, err)
	return p
}

func TestGormProjectRepository_FindByID(t *testing.T) {
	t.Run("returns ErrNotFound for a missing project", func(t *testing.T) {
		repo, mock, mockDB := newMockProjectRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "projects" WHERE id = \$1 ORDER BY "projects"."id" LIMIT \$2`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		project, err := repo.FindByID(context.Background(), id)
		assert.Nil(t, project)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects corrupted unit maps", func(t *testing.T) {
		repo, mock, mockDB := newMockProjectRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows([]string{
			"id", "created_at", "updated_at", "version", "name", "developer", "city", "status",
			"floors_count", "units_per_floor", "annex_count", "basement_count",
			"models", "unit_mapping", "unit_status", "unit_bookings",
		}).AddRow(
			id.String(), now, now, 1, "Palm Towers", "Nile", "Cairo", "ready",
			3, 2, 0, 0,
			`[]`, `{not json`, `{}`, `{}`,
		)
		mock.ExpectQuery(`SELECT \* FROM "projects" WHERE id = \$1`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		project, err := repo.FindByID(context.Background(), id)
		assert.Nil(t, project)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unit_mapping")
	})
}

func TestGormProjectRepository_FindAllQuery(t *testing.T) {
	t.Run("searches name and city case-insensitively, newest first", func(t *testing.T) {
		repo, mock, mockDB := newMockProjectRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "projects" WHERE LOWER\(name\) LIKE \$1 OR LOWER\(city\) LIKE \$2 ORDER BY created_at DESC,id DESC LIMIT \$3`).
			WithArgs("%palm%", "%palm%", 20).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		filter := shared.DefaultFilter()
		filter.Search = "  Palm "
		projects, err := repo.FindAll(context.Background(), filter)
		require.NoError(t, err)
		assert.Empty(t, projects)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to created_at for unknown sort fields", func(t *testing.T) {
		repo, mock, mockDB := newMockProjectRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "projects" ORDER BY created_at ASC,id ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindAll(context.Background(), shared.Filter{OrderBy: "unit_mapping; DROP TABLE projects", OrderDir: "asc"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProjectRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProjectRepository(newSQLiteDatabase(t).DB)

	original := bookedProject(t)
	require.NoError(t, repo.Save(ctx, original))

	loaded, err := repo.FindByID(ctx, original.ID)
	require.NoError(t, err)

	want, got := original.Snapshot(), loaded.Snapshot()
	assert.Equal(t, want.Details, got.Details)
	assert.Equal(t, want.Structure, got.Structure)
	assert.Equal(t, want.UnitMapping, got.UnitMapping)
	assert.Equal(t, want.UnitStatus, got.UnitStatus)
	assert.Equal(t, want.Version, got.Version)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	require.Len(t, got.Models, 2)
	assert.Equal(t, "a", got.Models[0].ID)
	assert.True(t, got.Models[0].Price.Equal(decimal.NewFromInt(1500000)))
	assert.Equal(t, []string{"balcony"}, got.Models[0].Features)

	booking, ok := loaded.BookingOf(inventory.FloorKey(1, 1))
	require.True(t, ok)
	assert.Equal(t, "Laila", booking.CustomerName)
	assert.Equal(t, inventory.Reserved, booking.Type)
	assert.True(t, booking.BrokerageFee.Equal(decimal.RequireFromString("2.5")))
	assert.False(t, booking.IsPlaceholder())

	// sold without details gets a placeholder booking on both sides
	sold, ok := loaded.BookingOf(inventory.AnnexKey(1))
	require.True(t, ok)
	assert.True(t, sold.IsPlaceholder())

	assert.Equal(t, original.Stats(), loaded.Stats())
}

func TestGormProjectRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProjectRepository(newSQLiteDatabase(t).DB)

	p := bookedProject(t)
	require.NoError(t, repo.Save(ctx, p))

	next, err := p.AssignUnit(inventory.FloorKey(1, 1), "a")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, next))

	count, err := repo.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	loaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	_, assigned := loaded.ModelOf(inventory.FloorKey(1, 1))
	assert.False(t, assigned, "toggling the same model unassigns the unit")
	_, booked := loaded.BookingOf(inventory.FloorKey(1, 1))
	assert.False(t, booked)
	assert.Equal(t, next.Version, loaded.Version)
}

func TestGormProjectRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProjectRepository(newSQLiteDatabase(t).DB)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := newProject(t, "Palm Towers", "Cairo", base)
	middle := newProject(t, "Sea View", "Alexandria", base.Add(time.Hour))
	newest := newProject(t, "Palm Hills", "Giza", base.Add(2*time.Hour))
	for _, p := range []*inventory.Project{oldest, newest, middle} {
		require.NoError(t, repo.Save(ctx, p))
	}

	ids := func(projects []*inventory.Project) []uuid.UUID {
		out := make([]uuid.UUID, len(projects))
		for i, p := range projects {
			out[i] = p.ID
		}
		return out
	}

	t.Run("zero page size returns everything newest first", func(t *testing.T) {
		all, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{newest.ID, middle.ID, oldest.ID}, ids(all))
	})

	t.Run("search matches name or city", func(t *testing.T) {
		filter := shared.Filter{Search: "PALM"}
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{newest.ID, oldest.ID}, ids(found))

		byCity, err := repo.FindAll(ctx, shared.Filter{Search: "alex"})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{middle.ID}, ids(byCity))

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{oldest.ID}, ids(page))
	})
}
