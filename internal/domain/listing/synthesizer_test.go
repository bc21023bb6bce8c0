package listing

import (
	"testing"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T, name string, structure inventory.Structure, models ...inventory.ProjectModel) *inventory.Project {
	t.Helper()
	p, err := inventory.NewProject(inventory.ProjectDetails{
		Name:         name,
		Developer:    "Rawabi",
		City:         "Riyadh",
		District:     "Al Malqa",
		Description:  "Family towers",
		GoogleMapURL: "https://maps.example/palm",
		BrochureURL:  "https://cdn.example/palm.pdf",
		Status:       inventory.ProjectStatusReady,
	}, structure, models)
	require.NoError(t, err)
	return p
}

func model(t *testing.T, id, name string, price, area int64, rooms int) inventory.ProjectModel {
	t.Helper()
	m, err := inventory.NewProjectModel(id, inventory.ModelAttributes{
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Area:      decimal.NewFromInt(area),
		Rooms:     rooms,
		Bathrooms: 2,
		Finishing: inventory.FinishingMedium,
	})
	require.NoError(t, err)
	return m
}

func assign(t *testing.T, p *inventory.Project, key inventory.UnitKey, modelID string) *inventory.Project {
	t.Helper()
	next, err := p.AssignUnit(key, modelID)
	require.NoError(t, err)
	return next
}

func setStatus(t *testing.T, p *inventory.Project, key inventory.UnitKey, status inventory.Availability) *inventory.Project {
	t.Helper()
	next, err := p.SetUnitStatus(key, status)
	require.NoError(t, err)
	return next
}

func ids(props []Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestSynthesize_EndToEnd(t *testing.T) {
	p := newProject(t, "Palm", inventory.Structure{FloorsCount: 2, UnitsPerFloor: 2},
		model(t, "m1", "Corner", 900000, 150, 4))
	p = assign(t, p, "floor-1-1", "m1")
	p = assign(t, p, "floor-2-1", "m1")

	catalog := Synthesize([]*inventory.Project{p}, nil)
	require.Len(t, catalog, 1)

	entry := catalog[0]
	assert.Equal(t, "SAMPLE-"+p.ID.String()+"-m1", entry.ID)
	assert.Equal(t, p.ID.String(), entry.ProjectID)
	assert.Equal(t, "m1", entry.ModelID)
	assert.Equal(t, "Palm - Corner", entry.ProjectName)
	assert.True(t, entry.Price.Equal(decimal.NewFromInt(900000)))
	assert.True(t, entry.Area.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 4, entry.Rooms)
	assert.Equal(t, 2, entry.Bathrooms)
	assert.Equal(t, inventory.FinishingMedium, entry.Finishing)
	assert.Equal(t, "Riyadh", entry.City)
	assert.Equal(t, "Al Malqa", entry.District)
	assert.Equal(t, "Rawabi", entry.Developer)
	assert.Equal(t, inventory.ProjectStatusReady, entry.Status)
	assert.Equal(t, "https://maps.example/palm", entry.MapURL)
	assert.Equal(t, "Family towers", entry.ProjectDescription)
	assert.Equal(t, "https://cdn.example/palm.pdf", entry.ProjectBrochureURL)
	assert.Equal(t, PropertyTypeResidential, entry.Type)
	assert.True(t, entry.IsSynthesized())
	assert.True(t, entry.LandArea.IsZero())

	p = setStatus(t, p, "floor-1-1", inventory.Sold)
	assert.Len(t, Synthesize([]*inventory.Project{p}, nil), 1)

	p = setStatus(t, p, "floor-2-1", inventory.Sold)
	assert.Empty(t, Synthesize([]*inventory.Project{p}, nil))
}

func TestSynthesize_Exposure(t *testing.T) {
	p := newProject(t, "Palm", inventory.Structure{FloorsCount: 2, UnitsPerFloor: 2, AnnexCount: 1},
		model(t, "m1", "A", 1, 1, 1),
		model(t, "m2", "B", 2, 1, 1),
		model(t, "m3", "C", 3, 1, 1),
		model(t, "m4", "D", 4, 1, 1),
	)
	// m1: one reserved, one available -> exposed
	p = assign(t, p, "floor-1-1", "m1")
	p = assign(t, p, "floor-1-2", "m1")
	p = setStatus(t, p, "floor-1-1", inventory.Reserved)
	// m2: no units -> hidden
	// m3: all sold or reserved -> hidden
	p = assign(t, p, "floor-2-1", "m3")
	p = assign(t, p, "annex-1", "m3")
	p = setStatus(t, p, "floor-2-1", inventory.Sold)
	p = setStatus(t, p, "annex-1", inventory.Reserved)
	// m4: available -> exposed
	p = assign(t, p, "floor-2-2", "m4")

	catalog := Synthesize([]*inventory.Project{p}, nil)
	assert.Equal(t, []string{
		SyntheticID(p.ID.String(), "m1"),
		SyntheticID(p.ID.String(), "m4"),
	}, ids(catalog))
}

func TestSynthesize_OrderAndStandalone(t *testing.T) {
	p1 := newProject(t, "First", inventory.Structure{FloorsCount: 1, UnitsPerFloor: 2},
		model(t, "b", "B", 1, 1, 1), model(t, "a", "A", 1, 1, 1))
	p1 = assign(t, p1, "floor-1-1", "a")
	p1 = assign(t, p1, "floor-1-2", "b")
	p2 := newProject(t, "Second", inventory.Structure{AnnexCount: 1}, model(t, "x", "X", 1, 1, 1))
	p2 = assign(t, p2, "annex-1", "x")

	standalone := []Property{
		{ID: "s1", Type: PropertyTypeLand, City: "Jeddah"},
		{ID: "s2", Type: PropertyTypeResidential, City: "Dammam"},
	}

	catalog := Synthesize([]*inventory.Project{p1, p2}, standalone)
	assert.Equal(t, []string{
		SyntheticID(p1.ID.String(), "b"),
		SyntheticID(p1.ID.String(), "a"),
		SyntheticID(p2.ID.String(), "x"),
		"s1", "s2",
	}, ids(catalog))
}

func TestSynthesize_Deterministic(t *testing.T) {
	p := newProject(t, "Palm", inventory.Structure{FloorsCount: 3, UnitsPerFloor: 3},
		model(t, "m1", "A", 1, 1, 1), model(t, "m2", "B", 2, 1, 1))
	p = assign(t, p, "floor-1-1", "m1")
	p = assign(t, p, "floor-3-3", "m2")
	standalone := []Property{{ID: "s1", Type: PropertyTypeResidential, City: "Abha"}}
	projects := []*inventory.Project{p}

	first := Synthesize(projects, standalone)
	second := Synthesize(projects, standalone)
	assert.Equal(t, first, second)
	assert.Len(t, standalone, 1)
}

func TestSynthesize_DegradedProjects(t *testing.T) {
	t.Run("negative counts expose nothing", func(t *testing.T) {
		p := newProject(t, "Broken", inventory.Structure{FloorsCount: -3, UnitsPerFloor: -1},
			model(t, "m1", "A", 1, 1, 1))
		assert.Empty(t, Synthesize([]*inventory.Project{p}, nil))
	})

	t.Run("restored orphans are ignored", func(t *testing.T) {
		p := newProject(t, "Restored", inventory.Structure{FloorsCount: 1, UnitsPerFloor: 1},
			model(t, "m1", "A", 1, 1, 1))
		snap := p.Snapshot()
		snap.UnitMapping = map[inventory.UnitKey]string{
			"floor-5-5": "m1",
			"not-a-key": "m1",
			"floor-1-1": "gone",
		}
		restored := inventory.RestoreProject(snap)
		assert.Empty(t, Synthesize([]*inventory.Project{restored}, nil))
	})

	t.Run("nil project is skipped", func(t *testing.T) {
		catalog := Synthesize([]*inventory.Project{nil}, []Property{{ID: "s1"}})
		assert.Equal(t, []string{"s1"}, ids(catalog))
	})
}
