package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	listingapp "github.com/ryznreal/offers/internal/application/listing"
	"github.com/ryznreal/offers/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func villa(id string) map[string]any {
	return map[string]any{
		"id":        id,
		"type":      "residential",
		"city":      "Riyadh",
		"district":  "Hittin",
		"price":     "3200000",
		"unit_type": "villa",
		"rooms":     6,
	}
}

func TestCatalogHandler_SynthesizedAndStandalone(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)

	w := s.do(t, http.MethodPost, "/api/v1/properties", villa("villa-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var catalog listingapp.CatalogResponse
	decode(t, w, &catalog)
	assert.Equal(t, 2, catalog.Synthesized)
	assert.Equal(t, 1, catalog.Standalone)
	require.Len(t, catalog.Items, 3)
	assert.Equal(t, "SAMPLE-"+project.ID.String()+"-a", catalog.Items[0].ID)
	assert.Equal(t, "Palm Towers - Type A", catalog.Items[0].ProjectName)
	assert.True(t, catalog.Items[0].Synthesized)
	assert.Equal(t, "villa-1", catalog.Items[2].ID)
}

func TestCatalogHandler_SoldOutModelDisappears(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)

	w := s.do(t, http.MethodPut, "/api/v1/projects/"+project.ID.String()+"/units/floor-1-1/status",
		map[string]any{"status": "sold"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/catalog", nil)
	var catalog listingapp.CatalogResponse
	decode(t, w, &catalog)
	require.Len(t, catalog.Items, 1)
	assert.Equal(t, "SAMPLE-"+project.ID.String()+"-b", catalog.Items[0].ID)

	requireErrorCode(t, s.do(t, http.MethodGet, "/api/v1/properties/SAMPLE-"+project.ID.String()+"-a", nil),
		http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestCatalogHandler_Filter(t *testing.T) {
	s := newTestServer(t)
	createProject(t, s)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/properties", villa("villa-1")).Code)

	w := s.do(t, http.MethodGet, "/api/v1/catalog?unit_type=villa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var villas listingapp.CatalogResponse
	decode(t, w, &villas)
	require.Len(t, villas.Items, 1)
	assert.Equal(t, "villa-1", villas.Items[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/catalog?sort=asc&max_price=900000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cheap listingapp.CatalogResponse
	decode(t, w, &cheap)
	require.Len(t, cheap.Items, 2)
	assert.True(t, cheap.Items[0].Price.LessThanOrEqual(cheap.Items[1].Price))

	requireErrorCode(t, s.do(t, http.MethodGet, "/api/v1/catalog?sort=sideways", nil),
		http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestCatalogHandler_ImportAndGet(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/properties/import", map[string]any{
		"properties": []map[string]any{
			villa("villa-1"),
			{
				"id":              "land-1",
				"type":            "land",
				"city":            "Dammam",
				"land_area":       "600",
				"price_per_meter": "1500",
				"is_corner":       true,
			},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var imported []listingapp.PropertyResponse
	decode(t, w, &imported)
	require.Len(t, imported, 2)

	w = s.do(t, http.MethodGet, "/api/v1/properties/land-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var land listingapp.PropertyResponse
	decode(t, w, &land)
	require.NotNil(t, land.Land)
	assert.True(t, land.Land.IsCorner)
	assert.Equal(t, "900000", land.Price.String())
}

func TestCatalogHandler_ImportRejectsWholeBatch(t *testing.T) {
	s := newTestServer(t)

	bad := villa("villa-2")
	bad["price"] = "-1"
	w := s.do(t, http.MethodPost, "/api/v1/properties/import", map[string]any{
		"properties": []map[string]any{villa("villa-1"), bad},
	})
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	assert.Contains(t, decode(t, w, nil).Error.Message, "Row 2")

	requireErrorCode(t, s.do(t, http.MethodGet, "/api/v1/properties/villa-1", nil),
		http.StatusNotFound, dto.ErrCodeNotFound)
}

func (s *testServer) postCSV(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestCatalogHandler_ImportCSV(t *testing.T) {
	s := newTestServer(t)

	w := s.postCSV(t, strings.Join([]string{
		"ID,Type,City,Price,Unit Type,Rooms",
		`villa-1,Residential,Riyadh,"3,200,000",Villa,6`,
		"apt-1,residential,Jeddah,850000,Apartment,3",
	}, "\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var imported []listingapp.PropertyResponse
	decode(t, w, &imported)
	require.Len(t, imported, 2)
	assert.Equal(t, "villa-1", imported[0].ID)
	assert.Equal(t, "villa", imported[0].UnitType)
	assert.Equal(t, "3200000", imported[0].Price.String())

	w = s.do(t, http.MethodGet, "/api/v1/catalog", nil)
	var catalog listingapp.CatalogResponse
	decode(t, w, &catalog)
	assert.Equal(t, 2, catalog.Standalone)
}

func TestCatalogHandler_ImportCSVErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("cell errors are listed per row", func(t *testing.T) {
		w := s.postCSV(t, "type,city,rooms\nresidential,Riyadh,many\nland,,\n")
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

		resp := decode(t, w, nil)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "row 2.rooms", resp.Error.Details[0].Field)
		assert.Equal(t, "row 3.city", resp.Error.Details[1].Field)
	})

	t.Run("missing required column", func(t *testing.T) {
		w := s.postCSV(t, "type,district\nland,Maadi\n")
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
		assert.Contains(t, decode(t, w, nil).Error.Message, "city")
	})

	t.Run("values outside the allowed set fail binding validation", func(t *testing.T) {
		w := s.postCSV(t, "type,city,unit_type\nresidential,Riyadh,castle\n")
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Equal(t, "properties[0].unit_type", decode(t, w, nil).Error.Details[0].Field)
	})

	w := s.do(t, http.MethodGet, "/api/v1/catalog", nil)
	var catalog listingapp.CatalogResponse
	decode(t, w, &catalog)
	assert.Zero(t, catalog.Standalone)
}

func TestCatalogHandler_Delete(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/properties", villa("villa-1")).Code)

	w := s.do(t, http.MethodDelete, "/api/v1/properties/villa-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	requireErrorCode(t, s.do(t, http.MethodDelete, "/api/v1/properties/villa-1", nil),
		http.StatusNotFound, dto.ErrCodeNotFound)
	requireErrorCode(t, s.do(t, http.MethodDelete, "/api/v1/properties/SAMPLE-"+project.ID.String()+"-a", nil),
		http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
}
