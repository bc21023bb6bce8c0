package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	inventoryapp "github.com/ryznreal/offers/internal/application/inventory"
	"github.com/ryznreal/offers/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func palmTowers() map[string]any {
	return map[string]any{
		"name":      "Palm Towers",
		"developer": "Rawabi",
		"city":      "Riyadh",
		"district":  "Al Olaya",
		"structure": map[string]any{
			"floors_count":    "3",
			"units_per_floor": 2,
			"annex_count":     1,
		},
		"models": []map[string]any{
			{"id": "a", "name": "Type A", "price": "850000", "rooms": 3, "finishing": "luxury"},
			{"id": "b", "name": "Type B", "price": "650000", "rooms": 2},
		},
		"unit_mapping": map[string]string{
			"floor-1-1": "a",
			"floor-1-2": "b",
		},
	}
}

func createProject(t *testing.T, s *testServer) inventoryapp.ProjectResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/projects", palmTowers())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var project inventoryapp.ProjectResponse
	decode(t, w, &project)
	return project
}

func TestProjectHandler_Create(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)

	assert.Equal(t, "Palm Towers", project.Name)
	assert.Equal(t, 3, project.Structure.FloorsCount)
	assert.Equal(t, 7, project.Structure.Capacity)
	assert.Len(t, project.Models, 2)
	assert.Equal(t, map[string]string{"floor-1-1": "a", "floor-1-2": "b"}, project.UnitMapping)
	assert.Equal(t, "available", project.UnitStatus["floor-1-1"])
	assert.Equal(t, 2, project.Stats.Available)
}

func TestProjectHandler_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	body := palmTowers()
	delete(body, "name")
	body["models"] = []map[string]any{}

	w := s.do(t, http.MethodPost, "/api/v1/projects", body)
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	resp := decode(t, w, nil)
	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"name", "models"}, fields)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestProjectHandler_StructureCeilings(t *testing.T) {
	s := newTestServer(t)

	body := palmTowers()
	body["structure"] = map[string]any{"floors_count": 1e12, "units_per_floor": "99999999999"}
	w := s.do(t, http.MethodPost, "/api/v1/projects", body)
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	resp := decode(t, w, nil)
	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"structure.floors_count", "structure.units_per_floor"}, fields)

	project := createProject(t, s)
	base := "/api/v1/projects/" + project.ID.String()
	w = s.do(t, http.MethodPut, base+"/structure", map[string]any{
		"structure": map[string]any{"floors_count": 201, "units_per_floor": 2},
	})
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = s.do(t, http.MethodPut, base+"/structure", map[string]any{
		"structure": map[string]any{"floors_count": 200, "units_per_floor": 50},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var restructured inventoryapp.ProjectResponse
	decode(t, w, &restructured)
	assert.Equal(t, 200*50, restructured.Structure.Capacity)

	w = s.do(t, http.MethodGet, "/api/v1/catalog", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectHandler_CreateMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/projects", `{"name": `)
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
}

func TestProjectHandler_GetAndList(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)

	w := s.do(t, http.MethodGet, "/api/v1/projects/"+project.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got inventoryapp.ProjectResponse
	decode(t, w, &got)
	assert.Equal(t, project.ID, got.ID)

	w = s.do(t, http.MethodGet, "/api/v1/projects?search=palm&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []inventoryapp.ProjectListItemResponse
	resp := decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ModelCount)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.PageSize)
}

func TestProjectHandler_GetErrors(t *testing.T) {
	s := newTestServer(t)

	requireErrorCode(t, s.do(t, http.MethodGet, "/api/v1/projects/not-a-uuid", nil),
		http.StatusBadRequest, dto.ErrCodeInvalidInput)
	requireErrorCode(t, s.do(t, http.MethodGet, "/api/v1/projects/00000000-0000-0000-0000-000000000042", nil),
		http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestProjectHandler_UpdateDetailsAndRestructure(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	base := "/api/v1/projects/" + project.ID.String()

	w := s.do(t, http.MethodPut, base, map[string]any{
		"name":      "Palm Towers II",
		"developer": "Rawabi",
		"city":      "Jeddah",
		"status":    "ready",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated inventoryapp.ProjectResponse
	decode(t, w, &updated)
	assert.Equal(t, "Jeddah", updated.City)
	assert.Equal(t, "ready", updated.Status)

	// one unit per floor leaves floor-1-2 outside the grid
	w = s.do(t, http.MethodPut, base+"/structure", map[string]any{
		"structure": map[string]any{"floors_count": 1, "units_per_floor": 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var restructured inventoryapp.ProjectResponse
	decode(t, w, &restructured)
	assert.Equal(t, 1, restructured.Structure.Capacity)
	assert.Equal(t, map[string]string{"floor-1-1": "a"}, restructured.UnitMapping)
}

func TestProjectHandler_Models(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	base := "/api/v1/projects/" + project.ID.String() + "/models"

	w := s.do(t, http.MethodPost, base, map[string]any{"id": "c", "name": "Penthouse", "price": "2000000", "rooms": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var withC inventoryapp.ProjectResponse
	decode(t, w, &withC)
	assert.Len(t, withC.Models, 3)

	w = s.do(t, http.MethodPut, base+"/c", map[string]any{"name": "Sky Penthouse", "price": "2100000", "rooms": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var renamed inventoryapp.ProjectResponse
	decode(t, w, &renamed)
	assert.Equal(t, "Sky Penthouse", renamed.Models[2].Name)

	w = s.do(t, http.MethodDelete, base+"/a", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var removed inventoryapp.ProjectResponse
	decode(t, w, &removed)
	assert.Len(t, removed.Models, 2)
	assert.NotContains(t, removed.UnitMapping, "floor-1-1")
	assert.NotContains(t, removed.UnitStatus, "floor-1-1")
}

func TestProjectHandler_AssignUnitErrors(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	target := "/api/v1/projects/" + project.ID.String() + "/assignments"

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"malformed key", map[string]any{"unit_key": "penthouse", "model_id": "a"}, http.StatusBadRequest, dto.ErrCodeMalformedKey},
		{"outside structure", map[string]any{"unit_key": "floor-9-1", "model_id": "a"}, http.StatusUnprocessableEntity, dto.ErrCodeUnitOutOfRange},
		{"unknown model", map[string]any{"unit_key": "floor-2-1", "model_id": "zzz"}, http.StatusUnprocessableEntity, dto.ErrCodeModelNotFound},
		{"missing model", map[string]any{"unit_key": "floor-2-1"}, http.StatusBadRequest, dto.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireErrorCode(t, s.do(t, http.MethodPost, target, tt.body), tt.status, tt.code)
		})
	}
}

func TestProjectHandler_AssignToggles(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	target := "/api/v1/projects/" + project.ID.String() + "/assignments"

	w := s.do(t, http.MethodPost, target, map[string]any{"unit_key": "annex-1", "model_id": "b"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var bound inventoryapp.ProjectResponse
	decode(t, w, &bound)
	assert.Equal(t, "b", bound.UnitMapping["annex-1"])

	w = s.do(t, http.MethodPost, target, map[string]any{"unit_key": "annex-1", "model_id": "b"})
	require.Equal(t, http.StatusOK, w.Code)
	var unbound inventoryapp.ProjectResponse
	decode(t, w, &unbound)
	assert.NotContains(t, unbound.UnitMapping, "annex-1")
}

func TestProjectHandler_StatusAndBookings(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	base := "/api/v1/projects/" + project.ID.String()

	requireErrorCode(t,
		s.do(t, http.MethodPut, base+"/units/floor-3-1/status", map[string]any{"status": "sold"}),
		http.StatusUnprocessableEntity, dto.ErrCodeNotAssigned)
	requireErrorCode(t,
		s.do(t, http.MethodPut, base+"/units/floor-1-1/status", map[string]any{"status": "gone"}),
		http.StatusBadRequest, dto.ErrCodeValidation)

	w := s.do(t, http.MethodPut, base+"/units/floor-1-1/status", map[string]any{"status": "reserved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reserved inventoryapp.ProjectResponse
	decode(t, w, &reserved)
	assert.Equal(t, "reserved", reserved.UnitStatus["floor-1-1"])
	assert.True(t, reserved.UnitBookings["floor-1-1"].IsPlaceholder)

	w = s.do(t, http.MethodPost, base+"/units/floor-1-2/booking", map[string]any{
		"type":                "sold",
		"customer_name":       "Sara",
		"customer_phone":      "0500000000",
		"marketer_name":       "Omar",
		"brokerage_fee":       "15000",
		"marketer_percentage": "40",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sold inventoryapp.ProjectResponse
	decode(t, w, &sold)
	assert.Equal(t, "sold", sold.UnitStatus["floor-1-2"])
	assert.Equal(t, "Sara", sold.UnitBookings["floor-1-2"].CustomerName)

	w = s.do(t, http.MethodGet, base+"/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bookings []inventoryapp.BookingResponse
	decode(t, w, &bookings)
	require.Len(t, bookings, 2)
	assert.ElementsMatch(t, []string{"floor-1-1", "floor-1-2"}, []string{bookings[0].UnitKey, bookings[1].UnitKey})
	assert.False(t, bookings[0].Timestamp.Before(bookings[1].Timestamp))

	w = s.do(t, http.MethodGet, base+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats inventoryapp.StatsResponse
	decode(t, w, &stats)
	assert.Equal(t, inventoryapp.StatsResponse{Capacity: 7, Assigned: 2, Reserved: 1, Sold: 1}, stats)
}

func TestProjectHandler_Blueprint(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)

	w := s.do(t, http.MethodGet, "/api/v1/projects/"+project.ID.String()+"/blueprint", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var blueprint inventoryapp.BlueprintResponse
	decode(t, w, &blueprint)
	assert.Len(t, blueprint.Units, 7)
	assert.Equal(t, project.ID, blueprint.ProjectID)
}

func brochureRequest(t *testing.T, target, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="brochure.pdf"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProjectHandler_UploadBrochure(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	target := "/api/v1/projects/" + project.ID.String() + "/brochure"

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, brochureRequest(t, target, "application/pdf", []byte("%PDF-1.7")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated inventoryapp.ProjectResponse
	decode(t, w, &updated)
	assert.True(t, strings.HasPrefix(updated.BrochureURL, "https://storage.example.com/"+project.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(updated.BrochureURL, ".pdf"))
	assert.Equal(t, 1, s.brochures.Len())
}

func TestProjectHandler_UploadBrochureRejected(t *testing.T) {
	s := newTestServer(t)
	project := createProject(t, s)
	target := "/api/v1/projects/" + project.ID.String() + "/brochure"

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, brochureRequest(t, target, "image/svg+xml", []byte("<svg/>")))
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, brochureRequest(t, target, "application/pdf", bytes.Repeat([]byte("x"), 2<<10)))
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

	requireErrorCode(t, s.do(t, http.MethodPost, target, map[string]any{}), http.StatusBadRequest, dto.ErrCodeBadRequest)
	assert.Equal(t, 0, s.brochures.Len())
}
