package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/ryznreal/offers/internal/application/inventory"
	listingapp "github.com/ryznreal/offers/internal/application/listing"
	"github.com/ryznreal/offers/internal/infrastructure/persistence"
	"github.com/ryznreal/offers/internal/infrastructure/storage"
	"github.com/ryznreal/offers/internal/interfaces/http/dto"
	"github.com/ryznreal/offers/internal/interfaces/http/middleware"
	"github.com/ryznreal/offers/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type testServer struct {
	engine    *gin.Engine
	brochures *storage.StubBrochureStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repos := persistence.NewRepositories(nil)
	brochures := storage.NewStubBrochureStorage("")

	projectService := inventoryapp.NewProjectService(repos.Projects)
	projectService.SetBrochureStorage(brochures, 1<<10)
	catalogService := listingapp.NewCatalogService(repos.Projects, repos.Properties)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Register(NewProjectHandler(projectService)).
		Register(NewCatalogHandler(catalogService)).
		Register(NewSystemHandler("offers", "test")).
		Setup()

	return &testServer{engine: engine, brochures: brochures}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and its data into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
		Meta    *dto.Meta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return dto.Response{Success: raw.Success, Error: raw.Error, Meta: raw.Meta}
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := decode(t, w, nil)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
}
