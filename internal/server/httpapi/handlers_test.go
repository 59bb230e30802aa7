package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/auth"
	"github.com/dmitrijs2005/pixelboard/internal/server/hackatime"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
	"github.com/dmitrijs2005/pixelboard/internal/server/notifier"
	"github.com/dmitrijs2005/pixelboard/internal/server/services"
)

const testSecret = "test-secret"

type fakePlacementAPI struct {
	placeOut *models.Placement
	placeErr error
	gridOut  []*models.Placement
	gridErr  error

	lastUserID string
}

func (f *fakePlacementAPI) Place(ctx context.Context, userID string, x, y int, color string) (*models.Placement, error) {
	f.lastUserID = userID
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return f.placeOut, nil
}

func (f *fakePlacementAPI) Grid(ctx context.Context) ([]*models.Placement, error) {
	return f.gridOut, f.gridErr
}

func (f *fakePlacementAPI) CodingTime(ctx context.Context, userID string) (*hackatime.Stats, *services.BudgetStatus, error) {
	if f.placeErr != nil {
		return nil, nil, f.placeErr
	}
	return &hackatime.Stats{TotalSeconds: 800, HumanReadableTotal: "0h 13m 20s"},
		&services.BudgetStatus{ReportedTotalSeconds: 800, GrossSeconds: 3900, SpentSeconds: 300, AvailableSeconds: 3600}, nil
}

type fakeProjectAPI struct {
	createOut *models.Project
	createErr error
	listOut   []*models.Project
	getOut    *models.Project
	getErr    error
	deleteErr error
	contOut   *models.Contribution
	contErr   error
}

func (f *fakeProjectAPI) Create(ctx context.Context, name, outline, createdBy string) (*models.Project, error) {
	return f.createOut, f.createErr
}

func (f *fakeProjectAPI) List(ctx context.Context) ([]*models.Project, error) {
	return f.listOut, nil
}

func (f *fakeProjectAPI) Get(ctx context.Context, id int64) (*models.Project, error) {
	return f.getOut, f.getErr
}

func (f *fakeProjectAPI) Delete(ctx context.Context, id int64, userID string) error {
	return f.deleteErr
}

func (f *fakeProjectAPI) Contribute(ctx context.Context, projectID int64, x, y int, color, userID string) (*models.Contribution, error) {
	return f.contOut, f.contErr
}

func (f *fakeProjectAPI) Contributions(ctx context.Context, projectID int64) ([]*models.Contribution, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, ps PlacementAPI, js ProjectAPI) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	s, err := NewHTTPServer(":0", logger, ps, js, notifier.NewHub(16, logger), testSecret)
	require.NoError(t, err)

	router := gin.New()
	s.setupRoutes(router)
	return router
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &fakePlacementAPI{}, &fakeProjectAPI{})

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGrid(t *testing.T) {
	ps := &fakePlacementAPI{gridOut: []*models.Placement{{X: 1, Y: 2, Color: "#fff", UserID: "u1"}}}
	router := newTestRouter(t, ps, &fakeProjectAPI{})

	w := doJSON(router, http.MethodGet, "/api/v1/pixels", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []*models.Placement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "#fff", got[0].Color)
}

func TestPlacePixel_RequiresAuth(t *testing.T) {
	router := newTestRouter(t, &fakePlacementAPI{}, &fakeProjectAPI{})

	w := doJSON(router, http.MethodPost, "/api/v1/pixels", "", map[string]any{"x": 1, "y": 2, "color": "#fff"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/pixels", "Bearer not.a.jwt", map[string]any{"x": 1, "y": 2, "color": "#fff"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlacePixel_Success(t *testing.T) {
	ps := &fakePlacementAPI{placeOut: &models.Placement{X: 1, Y: 2, Color: "#fff", UserID: "u1", TimeDeductedSeconds: 300}}
	router := newTestRouter(t, ps, &fakeProjectAPI{})

	w := doJSON(router, http.MethodPost, "/api/v1/pixels", bearerToken(t, "u1"), map[string]any{"x": 1, "y": 2, "color": "#fff"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, "u1", ps.lastUserID)
}

func TestPlacePixel_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"insufficient budget", common.ErrInsufficientBudget, http.StatusBadRequest, "insufficient coding time budget"},
		{"invalid request", common.ErrInvalidRequest, http.StatusBadRequest, ""},
		{"conflict", common.ErrConflict, http.StatusConflict, "pixel already placed"},
		{"upstream down", common.ErrUpstreamUnavailable, http.StatusBadGateway, "coding time provider unavailable"},
		{"storage failure", common.ErrStorageFailure, http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakePlacementAPI{placeErr: tt.err}, &fakeProjectAPI{})

			w := doJSON(router, http.MethodPost, "/api/v1/pixels", bearerToken(t, "u1"), map[string]any{"x": 1, "y": 2, "color": "#fff"})
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestPlacePixel_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing color", map[string]any{"x": 1, "y": 2}},
		{"missing both coordinates", map[string]any{"color": "#fff"}},
		{"missing x", map[string]any{"y": 2, "color": "#fff"}},
		{"missing y", map[string]any{"x": 1, "color": "#fff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &fakePlacementAPI{placeOut: &models.Placement{}}
			router := newTestRouter(t, ps, &fakeProjectAPI{})

			w := doJSON(router, http.MethodPost, "/api/v1/pixels", bearerToken(t, "u1"), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, ps.lastUserID, "no placement may be attempted")
		})
	}
}

func TestPlacePixel_OriginIsAValidCoordinate(t *testing.T) {
	ps := &fakePlacementAPI{placeOut: &models.Placement{Color: "#fff", UserID: "u1"}}
	router := newTestRouter(t, ps, &fakeProjectAPI{})

	w := doJSON(router, http.MethodPost, "/api/v1/pixels", bearerToken(t, "u1"), map[string]any{"x": 0, "y": 0, "color": "#fff"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", ps.lastUserID)
}

func TestCodingTime(t *testing.T) {
	router := newTestRouter(t, &fakePlacementAPI{}, &fakeProjectAPI{})

	w := doJSON(router, http.MethodGet, "/api/v1/coding-time", bearerToken(t, "u1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(3600), got["available_seconds"])
	assert.Equal(t, "0h 13m 20s", got["human_readable_total"])
}

func TestProjects_CRUD(t *testing.T) {
	js := &fakeProjectAPI{
		createOut: &models.Project{ID: 1, Name: "fox", CreatedBy: "u1"},
		getOut:    &models.Project{ID: 1, Name: "fox", CreatedBy: "u1"},
		contOut:   &models.Contribution{ID: 1, ProjectID: 1, X: 3, Y: 4, Color: "#0f0", FilledBy: "u2"},
	}
	router := newTestRouter(t, &fakePlacementAPI{}, js)

	w := doJSON(router, http.MethodPost, "/api/v1/projects", bearerToken(t, "u1"), map[string]any{"name": "fox", "outline": "0,0;0,1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/projects/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/projects/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/projects/1/contributions", bearerToken(t, "u2"), map[string]any{"x": 3, "y": 4, "color": "#0f0"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/projects/1", bearerToken(t, "u1"), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProjects_DeleteMappings(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not owner", common.ErrUnauthorized, http.StatusForbidden},
		{"missing", common.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakePlacementAPI{}, &fakeProjectAPI{deleteErr: tt.err})

			w := doJSON(router, http.MethodDelete, "/api/v1/projects/1", bearerToken(t, "u2"), nil)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
