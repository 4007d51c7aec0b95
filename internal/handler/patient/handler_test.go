package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/registry-api/internal/config"
	"github.com/careops/registry-api/internal/identifier"
	"github.com/careops/registry-api/internal/notify"
	"github.com/careops/registry-api/internal/repository/sqlstore"
	"github.com/careops/registry-api/internal/service/registry"
	"github.com/careops/registry-api/internal/workflow"
	"github.com/careops/registry-api/pkg/httputil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlstore.NewDB(config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		Path:   ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlstore.Migrate(context.Background(), db))

	samples := sqlstore.NewBloodSampleRepository(db)
	sender := notify.SenderFunc(func(context.Context, string, string) error { return nil })
	engine := workflow.NewEngine(samples, sender, time.Second, nil, zerolog.Nop())

	svc := registry.NewService(
		sqlstore.NewLocationRepository(db),
		sqlstore.NewPatientRepository(db),
		sqlstore.NewHealthRecordRepository(db),
		samples,
		identifier.NewIssuer(sqlstore.NewSequenceRepository(db)),
		engine,
		time.Minute,
		nil,
		zerolog.Nop(),
	)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func perform(t *testing.T, r *gin.Engine, method, path string, payload any) (*httptest.ResponseRecorder, httputil.Response) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func registration() map[string]any {
	return map[string]any{
		"first_name":    "John",
		"last_name":     "Doe",
		"date_of_birth": "1990-05-20",
		"gender":        "male",
		"phone":         "+1555000111",
		"location_id":   1,
	}
}

func TestRegisterPatientEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, resp := perform(t, r, http.MethodPost, "/api/v1/patients", registration())

	assert.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "PAT000001", data["patient_code"])
}

func TestRegisterPatientBadBody(t *testing.T) {
	r := newTestRouter(t)

	w, resp := perform(t, r, http.MethodPost, "/api/v1/patients", map[string]any{
		"first_name": "John",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "validation_error", resp.Error.Kind)
}

func TestGetPatientEndpoint(t *testing.T) {
	r := newTestRouter(t)
	perform(t, r, http.MethodPost, "/api/v1/patients", registration())

	w, resp := perform(t, r, http.MethodGet, "/api/v1/patients/PAT000001", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "QR:PAT000001", data["qr_code"])
}

func TestGetPatientNotFound(t *testing.T) {
	r := newTestRouter(t)

	w, resp := perform(t, r, http.MethodGet, "/api/v1/patients/PAT999999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", resp.Error.Kind)
}

func TestSearchPatientEndpoint(t *testing.T) {
	r := newTestRouter(t)
	perform(t, r, http.MethodPost, "/api/v1/patients", registration())

	w, resp := perform(t, r, http.MethodGet, "/api/v1/patients/search?code=pat000001", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = perform(t, r, http.MethodGet, "/api/v1/patients/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", resp.Error.Kind)
}

func TestCollectSampleEndpoint(t *testing.T) {
	r := newTestRouter(t)
	perform(t, r, http.MethodPost, "/api/v1/patients", registration())

	w, resp := perform(t, r, http.MethodPost, "/api/v1/patients/PAT000001/samples", map[string]any{
		"collection_location_id": 1,
		"test_type":              "Blood Sugar",
		"collected_by":           "Nurse Adams",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "BS000001", data["sample_code"])
	assert.Equal(t, "collected", data["status"])
}

func TestAddHealthRecordEndpoint(t *testing.T) {
	r := newTestRouter(t)
	perform(t, r, http.MethodPost, "/api/v1/patients", registration())

	w, resp := perform(t, r, http.MethodPost, "/api/v1/patients/PAT000001/records", map[string]any{
		"location_id": 1,
		"recorded_by": "Nurse Adams",
		"height":      "175.5",
		"bp_systolic": "120",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
}
