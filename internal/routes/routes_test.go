package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"leasing-import-backend/internal/config"
	"leasing-import-backend/internal/models"
	service "leasing-import-backend/internal/services/reconciliation"
)

type nopService struct{}

func (nopService) Prepare(context.Context, uuid.UUID, string, io.Reader) (*service.Plan, error) {
	return nil, assert.AnError
}

func (nopService) Submit(context.Context, *service.Plan, service.ExecuteOptions) (*models.ImportBatch, error) {
	return nil, assert.AnError
}

func (nopService) Batch(context.Context, uuid.UUID) (*models.ImportBatch, error) {
	return nil, service.ErrBatchNotFound
}

func (nopService) BatchAudit(context.Context, uuid.UUID) ([]models.ImportAuditLog, error) {
	return nil, nil
}

func newEngine(metrics bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	cfg := &config.Config{MaxUploadSize: 1 << 20}
	cfg.Metrics.Enabled = metrics
	cfg.Metrics.Path = "/metrics"

	r := gin.New()
	RegisterRoutes(r, nopService{}, cfg, log)
	return r
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	r := newEngine(true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports/"+uuid.NewString()+"/audit", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterRoutes_MetricsDisabled(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newEngine(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
