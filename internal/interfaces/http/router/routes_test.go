package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freightdesk/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func buildTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	h := Handlers{
		System:    handler.NewSystemHandler(),
		Shipments: handler.NewShipmentHandler(nil, nil),
		Uploads:   handler.NewUploadHandler(nil, nil, nil),
		Reconcile: handler.NewReconcileHandler(nil),
		Overrides: handler.NewOverrideHandler(nil),
	}

	r := NewRouter(engine)
	for _, registrar := range BuildRoutes(h) {
		r.Register(registrar)
	}
	r.Setup()
	return engine
}

func TestBuildRoutes_RegistersAllEndpoints(t *testing.T) {
	engine := buildTestEngine()

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/system/info"},
		{http.MethodGet, "/api/v1/system/ping"},
		{http.MethodGet, "/api/v1/shipments/:ref"},
		{http.MethodPost, "/api/v1/shipments/:ref/costs"},
		{http.MethodDelete, "/api/v1/shipments/:ref/costs"},
		{http.MethodGet, "/api/v1/ap/uploads"},
		{http.MethodPost, "/api/v1/ap/uploads"},
		{http.MethodGet, "/api/v1/ap/uploads/:id"},
		{http.MethodPost, "/api/v1/ap/uploads/:id/process"},
		{http.MethodPost, "/api/v1/ap/reconcile"},
		{http.MethodPost, "/api/v1/ap/overrides"},
	}

	routes := engine.Routes()
	find := func(method, path string) bool {
		for _, r := range routes {
			if r.Method == method && r.Path == path {
				return true
			}
		}
		return false
	}

	for _, e := range expected {
		assert.True(t, find(e.method, e.path), "missing route %s %s", e.method, e.path)
	}
}

func TestBuildRoutes_Ping(t *testing.T) {
	engine := buildTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestBuildRoutes_MutationsRequirePermission(t *testing.T) {
	engine := buildTestEngine()

	// no JWT claims in context, permission middleware must reject
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ap/reconcile", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
