package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func observedEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	engine.Use(Recovery(zap.New(core)))
	engine.Use(RequestLogger(zap.New(core)))
	return engine, logs
}

func TestRequestLogger(t *testing.T) {
	t.Run("logs completion at info for 2xx", func(t *testing.T) {
		engine, logs := observedEngine(t)
		engine.GET("/shipments/:ref", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/shipments/SHP-1001?detail=1", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		entries := logs.FilterMessage("request completed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		assert.Equal(t, "/shipments/SHP-1001", fields["path"])
		assert.Equal(t, "detail=1", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("logs 4xx at warn and 5xx at error", func(t *testing.T) {
		engine, logs := observedEngine(t)
		engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
		engine.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

		entries := logs.FilterMessage("request completed").All()
		require.Len(t, entries, 2)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	})

	t.Run("installs request-scoped logger", func(t *testing.T) {
		engine, _ := observedEngine(t)
		var scoped *zap.Logger
		engine.GET("/probe-scope", func(c *gin.Context) {
			scoped = FromGin(c)
			c.Status(http.StatusOK)
		})

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe-scope", nil))
		assert.NotNil(t, scoped)
	})
}

func TestRecovery(t *testing.T) {
	engine, logs := observedEngine(t)
	engine.GET("/panic", func(*gin.Context) {
		panic("breakdown slice out of range")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entries := logs.FilterMessage("panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "breakdown slice out of range", entries[0].ContextMap()["error"])
}

func TestFromGinWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	log := FromGin(c)
	require.NotNil(t, log)
	// no-op logger: nothing enabled
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}
