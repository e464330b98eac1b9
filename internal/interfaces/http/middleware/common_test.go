package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCommonTestEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(mw)
	engine.GET("/shipments", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id when none supplied", func(t *testing.T) {
		engine := newCommonTestEngine(RequestID())

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shipments", nil))

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("echoes the caller's id", func(t *testing.T) {
		engine := newCommonTestEngine(RequestID())

		req := httptest.NewRequest(http.MethodGet, "/shipments", nil)
		req.Header.Set(RequestIDHeader, "batch-run-7")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "batch-run-7", w.Header().Get(RequestIDHeader))
	})

	t.Run("stores the id in the gin context", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		engine := gin.New()
		engine.Use(RequestID())
		var seen string
		engine.GET("/shipments", func(c *gin.Context) {
			seen = c.GetString("request_id")
			c.Status(http.StatusOK)
		})

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shipments", nil))
		assert.NotEmpty(t, seen)
	})
}

func TestCORSWithConfig(t *testing.T) {
	whitelisted := CORSConfig{
		AllowOrigins:     []string{"https://ap.freightdesk.example"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
	}

	t.Run("whitelisted origin gets CORS headers", func(t *testing.T) {
		engine := newCommonTestEngine(CORSWithConfig(whitelisted))

		req := httptest.NewRequest(http.MethodGet, "/shipments", nil)
		req.Header.Set("Origin", "https://ap.freightdesk.example")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "https://ap.freightdesk.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("unknown origin gets no CORS headers but request proceeds", func(t *testing.T) {
		engine := newCommonTestEngine(CORSWithConfig(whitelisted))

		req := httptest.NewRequest(http.MethodGet, "/shipments", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist rejects all origins", func(t *testing.T) {
		engine := newCommonTestEngine(CORSWithConfig(DefaultCORSConfig()))

		req := httptest.NewRequest(http.MethodGet, "/shipments", nil)
		req.Header.Set("Origin", "https://ap.freightdesk.example")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight answered with 204", func(t *testing.T) {
		engine := newCommonTestEngine(CORSWithConfig(whitelisted))

		req := httptest.NewRequest(http.MethodOptions, "/shipments", nil)
		req.Header.Set("Origin", "https://ap.freightdesk.example")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		cfg := whitelisted
		cfg.AllowOrigins = []string{"*"}
		engine := newCommonTestEngine(CORSWithConfig(cfg))

		req := httptest.NewRequest(http.MethodGet, "/shipments", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestSecure(t *testing.T) {
	t.Run("sets API security headers", func(t *testing.T) {
		engine := newCommonTestEngine(Secure())

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shipments", nil))

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS header when enabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		engine := newCommonTestEngine(SecureWithConfig(cfg))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shipments", nil))

		assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	})
}
