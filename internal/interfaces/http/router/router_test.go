package router

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/subcontracting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	rg.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return
		}
		c.String(http.StatusOK, string(body))
	})
	rg.GET("/big", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("worksheet ", 200))
	})
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Same(t, engine, r.Engine())
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithHealth(func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	}))
	r.Register(pingRegistrar{}).Setup()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/api/v1/ping", http.StatusOK, "pong"},
		{"/health", http.StatusOK, "healthy"},
		{"/ping", http.StatusNotFound, ""},
		{"/api/v1/health", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestNewEngine_MiddlewareChain(t *testing.T) {
	engine, err := NewEngine(Config{
		ServiceName:      "subcontracting-test",
		MaxBodySize:      64,
		CORSAllowOrigins: []string{"https://erp.example.com"},
	})
	require.NoError(t, err)
	NewRouter(engine).Register(pingRegistrar{}).Setup()

	t.Run("request id and secure headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("configured origin is allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/ping", nil)
		req.Header.Set("Origin", "https://erp.example.com")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://erp.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(strings.Repeat("x", 65)))
		req.ContentLength = 65
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		engine.GET("/boom", func(c *gin.Context) { panic("boom") })
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestNewEngine_Gzip(t *testing.T) {
	engine, err := NewEngine(Config{GzipEnabled: true})
	require.NoError(t, err)
	NewRouter(engine).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "worksheet "))
}

func TestNewEngine_InvalidTrustedProxy(t *testing.T) {
	_, err := NewEngine(Config{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}
