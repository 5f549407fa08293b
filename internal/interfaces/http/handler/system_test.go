package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Success bool           `json:"success"`
	Data    HealthResponse `json:"data"`
}

func callHealth(t *testing.T, h *SystemHandler) (int, healthBody) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	h.Health(c)

	var body healthBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("subcontracting", "1.2.0", nil)
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		status, body := callHealth(t, NewSystemHandler("subcontracting", "1.2.0", nil))

		assert.Equal(t, http.StatusOK, status)
		assert.True(t, body.Success)
		assert.Equal(t, "ok", body.Data.Status)
		assert.Equal(t, "subcontracting", body.Data.Name)
		assert.Equal(t, "1.2.0", body.Data.Version)
		assert.Equal(t, runtime.Version(), body.Data.GoVersion)
		assert.Nil(t, body.Data.Checks)
	})

	t.Run("all healthy", func(t *testing.T) {
		h := NewSystemHandler("subcontracting", "dev", map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"cache":    func(context.Context) error { return nil },
		})

		status, body := callHealth(t, h)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, map[string]string{"database": "ok", "cache": "ok"}, body.Data.Checks)
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		h := NewSystemHandler("subcontracting", "dev", map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"cache":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
		})

		status, body := callHealth(t, h)

		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.False(t, body.Success)
		assert.Equal(t, "degraded", body.Data.Status)
		assert.Equal(t, "ok", body.Data.Checks["database"])
		assert.Equal(t, "dial tcp: connection refused", body.Data.Checks["cache"])
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		var hasDeadline bool
		h := NewSystemHandler("subcontracting", "dev", map[string]HealthCheck{
			"database": func(ctx context.Context) error {
				_, hasDeadline = ctx.Deadline()
				return nil
			},
		})

		callHealth(t, h)
		assert.True(t, hasDeadline)
	})
}
