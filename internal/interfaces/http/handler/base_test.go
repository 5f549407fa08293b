package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/infrastructure/logger"
	"github.com/erp/subcontracting/internal/interfaces/http/dto"
	"github.com/erp/subcontracting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(requestID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if requestID != "" {
		c.Set(logger.GinRequestIDKey, requestID)
	}
	return c, w
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "not found",
			err:            shared.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "wrapped validation error keeps its message",
			err:            fmt.Errorf("produce: %w", shared.NewValidationError("Select at least one partner")),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeValidation,
			expectedMsg:    "Select at least one partner",
		},
		{
			name:           "configuration error",
			err:            shared.NewConfigurationError("No incoming picking type for warehouse %s", "WH"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeConfiguration,
			expectedMsg:    "No incoming picking type for warehouse WH",
		},
		{
			name:           "concurrency conflict",
			err:            shared.NewDomainError(shared.CodeConcurrencyConflict, "Order was modified"),
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeConcurrencyConflict,
		},
		{
			name:           "invalid input",
			err:            shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidInput,
		},
		{
			name:           "plain error is hidden",
			err:            errors.New("pq: relation does not exist"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
			expectedMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, resp.Error.Message)
			}
			code, _ := c.Get(middleware.ErrorCodeKey)
			assert.Equal(t, tt.expectedCode, code)
		})
	}
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext("")

	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_BindError(t *testing.T) {
	middleware.SetupValidator()
	h := &BaseHandler{}

	t.Run("malformed body", func(t *testing.T) {
		c, w := newTestContext("req-2")
		var target struct {
			ID string `json:"id"`
		}
		err := json.Unmarshal([]byte(`{"id":`), &target)

		h.BindError(c, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
		assert.Empty(t, resp.Error.Details)
	})
}

func TestBaseHandler_SuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext("")
	h.Success(c, map[string]string{"state": "external"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"state":"external"}}`, w.Body.String())

	c, w = newTestContext("")
	h.Created(c, gin.H{"id": "x"})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext("")
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBaseHandler_PathID(t *testing.T) {
	h := &BaseHandler{}
	id := uuid.New()

	tests := []struct {
		name   string
		param  string
		wantOK bool
	}{
		{"valid uuid", id.String(), true},
		{"not a uuid", "42", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("")
			c.Params = gin.Params{{Key: "id", Value: tt.param}}

			got, ok := h.pathID(c)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, id, got)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
