package handler

import (
	"errors"
	"net/http"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/infrastructure/logger"
	"github.com/erp/subcontracting/internal/interfaces/http/dto"
	"github.com/erp/subcontracting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

// BindError answers a failed ShouldBind*: field details for validator
// errors, ERR_INVALID_JSON for malformed bodies.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeInvalidInput)
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", middleware.GetRequestID(c), details,
		))
		return
	}
	h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Malformed request body")
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and reported as an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if dto.GetHTTPStatus(code) >= http.StatusInternalServerError {
			logger.FromGin(c).Error("Request failed", zap.String("code", code), zap.Error(err))
		}
		h.ErrorWithCode(c, code, domainErr.Message)
		return
	}

	logger.FromGin(c).Error("Unexpected error", zap.Error(err))
	_ = c.Error(err)
	h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// pathID parses the :id path parameter, answering 400 when it is not a uuid
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid worksheet id")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
