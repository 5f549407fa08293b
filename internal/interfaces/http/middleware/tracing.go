package middleware

import (
	"net/http"

	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns the otelgin server-span middleware, or a pass-through when disabled
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if id := c.Param("id"); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			span.SetAttributes(attribute.String(telemetry.SpanAttrWorksheetID, id))
		}
	}
}

// SpanErrorMarker tags the server span with the request and worksheet ids and
// sets its status from the response code. It must run after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpan(c, span)

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if errCode := c.GetString(ErrorCodeKey); errCode != "" {
			span.SetAttributes(attribute.String("error.code", errCode))
		}
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// ErrorCodeKey is where handlers store the API error code of a failed request
const ErrorCodeKey = "error_code"
