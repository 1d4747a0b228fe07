package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/strokecovery/strokecovery-backend/internal/platform/ctxutil"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
)

// RequestContext echoes (or mints) request and trace ids, stores them on the
// request context and logs one line per request once the handler returns.
// The trace id prefers the active otel span so logs line up with exported traces.
func RequestContext(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rd := &ctxutil.RequestData{
			RequestID: headerOr(c, HeaderRequestID),
			TraceID:   strings.TrimSpace(c.GetHeader(HeaderTraceID)),
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); rd.TraceID == "" && sc.HasTraceID() {
			rd.TraceID = sc.TraceID().String()
		}
		if rd.TraceID == "" {
			rd.TraceID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Header(HeaderTraceID, rd.TraceID)
		c.Header(HeaderRequestID, rd.RequestID)

		c.Next()

		if log == nil {
			return
		}
		logRequest(log, c, time.Since(start))
	}
}

func headerOr(c *gin.Context, name string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	return uuid.NewString()
}

func logRequest(log *logger.Logger, c *gin.Context, took time.Duration) {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	status := c.Writer.Status()
	fields := []any{
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"duration_ms", took.Milliseconds(),
	}
	// Auth swaps in a new request, so read the caller back from the final context.
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		fields = append(fields, "trace_id", rd.TraceID, "request_id", rd.RequestID)
		if rd.UserID != uuid.Nil {
			fields = append(fields, "user_id", rd.UserID.String())
		}
	}
	if len(c.Errors) > 0 {
		fields = append(fields, "errors", c.Errors.String())
	}
	switch {
	case status >= 500:
		log.Error("Request failed", fields...)
	case status >= 400:
		log.Warn("Request rejected", fields...)
	default:
		log.Debug("Request served", fields...)
	}
}
