package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CorrelationIDKey    = "correlation_id"
	CorrelationIDHeader = "X-Correlation-ID"
)

type correlationKey struct{}

// CorrelationID tags each request with the caller's X-Correlation-ID or a
// fresh UUID, on the gin context, the request context and the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(CorrelationIDKey, correlationID)
		c.Header(CorrelationIDHeader, correlationID)

		ctx := context.WithValue(c.Request.Context(), correlationKey{}, correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetCorrelationID returns the id set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	if id, ok := c.Get(CorrelationIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// CorrelationIDFromContext returns the id stored on a request context.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.String(CorrelationIDKey, GetCorrelationID(c)),
		)
	}
}
