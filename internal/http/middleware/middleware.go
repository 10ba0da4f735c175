// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"telcobridge.dev/gateway/common/logger"
	"telcobridge.dev/gateway/internal/apierror"
)

const correlatorHeader = "x-correlator"

// Correlator echoes the inbound x-correlator header on the response and
// stamps it onto the request context so every log line of the request
// carries it.
func Correlator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if correlator := c.GetHeader(correlatorHeader); correlator != "" {
			c.Header(correlatorHeader, correlator)
			ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
				Correlator: logger.Ptr(correlator),
			})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// Logger writes one access log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Recovery converts panics into the uniform 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(c.Request.Context(), "panic handling request",
					"panic", r,
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal())
			}
		}()
		c.Next()
	}
}
