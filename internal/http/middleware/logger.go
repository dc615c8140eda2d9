package middleware

import (
	"log/slog"
	"time"

	"basegraph.app/helpdesk/common/logger"
	"github.com/gin-gonic/gin"
)

// Logger writes one line per request. Query strings are left out because the
// login callback carries the authorization code in them.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", logger.Truncate(c.Request.UserAgent(), 256),
		}
		if session := GetSession(ctx); session != nil {
			attrs = append(attrs, "external_user_id", session.Identity.ExternalID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}
