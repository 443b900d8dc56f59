package obs

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Middleware bundles the request-scoped observability handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequestID tags every request with an id, honoring one supplied by the
// caller so ids stay stable across proxies.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// LoggerMiddleware writes one line per request after the handler chain
// runs. Server errors log at Error, client errors at Warn.
func (m Middleware) LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m.Logger == nil {
			return
		}
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString("request_id"),
		}
		switch {
		case status >= 500:
			m.Logger.Error("http", attrs...)
		case status >= 400:
			m.Logger.Warn("http", attrs...)
		default:
			m.Logger.Info("http", attrs...)
		}
	}
}
