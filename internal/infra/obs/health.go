package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers serves the liveness and readiness probes. Ready is
// consulted on every readiness check; a nil Ready means always ready.
type HealthHandlers struct {
	Ready func() error
}

// Livez reports that the process is up. It never checks dependencies.
func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readyz reports whether the service can take traffic.
func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
