package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is a dependency the API needs to serve requests
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the API's stores are reachable
type HealthHandler struct {
	checks  map[string]HealthChecker
	timeout time.Duration
}

// NewHealthHandler creates a handler pinging every named check
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Check pings each dependency; any failure answers 503
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := "ok"
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			results[name] = err.Error()
			status = "degraded"
			continue
		}
		results[name] = "ok"
	}

	body := gin.H{"status": status, "checks": results, "timestamp": time.Now().UTC()}
	if status != "ok" {
		RespondServiceUnavailable(c, body)
		return
	}
	RespondOK(c, body)
}
