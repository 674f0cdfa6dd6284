package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// Pinger is the minimal contract I need from a dependency to check readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MultiPinger checks several named dependencies; the first failure wins, in name order.
type MultiPinger map[string]Pinger

func (m MultiPinger) Ping(ctx context.Context) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m[name].Ping(ctx); err != nil {
			return &dependencyError{name: name, err: err}
		}
	}
	return nil
}

type dependencyError struct {
	name string
	err  error
}

func (e *dependencyError) Error() string { return e.name + ": " + e.err.Error() }
func (e *dependencyError) Unwrap() error { return e.err }

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	deps Pinger
}

func NewHealthHandler(deps Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness verifies the database and, when configured, redis.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.deps.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
