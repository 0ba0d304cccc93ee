package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler exposes liveness endpoints.
type HealthHandler struct {
	service string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service}
}

// RegisterRoutes registers the health routes directly on the engine.
func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/test", h.Ping)
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
	})
}

// Ping handles GET /api/test, a simple echo used by the booking frontend to
// verify the API is reachable.
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "API is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
