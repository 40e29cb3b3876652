package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ayash-Bera/campusqa/internal/health"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health reports 503 only when a required dependency is down.
func (h *HealthHandler) Health(c *gin.Context) {
	result := h.checker.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
