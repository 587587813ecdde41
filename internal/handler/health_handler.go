package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/riskdash-backend/internal/service"
)

// HealthHandler reports liveness and whether the data is loaded
type HealthHandler struct {
	state *service.State
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(state *service.State) *HealthHandler {
	return &HealthHandler{state: state}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Risk dashboard API is running",
		"ready":   h.state.Ready(),
		"region":  h.state.Region(),
	})
}
