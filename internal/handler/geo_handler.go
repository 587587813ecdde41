package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/riskdash-backend/internal/service"
	"github.com/jengzang/riskdash-backend/pkg/response"
)

// GeoHandler serves the map layer
type GeoHandler struct {
	geoService *service.GeoService
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(geoService *service.GeoService) *GeoHandler {
	return &GeoHandler{
		geoService: geoService,
	}
}

// GetIncidents handles GET /geo/incidents
func (h *GeoHandler) GetIncidents(c *gin.Context) {
	incidents, err := h.geoService.Incidents(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, incidents)
}

// RegisterRoutes mounts the geo endpoints on rg
func (h *GeoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/incidents", h.GetIncidents)
}
