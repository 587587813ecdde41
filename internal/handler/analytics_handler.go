package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/service"
	"github.com/jengzang/riskdash-backend/pkg/response"
)

// AnalyticsHandler handles the dashboard analytics endpoints
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	region           string
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, region string) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		region:           region,
	}
}

// GetMetrics handles GET /analytics/metrics
func (h *AnalyticsHandler) GetMetrics(c *gin.Context) {
	metrics, err := h.analyticsService.Metrics(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, metrics)
}

// PredictRisk handles GET /analytics/risk/predict
func (h *AnalyticsHandler) PredictRisk(c *gin.Context) {
	var filter models.RiskPredictFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	prediction, err := h.analyticsService.PredictRisk(c.Request.Context(), filter.SubRegion, filter.Year, filter.Month)
	if err != nil {
		prediction, err = service.FallbackPrediction(h.region, filter.SubRegion, filter.Year, filter.Month, err)
	}
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, prediction)
}

// GetTrend handles GET /analytics/prediction/trend
func (h *AnalyticsHandler) GetTrend(c *gin.Context) {
	points, err := h.analyticsService.Trend(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, points)
}

// GetReduction handles GET /analytics/prediction/reduction
func (h *AnalyticsHandler) GetReduction(c *gin.Context) {
	reduction, err := h.analyticsService.Reduction(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, reduction)
}

// GetDistribution handles GET /analytics/distribution/municipios
func (h *AnalyticsHandler) GetDistribution(c *gin.Context) {
	distribution, err := h.analyticsService.Distribution(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, distribution)
}

// GetSubRegions handles GET /analytics/municipios
func (h *AnalyticsHandler) GetSubRegions(c *gin.Context) {
	subRegions, err := h.analyticsService.SubRegions(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, subRegions)
}

// KPI returns a handler for one of the dashboard KPI cards
func (h *AnalyticsHandler) KPI(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		kpi, err := h.analyticsService.KPI(c.Request.Context(), name)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, kpi)
	}
}

// RegisterRoutes mounts the analytics endpoints on rg
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/metrics", h.GetMetrics)
	rg.GET("/risk/predict", h.PredictRisk)
	rg.GET("/prediction/trend", h.GetTrend)
	rg.GET("/prediction/reduction", h.GetReduction)
	rg.GET("/distribution/municipios", h.GetDistribution)
	rg.GET("/municipios", h.GetSubRegions)

	for _, name := range []string{
		service.KPIIncidentsTotal,
		service.KPIResponseTime,
		service.KPICrimeRate,
		service.KPICasesResolved,
	} {
		rg.GET("/"+name, h.KPI(name))
	}
}
