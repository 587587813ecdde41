package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/service"
	"github.com/jengzang/riskdash-backend/pkg/response"
)

// CrimesHandler handles queries over the raw crime rows
type CrimesHandler struct {
	crimeService *service.CrimeService
}

// NewCrimesHandler creates a new crimes handler
func NewCrimesHandler(crimeService *service.CrimeService) *CrimesHandler {
	return &CrimesHandler{
		crimeService: crimeService,
	}
}

// Query handles POST /crimes/query. An empty body matches every row.
func (h *CrimesHandler) Query(c *gin.Context) {
	var q models.CrimeQuery
	if err := c.ShouldBindJSON(&q); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	records, err := h.crimeService.Query(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, records)
}

// Recent handles GET /crimes/recent
func (h *CrimesHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	alerts, err := h.crimeService.Recent(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, alerts)
}

// RegisterRoutes mounts the crimes endpoints on rg
func (h *CrimesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/query", h.Query)
	rg.GET("/recent", h.Recent)
}
