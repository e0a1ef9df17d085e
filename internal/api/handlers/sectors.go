package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/service/sector"
)

// SectorHandler handles the sector aggregate endpoints
type SectorHandler struct {
	service *sector.Service
}

// NewSectorHandler creates a new SectorHandler
func NewSectorHandler(service *sector.Service) *SectorHandler {
	return &SectorHandler{service: service}
}

// List handles GET /api/sectors
func (h *SectorHandler) List(c *gin.Context) {
	aggregates, err := h.service.List(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, aggregates, len(aggregates))
}

// Get handles GET /api/sectors/:name
func (h *SectorHandler) Get(c *gin.Context) {
	agg, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, agg)
}

// Refresh handles POST /api/sectors/refresh
func (h *SectorHandler) Refresh(c *gin.Context) {
	aggregates, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, aggregates, len(aggregates))
}

// Compare handles GET /api/sectors/compare/:symbol
func (h *SectorHandler) Compare(c *gin.Context) {
	cmp, err := h.service.Compare(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, cmp)
}
