package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/service/dividend"
)

// DividendHandler handles the dividend endpoints
type DividendHandler struct {
	service *dividend.Service
}

// NewDividendHandler creates a new DividendHandler
func NewDividendHandler(service *dividend.Service) *DividendHandler {
	return &DividendHandler{service: service}
}

// History handles GET /api/dividends/:symbol/history
func (h *DividendHandler) History(c *gin.Context) {
	history, err := h.service.History(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, history, len(history))
}

// Analysis handles GET /api/dividends/:symbol/analysis
func (h *DividendHandler) Analysis(c *gin.Context) {
	analysis, err := h.service.Analyze(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, analysis)
}

// Refresh handles POST /api/dividends/:symbol/refresh
func (h *DividendHandler) Refresh(c *gin.Context) {
	history, err := h.service.RefreshHistory(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, history, len(history))
}
