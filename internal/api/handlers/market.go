package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/service/market"
)

// MarketHandler handles the commodity and index endpoints
type MarketHandler struct {
	service *market.Service
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(service *market.Service) *MarketHandler {
	return &MarketHandler{service: service}
}

// Commodities handles GET /api/commodities
func (h *MarketHandler) Commodities(c *gin.Context) {
	instruments, err := h.service.Commodities(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, instruments, len(instruments))
}

// Indexes handles GET /api/indexes
func (h *MarketHandler) Indexes(c *gin.Context) {
	instruments, err := h.service.Indexes(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, instruments, len(instruments))
}

// Get handles GET /api/commodities/:symbol and GET /api/indexes/:symbol
func (h *MarketHandler) Get(c *gin.Context) {
	instrument, err := h.service.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, instrument)
}
