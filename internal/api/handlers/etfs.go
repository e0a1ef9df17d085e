package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/service/etfs"
)

// ETFHandler handles the ETF endpoints
type ETFHandler struct {
	service *etfs.Service
}

// NewETFHandler creates a new ETFHandler
func NewETFHandler(service *etfs.Service) *ETFHandler {
	return &ETFHandler{service: service}
}

// List handles GET /api/etfs
func (h *ETFHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, list, len(list))
}

// Get handles GET /api/etfs/:symbol
func (h *ETFHandler) Get(c *gin.Context) {
	e, err := h.service.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, e)
}

// trackETFRequest is the POST /api/etfs body
type trackETFRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Name   string `json:"name"`
}

// Track handles POST /api/etfs
func (h *ETFHandler) Track(c *gin.Context) {
	var req trackETFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "symbol is required")
		return
	}

	e, err := h.service.Track(c.Request.Context(), req.Symbol, req.Name)
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Created(c, e, "etf tracked")
}

// Delete handles DELETE /api/etfs/:symbol
func (h *ETFHandler) Delete(c *gin.Context) {
	if err := h.service.Untrack(c.Request.Context(), c.Param("symbol")); err != nil {
		response.FromDomain(c, err)
		return
	}
	response.NoContent(c)
}
