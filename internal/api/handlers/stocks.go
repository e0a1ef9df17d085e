package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/service/stocks"
)

// StockHandler handles the tracked stock endpoints
type StockHandler struct {
	service *stocks.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *stocks.Service) *StockHandler {
	return &StockHandler{service: service}
}

// List handles GET /api/stocks
func (h *StockHandler) List(c *gin.Context) {
	filter := stock.ListFilter{
		Search: c.Query("search"),
		Sort:   c.DefaultQuery("sort", "symbol"),
		Order:  c.DefaultQuery("order", "asc"),
	}
	if sector := c.Query("sector"); sector != "" {
		filter.Sector = &sector
	}
	filter.Page, filter.Limit = response.GetPaginationParams(c)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.FromDomain(c, err)
		return
	}

	pagination := response.NewPagination(result.Page, result.Limit, result.TotalCount)
	response.SuccessWithPagination(c, result.Stocks, pagination)
}

// Get handles GET /api/stocks/:symbol
func (h *StockHandler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, s)
}

// trackRequest is the POST /api/stocks body
type trackRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// Track handles POST /api/stocks
func (h *StockHandler) Track(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "symbol is required")
		return
	}

	s, err := h.service.Track(c.Request.Context(), req.Symbol)
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Created(c, s, "stock tracked")
}

// Refresh handles POST /api/stocks/:symbol/refresh
func (h *StockHandler) Refresh(c *gin.Context) {
	s, err := h.service.Refresh(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, s)
}

// Delete handles DELETE /api/stocks/:symbol
func (h *StockHandler) Delete(c *gin.Context) {
	if err := h.service.Untrack(c.Request.Context(), c.Param("symbol")); err != nil {
		response.FromDomain(c, err)
		return
	}
	response.NoContent(c)
}
