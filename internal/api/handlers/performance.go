package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/service/performance"
)

// PerformanceHandler handles the benchmark comparison endpoint
type PerformanceHandler struct {
	service *performance.Service
}

// NewPerformanceHandler creates a new PerformanceHandler
func NewPerformanceHandler(service *performance.Service) *PerformanceHandler {
	return &PerformanceHandler{service: service}
}

// Compare handles GET /api/performance/compare?symbol=KO&benchmark=SPY&days=252
func (h *PerformanceHandler) Compare(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		response.BadRequest(c, "symbol query parameter is required")
		return
	}

	days := 0
	if daysStr := c.Query("days"); daysStr != "" {
		d, err := strconv.Atoi(daysStr)
		if err != nil || d < 1 {
			response.BadRequest(c, "days must be a positive integer")
			return
		}
		days = d
	}

	cmp, err := h.service.Compare(c.Request.Context(), symbol, c.Query("benchmark"), days)
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, cmp)
}
