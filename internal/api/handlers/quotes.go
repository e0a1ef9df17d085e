package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/service/quote"
)

// QuoteHandler handles the quote endpoints
type QuoteHandler struct {
	service *quote.Service
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(service *quote.Service) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// Get handles GET /api/quotes/:symbol
func (h *QuoteHandler) Get(c *gin.Context) {
	q, err := h.service.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, q)
}

// GetMany handles GET /api/quotes?symbols=KO,PG,XOM
func (h *QuoteHandler) GetMany(c *gin.Context) {
	raw := c.Query("symbols")
	if raw == "" {
		response.BadRequest(c, "symbols query parameter is required")
		return
	}

	symbols := strings.Split(raw, ",")
	if len(symbols) > 50 {
		response.BadRequest(c, "at most 50 symbols per request")
		return
	}

	quotes, err := h.service.GetMany(c.Request.Context(), symbols)
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, quotes, len(quotes))
}
