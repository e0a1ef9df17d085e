package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tnammu/dividash/internal/api/response"
	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/service/market"
	"github.com/tnammu/dividash/internal/service/quote"
)

const defaultFetchLogLimit = 100

// AdminHandler handles operational endpoints: bulk refresh, fetch log
// inspection and cache statistics.
type AdminHandler struct {
	quotes  *quote.Service
	markets *market.Service
	logRepo fetchlog.Repository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(quotes *quote.Service, markets *market.Service, logRepo fetchlog.Repository) *AdminHandler {
	return &AdminHandler{
		quotes:  quotes,
		markets: markets,
		logRepo: logRepo,
	}
}

// RefreshResult reports the outcome of a bulk refresh pass.
type RefreshResult struct {
	QuotesRefreshed  int    `json:"quotes_refreshed"`
	QuotesFailed     int    `json:"quotes_failed"`
	MarketsRefreshed int    `json:"markets_refreshed"`
	MarketsFailed    int    `json:"markets_failed"`
	Duration         string `json:"duration"`
}

// RefreshAll handles POST /api/admin/refresh-all
// Refreshes every tracked quote and market instrument sequentially.
func (h *AdminHandler) RefreshAll(c *gin.Context) {
	start := time.Now()

	qRefreshed, qFailed, err := h.quotes.RefreshAll(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}

	mRefreshed, mFailed, err := h.markets.RefreshAll(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}

	response.Success(c, RefreshResult{
		QuotesRefreshed:  qRefreshed,
		QuotesFailed:     qFailed,
		MarketsRefreshed: mRefreshed,
		MarketsFailed:    mFailed,
		Duration:         time.Since(start).String(),
	})
}

// FetchLogs handles GET /api/admin/fetch-logs
func (h *AdminHandler) FetchLogs(c *gin.Context) {
	limit := defaultFetchLogLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = l
	}

	entries, err := h.logRepo.Recent(c.Request.Context(), limit)
	if err != nil {
		response.FromDomain(c, err)
		return
	}

	response.SuccessList(c, entries, len(entries))
}

// CacheStats handles GET /api/admin/cache
func (h *AdminHandler) CacheStats(c *gin.Context) {
	response.Success(c, h.quotes.CacheStats())
}
