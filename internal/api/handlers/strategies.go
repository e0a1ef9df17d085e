package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tnammu/dividash/internal/api/response"
	domain "github.com/tnammu/dividash/internal/domain/strategy"
	"github.com/tnammu/dividash/internal/service/strategy"
)

// StrategyHandler handles the screening strategy endpoints
type StrategyHandler struct {
	service *strategy.Service
}

// NewStrategyHandler creates a new StrategyHandler
func NewStrategyHandler(service *strategy.Service) *StrategyHandler {
	return &StrategyHandler{service: service}
}

// List handles GET /api/strategies
func (h *StrategyHandler) List(c *gin.Context) {
	strategies, err := h.service.List(c.Request.Context())
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, strategies, len(strategies))
}

// Get handles GET /api/strategies/:id
func (h *StrategyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid strategy id")
		return
	}

	st, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Success(c, st)
}

// createStrategyRequest is the POST /api/strategies body
type createStrategyRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    *string  `json:"description"`
	MinYield       *float64 `json:"min_yield"`
	MaxPayoutRatio *float64 `json:"max_payout_ratio"`
	MinStreakYears *int     `json:"min_streak_years"`
	MaxBeta        *float64 `json:"max_beta"`
}

// Create handles POST /api/strategies
func (h *StrategyHandler) Create(c *gin.Context) {
	var req createStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name is required")
		return
	}

	st := &domain.Strategy{
		Name:           req.Name,
		Description:    req.Description,
		MinYield:       req.MinYield,
		MaxPayoutRatio: req.MaxPayoutRatio,
		MinStreakYears: req.MinStreakYears,
		MaxBeta:        req.MaxBeta,
	}
	if err := h.service.Create(c.Request.Context(), st); err != nil {
		response.FromDomain(c, err)
		return
	}
	response.Created(c, st, "strategy created")
}

// Delete handles DELETE /api/strategies/:id
func (h *StrategyHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid strategy id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.FromDomain(c, err)
		return
	}
	response.NoContent(c)
}

// Run handles POST /api/strategies/:id/run
func (h *StrategyHandler) Run(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid strategy id")
		return
	}

	matches, err := h.service.Run(c.Request.Context(), id)
	if err != nil {
		response.FromDomain(c, err)
		return
	}
	response.SuccessList(c, matches, len(matches))
}
