package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tnammu/dividash/internal/analytics"
	"github.com/tnammu/dividash/internal/api/middleware"
	"github.com/tnammu/dividash/internal/domain/dividend"
	"github.com/tnammu/dividash/internal/domain/etf"
	"github.com/tnammu/dividash/internal/domain/market"
	"github.com/tnammu/dividash/internal/domain/sector"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/domain/strategy"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrCodeInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter  = "INVALID_PARAMETER"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeNotEnoughData     = "NOT_ENOUGH_DATA"
	ErrCodeExternalAPIError  = "EXTERNAL_API_ERROR"
)

// Error sends an error response
func Error(c *gin.Context, statusCode int, code, message string) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	}

	log.Error().
		Str("request_id", response.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Int("status", statusCode).
		Msg("API error response")

	c.JSON(statusCode, response)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, message)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, ErrCodeConflict, message)
}

// InternalError sends a 500 Internal Server Error
func InternalError(c *gin.Context, err error) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrCodeInternalServer,
			Message:   "An unexpected error occurred",
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	}

	if err != nil {
		response.Error.Details = err.Error()
		log.Error().
			Err(err).
			Str("request_id", response.Error.RequestID).
			Msg("Internal server error")
	}

	c.JSON(http.StatusInternalServerError, response)
}

// FromDomain maps a service or domain error to the right HTTP response.
// Handlers call this for any error they do not treat specially.
func FromDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stock.ErrInvalidSymbol),
		errors.Is(err, stock.ErrInvalidSort),
		errors.Is(err, stock.ErrInvalidOrder):
		BadRequest(c, err.Error())

	case errors.Is(err, strategy.ErrMissingName),
		errors.Is(err, strategy.ErrNoCriteria),
		errors.Is(err, strategy.ErrInvalidCriteria):
		Error(c, http.StatusBadRequest, ErrCodeValidation, err.Error())

	case errors.Is(err, stock.ErrStockNotFound),
		errors.Is(err, stock.ErrQuoteNotFound),
		errors.Is(err, stock.ErrSymbolUnknown),
		errors.Is(err, dividend.ErrAnalysisNotFound),
		errors.Is(err, dividend.ErrNoHistory),
		errors.Is(err, etf.ErrETFNotFound),
		errors.Is(err, sector.ErrSectorNotFound),
		errors.Is(err, market.ErrInstrumentNotFound),
		errors.Is(err, strategy.ErrStrategyNotFound):
		NotFound(c, err.Error())

	case errors.Is(err, stock.ErrStockExists),
		errors.Is(err, etf.ErrETFExists):
		Conflict(c, err.Error())

	case errors.Is(err, sector.ErrNoSector),
		errors.Is(err, analytics.ErrNotEnoughData),
		errors.Is(err, analytics.ErrLengthMismatch):
		Error(c, http.StatusUnprocessableEntity, ErrCodeNotEnoughData, err.Error())

	case errors.Is(err, stock.ErrRateLimited):
		Error(c, http.StatusTooManyRequests, ErrCodeRateLimitExceeded, "Upstream providers are rate limited, try again shortly")

	case errors.Is(err, stock.ErrProviderFailure):
		Error(c, http.StatusBadGateway, ErrCodeExternalAPIError, "Upstream provider request failed")

	default:
		InternalError(c, err)
	}
}
