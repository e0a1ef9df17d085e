package stock

import "errors"

var (
	// Validation errors
	ErrInvalidSymbol = errors.New("invalid stock symbol format")
	ErrInvalidSort   = errors.New("invalid sort field")
	ErrInvalidOrder  = errors.New("invalid order direction")

	// Data errors
	ErrStockNotFound = errors.New("stock not found")
	ErrQuoteNotFound = errors.New("quote not found")
	ErrStockExists   = errors.New("stock already tracked")

	// Upstream errors
	ErrRateLimited     = errors.New("provider rate limit exceeded")
	ErrSymbolUnknown   = errors.New("symbol not known to provider")
	ErrProviderFailure = errors.New("provider request failed")
)
