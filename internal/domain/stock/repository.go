package stock

import (
	"context"
	"time"
)

// Repository defines the interface for stock data access
type Repository interface {
	// List returns paginated stocks with filters
	List(ctx context.Context, filter ListFilter) (*ListResult, error)

	// GetBySymbol returns a stock by symbol
	GetBySymbol(ctx context.Context, symbol string) (*Stock, error)

	// GetSymbols returns all tracked symbols
	GetSymbols(ctx context.Context) ([]string, error)

	// Create inserts a new tracked stock
	Create(ctx context.Context, s *Stock) error

	// UpdateOverview updates fundamentals fetched from the provider
	UpdateOverview(ctx context.Context, s *Stock) error

	// Delete removes a stock; dividend and quote rows cascade
	Delete(ctx context.Context, symbol string) error
}

// QuoteRepository defines the interface for cached quote access
type QuoteRepository interface {
	// Get returns the cached quote for a symbol
	Get(ctx context.Context, symbol string) (*Quote, error)

	// GetFresh returns the cached quote only if younger than maxAge
	GetFresh(ctx context.Context, symbol string, maxAge time.Duration) (*Quote, error)

	// Upsert inserts or replaces the cached quote for a symbol
	Upsert(ctx context.Context, q *Quote) error
}
