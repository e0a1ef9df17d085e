package etf

import "context"

// Repository defines the interface for ETF data access
type Repository interface {
	List(ctx context.Context) ([]ETF, error)
	GetBySymbol(ctx context.Context, symbol string) (*ETF, error)
	Create(ctx context.Context, e *ETF) error
	Update(ctx context.Context, e *ETF) error
	Delete(ctx context.Context, symbol string) error
}
