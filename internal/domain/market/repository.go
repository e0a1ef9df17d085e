package market

import "context"

// Repository defines the interface for commodity/index data access
type Repository interface {
	ListByKind(ctx context.Context, kind Kind) ([]Instrument, error)
	GetBySymbol(ctx context.Context, symbol string) (*Instrument, error)
	Upsert(ctx context.Context, i *Instrument) error
}
