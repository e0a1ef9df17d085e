package sector

import "context"

// Repository defines the interface for sector aggregate access
type Repository interface {
	List(ctx context.Context) ([]Aggregate, error)
	GetByName(ctx context.Context, name string) (*Aggregate, error)
	ReplaceAll(ctx context.Context, aggregates []Aggregate) error
}
