package strategy

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for strategy storage
type Repository interface {
	List(ctx context.Context) ([]Strategy, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Strategy, error)
	Create(ctx context.Context, s *Strategy) error
	Delete(ctx context.Context, id uuid.UUID) error
}
