package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tnammu/dividash/internal/domain/strategy"
)

// StrategyRepository implements strategy.Repository using PostgreSQL
type StrategyRepository struct {
	pool *Pool
}

// NewStrategyRepository creates a new StrategyRepository
func NewStrategyRepository(pool *Pool) *StrategyRepository {
	return &StrategyRepository{pool: pool}
}

// List returns all stored strategies, newest first
func (r *StrategyRepository) List(ctx context.Context) ([]strategy.Strategy, error) {
	query := `
		SELECT id, name, description, min_yield, max_payout_ratio, min_streak_years, max_beta, created_ts
		FROM market.strategies
		ORDER BY created_ts DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	strategies := []strategy.Strategy{}
	for rows.Next() {
		var s strategy.Strategy
		err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.MinYield, &s.MaxPayoutRatio, &s.MinStreakYears, &s.MaxBeta, &s.CreatedTS)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, s)
	}

	return strategies, rows.Err()
}

// GetByID returns one strategy
func (r *StrategyRepository) GetByID(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error) {
	query := `
		SELECT id, name, description, min_yield, max_payout_ratio, min_streak_years, max_beta, created_ts
		FROM market.strategies
		WHERE id = $1
	`

	var s strategy.Strategy
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.MinYield, &s.MaxPayoutRatio, &s.MinStreakYears, &s.MaxBeta, &s.CreatedTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, strategy.ErrStrategyNotFound
		}
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}

	return &s, nil
}

// Create inserts a new strategy, assigning its ID
func (r *StrategyRepository) Create(ctx context.Context, s *strategy.Strategy) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO market.strategies (id, name, description, min_yield, max_payout_ratio, min_streak_years, max_beta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_ts
	`

	err := r.pool.QueryRow(ctx, query,
		s.ID, s.Name, s.Description, s.MinYield, s.MaxPayoutRatio, s.MinStreakYears, s.MaxBeta,
	).Scan(&s.CreatedTS)
	if err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}

	return nil
}

// Delete removes a strategy
func (r *StrategyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM market.strategies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete strategy: %w", err)
	}

	if result.RowsAffected() == 0 {
		return strategy.ErrStrategyNotFound
	}

	return nil
}
