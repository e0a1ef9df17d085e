package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tnammu/dividash/internal/domain/sector"
)

// SectorRepository implements sector.Repository using PostgreSQL
type SectorRepository struct {
	pool *Pool
}

// NewSectorRepository creates a new SectorRepository
func NewSectorRepository(pool *Pool) *SectorRepository {
	return &SectorRepository{pool: pool}
}

// List returns all sector aggregates ordered by name
func (r *SectorRepository) List(ctx context.Context) ([]sector.Aggregate, error) {
	query := `
		SELECT name, stock_count, avg_yield, avg_payout_ratio, avg_safety_score, refreshed_ts
		FROM market.sector_aggregates
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sector aggregates: %w", err)
	}
	defer rows.Close()

	aggregates := []sector.Aggregate{}
	for rows.Next() {
		var a sector.Aggregate
		err := rows.Scan(&a.Name, &a.StockCount, &a.AvgYield, &a.AvgPayoutRatio, &a.AvgSafetyScore, &a.RefreshedTS)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sector aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}

	return aggregates, rows.Err()
}

// GetByName returns one sector aggregate
func (r *SectorRepository) GetByName(ctx context.Context, name string) (*sector.Aggregate, error) {
	query := `
		SELECT name, stock_count, avg_yield, avg_payout_ratio, avg_safety_score, refreshed_ts
		FROM market.sector_aggregates
		WHERE name = $1
	`

	var a sector.Aggregate
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&a.Name, &a.StockCount, &a.AvgYield, &a.AvgPayoutRatio, &a.AvgSafetyScore, &a.RefreshedTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sector.ErrSectorNotFound
		}
		return nil, fmt.Errorf("failed to get sector aggregate: %w", err)
	}

	return &a, nil
}

// ReplaceAll swaps the whole aggregate table in one transaction. Aggregates
// are recomputed as a set, so partial updates are never meaningful.
func (r *SectorRepository) ReplaceAll(ctx context.Context, aggregates []sector.Aggregate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM market.sector_aggregates`); err != nil {
		return fmt.Errorf("failed to clear sector aggregates: %w", err)
	}

	for _, a := range aggregates {
		_, err := tx.Exec(ctx, `
			INSERT INTO market.sector_aggregates (name, stock_count, avg_yield, avg_payout_ratio, avg_safety_score, refreshed_ts)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.Name, a.StockCount, a.AvgYield, a.AvgPayoutRatio, a.AvgSafetyScore, a.RefreshedTS)
		if err != nil {
			return fmt.Errorf("failed to insert sector aggregate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit sector aggregates: %w", err)
	}

	return nil
}
