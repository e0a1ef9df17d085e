package postgres

import (
	"context"
	"fmt"

	"github.com/tnammu/dividash/internal/domain/fetchlog"
)

// FetchLogRepository implements fetchlog.Repository using PostgreSQL
type FetchLogRepository struct {
	pool *Pool
}

// NewFetchLogRepository creates a new FetchLogRepository
func NewFetchLogRepository(pool *Pool) *FetchLogRepository {
	return &FetchLogRepository{pool: pool}
}

// Create records one upstream fetch attempt
func (r *FetchLogRepository) Create(ctx context.Context, e *fetchlog.Entry) error {
	query := `
		INSERT INTO system.fetch_logs (provider, operation, symbol, status, err_message, started_ts, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_ts
	`

	err := r.pool.QueryRow(ctx, query,
		e.Provider, e.Operation, e.Symbol, e.Status, e.ErrMessage, e.StartedTS, e.DurationMS,
	).Scan(&e.ID, &e.CreatedTS)
	if err != nil {
		return fmt.Errorf("failed to create fetch log: %w", err)
	}

	return nil
}

// Recent returns the most recent fetch log entries
func (r *FetchLogRepository) Recent(ctx context.Context, limit int) ([]fetchlog.Entry, error) {
	query := `
		SELECT id, provider, operation, symbol, status, err_message, started_ts, duration_ms, created_ts
		FROM system.fetch_logs
		ORDER BY started_ts DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch logs: %w", err)
	}
	defer rows.Close()

	entries := []fetchlog.Entry{}
	for rows.Next() {
		var e fetchlog.Entry
		err := rows.Scan(&e.ID, &e.Provider, &e.Operation, &e.Symbol, &e.Status, &e.ErrMessage, &e.StartedTS, &e.DurationMS, &e.CreatedTS)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch log: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
