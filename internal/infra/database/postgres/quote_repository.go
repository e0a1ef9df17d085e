package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tnammu/dividash/internal/domain/stock"
)

// QuoteRepository implements stock.QuoteRepository using PostgreSQL.
// One row per symbol; refreshes upsert in place.
type QuoteRepository struct {
	pool *Pool
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(pool *Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// Get returns the cached quote for a symbol regardless of age
func (r *QuoteRepository) Get(ctx context.Context, symbol string) (*stock.Quote, error) {
	query := `
		SELECT symbol, price, change, change_pct, volume, prev_close, source, fetched_ts
		FROM market.quotes
		WHERE symbol = $1
	`

	var q stock.Quote
	err := r.pool.QueryRow(ctx, query, symbol).Scan(
		&q.Symbol, &q.Price, &q.Change, &q.ChangePct, &q.Volume, &q.PrevClose, &q.Source, &q.FetchedTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stock.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return &q, nil
}

// GetFresh returns the cached quote only if younger than maxAge
func (r *QuoteRepository) GetFresh(ctx context.Context, symbol string, maxAge time.Duration) (*stock.Quote, error) {
	query := `
		SELECT symbol, price, change, change_pct, volume, prev_close, source, fetched_ts
		FROM market.quotes
		WHERE symbol = $1 AND fetched_ts > NOW() - $2::interval
	`

	var q stock.Quote
	err := r.pool.QueryRow(ctx, query, symbol, maxAge.String()).Scan(
		&q.Symbol, &q.Price, &q.Change, &q.ChangePct, &q.Volume, &q.PrevClose, &q.Source, &q.FetchedTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stock.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get fresh quote: %w", err)
	}

	return &q, nil
}

// Upsert inserts or replaces the cached quote for a symbol
func (r *QuoteRepository) Upsert(ctx context.Context, q *stock.Quote) error {
	query := `
		INSERT INTO market.quotes (symbol, price, change, change_pct, volume, prev_close, source, fetched_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol) DO UPDATE
		SET price = EXCLUDED.price,
		    change = EXCLUDED.change,
		    change_pct = EXCLUDED.change_pct,
		    volume = EXCLUDED.volume,
		    prev_close = EXCLUDED.prev_close,
		    source = EXCLUDED.source,
		    fetched_ts = EXCLUDED.fetched_ts
	`

	_, err := r.pool.Exec(ctx, query,
		q.Symbol, q.Price, q.Change, q.ChangePct, q.Volume, q.PrevClose, q.Source, q.FetchedTS,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quote: %w", err)
	}

	return nil
}
