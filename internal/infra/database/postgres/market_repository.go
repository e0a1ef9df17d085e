package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tnammu/dividash/internal/domain/market"
)

// MarketRepository implements market.Repository using PostgreSQL
type MarketRepository struct {
	pool *Pool
}

// NewMarketRepository creates a new MarketRepository
func NewMarketRepository(pool *Pool) *MarketRepository {
	return &MarketRepository{pool: pool}
}

// ListByKind returns all instruments of one kind ordered by symbol
func (r *MarketRepository) ListByKind(ctx context.Context, kind market.Kind) ([]market.Instrument, error) {
	query := `
		SELECT symbol, name, kind, value, unit, change_pct, source, fetched_ts
		FROM market.instruments
		WHERE kind = $1
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	instruments := []market.Instrument{}
	for rows.Next() {
		var i market.Instrument
		err := rows.Scan(&i.Symbol, &i.Name, &i.Kind, &i.Value, &i.Unit, &i.ChangePct, &i.Source, &i.FetchedTS)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, i)
	}

	return instruments, rows.Err()
}

// GetBySymbol returns one instrument
func (r *MarketRepository) GetBySymbol(ctx context.Context, symbol string) (*market.Instrument, error) {
	query := `
		SELECT symbol, name, kind, value, unit, change_pct, source, fetched_ts
		FROM market.instruments
		WHERE symbol = $1
	`

	var i market.Instrument
	err := r.pool.QueryRow(ctx, query, symbol).Scan(
		&i.Symbol, &i.Name, &i.Kind, &i.Value, &i.Unit, &i.ChangePct, &i.Source, &i.FetchedTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, market.ErrInstrumentNotFound
		}
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}

	return &i, nil
}

// Upsert inserts or replaces an instrument value
func (r *MarketRepository) Upsert(ctx context.Context, i *market.Instrument) error {
	query := `
		INSERT INTO market.instruments (symbol, name, kind, value, unit, change_pct, source, fetched_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol) DO UPDATE
		SET name = EXCLUDED.name,
		    value = EXCLUDED.value,
		    unit = EXCLUDED.unit,
		    change_pct = EXCLUDED.change_pct,
		    source = EXCLUDED.source,
		    fetched_ts = EXCLUDED.fetched_ts
	`

	_, err := r.pool.Exec(ctx, query,
		i.Symbol, i.Name, i.Kind, i.Value, i.Unit, i.ChangePct, i.Source, i.FetchedTS,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert instrument: %w", err)
	}

	return nil
}
