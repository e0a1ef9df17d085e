package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tnammu/dividash/internal/domain/etf"
)

// ETFRepository implements etf.Repository using PostgreSQL
type ETFRepository struct {
	pool *Pool
}

// NewETFRepository creates a new ETFRepository
func NewETFRepository(pool *Pool) *ETFRepository {
	return &ETFRepository{pool: pool}
}

const etfColumns = `symbol, name, expense_ratio, net_assets, dividend_yield,
	       inception_date, price, price_ts, top_holdings, created_ts, updated_ts`

// List returns all tracked ETFs ordered by symbol
func (r *ETFRepository) List(ctx context.Context) ([]etf.ETF, error) {
	query := fmt.Sprintf(`SELECT %s FROM market.etfs ORDER BY symbol`, etfColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query etfs: %w", err)
	}
	defer rows.Close()

	etfs := []etf.ETF{}
	for rows.Next() {
		e, err := scanETF(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan etf: %w", err)
		}
		etfs = append(etfs, *e)
	}

	return etfs, rows.Err()
}

// GetBySymbol returns an ETF by symbol
func (r *ETFRepository) GetBySymbol(ctx context.Context, symbol string) (*etf.ETF, error) {
	query := fmt.Sprintf(`SELECT %s FROM market.etfs WHERE symbol = $1`, etfColumns)

	e, err := scanETF(r.pool.QueryRow(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, etf.ErrETFNotFound
		}
		return nil, fmt.Errorf("failed to get etf: %w", err)
	}

	return e, nil
}

// Create inserts a new tracked ETF
func (r *ETFRepository) Create(ctx context.Context, e *etf.ETF) error {
	holdings, err := json.Marshal(e.TopHoldings)
	if err != nil {
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}

	query := `
		INSERT INTO market.etfs (
			symbol, name, expense_ratio, net_assets, dividend_yield,
			inception_date, price, price_ts, top_holdings
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_ts, updated_ts
	`

	err = r.pool.QueryRow(ctx, query,
		e.Symbol, e.Name, e.ExpenseRatio, e.NetAssets, e.DividendYield,
		e.InceptionDate, e.Price, e.PriceTS, holdings,
	).Scan(&e.CreatedTS, &e.UpdatedTS)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return etf.ErrETFExists
		}
		return fmt.Errorf("failed to create etf: %w", err)
	}

	return nil
}

// Update replaces the profile fields of a tracked ETF
func (r *ETFRepository) Update(ctx context.Context, e *etf.ETF) error {
	holdings, err := json.Marshal(e.TopHoldings)
	if err != nil {
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}

	query := `
		UPDATE market.etfs
		SET name = $2,
		    expense_ratio = $3,
		    net_assets = $4,
		    dividend_yield = $5,
		    inception_date = $6,
		    price = $7,
		    price_ts = $8,
		    top_holdings = $9,
		    updated_ts = NOW()
		WHERE symbol = $1
	`

	result, err := r.pool.Exec(ctx, query,
		e.Symbol, e.Name, e.ExpenseRatio, e.NetAssets, e.DividendYield,
		e.InceptionDate, e.Price, e.PriceTS, holdings,
	)
	if err != nil {
		return fmt.Errorf("failed to update etf: %w", err)
	}

	if result.RowsAffected() == 0 {
		return etf.ErrETFNotFound
	}

	return nil
}

// Delete removes a tracked ETF
func (r *ETFRepository) Delete(ctx context.Context, symbol string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM market.etfs WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete etf: %w", err)
	}

	if result.RowsAffected() == 0 {
		return etf.ErrETFNotFound
	}

	return nil
}

func scanETF(row pgx.Row) (*etf.ETF, error) {
	var e etf.ETF
	var holdings []byte

	err := row.Scan(
		&e.Symbol, &e.Name, &e.ExpenseRatio, &e.NetAssets, &e.DividendYield,
		&e.InceptionDate, &e.Price, &e.PriceTS, &holdings, &e.CreatedTS, &e.UpdatedTS,
	)
	if err != nil {
		return nil, err
	}

	if len(holdings) > 0 {
		if err := json.Unmarshal(holdings, &e.TopHoldings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal holdings: %w", err)
		}
	}

	return &e, nil
}
