package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tnammu/dividash/internal/domain/stock"
)

// StockRepository implements stock.Repository using PostgreSQL
type StockRepository struct {
	pool *Pool
}

// NewStockRepository creates a new StockRepository
func NewStockRepository(pool *Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

const stockColumns = `symbol, name, exchange, currency, sector, industry, market_cap,
	       eps, pe_ratio, dividend_yield, beta, overview_ts, created_ts, updated_ts`

// List returns paginated stocks with filters
func (r *StockRepository) List(ctx context.Context, filter stock.ListFilter) (*stock.ListResult, error) {
	whereClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Sector != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("sector = $%d", argIndex))
		args = append(args, *filter.Sector)
		argIndex++
	}

	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		whereClauses = append(whereClauses, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(symbol) LIKE $%d)", argIndex, argIndex))
		args = append(args, searchPattern)
		argIndex++
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM market.stocks %s", whereClause)
	var totalCount int
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count stocks: %w", err)
	}

	orderByClause := fmt.Sprintf("ORDER BY %s %s", filter.Sort, strings.ToUpper(filter.Order))

	// Nullable sort columns go NULLS LAST so untracked values sink
	if filter.Sort == "market_cap" || filter.Sort == "dividend_yield" {
		orderByClause += " NULLS LAST"
	}

	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM market.stocks
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, stockColumns, whereClause, orderByClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	stocks := []stock.Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}

	return &stock.ListResult{
		Stocks:     stocks,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetBySymbol returns a stock by symbol
func (r *StockRepository) GetBySymbol(ctx context.Context, symbol string) (*stock.Stock, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM market.stocks
		WHERE symbol = $1
	`, stockColumns)

	row := r.pool.QueryRow(ctx, query, symbol)
	s, err := scanStock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stock.ErrStockNotFound
		}
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	return s, nil
}

// GetSymbols returns all tracked symbols ordered alphabetically
func (r *StockRepository) GetSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT symbol FROM market.stocks ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}

	return symbols, rows.Err()
}

// Create inserts a new tracked stock
func (r *StockRepository) Create(ctx context.Context, s *stock.Stock) error {
	query := `
		INSERT INTO market.stocks (
			symbol, name, exchange, currency, sector, industry, market_cap,
			eps, pe_ratio, dividend_yield, beta, overview_ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_ts, updated_ts
	`

	err := r.pool.QueryRow(ctx, query,
		s.Symbol, s.Name, s.Exchange, s.Currency, s.Sector, s.Industry, s.MarketCap,
		s.EPS, s.PERatio, s.DividendYield, s.Beta, s.OverviewTS,
	).Scan(&s.CreatedTS, &s.UpdatedTS)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return stock.ErrStockExists
		}
		return fmt.Errorf("failed to create stock: %w", err)
	}

	return nil
}

// UpdateOverview updates fundamentals fetched from the provider
func (r *StockRepository) UpdateOverview(ctx context.Context, s *stock.Stock) error {
	query := `
		UPDATE market.stocks
		SET name = $2,
		    exchange = $3,
		    currency = $4,
		    sector = $5,
		    industry = $6,
		    market_cap = $7,
		    eps = $8,
		    pe_ratio = $9,
		    dividend_yield = $10,
		    beta = $11,
		    overview_ts = $12,
		    updated_ts = NOW()
		WHERE symbol = $1
	`

	result, err := r.pool.Exec(ctx, query,
		s.Symbol, s.Name, s.Exchange, s.Currency, s.Sector, s.Industry, s.MarketCap,
		s.EPS, s.PERatio, s.DividendYield, s.Beta, s.OverviewTS,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock overview: %w", err)
	}

	if result.RowsAffected() == 0 {
		return stock.ErrStockNotFound
	}

	return nil
}

// Delete removes a stock; dividends, analyses and quotes cascade
func (r *StockRepository) Delete(ctx context.Context, symbol string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM market.stocks WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return stock.ErrStockNotFound
	}

	return nil
}

func scanStock(row pgx.Row) (*stock.Stock, error) {
	var s stock.Stock
	err := row.Scan(
		&s.Symbol, &s.Name, &s.Exchange, &s.Currency, &s.Sector, &s.Industry, &s.MarketCap,
		&s.EPS, &s.PERatio, &s.DividendYield, &s.Beta, &s.OverviewTS, &s.CreatedTS, &s.UpdatedTS,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
