package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tnammu/dividash/internal/domain/dividend"
)

// DividendRepository implements dividend.Repository using PostgreSQL
type DividendRepository struct {
	pool *Pool
}

// NewDividendRepository creates a new DividendRepository
func NewDividendRepository(pool *Pool) *DividendRepository {
	return &DividendRepository{pool: pool}
}

// History returns dividends for a symbol ordered by ex_date descending
func (r *DividendRepository) History(ctx context.Context, symbol string) ([]dividend.Dividend, error) {
	query := `
		SELECT symbol, ex_date, pay_date, amount, created_ts
		FROM market.dividends
		WHERE symbol = $1
		ORDER BY ex_date DESC
	`

	rows, err := r.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends: %w", err)
	}
	defer rows.Close()

	dividends := []dividend.Dividend{}
	for rows.Next() {
		var d dividend.Dividend
		if err := rows.Scan(&d.Symbol, &d.ExDate, &d.PayDate, &d.Amount, &d.CreatedTS); err != nil {
			return nil, fmt.Errorf("failed to scan dividend: %w", err)
		}
		dividends = append(dividends, d)
	}

	return dividends, rows.Err()
}

// ReplaceHistory replaces all dividend rows for a symbol in one transaction.
// Upstream history is authoritative, so replace beats merge.
func (r *DividendRepository) ReplaceHistory(ctx context.Context, symbol string, dividends []dividend.Dividend) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM market.dividends WHERE symbol = $1`, symbol); err != nil {
		return fmt.Errorf("failed to clear dividend history: %w", err)
	}

	for _, d := range dividends {
		_, err := tx.Exec(ctx, `
			INSERT INTO market.dividends (symbol, ex_date, pay_date, amount)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (symbol, ex_date) DO NOTHING
		`, symbol, d.ExDate, d.PayDate, d.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert dividend: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dividend history: %w", err)
	}

	return nil
}

// GetAnalysis returns the stored analysis for a symbol
func (r *DividendRepository) GetAnalysis(ctx context.Context, symbol string) (*dividend.Analysis, error) {
	query := `
		SELECT symbol, yield, payout_ratio, growth_1y, growth_3y, growth_5y,
		       streak_years, annual_amount, safety_score, computed_ts
		FROM market.dividend_analyses
		WHERE symbol = $1
	`

	var a dividend.Analysis
	err := r.pool.QueryRow(ctx, query, symbol).Scan(
		&a.Symbol, &a.Yield, &a.PayoutRatio, &a.Growth1Y, &a.Growth3Y, &a.Growth5Y,
		&a.StreakYears, &a.AnnualAmount, &a.SafetyScore, &a.ComputedTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dividend.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return &a, nil
}

// UpsertAnalysis inserts or replaces the stored analysis
func (r *DividendRepository) UpsertAnalysis(ctx context.Context, a *dividend.Analysis) error {
	query := `
		INSERT INTO market.dividend_analyses (
			symbol, yield, payout_ratio, growth_1y, growth_3y, growth_5y,
			streak_years, annual_amount, safety_score, computed_ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol) DO UPDATE
		SET yield = EXCLUDED.yield,
		    payout_ratio = EXCLUDED.payout_ratio,
		    growth_1y = EXCLUDED.growth_1y,
		    growth_3y = EXCLUDED.growth_3y,
		    growth_5y = EXCLUDED.growth_5y,
		    streak_years = EXCLUDED.streak_years,
		    annual_amount = EXCLUDED.annual_amount,
		    safety_score = EXCLUDED.safety_score,
		    computed_ts = EXCLUDED.computed_ts
	`

	_, err := r.pool.Exec(ctx, query,
		a.Symbol, a.Yield, a.PayoutRatio, a.Growth1Y, a.Growth3Y, a.Growth5Y,
		a.StreakYears, a.AnnualAmount, a.SafetyScore, a.ComputedTS,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert analysis: %w", err)
	}

	return nil
}
