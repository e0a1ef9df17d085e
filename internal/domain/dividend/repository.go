package dividend

import "context"

// Repository defines the interface for dividend data access
type Repository interface {
	// History returns dividends for a symbol ordered by ex_date descending
	History(ctx context.Context, symbol string) ([]Dividend, error)

	// ReplaceHistory replaces all dividend rows for a symbol in one transaction
	ReplaceHistory(ctx context.Context, symbol string, dividends []Dividend) error

	// GetAnalysis returns the stored analysis for a symbol
	GetAnalysis(ctx context.Context, symbol string) (*Analysis, error)

	// UpsertAnalysis inserts or replaces the stored analysis
	UpsertAnalysis(ctx context.Context, a *Analysis) error
}
