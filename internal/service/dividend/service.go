// Package dividend derives payout, growth, streak and safety metrics from
// stored dividend history, recomputing when the stored analysis ages out.
package dividend

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/analytics"
	"github.com/tnammu/dividash/internal/domain/dividend"
	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
)

// HistoryProvider fetches dividend history from an upstream source
type HistoryProvider interface {
	GetDividends(ctx context.Context, symbol string) ([]dividend.Dividend, error)
}

// QuoteSource resolves a current price for the yield computation
type QuoteSource interface {
	Get(ctx context.Context, symbol string) (*stock.Quote, error)
}

// Config holds dividend service settings
type Config struct {
	AnalysisTTL  time.Duration // stored analyses older than this are recomputed
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		AnalysisTTL:  30 * time.Minute,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// Service computes and caches dividend analyses
type Service struct {
	config Config

	divRepo   dividend.Repository
	stockRepo stock.Repository
	logRepo   fetchlog.Repository

	provider HistoryProvider
	quotes   QuoteSource

	logger zerolog.Logger
}

// NewService creates a dividend service
func NewService(
	config Config,
	divRepo dividend.Repository,
	stockRepo stock.Repository,
	logRepo fetchlog.Repository,
	provider HistoryProvider,
	quotes QuoteSource,
	logger zerolog.Logger,
) *Service {
	return &Service{
		config:    config,
		divRepo:   divRepo,
		stockRepo: stockRepo,
		logRepo:   logRepo,
		provider:  provider,
		quotes:    quotes,
		logger:    logger.With().Str("service", "dividend").Logger(),
	}
}

// History returns the dividend history for a symbol, fetching from upstream
// when nothing is stored yet.
func (s *Service) History(ctx context.Context, symbol string) ([]dividend.Dividend, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	history, err := s.divRepo.History(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		return history, nil
	}

	return s.RefreshHistory(ctx, symbol)
}

// RefreshHistory re-fetches the dividend history from upstream and replaces
// the stored rows.
func (s *Service) RefreshHistory(ctx context.Context, symbol string) ([]dividend.Dividend, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	history, err := s.fetchHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, dividend.ErrNoHistory
	}

	if err := s.divRepo.ReplaceHistory(ctx, symbol, history); err != nil {
		return nil, err
	}

	return history, nil
}

// Analyze returns the dividend analysis for a symbol, recomputing it when
// the stored one has aged past the TTL.
func (s *Service) Analyze(ctx context.Context, symbol string) (*dividend.Analysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	if stored, err := s.divRepo.GetAnalysis(ctx, symbol); err == nil {
		if stored.Age() <= s.config.AnalysisTTL {
			return stored, nil
		}
	} else if !errors.Is(err, dividend.ErrAnalysisNotFound) {
		return nil, err
	}

	analysis, err := s.compute(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.divRepo.UpsertAnalysis(ctx, analysis); err != nil {
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("persist analysis failed")
	}

	return analysis, nil
}

// compute derives the full analysis from history, fundamentals and the
// current quote. Missing inputs degrade individual metrics to nil rather
// than failing the whole computation.
func (s *Service) compute(ctx context.Context, symbol string) (*dividend.Analysis, error) {
	history, err := s.History(ctx, symbol)
	if err != nil {
		return nil, err
	}

	analysis := &dividend.Analysis{
		Symbol:     symbol,
		ComputedTS: time.Now(),
	}

	trailing := trailingAnnual(history, time.Now())
	if trailing > 0 {
		analysis.AnnualAmount = &trailing
	}

	annuals := annualTotals(history)
	complete := completeYears(annuals, time.Now().Year())

	for _, horizon := range []struct {
		years int
		dst   **float64
	}{{1, &analysis.Growth1Y}, {3, &analysis.Growth3Y}, {5, &analysis.Growth5Y}} {
		if rate, err := analytics.GrowthRate(complete, horizon.years); err == nil {
			r := rate
			*horizon.dst = &r
		}
	}
	analysis.StreakYears = analytics.PaymentStreak(complete)

	var beta *float64
	overview, err := s.stockRepo.GetBySymbol(ctx, symbol)
	if err == nil {
		beta = overview.Beta
		if overview.EPS != nil {
			if ratio, ok := analytics.PayoutRatio(trailing, *overview.EPS); ok {
				analysis.PayoutRatio = &ratio
			}
		}
	} else if !errors.Is(err, stock.ErrStockNotFound) {
		return nil, err
	}

	if quote, err := s.quotes.Get(ctx, symbol); err == nil {
		if y, err := analytics.Yield(trailing, quote.Price.InexactFloat64()); err == nil {
			analysis.Yield = &y
		}
	} else {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("no quote for yield")
	}

	analysis.SafetyScore = analytics.SafetyScore(analytics.SafetyInputs{
		PayoutRatio: analysis.PayoutRatio,
		Yield:       analysis.Yield,
		GrowthRate:  bestGrowth(analysis),
		StreakYears: analysis.StreakYears,
		Beta:        beta,
	})

	return analysis, nil
}

// fetchHistory calls the provider with bounded backoff on rate limiting
func (s *Service) fetchHistory(ctx context.Context, symbol string) ([]dividend.Dividend, error) {
	backoff := s.config.RetryBackoff
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		started := time.Now()
		var history []dividend.Dividend
		history, err = s.provider.GetDividends(ctx, symbol)
		s.recordFetch(ctx, symbol, started, err, len(history))
		if err == nil {
			return history, nil
		}
		if !errors.Is(err, stock.ErrRateLimited) || attempt == attempts {
			break
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}

	return nil, err
}

func (s *Service) recordFetch(ctx context.Context, symbol string, started time.Time, fetchErr error, rows int) {
	entry := &fetchlog.Entry{
		Provider:   alphavantage.ProviderName,
		Operation:  "dividends",
		Symbol:     symbol,
		Status:     fetchlog.StatusOK,
		StartedTS:  started,
		DurationMS: time.Since(started).Milliseconds(),
	}

	switch {
	case fetchErr == nil && rows == 0:
		entry.Status = fetchlog.StatusEmpty
	case fetchErr == nil:
	case errors.Is(fetchErr, stock.ErrRateLimited):
		entry.Status = fetchlog.StatusRateLimited
	case errors.Is(fetchErr, stock.ErrSymbolUnknown):
		entry.Status = fetchlog.StatusEmpty
	default:
		entry.Status = fetchlog.StatusError
		msg := fetchErr.Error()
		entry.ErrMessage = &msg
	}

	if err := s.logRepo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Msg("write fetch log failed")
	}
}

// trailingAnnual sums dividends with an ex-date in the trailing 12 months
func trailingAnnual(history []dividend.Dividend, now time.Time) float64 {
	cutoff := now.AddDate(-1, 0, 0)
	total := 0.0
	for _, d := range history {
		if d.ExDate.After(cutoff) && !d.ExDate.After(now) {
			total += d.Amount.InexactFloat64()
		}
	}
	return total
}

// annualTotals sums dividends per calendar year, oldest first
func annualTotals(history []dividend.Dividend) []analytics.AnnualDividend {
	byYear := make(map[int]float64)
	for _, d := range history {
		byYear[d.ExDate.Year()] += d.Amount.InexactFloat64()
	}

	annuals := make([]analytics.AnnualDividend, 0, len(byYear))
	for year, total := range byYear {
		annuals = append(annuals, analytics.AnnualDividend{Year: year, Total: total})
	}
	analytics.SortAnnual(annuals)
	return annuals
}

// completeYears drops the current calendar year, which is usually partial
// and would read as a dividend cut. Falls back to the full series when the
// current year is all there is.
func completeYears(annuals []analytics.AnnualDividend, currentYear int) []analytics.AnnualDividend {
	if len(annuals) > 0 && annuals[len(annuals)-1].Year == currentYear {
		if trimmed := annuals[:len(annuals)-1]; len(trimmed) > 0 {
			return trimmed
		}
	}
	return annuals
}

// bestGrowth picks the longest available growth horizon
func bestGrowth(a *dividend.Analysis) *float64 {
	switch {
	case a.Growth5Y != nil:
		return a.Growth5Y
	case a.Growth3Y != nil:
		return a.Growth3Y
	default:
		return a.Growth1Y
	}
}
