// Package performance compares a stock's price behavior against a benchmark
// over a trailing window of daily closes.
package performance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/analytics"
	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
	"github.com/tnammu/dividash/internal/infra/yahoo"
)

// ClosesProvider fetches a daily close series from an upstream source
type ClosesProvider interface {
	GetDailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
}

// Config holds performance service settings
type Config struct {
	DefaultDays  int
	MaxDays      int
	RiskFreeRate float64 // annual, fraction
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultConfig returns production defaults. The risk-free rate tracks the
// short treasury yield and only feeds alpha and Sharpe.
func DefaultConfig() Config {
	return Config{
		DefaultDays:  252,
		MaxDays:      1260,
		RiskFreeRate: 0.04,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// Comparison holds the risk and return metrics of a symbol measured
// against a benchmark over the same window.
type Comparison struct {
	Symbol    string `json:"symbol"`
	Benchmark string `json:"benchmark"`
	Days      int    `json:"days"` // observations actually used

	CumulativeReturn  float64 `json:"cumulative_return"`
	AnnualizedReturn  float64 `json:"annualized_return"`
	BenchmarkReturn   float64 `json:"benchmark_return"`
	BenchmarkAnnual   float64 `json:"benchmark_annualized"`
	Beta              float64 `json:"beta"`
	Alpha             float64 `json:"alpha"`
	Correlation       float64 `json:"correlation"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
	BenchmarkDrawdown float64 `json:"benchmark_drawdown"`
	BenchmarkSharpe   float64 `json:"benchmark_sharpe"`
}

// Service fetches close series and derives comparison metrics
type Service struct {
	config Config

	logRepo fetchlog.Repository

	primary   ClosesProvider
	secondary ClosesProvider

	logger zerolog.Logger
}

// NewService creates a performance service
func NewService(
	config Config,
	logRepo fetchlog.Repository,
	primary ClosesProvider,
	secondary ClosesProvider,
	logger zerolog.Logger,
) *Service {
	return &Service{
		config:    config,
		logRepo:   logRepo,
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("service", "performance").Logger(),
	}
}

// Compare measures a symbol against a benchmark over a trailing window of
// daily closes. The two series are truncated to equal length from the
// newest end before any metric is computed.
func (s *Service) Compare(ctx context.Context, symbol, benchmark string, days int) (*Comparison, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	benchmark = strings.ToUpper(strings.TrimSpace(benchmark))
	if benchmark == "" {
		benchmark = "SPY"
	} else if err := stock.ValidateSymbol(benchmark); err != nil {
		return nil, err
	}

	if days <= 0 {
		days = s.config.DefaultDays
	}
	if days > s.config.MaxDays {
		days = s.config.MaxDays
	}

	assetCloses, err := s.fetchCloses(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	benchCloses, err := s.fetchCloses(ctx, benchmark, days)
	if err != nil {
		return nil, err
	}

	// Align from the newest end; providers may return unequal history depth
	n := len(assetCloses)
	if len(benchCloses) < n {
		n = len(benchCloses)
	}
	assetCloses = assetCloses[len(assetCloses)-n:]
	benchCloses = benchCloses[len(benchCloses)-n:]

	assetReturns, err := analytics.DailyReturns(assetCloses)
	if err != nil {
		return nil, err
	}
	benchReturns, err := analytics.DailyReturns(benchCloses)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Symbol:    symbol,
		Benchmark: benchmark,
		Days:      n,
	}

	if cmp.CumulativeReturn, err = analytics.CumulativeReturn(assetCloses); err != nil {
		return nil, err
	}
	if cmp.BenchmarkReturn, err = analytics.CumulativeReturn(benchCloses); err != nil {
		return nil, err
	}
	cmp.AnnualizedReturn = analytics.AnnualizedReturn(cmp.CumulativeReturn, n)
	cmp.BenchmarkAnnual = analytics.AnnualizedReturn(cmp.BenchmarkReturn, n)

	if cmp.Beta, err = analytics.Beta(assetReturns, benchReturns); err != nil {
		return nil, err
	}
	cmp.Alpha = analytics.Alpha(cmp.AnnualizedReturn, cmp.BenchmarkAnnual, cmp.Beta, s.config.RiskFreeRate)

	if cmp.Correlation, err = analytics.Correlation(assetReturns, benchReturns); err != nil {
		return nil, err
	}
	if cmp.MaxDrawdown, err = analytics.MaxDrawdown(assetCloses); err != nil {
		return nil, err
	}
	if cmp.BenchmarkDrawdown, err = analytics.MaxDrawdown(benchCloses); err != nil {
		return nil, err
	}
	if cmp.SharpeRatio, err = analytics.SharpeRatio(assetReturns, s.config.RiskFreeRate); err != nil {
		return nil, err
	}
	if cmp.BenchmarkSharpe, err = analytics.SharpeRatio(benchReturns, s.config.RiskFreeRate); err != nil {
		return nil, err
	}

	return cmp, nil
}

// fetchCloses walks the provider chain for a close series
func (s *Service) fetchCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	closes, primaryErr := s.fetchPrimary(ctx, symbol, days)
	if primaryErr == nil {
		return closes, nil
	}

	started := time.Now()
	closes, secondaryErr := s.secondary.GetDailyCloses(ctx, symbol, days)
	s.recordFetch(ctx, yahoo.ProviderName, symbol, started, secondaryErr)
	if secondaryErr == nil {
		return closes, nil
	}

	if errors.Is(primaryErr, stock.ErrSymbolUnknown) && errors.Is(secondaryErr, stock.ErrSymbolUnknown) {
		return nil, stock.ErrSymbolUnknown
	}
	return nil, secondaryErr
}

func (s *Service) fetchPrimary(ctx context.Context, symbol string, days int) ([]float64, error) {
	backoff := s.config.RetryBackoff
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		started := time.Now()
		var closes []float64
		closes, err = s.primary.GetDailyCloses(ctx, symbol, days)
		s.recordFetch(ctx, alphavantage.ProviderName, symbol, started, err)
		if err == nil {
			return closes, nil
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

func (s *Service) recordFetch(ctx context.Context, provider, symbol string, started time.Time, fetchErr error) {
	entry := &fetchlog.Entry{
		Provider:   provider,
		Operation:  "daily_closes",
		Symbol:     symbol,
		Status:     fetchlog.StatusOK,
		StartedTS:  started,
		DurationMS: time.Since(started).Milliseconds(),
	}

	switch {
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
