// Package stocks manages the tracked stock universe: registration with an
// upstream fundamentals lookup, listing, and removal.
package stocks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
)

// OverviewProvider fetches company fundamentals from an upstream source
type OverviewProvider interface {
	GetOverview(ctx context.Context, symbol string) (*stock.Stock, error)
}

// QuoteInvalidator drops any cached quote for a symbol. Satisfied by the
// quote service; may be nil when no quote cache is in play.
type QuoteInvalidator interface {
	Forget(symbol string)
}

// Config holds stock service settings
type Config struct {
	OverviewTTL  time.Duration // fundamentals older than this refresh on read
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultConfig returns production defaults. Fundamentals move slowly, so
// the overview window is much longer than the quote TTL.
func DefaultConfig() Config {
	return Config{
		OverviewTTL:  24 * time.Hour,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// Service manages tracked stocks
type Service struct {
	config Config

	repo    stock.Repository
	logRepo fetchlog.Repository

	provider OverviewProvider
	quotes   QuoteInvalidator

	logger zerolog.Logger
}

// NewService creates a stock service
func NewService(
	config Config,
	repo stock.Repository,
	logRepo fetchlog.Repository,
	provider OverviewProvider,
	quotes QuoteInvalidator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		config:   config,
		repo:     repo,
		logRepo:  logRepo,
		provider: provider,
		quotes:   quotes,
		logger:   logger.With().Str("service", "stocks").Logger(),
	}
}

// List returns tracked stocks matching the filter
func (s *Service) List(ctx context.Context, filter stock.ListFilter) (*stock.ListResult, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// Get returns one tracked stock, refreshing its fundamentals when they
// have aged past the overview TTL. A failed refresh serves the stored row.
func (s *Service) Get(ctx context.Context, symbol string) (*stock.Stock, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	stored, err := s.repo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if stored.OverviewTS != nil && time.Since(*stored.OverviewTS) <= s.config.OverviewTTL {
		return stored, nil
	}

	fresh, fetchErr := s.fetchOverview(ctx, symbol)
	if fetchErr != nil {
		s.logger.Warn().Str("symbol", symbol).Err(fetchErr).
			Msg("overview refresh failed, serving stored row")
		return stored, nil
	}

	now := time.Now()
	fresh.OverviewTS = &now
	if err := s.repo.UpdateOverview(ctx, fresh); err != nil {
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("persist overview failed")
		return stored, nil
	}

	return s.repo.GetBySymbol(ctx, symbol)
}

// Refresh forces an overview fetch regardless of age and persists it
func (s *Service) Refresh(ctx context.Context, symbol string) (*stock.Stock, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetBySymbol(ctx, symbol); err != nil {
		return nil, err
	}

	fresh, err := s.fetchOverview(ctx, symbol)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fresh.OverviewTS = &now
	if err := s.repo.UpdateOverview(ctx, fresh); err != nil {
		return nil, err
	}

	return s.repo.GetBySymbol(ctx, symbol)
}

// Track registers a new stock. Fundamentals come from the provider; an
// unknown plain symbol is retried once with the Toronto suffix.
func (s *Service) Track(ctx context.Context, symbol string) (*stock.Stock, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	overview, err := s.fetchOverview(ctx, symbol)
	if errors.Is(err, stock.ErrSymbolUnknown) && !strings.Contains(symbol, ".") {
		overview, err = s.fetchOverview(ctx, symbol+".TO")
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	overview.OverviewTS = &now
	if err := s.repo.Create(ctx, overview); err != nil {
		return nil, err
	}

	s.logger.Info().Str("symbol", overview.Symbol).Msg("stock tracked")
	return overview, nil
}

// Untrack removes a stock; quotes, dividends and analyses cascade
func (s *Service) Untrack(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, symbol); err != nil {
		return err
	}
	if s.quotes != nil {
		s.quotes.Forget(symbol)
	}
	s.logger.Info().Str("symbol", symbol).Msg("stock untracked")
	return nil
}

// fetchOverview calls the provider with bounded backoff on rate limiting
func (s *Service) fetchOverview(ctx context.Context, symbol string) (*stock.Stock, error) {
	backoff := s.config.RetryBackoff
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		started := time.Now()
		var overview *stock.Stock
		overview, err = s.provider.GetOverview(ctx, symbol)
		s.recordFetch(ctx, symbol, started, err)
		if err == nil {
			return overview, nil
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

func (s *Service) recordFetch(ctx context.Context, symbol string, started time.Time, fetchErr error) {
	entry := &fetchlog.Entry{
		Provider:   alphavantage.ProviderName,
		Operation:  "overview",
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
