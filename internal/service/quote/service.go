// Package quote implements the quote lookup pipeline: memory cache, then a
// fresh database row, then the primary provider with retry, then the
// secondary provider, with the Toronto suffix retry for unknown symbols.
package quote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
	"github.com/tnammu/dividash/internal/infra/yahoo"
)

// Provider fetches a live quote from an upstream source
type Provider interface {
	GetQuote(ctx context.Context, symbol string) (*stock.Quote, error)
}

// Config holds quote service settings
type Config struct {
	TTL          time.Duration // freshness window for cached quotes
	RequestDelay time.Duration // pause between sequential upstream calls
	MaxRetries   int           // attempts against the primary on rate limiting
	RetryBackoff time.Duration // initial backoff, doubled per attempt
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		TTL:          15 * time.Minute,
		RequestDelay: 500 * time.Millisecond,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// Service resolves quotes through the cache/database/provider chain
type Service struct {
	config Config
	cache  *Cache

	quoteRepo stock.QuoteRepository
	stockRepo stock.Repository
	logRepo   fetchlog.Repository

	primary   Provider
	secondary Provider

	logger zerolog.Logger
}

// NewService creates a quote service
func NewService(
	config Config,
	quoteRepo stock.QuoteRepository,
	stockRepo stock.Repository,
	logRepo fetchlog.Repository,
	primary Provider,
	secondary Provider,
	logger zerolog.Logger,
) *Service {
	return &Service{
		config:    config,
		cache:     NewCache(config.TTL),
		quoteRepo: quoteRepo,
		stockRepo: stockRepo,
		logRepo:   logRepo,
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("service", "quote").Logger(),
	}
}

// Get returns a quote for a symbol, fetching from upstream only when no
// fresh copy exists. On total upstream failure a stale stored quote is
// returned rather than an error.
func (s *Service) Get(ctx context.Context, symbol string) (*stock.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	if cached := s.cache.Get(symbol); cached != nil {
		return cached, nil
	}

	if fresh, err := s.quoteRepo.GetFresh(ctx, symbol, s.config.TTL); err == nil {
		s.cache.Set(fresh)
		return fresh, nil
	} else if !errors.Is(err, stock.ErrQuoteNotFound) {
		return nil, err
	}

	quote, err := s.fetchRemote(ctx, symbol)
	if err != nil {
		// Degrade to whatever we last held, memory first
		if stale := s.cache.GetStale(symbol); stale != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).
				Msg("upstream fetch failed, serving stale cached quote")
			return stale, nil
		}
		if stale, staleErr := s.quoteRepo.Get(ctx, symbol); staleErr == nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).
				Msg("upstream fetch failed, serving stale stored quote")
			return stale, nil
		}
		return nil, err
	}

	if err := s.quoteRepo.Upsert(ctx, quote); err != nil {
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("persist quote failed")
	}
	s.cache.Set(quote)

	return quote, nil
}

// GetMany resolves quotes for multiple symbols sequentially, pausing
// between upstream calls to stay under provider rate limits. Symbols that
// cannot be resolved are skipped.
func (s *Service) GetMany(ctx context.Context, symbols []string) ([]stock.Quote, error) {
	quotes := make([]stock.Quote, 0, len(symbols))

	for i, symbol := range symbols {
		if i > 0 {
			if err := sleepCtx(ctx, s.config.RequestDelay); err != nil {
				return quotes, err
			}
		}

		quote, err := s.Get(ctx, symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("skip symbol")
			continue
		}
		quotes = append(quotes, *quote)
	}

	return quotes, nil
}

// RefreshAll re-fetches quotes for every tracked stock. Returns the number
// of symbols refreshed and the number that failed.
func (s *Service) RefreshAll(ctx context.Context) (refreshed, failed int, err error) {
	symbols, err := s.stockRepo.GetSymbols(ctx)
	if err != nil {
		return 0, 0, err
	}

	// Repopulate from scratch so departed symbols do not linger
	s.cache.Clear()

	start := time.Now()
	for i, symbol := range symbols {
		if i > 0 {
			if err := sleepCtx(ctx, s.config.RequestDelay); err != nil {
				return refreshed, failed, err
			}
		}

		quote, fetchErr := s.fetchRemote(ctx, symbol)
		if fetchErr != nil {
			failed++
			s.logger.Warn().Str("symbol", symbol).Err(fetchErr).Msg("refresh failed")
			continue
		}

		if err := s.quoteRepo.Upsert(ctx, quote); err != nil {
			failed++
			s.logger.Error().Str("symbol", symbol).Err(err).Msg("persist quote failed")
			continue
		}
		s.cache.Set(quote)
		refreshed++
	}

	s.logger.Info().
		Int("refreshed", refreshed).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("quote refresh complete")

	return refreshed, failed, nil
}

// Forget drops a symbol's quote from the memory cache. Called when the
// stock stops being tracked so its quote does not outlive it.
func (s *Service) Forget(symbol string) {
	s.cache.Remove(strings.ToUpper(strings.TrimSpace(symbol)))
}

// CacheStats exposes cache metrics for the admin surface
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// fetchRemote walks the provider chain for one symbol. When both providers
// report the symbol as unknown and it carries no exchange suffix, the
// lookup is retried once with .TO for Toronto listings.
func (s *Service) fetchRemote(ctx context.Context, symbol string) (*stock.Quote, error) {
	quote, err := s.fetchWithFallback(ctx, symbol)
	if err == nil {
		return quote, nil
	}

	if errors.Is(err, stock.ErrSymbolUnknown) && !strings.Contains(symbol, ".") {
		quote, toErr := s.fetchWithFallback(ctx, symbol+".TO")
		if toErr == nil {
			return quote, nil
		}
		// Report the original symbol's failure, not the suffixed one
	}

	return nil, err
}

// fetchWithFallback tries the primary provider with bounded backoff on
// rate limiting, then falls back to the secondary.
func (s *Service) fetchWithFallback(ctx context.Context, symbol string) (*stock.Quote, error) {
	quote, primaryErr := s.fetchPrimary(ctx, symbol)
	if primaryErr == nil {
		return quote, nil
	}

	quote, secondaryErr := s.fetchOnce(ctx, s.secondary, yahoo.ProviderName, symbol)
	if secondaryErr == nil {
		return quote, nil
	}

	// Unknown only when both sources agree it is unknown
	if errors.Is(primaryErr, stock.ErrSymbolUnknown) && errors.Is(secondaryErr, stock.ErrSymbolUnknown) {
		return nil, stock.ErrSymbolUnknown
	}
	return nil, secondaryErr
}

// fetchPrimary calls the primary provider, retrying with exponential
// backoff while it reports rate limiting.
func (s *Service) fetchPrimary(ctx context.Context, symbol string) (*stock.Quote, error) {
	backoff := s.config.RetryBackoff
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var quote *stock.Quote
		quote, err = s.fetchOnce(ctx, s.primary, alphavantage.ProviderName, symbol)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, stock.ErrRateLimited) {
			return nil, err
		}
		if attempt == attempts {
			break
		}

		s.logger.Debug().
			Str("symbol", symbol).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("primary rate limited, backing off")
		if sleepErr := sleepCtx(ctx, backoff); sleepErr != nil {
			return nil, sleepErr
		}
		backoff *= 2
	}

	return nil, err
}

// fetchOnce performs a single provider call and records it in the fetch log
func (s *Service) fetchOnce(ctx context.Context, p Provider, provider, symbol string) (*stock.Quote, error) {
	started := time.Now()
	quote, err := p.GetQuote(ctx, symbol)
	s.recordFetch(ctx, provider, "quote", symbol, started, err)
	return quote, err
}

func (s *Service) recordFetch(ctx context.Context, provider, operation, symbol string, started time.Time, fetchErr error) {
	entry := &fetchlog.Entry{
		Provider:   provider,
		Operation:  operation,
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

// sleepCtx waits for d unless the context is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
