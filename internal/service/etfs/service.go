// Package etfs manages tracked exchange-traded funds: registration with an
// upstream profile lookup and price refresh through the quote pipeline.
package etfs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/domain/etf"
	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
)

// ProfileProvider fetches an ETF profile from an upstream source
type ProfileProvider interface {
	GetETFProfile(ctx context.Context, symbol string) (*etf.ETF, error)
}

// QuoteSource resolves a current price for a fund
type QuoteSource interface {
	Get(ctx context.Context, symbol string) (*stock.Quote, error)
}

// Config holds ETF service settings
type Config struct {
	ProfileTTL   time.Duration // profiles older than this refresh on read
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		ProfileTTL:   24 * time.Hour,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// Service manages tracked ETFs
type Service struct {
	config Config

	repo    etf.Repository
	logRepo fetchlog.Repository

	provider ProfileProvider
	quotes   QuoteSource

	logger zerolog.Logger
}

// NewService creates an ETF service
func NewService(
	config Config,
	repo etf.Repository,
	logRepo fetchlog.Repository,
	provider ProfileProvider,
	quotes QuoteSource,
	logger zerolog.Logger,
) *Service {
	return &Service{
		config:   config,
		repo:     repo,
		logRepo:  logRepo,
		provider: provider,
		quotes:   quotes,
		logger:   logger.With().Str("service", "etfs").Logger(),
	}
}

// List returns all tracked ETFs
func (s *Service) List(ctx context.Context) ([]etf.ETF, error) {
	return s.repo.List(ctx)
}

// Get returns one tracked ETF with a current price attached. A stale
// profile is refreshed from upstream; failures serve the stored row.
func (s *Service) Get(ctx context.Context, symbol string) (*etf.ETF, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	stored, err := s.repo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if time.Since(stored.UpdatedTS) > s.config.ProfileTTL {
		if fresh, fetchErr := s.fetchProfile(ctx, symbol); fetchErr == nil {
			fresh.Name = pickName(fresh.Name, stored.Name)
			if err := s.repo.Update(ctx, fresh); err != nil {
				s.logger.Error().Str("symbol", symbol).Err(err).Msg("persist profile failed")
			} else {
				stored, err = s.repo.GetBySymbol(ctx, symbol)
				if err != nil {
					return nil, err
				}
			}
		} else {
			s.logger.Warn().Str("symbol", symbol).Err(fetchErr).
				Msg("profile refresh failed, serving stored row")
		}
	}

	s.attachPrice(ctx, stored)
	return stored, nil
}

// Track registers a new ETF from its upstream profile
func (s *Service) Track(ctx context.Context, symbol, name string) (*etf.ETF, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, symbol)
	if errors.Is(err, stock.ErrSymbolUnknown) && !strings.Contains(symbol, ".") {
		profile, err = s.fetchProfile(ctx, symbol+".TO")
	}
	if err != nil {
		return nil, err
	}

	profile.Name = pickName(name, profile.Name)
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.attachPrice(ctx, profile)
	s.logger.Info().Str("symbol", profile.Symbol).Msg("etf tracked")
	return profile, nil
}

// Untrack removes an ETF
func (s *Service) Untrack(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, symbol); err != nil {
		return err
	}
	s.logger.Info().Str("symbol", symbol).Msg("etf untracked")
	return nil
}

// attachPrice decorates a fund with the latest quote; a miss leaves the
// price fields empty rather than failing the read
func (s *Service) attachPrice(ctx context.Context, e *etf.ETF) {
	quote, err := s.quotes.Get(ctx, e.Symbol)
	if err != nil {
		s.logger.Debug().Str("symbol", e.Symbol).Err(err).Msg("no price for etf")
		return
	}
	e.Price = &quote.Price
	e.PriceTS = &quote.FetchedTS
}

// fetchProfile calls the provider with bounded backoff on rate limiting
func (s *Service) fetchProfile(ctx context.Context, symbol string) (*etf.ETF, error) {
	backoff := s.config.RetryBackoff
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		started := time.Now()
		var profile *etf.ETF
		profile, err = s.provider.GetETFProfile(ctx, symbol)
		s.recordFetch(ctx, symbol, started, err)
		if err == nil {
			return profile, nil
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
		Operation:  "etf_profile",
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

// pickName prefers the first non-empty name
func pickName(names ...string) string {
	for _, n := range names {
		if n != "" {
			return n
		}
	}
	return ""
}
