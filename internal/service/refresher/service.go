// Package refresher runs the periodic background refresh loops: quotes,
// dividend analyses, and commodity/index values. Each loop refreshes once
// after a jittered start and then on its own ticker.
package refresher

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/domain/dividend"
)

// QuoteRefresher refreshes all tracked stock quotes
type QuoteRefresher interface {
	RefreshAll(ctx context.Context) (refreshed, failed int, err error)
}

// AnalysisRefresher recomputes dividend analyses
type AnalysisRefresher interface {
	Analyze(ctx context.Context, symbol string) (*dividend.Analysis, error)
}

// MarketRefresher refreshes all tracked commodities and indexes
type MarketRefresher interface {
	RefreshAll(ctx context.Context) (refreshed, failed int, err error)
}

// SymbolSource lists the symbols whose analyses get refreshed
type SymbolSource interface {
	GetSymbols(ctx context.Context) ([]string, error)
}

// Config holds the loop intervals
type Config struct {
	QuoteInterval    time.Duration
	DividendInterval time.Duration
	MarketInterval   time.Duration
	SymbolDelay      time.Duration // pause between per-symbol analysis refreshes
	StartJitter      time.Duration // upper bound on each loop's random start delay
}

// DefaultConfig returns production defaults matching the cache TTLs
func DefaultConfig() Config {
	return Config{
		QuoteInterval:    15 * time.Minute,
		DividendInterval: 30 * time.Minute,
		MarketInterval:   15 * time.Minute,
		SymbolDelay:      500 * time.Millisecond,
		StartJitter:      30 * time.Second,
	}
}

// Service owns the background refresh goroutines
type Service struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	config Config

	quotes   QuoteRefresher
	analyses AnalysisRefresher
	markets  MarketRefresher
	symbols  SymbolSource

	logger zerolog.Logger

	running bool
	mu      sync.Mutex
}

// NewService creates a refresher service
func NewService(
	ctx context.Context,
	config Config,
	quotes QuoteRefresher,
	analyses AnalysisRefresher,
	markets MarketRefresher,
	symbols SymbolSource,
	logger zerolog.Logger,
) *Service {
	ctx, cancel := context.WithCancel(ctx)
	return &Service{
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
		quotes:   quotes,
		analyses: analyses,
		markets:  markets,
		symbols:  symbols,
		logger:   logger.With().Str("service", "refresher").Logger(),
	}
}

// Start launches the refresh loops
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("refresher already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().Msg("starting refresher")

	s.wg.Add(3)
	go s.runLoop("quotes", s.config.QuoteInterval, s.refreshQuotes)
	go s.runLoop("analyses", s.config.DividendInterval, s.refreshAnalyses)
	go s.runLoop("market", s.config.MarketInterval, s.refreshMarket)

	return nil
}

// Stop cancels the loops and waits for them to exit
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info().Msg("stopping refresher")
	s.cancel()
	s.wg.Wait()
	s.logger.Info().Msg("refresher stopped")

	return nil
}

// runLoop refreshes once after a random start delay, then on every tick.
// The jitter keeps the three loops from hitting the providers at once.
func (s *Service) runLoop(name string, interval time.Duration, refresh func(context.Context) error) {
	defer s.wg.Done()

	logger := s.logger.With().Str("loop", name).Logger()
	logger.Info().Dur("interval", interval).Msg("loop started")

	if s.config.StartJitter > 0 {
		delay := time.Duration(rand.Int63n(int64(s.config.StartJitter)))
		t := time.NewTimer(delay)
		select {
		case <-s.ctx.Done():
			t.Stop()
			logger.Info().Msg("loop stopped")
			return
		case <-t.C:
		}
	}

	if err := refresh(s.ctx); err != nil {
		logger.Error().Err(err).Msg("initial refresh failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := refresh(s.ctx); err != nil {
				logger.Error().Err(err).Msg("refresh failed")
			}
		case <-s.ctx.Done():
			logger.Info().Msg("loop stopped")
			return
		}
	}
}

func (s *Service) refreshQuotes(ctx context.Context) error {
	_, _, err := s.quotes.RefreshAll(ctx)
	return err
}

func (s *Service) refreshMarket(ctx context.Context) error {
	_, _, err := s.markets.RefreshAll(ctx)
	return err
}

// refreshAnalyses walks every tracked symbol sequentially. The analysis
// service itself decides whether a recompute is due.
func (s *Service) refreshAnalyses(ctx context.Context) error {
	symbols, err := s.symbols.GetSymbols(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for i, symbol := range symbols {
		if i > 0 && s.config.SymbolDelay > 0 {
			t := time.NewTimer(s.config.SymbolDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		if _, err := s.analyses.Analyze(ctx, symbol); err != nil {
			failed++
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("analysis refresh failed")
		}
	}

	s.logger.Info().
		Int("symbols", len(symbols)).
		Int("failed", failed).
		Msg("analysis refresh complete")
	return nil
}
