package refresher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/dividend"
)

type countingRefresher struct {
	calls atomic.Int64
}

func (c *countingRefresher) RefreshAll(_ context.Context) (int, int, error) {
	c.calls.Add(1)
	return 1, 0, nil
}

type countingAnalyzer struct {
	symbols []string
}

func (c *countingAnalyzer) Analyze(_ context.Context, symbol string) (*dividend.Analysis, error) {
	c.symbols = append(c.symbols, symbol)
	return &dividend.Analysis{Symbol: symbol, ComputedTS: time.Now()}, nil
}

type fakeSymbols struct {
	symbols []string
}

func (f *fakeSymbols) GetSymbols(_ context.Context) ([]string, error) {
	return f.symbols, nil
}

func TestStartStop(t *testing.T) {
	quotes := &countingRefresher{}
	markets := &countingRefresher{}
	analyzer := &countingAnalyzer{}
	symbols := &fakeSymbols{symbols: []string{"KO", "PG"}}

	config := Config{
		QuoteInterval:    time.Hour,
		DividendInterval: time.Hour,
		MarketInterval:   time.Hour,
		SymbolDelay:      0,
	}
	s := NewService(context.Background(), config, quotes, analyzer, markets, symbols, zerolog.Nop())

	require.NoError(t, s.Start())
	require.Error(t, s.Start()) // double start rejected

	// Each loop refreshes once immediately on start
	require.Eventually(t, func() bool {
		return quotes.calls.Load() == 1 && markets.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop()) // idempotent

	require.ElementsMatch(t, []string{"KO", "PG"}, analyzer.symbols)
}

func TestJitteredStart(t *testing.T) {
	quotes := &countingRefresher{}
	markets := &countingRefresher{}
	symbols := &fakeSymbols{}

	config := Config{
		QuoteInterval:    time.Hour,
		DividendInterval: time.Hour,
		MarketInterval:   time.Hour,
		StartJitter:      20 * time.Millisecond,
	}
	s := NewService(context.Background(), config, quotes, &countingAnalyzer{}, markets, symbols, zerolog.Nop())

	require.NoError(t, s.Start())
	require.Eventually(t, func() bool {
		return quotes.calls.Load() == 1 && markets.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// Stopping mid-delay must not hang
	require.NoError(t, s.Stop())
}

func TestTickerFires(t *testing.T) {
	quotes := &countingRefresher{}
	markets := &countingRefresher{}
	symbols := &fakeSymbols{}

	config := Config{
		QuoteInterval:    5 * time.Millisecond,
		DividendInterval: time.Hour,
		MarketInterval:   time.Hour,
	}
	s := NewService(context.Background(), config, quotes, &countingAnalyzer{}, markets, symbols, zerolog.Nop())

	require.NoError(t, s.Start())
	require.Eventually(t, func() bool {
		return quotes.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
}
