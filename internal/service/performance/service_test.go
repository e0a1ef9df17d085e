package performance

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
)

type fakeClosesProvider struct {
	series map[string][]float64
	errs   map[string]error
	calls  map[string]int
}

func newFakeClosesProvider() *fakeClosesProvider {
	return &fakeClosesProvider{
		series: make(map[string][]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeClosesProvider) GetDailyCloses(_ context.Context, symbol string, days int) ([]float64, error) {
	f.calls[symbol]++
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	closes, ok := f.series[symbol]
	if !ok {
		return nil, stock.ErrSymbolUnknown
	}
	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	return closes, nil
}

type fakeLogRepo struct {
	entries []fetchlog.Entry
}

func (f *fakeLogRepo) Create(_ context.Context, e *fetchlog.Entry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeLogRepo) Recent(_ context.Context, limit int) ([]fetchlog.Entry, error) {
	return f.entries, nil
}

type fixture struct {
	service   *Service
	primary   *fakeClosesProvider
	secondary *fakeClosesProvider
	logRepo   *fakeLogRepo
}

func newFixture() *fixture {
	f := &fixture{
		primary:   newFakeClosesProvider(),
		secondary: newFakeClosesProvider(),
		logRepo:   &fakeLogRepo{},
	}
	config := Config{
		DefaultDays:  252,
		MaxDays:      1260,
		RiskFreeRate: 0.04,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}
	f.service = NewService(config, f.logRepo, f.primary, f.secondary, zerolog.Nop())
	return f
}

// trending builds a close series with a constant daily return
func trending(start, dailyReturn float64, days int) []float64 {
	closes := make([]float64, days)
	price := start
	for i := range closes {
		closes[i] = price
		price *= 1 + dailyReturn
	}
	return closes
}

func TestCompare(t *testing.T) {
	ctx := context.Background()

	t.Run("asset doubling every benchmark move has beta two", func(t *testing.T) {
		f := newFixture()
		bench := []float64{100, 101, 99.5, 102, 101, 103}
		asset := make([]float64, len(bench))
		asset[0] = 50
		for i := 1; i < len(bench); i++ {
			r := bench[i]/bench[i-1] - 1
			asset[i] = asset[i-1] * (1 + 2*r)
		}
		f.primary.series["GROW"] = asset
		f.primary.series["SPY"] = bench

		cmp, err := f.service.Compare(ctx, "GROW", "SPY", 30)
		require.NoError(t, err)
		require.Equal(t, len(bench), cmp.Days)
		require.InDelta(t, 2.0, cmp.Beta, 1e-9)
		require.InDelta(t, 1.0, cmp.Correlation, 1e-9)
		require.Greater(t, cmp.CumulativeReturn, cmp.BenchmarkReturn)
	})

	t.Run("series aligned from the newest end", func(t *testing.T) {
		f := newFixture()
		f.primary.series["KO"] = trending(60, 0.001, 40)
		f.primary.series["SPY"] = trending(400, 0.001, 25)

		cmp, err := f.service.Compare(ctx, "KO", "SPY", 252)
		require.NoError(t, err)
		require.Equal(t, 25, cmp.Days)
	})

	t.Run("flat asset volatility yields zero sharpe not an error", func(t *testing.T) {
		f := newFixture()
		// Exact doubling keeps every daily return at precisely 1.0
		f.primary.series["KO"] = []float64{1, 2, 4, 8, 16, 32}
		f.primary.series["SPY"] = []float64{400, 410, 395, 420, 408, 415}

		cmp, err := f.service.Compare(ctx, "KO", "SPY", 6)
		require.NoError(t, err)
		require.Zero(t, cmp.SharpeRatio)
		require.Greater(t, cmp.CumulativeReturn, 0.0)
	})

	t.Run("benchmark defaults to SPY", func(t *testing.T) {
		f := newFixture()
		f.primary.series["KO"] = trending(60, 0.001, 20)
		f.primary.series["SPY"] = trending(400, 0.0005, 20)

		cmp, err := f.service.Compare(ctx, "KO", "", 20)
		require.NoError(t, err)
		require.Equal(t, "SPY", cmp.Benchmark)
	})

	t.Run("falls back to secondary provider", func(t *testing.T) {
		f := newFixture()
		f.primary.errs["KO"] = stock.ErrRateLimited
		f.secondary.series["KO"] = trending(60, 0.001, 20)
		f.primary.series["SPY"] = trending(400, 0.0005, 20)

		cmp, err := f.service.Compare(ctx, "KO", "SPY", 20)
		require.NoError(t, err)
		require.Equal(t, 3, f.primary.calls["KO"])
		require.Equal(t, 1, f.secondary.calls["KO"])
		require.Greater(t, cmp.CumulativeReturn, 0.0)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		f := newFixture()
		f.primary.series["SPY"] = trending(400, 0.0005, 20)

		_, err := f.service.Compare(ctx, "NOPE", "SPY", 20)
		require.ErrorIs(t, err, stock.ErrSymbolUnknown)
	})

	t.Run("drawdown measured on asset closes", func(t *testing.T) {
		f := newFixture()
		f.primary.series["DIP"] = []float64{100, 120, 90, 95, 110}
		f.primary.series["SPY"] = []float64{400, 401, 402, 403, 404}

		cmp, err := f.service.Compare(ctx, "DIP", "SPY", 10)
		require.NoError(t, err)
		require.InDelta(t, 0.25, cmp.MaxDrawdown, 1e-9)
	})

	t.Run("records fetch log entries", func(t *testing.T) {
		f := newFixture()
		f.primary.series["KO"] = trending(60, 0.001, 20)
		f.primary.series["SPY"] = trending(400, 0.0005, 20)

		_, err := f.service.Compare(ctx, "KO", "SPY", 20)
		require.NoError(t, err)
		require.Len(t, f.logRepo.entries, 2)
		require.Equal(t, "daily_closes", f.logRepo.entries[0].Operation)
	})
}
