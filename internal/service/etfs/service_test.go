package etfs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/etf"
	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
)

type fakeETFRepo struct {
	stored map[string]*etf.ETF
}

func newFakeETFRepo() *fakeETFRepo {
	return &fakeETFRepo{stored: make(map[string]*etf.ETF)}
}

func (f *fakeETFRepo) List(_ context.Context) ([]etf.ETF, error) {
	out := make([]etf.ETF, 0, len(f.stored))
	for _, e := range f.stored {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeETFRepo) GetBySymbol(_ context.Context, symbol string) (*etf.ETF, error) {
	if e, ok := f.stored[symbol]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, etf.ErrETFNotFound
}

func (f *fakeETFRepo) Create(_ context.Context, e *etf.ETF) error {
	if _, ok := f.stored[e.Symbol]; ok {
		return etf.ErrETFExists
	}
	e.CreatedTS = time.Now()
	e.UpdatedTS = time.Now()
	cp := *e
	f.stored[e.Symbol] = &cp
	return nil
}

func (f *fakeETFRepo) Update(_ context.Context, e *etf.ETF) error {
	if _, ok := f.stored[e.Symbol]; !ok {
		return etf.ErrETFNotFound
	}
	e.UpdatedTS = time.Now()
	cp := *e
	f.stored[e.Symbol] = &cp
	return nil
}

func (f *fakeETFRepo) Delete(_ context.Context, symbol string) error {
	if _, ok := f.stored[symbol]; !ok {
		return etf.ErrETFNotFound
	}
	delete(f.stored, symbol)
	return nil
}

type fakeProfileProvider struct {
	profiles map[string]*etf.ETF
	calls    int
}

func (f *fakeProfileProvider) GetETFProfile(_ context.Context, symbol string) (*etf.ETF, error) {
	f.calls++
	if p, ok := f.profiles[symbol]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, stock.ErrSymbolUnknown
}

type fakeQuoteSource struct {
	quotes map[string]*stock.Quote
}

func (f *fakeQuoteSource) Get(_ context.Context, symbol string) (*stock.Quote, error) {
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, stock.ErrQuoteNotFound
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
	service  *Service
	repo     *fakeETFRepo
	provider *fakeProfileProvider
	quotes   *fakeQuoteSource
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newFakeETFRepo(),
		provider: &fakeProfileProvider{profiles: make(map[string]*etf.ETF)},
		quotes:   &fakeQuoteSource{quotes: make(map[string]*stock.Quote)},
	}
	config := Config{ProfileTTL: 24 * time.Hour, MaxRetries: 3, RetryBackoff: time.Millisecond}
	f.service = NewService(config, f.repo, &fakeLogRepo{}, f.provider, f.quotes, zerolog.Nop())
	return f
}

func profile(symbol string) *etf.ETF {
	ratio := 0.0003
	assets := int64(500_000_000_000)
	return &etf.ETF{
		Symbol:       symbol,
		ExpenseRatio: &ratio,
		NetAssets:    &assets,
		TopHoldings: []etf.Holding{
			{Symbol: "AAPL", Name: "Apple Inc", Weight: 0.07},
		},
	}
}

func TestTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("registers from profile with caller name", func(t *testing.T) {
		f := newFixture()
		f.provider.profiles["SCHD"] = profile("SCHD")
		f.quotes.quotes["SCHD"] = &stock.Quote{
			Symbol: "SCHD", Price: decimal.NewFromFloat(28.4), FetchedTS: time.Now(),
		}

		tracked, err := f.service.Track(ctx, "schd", "Schwab US Dividend Equity ETF")
		require.NoError(t, err)
		require.Equal(t, "SCHD", tracked.Symbol)
		require.Equal(t, "Schwab US Dividend Equity ETF", tracked.Name)
		require.NotNil(t, tracked.Price)
		require.Equal(t, "28.4", tracked.Price.String())
		require.Len(t, tracked.TopHoldings, 1)
	})

	t.Run("unknown symbol retried with Toronto suffix", func(t *testing.T) {
		f := newFixture()
		f.provider.profiles["XEI.TO"] = profile("XEI.TO")

		tracked, err := f.service.Track(ctx, "XEI", "iShares Core Dividend")
		require.NoError(t, err)
		require.Equal(t, "XEI.TO", tracked.Symbol)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		f := newFixture()
		f.provider.profiles["SCHD"] = profile("SCHD")

		_, err := f.service.Track(ctx, "SCHD", "")
		require.NoError(t, err)
		_, err = f.service.Track(ctx, "SCHD", "")
		require.ErrorIs(t, err, etf.ErrETFExists)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh profile served with price attached", func(t *testing.T) {
		f := newFixture()
		p := profile("SCHD")
		p.Name = "Schwab US Dividend Equity ETF"
		p.UpdatedTS = time.Now()
		f.repo.stored["SCHD"] = p
		f.quotes.quotes["SCHD"] = &stock.Quote{
			Symbol: "SCHD", Price: decimal.NewFromFloat(28.4), FetchedTS: time.Now(),
		}

		got, err := f.service.Get(ctx, "SCHD")
		require.NoError(t, err)
		require.Zero(t, f.provider.calls)
		require.NotNil(t, got.Price)
	})

	t.Run("missing quote leaves price empty", func(t *testing.T) {
		f := newFixture()
		p := profile("SCHD")
		p.UpdatedTS = time.Now()
		f.repo.stored["SCHD"] = p

		got, err := f.service.Get(ctx, "SCHD")
		require.NoError(t, err)
		require.Nil(t, got.Price)
	})

	t.Run("stale profile refreshed keeping the stored name", func(t *testing.T) {
		f := newFixture()
		p := profile("SCHD")
		p.Name = "Schwab US Dividend Equity ETF"
		p.UpdatedTS = time.Now().Add(-48 * time.Hour)
		f.repo.stored["SCHD"] = p

		fresh := profile("SCHD")
		newRatio := 0.0006
		fresh.ExpenseRatio = &newRatio
		f.provider.profiles["SCHD"] = fresh

		got, err := f.service.Get(ctx, "SCHD")
		require.NoError(t, err)
		require.Equal(t, 1, f.provider.calls)
		require.Equal(t, "Schwab US Dividend Equity ETF", got.Name)
		require.InDelta(t, 0.0006, *got.ExpenseRatio, 1e-12)
	})

	t.Run("unknown etf", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Get(ctx, "NOPE")
		require.ErrorIs(t, err, etf.ErrETFNotFound)
	})
}

func TestUntrack(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	p := profile("SCHD")
	p.UpdatedTS = time.Now()
	f.repo.stored["SCHD"] = p

	require.NoError(t, f.service.Untrack(ctx, "SCHD"))
	require.ErrorIs(t, f.service.Untrack(ctx, "SCHD"), etf.ErrETFNotFound)
}
