package stocks

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/stock"
)

type fakeStockRepo struct {
	stock.Repository
	stored map[string]*stock.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stored: make(map[string]*stock.Stock)}
}

func (f *fakeStockRepo) GetBySymbol(_ context.Context, symbol string) (*stock.Stock, error) {
	if s, ok := f.stored[symbol]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, stock.ErrStockNotFound
}

func (f *fakeStockRepo) Create(_ context.Context, s *stock.Stock) error {
	if _, ok := f.stored[s.Symbol]; ok {
		return stock.ErrStockExists
	}
	cp := *s
	f.stored[s.Symbol] = &cp
	return nil
}

func (f *fakeStockRepo) UpdateOverview(_ context.Context, s *stock.Stock) error {
	if _, ok := f.stored[s.Symbol]; !ok {
		return stock.ErrStockNotFound
	}
	cp := *s
	f.stored[s.Symbol] = &cp
	return nil
}

func (f *fakeStockRepo) Delete(_ context.Context, symbol string) error {
	if _, ok := f.stored[symbol]; !ok {
		return stock.ErrStockNotFound
	}
	delete(f.stored, symbol)
	return nil
}

type fakeOverviewProvider struct {
	overviews map[string]*stock.Stock
	errs      []error
	calls     int
}

func (f *fakeOverviewProvider) GetOverview(_ context.Context, symbol string) (*stock.Stock, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	if o, ok := f.overviews[symbol]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, stock.ErrSymbolUnknown
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

type fakeInvalidator struct {
	forgotten []string
}

func (f *fakeInvalidator) Forget(symbol string) {
	f.forgotten = append(f.forgotten, symbol)
}

type fixture struct {
	service     *Service
	repo        *fakeStockRepo
	provider    *fakeOverviewProvider
	logRepo     *fakeLogRepo
	invalidator *fakeInvalidator
}

func newFixture() *fixture {
	f := &fixture{
		repo:        newFakeStockRepo(),
		provider:    &fakeOverviewProvider{overviews: make(map[string]*stock.Stock)},
		logRepo:     &fakeLogRepo{},
		invalidator: &fakeInvalidator{},
	}
	config := Config{OverviewTTL: 24 * time.Hour, MaxRetries: 3, RetryBackoff: time.Millisecond}
	f.service = NewService(config, f.repo, f.logRepo, f.provider, f.invalidator, zerolog.Nop())
	return f
}

func overview(symbol string) *stock.Stock {
	eps := 2.47
	return &stock.Stock{
		Symbol:   symbol,
		Name:     symbol + " Inc",
		Currency: "USD",
		EPS:      &eps,
	}
}

func TestTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("registers with fundamentals", func(t *testing.T) {
		f := newFixture()
		f.provider.overviews["KO"] = overview("KO")

		tracked, err := f.service.Track(ctx, "ko")
		require.NoError(t, err)
		require.Equal(t, "KO", tracked.Symbol)
		require.NotNil(t, tracked.EPS)
		require.NotNil(t, tracked.OverviewTS)

		stored, err := f.repo.GetBySymbol(ctx, "KO")
		require.NoError(t, err)
		require.Equal(t, "KO Inc", stored.Name)
	})

	t.Run("unknown symbol retried with Toronto suffix", func(t *testing.T) {
		f := newFixture()
		f.provider.overviews["RY.TO"] = overview("RY.TO")

		tracked, err := f.service.Track(ctx, "RY")
		require.NoError(t, err)
		require.Equal(t, "RY.TO", tracked.Symbol)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		f := newFixture()
		f.provider.overviews["KO"] = overview("KO")

		_, err := f.service.Track(ctx, "KO")
		require.NoError(t, err)
		_, err = f.service.Track(ctx, "KO")
		require.ErrorIs(t, err, stock.ErrStockExists)
	})

	t.Run("rate limit retried then surfaces", func(t *testing.T) {
		f := newFixture()
		f.provider.errs = []error{stock.ErrRateLimited, stock.ErrRateLimited, stock.ErrRateLimited}

		_, err := f.service.Track(ctx, "KO")
		require.ErrorIs(t, err, stock.ErrRateLimited)
		require.Equal(t, 3, f.provider.calls)
	})

	t.Run("invalid symbol rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Track(ctx, "b@d")
		require.ErrorIs(t, err, stock.ErrInvalidSymbol)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh overview served from store", func(t *testing.T) {
		f := newFixture()
		now := time.Now()
		s := overview("KO")
		s.OverviewTS = &now
		f.repo.stored["KO"] = s

		got, err := f.service.Get(ctx, "KO")
		require.NoError(t, err)
		require.Equal(t, "KO", got.Symbol)
		require.Zero(t, f.provider.calls)
	})

	t.Run("stale overview refreshed", func(t *testing.T) {
		f := newFixture()
		old := time.Now().Add(-48 * time.Hour)
		s := overview("KO")
		s.Name = "old name"
		s.OverviewTS = &old
		f.repo.stored["KO"] = s
		f.provider.overviews["KO"] = overview("KO")

		got, err := f.service.Get(ctx, "KO")
		require.NoError(t, err)
		require.Equal(t, "KO Inc", got.Name)
		require.Equal(t, 1, f.provider.calls)
	})

	t.Run("failed refresh serves stored row", func(t *testing.T) {
		f := newFixture()
		old := time.Now().Add(-48 * time.Hour)
		s := overview("KO")
		s.OverviewTS = &old
		f.repo.stored["KO"] = s
		f.provider.errs = []error{stock.ErrRateLimited, stock.ErrRateLimited, stock.ErrRateLimited}

		got, err := f.service.Get(ctx, "KO")
		require.NoError(t, err)
		require.Equal(t, "KO", got.Symbol)
	})

	t.Run("unknown stock", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Get(ctx, "NOPE")
		require.ErrorIs(t, err, stock.ErrStockNotFound)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches even when the stored overview is fresh", func(t *testing.T) {
		f := newFixture()
		now := time.Now()
		s := overview("KO")
		s.Name = "old name"
		s.OverviewTS = &now
		f.repo.stored["KO"] = s
		f.provider.overviews["KO"] = overview("KO")

		got, err := f.service.Refresh(ctx, "KO")
		require.NoError(t, err)
		require.Equal(t, "KO Inc", got.Name)
		require.Equal(t, 1, f.provider.calls)
		require.NotNil(t, got.OverviewTS)
	})

	t.Run("untracked symbol is not fetched", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Refresh(ctx, "NOPE")
		require.ErrorIs(t, err, stock.ErrStockNotFound)
		require.Zero(t, f.provider.calls)
	})

	t.Run("upstream failure surfaces", func(t *testing.T) {
		f := newFixture()
		now := time.Now()
		s := overview("KO")
		s.OverviewTS = &now
		f.repo.stored["KO"] = s
		f.provider.errs = []error{stock.ErrRateLimited, stock.ErrRateLimited, stock.ErrRateLimited}

		_, err := f.service.Refresh(ctx, "KO")
		require.ErrorIs(t, err, stock.ErrRateLimited)
	})
}

func TestUntrack(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	now := time.Now()
	s := overview("KO")
	s.OverviewTS = &now
	f.repo.stored["KO"] = s

	require.NoError(t, f.service.Untrack(ctx, "KO"))
	require.Equal(t, []string{"KO"}, f.invalidator.forgotten)

	require.ErrorIs(t, f.service.Untrack(ctx, "KO"), stock.ErrStockNotFound)
	require.Len(t, f.invalidator.forgotten, 1)
}
