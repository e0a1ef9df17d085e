package market

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/market"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
)

type fakeMarketRepo struct {
	stored map[string]*market.Instrument
}

func newFakeMarketRepo() *fakeMarketRepo {
	return &fakeMarketRepo{stored: make(map[string]*market.Instrument)}
}

func (f *fakeMarketRepo) ListByKind(_ context.Context, kind market.Kind) ([]market.Instrument, error) {
	var out []market.Instrument
	for _, inst := range f.stored {
		if inst.Kind == kind {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (f *fakeMarketRepo) GetBySymbol(_ context.Context, symbol string) (*market.Instrument, error) {
	if inst, ok := f.stored[symbol]; ok {
		cp := *inst
		return &cp, nil
	}
	return nil, market.ErrInstrumentNotFound
}

func (f *fakeMarketRepo) Upsert(_ context.Context, i *market.Instrument) error {
	cp := *i
	f.stored[i.Symbol] = &cp
	return nil
}

type fakeCommodityProvider struct {
	values map[string]*alphavantage.CommodityValue
	errs   map[string]error
	calls  int
}

func (f *fakeCommodityProvider) GetCommodity(_ context.Context, function string) (*alphavantage.CommodityValue, error) {
	f.calls++
	if err, ok := f.errs[function]; ok {
		return nil, err
	}
	if v, ok := f.values[function]; ok {
		return v, nil
	}
	return nil, stock.ErrSymbolUnknown
}

type fakeIndexProvider struct {
	quotes map[string]*stock.Quote
	calls  int
}

func (f *fakeIndexProvider) GetQuote(_ context.Context, symbol string) (*stock.Quote, error) {
	f.calls++
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, stock.ErrSymbolUnknown
}

type fixture struct {
	service     *Service
	repo        *fakeMarketRepo
	logRepo     *fakeLogRepo
	commodities *fakeCommodityProvider
	indexes     *fakeIndexProvider
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

func newFixture() *fixture {
	f := &fixture{
		repo:        newFakeMarketRepo(),
		logRepo:     &fakeLogRepo{},
		commodities: &fakeCommodityProvider{values: make(map[string]*alphavantage.CommodityValue), errs: make(map[string]error)},
		indexes:     &fakeIndexProvider{quotes: make(map[string]*stock.Quote)},
	}
	config := Config{TTL: 15 * time.Minute, RequestDelay: 0}
	f.service = NewService(config, f.repo, f.logRepo, f.commodities, f.indexes, zerolog.Nop())
	return f
}

func (f *fixture) stockAllCommodities() {
	for _, def := range trackedCommodities {
		f.commodities.values[def.remote] = &alphavantage.CommodityValue{
			Name:  def.name,
			Unit:  "unit",
			Value: decimal.NewFromFloat(10),
			Date:  time.Now(),
		}
	}
}

func (f *fixture) stockAllIndexes() {
	for _, def := range trackedIndexes {
		f.indexes.quotes[def.remote] = &stock.Quote{
			Symbol:    def.remote,
			Price:     decimal.NewFromFloat(5000),
			Source:    stock.SourceYahoo,
			FetchedTS: time.Now(),
		}
	}
}

func storedInstrument(symbol string, kind market.Kind, age time.Duration) *market.Instrument {
	return &market.Instrument{
		Symbol:    symbol,
		Name:      symbol,
		Kind:      kind,
		Value:     decimal.NewFromFloat(1),
		Source:    "TEST",
		FetchedTS: time.Now().Add(-age),
	}
}

func TestCommodities(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches the whole tracked set when empty", func(t *testing.T) {
		f := newFixture()
		f.stockAllCommodities()

		instruments, err := f.service.Commodities(ctx)
		require.NoError(t, err)
		require.Len(t, instruments, len(trackedCommodities))
		require.Equal(t, len(trackedCommodities), f.commodities.calls)

		// Sorted by symbol
		require.Equal(t, "ALUMINUM", instruments[0].Symbol)
	})

	t.Run("fresh rows served without upstream calls", func(t *testing.T) {
		f := newFixture()
		for _, def := range trackedCommodities {
			f.repo.stored[def.symbol] = storedInstrument(def.symbol, market.KindCommodity, time.Minute)
		}

		instruments, err := f.service.Commodities(ctx)
		require.NoError(t, err)
		require.Len(t, instruments, len(trackedCommodities))
		require.Zero(t, f.commodities.calls)
	})

	t.Run("stale rows refreshed", func(t *testing.T) {
		f := newFixture()
		f.stockAllCommodities()
		for _, def := range trackedCommodities {
			f.repo.stored[def.symbol] = storedInstrument(def.symbol, market.KindCommodity, time.Hour)
		}

		instruments, err := f.service.Commodities(ctx)
		require.NoError(t, err)
		require.Equal(t, len(trackedCommodities), f.commodities.calls)
		require.Equal(t, "10", instruments[0].Value.String())
	})

	t.Run("failed refresh serves the stale row", func(t *testing.T) {
		f := newFixture()
		f.stockAllCommodities()
		f.commodities.errs["WTI"] = stock.ErrRateLimited
		f.repo.stored["WTI"] = storedInstrument("WTI", market.KindCommodity, time.Hour)

		instruments, err := f.service.Commodities(ctx)
		require.NoError(t, err)
		require.Len(t, instruments, len(trackedCommodities))

		wti, err := f.service.Get(ctx, "WTI")
		require.NoError(t, err)
		require.Equal(t, "1", wti.Value.String())
	})
}

func TestIndexes(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.stockAllIndexes()

	instruments, err := f.service.Indexes(ctx)
	require.NoError(t, err)
	require.Len(t, instruments, len(trackedIndexes))
	for _, inst := range instruments {
		require.Equal(t, market.KindIndex, inst.Kind)
		require.Equal(t, "5000", inst.Value.String())
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches tracked instrument on demand", func(t *testing.T) {
		f := newFixture()
		f.stockAllCommodities()

		wti, err := f.service.Get(ctx, "wti")
		require.NoError(t, err)
		require.Equal(t, "WTI", wti.Symbol)
		require.Equal(t, market.KindCommodity, wti.Kind)
		require.NotNil(t, wti.Unit)
	})

	t.Run("unknown instrument", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Get(ctx, "XYZZY")
		require.ErrorIs(t, err, market.ErrInstrumentNotFound)
	})
}

func TestRefreshAll(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.stockAllCommodities()
	f.stockAllIndexes()
	f.commodities.errs["SUGAR"] = stock.ErrRateLimited

	refreshed, failed, err := f.service.RefreshAll(ctx)
	require.NoError(t, err)
	require.Equal(t, len(trackedCommodities)+len(trackedIndexes)-1, refreshed)
	require.Equal(t, 1, failed)
}
