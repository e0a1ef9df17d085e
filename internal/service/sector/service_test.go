package sector

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/dividend"
	"github.com/tnammu/dividash/internal/domain/sector"
	"github.com/tnammu/dividash/internal/domain/stock"
)

type fakeSectorRepo struct {
	stored map[string]*sector.Aggregate
}

func newFakeSectorRepo() *fakeSectorRepo {
	return &fakeSectorRepo{stored: make(map[string]*sector.Aggregate)}
}

func (f *fakeSectorRepo) List(_ context.Context) ([]sector.Aggregate, error) {
	out := make([]sector.Aggregate, 0, len(f.stored))
	for _, a := range f.stored {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeSectorRepo) GetByName(_ context.Context, name string) (*sector.Aggregate, error) {
	if a, ok := f.stored[name]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sector.ErrSectorNotFound
}

func (f *fakeSectorRepo) ReplaceAll(_ context.Context, aggregates []sector.Aggregate) error {
	f.stored = make(map[string]*sector.Aggregate)
	for i := range aggregates {
		f.stored[aggregates[i].Name] = &aggregates[i]
	}
	return nil
}

type fakeStockRepo struct {
	stock.Repository
	stocks []stock.Stock
}

func (f *fakeStockRepo) List(_ context.Context, filter stock.ListFilter) (*stock.ListResult, error) {
	var matched []stock.Stock
	for _, s := range f.stocks {
		if filter.Sector != nil && (s.Sector == nil || *s.Sector != *filter.Sector) {
			continue
		}
		matched = append(matched, s)
	}

	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return &stock.ListResult{
		Stocks:     matched[start:end],
		TotalCount: len(matched),
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (f *fakeStockRepo) GetBySymbol(_ context.Context, symbol string) (*stock.Stock, error) {
	for i := range f.stocks {
		if f.stocks[i].Symbol == symbol {
			return &f.stocks[i], nil
		}
	}
	return nil, stock.ErrStockNotFound
}

type fakeDivRepo struct {
	dividend.Repository
	analyses map[string]*dividend.Analysis
}

func (f *fakeDivRepo) GetAnalysis(_ context.Context, symbol string) (*dividend.Analysis, error) {
	if a, ok := f.analyses[symbol]; ok {
		return a, nil
	}
	return nil, dividend.ErrAnalysisNotFound
}

func ptr(v float64) *float64 { return &v }

func trackedStock(symbol, sectorName string) stock.Stock {
	s := stock.Stock{Symbol: symbol}
	if sectorName != "" {
		s.Sector = &sectorName
	}
	return s
}

func analysis(yield, payout, safety float64) *dividend.Analysis {
	return &dividend.Analysis{
		Yield:       ptr(yield),
		PayoutRatio: ptr(payout),
		SafetyScore: safety,
		ComputedTS:  time.Now(),
	}
}

type fixture struct {
	service    *Service
	sectorRepo *fakeSectorRepo
	stockRepo  *fakeStockRepo
	divRepo    *fakeDivRepo
}

func newFixture() *fixture {
	f := &fixture{
		sectorRepo: newFakeSectorRepo(),
		stockRepo:  &fakeStockRepo{},
		divRepo:    &fakeDivRepo{analyses: make(map[string]*dividend.Analysis)},
	}
	f.service = NewService(f.sectorRepo, f.stockRepo, f.divRepo, zerolog.Nop())
	return f
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("averages per sector", func(t *testing.T) {
		f := newFixture()
		f.stockRepo.stocks = []stock.Stock{
			trackedStock("KO", "CONSUMER STAPLES"),
			trackedStock("PG", "CONSUMER STAPLES"),
			trackedStock("XOM", "ENERGY"),
			trackedStock("NOSECTOR", ""),
		}
		f.divRepo.analyses["KO"] = analysis(0.031, 70, 85)
		f.divRepo.analyses["PG"] = analysis(0.025, 60, 91)
		f.divRepo.analyses["XOM"] = analysis(0.034, 45, 74)

		aggregates, err := f.service.Refresh(ctx)
		require.NoError(t, err)
		require.Len(t, aggregates, 2)

		staples, err := f.service.Get(ctx, "CONSUMER STAPLES")
		require.NoError(t, err)
		require.Equal(t, 2, staples.StockCount)
		require.InDelta(t, 0.028, *staples.AvgYield, 1e-9)
		require.InDelta(t, 65, *staples.AvgPayoutRatio, 1e-9)
		require.InDelta(t, 88, *staples.AvgSafetyScore, 1e-9)
	})

	t.Run("stocks without analyses still counted", func(t *testing.T) {
		f := newFixture()
		f.stockRepo.stocks = []stock.Stock{
			trackedStock("KO", "CONSUMER STAPLES"),
			trackedStock("NEW", "CONSUMER STAPLES"),
		}
		f.divRepo.analyses["KO"] = analysis(0.031, 70, 85)

		_, err := f.service.Refresh(ctx)
		require.NoError(t, err)

		staples, err := f.service.Get(ctx, "CONSUMER STAPLES")
		require.NoError(t, err)
		require.Equal(t, 2, staples.StockCount)
		// Averages cover only stocks that have an analysis
		require.InDelta(t, 0.031, *staples.AvgYield, 1e-9)
	})

	t.Run("replaces previous aggregates", func(t *testing.T) {
		f := newFixture()
		f.sectorRepo.stored["GONE"] = &sector.Aggregate{Name: "GONE", StockCount: 9}
		f.stockRepo.stocks = []stock.Stock{trackedStock("XOM", "ENERGY")}

		_, err := f.service.Refresh(ctx)
		require.NoError(t, err)

		_, err = f.service.Get(ctx, "GONE")
		require.ErrorIs(t, err, sector.ErrSectorNotFound)
	})
}

func TestCompare(t *testing.T) {
	ctx := context.Background()

	t.Run("positions stock against sector", func(t *testing.T) {
		f := newFixture()
		f.stockRepo.stocks = []stock.Stock{
			trackedStock("KO", "CONSUMER STAPLES"),
			trackedStock("PG", "CONSUMER STAPLES"),
			trackedStock("KMB", "CONSUMER STAPLES"),
		}
		f.divRepo.analyses["KO"] = analysis(0.031, 70, 85)
		f.divRepo.analyses["PG"] = analysis(0.025, 60, 91)
		f.divRepo.analyses["KMB"] = analysis(0.036, 80, 68)

		_, err := f.service.Refresh(ctx)
		require.NoError(t, err)

		cmp, err := f.service.Compare(ctx, "ko")
		require.NoError(t, err)
		require.Equal(t, "KO", cmp.Symbol)
		require.Equal(t, "CONSUMER STAPLES", cmp.Sector)
		require.InDelta(t, 0.031, *cmp.Yield, 1e-9)
		require.Equal(t, 3, cmp.SectorSize)
		// KMB yields more, PG yields less
		require.Equal(t, 2, cmp.YieldRank)
	})

	t.Run("stock without sector", func(t *testing.T) {
		f := newFixture()
		f.stockRepo.stocks = []stock.Stock{trackedStock("NOSECTOR", "")}

		_, err := f.service.Compare(ctx, "NOSECTOR")
		require.ErrorIs(t, err, sector.ErrNoSector)
	})

	t.Run("unknown stock", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Compare(ctx, "NOPE")
		require.ErrorIs(t, err, stock.ErrStockNotFound)
	})
}
