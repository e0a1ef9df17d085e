// Package sector computes per-sector averages from stored stocks and
// dividend analyses. Aggregates are recomputed only on explicit refresh;
// nothing here talks to an upstream provider.
package sector

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/domain/dividend"
	"github.com/tnammu/dividash/internal/domain/sector"
	"github.com/tnammu/dividash/internal/domain/stock"
)

// Service maintains sector aggregates
type Service struct {
	sectorRepo sector.Repository
	stockRepo  stock.Repository
	divRepo    dividend.Repository

	logger zerolog.Logger
}

// NewService creates a sector service
func NewService(
	sectorRepo sector.Repository,
	stockRepo stock.Repository,
	divRepo dividend.Repository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		sectorRepo: sectorRepo,
		stockRepo:  stockRepo,
		divRepo:    divRepo,
		logger:     logger.With().Str("service", "sector").Logger(),
	}
}

// List returns all stored sector aggregates
func (s *Service) List(ctx context.Context) ([]sector.Aggregate, error) {
	return s.sectorRepo.List(ctx)
}

// Get returns one sector aggregate by name
func (s *Service) Get(ctx context.Context, name string) (*sector.Aggregate, error) {
	return s.sectorRepo.GetByName(ctx, name)
}

// Refresh recomputes every sector aggregate from stored stocks and
// analyses and replaces the stored set.
func (s *Service) Refresh(ctx context.Context) ([]sector.Aggregate, error) {
	stocks, err := s.listAllStocks(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bySector := make(map[string]*bucket)
	for _, st := range stocks {
		if st.Sector == nil || *st.Sector == "" {
			continue
		}
		name := *st.Sector

		b, ok := bySector[name]
		if !ok {
			b = &bucket{}
			bySector[name] = b
		}
		b.count++

		analysis, err := s.divRepo.GetAnalysis(ctx, st.Symbol)
		if err != nil {
			if errors.Is(err, dividend.ErrAnalysisNotFound) {
				continue
			}
			return nil, err
		}
		if analysis.Yield != nil {
			b.yields = append(b.yields, *analysis.Yield)
		}
		if analysis.PayoutRatio != nil {
			b.payouts = append(b.payouts, *analysis.PayoutRatio)
		}
		b.safeties = append(b.safeties, analysis.SafetyScore)
	}

	aggregates := make([]sector.Aggregate, 0, len(bySector))
	for name, b := range bySector {
		aggregates = append(aggregates, sector.Aggregate{
			Name:           name,
			StockCount:     b.count,
			AvgYield:       mean(b.yields),
			AvgPayoutRatio: mean(b.payouts),
			AvgSafetyScore: mean(b.safeties),
			RefreshedTS:    now,
		})
	}

	if err := s.sectorRepo.ReplaceAll(ctx, aggregates); err != nil {
		return nil, err
	}

	s.logger.Info().Int("sectors", len(aggregates)).Msg("sector aggregates refreshed")
	return aggregates, nil
}

// Compare positions one stock against its stored sector aggregate
func (s *Service) Compare(ctx context.Context, symbol string) (*sector.Comparison, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := stock.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	st, err := s.stockRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if st.Sector == nil || *st.Sector == "" {
		return nil, sector.ErrNoSector
	}

	agg, err := s.sectorRepo.GetByName(ctx, *st.Sector)
	if err != nil {
		return nil, err
	}

	cmp := &sector.Comparison{
		Symbol:       symbol,
		Sector:       agg.Name,
		SectorYield:  agg.AvgYield,
		SectorPayout: agg.AvgPayoutRatio,
		SectorSafety: agg.AvgSafetyScore,
		SectorSize:   agg.StockCount,
	}

	analysis, err := s.divRepo.GetAnalysis(ctx, symbol)
	if err != nil && !errors.Is(err, dividend.ErrAnalysisNotFound) {
		return nil, err
	}
	if err == nil {
		cmp.Yield = analysis.Yield
		cmp.PayoutRatio = analysis.PayoutRatio
		safety := analysis.SafetyScore
		cmp.SafetyScore = &safety
	}

	rank, err := s.yieldRank(ctx, *st.Sector, symbol, cmp.Yield)
	if err != nil {
		return nil, err
	}
	cmp.YieldRank = rank

	return cmp, nil
}

// yieldRank counts sector peers with a strictly higher yield. The stock
// itself ranks 1 when it leads the sector; a stock with no yield ranks last.
func (s *Service) yieldRank(ctx context.Context, sectorName, symbol string, yield *float64) (int, error) {
	peers, err := s.listSectorStocks(ctx, sectorName)
	if err != nil {
		return 0, err
	}

	if yield == nil {
		return len(peers), nil
	}

	rank := 1
	for _, peer := range peers {
		if peer.Symbol == symbol {
			continue
		}
		analysis, err := s.divRepo.GetAnalysis(ctx, peer.Symbol)
		if err != nil {
			if errors.Is(err, dividend.ErrAnalysisNotFound) {
				continue
			}
			return 0, err
		}
		if analysis.Yield != nil && *analysis.Yield > *yield {
			rank++
		}
	}
	return rank, nil
}

func (s *Service) listAllStocks(ctx context.Context) ([]stock.Stock, error) {
	return s.listStocks(ctx, nil)
}

func (s *Service) listSectorStocks(ctx context.Context, name string) ([]stock.Stock, error) {
	return s.listStocks(ctx, &name)
}

// listStocks walks the paginated stock listing to completion
func (s *Service) listStocks(ctx context.Context, sectorName *string) ([]stock.Stock, error) {
	var all []stock.Stock
	for page := 1; ; page++ {
		filter := stock.ListFilter{Sector: sectorName, Page: page, Limit: 100}
		if err := filter.Normalize(); err != nil {
			return nil, err
		}

		result, err := s.stockRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Stocks...)

		if len(all) >= result.TotalCount || len(result.Stocks) == 0 {
			return all, nil
		}
	}
}

type bucket struct {
	count    int
	yields   []float64
	payouts  []float64
	safeties []float64
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}
