// Package strategy screens tracked stocks through stored filter sets,
// matching on stored analyses only.
package strategy

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/domain/dividend"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/domain/strategy"
)

// Service stores and runs screening strategies
type Service struct {
	strategyRepo strategy.Repository
	stockRepo    stock.Repository
	divRepo      dividend.Repository

	logger zerolog.Logger
}

// NewService creates a strategy service
func NewService(
	strategyRepo strategy.Repository,
	stockRepo stock.Repository,
	divRepo dividend.Repository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		strategyRepo: strategyRepo,
		stockRepo:    stockRepo,
		divRepo:      divRepo,
		logger:       logger.With().Str("service", "strategy").Logger(),
	}
}

// List returns all stored strategies
func (s *Service) List(ctx context.Context) ([]strategy.Strategy, error) {
	return s.strategyRepo.List(ctx)
}

// Get returns one strategy by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error) {
	return s.strategyRepo.GetByID(ctx, id)
}

// Create validates and stores a strategy
func (s *Service) Create(ctx context.Context, st *strategy.Strategy) error {
	if err := st.Validate(); err != nil {
		return err
	}
	return s.strategyRepo.Create(ctx, st)
}

// Delete removes a strategy
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.strategyRepo.Delete(ctx, id)
}

// Run screens every tracked stock through a strategy's filters. Matches are
// ordered by safety score, best first. A stock missing the data a filter
// needs does not match that filter.
func (s *Service) Run(ctx context.Context, id uuid.UUID) ([]strategy.Match, error) {
	st, err := s.strategyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stocks, err := s.listAllStocks(ctx)
	if err != nil {
		return nil, err
	}

	var matches []strategy.Match
	for _, candidate := range stocks {
		analysis, err := s.divRepo.GetAnalysis(ctx, candidate.Symbol)
		if err != nil {
			if errors.Is(err, dividend.ErrAnalysisNotFound) {
				continue
			}
			return nil, err
		}

		if !passes(st, &candidate, analysis) {
			continue
		}

		matches = append(matches, strategy.Match{
			Symbol:      candidate.Symbol,
			Name:        candidate.Name,
			Sector:      candidate.Sector,
			Yield:       analysis.Yield,
			PayoutRatio: analysis.PayoutRatio,
			StreakYears: analysis.StreakYears,
			Beta:        candidate.Beta,
			SafetyScore: analysis.SafetyScore,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SafetyScore > matches[j].SafetyScore
	})

	s.logger.Debug().
		Str("strategy", st.Name).
		Int("candidates", len(stocks)).
		Int("matches", len(matches)).
		Msg("strategy run")

	return matches, nil
}

// passes applies every set filter; missing data fails the filter
func passes(st *strategy.Strategy, candidate *stock.Stock, analysis *dividend.Analysis) bool {
	if st.MinYield != nil {
		if analysis.Yield == nil || *analysis.Yield < *st.MinYield {
			return false
		}
	}
	if st.MaxPayoutRatio != nil {
		if analysis.PayoutRatio == nil || *analysis.PayoutRatio > *st.MaxPayoutRatio {
			return false
		}
	}
	if st.MinStreakYears != nil && analysis.StreakYears < *st.MinStreakYears {
		return false
	}
	if st.MaxBeta != nil {
		if candidate.Beta == nil || *candidate.Beta > *st.MaxBeta {
			return false
		}
	}
	return true
}

// listAllStocks walks the paginated stock listing to completion
func (s *Service) listAllStocks(ctx context.Context) ([]stock.Stock, error) {
	var all []stock.Stock
	for page := 1; ; page++ {
		filter := stock.ListFilter{Page: page, Limit: 100}
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
