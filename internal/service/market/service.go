// Package market tracks a fixed set of commodities and indexes.
// Commodity values come from the primary provider's commodity series,
// index levels from the secondary provider's chart API.
package market

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tnammu/dividash/internal/domain/fetchlog"
	"github.com/tnammu/dividash/internal/domain/market"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
	"github.com/tnammu/dividash/internal/infra/yahoo"
)

// CommodityProvider fetches the latest value of a commodity series
type CommodityProvider interface {
	GetCommodity(ctx context.Context, function string) (*alphavantage.CommodityValue, error)
}

// IndexProvider fetches an index level as a quote
type IndexProvider interface {
	GetQuote(ctx context.Context, symbol string) (*stock.Quote, error)
}

// tracked describes one instrument we follow
type tracked struct {
	symbol string
	name   string
	remote string // provider-side identifier
}

// Commodity series on the primary provider
var trackedCommodities = []tracked{
	{symbol: "WTI", name: "Crude Oil (WTI)", remote: "WTI"},
	{symbol: "BRENT", name: "Crude Oil (Brent)", remote: "BRENT"},
	{symbol: "NATGAS", name: "Natural Gas", remote: "NATURAL_GAS"},
	{symbol: "COPPER", name: "Copper", remote: "COPPER"},
	{symbol: "ALUMINUM", name: "Aluminum", remote: "ALUMINUM"},
	{symbol: "WHEAT", name: "Wheat", remote: "WHEAT"},
	{symbol: "CORN", name: "Corn", remote: "CORN"},
	{symbol: "COFFEE", name: "Coffee", remote: "COFFEE"},
	{symbol: "SUGAR", name: "Sugar", remote: "SUGAR"},
}

// Index levels on the secondary provider
var trackedIndexes = []tracked{
	{symbol: "SPX", name: "S&P 500", remote: "^GSPC"},
	{symbol: "DJI", name: "Dow Jones Industrial Average", remote: "^DJI"},
	{symbol: "IXIC", name: "NASDAQ Composite", remote: "^IXIC"},
	{symbol: "GSPTSE", name: "S&P/TSX Composite", remote: "^GSPTSE"},
}

// Config holds market service settings
type Config struct {
	TTL          time.Duration // freshness window for stored values
	RequestDelay time.Duration // pause between sequential upstream calls
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		TTL:          15 * time.Minute,
		RequestDelay: 500 * time.Millisecond,
	}
}

// Service serves commodity and index values with TTL refresh
type Service struct {
	config Config

	repo    market.Repository
	logRepo fetchlog.Repository

	commodities CommodityProvider
	indexes     IndexProvider

	logger zerolog.Logger
}

// NewService creates a market service
func NewService(
	config Config,
	repo market.Repository,
	logRepo fetchlog.Repository,
	commodities CommodityProvider,
	indexes IndexProvider,
	logger zerolog.Logger,
) *Service {
	return &Service{
		config:      config,
		repo:        repo,
		logRepo:     logRepo,
		commodities: commodities,
		indexes:     indexes,
		logger:      logger.With().Str("service", "market").Logger(),
	}
}

// Commodities returns all tracked commodity values, refreshing stale ones
func (s *Service) Commodities(ctx context.Context) ([]market.Instrument, error) {
	return s.list(ctx, market.KindCommodity, trackedCommodities)
}

// Indexes returns all tracked index levels, refreshing stale ones
func (s *Service) Indexes(ctx context.Context) ([]market.Instrument, error) {
	return s.list(ctx, market.KindIndex, trackedIndexes)
}

// Get returns one tracked instrument by symbol
func (s *Service) Get(ctx context.Context, symbol string) (*market.Instrument, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	def, kind, ok := lookupTracked(symbol)
	if !ok {
		// Allow reads of instruments loaded outside the tracked set
		return s.repo.GetBySymbol(ctx, symbol)
	}

	stored, err := s.repo.GetBySymbol(ctx, symbol)
	if err == nil && stored.Age() <= s.config.TTL {
		return stored, nil
	}
	if err != nil && !errors.Is(err, market.ErrInstrumentNotFound) {
		return nil, err
	}

	instrument, fetchErr := s.fetch(ctx, kind, def)
	if fetchErr != nil {
		if stored != nil {
			return stored, nil
		}
		return nil, fetchErr
	}

	if err := s.repo.Upsert(ctx, instrument); err != nil {
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("persist instrument failed")
	}
	return instrument, nil
}

// RefreshAll re-fetches every tracked instrument sequentially
func (s *Service) RefreshAll(ctx context.Context) (refreshed, failed int, err error) {
	type item struct {
		def  tracked
		kind market.Kind
	}
	all := make([]item, 0, len(trackedCommodities)+len(trackedIndexes))
	for _, def := range trackedCommodities {
		all = append(all, item{def, market.KindCommodity})
	}
	for _, def := range trackedIndexes {
		all = append(all, item{def, market.KindIndex})
	}

	for i, item := range all {
		if i > 0 {
			if err := sleepCtx(ctx, s.config.RequestDelay); err != nil {
				return refreshed, failed, err
			}
		}

		instrument, fetchErr := s.fetch(ctx, item.kind, item.def)
		if fetchErr != nil {
			failed++
			s.logger.Warn().Str("symbol", item.def.symbol).Err(fetchErr).Msg("refresh failed")
			continue
		}
		if err := s.repo.Upsert(ctx, instrument); err != nil {
			failed++
			s.logger.Error().Str("symbol", item.def.symbol).Err(err).Msg("persist instrument failed")
			continue
		}
		refreshed++
	}

	s.logger.Info().Int("refreshed", refreshed).Int("failed", failed).Msg("market refresh complete")
	return refreshed, failed, nil
}

// list serves the tracked set for one kind, refreshing entries past the TTL
func (s *Service) list(ctx context.Context, kind market.Kind, defs []tracked) ([]market.Instrument, error) {
	stored, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]market.Instrument, len(stored))
	for _, inst := range stored {
		bySymbol[inst.Symbol] = inst
	}

	out := make([]market.Instrument, 0, len(defs))
	first := true
	for _, def := range defs {
		if inst, ok := bySymbol[def.symbol]; ok && inst.Age() <= s.config.TTL {
			out = append(out, inst)
			continue
		}

		if !first {
			if err := sleepCtx(ctx, s.config.RequestDelay); err != nil {
				return out, err
			}
		}
		first = false

		instrument, fetchErr := s.fetch(ctx, kind, def)
		if fetchErr != nil {
			// Serve the stale row rather than dropping the instrument
			if inst, ok := bySymbol[def.symbol]; ok {
				out = append(out, inst)
			}
			s.logger.Warn().Str("symbol", def.symbol).Err(fetchErr).Msg("refresh failed, serving stale")
			continue
		}

		if err := s.repo.Upsert(ctx, instrument); err != nil {
			s.logger.Error().Str("symbol", def.symbol).Err(err).Msg("persist instrument failed")
		}
		out = append(out, *instrument)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// fetch pulls one instrument from its provider
func (s *Service) fetch(ctx context.Context, kind market.Kind, def tracked) (*market.Instrument, error) {
	if kind == market.KindCommodity {
		started := time.Now()
		value, err := s.commodities.GetCommodity(ctx, def.remote)
		s.recordFetch(ctx, alphavantage.ProviderName, "commodity", def.symbol, started, err)
		if err != nil {
			return nil, err
		}

		unit := value.Unit
		return &market.Instrument{
			Symbol:    def.symbol,
			Name:      def.name,
			Kind:      kind,
			Value:     value.Value,
			Unit:      &unit,
			Source:    alphavantage.ProviderName,
			FetchedTS: time.Now(),
		}, nil
	}

	started := time.Now()
	quote, err := s.indexes.GetQuote(ctx, def.remote)
	s.recordFetch(ctx, yahoo.ProviderName, "index", def.symbol, started, err)
	if err != nil {
		return nil, err
	}

	return &market.Instrument{
		Symbol:    def.symbol,
		Name:      def.name,
		Kind:      kind,
		Value:     quote.Price,
		ChangePct: quote.ChangePct,
		Source:    yahoo.ProviderName,
		FetchedTS: time.Now(),
	}, nil
}

func (s *Service) recordFetch(ctx context.Context, provider, operation, symbol string, started time.Time, fetchErr error) {
	entry := &fetchlog.Entry{
		Provider:   provider,
		Operation:  operation,
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

func lookupTracked(symbol string) (tracked, market.Kind, bool) {
	for _, def := range trackedCommodities {
		if def.symbol == symbol {
			return def, market.KindCommodity, true
		}
	}
	for _, def := range trackedIndexes {
		if def.symbol == symbol {
			return def, market.KindIndex, true
		}
	}
	return tracked{}, "", false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
