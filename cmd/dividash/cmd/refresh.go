package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tnammu/dividash/internal/infra/alphavantage"
	"github.com/tnammu/dividash/internal/infra/database/postgres"
	"github.com/tnammu/dividash/internal/infra/yahoo"
	"github.com/tnammu/dividash/internal/pkg/config"
	"github.com/tnammu/dividash/internal/pkg/logger"
	"github.com/tnammu/dividash/internal/service/dividend"
	"github.com/tnammu/dividash/internal/service/market"
	"github.com/tnammu/dividash/internal/service/quote"
)

var refreshAnalyses bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one bulk refresh pass and exit",
	Long:  `Refreshes every tracked quote and market instrument once, sequentially, then exits. With --analyses the dividend analysis of every tracked stock is recomputed as well.`,
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshAnalyses, "analyses", false, "also recompute dividend analyses")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx := context.Background()

	dbPool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbPool.Close()

	stockRepo := postgres.NewStockRepository(dbPool)
	quoteRepo := postgres.NewQuoteRepository(dbPool)
	dividendRepo := postgres.NewDividendRepository(dbPool)
	marketRepo := postgres.NewMarketRepository(dbPool)
	logRepo := postgres.NewFetchLogRepository(dbPool)

	avClient := alphavantage.NewClient(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey)
	yahooClient := yahoo.NewClient(cfg.Yahoo.BaseURL)

	quoteService := quote.NewService(quote.Config{
		TTL:          cfg.Cache.QuoteTTL,
		RequestDelay: cfg.AlphaVantage.RequestDelay,
		MaxRetries:   cfg.AlphaVantage.MaxRetries,
		RetryBackoff: cfg.AlphaVantage.RetryBackoff,
	}, quoteRepo, stockRepo, logRepo, avClient, yahooClient, log.Logger)

	marketService := market.NewService(market.Config{
		TTL:          cfg.Cache.QuoteTTL,
		RequestDelay: cfg.AlphaVantage.RequestDelay,
	}, marketRepo, logRepo, avClient, yahooClient, log.Logger)

	start := time.Now()

	refreshed, failed, err := quoteService.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh quotes: %w", err)
	}
	log.Info().Int("refreshed", refreshed).Int("failed", failed).Msg("Quotes refreshed")

	refreshed, failed, err = marketService.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh market instruments: %w", err)
	}
	log.Info().Int("refreshed", refreshed).Int("failed", failed).Msg("Market instruments refreshed")

	if refreshAnalyses {
		dividendService := dividend.NewService(dividend.Config{
			AnalysisTTL:  cfg.Cache.AnalysisTTL,
			MaxRetries:   cfg.AlphaVantage.MaxRetries,
			RetryBackoff: cfg.AlphaVantage.RetryBackoff,
		}, dividendRepo, stockRepo, logRepo, avClient, quoteService, log.Logger)

		symbols, err := stockRepo.GetSymbols(ctx)
		if err != nil {
			return fmt.Errorf("list symbols: %w", err)
		}
		for _, symbol := range symbols {
			if _, err := dividendService.Analyze(ctx, symbol); err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("Analysis refresh failed")
			}
		}
		log.Info().Int("symbols", len(symbols)).Msg("Dividend analyses refreshed")
	}

	log.Info().Dur("duration", time.Since(start)).Msg("Bulk refresh complete")
	return nil
}
