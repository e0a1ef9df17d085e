package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tnammu/dividash/internal/api"
	"github.com/tnammu/dividash/internal/infra/database/postgres"
	"github.com/tnammu/dividash/internal/pkg/config"
	"github.com/tnammu/dividash/internal/pkg/logger"
	"github.com/tnammu/dividash/internal/service/refresher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Starts the JSON API server together with the background refresh loops for quotes, dividend analyses and market instruments.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
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
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	log.Info().Str("version", serviceVersion).Msg("Starting dividash API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbPool.Close()

	log.Info().Msg("Database connected")

	router := api.NewRouter(cfg, dbPool, serviceVersion)

	refreshSvc := refresher.NewService(ctx, refresher.Config{
		QuoteInterval:    cfg.Refresh.QuoteInterval,
		DividendInterval: cfg.Refresh.DividendInterval,
		MarketInterval:   cfg.Refresh.MarketInterval,
		SymbolDelay:      cfg.AlphaVantage.RequestDelay,
		StartJitter:      cfg.Refresh.StartJitter,
	}, router.QuoteService(), router.DividendService(), router.MarketService(), router.StockRepository(), log.Logger)

	if err := refreshSvc.Start(); err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", server.Addr).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutdown signal received, stopping server")

	if err := refreshSvc.Stop(); err != nil {
		log.Error().Err(err).Msg("Refresher shutdown failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("dividash API server stopped")
	return nil
}
