package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tnammu/dividash/internal/api/handlers"
	"github.com/tnammu/dividash/internal/api/middleware"
	"github.com/tnammu/dividash/internal/domain/stock"
	"github.com/tnammu/dividash/internal/infra/alphavantage"
	"github.com/tnammu/dividash/internal/infra/database/postgres"
	"github.com/tnammu/dividash/internal/infra/yahoo"
	"github.com/tnammu/dividash/internal/pkg/config"
	"github.com/tnammu/dividash/internal/pkg/logger"
	"github.com/tnammu/dividash/internal/service/dividend"
	"github.com/tnammu/dividash/internal/service/etfs"
	"github.com/tnammu/dividash/internal/service/market"
	"github.com/tnammu/dividash/internal/service/performance"
	"github.com/tnammu/dividash/internal/service/quote"
	"github.com/tnammu/dividash/internal/service/sector"
	"github.com/tnammu/dividash/internal/service/stocks"
	"github.com/tnammu/dividash/internal/service/strategy"
)

// Router holds all dependencies for API routing
type Router struct {
	engine *gin.Engine
	config *config.Config
	dbPool *postgres.Pool

	stockRepo       stock.Repository
	quoteService    *quote.Service
	dividendService *dividend.Service
	marketService   *market.Service

	healthHandler      *handlers.HealthHandler
	stockHandler       *handlers.StockHandler
	quoteHandler       *handlers.QuoteHandler
	dividendHandler    *handlers.DividendHandler
	etfHandler         *handlers.ETFHandler
	sectorHandler      *handlers.SectorHandler
	marketHandler      *handlers.MarketHandler
	performanceHandler *handlers.PerformanceHandler
	strategyHandler    *handlers.StrategyHandler
	adminHandler       *handlers.AdminHandler
}

// NewRouter creates a new API router with all dependencies
func NewRouter(cfg *config.Config, dbPool *postgres.Pool, version string) *Router {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	engine := gin.New()

	// Create repositories
	stockRepo := postgres.NewStockRepository(dbPool)
	quoteRepo := postgres.NewQuoteRepository(dbPool)
	dividendRepo := postgres.NewDividendRepository(dbPool)
	etfRepo := postgres.NewETFRepository(dbPool)
	sectorRepo := postgres.NewSectorRepository(dbPool)
	marketRepo := postgres.NewMarketRepository(dbPool)
	strategyRepo := postgres.NewStrategyRepository(dbPool)
	logRepo := postgres.NewFetchLogRepository(dbPool)

	// Create upstream clients
	avClient := alphavantage.NewClient(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey)
	yahooClient := yahoo.NewClient(cfg.Yahoo.BaseURL)

	// Create services
	quoteService := quote.NewService(quote.Config{
		TTL:          cfg.Cache.QuoteTTL,
		RequestDelay: cfg.AlphaVantage.RequestDelay,
		MaxRetries:   cfg.AlphaVantage.MaxRetries,
		RetryBackoff: cfg.AlphaVantage.RetryBackoff,
	}, quoteRepo, stockRepo, logRepo, avClient, yahooClient, log.Logger)

	dividendService := dividend.NewService(dividend.Config{
		AnalysisTTL:  cfg.Cache.AnalysisTTL,
		MaxRetries:   cfg.AlphaVantage.MaxRetries,
		RetryBackoff: cfg.AlphaVantage.RetryBackoff,
	}, dividendRepo, stockRepo, logRepo, avClient, quoteService, log.Logger)

	stocksConfig := stocks.DefaultConfig()
	stocksConfig.MaxRetries = cfg.AlphaVantage.MaxRetries
	stocksConfig.RetryBackoff = cfg.AlphaVantage.RetryBackoff
	stockService := stocks.NewService(stocksConfig, stockRepo, logRepo, avClient, quoteService, log.Logger)

	etfsConfig := etfs.DefaultConfig()
	etfsConfig.MaxRetries = cfg.AlphaVantage.MaxRetries
	etfsConfig.RetryBackoff = cfg.AlphaVantage.RetryBackoff
	etfService := etfs.NewService(etfsConfig, etfRepo, logRepo, avClient, quoteService, log.Logger)

	sectorService := sector.NewService(sectorRepo, stockRepo, dividendRepo, log.Logger)

	marketService := market.NewService(market.Config{
		TTL:          cfg.Cache.QuoteTTL,
		RequestDelay: cfg.AlphaVantage.RequestDelay,
	}, marketRepo, logRepo, avClient, yahooClient, log.Logger)

	performanceConfig := performance.DefaultConfig()
	performanceConfig.MaxRetries = cfg.AlphaVantage.MaxRetries
	performanceConfig.RetryBackoff = cfg.AlphaVantage.RetryBackoff
	performanceService := performance.NewService(performanceConfig, logRepo, avClient, yahooClient, log.Logger)

	strategyService := strategy.NewService(strategyRepo, stockRepo, dividendRepo, log.Logger)

	router := &Router{
		engine: engine,
		config: cfg,
		dbPool: dbPool,

		stockRepo:       stockRepo,
		quoteService:    quoteService,
		dividendService: dividendService,
		marketService:   marketService,

		healthHandler:      handlers.NewHealthHandler(dbPool, version),
		stockHandler:       handlers.NewStockHandler(stockService),
		quoteHandler:       handlers.NewQuoteHandler(quoteService),
		dividendHandler:    handlers.NewDividendHandler(dividendService),
		etfHandler:         handlers.NewETFHandler(etfService),
		sectorHandler:      handlers.NewSectorHandler(sectorService),
		marketHandler:      handlers.NewMarketHandler(marketService),
		performanceHandler: handlers.NewPerformanceHandler(performanceService),
		strategyHandler:    handlers.NewStrategyHandler(strategyService),
		adminHandler:       handlers.NewAdminHandler(quoteService, marketService, logRepo),
	}

	router.setupMiddlewares()
	router.setupRoutes()

	return router
}

// setupMiddlewares configures all global middlewares
func (r *Router) setupMiddlewares() {
	// Recovery middleware (must be first)
	r.engine.Use(gin.Recovery())

	// Request ID middleware
	r.engine.Use(middleware.RequestID())

	// Logging middleware
	loggingConfig := middleware.LoggingConfig{
		SkipPaths: []string{"/health", "/health/ready"},
	}
	if r.config.Logging.FileEnabled {
		accessLogger := logger.NewAccessLogger(
			r.config.Logging.FilePath,
			r.config.Logging.RotationSize,
			r.config.Logging.RetentionDays,
		)
		loggingConfig.AccessLogger = &accessLogger
	}
	r.engine.Use(middleware.Logging(loggingConfig))

	// CORS middleware
	r.engine.Use(middleware.CORS(middleware.DefaultCORSConfig(r.config.Server.CORSOrigins)))
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Health checks (no /api prefix)
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Ready)

	api := r.engine.Group("/api")
	{
		api.GET("/health/detailed", r.healthHandler.Detailed)

		stocksGroup := api.Group("/stocks")
		{
			stocksGroup.GET("", r.stockHandler.List)
			stocksGroup.POST("", r.stockHandler.Track)
			stocksGroup.GET("/:symbol", r.stockHandler.Get)
			stocksGroup.POST("/:symbol/refresh", r.stockHandler.Refresh)
			stocksGroup.DELETE("/:symbol", r.stockHandler.Delete)
		}

		quotes := api.Group("/quotes")
		{
			quotes.GET("", r.quoteHandler.GetMany)
			quotes.GET("/:symbol", r.quoteHandler.Get)
		}

		dividends := api.Group("/dividends")
		{
			dividends.GET("/:symbol/history", r.dividendHandler.History)
			dividends.GET("/:symbol/analysis", r.dividendHandler.Analysis)
			dividends.POST("/:symbol/refresh", r.dividendHandler.Refresh)
		}

		etfsGroup := api.Group("/etfs")
		{
			etfsGroup.GET("", r.etfHandler.List)
			etfsGroup.POST("", r.etfHandler.Track)
			etfsGroup.GET("/:symbol", r.etfHandler.Get)
			etfsGroup.DELETE("/:symbol", r.etfHandler.Delete)
		}

		sectors := api.Group("/sectors")
		{
			sectors.GET("", r.sectorHandler.List)
			sectors.POST("/refresh", r.sectorHandler.Refresh)
			sectors.GET("/compare/:symbol", r.sectorHandler.Compare)
			sectors.GET("/:name", r.sectorHandler.Get)
		}

		api.GET("/commodities", r.marketHandler.Commodities)
		api.GET("/commodities/:symbol", r.marketHandler.Get)
		api.GET("/indexes", r.marketHandler.Indexes)
		api.GET("/indexes/:symbol", r.marketHandler.Get)

		api.GET("/performance/compare", r.performanceHandler.Compare)

		strategies := api.Group("/strategies")
		{
			strategies.GET("", r.strategyHandler.List)
			strategies.POST("", r.strategyHandler.Create)
			strategies.GET("/:id", r.strategyHandler.Get)
			strategies.DELETE("/:id", r.strategyHandler.Delete)
			strategies.POST("/:id/run", r.strategyHandler.Run)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/refresh-all", r.adminHandler.RefreshAll)
			admin.GET("/fetch-logs", r.adminHandler.FetchLogs)
			admin.GET("/cache", r.adminHandler.CacheStats)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// QuoteService returns the quote service for background refresh wiring
func (r *Router) QuoteService() *quote.Service {
	return r.quoteService
}

// DividendService returns the dividend service for background refresh wiring
func (r *Router) DividendService() *dividend.Service {
	return r.dividendService
}

// MarketService returns the market service for background refresh wiring
func (r *Router) MarketService() *market.Service {
	return r.marketService
}

// StockRepository returns the stock repository for background refresh wiring
func (r *Router) StockRepository() stock.Repository {
	return r.stockRepo
}
