// Package main provides the main entry point for the gold portfolio API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/handlers"
	"github.com/goldfolio/goldfolio-api/app/middleware"
	"github.com/goldfolio/goldfolio-api/app/router"
	"github.com/goldfolio/goldfolio-api/app/scheduler"
	"github.com/goldfolio/goldfolio-api/app/services"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/goldfolio/goldfolio-api/config"
	"github.com/goldfolio/goldfolio-api/models"
	"github.com/goldfolio/goldfolio-api/repository"
	"github.com/goldfolio/goldfolio-api/utils"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	log       zerolog.Logger
	stopFuncs []func()
}

func main() {
	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging)
	utils.SetGlobalLogger(logger)
	logger.Info().
		Str("environment", cfg.Deployment.Environment).
		Str("version", cfg.Deployment.Version).
		Msg("Starting goldfolio application...")

	// Initialize application
	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info().Msg("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}

	logger.Info().Msg("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logger zerolog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.PortfolioLot{}, &models.PriceSnapshot{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	logger.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("Database connection established")

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig, logger zerolog.Logger) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", opt.Addr).Int("db", cfg.RedisDB).Msg("Redis connection established")
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, logger zerolog.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					logger.Warn().Err(err).Msg("Redis healthcheck failed")
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeEntitlementSource returns nil when no Gumroad token is configured; every owner is then bounded
func initializeEntitlementSource(cfg config.GumroadConfig) (businessflow.EntitlementSource, *services.GumroadClient) {
	client := services.NewGumroadClient(cfg.BaseURL, cfg.AccessToken, cfg.ProductID, cfg.Timeout)
	if cfg.AccessToken == "" {
		return nil, client
	}
	return client, client
}

func initializeApplication(cfg *config.ProductionConfig, logger zerolog.Logger) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval, logger)
		stopFuncs = append(stopFuncs, cancel, func() { _ = rc.Close() })
	}

	// Initialize repositories
	lotRepo := repository.NewPortfolioLotRepository(db)
	snapshotRepo := repository.NewPriceSnapshotRepository(db)

	// Initialize services
	tokenService, err := services.NewTokenService(
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	priceSource := services.NewHargaEmasClient(cfg.PriceSource.BaseURL, cfg.PriceSource.UserAgent, cfg.PriceSource.Timeout)
	entitlementSource, gumroad := initializeEntitlementSource(cfg.Gumroad)
	exchangeRates := services.NewExchangeRateClient(cfg.ExchangeRate.BaseURL, cfg.ExchangeRate.APIKey, cfg.ExchangeRate.Timeout)
	subscriptionPriceCache := services.NewTTLCache[string](cfg.Gumroad.PriceTTL, utils.UTCNow)

	// Initialize flows
	loc := utils.LoadLocation(cfg.Portfolio.Timezone)
	priceFlow := businessflow.NewPriceFlow(snapshotRepo, rc, cfg.Cache, utils.UTCNow, loc, logger)
	gate := businessflow.NewSubscriptionGate(entitlementSource, cfg.Portfolio.FreeLotLimit)
	portfolioFlow := businessflow.NewPortfolioFlow(lotRepo, priceFlow, gate, cfg.Portfolio, utils.UTCNow, logger)
	ingestionFlow := businessflow.NewPriceIngestionFlow(
		priceSource,
		snapshotRepo,
		priceFlow,
		businessflow.PriceTableLayout{
			HeaderRows:       cfg.PriceSource.HeaderRows,
			DenominationRows: cfg.PriceSource.DenominationRows,
		},
		utils.UTCNow,
		logger,
	)
	var converter businessflow.CurrencyConverter
	if cfg.ExchangeRate.APIKey != "" {
		converter = exchangeRates
	}
	subscriptionFlow := businessflow.NewSubscriptionFlow(gate, gumroad, converter, subscriptionPriceCache, utils.RupiahCurrency, logger)

	// Initialize handlers
	portfolioHandler := handlers.NewPortfolioHandler(portfolioFlow, logger)
	priceHandler := handlers.NewPriceHandler(priceFlow, logger)
	priceAdminHandler := handlers.NewPriceAdminHandler(ingestionFlow, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionFlow, logger)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, cfg.JWT.CookieName)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		logger,
		portfolioHandler,
		priceHandler,
		priceAdminHandler,
		subscriptionHandler,
		authMiddleware,
	)

	if cfg.Scheduler.PriceIngestionEnabled {
		stop, err := startPriceScheduler(cfg, ingestionFlow, loc)
		if err != nil {
			return nil, err
		}
		stopFuncs = append(stopFuncs, stop)
	}

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		log:       logger,
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// startPriceScheduler registers the daily ingestion job and returns its stop function
func startPriceScheduler(cfg *config.ProductionConfig, flow businessflow.PriceIngestionFlow, loc *time.Location) (func(), error) {
	schedLog := utils.NewComponentLogger(cfg.Logging, "scheduler", cfg.Logging.SchedulerLogPath)
	sched := scheduler.New(schedLog, loc)
	job := scheduler.NewPriceIngestionJob(flow, cfg.PriceSource.Timeout*4, schedLog)

	if err := sched.AddJob(cfg.Scheduler.PriceIngestionCron, job); err != nil {
		return nil, fmt.Errorf("failed to schedule price ingestion: %w", err)
	}
	sched.Start()

	if cfg.Scheduler.RunOnStartup {
		go func() {
			if err := sched.RunNow(job); err != nil {
				schedLog.Error().Err(err).Msg("startup price ingestion failed")
			}
		}()
	}

	return sched.Stop, nil
}
