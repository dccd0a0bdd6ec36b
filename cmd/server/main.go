package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/iho/golend/internal/adapter/http"
	"github.com/iho/golend/internal/adapter/http/handler"
	"github.com/iho/golend/internal/adapter/http/middleware"
	"github.com/iho/golend/internal/adapter/oracle"
	postgresRepo "github.com/iho/golend/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/golend/internal/adapter/repository/redis"
	"github.com/iho/golend/internal/infrastructure/config"
	"github.com/iho/golend/internal/infrastructure/eventpublisher"
	"github.com/iho/golend/internal/infrastructure/logger"
	"github.com/iho/golend/internal/infrastructure/logging"
	"github.com/iho/golend/internal/infrastructure/metrics"
	"github.com/iho/golend/internal/infrastructure/postgres"
	"github.com/iho/golend/internal/infrastructure/redis"
	"github.com/iho/golend/internal/usecase"
	"github.com/iho/golend/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup loggers: zerolog for the HTTP layer, slog for workers
	zlog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = zlog
	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(slogger.Logger)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	operationRepo := postgresRepo.NewOperationRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Rate oracle: live feed when configured, fixed rate otherwise
	rateOracle := newRateOracle(cfg, cache)
	if cfg.OracleURL != "" {
		log.Info().Str("url", cfg.OracleURL).Msg("using live rate oracle")
	} else {
		log.Warn().Int64("rate", cfg.OracleFixedRate).Msg("using fixed rate oracle")
	}

	params := usecase.LendingParams{
		DefaultLTVRatio:      cfg.DefaultLTVRatio,
		InterestRate:         decimal.NewFromFloat(cfg.InterestRatePercent),
		LiquidationThreshold: cfg.LiquidationThreshold,
		WarningThreshold:     cfg.WarningThreshold,
		TargetThreshold:      cfg.TargetThreshold,
		MinInterestDays:      cfg.MinInterestDays,
	}

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo)
	lendingUC := usecase.NewLendingUseCase(txManager, accountRepo, loanRepo, operationRepo, outboxRepo, rateOracle, idGen, params, m)
	liquidationUC := usecase.NewLiquidationUseCase(txManager, accountRepo, loanRepo, operationRepo, outboxRepo, rateOracle, idGen, params, m)
	accrualUC := usecase.NewAccrualUseCase(txManager, accountRepo, loanRepo, operationRepo, idGen, params, m)
	reconciliationUC := usecase.NewReconciliationUseCase(ledgerRepo)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	loanHandler := handler.NewLoanHandler(lendingUC)
	adminHandler := handler.NewAdminHandler(liquidationUC, accrualUC, reconciliationUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		LoanHandler:      loanHandler,
		AdminHandler:     adminHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      middleware.NewRateLimiter(100, 200),
		RequestLogger:    middleware.NewLoggingMiddleware(zlog),
		AdminToken:       cfg.AdminToken,
	})

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if cfg.WorkersEnabled {
		retrier := postgresRepo.NewRetrier()
		riskMonitor := worker.NewRiskMonitor(worker.RiskMonitorConfig{
			Liquidation: liquidationUC,
			Logger:      slogger.Logger,
			Metrics:     m,
			Retrier:     retrier,
			Interval:    cfg.RiskSweepInterval,
		})
		accrualJob := worker.NewAccrualJob(worker.AccrualJobConfig{
			Accrual:  accrualUC,
			Logger:   slogger.Logger,
			Metrics:  m,
			Retrier:  retrier,
			Interval: cfg.AccrualInterval,
		})
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(slogger.Logger),
			Logger:     slogger.Logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		})

		go func() { _ = riskMonitor.Start(workerCtx) }()
		go func() { _ = accrualJob.Start(workerCtx) }()
		go func() { _ = publisher.Start(workerCtx) }()
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newRateOracle picks the oracle implementation from config. An explicit
// ORACLE_URL selects the live feed; otherwise the fixed development rate is
// served.
func newRateOracle(cfg *config.Config, cache usecase.Cache) usecase.RateOracle {
	if cfg.OracleURL != "" {
		return oracle.NewHTTPOracle(cfg.OracleURL, cfg.OracleTimeout, cache, cfg.OracleCacheTTL)
	}
	return oracle.NewFixedOracle(cfg.OracleFixedRate)
}
