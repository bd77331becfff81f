package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/bilans/bilans/internal/adapter/http"
	"github.com/bilans/bilans/internal/adapter/http/handler"
	postgresRepo "github.com/bilans/bilans/internal/adapter/repository/postgres"
	redisRepo "github.com/bilans/bilans/internal/adapter/repository/redis"
	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/infrastructure/config"
	"github.com/bilans/bilans/internal/infrastructure/logger"
	"github.com/bilans/bilans/internal/infrastructure/metrics"
	"github.com/bilans/bilans/internal/infrastructure/postgres"
	"github.com/bilans/bilans/internal/infrastructure/redis"
	"github.com/bilans/bilans/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	statementRepo := postgresRepo.NewStatementRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	appMetrics := metrics.New()
	matcher := domain.PartnerMatcher{MinOverlap: cfg.MatchMinOverlap}

	// Initialize use cases
	chartUC := usecase.NewChartUseCase(txManager, accountRepo, journalRepo, cache, idGen, appLogger)
	journalUC := usecase.NewJournalUseCase(txManager, journalRepo, accountRepo, idGen, retrier, appMetrics)
	reportUC := usecase.NewReportUseCase(txManager, journalRepo, appMetrics, appLogger)
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, paymentRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(
		txManager, statementRepo, invoiceRepo, paymentRepo, matcher, idGen, retrier, appMetrics, appLogger)

	// Seed the default chart when asked to
	if cfg.InitDefaultChart {
		created, err := chartUC.InitializeDefaultChart(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize default chart")
		}
		log.Info().Int("created", created).Msg("default chart of accounts ready")
	}

	// Initialize handlers
	chartHandler := handler.NewChartHandler(chartUC)
	journalHandler := handler.NewJournalHandler(journalUC)
	reportHandler := handler.NewReportHandler(reportUC)
	reconHandler := handler.NewReconciliationHandler(reconUC)
	invoiceHandler := handler.NewInvoiceHandler(invoiceUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ChartHandler:          chartHandler,
		JournalHandler:        journalHandler,
		ReportHandler:         reportHandler,
		ReconciliationHandler: reconHandler,
		InvoiceHandler:        invoiceHandler,
		HealthHandler:         healthHandler,
		IdempotencyStore:      idempotencyStore,
	})

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

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
