package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	kafkaAdapter "github.com/iho/bankledger/internal/adapter/events/kafka"
	httpAdapter "github.com/iho/bankledger/internal/adapter/http"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	memoryRepo "github.com/iho/bankledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
	"github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/logging"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	workerLog := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Wire the store backend.
	var (
		pool        *pgxpool.Pool
		txManager   usecase.TransactionManager
		accountRepo usecase.AccountRepository
		recordRepo  usecase.RecordRepository
		ledgerRepo  usecase.LedgerRepository
		outboxRepo  usecase.OutboxRepository
	)

	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		log.Info().Msg("connected to postgres")

		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		txManager = postgresRepo.NewTxManager(pool)
		accountRepo = postgresRepo.NewAccountRepository(pool)
		recordRepo = postgresRepo.NewRecordRepository(pool)
		ledgerRepo = postgresRepo.NewLedgerRepository(pool)
		outboxRepo = postgresRepo.NewOutboxRepository(pool)

	case config.StoreMemory:
		store := memoryRepo.NewStore()
		txManager = store
		accountRepo = store
		recordRepo = memoryRepo.RecordStore{Store: store}
		ledgerRepo = store
		outboxRepo = memoryRepo.OutboxStore{Store: store}
		log.Warn().Msg("using in-memory store, data will not survive restarts")
	}

	// Redis is optional. Without it balance reads always hit the store and
	// idempotency keys are not honored.
	var (
		redisClient      *goredis.Client
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	idGen := postgresRepo.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, recordRepo, outboxRepo, idGen, cache, cfg.BalanceCacheTTL, m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, recordRepo, outboxRepo, idGen, m)
	recordUC := usecase.NewRecordUseCase(recordRepo)
	reconciliationUC := usecase.NewReconciliationUseCase(ledgerRepo, accountRepo, recordRepo, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		RecordHandler:      handler.NewRecordHandler(recordUC),
		ConsistencyHandler: handler.NewConsistencyHandler(reconciliationUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		Logger:             log,
	})

	// Drain the outbox in the background. Without brokers events are
	// logged, which keeps the at-least-once bookkeeping observable locally.
	var publisher eventpublisher.Publisher
	if cfg.EventsEnabled && len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafkaAdapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	} else {
		publisher = eventpublisher.NewLogPublisher(workerLog.Logger)
	}

	poller := eventpublisher.NewOutboxPoller(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     workerLog.Logger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := poller.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("outbox poller stopped")
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StoreBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
