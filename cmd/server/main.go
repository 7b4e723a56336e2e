package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/api"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/config"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/events/kafka"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/ledger"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/logging"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/metrics"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage/memory"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load(".env", os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store interfaces.LedgerStore
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal("connect to postgres", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Fatal("migrate schema", zap.Error(err))
		}
		store = postgres.NewPostgresLedgerStore(db)
	default:
		store = memory.NewMemoryLedgerStore()
	}
	logger.Info("store ready", zap.String("store", cfg.Store))

	collector := metrics.NewCollector("ledger")
	opts := []ledger.Option{
		ledger.WithLogger(logger.Named("ledger")),
		ledger.WithMetrics(collector),
	}

	if cfg.EventsEnabled() {
		publisher := kafka.NewPublisher(cfg.Kafka)
		defer publisher.Close()
		opts = append(opts, ledger.WithPublisher(publisher))
		logger.Info("publishing deposit events",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	ledgerService := ledger.NewLedger(store, opts...)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewServer(ledgerService, collector, logger.Named("http")),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
