package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/config"
	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"
	"github.com/orhanozan33/epicebuhara-sub000/internal/router"
	"github.com/orhanozan33/epicebuhara-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg.Env)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("dealer ledger stopped")
	}
	log.Info().Msg("server exited")
}

// setupLogger prints human-readable logs outside production and JSON at
// info level in production.
func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	dispatcher, mailCB := startWorkers(ctx, cfg, db, rdb)

	r, err := router.New(cfg, db, rdb, dispatcher, mailCB)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("dealer ledger listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startWorkers launches the invoice and email consumers plus the retry
// ticker. All of them stop when ctx is cancelled.
func startWorkers(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*worker.Dispatcher, *infra.CircuitBreaker) {
	mailCB := infra.NewCircuitBreaker(infra.DefaultBreakerConfig())
	dispatcher := worker.NewDispatcher(rdb)
	saleRepo := repository.NewSaleRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	invoiceWorker := worker.NewInvoiceWorker(saleRepo, invoiceRepo, dispatcher, worker.InvoiceWorkerConfig{
		BusinessName: cfg.BusinessName,
		StoragePath:  cfg.PDFStoragePath,
		MailEnabled:  cfg.InvoiceMailEnabled,
	})
	emailWorker := worker.NewEmailWorker(infra.NewMailer(cfg), mailCB, invoiceRepo, rdb)

	worker.NewPool(rdb, invoiceWorker, emailWorker).Start(ctx, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		Invoices: invoiceRepo,
		Emails:   dispatcher,
		Breaker:  mailCB,
		Interval: cfg.MailRetryInterval,
	})
	return dispatcher, mailCB
}
