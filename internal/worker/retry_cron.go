package worker

// retry_cron.go
// Background goroutine that re-queues failed invoice deliveries whose
// next_retry_at has passed. It stays idle while the SMTP breaker is open.

import (
	"context"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	defaultRetryInterval  = 30 * time.Second
	defaultRetryBatchSize = 10
)

// RetryCronConfig holds the dependencies of the retry goroutine. Zero
// Interval and BatchSize fall back to 30s and 10 invoices per tick.
type RetryCronConfig struct {
	Invoices  repository.InvoiceRepository
	Emails    EmailQueue
	Breaker   *infra.CircuitBreaker
	Interval  time.Duration
	BatchSize int
}

// StartRetryCron ticks until ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultRetryInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg, time.Now())
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig, now time.Time) {
	if cfg.Breaker != nil && cfg.Breaker.State() == infra.BreakerOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultRetryBatchSize
	}
	due, err := cfg.Invoices.ListDueForRetry(ctx, now, batch)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query due deliveries")
		return
	}
	if len(due) == 0 {
		return
	}
	log.Info().Int("count", len(due)).Msg("retry_cron: re-queueing invoice deliveries")

	for i := range due {
		inv := &due[i]
		// claim the row first so the next tick does not queue it twice
		inv.Status = model.InvoicePending
		inv.NextRetryAt = nil
		if err := cfg.Invoices.Update(ctx, inv); err != nil {
			log.Error().Err(err).Uint("invoice_id", inv.ID).Msg("retry_cron: failed to claim invoice")
			continue
		}
		if err := cfg.Emails.EnqueueEmail(ctx, EmailJobPayload{InvoiceID: inv.ID}); err != nil {
			msg := err.Error()
			next := now.Add(computeRetryBackoff(inv.RetryCount))
			inv.Status = model.InvoiceFailed
			inv.LastError = &msg
			inv.NextRetryAt = &next
			_ = cfg.Invoices.Update(ctx, inv)
			log.Warn().Err(err).Uint("invoice_id", inv.ID).Msg("retry_cron: enqueue failed")
		}
	}
}
