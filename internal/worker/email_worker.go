package worker

// email_worker.go
// Delivers rendered invoices through the SMTP relay behind a circuit
// breaker. Failures are recorded on the invoice row and picked up by the
// retry ticker; exhausted deliveries go to the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MaxDeliveryRetries bounds how often the ticker re-sends one invoice.
const MaxDeliveryRetries = 5

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	InvoiceID uint `json:"invoice_id"`
}

// InvoiceMailer is satisfied by *infra.Mailer.
type InvoiceMailer interface {
	SendInvoice(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	mailer   InvoiceMailer
	breaker  *infra.CircuitBreaker
	invoices repository.InvoiceRepository
	rdb      *redis.Client
	now      func() time.Time
}

// NewEmailWorker wires the mailer; rdb is only used for the DLQ and may be nil.
func NewEmailWorker(mailer InvoiceMailer, breaker *infra.CircuitBreaker, invoices repository.InvoiceRepository, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, breaker: breaker, invoices: invoices, rdb: rdb, now: time.Now}
}

// Process sends one invoice. Delivery failures are handled here, so the
// pool only retries when the invoice row itself cannot be read or saved.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}

	inv, err := w.invoices.FindByID(ctx, payload.InvoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Uint("invoice_id", payload.InvoiceID).Msg("email_worker: invoice not found")
		return nil
	}
	if err != nil {
		return err
	}
	if inv.Status == model.InvoiceSent {
		return nil
	}
	if inv.SentTo == nil || *inv.SentTo == "" || inv.PDFPath == nil {
		log.Warn().Uint("invoice_id", inv.ID).Msg("email_worker: no recipient or PDF, skipping")
		return nil
	}

	subject := fmt.Sprintf("Invoice %s", inv.SaleNumber)
	body := fmt.Sprintf("Please find attached invoice %s.\nTotal (taxes included): $%s",
		inv.SaleNumber, inv.GrandTotal.StringFixed(2))

	sendErr := w.breaker.Execute(func() error {
		return w.mailer.SendInvoice(*inv.SentTo, subject, body, *inv.PDFPath)
	})
	if sendErr != nil {
		w.recordFailure(ctx, inv, sendErr)
		return w.invoices.Update(ctx, inv)
	}

	inv.Status = model.InvoiceSent
	inv.LastError = nil
	inv.NextRetryAt = nil
	if err := w.invoices.Update(ctx, inv); err != nil {
		return err
	}
	log.Info().Uint("invoice_id", inv.ID).Str("to", *inv.SentTo).Msg("email_worker: invoice sent")
	return nil
}

func (w *EmailWorker) recordFailure(ctx context.Context, inv *model.Invoice, sendErr error) {
	msg := sendErr.Error()
	inv.Status = model.InvoiceFailed
	inv.LastError = &msg
	inv.RetryCount++

	if inv.RetryCount >= MaxDeliveryRetries {
		inv.NextRetryAt = nil
		data, _ := json.Marshal(EmailJobPayload{InvoiceID: inv.ID})
		SendToDLQ(ctx, w.rdb, QueueEmail, Job{Type: JobEmail, Payload: data, Attempts: inv.RetryCount},
			fmt.Sprintf("max deliveries (%d) exceeded: %s", MaxDeliveryRetries, msg))
		log.Error().Uint("invoice_id", inv.ID).Int("retries", inv.RetryCount).Msg("email_worker: giving up on delivery")
		return
	}

	next := w.now().Add(computeRetryBackoff(inv.RetryCount))
	inv.NextRetryAt = &next
	log.Warn().Err(sendErr).
		Uint("invoice_id", inv.ID).
		Int("retry_count", inv.RetryCount).
		Time("next_retry_at", next).
		Msg("email_worker: delivery failed, scheduled retry")
}

// computeRetryBackoff doubles from one minute per failure, capped at an hour.
func computeRetryBackoff(retries int) time.Duration {
	if retries < 1 {
		retries = 1
	}
	d := time.Minute << uint(retries-1)
	if d > time.Hour || d <= 0 {
		return time.Hour
	}
	return d
}
