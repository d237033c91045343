package worker

// invoice_worker.go
// Turns a fully paid sale into an invoice row plus a PDF on disk, then
// queues delivery to the dealer when mail is enabled.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/money"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InvoiceJobPayload is the job envelope sent to QueueInvoice.
type InvoiceJobPayload struct {
	SaleID uint `json:"sale_id"`
}

// EmailQueue is the part of Dispatcher the workers need.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// RenderFunc writes the invoice PDF and returns its path.
type RenderFunc func(sale *model.Sale, businessName, storagePath string) (string, error)

type InvoiceWorker struct {
	sales        repository.SaleRepository
	invoices     repository.InvoiceRepository
	emails       EmailQueue
	render       RenderFunc
	businessName string
	storagePath  string
	mailEnabled  bool
}

type InvoiceWorkerConfig struct {
	BusinessName string
	StoragePath  string
	MailEnabled  bool
}

func NewInvoiceWorker(
	sales repository.SaleRepository,
	invoices repository.InvoiceRepository,
	emails EmailQueue,
	cfg InvoiceWorkerConfig,
) *InvoiceWorker {
	return &InvoiceWorker{
		sales:        sales,
		invoices:     invoices,
		emails:       emails,
		render:       infra.GenerateInvoicePDF,
		businessName: cfg.BusinessName,
		storagePath:  cfg.StoragePath,
		mailEnabled:  cfg.MailEnabled,
	}
}

// Process handles a single invoice job:
//  1. Load the sale with dealer and items
//  2. Skip it if the payment was cancelled meanwhile or already invoiced
//  3. Render the PDF (retried with backoff)
//  4. Store the invoice row with the tax snapshot
//  5. Queue the email job if the dealer has an address
func (w *InvoiceWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload InvoiceJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invoice_worker: invalid payload")
		return nil
	}

	sale, err := w.sales.FindByID(ctx, payload.SaleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Uint("sale_id", payload.SaleID).Msg("invoice_worker: sale no longer exists")
		return nil
	}
	if err != nil {
		return err
	}
	if !sale.Paid {
		log.Info().Uint("sale_id", sale.ID).Msg("invoice_worker: sale is not fully paid anymore, skipping")
		return nil
	}
	if prev, err := w.invoices.FindBySaleID(ctx, sale.ID); err == nil && sale.PaidAt != nil && !prev.CreatedAt.Before(*sale.PaidAt) {
		log.Info().Uint("sale_id", sale.ID).Uint("invoice_id", prev.ID).Msg("invoice_worker: already invoiced")
		return nil
	}

	var pdfPath string
	err = withRetry(ctx, 3, func(attempt int) error {
		path, err := w.render(sale, w.businessName, w.storagePath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Uint("sale_id", sale.ID).Msg("invoice_worker: render failed")
			return err
		}
		pdfPath = path
		return nil
	})
	if err != nil {
		return fmt.Errorf("render invoice for %s: %w", sale.Number, err)
	}

	b := money.FromDiscount(sale.Subtotal, sale.Discount, sale.DiscountPercent)
	inv := &model.Invoice{
		SaleID:     sale.ID,
		SaleNumber: sale.Number,
		Subtotal:   b.Subtotal,
		Discount:   b.Discount,
		TPS:        b.TPS,
		TVQ:        b.TVQ,
		GrandTotal: b.GrandTotal,
		Status:     model.InvoiceRendered,
		PDFPath:    &pdfPath,
	}
	if err := w.invoices.Create(ctx, inv); err != nil {
		return err
	}
	log.Info().Uint("sale_id", sale.ID).Str("pdf", pdfPath).Msg("invoice_worker: invoice rendered")

	if !w.mailEnabled || sale.Dealer == nil || sale.Dealer.Email == nil || *sale.Dealer.Email == "" {
		return nil
	}
	to := *sale.Dealer.Email
	inv.SentTo = &to
	inv.Status = model.InvoicePending
	if err := w.invoices.Update(ctx, inv); err != nil {
		return err
	}
	if err := w.emails.EnqueueEmail(ctx, EmailJobPayload{InvoiceID: inv.ID}); err != nil {
		// hand it to the retry ticker instead of losing the delivery
		msg := err.Error()
		next := time.Now().Add(computeRetryBackoff(1))
		inv.Status = model.InvoiceFailed
		inv.LastError = &msg
		inv.NextRetryAt = &next
		_ = w.invoices.Update(ctx, inv)
		log.Warn().Err(err).Uint("invoice_id", inv.ID).Msg("invoice_worker: failed to enqueue email")
	}
	return nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
