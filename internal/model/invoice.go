package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice status values.
const (
	InvoicePending  = "pending"
	InvoiceRendered = "rendered"
	InvoiceSent     = "sent"
	InvoiceFailed   = "failed"
)

// Invoice is the rendered document of a fully paid sale. It snapshots the
// tax breakdown at render time; the sale itself does not store taxes.
type Invoice struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	SaleID     uint            `gorm:"not null;index"`
	SaleNumber string          `gorm:"type:varchar(40);not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TPS        decimal.Decimal `gorm:"type:decimal(12,2);not null;column:tps"`
	TVQ        decimal.Decimal `gorm:"type:decimal(12,2);not null;column:tvq"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pending'"`
	// PDFPath points inside PDF_STORAGE_PATH
	PDFPath *string `gorm:"column:pdf_path"`
	SentTo  *string
	// Retry fields used by the retry ticker to re-attempt failed deliveries
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
