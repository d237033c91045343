package repository

import (
	"context"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	FindBySaleID(ctx context.Context, saleID uint) (*model.Invoice, error)
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	Update(ctx context.Context, inv *model.Invoice) error
	// ListDueForRetry returns failed deliveries whose next_retry_at has passed.
	ListDueForRetry(ctx context.Context, now time.Time, limit int) ([]model.Invoice, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindBySaleID(ctx context.Context, saleID uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("id DESC").First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *invoiceRepo) ListDueForRetry(ctx context.Context, now time.Time, limit int) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.InvoiceFailed, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}
