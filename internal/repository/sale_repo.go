package repository

import (
	"context"
	"fmt"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleNumberPrefix marks manually created dealer sales.
const SaleNumberPrefix = "SAL-"

// SaleFilter narrows a dealer's sale list.
type SaleFilter struct {
	Status string // UNPAID | PARTIALLY_PAID | FULLY_PAID | "" (all)
	Page   int
	Limit  int
}

// SaleRepository stores sales, their items and the payment log.
// Methods ending in Tx must be given the transaction opened by the caller.
type SaleRepository interface {
	NextSaleNumber(ctx context.Context, tx *gorm.DB) (string, error)
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	ListByDealer(ctx context.Context, dealerID uint, filter SaleFilter) ([]model.Sale, int64, error)
	ListOpenByDealer(ctx context.Context, dealerID uint) ([]model.Sale, error)

	// FindByIDForUpdate locks the sale row until the transaction ends and
	// loads its items.
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Sale, error)
	SaveTotalsTx(tx *gorm.DB, s *model.Sale) error
	CreateItemTx(tx *gorm.DB, item *model.SaleItem) error
	FindItemTx(tx *gorm.DB, saleID, itemID uint) (*model.SaleItem, error)
	DeleteItemTx(tx *gorm.DB, itemID uint) error
	SumItemsTx(tx *gorm.DB, saleID uint) (decimal.Decimal, error)
	CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error
	DeleteTx(tx *gorm.DB, id uint) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) NextSaleNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	// PostgreSQL sequence, created by the schema patches
	var num int64
	if err := tx.WithContext(ctx).Raw("SELECT nextval('sales_number_seq')").Scan(&num).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", SaleNumberPrefix, num), nil
}

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Dealer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) ListByDealer(ctx context.Context, dealerID uint, filter SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("dealer_id = ?", dealerID)
	switch model.PaymentStatus(filter.Status) {
	case model.StatusFullyPaid:
		q = q.Where("paid = true")
	case model.StatusPartiallyPaid:
		q = q.Where("paid = false AND paid_amount > 0")
	case model.StatusUnpaid:
		q = q.Where("paid = false AND paid_amount = 0")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListOpenByDealer(ctx context.Context, dealerID uint) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("dealer_id = ? AND paid = false", dealerID).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Sale, error) {
	var s model.Sale
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("sale_id = ?", id).Order("id ASC").Find(&s.Items).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) SaveTotalsTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Model(&model.Sale{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"payment_method":   s.PaymentMethod,
		"discount_percent": s.DiscountPercent,
		"subtotal":         s.Subtotal,
		"discount":         s.Discount,
		"total":            s.Total,
		"paid":             s.Paid,
		"paid_amount":      s.PaidAmount,
		"paid_at":          s.PaidAt,
	}).Error
}

func (r *saleRepo) CreateItemTx(tx *gorm.DB, item *model.SaleItem) error {
	return tx.Create(item).Error
}

func (r *saleRepo) FindItemTx(tx *gorm.DB, saleID, itemID uint) (*model.SaleItem, error) {
	var item model.SaleItem
	if err := tx.Where("id = ? AND sale_id = ?", itemID, saleID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *saleRepo) DeleteItemTx(tx *gorm.DB, itemID uint) error {
	return tx.Delete(&model.SaleItem{}, itemID).Error
}

func (r *saleRepo) SumItemsTx(tx *gorm.DB, saleID uint) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Model(&model.SaleItem{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(line_total), 0)").
		Row().Scan(&sum)
	return sum, err
}

func (r *saleRepo) CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error {
	return tx.Create(p).Error
}

func (r *saleRepo) DeleteTx(tx *gorm.DB, id uint) error {
	// items and payments also go through ON DELETE CASCADE; deleting them
	// explicitly keeps the behaviour independent of the constraint
	if err := tx.Where("sale_id = ?", id).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("sale_id = ?", id).Delete(&model.SalePayment{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Sale{}, id).Error
}
