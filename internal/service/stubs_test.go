package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// All stubs return a nil DB, so services run their transaction bodies
// directly. FindByIDForUpdate hands out copies; only SaveTotalsTx writes the
// payment columns back, which mimics a rollback when a step fails.

type stubSaleRepo struct {
	sales      map[uint]*model.Sale
	nextID     uint
	nextItemID uint
	nextPayID  uint
	seq        int
	// dupCreates makes the next n Create calls fail with ErrDuplicatedKey.
	dupCreates int
	dealers    *stubDealerRepo
	products   *stubProductRepo
}

func newStubSaleRepo(dealers *stubDealerRepo, products *stubProductRepo) *stubSaleRepo {
	return &stubSaleRepo{sales: map[uint]*model.Sale{}, dealers: dealers, products: products}
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) NextSaleNumber(_ context.Context, _ *gorm.DB) (string, error) {
	r.seq++
	return fmt.Sprintf("%s%06d", repository.SaleNumberPrefix, r.seq), nil
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if r.dupCreates > 0 {
		r.dupCreates--
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.sales {
		if existing.Number == s.Number {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	for i := range s.Items {
		r.nextItemID++
		s.Items[i].ID = r.nextItemID
		s.Items[i].SaleID = s.ID
	}
	stored := cloneSale(s)
	r.sales[s.ID] = stored
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uint) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := cloneSale(s)
	if r.dealers != nil {
		out.Dealer = r.dealers.dealers[s.DealerID]
	}
	if r.products != nil {
		for i := range out.Items {
			out.Items[i].Product = r.products.products[out.Items[i].ProductID]
		}
	}
	return out, nil
}

func (r *stubSaleRepo) ListByDealer(_ context.Context, dealerID uint, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.DealerID != dealerID {
			continue
		}
		if filter.Status != "" && string(s.State().Status()) != filter.Status {
			continue
		}
		out = append(out, *cloneSale(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListOpenByDealer(_ context.Context, dealerID uint) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.DealerID == dealerID && !s.Paid {
			out = append(out, *cloneSale(s))
		}
	}
	return out, nil
}

func (r *stubSaleRepo) FindByIDForUpdate(_ *gorm.DB, id uint) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneSale(s), nil
}

func (r *stubSaleRepo) SaveTotalsTx(_ *gorm.DB, s *model.Sale) error {
	stored, ok := r.sales[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.PaymentMethod = s.PaymentMethod
	// decimal(5,2) column
	stored.DiscountPercent = s.DiscountPercent.Round(2)
	stored.Subtotal = s.Subtotal
	stored.Discount = s.Discount
	stored.Total = s.Total
	stored.Paid = s.Paid
	stored.PaidAmount = s.PaidAmount
	stored.PaidAt = s.PaidAt
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *stubSaleRepo) CreateItemTx(_ *gorm.DB, item *model.SaleItem) error {
	stored, ok := r.sales[item.SaleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.nextItemID++
	item.ID = r.nextItemID
	stored.Items = append(stored.Items, *item)
	return nil
}

func (r *stubSaleRepo) FindItemTx(_ *gorm.DB, saleID, itemID uint) (*model.SaleItem, error) {
	stored, ok := r.sales[saleID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, it := range stored.Items {
		if it.ID == itemID {
			cp := it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) DeleteItemTx(_ *gorm.DB, itemID uint) error {
	for _, s := range r.sales {
		for i, it := range s.Items {
			if it.ID == itemID {
				s.Items = append(s.Items[:i], s.Items[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) SumItemsTx(_ *gorm.DB, saleID uint) (decimal.Decimal, error) {
	stored, ok := r.sales[saleID]
	if !ok {
		return decimal.Zero, gorm.ErrRecordNotFound
	}
	sum := decimal.Zero
	for _, it := range stored.Items {
		sum = sum.Add(it.LineTotal)
	}
	return sum, nil
}

func (r *stubSaleRepo) CreatePaymentTx(_ *gorm.DB, p *model.SalePayment) error {
	stored, ok := r.sales[p.SaleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.nextPayID++
	p.ID = r.nextPayID
	p.CreatedAt = time.Now()
	stored.Payments = append(stored.Payments, *p)
	return nil
}

func (r *stubSaleRepo) DeleteTx(_ *gorm.DB, id uint) error {
	if _, ok := r.sales[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.sales, id)
	return nil
}

func cloneSale(s *model.Sale) *model.Sale {
	cp := *s
	cp.Items = append([]model.SaleItem(nil), s.Items...)
	cp.Payments = append([]model.SalePayment(nil), s.Payments...)
	return &cp
}

// stubProductRepo keeps stock in memory with the same floor rule as the
// conditional UPDATE of the GORM repository.
type stubProductRepo struct {
	products map[uint]*model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: map[uint]*model.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	out, _, err := r.List(ctx, repository.ProductFilter{})
	return out, err
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, id uint, delta int, floor bool) (*int, bool, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, false, nil
	}
	if p.Stock == nil {
		return nil, true, nil
	}
	next := *p.Stock + delta
	if floor && delta < 0 && next < 0 {
		return nil, false, nil
	}
	p.Stock = &next
	after := next
	return &after, true, nil
}

func (r *stubProductRepo) stock(id uint) int {
	if s := r.products[id].Stock; s != nil {
		return *s
	}
	return 0
}

type stubDealerRepo struct {
	dealers map[uint]*model.Dealer
	nextID  uint
}

var _ repository.DealerRepository = (*stubDealerRepo)(nil)

func newStubDealerRepo(dealers ...*model.Dealer) *stubDealerRepo {
	r := &stubDealerRepo{dealers: map[uint]*model.Dealer{}}
	for _, d := range dealers {
		r.dealers[d.ID] = d
		if d.ID > r.nextID {
			r.nextID = d.ID
		}
	}
	return r
}

func (r *stubDealerRepo) Create(_ context.Context, d *model.Dealer) error {
	r.nextID++
	d.ID = r.nextID
	r.dealers[d.ID] = d
	return nil
}

func (r *stubDealerRepo) FindByID(_ context.Context, id uint) (*model.Dealer, error) {
	d, ok := r.dealers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *stubDealerRepo) List(_ context.Context, onlyActive bool) ([]model.Dealer, error) {
	var out []model.Dealer
	for _, d := range r.dealers {
		if onlyActive && !d.Active {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubDealerRepo) Update(_ context.Context, d *model.Dealer) error {
	if _, ok := r.dealers[d.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *d
	r.dealers[d.ID] = &cp
	return nil
}

type stubMovementRepo struct {
	movements []model.StockMovement
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	m.ID = uint(len(r.movements) + 1)
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) netDelta(productID uint) int {
	n := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			n += m.Delta
		}
	}
	return n
}

type stubInvoiceQueue struct {
	saleIDs []uint
}

func (q *stubInvoiceQueue) EnqueueInvoice(_ context.Context, saleID uint) error {
	q.saleIDs = append(q.saleIDs, saleID)
	return nil
}

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
