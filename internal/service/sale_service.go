package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/dto"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/money"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderNumberPrefix marks sales imported from storefront orders.
const OrderNumberPrefix = "ORD-"

// maxNumberAttempts bounds sale-number generation: one retry after a
// unique-key collision, then ConflictError.
const maxNumberAttempts = 2

// InvoiceQueue receives sales that just became fully paid.
type InvoiceQueue interface {
	EnqueueInvoice(ctx context.Context, saleID uint) error
}

type SaleService interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	ImportOrder(ctx context.Context, req dto.ImportOrderRequest) (*dto.SaleResponse, error)
	AddItem(ctx context.Context, saleID, productID uint, quantity int) (*dto.SaleItemResponse, error)
	RemoveItem(ctx context.Context, saleID, itemID uint) error
	RecalculateTotals(ctx context.Context, saleID uint) (*dto.SaleResponse, error)
	RecordPayment(ctx context.Context, saleID uint, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	CancelPayment(ctx context.Context, saleID uint) error
	GetSale(ctx context.Context, id uint) (*dto.SaleResponse, error)
	ListSalesForDealer(ctx context.Context, dealerID uint, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	GetOutstandingDebt(ctx context.Context, saleID uint) (*dto.DebtResponse, error)
	GetDealerBalance(ctx context.Context, dealerID uint) (*dto.DealerBalanceResponse, error)
	DeleteSale(ctx context.Context, id uint) error
}

type saleService struct {
	repo     repository.SaleRepository
	catalog  ProductCatalog
	dealers  DealerDirectory
	stock    StockLedger
	invoices InvoiceQueue
	now      func() time.Time
}

// NewSaleService wires the ledger. invoices may be nil, in which case no
// invoice jobs are queued.
func NewSaleService(
	repo repository.SaleRepository,
	catalog ProductCatalog,
	dealers DealerDirectory,
	stock StockLedger,
	invoices InvoiceQueue,
) SaleService {
	return &saleService{
		repo:     repo,
		catalog:  catalog,
		dealers:  dealers,
		stock:    stock,
		invoices: invoices,
		now:      time.Now,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func saleLookupErr(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("sale %d not found", id)
	}
	return err
}

type resolvedLine struct {
	productID uint
	quantity  int
	unitPrice decimal.Decimal
}

// ── CreateSale ────────────────────────────────────────────────────────────────
//   1. Validate input and resolve dealer discount
//   2. Resolve prices and pre-check stock (outside TX)
//   3. BEGIN TX: nextval number, insert sale+items, take stock, log payment
//   4. COMMIT (retry once on a number collision)
//   5. (async) queue the invoice if the sale is already fully paid

func (s *saleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("a sale needs at least one item")
	}
	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	percent, err := s.effectivePercent(ctx, req.DealerID, req.DiscountPercent)
	if err != nil {
		return nil, err
	}

	lines := make([]resolvedLine, 0, len(req.Items))
	wanted := make(map[uint]int)
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be greater than zero")
		}
		price, err := s.catalog.GetPrice(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, resolvedLine{productID: it.ProductID, quantity: it.Quantity, unitPrice: price})
		wanted[it.ProductID] += it.Quantity
	}
	for productID, qty := range wanted {
		if err := s.stock.Check(ctx, productID, qty); err != nil {
			return nil, err
		}
	}

	var sale *model.Sale
	for attempt := 1; ; attempt++ {
		sale, err = s.buildSale(model.OriginManual, req.DealerID, method, percent, req.PaidAmount, req.Notes, lines)
		if err != nil {
			return nil, err
		}
		err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			number, err := s.repo.NextSaleNumber(ctx, tx)
			if err != nil {
				return err
			}
			sale.Number = number
			if err := s.repo.Create(ctx, tx, sale); err != nil {
				return err
			}
			for _, it := range sale.Items {
				if err := s.stock.Take(tx, it.ProductID, it.Quantity, model.MovementSale, sale.ID, "sale "+number); err != nil {
					return err
				}
			}
			return s.logInitialPaymentTx(tx, sale)
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < maxNumberAttempts {
			log.Warn().Str("number", sale.Number).Msg("sale number collision, retrying with a fresh number")
			continue
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("sale number %s already exists", sale.Number)
		}
		if err != nil {
			return nil, err
		}
		break
	}

	log.Info().
		Uint("sale_id", sale.ID).
		Str("number", sale.Number).
		Uint("dealer_id", sale.DealerID).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale created")

	if sale.Paid {
		s.queueInvoice(ctx, sale.ID)
	}
	return s.GetSale(ctx, sale.ID)
}

// ── ImportOrder ───────────────────────────────────────────────────────────────
// A storefront order becomes a read-only dealer sale. The storefront already
// took stock when the order was placed, so no stock moves here.

func (s *saleService) ImportOrder(ctx context.Context, req dto.ImportOrderRequest) (*dto.SaleResponse, error) {
	orderNumber := strings.TrimSpace(req.OrderNumber)
	if orderNumber == "" {
		return nil, apperr.Validation("order number is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("a sale needs at least one item")
	}
	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	percent, err := s.effectivePercent(ctx, req.DealerID, req.DiscountPercent)
	if err != nil {
		return nil, err
	}

	lines := make([]resolvedLine, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be greater than zero")
		}
		if it.UnitPrice.IsNegative() {
			return nil, apperr.Validation("unit price cannot be negative")
		}
		price, err := s.catalog.GetPrice(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if it.UnitPrice.IsPositive() {
			price = money.Round2(it.UnitPrice)
		}
		lines = append(lines, resolvedLine{productID: it.ProductID, quantity: it.Quantity, unitPrice: price})
	}

	sale, err := s.buildSale(model.OriginImportedOrder, req.DealerID, method, percent, req.PaidAmount, req.Notes, lines)
	if err != nil {
		return nil, err
	}
	sale.Number = OrderNumberPrefix + orderNumber

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return err
		}
		return s.logInitialPaymentTx(tx, sale)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("order %s was already imported", orderNumber)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("sale_id", sale.ID).
		Str("number", sale.Number).
		Uint("dealer_id", sale.DealerID).
		Msg("order imported")

	if sale.Paid {
		s.queueInvoice(ctx, sale.ID)
	}
	return s.GetSale(ctx, sale.ID)
}

// buildSale assembles an unsaved sale with priced items, totals and any
// initial payment. A collecting method without an amount means paid in full.
func (s *saleService) buildSale(
	origin model.Origin,
	dealerID uint,
	method model.PaymentMethod,
	percent decimal.Decimal,
	paidAmount *decimal.Decimal,
	notes *string,
	lines []resolvedLine,
) (*model.Sale, error) {
	sale := &model.Sale{
		Origin:        origin,
		DealerID:      dealerID,
		PaymentMethod: model.MethodUnpaid,
		Notes:         notes,
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		lineTotal := money.LineTotal(l.quantity, l.unitPrice)
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID: l.productID,
			Quantity:  l.quantity,
			UnitPrice: l.unitPrice,
			LineTotal: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	now := s.now()
	if err := sale.Reprice(subtotal, percent, now); err != nil {
		return nil, err
	}

	if !method.Collects() {
		if paidAmount != nil && !paidAmount.IsZero() {
			return nil, apperr.Validation("payment method %s cannot carry a paid amount", method)
		}
		return sale, nil
	}
	amount := sale.Total
	if paidAmount != nil {
		amount = *paidAmount
	}
	if amount.IsZero() && sale.Total.IsZero() {
		sale.PaymentMethod = method
		return sale, nil
	}
	if _, err := sale.ReceivePayment(amount, method, now); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *saleService) logInitialPaymentTx(tx *gorm.DB, sale *model.Sale) error {
	if !sale.PaidAmount.IsPositive() {
		return nil
	}
	return s.repo.CreatePaymentTx(tx, &model.SalePayment{
		SaleID: sale.ID,
		Method: sale.PaymentMethod,
		Amount: sale.PaidAmount,
		Kind:   model.PaymentKindPayment,
	})
}

// effectivePercent validates the dealer and resolves the discount percent:
// a dealer default wins over the manual percent.
func (s *saleService) effectivePercent(ctx context.Context, dealerID uint, manual *decimal.Decimal) (decimal.Decimal, error) {
	if manual != nil && !money.ValidPercent(*manual) {
		return decimal.Zero, apperr.Validation(money.PercentRule)
	}
	dealer, err := s.dealers.GetDealer(ctx, dealerID)
	if errors.Is(err, apperr.ErrNotFound) {
		return decimal.Zero, apperr.Validation("unknown dealer %d", dealerID)
	}
	if err != nil {
		return decimal.Zero, err
	}
	if !dealer.Active {
		return decimal.Zero, apperr.Validation("dealer %q is inactive", dealer.CompanyName)
	}
	return money.EffectiveDiscountPercent(dealer.DiscountPercent, manual), nil
}

// ── Item mutation ─────────────────────────────────────────────────────────────

func (s *saleService) AddItem(ctx context.Context, saleID, productID uint, quantity int) (*dto.SaleItemResponse, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var item model.SaleItem
	var settled bool
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(tx, saleID)
		if err != nil {
			return saleLookupErr(err, saleID)
		}
		if err := checkItemsMutable(sale); err != nil {
			return err
		}
		if err := s.stock.Check(ctx, productID, quantity); err != nil {
			return err
		}

		item = model.SaleItem{
			SaleID:    sale.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			LineTotal: money.LineTotal(quantity, product.Price),
		}
		if err := s.repo.CreateItemTx(tx, &item); err != nil {
			return err
		}
		if err := s.stock.Take(tx, productID, quantity, model.MovementSaleAppend, sale.ID, "append to sale "+sale.Number); err != nil {
			return err
		}
		settled, err = s.recalculateTx(tx, sale)
		return err
	})
	if err != nil {
		return nil, err
	}
	if settled {
		s.queueInvoice(ctx, saleID)
	}
	item.Product = product
	return itemToResponse(&item), nil
}

func (s *saleService) RemoveItem(ctx context.Context, saleID, itemID uint) error {
	var settled bool
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(tx, saleID)
		if err != nil {
			return saleLookupErr(err, saleID)
		}
		if err := checkItemsMutable(sale); err != nil {
			return err
		}
		item, err := s.repo.FindItemTx(tx, saleID, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("item %d not found on sale %s", itemID, sale.Number)
		}
		if err != nil {
			return err
		}

		// refuse before writing anything if the smaller total would fall
		// below what was already collected
		current, err := s.repo.SumItemsTx(tx, saleID)
		if err != nil {
			return err
		}
		probe := *sale
		if err := probe.Reprice(current.Sub(item.LineTotal), sale.DiscountPercent, s.now()); err != nil {
			return err
		}

		if err := s.repo.DeleteItemTx(tx, item.ID); err != nil {
			return err
		}
		if err := s.stock.Restore(tx, item.ProductID, item.Quantity, model.MovementItemRemoved, sale.ID, "removed from sale "+sale.Number); err != nil {
			return err
		}
		settled, err = s.recalculateTx(tx, sale)
		return err
	})
	if err != nil {
		return err
	}
	if settled {
		s.queueInvoice(ctx, saleID)
	}
	return nil
}

func checkItemsMutable(sale *model.Sale) error {
	if !sale.ItemsMutable() {
		return apperr.Capability("sale %s was imported from an order; its items are read-only", sale.Number)
	}
	if sale.Paid {
		return apperr.State(string(model.StatusFullyPaid), "sale %s is fully paid; cancel the payment before changing items", sale.Number)
	}
	return nil
}

// ── RecalculateTotals ─────────────────────────────────────────────────────────

func (s *saleService) RecalculateTotals(ctx context.Context, saleID uint) (*dto.SaleResponse, error) {
	var settled bool
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(tx, saleID)
		if err != nil {
			return saleLookupErr(err, saleID)
		}
		settled, err = s.recalculateTx(tx, sale)
		return err
	})
	if err != nil {
		return nil, err
	}
	if settled {
		s.queueInvoice(ctx, saleID)
	}
	return s.GetSale(ctx, saleID)
}

// recalculateTx derives subtotal, discount and total from the stored items
// and the sale's discount percent. It reports whether the sale settled.
func (s *saleService) recalculateTx(tx *gorm.DB, sale *model.Sale) (bool, error) {
	subtotal, err := s.repo.SumItemsTx(tx, sale.ID)
	if err != nil {
		return false, err
	}
	wasPaid := sale.Paid
	if err := sale.Reprice(subtotal, sale.DiscountPercent, s.now()); err != nil {
		return false, err
	}
	if err := s.repo.SaveTotalsTx(tx, sale); err != nil {
		return false, err
	}
	return !wasPaid && sale.Paid, nil
}

// ── Payments ──────────────────────────────────────────────────────────────────

func (s *saleService) RecordPayment(ctx context.Context, saleID uint, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if req.DiscountPercent != nil && !money.ValidPercent(*req.DiscountPercent) {
		return nil, apperr.Validation(money.PercentRule)
	}

	var sale *model.Sale
	var result model.PaymentResult
	var settled bool
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.repo.FindByIDForUpdate(tx, saleID)
		if err != nil {
			return saleLookupErr(err, saleID)
		}
		wasPaid := sale.Paid
		now := s.now()

		subtotal, err := s.repo.SumItemsTx(tx, saleID)
		if err != nil {
			return err
		}
		percent := sale.DiscountPercent
		if req.DiscountPercent != nil {
			percent = *req.DiscountPercent
		}

		if method.Collects() {
			if err := sale.Reprice(subtotal, percent, now); err != nil {
				return err
			}
			result, err = sale.ReceivePayment(req.Amount, method, now)
			if err != nil {
				return err
			}
			if err := s.repo.CreatePaymentTx(tx, &model.SalePayment{
				SaleID: sale.ID,
				Method: method,
				Amount: req.Amount,
				Kind:   model.PaymentKindPayment,
			}); err != nil {
				return err
			}
		} else {
			result, err = sale.ApplyDiscount(subtotal, percent, now)
			if err != nil {
				return err
			}
		}

		if err := s.repo.SaveTotalsTx(tx, sale); err != nil {
			return err
		}
		settled = !wasPaid && sale.Paid
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("sale_id", sale.ID).
		Str("method", string(method)).
		Str("amount", req.Amount.StringFixed(2)).
		Str("status", string(sale.State().Status())).
		Msg("payment recorded")

	if settled {
		s.queueInvoice(ctx, saleID)
	}
	return &dto.PaymentResponse{
		IsFullyPaid:     result.IsFullyPaid,
		RemainingAmount: result.RemainingAmount,
		Status:          string(sale.State().Status()),
		PaidAmount:      sale.PaidAmount,
		Total:           sale.Total,
	}, nil
}

// CancelPayment reverts a fully paid sale to unpaid and logs a reversal.
func (s *saleService) CancelPayment(ctx context.Context, saleID uint) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(tx, saleID)
		if err != nil {
			return saleLookupErr(err, saleID)
		}
		prevMethod := sale.PaymentMethod
		prevAmount := sale.PaidAmount
		if err := sale.CancelPayment(); err != nil {
			return err
		}
		if err := s.repo.SaveTotalsTx(tx, sale); err != nil {
			return err
		}
		reason := "payment cancelled"
		if err := s.repo.CreatePaymentTx(tx, &model.SalePayment{
			SaleID: sale.ID,
			Method: prevMethod,
			Amount: prevAmount.Neg(),
			Kind:   model.PaymentKindReversal,
			Reason: &reason,
		}); err != nil {
			return err
		}
		log.Info().Uint("sale_id", sale.ID).Str("reversed", prevAmount.StringFixed(2)).Msg("payment cancelled")
		return nil
	})
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uint) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, saleLookupErr(err, id)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSalesForDealer(ctx context.Context, dealerID uint, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if _, err := s.dealers.GetDealer(ctx, dealerID); err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.ListByDealer(ctx, dealerID, repository.SaleFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleListItem, 0, len(sales))
	for i := range sales {
		items = append(items, saleToListItem(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *saleService) GetOutstandingDebt(ctx context.Context, saleID uint) (*dto.DebtResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, saleLookupErr(err, saleID)
	}
	return &dto.DebtResponse{
		SaleID:          sale.ID,
		Number:          sale.Number,
		Status:          string(sale.State().Status()),
		Total:           sale.Total,
		PaidAmount:      sale.PaidAmount,
		OutstandingDebt: sale.OutstandingDebt(),
	}, nil
}

func (s *saleService) GetDealerBalance(ctx context.Context, dealerID uint) (*dto.DealerBalanceResponse, error) {
	if _, err := s.dealers.GetDealer(ctx, dealerID); err != nil {
		return nil, err
	}
	sales, err := s.repo.ListOpenByDealer(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	debt := decimal.Zero
	for i := range sales {
		debt = debt.Add(sales[i].OutstandingDebt())
	}
	return &dto.DealerBalanceResponse{
		DealerID:        dealerID,
		OpenSales:       len(sales),
		OutstandingDebt: debt,
	}, nil
}

// ── DeleteSale ────────────────────────────────────────────────────────────────
// Manual sales give their stock back. Money already collected must be
// cancelled first so the payment log never loses a settled sale silently.

func (s *saleService) DeleteSale(ctx context.Context, id uint) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			return saleLookupErr(err, id)
		}
		if sale.PaidAmount.IsPositive() {
			return apperr.State(string(sale.State().Status()), "sale %s has collected payments; cancel them before deleting", sale.Number)
		}
		if sale.Origin == model.OriginManual {
			for _, it := range sale.Items {
				if err := s.stock.Restore(tx, it.ProductID, it.Quantity, model.MovementSaleDeleted, sale.ID, "deleted sale "+sale.Number); err != nil {
					return err
				}
			}
		}
		if err := s.repo.DeleteTx(tx, id); err != nil {
			return err
		}
		log.Info().Uint("sale_id", id).Str("number", sale.Number).Msg("sale deleted")
		return nil
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func parseMethod(raw string) (model.PaymentMethod, error) {
	if raw == "" {
		return model.MethodUnpaid, nil
	}
	m := model.PaymentMethod(raw)
	if !m.Valid() {
		return "", apperr.Validation("unknown payment method %q", raw)
	}
	return m, nil
}

// queueInvoice is best effort: the sale is committed either way and the
// invoice can be rendered on demand.
func (s *saleService) queueInvoice(ctx context.Context, saleID uint) {
	if s.invoices == nil {
		return
	}
	if err := s.invoices.EnqueueInvoice(ctx, saleID); err != nil {
		log.Warn().Err(err).Uint("sale_id", saleID).Msg("invoice job not queued")
	}
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func itemToResponse(it *model.SaleItem) *dto.SaleItemResponse {
	name := ""
	if it.Product != nil {
		name = it.Product.Name
	}
	return &dto.SaleItemResponse{
		ID:          it.ID,
		ProductID:   it.ProductID,
		ProductName: name,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		LineTotal:   it.LineTotal,
	}
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for i := range sale.Items {
		items = append(items, *itemToResponse(&sale.Items[i]))
	}
	payments := make([]dto.PaymentLogResponse, 0, len(sale.Payments))
	for _, p := range sale.Payments {
		payments = append(payments, dto.PaymentLogResponse{
			Method:    string(p.Method),
			Amount:    p.Amount,
			Kind:      p.Kind,
			CreatedAt: formatTime(p.CreatedAt),
		})
	}
	dealerName := ""
	if sale.Dealer != nil {
		dealerName = sale.Dealer.CompanyName
	}
	var paidAt *string
	if sale.PaidAt != nil {
		v := formatTime(*sale.PaidAt)
		paidAt = &v
	}
	return &dto.SaleResponse{
		ID:              sale.ID,
		Number:          sale.Number,
		Origin:          string(sale.Origin),
		ItemsMutable:    sale.ItemsMutable(),
		DealerID:        sale.DealerID,
		DealerName:      dealerName,
		PaymentMethod:   string(sale.PaymentMethod),
		Status:          string(sale.State().Status()),
		DiscountPercent: sale.DiscountPercent,
		Subtotal:        sale.Subtotal,
		Discount:        sale.Discount,
		Total:           sale.Total,
		Paid:            sale.Paid,
		PaidAmount:      sale.PaidAmount,
		PaidAt:          paidAt,
		RemainingAmount: sale.Remaining(),
		OutstandingDebt: sale.OutstandingDebt(),
		Taxes:           money.FromDiscount(sale.Subtotal, sale.Discount, sale.DiscountPercent),
		Items:           items,
		Payments:        payments,
		Notes:           sale.Notes,
		CreatedAt:       formatTime(sale.CreatedAt),
		UpdatedAt:       formatTime(sale.UpdatedAt),
	}
}

func saleToListItem(sale *model.Sale) dto.SaleListItem {
	return dto.SaleListItem{
		ID:              sale.ID,
		Number:          sale.Number,
		Origin:          string(sale.Origin),
		PaymentMethod:   string(sale.PaymentMethod),
		Status:          string(sale.State().Status()),
		Subtotal:        sale.Subtotal,
		Discount:        sale.Discount,
		Total:           sale.Total,
		PaidAmount:      sale.PaidAmount,
		OutstandingDebt: sale.OutstandingDebt(),
		ItemCount:       len(sale.Items),
		CreatedAt:       formatTime(sale.CreatedAt),
	}
}
