package model

import (
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/money"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was (or will be) settled.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "NAKIT"
	MethodCard   PaymentMethod = "KREDI_KARTI"
	MethodCheck  PaymentMethod = "CEK"
	MethodUnpaid PaymentMethod = "ODENMEDI"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodCheck, MethodUnpaid:
		return true
	}
	return false
}

// Collects reports whether the method moves money (everything but ODENMEDI).
func (m PaymentMethod) Collects() bool { return m.Valid() && m != MethodUnpaid }

// Origin records how a sale came to exist. Only manual sales accept item
// mutation; imported storefront orders are read-only invoices.
type Origin string

const (
	OriginManual        Origin = "MANUAL"
	OriginImportedOrder Origin = "IMPORTED_ORDER"
)

// Sale is the ledger aggregate. The payment columns (Paid, PaidAmount,
// PaidAt) are only changed through the methods below; read the payment
// state with State().
type Sale struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	Number          string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	Origin          Origin          `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	DealerID        uint            `gorm:"not null;index"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null;default:'ODENMEDI'"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Paid            bool            `gorm:"not null;default:false"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAt          *time.Time
	Notes           *string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Dealer   *Dealer       `gorm:"foreignKey:DealerID"`
	Items    []SaleItem    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments []SalePayment `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem is one quantity × unit price row. UnitPrice is the catalog price
// captured when the row was added.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	SaleID    uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Quantity  int             `gorm:"not null"` // base units, always > 0
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Payment log kinds.
const (
	PaymentKindPayment  = "payment"
	PaymentKindReversal = "reversal"
)

// SalePayment is an immutable log entry. Reversals carry a negative amount.
type SalePayment struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	SaleID    uint            `gorm:"not null;index"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Kind      string          `gorm:"type:varchar(20);not null"`
	Reason    *string
	CreatedAt time.Time
}

// ── Payment state ─────────────────────────────────────────────────────────────

type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "UNPAID"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusFullyPaid     PaymentStatus = "FULLY_PAID"
)

// PaymentState is a closed set: Unpaid, PartiallyPaid or FullyPaid.
type PaymentState interface {
	Status() PaymentStatus
	paymentState()
}

type Unpaid struct{}

type PartiallyPaid struct {
	PaidAmount decimal.Decimal
}

type FullyPaid struct {
	PaidAmount decimal.Decimal
	PaidAt     time.Time
}

func (Unpaid) Status() PaymentStatus        { return StatusUnpaid }
func (PartiallyPaid) Status() PaymentStatus { return StatusPartiallyPaid }
func (FullyPaid) Status() PaymentStatus     { return StatusFullyPaid }

func (Unpaid) paymentState()        {}
func (PartiallyPaid) paymentState() {}
func (FullyPaid) paymentState()     {}

// PaymentResult is what a received payment reports back to the caller.
type PaymentResult struct {
	IsFullyPaid     bool            `json:"is_fully_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// State derives the payment state from the stored columns.
func (s *Sale) State() PaymentState {
	switch {
	case s.Paid:
		st := FullyPaid{PaidAmount: s.PaidAmount}
		if s.PaidAt != nil {
			st.PaidAt = *s.PaidAt
		}
		return st
	case s.PaidAmount.IsPositive():
		return PartiallyPaid{PaidAmount: s.PaidAmount}
	default:
		return Unpaid{}
	}
}

// ItemsMutable reports whether line items may be added or removed.
func (s *Sale) ItemsMutable() bool { return s.Origin == OriginManual }

// Remaining is what can still be collected.
func (s *Sale) Remaining() decimal.Decimal {
	if s.Paid {
		return decimal.Zero
	}
	r := s.Total.Sub(s.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// OutstandingDebt is the read model used by reporting. A sale with nothing
// collected owes its full total.
func (s *Sale) OutstandingDebt() decimal.Decimal {
	switch st := s.State().(type) {
	case FullyPaid:
		return decimal.Zero
	case PartiallyPaid:
		r := s.Total.Sub(st.PaidAmount)
		if r.IsNegative() {
			return decimal.Zero
		}
		return r
	default:
		return s.Total
	}
}

// Reprice recomputes discount and total from a subtotal and discount
// percent. A fully paid sale can only be repriced to the same total, and a
// total below the amount already collected is refused. When the new total
// equals a nonzero collected amount the sale is settled.
func (s *Sale) Reprice(subtotal, percent decimal.Decimal, now time.Time) error {
	percent = money.ClampPercent(percent)
	discount := money.ComputeDiscount(subtotal, percent)
	total := subtotal.Sub(discount)

	if s.Paid && !total.Equal(s.Total) {
		return apperr.State(string(StatusFullyPaid), "sale %s is fully paid; cancel the payment before changing its total", s.Number)
	}
	if total.LessThan(s.PaidAmount) {
		return apperr.State(string(s.State().Status()),
			"new total %s would be below the %s already collected", total.StringFixed(2), s.PaidAmount.StringFixed(2))
	}

	s.Subtotal = subtotal
	s.DiscountPercent = percent
	s.Discount = discount
	s.Total = total

	if !s.Paid && s.PaidAmount.IsPositive() && money.Round2(s.PaidAmount).Equal(money.Round2(total)) {
		s.settle(now)
	}
	return nil
}

// ApplyDiscount is the ODENMEDI transition: the sale is repriced from
// subtotal with percent and nothing is collected. An untouched sale takes
// ODENMEDI as its method.
func (s *Sale) ApplyDiscount(subtotal, percent decimal.Decimal, now time.Time) (PaymentResult, error) {
	if !money.ValidPercent(percent) {
		return PaymentResult{}, apperr.Validation(money.PercentRule)
	}
	if err := s.Reprice(subtotal, percent, now); err != nil {
		return PaymentResult{}, err
	}
	if _, ok := s.State().(Unpaid); ok {
		s.PaymentMethod = MethodUnpaid
	}
	return PaymentResult{IsFullyPaid: s.Paid, RemainingAmount: s.Remaining()}, nil
}

// ReceivePayment applies a partial or full payment. Overpayment is refused.
func (s *Sale) ReceivePayment(amount decimal.Decimal, method PaymentMethod, now time.Time) (PaymentResult, error) {
	if !method.Collects() {
		return PaymentResult{}, apperr.Validation("payment method %q does not collect money", method)
	}
	if !amount.IsPositive() {
		return PaymentResult{}, apperr.Validation("amount must be greater than zero")
	}
	if !amount.Equal(money.Round2(amount)) {
		return PaymentResult{}, apperr.Validation("amount must have at most two decimals")
	}
	remaining := s.Remaining()
	if amount.GreaterThan(remaining) {
		return PaymentResult{}, apperr.Validation("amount %s exceeds remaining balance %s",
			amount.StringFixed(2), remaining.StringFixed(2))
	}

	s.PaidAmount = s.PaidAmount.Add(amount)
	s.PaymentMethod = method
	if !money.Round2(s.PaidAmount).LessThan(money.Round2(s.Total)) {
		s.settle(now)
	}
	return PaymentResult{IsFullyPaid: s.Paid, RemainingAmount: s.Remaining()}, nil
}

// CancelPayment returns a fully paid sale to unpaid. Partial payments are
// not cancellable.
func (s *Sale) CancelPayment() error {
	if !s.Paid {
		return apperr.State(string(s.State().Status()), "only a fully paid sale can have its payment cancelled")
	}
	s.Paid = false
	s.PaidAmount = decimal.Zero
	s.PaidAt = nil
	s.PaymentMethod = MethodUnpaid
	return nil
}

func (s *Sale) settle(now time.Time) {
	at := now
	s.Paid = true
	s.PaidAmount = s.Total
	s.PaidAt = &at
}
