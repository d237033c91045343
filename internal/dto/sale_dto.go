package dto

import (
	"github.com/orhanozan33/epicebuhara-sub000/internal/money"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/dealers/:id/sales.
type SaleFilter struct {
	Status string `form:"status"          validate:"omitempty,oneof=UNPAID PARTIALLY_PAID FULLY_PAID"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleListItem `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type SaleListItem struct {
	ID              uint            `json:"id"`
	Number          string          `json:"number"`
	Origin          string          `json:"origin"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	ItemCount       int             `json:"item_count"`
	CreatedAt       string          `json:"created_at"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	// Quantity is in base units; callers convert boxes before sending.
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CreateSaleRequest struct {
	DealerID      uint              `json:"dealer_id"      validate:"required"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"omitempty,oneof=NAKIT KREDI_KARTI CEK ODENMEDI"`
	// DiscountPercent is the manual discount; ignored when the dealer has a default.
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	// PaidAmount is collected at creation when the method is not ODENMEDI.
	PaidAmount *decimal.Decimal `json:"paid_amount"`
	Notes      *string          `json:"notes"`
}

type ImportedItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"required,min=1"`
	// UnitPrice is the storefront price at order time; zero means catalog price.
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
}

// ImportOrderRequest materializes a storefront order as a read-only dealer sale.
type ImportOrderRequest struct {
	OrderNumber     string                `json:"order_number"   validate:"required,max=30"`
	DealerID        uint                  `json:"dealer_id"      validate:"required"`
	Items           []ImportedItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod   string                `json:"payment_method" validate:"omitempty,oneof=NAKIT KREDI_KARTI CEK ODENMEDI"`
	DiscountPercent *decimal.Decimal      `json:"discount_percent"`
	PaidAmount      *decimal.Decimal      `json:"paid_amount"`
	Notes           *string               `json:"notes"`
}

// AddItemRequest accepts either base-unit quantity or boxes (converted with
// the product pack size by the handler).
type AddItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"omitempty,min=1"`
	Boxes     int  `json:"boxes"      validate:"omitempty,min=1"`
}

type RecordPaymentRequest struct {
	Amount          decimal.Decimal  `json:"amount"`
	PaymentMethod   string           `json:"payment_method" validate:"required,oneof=NAKIT KREDI_KARTI CEK ODENMEDI"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type PaymentLogResponse struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
	CreatedAt string          `json:"created_at"`
}

type SaleResponse struct {
	ID              uint                 `json:"id"`
	Number          string               `json:"number"`
	Origin          string               `json:"origin"`
	ItemsMutable    bool                 `json:"items_mutable"`
	DealerID        uint                 `json:"dealer_id"`
	DealerName      string               `json:"dealer_name"`
	PaymentMethod   string               `json:"payment_method"`
	Status          string               `json:"status"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	Discount        decimal.Decimal      `json:"discount"`
	Total           decimal.Decimal      `json:"total"`
	Paid            bool                 `json:"paid"`
	PaidAmount      decimal.Decimal      `json:"paid_amount"`
	PaidAt          *string              `json:"paid_at"`
	RemainingAmount decimal.Decimal      `json:"remaining_amount"`
	OutstandingDebt decimal.Decimal      `json:"outstanding_debt"`
	Taxes           money.Breakdown      `json:"taxes"`
	Items           []SaleItemResponse   `json:"items"`
	Payments        []PaymentLogResponse `json:"payments"`
	Notes           *string              `json:"notes"`
	CreatedAt       string               `json:"created_at"`
	UpdatedAt       string               `json:"updated_at"`
}

type PaymentResponse struct {
	IsFullyPaid     bool            `json:"is_fully_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Total           decimal.Decimal `json:"total"`
}

type DebtResponse struct {
	SaleID          uint            `json:"sale_id"`
	Number          string          `json:"number"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
}

type DealerBalanceResponse struct {
	DealerID        uint            `json:"dealer_id"`
	OpenSales       int             `json:"open_sales"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
}
