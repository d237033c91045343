package dto

import "github.com/shopspring/decimal"

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Name  string `form:"name"`
	Page  int    `form:"page,default=1"    validate:"min=1"`
	Limit int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type ProductResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     *int            `json:"stock"`
	PackSize  *int            `json:"pack_size"`
	PackLabel *string         `json:"pack_label"`
	FamilyID  *uint           `json:"family_id"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// VariantsResponse lists the size/weight variants a product belongs to,
// ordered by weight. Empty when the product has no variants.
type VariantsResponse struct {
	ProductID uint              `json:"product_id"`
	Variants  []ProductResponse `json:"variants"`
}

// StockMovementFilter is bound from the query string of GET /v1/stock-movements.
type StockMovementFilter struct {
	ProductID *uint  `form:"product_id"`
	SaleID    *uint  `form:"sale_id"`
	Kind      string `form:"kind"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=100"`
}

type StockMovementResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Kind        string `json:"kind"`
	Delta       int    `json:"delta"`
	StockBefore *int   `json:"stock_before"`
	StockAfter  *int   `json:"stock_after"`
	Reason      string `json:"reason"`
	SaleID      *uint  `json:"sale_id"`
	CreatedAt   string `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
}
