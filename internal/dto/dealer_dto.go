package dto

import "github.com/shopspring/decimal"

type CreateDealerRequest struct {
	CompanyName     string          `json:"company_name"     validate:"required,min=2,max=200"`
	Email           *string         `json:"email"            validate:"omitempty,email"`
	DiscountPercent decimal.Decimal `json:"discount_percent" validate:"min=0,max=100"`
}

type UpdateDealerRequest struct {
	CompanyName     *string          `json:"company_name"     validate:"omitempty,min=2,max=200"`
	Email           *string          `json:"email"            validate:"omitempty,email"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	Active          *bool            `json:"active"`
}

type DealerResponse struct {
	ID              uint            `json:"id"`
	CompanyName     string          `json:"company_name"`
	Email           *string         `json:"email"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Active          bool            `json:"active"`
}
