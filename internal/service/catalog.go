package service

import (
	"context"
	"errors"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductCatalog is the ledger's narrow view of the product catalog.
type ProductCatalog interface {
	// GetProduct returns an active product or a NotFound/Validation error.
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	GetPrice(ctx context.Context, productID uint) (decimal.Decimal, error)
	// GetStock returns nil when the product does not track stock.
	GetStock(ctx context.Context, productID uint) (*int, error)
	// AdjustStock runs inside the caller's transaction. See
	// repository.ProductRepository.AdjustStockTx for floor semantics.
	AdjustStock(tx *gorm.DB, productID uint, delta int, floor bool) (after *int, applied bool, err error)
}

type productCatalog struct {
	repo repository.ProductRepository
}

func NewProductCatalog(repo repository.ProductRepository) ProductCatalog {
	return &productCatalog{repo: repo}
}

func (c *productCatalog) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	p, err := c.repo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product %d not found", productID)
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperr.Validation("product %q is inactive and cannot be sold", p.Name)
	}
	return p, nil
}

func (c *productCatalog) GetPrice(ctx context.Context, productID uint) (decimal.Decimal, error) {
	p, err := c.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Price, nil
}

func (c *productCatalog) GetStock(ctx context.Context, productID uint) (*int, error) {
	p, err := c.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.Stock, nil
}

func (c *productCatalog) AdjustStock(tx *gorm.DB, productID uint, delta int, floor bool) (*int, bool, error) {
	return c.repo.AdjustStockTx(tx, productID, delta, floor)
}
