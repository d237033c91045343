package service

import (
	"context"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"gorm.io/gorm"
)

// StockLedger moves catalog stock in lockstep with sale items and records
// every change as a StockMovement row in the same transaction.
type StockLedger interface {
	// Check is a pre-flight test outside any transaction. The conditional
	// update inside Take remains the authority.
	Check(ctx context.Context, productID uint, quantity int) error
	Take(tx *gorm.DB, productID uint, quantity int, kind string, saleID uint, reason string) error
	Restore(tx *gorm.DB, productID uint, quantity int, kind string, saleID uint, reason string) error
}

type stockLedger struct {
	catalog       ProductCatalog
	movements     repository.StockMovementRepository
	allowNegative bool
}

// NewStockLedger builds the ledger. With allowNegative false, a decrement
// that would take tracked stock below zero fails the whole operation.
func NewStockLedger(catalog ProductCatalog, movements repository.StockMovementRepository, allowNegative bool) StockLedger {
	return &stockLedger{catalog: catalog, movements: movements, allowNegative: allowNegative}
}

func (l *stockLedger) Check(ctx context.Context, productID uint, quantity int) error {
	if l.allowNegative {
		return nil
	}
	stock, err := l.catalog.GetStock(ctx, productID)
	if err != nil {
		return err
	}
	if stock != nil && *stock < quantity {
		return apperr.Validation("insufficient stock for product %d: %d available, %d requested", productID, *stock, quantity)
	}
	return nil
}

func (l *stockLedger) Take(tx *gorm.DB, productID uint, quantity int, kind string, saleID uint, reason string) error {
	after, applied, err := l.catalog.AdjustStock(tx, productID, -quantity, !l.allowNegative)
	if err != nil {
		return err
	}
	if !applied {
		return apperr.Validation("insufficient stock for product %d", productID)
	}
	return l.record(tx, productID, -quantity, after, kind, saleID, reason)
}

func (l *stockLedger) Restore(tx *gorm.DB, productID uint, quantity int, kind string, saleID uint, reason string) error {
	after, applied, err := l.catalog.AdjustStock(tx, productID, quantity, false)
	if err != nil {
		return err
	}
	if !applied {
		// product row is gone; nothing to restore into
		return apperr.NotFound("product %d not found", productID)
	}
	return l.record(tx, productID, quantity, after, kind, saleID, reason)
}

func (l *stockLedger) record(tx *gorm.DB, productID uint, delta int, after *int, kind string, saleID uint, reason string) error {
	mov := &model.StockMovement{
		ProductID:  productID,
		Kind:       kind,
		Delta:      delta,
		StockAfter: after,
		Reason:     reason,
		SaleID:     &saleID,
	}
	if after != nil {
		before := *after - delta
		mov.StockBefore = &before
	}
	return l.movements.CreateTx(tx, mov)
}
