package model

import "time"

// Stock movement kinds.
const (
	MovementSale        = "sale"
	MovementSaleAppend  = "sale_append"
	MovementItemRemoved = "item_removed"
	MovementSaleDeleted = "sale_deleted"
)

// StockMovement records every stock delta the ledger applies.
// StockBefore/StockAfter stay nil for untracked products.
type StockMovement struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ProductID   uint   `gorm:"not null;index"`
	Kind        string `gorm:"type:varchar(20);not null"`
	Delta       int    `gorm:"not null"` // positive = restored, negative = taken
	StockBefore *int
	StockAfter  *int
	Reason      string
	SaleID      *uint `gorm:"index"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockMovement) TableName() string { return "stock_movements" }
