package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the slice of the storefront catalog the ledger reads.
// Stock is nil when the product is not inventory-tracked.
type Product struct {
	ID    uint            `gorm:"primaryKey;autoIncrement"`
	Name  string          `gorm:"type:varchar(200);not null;index"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock *int
	// PackSize is the number of base units in one box; nil means sold by unit.
	PackSize  *int
	PackLabel *string `gorm:"type:varchar(60)"`
	// FamilyID groups size/weight variants of the same item explicitly.
	FamilyID *uint `gorm:"index"`
	// GroupKey is a legacy explicit grouping used before families existed.
	GroupKey  *string `gorm:"type:varchar(200)"`
	Active    bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseUnits converts a box count into base units using the pack size.
func (p *Product) BaseUnits(boxes int) int {
	if p.PackSize == nil || *p.PackSize < 1 {
		return boxes
	}
	return boxes * *p.PackSize
}
