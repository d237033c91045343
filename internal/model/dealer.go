package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dealer is a wholesale customer. Sales look up its default discount; they
// never copy or own it.
type Dealer struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	CompanyName     string          `gorm:"type:varchar(200);not null;index"`
	Email           *string         `gorm:"type:varchar(200)"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
