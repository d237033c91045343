// cmd/seed/main.go creates demo dealers and catalog products.
// Usage: go run ./cmd/seed
package main

import (
	"os"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/config"
	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	email := "achat@depanneur-laurier.ca"
	dealers := []model.Dealer{
		{CompanyName: "Dépanneur Laurier", Email: &email, DiscountPercent: decimal.Zero, Active: true},
		{CompanyName: "Marché Atlas", DiscountPercent: decimal.NewFromInt(10), Active: true},
	}
	for i := range dealers {
		d := dealers[i]
		if err := db.Where("company_name = ?", d.CompanyName).FirstOrCreate(&d).Error; err != nil {
			log.Fatal().Err(err).Str("dealer", d.CompanyName).Msg("seed dealer")
		}
		log.Info().Uint("id", d.ID).Str("dealer", d.CompanyName).Msg("dealer ready")
	}

	family := uint(1)
	twelve, fifty := 12, 50
	boxLabel := "box of 12"
	products := []model.Product{
		{Name: "Sumac 250g", Price: decimal.RequireFromString("6.50"), Stock: &fifty, PackSize: &twelve, PackLabel: &boxLabel, FamilyID: &family, Active: true},
		{Name: "Sumac 1kg", Price: decimal.RequireFromString("21.00"), Stock: &fifty, FamilyID: &family, Active: true},
		{Name: "Pul Biber 500g", Price: decimal.RequireFromString("9.75"), Stock: &fifty, Active: true},
		{Name: "Pul Biber 1kg", Price: decimal.RequireFromString("17.50"), Stock: &fifty, Active: true},
		{Name: "Çay 1kg", Price: decimal.RequireFromString("14.00"), Active: true},
	}
	for i := range products {
		p := products[i]
		if err := db.Where("name = ?", p.Name).FirstOrCreate(&p).Error; err != nil {
			log.Fatal().Err(err).Str("product", p.Name).Msg("seed product")
		}
		log.Info().Uint("id", p.ID).Str("product", p.Name).Msg("product ready")
	}
}
