package infra

import (
	"fmt"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres connection pool and brings the schema up
// to date. TranslateError makes unique violations surface as
// gorm.ErrDuplicatedKey, which the sale service retries on.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the ledger tables and applies the SQL patches GORM
// tags cannot express. Integration tests call it against a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Dealer{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
		&model.StockMovement{},
		&model.Invoice{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL. Each CHECK is added only when its
// name is not yet in pg_constraint, so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"sale number sequence",
			`CREATE SEQUENCE IF NOT EXISTS sales_number_seq START 1`},

		// a settled sale has a timestamp and collected exactly its total
		{"chk_sales_paid_consistent", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_paid_consistent') THEN
    ALTER TABLE sales ADD CONSTRAINT chk_sales_paid_consistent
      CHECK (NOT paid OR (paid_at IS NOT NULL AND paid_amount = total));
  END IF;
END $$`},
		{"chk_sales_paid_amount_range", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_paid_amount_range') THEN
    ALTER TABLE sales ADD CONSTRAINT chk_sales_paid_amount_range
      CHECK (paid_amount >= 0 AND paid_amount <= total);
  END IF;
END $$`},
		{"chk_sales_discount_range", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_discount_range') THEN
    ALTER TABLE sales ADD CONSTRAINT chk_sales_discount_range
      CHECK (discount >= 0 AND discount <= subtotal AND discount_percent BETWEEN 0 AND 100);
  END IF;
END $$`},
		{"chk_sale_items_quantity", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sale_items_quantity') THEN
    ALTER TABLE sale_items ADD CONSTRAINT chk_sale_items_quantity CHECK (quantity > 0);
  END IF;
END $$`},

		// partial index for the delivery retry ticker
		{"idx_invoices_due_retry", `
CREATE INDEX IF NOT EXISTS idx_invoices_due_retry
    ON invoices (next_retry_at)
    WHERE status = 'failed' AND next_retry_at IS NOT NULL`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
