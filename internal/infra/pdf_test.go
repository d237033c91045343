package infra

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidSale() *model.Sale {
	paidAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	email := "orders@marche-beaubien.ca"
	return &model.Sale{
		ID:              1,
		Number:          "SAL-000042",
		Origin:          model.OriginManual,
		DealerID:        3,
		PaymentMethod:   model.MethodCash,
		DiscountPercent: decimal.NewFromInt(10),
		Subtotal:        decimal.RequireFromString("100.00"),
		Discount:        decimal.RequireFromString("10.00"),
		Total:           decimal.RequireFromString("90.00"),
		Paid:            true,
		PaidAmount:      decimal.RequireFromString("90.00"),
		PaidAt:          &paidAt,
		CreatedAt:       paidAt,
		Dealer:          &model.Dealer{ID: 3, CompanyName: "Marché Beaubien", Email: &email},
		Items: []model.SaleItem{{
			ProductID: 9,
			Quantity:  4,
			UnitPrice: decimal.RequireFromString("25.00"),
			LineTotal: decimal.RequireFromString("100.00"),
			Product:   &model.Product{ID: 9, Name: "Sumak 500g"},
		}},
	}
}

func TestRenderInvoice_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderInvoice(&buf, paidSale(), "Épicerie Buhara"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerateInvoicePDF_WritesFileNamedAfterSale(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateInvoicePDF(paidSale(), "Épicerie Buhara", filepath.Join(dir, "pdfs"))
	require.NoError(t, err)
	assert.Equal(t, "invoice_SAL-000042.pdf", filepath.Base(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
