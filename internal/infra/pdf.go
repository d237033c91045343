package infra

// pdf.go renders dealer invoices with go-pdf/fpdf on A4:
//   - business and dealer header
//   - sale number, date and payment status
//   - item table (product, quantity, unit price, line total)
//   - subtotal, discount, TPS, TVQ and grand total

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/money"

	"github.com/go-pdf/fpdf"
)

// RenderInvoice writes the invoice PDF of sale to w. The sale must carry
// its Dealer and Items.Product associations.
func RenderInvoice(w io.Writer, sale *model.Sale, businessName string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(businessName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Invoice "+sale.Number, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, sale.CreatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if sale.Dealer != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Bill to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW, 6, tr(sale.Dealer.CompanyName), "", 1, "L", false, 0, "")
		if sale.Dealer.Email != nil {
			pdf.CellFormat(contentW, 6, *sale.Dealer.Email, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	// ── Items ────────────────────────────────────────────────────────────────
	colName := contentW * 0.50
	colQty := contentW * 0.14
	colUnit := contentW * 0.18
	colLine := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colName, 7, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colUnit, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colLine, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range sale.Items {
		name := fmt.Sprintf("#%d", it.ProductID)
		if it.Product != nil {
			name = it.Product.Name
		}
		pdf.CellFormat(colName, 6, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colUnit, 6, "$"+it.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colLine, 6, "$"+it.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	b := money.FromDiscount(sale.Subtotal, sale.Discount, sale.DiscountPercent)
	labelW := colName + colQty + colUnit
	row := func(label, value string) {
		pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colLine, 6, value, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)
	row("Subtotal", "$"+b.Subtotal.StringFixed(2))
	if !b.Discount.IsZero() {
		row(fmt.Sprintf("Discount (%s%%)", b.DiscountPercent.StringFixed(2)), "-$"+b.Discount.StringFixed(2))
		row("After discount", "$"+b.AfterDiscount.StringFixed(2))
	}
	row("TPS (5%)", "$"+b.TPS.StringFixed(2))
	row("TVQ (9.975%)", "$"+b.TVQ.StringFixed(2))
	pdf.SetFont("Helvetica", "B", 11)
	row("TOTAL", "$"+b.GrandTotal.StringFixed(2))

	// ── Payment ──────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	status := string(sale.State().Status())
	if sale.PaidAt != nil {
		status += " on " + sale.PaidAt.Format("2006-01-02")
	}
	pdf.CellFormat(contentW, 5, "Payment: "+string(sale.PaymentMethod)+" / "+status, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Paid: $"+sale.PaidAmount.StringFixed(2), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render invoice: %w", err)
	}
	return nil
}

// GenerateInvoicePDF writes storagePath/invoice_<number>.pdf and returns its
// path. storagePath is created if needed.
func GenerateInvoicePDF(sale *model.Sale, businessName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(storagePath, fmt.Sprintf("invoice_%s.pdf", sale.Number))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := RenderInvoice(f, sale, businessName); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: close file: %w", err)
	}
	return path, nil
}
