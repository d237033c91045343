package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apierror"
	"github.com/orhanozan33/epicebuhara-sub000/internal/dto"
	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"
	"github.com/orhanozan33/epicebuhara-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SalesHandler struct {
	svc          service.SaleService
	products     service.ProductService
	sales        repository.SaleRepository
	businessName string
}

// NewSalesHandler wires the sale endpoints. sales is read directly only to
// render invoice PDFs on demand.
func NewSalesHandler(svc service.SaleService, products service.ProductService, sales repository.SaleRepository, businessName string) *SalesHandler {
	return &SalesHandler{svc: svc, products: products, sales: sales, businessName: businessName}
}

// CreateSale godoc
// @Summary      Create a dealer sale
// @Description  Prices the items from the catalog, applies the dealer discount, takes stock and optionally collects a first payment, all in one transaction.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateSaleRequest true "Sale"
// @Success      201  {object} dto.SaleResponse
// @Failure      422  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ImportOrder godoc
// @Summary      Import a storefront order
// @Description  Materializes an order as a read-only sale numbered ORD-<order_number>. Stock is not moved.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body     dto.ImportOrderRequest true "Order"
// @Success      201  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales/import [post]
func (h *SalesHandler) ImportOrder(c *gin.Context) {
	var req dto.ImportOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ImportOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSale godoc
// @Summary      Get a sale
// @Description  Returns the sale with items, payment log, payment state and TPS/TVQ breakdown.
// @Tags         sales
// @Produce      json
// @Param        id  path     int true "Sale ID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteSale godoc
// @Summary      Delete a sale
// @Description  Deletes an uncollected sale. Manual sales give their stock back.
// @Tags         sales
// @Param        id  path int true "Sale ID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) DeleteSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddItem godoc
// @Summary      Add an item to a manual sale
// @Description  Quantity is in base units; boxes are converted with the product pack size. Exactly one must be given.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id   path     int                true "Sale ID"
// @Param        body body     dto.AddItemRequest true "Item"
// @Success      201  {object} dto.SaleItemResponse
// @Failure      403  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales/{id}/items [post]
func (h *SalesHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if (req.Quantity > 0) == (req.Boxes > 0) {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("give either quantity or boxes"))
		return
	}

	quantity := req.Quantity
	if req.Boxes > 0 {
		units, err := h.products.ToBaseUnits(c.Request.Context(), req.ProductID, req.Boxes)
		if err != nil {
			respondError(c, err)
			return
		}
		quantity = units
	}

	resp, err := h.svc.AddItem(c.Request.Context(), id, req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RemoveItem godoc
// @Summary      Remove an item from a manual sale
// @Tags         sales
// @Param        id     path int true "Sale ID"
// @Param        itemId path int true "Item ID"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Router       /v1/sales/{id}/items/{itemId} [delete]
func (h *SalesHandler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), id, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecalculateTotals godoc
// @Summary      Recompute sale totals
// @Description  Derives subtotal, discount and total from the stored items. Idempotent.
// @Tags         sales
// @Produce      json
// @Param        id  path     int true "Sale ID"
// @Success      200 {object} dto.SaleResponse
// @Router       /v1/sales/{id}/recalculate [post]
func (h *SalesHandler) RecalculateTotals(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.RecalculateTotals(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordPayment godoc
// @Summary      Record a payment
// @Description  Applies an optional discount change, then a partial or full payment. ODENMEDI only reprices.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id   path     int                      true "Sale ID"
// @Param        body body     dto.RecordPaymentRequest true "Payment"
// @Success      200  {object} dto.PaymentResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/sales/{id}/payments [post]
func (h *SalesHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelPayment godoc
// @Summary      Cancel the payment of a fully paid sale
// @Tags         sales
// @Param        id  path int true "Sale ID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/sales/{id}/payments [delete]
func (h *SalesHandler) CancelPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.CancelPayment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetOutstandingDebt godoc
// @Summary      Outstanding debt of a sale
// @Tags         sales
// @Produce      json
// @Param        id  path     int true "Sale ID"
// @Success      200 {object} dto.DebtResponse
// @Router       /v1/sales/{id}/debt [get]
func (h *SalesHandler) GetOutstandingDebt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetOutstandingDebt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InvoicePDF godoc
// @Summary      Render the invoice PDF of a sale
// @Tags         sales
// @Produce      application/pdf
// @Param        id  path int true "Sale ID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/invoice.pdf [get]
func (h *SalesHandler) InvoicePDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.FindByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, apierror.New(fmt.Sprintf("sale %d not found", id)))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := infra.RenderInvoice(&buf, sale, h.businessName); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="invoice_%s.pdf"`, sale.Number))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ListSalesForDealer godoc
// @Summary      List a dealer's sales
// @Tags         dealers
// @Produce      json
// @Param        id     path     int    true  "Dealer ID"
// @Param        status query    string false "UNPAID | PARTIALLY_PAID | FULLY_PAID"
// @Param        page   query    int    false "Page"
// @Param        limit  query    int    false "Page size"
// @Success      200    {object} dto.SaleListResponse
// @Router       /v1/dealers/{id}/sales [get]
func (h *SalesHandler) ListSalesForDealer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListSalesForDealer(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDealerBalance godoc
// @Summary      Total outstanding debt of a dealer
// @Tags         dealers
// @Produce      json
// @Param        id  path     int true "Dealer ID"
// @Success      200 {object} dto.DealerBalanceResponse
// @Router       /v1/dealers/{id}/balance [get]
func (h *SalesHandler) GetDealerBalance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetDealerBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
