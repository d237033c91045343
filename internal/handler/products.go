package handler

import (
	"net/http"

	"github.com/orhanozan33/epicebuhara-sub000/internal/dto"
	"github.com/orhanozan33/epicebuhara-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductsHandler is the read-only catalog plus the stock audit log.
type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List godoc
// @Summary      List active products
// @Tags         products
// @Produce      json
// @Param        name  query    string false "Name contains"
// @Param        page  query    int    false "Page"
// @Param        limit query    int    false "Page size"
// @Success      200   {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id  path     int true "Product ID"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Variants godoc
// @Summary      Size/weight variants of a product
// @Tags         products
// @Produce      json
// @Param        id  path     int true "Product ID"
// @Success      200 {object} dto.VariantsResponse
// @Router       /v1/products/{id}/variants [get]
func (h *ProductsHandler) Variants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Variants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovements godoc
// @Summary      Stock movement audit log
// @Tags         products
// @Produce      json
// @Param        product_id query    int    false "Product ID"
// @Param        sale_id    query    int    false "Sale ID"
// @Param        kind       query    string false "sale | sale_append | item_removed | sale_deleted"
// @Success      200        {object} dto.StockMovementListResponse
// @Router       /v1/stock-movements [get]
func (h *ProductsHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
