package handler

import (
	"net/http"

	"github.com/orhanozan33/epicebuhara-sub000/internal/dto"
	"github.com/orhanozan33/epicebuhara-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type DealersHandler struct{ svc service.DealerService }

func NewDealersHandler(svc service.DealerService) *DealersHandler { return &DealersHandler{svc: svc} }

// Create godoc
// @Summary      Create a dealer
// @Tags         dealers
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateDealerRequest true "Dealer"
// @Success      201  {object} dto.DealerResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/dealers [post]
func (h *DealersHandler) Create(c *gin.Context) {
	var req dto.CreateDealerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List dealers
// @Tags         dealers
// @Produce      json
// @Param        active query bool false "Only active dealers"
// @Success      200 {array} dto.DealerResponse
// @Router       /v1/dealers [get]
func (h *DealersHandler) List(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	resp, err := h.svc.List(c.Request.Context(), onlyActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a dealer
// @Tags         dealers
// @Produce      json
// @Param        id  path     int true "Dealer ID"
// @Success      200 {object} dto.DealerResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/dealers/{id} [get]
func (h *DealersHandler) Get(c *gin.Context) {
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

// Update godoc
// @Summary      Update a dealer
// @Description  A new default discount applies to sales created or repriced afterwards.
// @Tags         dealers
// @Accept       json
// @Produce      json
// @Param        id   path     int                     true "Dealer ID"
// @Param        body body     dto.UpdateDealerRequest true "Fields to change"
// @Success      200  {object} dto.DealerResponse
// @Router       /v1/dealers/{id} [put]
func (h *DealersHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDealerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
