package handler

import (
	"net/http"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CostsHandler struct {
	costs service.CostService
}

func NewCostsHandler(costs service.CostService) *CostsHandler {
	return &CostsHandler{costs: costs}
}

// UpsertFixedCost godoc
// @Summary Cria ou atualiza um custo fixo da loja
// @Tags costs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param storeId path string true "ID da loja"
// @Success 200 {object} dto.FixedCostResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /v1/fixed-costs/{storeId} [post]
func (h *CostsHandler) UpsertFixedCost(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de loja inválido"))
		return
	}

	var req dto.UpsertFixedCostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.costs.UpsertFixedCost(c.Request.Context(), storeID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CostsHandler) ListFixedCosts(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de loja inválido"))
		return
	}

	resp, err := h.costs.ListFixedCosts(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CreateVariableCost godoc
// @Summary Registra um custo variável com vigência por período
// @Tags costs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.VariableCostResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /v1/variable-costs [post]
func (h *CostsHandler) CreateVariableCost(c *gin.Context) {
	var req dto.CreateVariableCostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.costs.CreateVariableCost(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CostsHandler) ListVariableCosts(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("store_id inválido"))
		return
	}

	resp, err := h.costs.ListVariableCosts(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
