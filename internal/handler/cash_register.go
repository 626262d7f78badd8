package handler

import (
	"net/http"

	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/middleware"
	"github.com/MachinePay/backend-agarramais-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CashRegisterHandler struct {
	reports service.ReportService
}

func NewCashRegisterHandler(reports service.ReportService) *CashRegisterHandler {
	return &CashRegisterHandler{reports: reports}
}

// Create godoc
// @Summary Registra o fechamento de caixa declarado do período
// @Tags cash-register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.CashRegisterEntryResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /v1/cash-register [post]
func (h *CashRegisterHandler) Create(c *gin.Context) {
	var req dto.CreateCashRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}

	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.reports.CreateCashEntry(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
