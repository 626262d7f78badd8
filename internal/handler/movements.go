package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/middleware"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"
	"github.com/MachinePay/backend-agarramais-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MovementsHandler struct{ svc service.MovementService }

func NewMovementsHandler(svc service.MovementService) *MovementsHandler {
	return &MovementsHandler{svc: svc}
}

// Record godoc
// @Summary Registra uma movimentação de estoque de máquina
// @Tags movements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RecordMovementRequest true "Dados da movimentação"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/movements [post]
func (h *MovementsHandler) Record(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Record(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordBatch processes a bulk submission; per-item failures are returned
// in a side list while the rest of the batch is recorded.
func (h *MovementsHandler) RecordBatch(c *gin.Context) {
	var req dto.BatchMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RecordBatch(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Edita campos observacionais de uma movimentação
// @Tags movements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da movimentação"
// @Param body body dto.UpdateMovementRequest true "Campos editáveis"
// @Success 200 {object} dto.MovementResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/movements/{id} [put]
func (h *MovementsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.UpdateMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Update(c.Request.Context(), actorID, claims.Role, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns a paginated slice of the ledger, filtered by machine, store
// and date range.
func (h *MovementsHandler) List(c *gin.Context) {
	filter := repository.MovementFilter{}

	if raw := c.Query("machine_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("machine_id inválido"))
			return
		}
		filter.MachineID = &id
	}
	if raw := c.Query("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("store_id inválido"))
			return
		}
		filter.StoreID = &id
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.To = &t
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
