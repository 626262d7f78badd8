package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/infra"
	"github.com/MachinePay/backend-agarramais-sub000/internal/middleware"
	"github.com/MachinePay/backend-agarramais-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type ReportsHandler struct {
	reports     service.ReportService
	stockAlerts service.StockAlertService
	consistency service.ConsistencyService
	rdb         *redis.Client
	cacheTTL    time.Duration
	pdfPath     string
	business    string
}

func NewReportsHandler(
	reports service.ReportService,
	stockAlerts service.StockAlertService,
	consistency service.ConsistencyService,
	rdb *redis.Client,
	cacheTTL time.Duration,
	pdfPath, business string,
) *ReportsHandler {
	return &ReportsHandler{
		reports:     reports,
		stockAlerts: stockAlerts,
		consistency: consistency,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
		pdfPath:     pdfPath,
		business:    business,
	}
}

func (h *ReportsHandler) periodParams(c *gin.Context) (uuid.UUID, time.Time, time.Time, bool) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("store_id inválido"))
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	start, ok := parseDateQuery(c, "period_start")
	if !ok {
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	end, ok := parseDateQuery(c, "period_end")
	if !ok {
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	return storeID, start, end, true
}

// Dashboard godoc
// @Summary Painel do período: totais, linha diária, máquinas e ranking
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	storeID, start, end, ok := h.periodParams(c)
	if !ok {
		return
	}

	// Short-TTL cache: dashboards are re-requested constantly while the
	// underlying rows only change on data entry. Cache failures are
	// logged and bypassed.
	cacheKey := fmt.Sprintf("dashboard:%s:%s:%s",
		storeID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if h.rdb != nil {
		if raw, err := h.rdb.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			var cached dto.DashboardResponse
			if json.Unmarshal(raw, &cached) == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	resp, err := h.reports.Dashboard(c.Request.Context(), storeID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := h.rdb.Set(c.Request.Context(), cacheKey, raw, h.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("dashboard cache write failed")
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// WeeklyBalance returns store-level totals plus the per-product
// distribution breakdown.
func (h *ReportsHandler) WeeklyBalance(c *gin.Context) {
	storeID, start, end, ok := h.periodParams(c)
	if !ok {
		return
	}
	resp, err := h.reports.WeeklyBalance(c.Request.Context(), storeID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockAlerts returns machines below their restock threshold, worst first.
// store_id is optional; omitted means all stores.
func (h *ReportsHandler) StockAlerts(c *gin.Context) {
	var storeID *uuid.UUID
	if raw := c.Query("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("store_id inválido"))
			return
		}
		storeID = &id
	}
	resp, err := h.stockAlerts.ComputeAlerts(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ConsistencyAlerts returns hardware-counter anomalies, minus suppressed ones.
func (h *ReportsHandler) ConsistencyAlerts(c *gin.Context) {
	var storeID *uuid.UUID
	if raw := c.Query("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("store_id inválido"))
			return
		}
		storeID = &id
	}
	resp, err := h.consistency.DetectAnomalies(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// IgnoreConsistencyAlert suppresses one alert permanently.
func (h *ReportsHandler) IgnoreConsistencyAlert(c *gin.Context) {
	alertKey := c.Param("id")
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	if err := h.consistency.Ignore(c.Request.Context(), userID, alertKey); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Print godoc
// @Summary Relatório de fechamento com conferência caixa × fichas
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PrintReportResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reports/print [get]
func (h *ReportsHandler) Print(c *gin.Context) {
	storeID, start, end, ok := h.periodParams(c)
	if !ok {
		return
	}
	resp, err := h.reports.PrintReport(c.Request.Context(), storeID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "pdf" {
		path, err := infra.GenerateReconciliationPDF(resp, h.business, h.pdfPath)
		if err != nil {
			respondError(c, err)
			return
		}
		c.FileAttachment(path, "fechamento.pdf")
		return
	}
	c.JSON(http.StatusOK, resp)
}
