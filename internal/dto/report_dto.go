package dto

import "github.com/shopspring/decimal"

// ─── Shared report building blocks ───────────────────────────────────────────

type PeriodTotals struct {
	Tokens    int64           `json:"tokens"`
	Dispensed int64           `json:"dispensed"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cash      decimal.Decimal `json:"cash"`
	CardPix   decimal.Decimal `json:"card_pix"`
}

type CostBreakdown struct {
	Fixed    decimal.Decimal `json:"fixed"`
	Variable decimal.Decimal `json:"variable"`
	Product  decimal.Decimal `json:"product"`
	Total    decimal.Decimal `json:"total"`
}

type DailyRevenuePoint struct {
	Date    string          `json:"date"` // "2006-01-02"
	Revenue decimal.Decimal `json:"revenue"`
	Tokens  int64           `json:"tokens"`
}

type MachinePerformance struct {
	MachineID    string          `json:"machine_id"`
	MachineName  string          `json:"machine_name"`
	Revenue      decimal.Decimal `json:"revenue"`
	Tokens       int64           `json:"tokens"`
	StockCurrent int             `json:"stock_current"`
	Capacity     int             `json:"capacity"`
	OccupancyPct decimal.Decimal `json:"occupancy_pct"`
}

type ProductRanking struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	UnitsDispensed int64  `json:"units_dispensed"`
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

type DashboardResponse struct {
	StoreID      string               `json:"store_id"`
	PeriodStart  string               `json:"period_start"`
	PeriodEnd    string               `json:"period_end"`
	Totals       PeriodTotals         `json:"totals"`
	Costs        CostBreakdown        `json:"costs"`
	NetProfit    decimal.Decimal      `json:"net_profit"`
	MarginPct    decimal.Decimal      `json:"margin_pct"`
	DailyRevenue []DailyRevenuePoint  `json:"daily_revenue"`
	Machines     []MachinePerformance `json:"machines"`
	TopProducts  []ProductRanking     `json:"top_products"`
}

// ─── Weekly balance ──────────────────────────────────────────────────────────

type ProductDistribution struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	UnitsDispensed int64           `json:"units_dispensed"`
	UnitsRestocked int64           `json:"units_restocked"`
	SharePct       decimal.Decimal `json:"share_pct"`
}

type WeeklyBalanceResponse struct {
	StoreID     string                `json:"store_id"`
	PeriodStart string                `json:"period_start"`
	PeriodEnd   string                `json:"period_end"`
	Totals      PeriodTotals          `json:"totals"`
	Costs       CostBreakdown         `json:"costs"`
	NetProfit   decimal.Decimal       `json:"net_profit"`
	MarginPct   decimal.Decimal       `json:"margin_pct"`
	Products    []ProductDistribution `json:"products"`
}

// ─── Alerts ──────────────────────────────────────────────────────────────────

type StockAlertResponse struct {
	MachineID        string          `json:"machine_id"`
	MachineName      string          `json:"machine_name"`
	StoreID          string          `json:"store_id"`
	StockCurrent     int             `json:"stock_current"`
	Capacity         int             `json:"capacity"`
	MinimumThreshold decimal.Decimal `json:"minimum_threshold"`
	OccupancyPct     decimal.Decimal `json:"occupancy_pct"`
	Severity         string          `json:"severity"` // CRITICAL | HIGH | MEDIUM
}

type ConsistencyAlertResponse struct {
	AlertKey          string `json:"alert_key"`
	MachineID         string `json:"machine_id"`
	MachineName       string `json:"machine_name"`
	DiffOut           int    `json:"diff_out"`
	DiffIn            int    `json:"diff_in"`
	RecordedDispensed int    `json:"recorded_dispensed"`
	RecordedTokens    int    `json:"recorded_tokens"`
	Message           string `json:"message"`
}

// ─── Print / reconciliation ──────────────────────────────────────────────────

type CashRegisterEntryResponse struct {
	ID            string          `json:"id"`
	StoreID       string          `json:"store_id"`
	MachineID     *string         `json:"machine_id"`
	PeriodStart   string          `json:"period_start"`
	PeriodEnd     string          `json:"period_end"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
	CardPixAmount decimal.Decimal `json:"card_pix_amount"`
	Costs         CostBreakdown   `json:"costs"`
	CreatedAt     string          `json:"created_at"`
}

type PrintReportResponse struct {
	StoreID     string               `json:"store_id"`
	StoreName   string               `json:"store_name"`
	PeriodStart string               `json:"period_start"`
	PeriodEnd   string               `json:"period_end"`
	Totals      PeriodTotals         `json:"totals"`
	Costs       CostBreakdown        `json:"costs"`
	NetProfit   decimal.Decimal      `json:"net_profit"`
	MarginPct   decimal.Decimal      `json:"margin_pct"`
	Machines    []MachinePerformance `json:"machines"`
	// Reconciliation of the two independent sources of truth: manual cash
	// count vs token-implied revenue.
	DeclaredTotal       decimal.Decimal             `json:"declared_total"`
	TokenImpliedRevenue decimal.Decimal             `json:"token_implied_revenue"`
	MismatchWarning     *string                     `json:"mismatch_warning"`
	CashEntries         []CashRegisterEntryResponse `json:"cash_entries"`
}

// ─── Cash register ───────────────────────────────────────────────────────────

// Monetary amounts arrive as strings and are normalized by internal/money:
// thousands separators are stripped, decimal comma is accepted, unparsable
// values coerce to zero.
type CreateCashRegisterRequest struct {
	StoreID       string  `json:"store_id"        validate:"required,uuid"`
	MachineID     *string `json:"machine_id"      validate:"omitempty,uuid"`
	PeriodStart   string  `json:"period_start"    validate:"required,datetime=2006-01-02"`
	PeriodEnd     string  `json:"period_end"      validate:"required,datetime=2006-01-02"`
	CashAmount    string  `json:"cash_amount"     validate:"required"`
	CardPixAmount string  `json:"card_pix_amount" validate:"required"`
}
