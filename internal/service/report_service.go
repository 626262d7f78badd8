package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/model"
	"github.com/MachinePay/backend-agarramais-sub000/internal/money"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// topProductsLimit caps the product ranking on the dashboard.
const topProductsLimit = 5

// ReportService merges the ledger aggregates, the cost legs and the manual
// cash-register figures into dashboards, weekly balances and the printable
// reconciliation report.
type ReportService interface {
	Dashboard(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.DashboardResponse, error)
	WeeklyBalance(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.WeeklyBalanceResponse, error)
	PrintReport(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.PrintReportResponse, error)
	CreateCashEntry(ctx context.Context, userID uuid.UUID, req dto.CreateCashRegisterRequest) (*dto.CashRegisterEntryResponse, error)
}

type reportService struct {
	movementRepo repository.MovementRepository
	machineRepo  repository.MachineRepository
	productRepo  repository.ProductRepository
	cashRepo     repository.CashRegisterRepository
	proration    ProrationService
}

func NewReportService(
	movementRepo repository.MovementRepository,
	machineRepo repository.MachineRepository,
	productRepo repository.ProductRepository,
	cashRepo repository.CashRegisterRepository,
	proration ProrationService,
) ReportService {
	return &reportService{
		movementRepo: movementRepo,
		machineRepo:  machineRepo,
		productRepo:  productRepo,
		cashRepo:     cashRepo,
		proration:    proration,
	}
}

// periodAggregates bundles the independent read-only aggregate queries that
// every report needs. They fan out concurrently — each one is a separate
// query over immutable rows.
type periodAggregates struct {
	tokens    int64
	dispensed int64
	revenue   decimal.Decimal
	declared  repository.DeclaredAmounts
	costs     *dto.CostBreakdown
}

func (s *reportService) aggregate(ctx context.Context, scope repository.PeriodScope) (*periodAggregates, error) {
	agg := &periodAggregates{}
	var (
		wg   sync.WaitGroup
		errs [5]error
	)
	wg.Add(5)
	go func() { defer wg.Done(); agg.tokens, errs[0] = s.movementRepo.SumTokens(ctx, scope) }()
	go func() { defer wg.Done(); agg.dispensed, errs[1] = s.movementRepo.SumDispensed(ctx, scope) }()
	go func() { defer wg.Done(); agg.revenue, errs[2] = s.movementRepo.SumRevenue(ctx, scope) }()
	go func() { defer wg.Done(); agg.declared, errs[3] = s.cashRepo.SumByScope(ctx, scope) }()
	go func() {
		defer wg.Done()
		agg.costs, errs[4] = s.proration.ComputePeriodCost(ctx, scope.StoreID, scope.Start, scope.End)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	agg.revenue = money.Round(agg.revenue)
	return agg, nil
}

func (agg *periodAggregates) totals() dto.PeriodTotals {
	return dto.PeriodTotals{
		Tokens:    agg.tokens,
		Dispensed: agg.dispensed,
		Revenue:   agg.revenue,
		Cash:      money.Round(agg.declared.Cash),
		CardPix:   money.Round(agg.declared.CardPix),
	}
}

// netProfitAndMargin guards the zero-revenue division: margin is 0, never
// NaN, when nothing was earned.
func netProfitAndMargin(revenue decimal.Decimal, costs *dto.CostBreakdown) (decimal.Decimal, decimal.Decimal) {
	netProfit := money.Round(revenue.Sub(costs.Total))
	marginPct := decimal.Zero
	if !revenue.IsZero() {
		marginPct = netProfit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return netProfit, marginPct
}

func newScope(storeID uuid.UUID, periodStart, periodEnd time.Time) (repository.PeriodScope, error) {
	periodStart = truncateToDay(periodStart)
	periodEnd = truncateToDay(periodEnd)
	if periodEnd.Before(periodStart) {
		return repository.PeriodScope{}, apierror.Validation("Período inválido: data final anterior à data inicial")
	}
	return repository.PeriodScope{StoreID: storeID, Start: periodStart, End: periodEnd}, nil
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (s *reportService) Dashboard(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.DashboardResponse, error) {
	scope, err := newScope(storeID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if _, err := s.machineRepo.FindStoreByID(ctx, storeID); err != nil {
		return nil, apierror.NotFound("Loja não encontrada")
	}

	agg, err := s.aggregate(ctx, scope)
	if err != nil {
		return nil, err
	}

	daily, err := s.dailyTimeline(ctx, scope)
	if err != nil {
		return nil, err
	}
	machines, err := s.machinePerformance(ctx, scope)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.topProducts(ctx, scope)
	if err != nil {
		return nil, err
	}

	netProfit, marginPct := netProfitAndMargin(agg.revenue, agg.costs)

	return &dto.DashboardResponse{
		StoreID:      storeID.String(),
		PeriodStart:  scope.Start.Format("2006-01-02"),
		PeriodEnd:    scope.End.Format("2006-01-02"),
		Totals:       agg.totals(),
		Costs:        *agg.costs,
		NetProfit:    netProfit,
		MarginPct:    marginPct,
		DailyRevenue: daily,
		Machines:     machines,
		TopProducts:  topProducts,
	}, nil
}

// dailyTimeline builds one point per calendar day in the range, zero-filled
// for days with no activity.
func (s *reportService) dailyTimeline(ctx context.Context, scope repository.PeriodScope) ([]dto.DailyRevenuePoint, error) {
	rows, err := s.movementRepo.DailyRevenue(ctx, scope)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]repository.DailyAggregate, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format("2006-01-02")] = r
	}

	var timeline []dto.DailyRevenuePoint
	for day := scope.Start; !day.After(scope.End); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		point := dto.DailyRevenuePoint{Date: key, Revenue: decimal.Zero}
		if r, ok := byDay[key]; ok {
			point.Revenue = money.Round(r.Revenue)
			point.Tokens = r.Tokens
		}
		timeline = append(timeline, point)
	}
	return timeline, nil
}

func (s *reportService) machinePerformance(ctx context.Context, scope repository.PeriodScope) ([]dto.MachinePerformance, error) {
	machines, err := s.machineRepo.ListActive(ctx, &scope.StoreID)
	if err != nil {
		return nil, err
	}
	revenues, err := s.movementRepo.RevenueByMachine(ctx, scope)
	if err != nil {
		return nil, err
	}
	byMachine := make(map[uuid.UUID]repository.MachineAggregate, len(revenues))
	for _, r := range revenues {
		byMachine[r.MachineID] = r
	}

	perf := make([]dto.MachinePerformance, 0, len(machines))
	for _, machine := range machines {
		stockCurrent := 0
		if last, err := s.movementRepo.LastByMachine(ctx, machine.ID, 1); err == nil && len(last) > 0 {
			stockCurrent = last[0].StockAfter
		}
		occupancy := decimal.Zero
		if machine.Capacity > 0 {
			occupancy = decimal.NewFromInt(int64(stockCurrent)).
				Div(decimal.NewFromInt(int64(machine.Capacity))).
				Mul(decimal.NewFromInt(100)).Round(2)
		}
		revenue := decimal.Zero
		var tokens int64
		if r, ok := byMachine[machine.ID]; ok {
			revenue = money.Round(r.Revenue)
			tokens = r.Tokens
		}
		perf = append(perf, dto.MachinePerformance{
			MachineID:    machine.ID.String(),
			MachineName:  machine.Name,
			Revenue:      revenue,
			Tokens:       tokens,
			StockCurrent: stockCurrent,
			Capacity:     machine.Capacity,
			OccupancyPct: occupancy,
		})
	}
	return perf, nil
}

func (s *reportService) topProducts(ctx context.Context, scope repository.PeriodScope) ([]dto.ProductRanking, error) {
	distribution, err := s.productDistribution(ctx, scope)
	if err != nil {
		return nil, err
	}
	ranking := make([]dto.ProductRanking, 0, topProductsLimit)
	for _, d := range distribution {
		if len(ranking) == topProductsLimit {
			break
		}
		ranking = append(ranking, dto.ProductRanking{
			ProductID:      d.ProductID,
			ProductName:    d.ProductName,
			UnitsDispensed: d.UnitsDispensed,
		})
	}
	return ranking, nil
}

// ── Weekly balance ────────────────────────────────────────────────────────────

func (s *reportService) WeeklyBalance(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.WeeklyBalanceResponse, error) {
	scope, err := newScope(storeID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if _, err := s.machineRepo.FindStoreByID(ctx, storeID); err != nil {
		return nil, apierror.NotFound("Loja não encontrada")
	}

	agg, err := s.aggregate(ctx, scope)
	if err != nil {
		return nil, err
	}
	distribution, err := s.productDistribution(ctx, scope)
	if err != nil {
		return nil, err
	}

	netProfit, marginPct := netProfitAndMargin(agg.revenue, agg.costs)

	return &dto.WeeklyBalanceResponse{
		StoreID:     storeID.String(),
		PeriodStart: scope.Start.Format("2006-01-02"),
		PeriodEnd:   scope.End.Format("2006-01-02"),
		Totals:      agg.totals(),
		Costs:       *agg.costs,
		NetProfit:   netProfit,
		MarginPct:   marginPct,
		Products:    distribution,
	}, nil
}

// productDistribution ranks products by units dispensed and computes each
// product's share of the total, sorted descending.
func (s *reportService) productDistribution(ctx context.Context, scope repository.PeriodScope) ([]dto.ProductDistribution, error) {
	units, err := s.movementRepo.UnitsByProduct(ctx, scope)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(units))
	var totalDispensed int64
	for _, u := range units {
		ids = append(ids, u.ProductID)
		totalDispensed += u.Dispensed
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	distribution := make([]dto.ProductDistribution, 0, len(units))
	for _, u := range units {
		name := ""
		if p, ok := products[u.ProductID]; ok {
			name = p.Name
		}
		share := decimal.Zero
		if totalDispensed > 0 {
			share = decimal.NewFromInt(u.Dispensed).
				Div(decimal.NewFromInt(totalDispensed)).
				Mul(decimal.NewFromInt(100)).Round(2)
		}
		distribution = append(distribution, dto.ProductDistribution{
			ProductID:      u.ProductID.String(),
			ProductName:    name,
			UnitsDispensed: u.Dispensed,
			UnitsRestocked: u.Restocked,
			SharePct:       share,
		})
	}
	sort.Slice(distribution, func(i, j int) bool {
		return distribution[i].UnitsDispensed > distribution[j].UnitsDispensed
	})
	return distribution, nil
}

// ── Print / reconciliation report ─────────────────────────────────────────────
// The one place where the two independently recorded sources of truth meet:
// token counts from the ledger vs the manually declared cash figures.

func (s *reportService) PrintReport(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.PrintReportResponse, error) {
	scope, err := newScope(storeID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	store, err := s.machineRepo.FindStoreByID(ctx, storeID)
	if err != nil {
		return nil, apierror.NotFound("Loja não encontrada")
	}

	agg, err := s.aggregate(ctx, scope)
	if err != nil {
		return nil, err
	}
	machines, err := s.machinePerformance(ctx, scope)
	if err != nil {
		return nil, err
	}
	entries, err := s.cashRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	tokenImplied, err := s.tokenImpliedRevenue(ctx, scope, agg.tokens)
	if err != nil {
		return nil, err
	}
	declaredTotal := money.Round(agg.declared.Cash.Add(agg.declared.CardPix))

	var warning *string
	delta := declaredTotal.Sub(tokenImplied).Abs()
	if delta.GreaterThan(decimal.NewFromFloat(0.01)) {
		msg := fmt.Sprintf(
			"Divergência de receita: caixa declarado R$ %s vs receita estimada por fichas R$ %s (diferença R$ %s)",
			money.Format(declaredTotal), money.Format(tokenImplied), money.Format(delta))
		warning = &msg
	}

	netProfit, marginPct := netProfitAndMargin(agg.revenue, agg.costs)

	entryResponses := make([]dto.CashRegisterEntryResponse, 0, len(entries))
	for _, e := range entries {
		entryResponses = append(entryResponses, *cashEntryToResponse(&e))
	}

	return &dto.PrintReportResponse{
		StoreID:             storeID.String(),
		StoreName:           store.Name,
		PeriodStart:         scope.Start.Format("2006-01-02"),
		PeriodEnd:           scope.End.Format("2006-01-02"),
		Totals:              agg.totals(),
		Costs:               *agg.costs,
		NetProfit:           netProfit,
		MarginPct:           marginPct,
		Machines:            machines,
		DeclaredTotal:       declaredTotal,
		TokenImpliedRevenue: tokenImplied,
		MismatchWarning:     warning,
		CashEntries:         entryResponses,
	}, nil
}

// tokenImpliedRevenue estimates revenue as totalTokens * averageTokenValue
// over the store's active machines. Independent from RevenueRecorded, which
// is frozen per movement at write time.
func (s *reportService) tokenImpliedRevenue(ctx context.Context, scope repository.PeriodScope, totalTokens int64) (decimal.Decimal, error) {
	machines, err := s.machineRepo.ListActive(ctx, &scope.StoreID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(machines) == 0 {
		return decimal.Zero, nil
	}
	sum := decimal.Zero
	for _, m := range machines {
		sum = sum.Add(m.TokenValue)
	}
	avgTokenValue := sum.Div(decimal.NewFromInt(int64(len(machines))))
	return money.Round(decimal.NewFromInt(totalTokens).Mul(avgTokenValue)), nil
}

// ── Cash register entry ───────────────────────────────────────────────────────
// Created once per reconciliation submission; snapshots the cost legs as
// they stand so later cost edits cannot rewrite the declared picture.

func (s *reportService) CreateCashEntry(ctx context.Context, userID uuid.UUID, req dto.CreateCashRegisterRequest) (*dto.CashRegisterEntryResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apierror.Validation("store_id inválido")
	}
	if _, err := s.machineRepo.FindStoreByID(ctx, storeID); err != nil {
		return nil, apierror.NotFound("Loja não encontrada")
	}

	var machineID *uuid.UUID
	if req.MachineID != nil {
		mid, err := uuid.Parse(*req.MachineID)
		if err != nil {
			return nil, apierror.Validation("machine_id inválido")
		}
		if _, err := s.machineRepo.FindByID(ctx, mid); err != nil {
			return nil, apierror.NotFound("Máquina não encontrada")
		}
		machineID = &mid
	}

	periodStart, err1 := time.Parse("2006-01-02", req.PeriodStart)
	periodEnd, err2 := time.Parse("2006-01-02", req.PeriodEnd)
	if err1 != nil || err2 != nil {
		return nil, apierror.Validation("Datas do período inválidas")
	}

	costs, err := s.proration.ComputePeriodCost(ctx, storeID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	entry := &model.CashRegisterEntry{
		StoreID:              storeID,
		MachineID:            machineID,
		PeriodStart:          truncateToDay(periodStart),
		PeriodEnd:            truncateToDay(periodEnd),
		CashAmount:           money.Round(money.Parse(req.CashAmount)),
		CardPixAmount:        money.Round(money.Parse(req.CardPixAmount)),
		FixedCostSnapshot:    costs.Fixed,
		VariableCostSnapshot: costs.Variable,
		ProductCostSnapshot:  costs.Product,
		TotalCostSnapshot:    costs.Total,
		CreatedByID:          userID,
	}
	if err := s.cashRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return cashEntryToResponse(entry), nil
}

func cashEntryToResponse(e *model.CashRegisterEntry) *dto.CashRegisterEntryResponse {
	var machineID *string
	if e.MachineID != nil {
		id := e.MachineID.String()
		machineID = &id
	}
	return &dto.CashRegisterEntryResponse{
		ID:            e.ID.String(),
		StoreID:       e.StoreID.String(),
		MachineID:     machineID,
		PeriodStart:   e.PeriodStart.Format("2006-01-02"),
		PeriodEnd:     e.PeriodEnd.Format("2006-01-02"),
		CashAmount:    e.CashAmount,
		CardPixAmount: e.CardPixAmount,
		Costs: dto.CostBreakdown{
			Fixed:    e.FixedCostSnapshot,
			Variable: e.VariableCostSnapshot,
			Product:  e.ProductCostSnapshot,
			Total:    e.TotalCostSnapshot,
		},
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
