package service

import (
	"context"
	"testing"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	svc       ReportService
	movements *stubMovementRepo
	machines  *stubMachineRepo
	products  *stubProductRepo
	costs     *stubCostRepo
	cash      *stubCashRepo
	store     *model.Store
	machine   *model.Machine
}

func newReportFixture() *reportFixture {
	movements := newStubMovementRepo()
	machines := newStubMachineRepo()
	products := newStubProductRepo()
	costs := newStubCostRepo()
	cash := &stubCashRepo{}
	store, machine := newStoreAndMachine(machines, movements, "Garra 01", 100, "2.50")

	proration := NewProrationService(costs, movements, products)
	svc := NewReportService(movements, machines, products, cash, proration)
	return &reportFixture{
		svc: svc, movements: movements, machines: machines, products: products,
		costs: costs, cash: cash, store: store, machine: machine,
	}
}

func (f *reportFixture) seedMovement(t *testing.T, day time.Time, tokens int, revenue string, products ...model.MovementProduct) {
	t.Helper()
	m := model.Movement{
		ID:              uuid.New(),
		MachineID:       f.machine.ID,
		UserID:          uuid.New(),
		OccurredAt:      day,
		Tokens:          tokens,
		RevenueRecorded: decimal.RequireFromString(revenue),
		StockAfter:      50,
		Products:        products,
	}
	require.NoError(t, f.movements.Create(nil, &m))
}

func TestDashboardZeroRevenueHasZeroMargin(t *testing.T) {
	f := newReportFixture()
	seedFixedCost(f.costs, f.store.ID, "Aluguel", "300.00")

	resp, err := f.svc.Dashboard(context.Background(), f.store.ID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err)

	assert.True(t, resp.Totals.Revenue.IsZero())
	assert.True(t, resp.NetProfit.Equal(decimal.RequireFromString("-300.00")),
		"got %s", resp.NetProfit)
	assert.True(t, resp.MarginPct.IsZero(), "margin must be 0, not NaN, on zero revenue")
}

func TestDashboardDailyTimelineZeroFilled(t *testing.T) {
	f := newReportFixture()
	f.seedMovement(t, dateUTC(2026, time.April, 2), 20, "50.00")

	resp, err := f.svc.Dashboard(context.Background(), f.store.ID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 3))
	require.NoError(t, err)

	require.Len(t, resp.DailyRevenue, 3)
	assert.Equal(t, "2026-04-01", resp.DailyRevenue[0].Date)
	assert.True(t, resp.DailyRevenue[0].Revenue.IsZero())
	assert.True(t, resp.DailyRevenue[1].Revenue.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, int64(20), resp.DailyRevenue[1].Tokens)
	assert.True(t, resp.DailyRevenue[2].Revenue.IsZero())
}

func TestDashboardNetProfitAndMachinePerformance(t *testing.T) {
	f := newReportFixture()
	seedFixedCost(f.costs, f.store.ID, "Aluguel", "60.00")
	f.seedMovement(t, dateUTC(2026, time.April, 10), 40, "100.00")

	resp, err := f.svc.Dashboard(context.Background(), f.store.ID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err)

	assert.True(t, resp.Totals.Revenue.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, resp.NetProfit.Equal(decimal.RequireFromString("40.00")), "got %s", resp.NetProfit)
	assert.True(t, resp.MarginPct.Equal(decimal.RequireFromString("40.00")), "got %s", resp.MarginPct)

	require.Len(t, resp.Machines, 1)
	perf := resp.Machines[0]
	assert.Equal(t, f.machine.ID.String(), perf.MachineID)
	assert.Equal(t, int64(40), perf.Tokens)
	assert.Equal(t, 50, perf.StockCurrent)
	assert.True(t, perf.OccupancyPct.Equal(decimal.RequireFromString("50.00")))
}

func TestDashboardUnknownStore(t *testing.T) {
	f := newReportFixture()

	_, err := f.svc.Dashboard(context.Background(), uuid.New(),
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.Error(t, err)
}

func TestWeeklyBalanceProductDistribution(t *testing.T) {
	f := newReportFixture()
	plush := model.Product{ID: uuid.New(), Name: "Pelúcia"}
	keychain := model.Product{ID: uuid.New(), Name: "Chaveiro"}
	f.products.products[plush.ID] = plush
	f.products.products[keychain.ID] = keychain

	f.seedMovement(t, dateUTC(2026, time.April, 2), 0, "0",
		model.MovementProduct{ProductID: keychain.ID, QuantityDispensed: 10},
		model.MovementProduct{ProductID: plush.ID, QuantityDispensed: 30},
	)

	resp, err := f.svc.WeeklyBalance(context.Background(), f.store.ID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 7))
	require.NoError(t, err)

	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Pelúcia", resp.Products[0].ProductName, "sorted by units dispensed, descending")
	assert.True(t, resp.Products[0].SharePct.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, "Chaveiro", resp.Products[1].ProductName)
	assert.True(t, resp.Products[1].SharePct.Equal(decimal.RequireFromString("25.00")))
}

func TestPrintReportFlagsDeclaredVsTokenMismatch(t *testing.T) {
	f := newReportFixture()
	f.seedMovement(t, dateUTC(2026, time.April, 5), 30, "75.00")

	// Declared R$ 100,00 against 30 tokens * R$ 2,50 = R$ 75,00 implied.
	f.cash.entries = append(f.cash.entries, model.CashRegisterEntry{
		ID:            uuid.New(),
		StoreID:       f.store.ID,
		PeriodStart:   dateUTC(2026, time.April, 1),
		PeriodEnd:     dateUTC(2026, time.April, 30),
		CashAmount:    decimal.RequireFromString("100.00"),
		CardPixAmount: decimal.Zero,
	})

	resp, err := f.svc.PrintReport(context.Background(), f.store.ID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err)

	assert.True(t, resp.DeclaredTotal.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, resp.TokenImpliedRevenue.Equal(decimal.RequireFromString("75.00")))
	require.NotNil(t, resp.MismatchWarning)
	assert.Contains(t, *resp.MismatchWarning, "Divergência")
	require.Len(t, resp.CashEntries, 1)
}

func TestPrintReportMatchingFiguresHaveNoWarning(t *testing.T) {
	f := newReportFixture()
	f.seedMovement(t, dateUTC(2026, time.April, 5), 30, "75.00")

	f.cash.entries = append(f.cash.entries, model.CashRegisterEntry{
		ID:            uuid.New(),
		StoreID:       f.store.ID,
		PeriodStart:   dateUTC(2026, time.April, 1),
		PeriodEnd:     dateUTC(2026, time.April, 30),
		CashAmount:    decimal.RequireFromString("50.00"),
		CardPixAmount: decimal.RequireFromString("25.00"),
	})

	resp, err := f.svc.PrintReport(context.Background(), f.store.ID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err)

	assert.Nil(t, resp.MismatchWarning)
}

func TestCreateCashEntrySnapshotsCosts(t *testing.T) {
	f := newReportFixture()
	seedFixedCost(f.costs, f.store.ID, "Aluguel", "300.00")

	resp, err := f.svc.CreateCashEntry(context.Background(), uuid.New(), newCashRequest(f.store.ID))
	require.NoError(t, err)

	assert.True(t, resp.CashAmount.Equal(decimal.RequireFromString("1234.56")),
		"money string normalized, got %s", resp.CashAmount)
	assert.True(t, resp.Costs.Fixed.Equal(decimal.RequireFromString("300.00")))
	assert.True(t, resp.Costs.Total.Equal(decimal.RequireFromString("300.00")))
	require.Len(t, f.cash.entries, 1)
	assert.True(t, f.cash.entries[0].FixedCostSnapshot.Equal(decimal.RequireFromString("300.00")))
}

func newCashRequest(storeID uuid.UUID) dto.CreateCashRegisterRequest {
	return dto.CreateCashRegisterRequest{
		StoreID:       storeID.String(),
		PeriodStart:   "2026-04-01",
		PeriodEnd:     "2026-04-30",
		CashAmount:    "R$ 1.234,56",
		CardPixAmount: "0",
	}
}
