package service

import (
	"context"
	"testing"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProrationFixture() (ProrationService, *stubCostRepo, *stubMovementRepo, *stubProductRepo, uuid.UUID) {
	costs := newStubCostRepo()
	movements := newStubMovementRepo()
	products := newStubProductRepo()
	storeID := uuid.New()
	return NewProrationService(costs, movements, products), costs, movements, products, storeID
}

func seedFixedCost(costs *stubCostRepo, storeID uuid.UUID, name, amount string) {
	costs.fixed = append(costs.fixed, model.FixedCost{
		ID:      uuid.New(),
		StoreID: storeID,
		Name:    name,
		Amount:  decimal.RequireFromString(amount),
	})
}

func TestFixedCostFullMonthProration(t *testing.T) {
	svc, costs, _, _, storeID := newProrationFixture()
	seedFixedCost(costs, storeID, "Aluguel", "200.00")
	seedFixedCost(costs, storeID, "Energia", "100.00")

	// April has 30 days: a full month allocates the exact monthly total.
	breakdown, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err)

	assert.True(t, breakdown.Fixed.Equal(decimal.RequireFromString("300.00")),
		"got %s", breakdown.Fixed)
	assert.True(t, breakdown.Total.Equal(breakdown.Fixed))

	// First query snapshots the month.
	snap, ok := costs.monthlyTotals[monthKey{storeID, 2026, 4}]
	require.True(t, ok)
	assert.True(t, snap.Equal(decimal.RequireFromString("300.00")))
}

func TestFixedCostPartialMonthProration(t *testing.T) {
	svc, costs, _, _, storeID := newProrationFixture()
	seedFixedCost(costs, storeID, "Aluguel", "300.00")

	// 10 of April's 30 days → a third of the monthly total.
	breakdown, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 10))
	require.NoError(t, err)

	assert.True(t, breakdown.Fixed.Equal(decimal.RequireFromString("100.00")),
		"got %s", breakdown.Fixed)
}

func TestFixedCostSpansMonthsUsingFrozenSnapshots(t *testing.T) {
	svc, costs, _, _, storeID := newProrationFixture()

	// Both months already snapshotted with different totals; the live
	// fixed-cost table is empty and must not be consulted.
	costs.monthlyTotals[monthKey{storeID, 2026, 4}] = decimal.RequireFromString("300.00")
	costs.monthlyTotals[monthKey{storeID, 2026, 5}] = decimal.RequireFromString("310.00")

	breakdown, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 21), dateUTC(2026, time.May, 10))
	require.NoError(t, err)

	// 10/30 of 300 + 10/31 of 310 = 100.00 + 100.00
	assert.True(t, breakdown.Fixed.Equal(decimal.RequireFromString("200.00")),
		"got %s", breakdown.Fixed)
}

func TestFixedCostToleratesSnapshotWriteFailure(t *testing.T) {
	svc, costs, _, _, storeID := newProrationFixture()
	seedFixedCost(costs, storeID, "Aluguel", "300.00")
	costs.snapshotErr = errSnapshot

	breakdown, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err, "a snapshot cache failure must not fail the report")
	assert.True(t, breakdown.Fixed.Equal(decimal.RequireFromString("300.00")))
}

func TestVariableCostInclusiveOverlap(t *testing.T) {
	svc, costs, _, _, storeID := newProrationFixture()
	inside := model.VariableCost{
		ID: uuid.New(), StoreID: storeID, Name: "Manutenção",
		Amount:     decimal.RequireFromString("80.00"),
		RangeStart: dateUTC(2026, time.April, 10),
		RangeEnd:   dateUTC(2026, time.April, 12),
	}
	// Touches the period only on its last day — still counts in full.
	touching := model.VariableCost{
		ID: uuid.New(), StoreID: storeID, Name: "Frete",
		Amount:     decimal.RequireFromString("20.00"),
		RangeStart: dateUTC(2026, time.March, 25),
		RangeEnd:   dateUTC(2026, time.April, 1),
	}
	outside := model.VariableCost{
		ID: uuid.New(), StoreID: storeID, Name: "Brindes",
		Amount:     decimal.RequireFromString("500.00"),
		RangeStart: dateUTC(2026, time.May, 1),
		RangeEnd:   dateUTC(2026, time.May, 2),
	}
	costs.variable = append(costs.variable, inside, touching, outside)

	breakdown, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err)

	assert.True(t, breakdown.Variable.Equal(decimal.RequireFromString("100.00")),
		"got %s", breakdown.Variable)
}

func TestProductCostLegWithSalePriceFallback(t *testing.T) {
	costs := newStubCostRepo()
	movements := newStubMovementRepo()
	products := newStubProductRepo()
	machines := newStubMachineRepo()
	store, machine := newStoreAndMachine(machines, movements, "Garra 01", 100, "2.50")

	costed := model.Product{
		ID: uuid.New(), Name: "Pelúcia",
		UnitCost:  decimal.RequireFromString("4.50"),
		SalePrice: decimal.RequireFromString("12.00"),
	}
	uncosted := model.Product{
		ID: uuid.New(), Name: "Chaveiro",
		UnitCost:  decimal.Zero,
		SalePrice: decimal.RequireFromString("3.00"),
	}
	products.products[costed.ID] = costed
	products.products[uncosted.ID] = uncosted

	m := model.Movement{
		ID:         uuid.New(),
		MachineID:  machine.ID,
		UserID:     uuid.New(),
		OccurredAt: dateUTC(2026, time.April, 5),
		Products: []model.MovementProduct{
			{ProductID: costed.ID, QuantityDispensed: 10},
			{ProductID: uncosted.ID, QuantityDispensed: 4},
		},
	}
	require.NoError(t, movements.Create(nil, &m))

	svc := NewProrationService(costs, movements, products)
	breakdown, err := svc.ComputePeriodCost(context.Background(), store.ID,
		dateUTC(2026, time.April, 1), dateUTC(2026, time.April, 30))
	require.NoError(t, err)

	// 10 * 4.50 + 4 * 3.00 (sale price fallback) = 57.00
	assert.True(t, breakdown.Product.Equal(decimal.RequireFromString("57.00")),
		"got %s", breakdown.Product)
}

func TestComputePeriodCostIsIdempotent(t *testing.T) {
	svc, costs, _, _, storeID := newProrationFixture()
	seedFixedCost(costs, storeID, "Aluguel", "250.00")

	first, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 5), dateUTC(2026, time.April, 25))
	require.NoError(t, err)
	second, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 5), dateUTC(2026, time.April, 25))
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Fixed.Equal(second.Fixed))
}

func TestComputePeriodCostRejectsInvertedPeriod(t *testing.T) {
	svc, _, _, _, storeID := newProrationFixture()

	_, err := svc.ComputePeriodCost(context.Background(), storeID,
		dateUTC(2026, time.April, 10), dateUTC(2026, time.April, 1))
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}
