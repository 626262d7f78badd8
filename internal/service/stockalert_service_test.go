package service

import (
	"context"
	"testing"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStock(t *testing.T, movements *stubMovementRepo, machineID uuid.UUID, stockAfter int) {
	t.Helper()
	m := model.Movement{
		ID:         uuid.New(),
		MachineID:  machineID,
		UserID:     uuid.New(),
		OccurredAt: time.Now(),
		StockAfter: stockAfter,
	}
	require.NoError(t, movements.Create(nil, &m))
}

func TestStockAlertBelowThreshold(t *testing.T) {
	movements := newStubMovementRepo()
	machines := newStubMachineRepo()
	_, machine := newStoreAndMachine(machines, movements, "Garra 01", 100, "2.50")
	seedStock(t, movements, machine.ID, 20)

	svc := NewStockAlertService(machines, movements)
	alerts, err := svc.ComputeAlerts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, 20, alert.StockCurrent)
	assert.True(t, alert.MinimumThreshold.Equal(decimal.RequireFromString("30.00")),
		"100 * 30%% = 30, got %s", alert.MinimumThreshold)
	assert.True(t, alert.OccupancyPct.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, "HIGH", alert.Severity)
}

func TestStockAlertSeverityTiers(t *testing.T) {
	cases := []struct {
		name     string
		stock    int
		severity string
	}{
		{"abaixo de 10%", 5, "CRITICAL"},
		{"abaixo de 20%", 15, "HIGH"},
		{"entre 20% e o limite", 25, "MEDIUM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			movements := newStubMovementRepo()
			machines := newStubMachineRepo()
			_, machine := newStoreAndMachine(machines, movements, "Garra 01", 100, "2.50")
			seedStock(t, movements, machine.ID, tc.stock)

			svc := NewStockAlertService(machines, movements)
			alerts, err := svc.ComputeAlerts(context.Background(), nil)
			require.NoError(t, err)
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.severity, alerts[0].Severity)
		})
	}
}

func TestStockAlertAboveThresholdIsSilent(t *testing.T) {
	movements := newStubMovementRepo()
	machines := newStubMachineRepo()
	_, machine := newStoreAndMachine(machines, movements, "Garra 01", 100, "2.50")
	seedStock(t, movements, machine.ID, 35)

	svc := NewStockAlertService(machines, movements)
	alerts, err := svc.ComputeAlerts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestStockAlertMachineWithoutLedgerCountsAsEmpty(t *testing.T) {
	movements := newStubMovementRepo()
	machines := newStubMachineRepo()
	newStoreAndMachine(machines, movements, "Garra 01", 100, "2.50")

	svc := NewStockAlertService(machines, movements)
	alerts, err := svc.ComputeAlerts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	assert.Equal(t, 0, alerts[0].StockCurrent)
	assert.Equal(t, "CRITICAL", alerts[0].Severity)
}

func TestStockAlertsSortedWorstFirst(t *testing.T) {
	movements := newStubMovementRepo()
	machines := newStubMachineRepo()
	_, better := newStoreAndMachine(machines, movements, "Garra 01", 100, "2.50")
	_, worse := newStoreAndMachine(machines, movements, "Garra 02", 100, "2.50")
	seedStock(t, movements, better.ID, 25)
	seedStock(t, movements, worse.ID, 5)

	svc := NewStockAlertService(machines, movements)
	alerts, err := svc.ComputeAlerts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, worse.ID.String(), alerts[0].MachineID)
	assert.Equal(t, better.ID.String(), alerts[1].MachineID)
}

func TestStockAlertSkipsZeroCapacity(t *testing.T) {
	movements := newStubMovementRepo()
	machines := newStubMachineRepo()
	newStoreAndMachine(machines, movements, "Garra 01", 0, "2.50")

	svc := NewStockAlertService(machines, movements)
	alerts, err := svc.ComputeAlerts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
