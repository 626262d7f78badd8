package service

import (
	"context"
	"sort"

	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockAlertService derives occupancy and restock severity per machine from
// the ledger's latest entry.
type StockAlertService interface {
	ComputeAlerts(ctx context.Context, storeID *uuid.UUID) ([]dto.StockAlertResponse, error)
}

type stockAlertService struct {
	machineRepo  repository.MachineRepository
	movementRepo repository.MovementRepository
}

func NewStockAlertService(machineRepo repository.MachineRepository, movementRepo repository.MovementRepository) StockAlertService {
	return &stockAlertService{machineRepo: machineRepo, movementRepo: movementRepo}
}

// severityFor tiers occupancy: below 10% CRITICAL, below 20% HIGH,
// otherwise MEDIUM.
func severityFor(occupancyPct decimal.Decimal) string {
	ten := decimal.NewFromInt(10)
	twenty := decimal.NewFromInt(20)
	switch {
	case occupancyPct.LessThan(ten):
		return "CRITICAL"
	case occupancyPct.LessThan(twenty):
		return "HIGH"
	default:
		return "MEDIUM"
	}
}

// ComputeAlerts raises an alert for every active machine whose current stock
// sits below capacity * alertThresholdPct / 100. A machine with no ledger
// entries counts as empty. Output is sorted worst-first.
func (s *stockAlertService) ComputeAlerts(ctx context.Context, storeID *uuid.UUID) ([]dto.StockAlertResponse, error) {
	machines, err := s.machineRepo.ListActive(ctx, storeID)
	if err != nil {
		return nil, err
	}

	alerts := []dto.StockAlertResponse{}
	for _, machine := range machines {
		if machine.Capacity <= 0 {
			continue
		}

		stockCurrent := 0
		if last, err := s.movementRepo.LastByMachine(ctx, machine.ID, 1); err == nil && len(last) > 0 {
			stockCurrent = last[0].StockAfter
		}

		capacity := decimal.NewFromInt(int64(machine.Capacity))
		minimumThreshold := capacity.
			Mul(decimal.NewFromInt(int64(machine.AlertThresholdPct))).
			Div(decimal.NewFromInt(100))
		occupancyPct := decimal.NewFromInt(int64(stockCurrent)).
			Div(capacity).
			Mul(decimal.NewFromInt(100)).
			Round(2)

		if decimal.NewFromInt(int64(stockCurrent)).GreaterThanOrEqual(minimumThreshold) {
			continue
		}

		alerts = append(alerts, dto.StockAlertResponse{
			MachineID:        machine.ID.String(),
			MachineName:      machine.Name,
			StoreID:          machine.StoreID.String(),
			StockCurrent:     stockCurrent,
			Capacity:         machine.Capacity,
			MinimumThreshold: minimumThreshold.Round(2),
			OccupancyPct:     occupancyPct,
			Severity:         severityFor(occupancyPct),
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].OccupancyPct.LessThan(alerts[j].OccupancyPct)
	})
	return alerts, nil
}
