package service

import (
	"context"
	"fmt"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/model"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"

	"github.com/google/uuid"
)

// ConsistencyService compares recorded dispensed/token figures against the
// machine's hardware counters. Advisory only: it never blocks writes and is
// evaluated at query time.
type ConsistencyService interface {
	DetectAnomalies(ctx context.Context, storeID *uuid.UUID) ([]dto.ConsistencyAlertResponse, error)
	Ignore(ctx context.Context, userID uuid.UUID, alertKey string) error
}

type consistencyService struct {
	movementRepo repository.MovementRepository
	machineRepo  repository.MachineRepository
	ignoredRepo  repository.IgnoredAlertRepository
}

func NewConsistencyService(
	movementRepo repository.MovementRepository,
	machineRepo repository.MachineRepository,
	ignoredRepo repository.IgnoredAlertRepository,
) ConsistencyService {
	return &consistencyService{
		movementRepo: movementRepo,
		machineRepo:  machineRepo,
		ignoredRepo:  ignoredRepo,
	}
}

// DetectAnomalies checks, per active machine, the delta between the two most
// recent hardware counter readings against what the latest record claims was
// dispensed and redeemed. Machines without counters (nil or zero OUT counter
// on the latest record) are skipped, as are machines with fewer than two
// records.
func (s *consistencyService) DetectAnomalies(ctx context.Context, storeID *uuid.UUID) ([]dto.ConsistencyAlertResponse, error) {
	machines, err := s.machineRepo.ListActive(ctx, storeID)
	if err != nil {
		return nil, err
	}
	ignored, err := s.ignoredRepo.IgnoredKeys(ctx)
	if err != nil {
		return nil, err
	}

	alerts := []dto.ConsistencyAlertResponse{}
	for _, machine := range machines {
		last, err := s.movementRepo.LastByMachine(ctx, machine.ID, 2)
		if err != nil {
			return nil, err
		}
		if len(last) < 2 {
			continue
		}
		current, previous := last[0], last[1]

		if current.HardwareCounterOut == nil || *current.HardwareCounterOut == 0 {
			// Machine without counters.
			continue
		}

		diffOut := *current.HardwareCounterOut - counterOrZero(previous.HardwareCounterOut)
		diffIn := counterOrZero(current.HardwareCounterIn) - counterOrZero(previous.HardwareCounterIn)

		if diffOut == current.Dispensed && diffIn == current.Tokens {
			continue
		}

		key := fmt.Sprintf("%s-%s", machine.ID, current.ID)
		if ignored[key] {
			continue
		}

		alerts = append(alerts, dto.ConsistencyAlertResponse{
			AlertKey:          key,
			MachineID:         machine.ID.String(),
			MachineName:       machine.Name,
			DiffOut:           diffOut,
			DiffIn:            diffIn,
			RecordedDispensed: current.Dispensed,
			RecordedTokens:    current.Tokens,
			Message: fmt.Sprintf(
				"Contadores da máquina %s divergem do registro: saída %d vs %d registradas, entrada %d vs %d fichas",
				machine.Name, diffOut, current.Dispensed, diffIn, current.Tokens),
		})
	}
	return alerts, nil
}

func counterOrZero(c *int) int {
	if c == nil {
		return 0
	}
	return *c
}

// Ignore suppresses one alert permanently. AlertKey format: machineID-movementID.
func (s *consistencyService) Ignore(ctx context.Context, userID uuid.UUID, alertKey string) error {
	machineID, err := machineIDFromAlertKey(alertKey)
	if err != nil {
		return err
	}
	return s.ignoredRepo.Create(ctx, &model.IgnoredAlert{
		AlertKey:  alertKey,
		MachineID: machineID,
		UserID:    userID,
	})
}

func machineIDFromAlertKey(key string) (uuid.UUID, error) {
	// Both halves of the key are UUIDs; the machine ID is the first 36 chars.
	if len(key) < 73 {
		return uuid.Nil, apierror.Validation(fmt.Sprintf("Chave de alerta inválida: %q", key))
	}
	id, err := uuid.Parse(key[:36])
	if err != nil {
		return uuid.Nil, apierror.Validation(fmt.Sprintf("Chave de alerta inválida: %q", key))
	}
	return id, nil
}
