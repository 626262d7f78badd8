package service

import (
	"context"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/model"
	"github.com/MachinePay/backend-agarramais-sub000/internal/money"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CostService owns the fixed/variable cost tables the proration engine
// reads from.
type CostService interface {
	UpsertFixedCost(ctx context.Context, storeID uuid.UUID, req dto.UpsertFixedCostRequest) (*dto.FixedCostResponse, error)
	ListFixedCosts(ctx context.Context, storeID uuid.UUID) ([]dto.FixedCostResponse, error)
	CreateVariableCost(ctx context.Context, req dto.CreateVariableCostRequest) (*dto.VariableCostResponse, error)
	ListVariableCosts(ctx context.Context, storeID uuid.UUID) ([]dto.VariableCostResponse, error)
}

type costService struct {
	repo        repository.CostRepository
	machineRepo repository.MachineRepository
}

func NewCostService(repo repository.CostRepository, machineRepo repository.MachineRepository) CostService {
	return &costService{repo: repo, machineRepo: machineRepo}
}

// UpsertFixedCost creates or amends a named monthly cost, then refreshes the
// current month's snapshot so that reports over the running month see the
// edit. Past months stay frozen.
func (s *costService) UpsertFixedCost(ctx context.Context, storeID uuid.UUID, req dto.UpsertFixedCostRequest) (*dto.FixedCostResponse, error) {
	if _, err := s.machineRepo.FindStoreByID(ctx, storeID); err != nil {
		return nil, apierror.NotFound("Loja não encontrada")
	}

	fc := &model.FixedCost{
		StoreID: storeID,
		Name:    req.Name,
		Amount:  money.Round(money.Parse(req.Amount)),
	}
	if err := s.repo.UpsertFixedCost(ctx, fc); err != nil {
		return nil, err
	}

	s.refreshCurrentMonthSnapshot(ctx, storeID)

	return &dto.FixedCostResponse{
		ID:        fc.ID.String(),
		StoreID:   storeID.String(),
		Name:      fc.Name,
		Amount:    fc.Amount,
		UpdatedAt: fc.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (s *costService) refreshCurrentMonthSnapshot(ctx context.Context, storeID uuid.UUID) {
	total, err := s.repo.SumFixedCosts(ctx, storeID)
	if err != nil {
		log.Error().Err(err).Str("store_id", storeID.String()).
			Msg("falha ao recalcular total de gastos fixos")
		return
	}
	now := time.Now()
	snapshot := &model.FixedCostMonthlyTotal{
		StoreID:     storeID,
		Year:        now.Year(),
		Month:       int(now.Month()),
		TotalAmount: money.Round(total),
	}
	if err := s.repo.UpsertMonthlyTotal(ctx, snapshot); err != nil {
		log.Error().Err(err).Str("store_id", storeID.String()).
			Msg("falha ao atualizar snapshot mensal de gastos fixos")
	}
}

func (s *costService) ListFixedCosts(ctx context.Context, storeID uuid.UUID) ([]dto.FixedCostResponse, error) {
	costs, err := s.repo.ListFixedCosts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.FixedCostResponse, 0, len(costs))
	for _, fc := range costs {
		result = append(result, dto.FixedCostResponse{
			ID:        fc.ID.String(),
			StoreID:   fc.StoreID.String(),
			Name:      fc.Name,
			Amount:    fc.Amount,
			UpdatedAt: fc.UpdatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// CreateVariableCost records a one-off or ranged cost. Immutable after
// creation.
func (s *costService) CreateVariableCost(ctx context.Context, req dto.CreateVariableCostRequest) (*dto.VariableCostResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apierror.Validation("store_id inválido")
	}
	if _, err := s.machineRepo.FindStoreByID(ctx, storeID); err != nil {
		return nil, apierror.NotFound("Loja não encontrada")
	}

	rangeStart, err1 := time.Parse("2006-01-02", req.RangeStart)
	rangeEnd, err2 := time.Parse("2006-01-02", req.RangeEnd)
	if err1 != nil || err2 != nil {
		return nil, apierror.Validation("Datas do intervalo inválidas")
	}
	if rangeEnd.Before(rangeStart) {
		return nil, apierror.Validation("Intervalo inválido: data final anterior à data inicial")
	}

	var linkedID *uuid.UUID
	if req.LinkedCashEntryID != nil {
		id, err := uuid.Parse(*req.LinkedCashEntryID)
		if err != nil {
			return nil, apierror.Validation("linked_cash_entry_id inválido")
		}
		linkedID = &id
	}

	vc := &model.VariableCost{
		StoreID:           storeID,
		Name:              req.Name,
		Amount:            money.Round(money.Parse(req.Amount)),
		RangeStart:        rangeStart,
		RangeEnd:          rangeEnd,
		LinkedCashEntryID: linkedID,
	}
	if err := s.repo.CreateVariableCost(ctx, vc); err != nil {
		return nil, err
	}
	return variableCostToResponse(vc), nil
}

func (s *costService) ListVariableCosts(ctx context.Context, storeID uuid.UUID) ([]dto.VariableCostResponse, error) {
	costs, err := s.repo.ListVariableCosts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.VariableCostResponse, 0, len(costs))
	for i := range costs {
		result = append(result, *variableCostToResponse(&costs[i]))
	}
	return result, nil
}

func variableCostToResponse(vc *model.VariableCost) *dto.VariableCostResponse {
	var linkedID *string
	if vc.LinkedCashEntryID != nil {
		id := vc.LinkedCashEntryID.String()
		linkedID = &id
	}
	return &dto.VariableCostResponse{
		ID:                vc.ID.String(),
		StoreID:           vc.StoreID.String(),
		Name:              vc.Name,
		Amount:            vc.Amount,
		RangeStart:        vc.RangeStart.Format("2006-01-02"),
		RangeEnd:          vc.RangeEnd.Format("2006-01-02"),
		LinkedCashEntryID: linkedID,
		CreatedAt:         vc.CreatedAt.Format(time.RFC3339),
	}
}
