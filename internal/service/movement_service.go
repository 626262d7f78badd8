package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/model"
	"github.com/MachinePay/backend-agarramais-sub000/internal/money"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementService interface {
	Record(ctx context.Context, userID uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	RecordBatch(ctx context.Context, userID uuid.UUID, req dto.BatchMovementRequest) (*dto.BatchMovementResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID, req dto.UpdateMovementRequest) (*dto.MovementResponse, error)
	List(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error)
}

type movementService struct {
	repo        repository.MovementRepository
	machineRepo repository.MachineRepository
	productRepo repository.ProductRepository
}

func NewMovementService(
	repo repository.MovementRepository,
	machineRepo repository.MachineRepository,
	productRepo repository.ProductRepository,
) MovementService {
	return &movementService{repo: repo, machineRepo: machineRepo, productRepo: productRepo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Record ────────────────────────────────────────────────────────────────────
// One ledger entry per physical count/restock event:
//   1. Resolve machine (404 on unknown)
//   2. Verify stock_before against the previous record's stock_after
//   3. Derive stock_after, avg tokens/prize, recorded revenue
//   4. BEGIN TX: create movement + per-product breakdown
//   5. COMMIT

func (s *movementService) Record(ctx context.Context, userID uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	machineID, err := uuid.Parse(req.MachineID)
	if err != nil {
		return nil, apierror.Validation("machine_id inválido")
	}
	machine, err := s.machineRepo.FindByID(ctx, machineID)
	if err != nil {
		return nil, apierror.NotFound("Máquina não encontrada")
	}

	stockBefore := *req.StockBefore
	dispensed := *req.Dispensed
	restocked := *req.Restocked
	tokens := *req.Tokens

	// The ledger is append-only and verified: the opening stock must match
	// the previous record's closing stock. Two operators submitting against
	// the same stale count would otherwise both be accepted.
	if last, err := s.repo.LastByMachine(ctx, machineID, 1); err == nil && len(last) > 0 {
		if stockBefore != last[0].StockAfter {
			return nil, apierror.Validation(fmt.Sprintf(
				"stock_before (%d) não confere com o estoque final do último registro (%d)",
				stockBefore, last[0].StockAfter))
		}
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		if t, err := time.Parse(time.RFC3339, *req.OccurredAt); err == nil {
			occurredAt = t
		}
	}

	occurrenceType := req.OccurrenceType
	if occurrenceType == "" {
		occurrenceType = "contagem"
		if req.IsWithdrawal {
			occurrenceType = "retirada"
		}
	}

	movement := model.Movement{
		MachineID:          machineID,
		UserID:             userID,
		OccurredAt:         occurredAt,
		StockBefore:        stockBefore,
		Dispensed:          dispensed,
		Restocked:          restocked,
		StockAfter:         stockBefore - dispensed + restocked,
		Tokens:             tokens,
		HardwareCounterIn:  req.HardwareCounterIn,
		HardwareCounterOut: req.HardwareCounterOut,
		IsWithdrawal:       req.IsWithdrawal,
		OccurrenceType:     occurrenceType,
		Notes:              req.Notes,
	}
	applyDerivedFields(&movement, machine.TokenValue)

	// Resolve the per-product breakdown before opening the transaction.
	for _, p := range req.Products {
		pid, err := uuid.Parse(p.ProductID)
		if err != nil {
			return nil, apierror.Validation("product_id inválido")
		}
		if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
			return nil, apierror.NotFound(fmt.Sprintf("Produto %s não encontrado", p.ProductID))
		}
		movement.Products = append(movement.Products, model.MovementProduct{
			ProductID:         pid,
			QuantityDispensed: p.QuantityDispensed,
			QuantityRestocked: p.QuantityRestocked,
		})
	}

	// Movement + breakdown in one transaction: no partial ledger entries.
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(tx, &movement)
	})
	if txErr != nil {
		return nil, txErr
	}

	full, err := s.repo.FindByID(ctx, movement.ID)
	if err != nil {
		// Row was written; fall back to the in-memory copy for the response.
		movement.Machine = machine
		full = &movement
	}
	return movementToResponse(full), nil
}

// applyDerivedFields enforces the write-time derivation hook:
// avg tokens per prize and recorded revenue, both 2-decimal rounded.
// Withdrawals never record revenue.
func applyDerivedFields(m *model.Movement, tokenValue decimal.Decimal) {
	if m.Dispensed > 0 {
		avg := money.Round(decimal.NewFromInt(int64(m.Tokens)).
			Div(decimal.NewFromInt(int64(m.Dispensed))))
		m.AvgTokensPerPrize = &avg
	} else {
		m.AvgTokensPerPrize = nil
	}

	if m.IsWithdrawal {
		m.RevenueRecorded = decimal.Zero
		return
	}
	m.RevenueRecorded = money.Round(decimal.NewFromInt(int64(m.Tokens)).Mul(tokenValue))
}

// ── RecordBatch ───────────────────────────────────────────────────────────────
// Bulk submission from end-of-route data entry. Per-item failures are
// collected into a side list and the rest of the batch keeps processing.

func (s *movementService) RecordBatch(ctx context.Context, userID uuid.UUID, req dto.BatchMovementRequest) (*dto.BatchMovementResponse, error) {
	resp := &dto.BatchMovementResponse{
		Recorded: make([]dto.MovementResponse, 0, len(req.Movements)),
		Errors:   []dto.BatchItemError{},
	}
	for i, item := range req.Movements {
		r, err := s.Record(ctx, userID, item)
		if err != nil {
			resp.Errors = append(resp.Errors, dto.BatchItemError{Index: i, Detail: err.Error()})
			continue
		}
		resp.Recorded = append(resp.Recorded, *r)
	}
	return resp, nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Only observational fields change; derived fields are recomputed so the
// stock_after invariant and the revenue derivation keep holding.

func (s *movementService) Update(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID, req dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	movement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Movimentação não encontrada")
	}
	if actorRole != "admin" && movement.UserID != actorID {
		return nil, apierror.Forbidden("Somente o criador ou um administrador pode editar este registro")
	}

	if req.Notes != nil {
		movement.Notes = req.Notes
	}
	if req.OccurrenceType != nil {
		movement.OccurrenceType = *req.OccurrenceType
	}
	if req.Tokens != nil {
		movement.Tokens = *req.Tokens
	}
	if req.Restocked != nil {
		movement.Restocked = *req.Restocked
		movement.StockAfter = movement.StockBefore - movement.Dispensed + movement.Restocked
	}

	tokenValue := decimal.Zero
	if movement.Machine != nil {
		tokenValue = movement.Machine.TokenValue
	}
	applyDerivedFields(movement, tokenValue)

	if err := s.repo.Update(ctx, movement); err != nil {
		return nil, err
	}
	return movementToResponse(movement), nil
}

// ── List ──────────────────────────────────────────────────────────────────────

func (s *movementService) List(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, *movementToResponse(&m))
	}
	return &dto.MovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func movementToResponse(m *model.Movement) *dto.MovementResponse {
	machineName := ""
	storeID := ""
	if m.Machine != nil {
		machineName = m.Machine.Name
		storeID = m.Machine.StoreID.String()
	}
	userName := ""
	if m.User != nil {
		userName = m.User.Name
	}
	products := make([]dto.MovementProductResponse, 0, len(m.Products))
	for _, p := range m.Products {
		name := ""
		if p.Product != nil {
			name = p.Product.Name
		}
		products = append(products, dto.MovementProductResponse{
			ProductID:         p.ProductID.String(),
			ProductName:       name,
			QuantityDispensed: p.QuantityDispensed,
			QuantityRestocked: p.QuantityRestocked,
		})
	}
	return &dto.MovementResponse{
		ID:                 m.ID.String(),
		MachineID:          m.MachineID.String(),
		MachineName:        machineName,
		StoreID:            storeID,
		UserID:             m.UserID.String(),
		UserName:           userName,
		OccurredAt:         m.OccurredAt.Format(time.RFC3339),
		StockBefore:        m.StockBefore,
		Dispensed:          m.Dispensed,
		Restocked:          m.Restocked,
		StockAfter:         m.StockAfter,
		Tokens:             m.Tokens,
		HardwareCounterIn:  m.HardwareCounterIn,
		HardwareCounterOut: m.HardwareCounterOut,
		AvgTokensPerPrize:  m.AvgTokensPerPrize,
		RevenueRecorded:    m.RevenueRecorded,
		IsWithdrawal:       m.IsWithdrawal,
		OccurrenceType:     m.OccurrenceType,
		Notes:              m.Notes,
		Products:           products,
		CreatedAt:          m.CreatedAt.Format(time.RFC3339),
	}
}
