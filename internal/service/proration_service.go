package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"
	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/model"
	"github.com/MachinePay/backend-agarramais-sub000/internal/money"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProrationService computes the three cost legs for an arbitrary store/period:
// fixed costs day-prorated from monthly totals, variable costs matched by
// date-range overlap, and product costs derived from units dispensed.
// It is a pure function of stored state: calling it twice for the same
// immutable inputs yields identical results.
type ProrationService interface {
	ComputePeriodCost(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.CostBreakdown, error)
}

type prorationService struct {
	costRepo     repository.CostRepository
	movementRepo repository.MovementRepository
	productRepo  repository.ProductRepository
}

func NewProrationService(
	costRepo repository.CostRepository,
	movementRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) ProrationService {
	return &prorationService{
		costRepo:     costRepo,
		movementRepo: movementRepo,
		productRepo:  productRepo,
	}
}

// ComputePeriodCost fans the three independent legs out concurrently; each
// leg and the total are rounded to 2 decimals independently.
func (s *prorationService) ComputePeriodCost(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (*dto.CostBreakdown, error) {
	periodStart = truncateToDay(periodStart)
	periodEnd = truncateToDay(periodEnd)
	if periodEnd.Before(periodStart) {
		return nil, apierror.Validation("Período inválido: data final anterior à data inicial")
	}

	var (
		wg                    sync.WaitGroup
		fixed, variable, prod decimal.Decimal
		errFixed, errVar, errProd error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		fixed, errFixed = s.fixedCostLeg(ctx, storeID, periodStart, periodEnd)
	}()
	go func() {
		defer wg.Done()
		variable, errVar = s.variableCostLeg(ctx, storeID, periodStart, periodEnd)
	}()
	go func() {
		defer wg.Done()
		prod, errProd = s.productCostLeg(ctx, storeID, periodStart, periodEnd)
	}()
	wg.Wait()

	for _, err := range []error{errFixed, errVar, errProd} {
		if err != nil {
			return nil, err
		}
	}

	return &dto.CostBreakdown{
		Fixed:    fixed,
		Variable: variable,
		Product:  prod,
		Total:    money.Round(fixed.Add(variable).Add(prod)),
	}, nil
}

// ── Fixed-cost leg ────────────────────────────────────────────────────────────
// For every calendar month touched by the period, allocate
// monthlyTotal / daysInMonth * daysOverlap, rounding each month's allocation.
// A period spanning whole months sums back to the exact monthly totals.

func (s *prorationService) fixedCostLeg(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	total := decimal.Zero

	cursor := time.Date(periodStart.Year(), periodStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(periodEnd) {
		year, month := cursor.Year(), int(cursor.Month())
		monthStart := cursor
		daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		monthEnd := time.Date(year, time.Month(month), daysInMonth, 0, 0, 0, 0, time.UTC)

		monthlyTotal, err := s.monthlyTotal(ctx, storeID, year, month)
		if err != nil {
			return decimal.Zero, err
		}

		intersectStart := maxDate(periodStart, monthStart)
		intersectEnd := minDate(periodEnd, monthEnd)
		daysOverlap := int(intersectEnd.Sub(intersectStart).Hours()/24) + 1

		allocation := money.Round(monthlyTotal.
			Mul(decimal.NewFromInt(int64(daysOverlap))).
			Div(decimal.NewFromInt(int64(daysInMonth))))
		total = total.Add(allocation)

		cursor = cursor.AddDate(0, 1, 0)
	}

	return money.Round(total), nil
}

// monthlyTotal returns the snapshotted fixed-cost total for (store, year,
// month), lazily writing the snapshot on first query so that retroactive
// fixed-cost edits do not rewrite historical reports. A snapshot write
// failure is logged and tolerated: the computation proceeds with the
// in-memory value.
func (s *prorationService) monthlyTotal(ctx context.Context, storeID uuid.UUID, year, month int) (decimal.Decimal, error) {
	snapshot, err := s.costRepo.FindMonthlyTotal(ctx, storeID, year, month)
	if err == nil {
		return snapshot.TotalAmount, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	live, err := s.costRepo.SumFixedCosts(ctx, storeID)
	if err != nil {
		return decimal.Zero, err
	}
	live = money.Round(live)

	if err := s.costRepo.UpsertMonthlyTotal(ctx, &model.FixedCostMonthlyTotal{
		StoreID:     storeID,
		Year:        year,
		Month:       month,
		TotalAmount: live,
	}); err != nil {
		log.Error().Err(err).
			Str("store_id", storeID.String()).
			Int("year", year).
			Int("month", month).
			Msg("falha ao gravar snapshot mensal de gastos fixos")
	}
	return live, nil
}

// ── Variable-cost leg ─────────────────────────────────────────────────────────

func (s *prorationService) variableCostLeg(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	sum, err := s.costRepo.SumVariableCostsOverlapping(ctx, storeID, periodStart, periodEnd)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round(sum), nil
}

// ── Product-cost leg ──────────────────────────────────────────────────────────
// Units dispensed within the period, priced at unit cost with sale price as
// fallback when the unit cost was never filled in.

func (s *prorationService) productCostLeg(ctx context.Context, storeID uuid.UUID, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	scope := repository.PeriodScope{StoreID: storeID, Start: periodStart, End: periodEnd}
	units, err := s.movementRepo.UnitsByProduct(ctx, scope)
	if err != nil {
		return decimal.Zero, err
	}

	ids := make([]uuid.UUID, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, u := range units {
		p, ok := products[u.ProductID]
		if !ok {
			continue
		}
		cost := p.UnitCost
		if cost.IsZero() {
			cost = p.SalePrice
		}
		total = total.Add(cost.Mul(decimal.NewFromInt(u.Dispensed)))
	}
	return money.Round(total), nil
}

// ── Date helpers ──────────────────────────────────────────────────────────────

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
