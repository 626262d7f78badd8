package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubMovementRepo is an in-memory MovementRepository. machineStore maps
// machine → store so the scoped aggregates can honor a PeriodScope.
type stubMovementRepo struct {
	movements    []model.Movement
	machineStore map[uuid.UUID]uuid.UUID
}

func newStubMovementRepo() *stubMovementRepo {
	return &stubMovementRepo{machineStore: make(map[uuid.UUID]uuid.UUID)}
}

func (r *stubMovementRepo) DB() *gorm.DB { return nil }

func (r *stubMovementRepo) Create(_ *gorm.DB, m *model.Movement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Movement, error) {
	for i := range r.movements {
		if r.movements[i].ID == id {
			m := r.movements[i]
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMovementRepo) Update(_ context.Context, m *model.Movement) error {
	for i := range r.movements {
		if r.movements[i].ID == m.ID {
			r.movements[i] = *m
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubMovementRepo) List(_ context.Context, _ repository.MovementFilter) ([]model.Movement, int64, error) {
	out := make([]model.Movement, len(r.movements))
	copy(out, r.movements)
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) LastByMachine(_ context.Context, machineID uuid.UUID, n int) ([]model.Movement, error) {
	var matches []model.Movement
	for _, m := range r.movements {
		if m.MachineID == machineID {
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].OccurredAt.After(matches[j].OccurredAt)
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

func (r *stubMovementRepo) inScope(m model.Movement, scope repository.PeriodScope) bool {
	if r.machineStore[m.MachineID] != scope.StoreID {
		return false
	}
	if scope.MachineID != nil && m.MachineID != *scope.MachineID {
		return false
	}
	return !m.OccurredAt.Before(scope.Start) && m.OccurredAt.Before(scope.EndExclusive())
}

func (r *stubMovementRepo) SumTokens(_ context.Context, scope repository.PeriodScope) (int64, error) {
	var total int64
	for _, m := range r.movements {
		if r.inScope(m, scope) {
			total += int64(m.Tokens)
		}
	}
	return total, nil
}

func (r *stubMovementRepo) SumDispensed(_ context.Context, scope repository.PeriodScope) (int64, error) {
	var total int64
	for _, m := range r.movements {
		if r.inScope(m, scope) {
			total += int64(m.Dispensed)
		}
	}
	return total, nil
}

func (r *stubMovementRepo) SumRevenue(_ context.Context, scope repository.PeriodScope) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.movements {
		if r.inScope(m, scope) {
			total = total.Add(m.RevenueRecorded)
		}
	}
	return total, nil
}

func (r *stubMovementRepo) DailyRevenue(_ context.Context, scope repository.PeriodScope) ([]repository.DailyAggregate, error) {
	byDay := make(map[time.Time]*repository.DailyAggregate)
	for _, m := range r.movements {
		if !r.inScope(m, scope) {
			continue
		}
		day := time.Date(m.OccurredAt.Year(), m.OccurredAt.Month(), m.OccurredAt.Day(), 0, 0, 0, 0, time.UTC)
		agg, ok := byDay[day]
		if !ok {
			agg = &repository.DailyAggregate{Day: day, Revenue: decimal.Zero}
			byDay[day] = agg
		}
		agg.Revenue = agg.Revenue.Add(m.RevenueRecorded)
		agg.Tokens += int64(m.Tokens)
	}
	var rows []repository.DailyAggregate
	for _, agg := range byDay {
		rows = append(rows, *agg)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day.Before(rows[j].Day) })
	return rows, nil
}

func (r *stubMovementRepo) RevenueByMachine(_ context.Context, scope repository.PeriodScope) ([]repository.MachineAggregate, error) {
	byMachine := make(map[uuid.UUID]*repository.MachineAggregate)
	for _, m := range r.movements {
		if !r.inScope(m, scope) {
			continue
		}
		agg, ok := byMachine[m.MachineID]
		if !ok {
			agg = &repository.MachineAggregate{MachineID: m.MachineID, Revenue: decimal.Zero}
			byMachine[m.MachineID] = agg
		}
		agg.Revenue = agg.Revenue.Add(m.RevenueRecorded)
		agg.Tokens += int64(m.Tokens)
	}
	var rows []repository.MachineAggregate
	for _, agg := range byMachine {
		rows = append(rows, *agg)
	}
	return rows, nil
}

func (r *stubMovementRepo) UnitsByProduct(_ context.Context, scope repository.PeriodScope) ([]repository.ProductAggregate, error) {
	byProduct := make(map[uuid.UUID]*repository.ProductAggregate)
	for _, m := range r.movements {
		if !r.inScope(m, scope) {
			continue
		}
		for _, p := range m.Products {
			agg, ok := byProduct[p.ProductID]
			if !ok {
				agg = &repository.ProductAggregate{ProductID: p.ProductID}
				byProduct[p.ProductID] = agg
			}
			agg.Dispensed += int64(p.QuantityDispensed)
			agg.Restocked += int64(p.QuantityRestocked)
		}
	}
	var rows []repository.ProductAggregate
	for _, agg := range byProduct {
		rows = append(rows, *agg)
	}
	return rows, nil
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

// stubMachineRepo holds machines and stores keyed by ID.
type stubMachineRepo struct {
	machines map[uuid.UUID]*model.Machine
	stores   map[uuid.UUID]*model.Store
}

func newStubMachineRepo() *stubMachineRepo {
	return &stubMachineRepo{
		machines: make(map[uuid.UUID]*model.Machine),
		stores:   make(map[uuid.UUID]*model.Store),
	}
}

func (r *stubMachineRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMachineRepo) ListActive(_ context.Context, storeID *uuid.UUID) ([]model.Machine, error) {
	var out []model.Machine
	for _, m := range r.machines {
		if !m.Active {
			continue
		}
		if storeID != nil && m.StoreID != *storeID {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubMachineRepo) FindStoreByID(_ context.Context, id uuid.UUID) (*model.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

var _ repository.MachineRepository = (*stubMachineRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]model.Product)}
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	out := make(map[uuid.UUID]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type monthKey struct {
	store uuid.UUID
	year  int
	month int
}

// stubCostRepo mirrors the fixed/variable cost tables plus the monthly
// snapshot cache.
type stubCostRepo struct {
	fixed         []model.FixedCost
	monthlyTotals map[monthKey]decimal.Decimal
	variable      []model.VariableCost
	snapshotErr   error
}

func newStubCostRepo() *stubCostRepo {
	return &stubCostRepo{monthlyTotals: make(map[monthKey]decimal.Decimal)}
}

func (r *stubCostRepo) UpsertFixedCost(_ context.Context, fc *model.FixedCost) error {
	if fc.ID == uuid.Nil {
		fc.ID = uuid.New()
	}
	for i := range r.fixed {
		if r.fixed[i].StoreID == fc.StoreID && r.fixed[i].Name == fc.Name {
			r.fixed[i].Amount = fc.Amount
			return nil
		}
	}
	r.fixed = append(r.fixed, *fc)
	return nil
}

func (r *stubCostRepo) ListFixedCosts(_ context.Context, storeID uuid.UUID) ([]model.FixedCost, error) {
	var out []model.FixedCost
	for _, fc := range r.fixed {
		if fc.StoreID == storeID {
			out = append(out, fc)
		}
	}
	return out, nil
}

func (r *stubCostRepo) SumFixedCosts(_ context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, fc := range r.fixed {
		if fc.StoreID == storeID {
			total = total.Add(fc.Amount)
		}
	}
	return total, nil
}

func (r *stubCostRepo) FindMonthlyTotal(_ context.Context, storeID uuid.UUID, year, month int) (*model.FixedCostMonthlyTotal, error) {
	total, ok := r.monthlyTotals[monthKey{storeID, year, month}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.FixedCostMonthlyTotal{
		StoreID: storeID, Year: year, Month: month, TotalAmount: total,
	}, nil
}

func (r *stubCostRepo) UpsertMonthlyTotal(_ context.Context, t *model.FixedCostMonthlyTotal) error {
	if r.snapshotErr != nil {
		return r.snapshotErr
	}
	r.monthlyTotals[monthKey{t.StoreID, t.Year, t.Month}] = t.TotalAmount
	return nil
}

func (r *stubCostRepo) CreateVariableCost(_ context.Context, vc *model.VariableCost) error {
	if vc.ID == uuid.Nil {
		vc.ID = uuid.New()
	}
	r.variable = append(r.variable, *vc)
	return nil
}

func (r *stubCostRepo) ListVariableCosts(_ context.Context, storeID uuid.UUID) ([]model.VariableCost, error) {
	var out []model.VariableCost
	for _, vc := range r.variable {
		if vc.StoreID == storeID {
			out = append(out, vc)
		}
	}
	return out, nil
}

func (r *stubCostRepo) SumVariableCostsOverlapping(_ context.Context, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, vc := range r.variable {
		if vc.StoreID != storeID {
			continue
		}
		if vc.RangeStart.After(end) || vc.RangeEnd.Before(start) {
			continue
		}
		total = total.Add(vc.Amount)
	}
	return total, nil
}

var _ repository.CostRepository = (*stubCostRepo)(nil)

type stubCashRepo struct {
	entries []model.CashRegisterEntry
}

func (r *stubCashRepo) Create(_ context.Context, e *model.CashRegisterEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubCashRepo) matches(e model.CashRegisterEntry, scope repository.PeriodScope) bool {
	if e.StoreID != scope.StoreID {
		return false
	}
	if scope.MachineID != nil && (e.MachineID == nil || *e.MachineID != *scope.MachineID) {
		return false
	}
	return !e.PeriodStart.After(scope.End) && !e.PeriodEnd.Before(scope.Start)
}

func (r *stubCashRepo) ListByScope(_ context.Context, scope repository.PeriodScope) ([]model.CashRegisterEntry, error) {
	var out []model.CashRegisterEntry
	for _, e := range r.entries {
		if r.matches(e, scope) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubCashRepo) SumByScope(_ context.Context, scope repository.PeriodScope) (repository.DeclaredAmounts, error) {
	amounts := repository.DeclaredAmounts{Cash: decimal.Zero, CardPix: decimal.Zero}
	for _, e := range r.entries {
		if r.matches(e, scope) {
			amounts.Cash = amounts.Cash.Add(e.CashAmount)
			amounts.CardPix = amounts.CardPix.Add(e.CardPixAmount)
		}
	}
	return amounts, nil
}

var _ repository.CashRegisterRepository = (*stubCashRepo)(nil)

type stubIgnoredRepo struct {
	keys map[string]bool
}

func newStubIgnoredRepo() *stubIgnoredRepo {
	return &stubIgnoredRepo{keys: make(map[string]bool)}
}

func (r *stubIgnoredRepo) Create(_ context.Context, ia *model.IgnoredAlert) error {
	r.keys[ia.AlertKey] = true
	return nil
}

func (r *stubIgnoredRepo) IgnoredKeys(_ context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(r.keys))
	for k := range r.keys {
		out[k] = true
	}
	return out, nil
}

var _ repository.IgnoredAlertRepository = (*stubIgnoredRepo)(nil)

// errSnapshot simulates a persistence failure on the snapshot cache.
var errSnapshot = errors.New("snapshot write failed")

// ── Scenario helpers ──────────────────────────────────────────────────────────

// newStoreAndMachine seeds a store + one active machine and links the
// movement repo's scoping map.
func newStoreAndMachine(machines *stubMachineRepo, movements *stubMovementRepo, name string, capacity int, tokenValue string) (*model.Store, *model.Machine) {
	store := &model.Store{ID: uuid.New(), Name: "Loja Centro", Active: true}
	machines.stores[store.ID] = store

	machine := &model.Machine{
		ID:                uuid.New(),
		StoreID:           store.ID,
		Name:              name,
		Capacity:          capacity,
		TokenValue:        decimal.RequireFromString(tokenValue),
		AlertThresholdPct: 30,
		Active:            true,
	}
	machines.machines[machine.ID] = machine
	if movements != nil {
		movements.machineStore[machine.ID] = store.ID
	}
	return store, machine
}

func intPtr(v int) *int { return &v }

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
