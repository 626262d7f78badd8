package repository

import (
	"context"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PeriodScope identifies the slice of the ledger a report is built from:
// one store, an inclusive date range, optionally narrowed to one machine.
// All typed aggregates below take a scope instead of ad hoc query params.
type PeriodScope struct {
	StoreID   uuid.UUID
	MachineID *uuid.UUID
	Start     time.Time // date, midnight
	End       time.Time // date, inclusive
}

// EndExclusive converts the inclusive end date into the exclusive upper
// bound used by timestamp comparisons.
func (s PeriodScope) EndExclusive() time.Time {
	return s.End.AddDate(0, 0, 1)
}

// MovementFilter defines filters for browsing the ledger.
type MovementFilter struct {
	MachineID *uuid.UUID
	StoreID   *uuid.UUID
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// DailyAggregate is one calendar day of activity within a scope.
type DailyAggregate struct {
	Day     time.Time
	Revenue decimal.Decimal
	Tokens  int64
}

// MachineAggregate carries per-machine totals within a scope.
type MachineAggregate struct {
	MachineID uuid.UUID
	Revenue   decimal.Decimal
	Tokens    int64
}

// ProductAggregate carries per-product unit counts within a scope.
type ProductAggregate struct {
	ProductID uuid.UUID
	Dispensed int64
	Restocked int64
}

type MovementRepository interface {
	DB() *gorm.DB
	Create(tx *gorm.DB, m *model.Movement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Movement, error)
	Update(ctx context.Context, m *model.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error)
	// LastByMachine returns up to n most recent movements, newest first.
	LastByMachine(ctx context.Context, machineID uuid.UUID, n int) ([]model.Movement, error)

	// Typed period-scoped aggregates, composed by the report service.
	SumTokens(ctx context.Context, scope PeriodScope) (int64, error)
	SumDispensed(ctx context.Context, scope PeriodScope) (int64, error)
	SumRevenue(ctx context.Context, scope PeriodScope) (decimal.Decimal, error)
	DailyRevenue(ctx context.Context, scope PeriodScope) ([]DailyAggregate, error)
	RevenueByMachine(ctx context.Context, scope PeriodScope) ([]MachineAggregate, error)
	UnitsByProduct(ctx context.Context, scope PeriodScope) ([]ProductAggregate, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository { return &movementRepo{db: db} }

func (r *movementRepo) DB() *gorm.DB { return r.db }

func (r *movementRepo) Create(tx *gorm.DB, m *model.Movement) error {
	return tx.Create(m).Error
}

func (r *movementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Movement, error) {
	var m model.Movement
	err := r.db.WithContext(ctx).
		Preload("Machine").
		Preload("User").
		Preload("Products.Product").
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *movementRepo) Update(ctx context.Context, m *model.Movement) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *movementRepo) List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Movement{}).
		Preload("Machine").
		Preload("User").
		Preload("Products.Product")
	if filter.MachineID != nil {
		q = q.Where("machine_id = ?", *filter.MachineID)
	}
	if filter.StoreID != nil {
		q = q.Where("machine_id IN (?)",
			r.db.Model(&model.Machine{}).Select("id").Where("store_id = ?", *filter.StoreID))
	}
	if filter.From != nil {
		q = q.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("occurred_at < ?", filter.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.Movement
	err := q.Order("occurred_at DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *movementRepo) LastByMachine(ctx context.Context, machineID uuid.UUID, n int) ([]model.Movement, error) {
	var movements []model.Movement
	err := r.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		Order("occurred_at DESC").
		Limit(n).
		Find(&movements).Error
	return movements, err
}

// scoped applies the store/machine/date-range constraints shared by every
// aggregate query.
func (r *movementRepo) scoped(ctx context.Context, scope PeriodScope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Movement{}).
		Joins("JOIN machines ON machines.id = movements.machine_id").
		Where("machines.store_id = ?", scope.StoreID).
		Where("movements.occurred_at >= ? AND movements.occurred_at < ?", scope.Start, scope.EndExclusive())
	if scope.MachineID != nil {
		q = q.Where("movements.machine_id = ?", *scope.MachineID)
	}
	return q
}

func (r *movementRepo) SumTokens(ctx context.Context, scope PeriodScope) (int64, error) {
	var total int64
	err := r.scoped(ctx, scope).
		Select("COALESCE(SUM(movements.tokens), 0)").
		Scan(&total).Error
	return total, err
}

func (r *movementRepo) SumDispensed(ctx context.Context, scope PeriodScope) (int64, error) {
	var total int64
	err := r.scoped(ctx, scope).
		Select("COALESCE(SUM(movements.dispensed), 0)").
		Scan(&total).Error
	return total, err
}

func (r *movementRepo) SumRevenue(ctx context.Context, scope PeriodScope) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.scoped(ctx, scope).
		Select("COALESCE(SUM(movements.revenue_recorded), 0)").
		Scan(&total).Error
	return total, err
}

func (r *movementRepo) DailyRevenue(ctx context.Context, scope PeriodScope) ([]DailyAggregate, error) {
	var rows []DailyAggregate
	err := r.scoped(ctx, scope).
		Select("DATE(movements.occurred_at) AS day, COALESCE(SUM(movements.revenue_recorded), 0) AS revenue, COALESCE(SUM(movements.tokens), 0) AS tokens").
		Group("DATE(movements.occurred_at)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *movementRepo) RevenueByMachine(ctx context.Context, scope PeriodScope) ([]MachineAggregate, error) {
	var rows []MachineAggregate
	err := r.scoped(ctx, scope).
		Select("movements.machine_id AS machine_id, COALESCE(SUM(movements.revenue_recorded), 0) AS revenue, COALESCE(SUM(movements.tokens), 0) AS tokens").
		Group("movements.machine_id").
		Scan(&rows).Error
	return rows, err
}

func (r *movementRepo) UnitsByProduct(ctx context.Context, scope PeriodScope) ([]ProductAggregate, error) {
	q := r.db.WithContext(ctx).Model(&model.MovementProduct{}).
		Joins("JOIN movements ON movements.id = movement_products.movement_id").
		Joins("JOIN machines ON machines.id = movements.machine_id").
		Where("machines.store_id = ?", scope.StoreID).
		Where("movements.occurred_at >= ? AND movements.occurred_at < ?", scope.Start, scope.EndExclusive())
	if scope.MachineID != nil {
		q = q.Where("movements.machine_id = ?", *scope.MachineID)
	}

	var rows []ProductAggregate
	err := q.
		Select("movement_products.product_id AS product_id, COALESCE(SUM(movement_products.quantity_dispensed), 0) AS dispensed, COALESCE(SUM(movement_products.quantity_restocked), 0) AS restocked").
		Group("movement_products.product_id").
		Scan(&rows).Error
	return rows, err
}
