package repository

import (
	"context"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CostRepository interface {
	// Fixed costs
	UpsertFixedCost(ctx context.Context, fc *model.FixedCost) error
	ListFixedCosts(ctx context.Context, storeID uuid.UUID) ([]model.FixedCost, error)
	SumFixedCosts(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)

	// Monthly snapshots
	FindMonthlyTotal(ctx context.Context, storeID uuid.UUID, year, month int) (*model.FixedCostMonthlyTotal, error)
	UpsertMonthlyTotal(ctx context.Context, t *model.FixedCostMonthlyTotal) error

	// Variable costs
	CreateVariableCost(ctx context.Context, vc *model.VariableCost) error
	ListVariableCosts(ctx context.Context, storeID uuid.UUID) ([]model.VariableCost, error)
	SumVariableCostsOverlapping(ctx context.Context, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
}

type costRepo struct{ db *gorm.DB }

func NewCostRepository(db *gorm.DB) CostRepository { return &costRepo{db: db} }

func (r *costRepo) UpsertFixedCost(ctx context.Context, fc *model.FixedCost) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(fc).Error
}

func (r *costRepo) ListFixedCosts(ctx context.Context, storeID uuid.UUID) ([]model.FixedCost, error) {
	var costs []model.FixedCost
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("name ASC").
		Find(&costs).Error
	return costs, err
}

func (r *costRepo) SumFixedCosts(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.FixedCost{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *costRepo) FindMonthlyTotal(ctx context.Context, storeID uuid.UUID, year, month int) (*model.FixedCostMonthlyTotal, error) {
	var t model.FixedCostMonthlyTotal
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND year = ? AND month = ?", storeID, year, month).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertMonthlyTotal is keyed by (store, year, month) to avoid duplicate
// cache rows under concurrent first queries; last writer wins.
func (r *costRepo) UpsertMonthlyTotal(ctx context.Context, t *model.FixedCostMonthlyTotal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_amount", "updated_at"}),
	}).Create(t).Error
}

func (r *costRepo) CreateVariableCost(ctx context.Context, vc *model.VariableCost) error {
	return r.db.WithContext(ctx).Create(vc).Error
}

func (r *costRepo) ListVariableCosts(ctx context.Context, storeID uuid.UUID) ([]model.VariableCost, error) {
	var costs []model.VariableCost
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("range_start DESC").
		Find(&costs).Error
	return costs, err
}

// SumVariableCostsOverlapping uses inclusive interval overlap, not
// containment: range_start <= periodEnd AND range_end >= periodStart.
func (r *costRepo) SumVariableCostsOverlapping(ctx context.Context, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.VariableCost{}).
		Where("store_id = ?", storeID).
		Where("range_start <= ? AND range_end >= ?", end, start).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
