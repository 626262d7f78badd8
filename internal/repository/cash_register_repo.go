package repository

import (
	"context"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeclaredAmounts are the summed manual cash/card figures for a scope.
type DeclaredAmounts struct {
	Cash    decimal.Decimal
	CardPix decimal.Decimal
}

type CashRegisterRepository interface {
	Create(ctx context.Context, e *model.CashRegisterEntry) error
	ListByScope(ctx context.Context, scope PeriodScope) ([]model.CashRegisterEntry, error)
	SumByScope(ctx context.Context, scope PeriodScope) (DeclaredAmounts, error)
}

type cashRegisterRepo struct{ db *gorm.DB }

func NewCashRegisterRepository(db *gorm.DB) CashRegisterRepository {
	return &cashRegisterRepo{db: db}
}

func (r *cashRegisterRepo) Create(ctx context.Context, e *model.CashRegisterEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ListByScope returns entries whose declared period overlaps the scope
// (same inclusive-overlap rule as variable costs).
func (r *cashRegisterRepo) scoped(ctx context.Context, scope PeriodScope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.CashRegisterEntry{}).
		Where("store_id = ?", scope.StoreID).
		Where("period_start <= ? AND period_end >= ?", scope.End, scope.Start)
	if scope.MachineID != nil {
		q = q.Where("machine_id = ?", *scope.MachineID)
	}
	return q
}

func (r *cashRegisterRepo) ListByScope(ctx context.Context, scope PeriodScope) ([]model.CashRegisterEntry, error) {
	var entries []model.CashRegisterEntry
	err := r.scoped(ctx, scope).Order("period_start ASC").Find(&entries).Error
	return entries, err
}

func (r *cashRegisterRepo) SumByScope(ctx context.Context, scope PeriodScope) (DeclaredAmounts, error) {
	var row struct {
		Cash    decimal.Decimal
		CardPix decimal.Decimal
	}
	err := r.scoped(ctx, scope).
		Select("COALESCE(SUM(cash_amount), 0) AS cash, COALESCE(SUM(card_pix_amount), 0) AS card_pix").
		Scan(&row).Error
	return DeclaredAmounts{Cash: row.Cash, CardPix: row.CardPix}, err
}
