package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegisterEntry holds manually reported cash/card totals for a period.
// It is the second, independent source of truth cross-checked against
// token-implied revenue by the reconciliation report. Cost legs are
// snapshotted at creation time and never recomputed. Read-only after create.
type CashRegisterEntry struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`
	// MachineID is set when the entry covers a single machine instead of
	// the whole store.
	MachineID     *uuid.UUID      `gorm:"type:uuid;index"`
	PeriodStart   time.Time       `gorm:"type:date;not null"`
	PeriodEnd     time.Time       `gorm:"type:date;not null"`
	CashAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CardPixAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Cost snapshot at submission time.
	FixedCostSnapshot    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VariableCostSnapshot decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProductCostSnapshot  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCostSnapshot    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedByID          uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt            time.Time

	Store   *Store   `gorm:"foreignKey:StoreID"`
	Machine *Machine `gorm:"foreignKey:MachineID"`
}

// TableName overrides GORM's default pluralization (cash_register_entrys).
func (CashRegisterEntry) TableName() string { return "cash_register_entries" }
