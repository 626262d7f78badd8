package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FixedCost is a named recurring monthly expense for a store (rent, energy,
// staff). Upserted by (store, name); amendable anytime — historical reports
// are protected by the monthly snapshot below, not by freezing these rows.
type FixedCost struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_fixed_cost_store_name"`
	Name    string          `gorm:"not null;uniqueIndex:idx_fixed_cost_store_name"`
	Amount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FixedCostMonthlyTotal snapshots the sum of a store's fixed costs for one
// calendar month. Written lazily on first query for that month so that
// retroactive edits to fixed costs do not silently rewrite past reports.
// Upsert keyed by (store, year, month) — last writer wins is acceptable,
// this is a cache, not a ledger.
type FixedCostMonthlyTotal struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fixed_cost_month"`
	Year        int             `gorm:"not null;uniqueIndex:idx_fixed_cost_month"`
	Month       int             `gorm:"not null;uniqueIndex:idx_fixed_cost_month"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VariableCost is a one-off or date-ranged expense. Immutable after creation.
// It counts toward a report period when its range overlaps the period
// (inclusive on both ends).
type VariableCost struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name       string          `gorm:"not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RangeStart time.Time       `gorm:"type:date;not null;index"`
	RangeEnd   time.Time       `gorm:"type:date;not null;index"`
	// LinkedCashEntryID ties the cost to the cash-register submission that
	// created it, when applicable.
	LinkedCashEntryID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time
}
