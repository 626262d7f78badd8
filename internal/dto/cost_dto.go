package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// UpsertFixedCostRequest creates or amends a named monthly cost for a store.
// Amount is a money string (see internal/money for the normalization rules).
type UpsertFixedCostRequest struct {
	Name   string `json:"name"   validate:"required,min=2"`
	Amount string `json:"amount" validate:"required"`
}

type CreateVariableCostRequest struct {
	StoreID           string  `json:"store_id"             validate:"required,uuid"`
	Name              string  `json:"name"                 validate:"required,min=2"`
	Amount            string  `json:"amount"               validate:"required"`
	RangeStart        string  `json:"range_start"          validate:"required,datetime=2006-01-02"`
	RangeEnd          string  `json:"range_end"            validate:"required,datetime=2006-01-02"`
	LinkedCashEntryID *string `json:"linked_cash_entry_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FixedCostResponse struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt string          `json:"updated_at"`
}

type VariableCostResponse struct {
	ID                string          `json:"id"`
	StoreID           string          `json:"store_id"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	RangeStart        string          `json:"range_start"`
	RangeEnd          string          `json:"range_end"`
	LinkedCashEntryID *string         `json:"linked_cash_entry_id"`
	CreatedAt         string          `json:"created_at"`
}
