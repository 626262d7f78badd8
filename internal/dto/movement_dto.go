package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovementProductRequest struct {
	ProductID         string `json:"product_id"         validate:"required,uuid"`
	QuantityDispensed int    `json:"quantity_dispensed" validate:"min=0"`
	QuantityRestocked int    `json:"quantity_restocked" validate:"min=0"`
}

// RecordMovementRequest uses pointers for the required counts so that an
// absent field can be told apart from an explicit zero.
type RecordMovementRequest struct {
	MachineID          string                   `json:"machine_id"           validate:"required,uuid"`
	OccurredAt         *string                  `json:"occurred_at"          validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	StockBefore        *int                     `json:"stock_before"         validate:"required,min=0"`
	Dispensed          *int                     `json:"dispensed"            validate:"required,min=0"`
	Restocked          *int                     `json:"restocked"            validate:"required,min=0"`
	Tokens             *int                     `json:"tokens"               validate:"required,min=0"`
	HardwareCounterIn  *int                     `json:"hardware_counter_in"`
	HardwareCounterOut *int                     `json:"hardware_counter_out"`
	Notes              *string                  `json:"notes"`
	IsWithdrawal       bool                     `json:"is_withdrawal"`
	OccurrenceType     string                   `json:"occurrence_type"      validate:"omitempty,oneof=contagem abastecimento retirada manutencao"`
	Products           []MovementProductRequest `json:"products"             validate:"dive"`
}

// UpdateMovementRequest: only observational fields may change after the fact.
type UpdateMovementRequest struct {
	Notes          *string `json:"notes"`
	OccurrenceType *string `json:"occurrence_type" validate:"omitempty,oneof=contagem abastecimento retirada manutencao"`
	Tokens         *int    `json:"tokens"          validate:"omitempty,min=0"`
	Restocked      *int    `json:"restocked"       validate:"omitempty,min=0"`
}

type BatchMovementRequest struct {
	Movements []RecordMovementRequest `json:"movements" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementProductResponse struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	QuantityDispensed int    `json:"quantity_dispensed"`
	QuantityRestocked int    `json:"quantity_restocked"`
}

type MovementResponse struct {
	ID                 string                    `json:"id"`
	MachineID          string                    `json:"machine_id"`
	MachineName        string                    `json:"machine_name"`
	StoreID            string                    `json:"store_id"`
	UserID             string                    `json:"user_id"`
	UserName           string                    `json:"user_name"`
	OccurredAt         string                    `json:"occurred_at"`
	StockBefore        int                       `json:"stock_before"`
	Dispensed          int                       `json:"dispensed"`
	Restocked          int                       `json:"restocked"`
	StockAfter         int                       `json:"stock_after"`
	Tokens             int                       `json:"tokens"`
	HardwareCounterIn  *int                      `json:"hardware_counter_in"`
	HardwareCounterOut *int                      `json:"hardware_counter_out"`
	AvgTokensPerPrize  *decimal.Decimal          `json:"avg_tokens_per_prize"`
	RevenueRecorded    decimal.Decimal           `json:"revenue_recorded"`
	IsWithdrawal       bool                      `json:"is_withdrawal"`
	OccurrenceType     string                    `json:"occurrence_type"`
	Notes              *string                   `json:"notes"`
	Products           []MovementProductResponse `json:"products"`
	CreatedAt          string                    `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// BatchItemError records why one item of a batch was skipped; the rest of
// the batch keeps processing.
type BatchItemError struct {
	Index  int    `json:"index"`
	Detail string `json:"detail"`
}

type BatchMovementResponse struct {
	Recorded []MovementResponse `json:"recorded"`
	Errors   []BatchItemError   `json:"errors"`
}
