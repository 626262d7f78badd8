package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement registra cada contagem/abastecimento de uma máquina.
// StockAfter, AvgTokensPerPrize and RevenueRecorded are derived at write
// time and stay internally consistent with the submitted counts.
// Movements are never hard-deleted; only observational fields (tokens,
// restocked, notes, occurrence type) may be amended by the creator or an
// admin.
type Movement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MachineID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	// OccurredAt orders the ledger; defaults to submission time.
	OccurredAt  time.Time `gorm:"not null;index"`
	StockBefore int       `gorm:"not null"`
	Dispensed   int       `gorm:"not null"` // "sairam"
	Restocked   int       `gorm:"not null"` // "abastecidas"
	// StockAfter == StockBefore - Dispensed + Restocked, always.
	StockAfter int `gorm:"not null"`
	Tokens     int `gorm:"not null"` // fichas redeemed since last record
	// Hardware counters arrive via manual data entry; nil means the
	// machine has no counters (or they were not read).
	HardwareCounterIn  *int
	HardwareCounterOut *int
	// AvgTokensPerPrize = Tokens / Dispensed, 2 decimals; unset when
	// nothing was dispensed.
	AvgTokensPerPrize *decimal.Decimal `gorm:"type:decimal(10,2)"`
	// RevenueRecorded = Tokens * Machine.TokenValue, forced to 0 on withdrawals.
	RevenueRecorded decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsWithdrawal    bool            `gorm:"not null;default:false"`
	// OccurrenceType: "contagem" | "abastecimento" | "retirada" | "manutencao"
	OccurrenceType string `gorm:"type:varchar(20);not null;default:'contagem'"`
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Machine  *Machine          `gorm:"foreignKey:MachineID"`
	User     *User             `gorm:"foreignKey:UserID"`
	Products []MovementProduct `gorm:"foreignKey:MovementID"`
}

// MovementProduct splits a movement's dispensed/restocked counts across the
// products involved. Written in the same transaction as the parent movement.
type MovementProduct struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MovementID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	QuantityDispensed int       `gorm:"not null;default:0"`
	QuantityRestocked int       `gorm:"not null;default:0"`
	CreatedAt         time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
