package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Machine is a physical claw/vending unit. Read-only reference data for the
// core: capacity, token value and alert threshold feed the ledger and the
// alerting engines but are maintained by the CRUD collaborator.
type Machine struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name   string    `gorm:"not null"`
	// Capacity is the number of prize units the machine holds when full.
	Capacity   int             `gorm:"not null"`
	TokenValue decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// AlertThresholdPct: stock below capacity*pct/100 raises a restock alert.
	AlertThresholdPct int  `gorm:"not null;default:30"`
	Active            bool `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}
