package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a prize carried by the machines. Read-only reference data.
// UnitCost drives the product-cost leg of the proration engine; SalePrice
// is the fallback when UnitCost was never filled in.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	SalePrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
