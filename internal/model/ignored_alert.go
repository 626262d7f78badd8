package model

import (
	"time"

	"github.com/google/uuid"
)

// IgnoredAlert suppresses one specific consistency alert permanently.
// AlertKey is the composite "machineID-movementID" the checker raises under.
type IgnoredAlert struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AlertKey  string    `gorm:"uniqueIndex;not null"`
	MachineID uuid.UUID `gorm:"type:uuid;not null;index"`
	// UserID records who suppressed the alert.
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}
