package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is read-only reference data owned by the CRUD collaborator.
// The reconciliation core never creates or updates stores.
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	City      *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is read-only reference data from the auth collaborator. Only the
// fields the core joins into responses are mapped.
type User struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"not null"`
	Role string    `gorm:"not null"` // "operador" | "supervisor" | "admin"
}
