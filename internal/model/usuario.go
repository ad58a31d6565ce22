package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles del sistema.
const (
	RolAdmin     = "ADMIN"
	RolOwner     = "OWNER"
	RolVendedor  = "VENDEDOR"
	RolEmpacador = "EMPACADOR"
	RolCliente   = "CLIENTE"
)

// Usuario stores system users with role-based access.
// Rol: "ADMIN" | "OWNER" | "VENDEDOR" | "EMPACADOR" | "CLIENTE"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies who is performing a service operation. Handlers build it
// from the JWT claims; services never read authentication state from
// anywhere else.
type Actor struct {
	ID  uuid.UUID
	Rol string
}

// Es reports whether the actor holds any of the given roles.
func (a Actor) Es(roles ...string) bool {
	for _, r := range roles {
		if a.Rol == r {
			return true
		}
	}
	return false
}
