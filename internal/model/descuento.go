package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de descuento.
const (
	DescuentoPreset10   = "PRESET_10"
	DescuentoPreset12   = "PRESET_12"
	DescuentoPreset15   = "PRESET_15"
	DescuentoCustom     = "CUSTOM"
	DescuentoOwnerAdded = "OWNER_ADDED"
)

// Estados de descuento.
const (
	DescuentoAplicado = "APPLIED"
	DescuentoRevocado = "REVOKED"
)

// Descuento is one entry in the append-only discount ledger of an order.
// Rows are NEVER modified except for the APPLIED → REVOKED transition, and
// never deleted — the ledger is the audit trail.
//
// Tipo: "PRESET_10" | "PRESET_12" | "PRESET_15" | "CUSTOM" | "OWNER_ADDED"
// Estado: "APPLIED" | "REVOKED"
type Descuento struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo       string          `gorm:"type:varchar(20);not null"`
	Porcentaje decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'APPLIED'"`
	// Motivo is mandatory for OWNER_ADDED discounts
	Motivo    *string
	AppliedBy uuid.UUID  `gorm:"type:uuid;not null"`
	RevokedBy *uuid.UUID `gorm:"type:uuid"`
	RevokedAt *time.Time
	CreatedAt time.Time
}
