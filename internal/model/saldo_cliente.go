package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaldoCliente holds the per-client balance settings that cannot be derived
// from orders: the credit limit and the one-time opening balance carried
// over from before the system existed.
type SaldoCliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	// CreditLimit nil = unlimited credit
	CreditLimit    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	InitialBalance decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	// InitialBalanceSet makes the opening balance write-once
	InitialBalanceSet bool `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName overrides GORM's default pluralization.
func (SaldoCliente) TableName() string { return "saldos_cliente" }
