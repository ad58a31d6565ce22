package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Abono is one payment against an order. Order totals are never cached:
// totalPaid and pendingBalance are recomputed by folding over the abonos of
// the order, so cancelling one (hard delete) self-heals the totals.
type Abono struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Monto    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DescuentoPct is the payment-local early-payment discount, 0–100.
	// The resulting amount forgiven depends on the pending balance at the
	// moment the payment was recorded, so it is derived, not stored.
	DescuentoPct   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	FechaPago      time.Time       `gorm:"not null"`
	WithinDeadline bool            `gorm:"not null;default:false"`
	Notas          *string
	RegisteredBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
}
