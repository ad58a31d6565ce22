package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de pedido.
const (
	PedidoPendiente          = "PENDIENTE"
	PedidoPendientePromocion = "PENDING_PROMOTION_COMPLETION"
	PedidoConfirmado         = "CONFIRMADO"
	PedidoCompletado         = "COMPLETADO"
	PedidoCancelado          = "CANCELADO"
)

// Pedido is a customer order.
// Estado: "PENDIENTE" | "PENDING_PROMOTION_COMPLETION" | "CONFIRMADO" |
// "COMPLETADO" | "CANCELADO"
//
// Total is the gross sum of non-free line subtotals. The effective total
// after discounts is never stored — it is always derived from the discount
// ledger.
type Pedido struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID uuid.UUID       `gorm:"type:uuid;not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado    string          `gorm:"type:varchar(40);not null;default:'PENDIENTE'"`
	Notas     *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Cliente *Cliente     `gorm:"foreignKey:ClienteID"`
	Items   []PedidoItem `gorm:"foreignKey:PedidoID"`
}

// PedidoItem is one line of an order.
//
// IsPromotionItem marks a BUY_GET_FREE placeholder awaiting assortment
// completion; IsFreeItem marks a concrete zero-priced gift line. A line is
// never both at once.
type PedidoItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad   int             `gorm:"not null"`
	PrecioUnit decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	IsPromotionItem     bool       `gorm:"not null;default:false"`
	IsFreeItem          bool       `gorm:"not null;default:false"`
	AssortmentCompleted bool       `gorm:"not null;default:true"`
	PromocionID         *uuid.UUID `gorm:"type:uuid;index"`

	// Availability flags set by packers when a product cannot ship
	OutOfStock           bool `gorm:"not null;default:false"`
	EstimatedArrivalDate *time.Time
	EstimatedArrivalNote *string

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization.
func (PedidoItem) TableName() string { return "pedido_items" }
