package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de promoción.
const (
	PromocionPack       = "PACK"
	PromocionBuyGetFree = "BUY_GET_FREE"
)

// Promocion is a configured promotion rule.
// Tipo: "PACK" | "BUY_GET_FREE"
//
// PACK carries a fixed set of gift items (GiftItems) and the price the
// buyQuantity bundle sells at (PackPrice). BUY_GET_FREE carries FreeQuantity
// units that the customer chooses later, during assortment completion.
type Promocion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string    `gorm:"not null"`
	Descripcion   *string
	Tipo          string    `gorm:"type:varchar(20);not null"`
	MainProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	BuyQuantity   int       `gorm:"not null"`
	// FreeQuantity applies only to BUY_GET_FREE
	FreeQuantity int `gorm:"not null;default:0"`
	// PackPrice applies only to PACK: the buyQuantity units of the main
	// product sell together at this price. Required for new PACK rows; rows
	// predating the field fall back to catalog pricing.
	PackPrice               *decimal.Decimal `gorm:"type:decimal(12,2)"`
	AllowStackWithDiscounts bool             `gorm:"not null;default:false"`
	ValidFrom               *time.Time
	ValidUntil              *time.Time
	Active                  bool `gorm:"not null;default:true"`
	CreatedAt               time.Time
	UpdatedAt               time.Time

	MainProduct *Producto           `gorm:"foreignKey:MainProductID"`
	GiftItems   []PromocionGiftItem `gorm:"foreignKey:PromocionID"`
}

// EsVigente reports whether the promotion applies right now: it must be
// active and now must fall inside [ValidFrom, ValidUntil]. A nil bound is
// open-ended.
func (p *Promocion) EsVigente(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// PromocionGiftItem is one fixed gift line of a PACK promotion.
type PromocionGiftItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromocionID uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductoID  uuid.UUID `gorm:"type:uuid;not null"`
	Cantidad    int       `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization.
func (PromocionGiftItem) TableName() string { return "promocion_gift_items" }
