package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type GiftItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
}

type CrearPromocionRequest struct {
	Nombre        string  `json:"nombre"        validate:"required,min=2,max=200"`
	Descripcion   *string `json:"descripcion"`
	Tipo          string  `json:"tipo"          validate:"required,oneof=PACK BUY_GET_FREE"`
	MainProductID string  `json:"mainProductId" validate:"required,uuid"`
	BuyQuantity   int     `json:"buyQuantity"   validate:"required,min=1"`
	// FreeQuantity is required for BUY_GET_FREE, ignored for PACK
	FreeQuantity int `json:"freeQuantity" validate:"omitempty,min=1"`
	// GiftItems and PackPrice apply only to PACK
	GiftItems               []GiftItemRequest `json:"giftItems"  validate:"omitempty,dive"`
	PackPrice               *decimal.Decimal  `json:"packPrice"`
	AllowStackWithDiscounts bool              `json:"allowStackWithDiscounts"`
	ValidFrom               *string           `json:"validFrom"  validate:"omitempty,datetime=2006-01-02"`
	ValidUntil              *string           `json:"validUntil" validate:"omitempty,datetime=2006-01-02"`
}

type ActualizarPromocionRequest struct {
	Nombre                  string            `json:"nombre"       validate:"omitempty,min=2,max=200"`
	Descripcion             *string           `json:"descripcion"`
	BuyQuantity             *int              `json:"buyQuantity"  validate:"omitempty,min=1"`
	FreeQuantity            *int              `json:"freeQuantity" validate:"omitempty,min=1"`
	GiftItems               []GiftItemRequest `json:"giftItems"    validate:"omitempty,dive"`
	PackPrice               *decimal.Decimal  `json:"packPrice"`
	AllowStackWithDiscounts *bool             `json:"allowStackWithDiscounts"`
	ValidFrom               *string           `json:"validFrom"    validate:"omitempty,datetime=2006-01-02"`
	ValidUntil              *string           `json:"validUntil"   validate:"omitempty,datetime=2006-01-02"`
}

// CambiarEstadoPromocionRequest uses a pointer so that {"active": false}
// can be told apart from a missing field.
type CambiarEstadoPromocionRequest struct {
	Active *bool `json:"active"`
}

// AssortmentLineRequest is one chosen product of a BUY_GET_FREE completion.
type AssortmentLineRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
}

type CompletarSurtidoRequest struct {
	Lines []AssortmentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GiftItemResponse struct {
	ProductID string  `json:"productId"`
	Producto  *string `json:"producto,omitempty"`
	Quantity  int     `json:"quantity"`
}

type PromocionResponse struct {
	ID                      string             `json:"id"`
	Nombre                  string             `json:"nombre"`
	Descripcion             *string            `json:"descripcion"`
	Tipo                    string             `json:"tipo"`
	MainProductID           string             `json:"mainProductId"`
	BuyQuantity             int                `json:"buyQuantity"`
	FreeQuantity            int                `json:"freeQuantity"`
	GiftItems               []GiftItemResponse `json:"giftItems"`
	PackPrice               *decimal.Decimal   `json:"packPrice"`
	AllowStackWithDiscounts bool               `json:"allowStackWithDiscounts"`
	ValidFrom               *string            `json:"validFrom"`
	ValidUntil              *string            `json:"validUntil"`
	Active                  bool               `json:"active"`
	// Vigente = active and inside the validity window right now
	Vigente bool `json:"vigente"`
}
