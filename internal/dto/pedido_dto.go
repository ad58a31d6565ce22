package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// PedidoFilter is bound from query string of GET /v1/orders.
type PedidoFilter struct {
	ClienteID string `form:"clientId" validate:"omitempty,uuid"`
	Estado    string `form:"estado"` // empty = all
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemPedidoRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
}

type CrearPedidoRequest struct {
	ClienteID string              `json:"clientId" validate:"required,uuid"`
	Items     []ItemPedidoRequest `json:"items"    validate:"required,min=1,dive"`
	Notas     *string             `json:"notas"    validate:"omitempty,max=500"`
}

type CambiarEstadoPedidoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=CONFIRMADO COMPLETADO CANCELADO"`
}

// MarcarSinStockRequest flags one order line as out of stock with an
// optional restock estimate.
type MarcarSinStockRequest struct {
	OutOfStock           bool    `json:"outOfStock"`
	EstimatedArrivalDate *string `json:"estimatedArrivalDate" validate:"omitempty,datetime=2006-01-02"`
	EstimatedArrivalNote *string `json:"estimatedArrivalNote" validate:"omitempty,max=300"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemPedidoResponse struct {
	ID                   string          `json:"id"`
	ProductID            string          `json:"productId"`
	Producto             string          `json:"producto"`
	Quantity             int             `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	IsPromotionItem      bool            `json:"isPromotionItem"`
	IsFreeItem           bool            `json:"isFreeItem"`
	AssortmentCompleted  bool            `json:"assortmentCompleted"`
	PromotionID          *string         `json:"promotionId"`
	OutOfStock           bool            `json:"outOfStock"`
	EstimatedArrivalDate *string         `json:"estimatedArrivalDate"`
	EstimatedArrivalNote *string         `json:"estimatedArrivalNote"`
}

type PedidoResponse struct {
	ID        string               `json:"id"`
	ClienteID string               `json:"clientId"`
	Cliente   string               `json:"cliente"`
	Items     []ItemPedidoResponse `json:"items"`
	Total     decimal.Decimal      `json:"total"`
	// EffectiveTotal = Total minus the order's APPLIED discounts
	EffectiveTotal decimal.Decimal `json:"effectiveTotal"`
	Estado         string          `json:"estado"`
	Notas          *string         `json:"notas"`
	CreatedAt      string          `json:"createdAt"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
