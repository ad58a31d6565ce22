package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AplicarDescuentoCustomRequest struct {
	OrderID    string          `json:"orderId"    validate:"required,uuid"`
	Percentage decimal.Decimal `json:"percentage" validate:"required"`
}

type AgregarDescuentoOwnerRequest struct {
	OrderID    string          `json:"orderId"    validate:"required,uuid"`
	Percentage decimal.Decimal `json:"percentage" validate:"required"`
	Reason     string          `json:"reason"     validate:"required,min=5,max=300"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DescuentoResponse struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orderId"`
	Tipo       string          `json:"tipo"`
	Percentage decimal.Decimal `json:"percentage"`
	Estado     string          `json:"estado"`
	Reason     *string         `json:"reason"`
	AppliedBy  string          `json:"appliedBy"`
	RevokedBy  *string         `json:"revokedBy"`
	RevokedAt  *string         `json:"revokedAt"`
	CreatedAt  string          `json:"createdAt"`
}

// DescuentosPedidoResponse is the full ledger of an order plus the derived
// effective total.
type DescuentosPedidoResponse struct {
	OrderID        string              `json:"orderId"`
	Total          decimal.Decimal     `json:"total"`
	EffectiveTotal decimal.Decimal     `json:"effectiveTotal"`
	Descuentos     []DescuentoResponse `json:"descuentos"`
}
