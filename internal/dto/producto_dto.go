package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ProductoFilter is bound from query string of GET /v1/products.
type ProductoFilter struct {
	Nombre string `form:"nombre"`
	Activo string `form:"activo"` // true (default) | false | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"      validate:"required,min=2,max=200"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"      validate:"required"`
	Stock       int             `json:"stock"       validate:"min=0"`
	ImageURL    *string         `json:"imageUrl"    validate:"omitempty,url"`
	TagID       *string         `json:"tagId"       validate:"omitempty,uuid"`
}

// ActualizarProductoRequest: an empty-string tagId clears the tag.
type ActualizarProductoRequest struct {
	Nombre      string           `json:"nombre"      validate:"omitempty,min=2,max=200"`
	Descripcion *string          `json:"descripcion"`
	Precio      *decimal.Decimal `json:"precio"`
	Stock       *int             `json:"stock"       validate:"omitempty,min=0"`
	ImageURL    *string          `json:"imageUrl"    validate:"omitempty,url"`
	TagID       *string          `json:"tagId"       validate:"omitempty"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"imageUrl"`
	TagID       *string         `json:"tagId"`
	Tag         *string         `json:"tag"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
