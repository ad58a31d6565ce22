package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearTagRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=50"`
}

type ActualizarTagRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TagResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
}

type TagListResponse struct {
	Data []TagResponse `json:"data"`
}
