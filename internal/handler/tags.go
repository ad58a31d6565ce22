package handler

import (
	"net/http"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/middleware"
	"vitalexa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TagsHandler struct{ svc service.TagService }

func NewTagsHandler(svc service.TagService) *TagsHandler {
	return &TagsHandler{svc: svc}
}

// List returns every tag, system tags first.
func (h *TagsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns one tag by id.
func (h *TagsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSistemaSR godoc
// @Summary      Etiqueta de sistema S/R
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.TagResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/tags/system/sr [get]
func (h *TagsHandler) GetSistemaSR(c *gin.Context) {
	resp, err := h.svc.GetSistemaSR(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary      Crear etiqueta (ADMIN u OWNER)
// @Tags         tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearTagRequest true "Nombre de la etiqueta"
// @Success      201 {object} dto.TagResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/tags [post]
func (h *TagsHandler) Crear(c *gin.Context) {
	var req dto.CrearTagRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actualizar godoc
// @Summary      Renombrar etiqueta (ADMIN u OWNER)
// @Description  Las etiquetas del sistema responden 409.
// @Tags         tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la etiqueta"
// @Param        body body dto.ActualizarTagRequest true "Nuevo nombre"
// @Success      200 {object} dto.TagResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/tags/{id} [put]
func (h *TagsHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarTagRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar etiqueta (ADMIN u OWNER)
// @Description  Las etiquetas del sistema responden 409.
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la etiqueta"
// @Success      204 "sin contenido"
// @Failure      409 {object} apierror.APIError
// @Router       /v1/tags/{id} [delete]
func (h *TagsHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
