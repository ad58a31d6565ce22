package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/middleware"
	"vitalexa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	promosVigentesCacheKey = "promos:vigentes"
	promosVigentesCacheTTL = 60 * time.Second
)

type PromocionesHandler struct {
	svc service.PromocionService
	rdb *redis.Client
}

func NewPromocionesHandler(svc service.PromocionService, rdb *redis.Client) *PromocionesHandler {
	return &PromocionesHandler{svc: svc, rdb: rdb}
}

// Crear godoc
// @Summary      Crear promocion (solo ADMIN)
// @Tags         promociones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPromocionRequest true "Datos de la promocion"
// @Success      201 {object} dto.PromocionResponse
// @Failure      400 {object} apierror.APIError
// @Failure      403 {object} apierror.APIError
// @Router       /v1/admin/promotions [post]
func (h *PromocionesHandler) Crear(c *gin.Context) {
	var req dto.CrearPromocionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidarCacheVigentes(c.Request.Context())
	c.JSON(http.StatusCreated, resp)
}

// List returns every promotion, active or not.
func (h *PromocionesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Get returns one promotion by id.
func (h *PromocionesHandler) Get(c *gin.Context) {
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

// ListVigentes godoc
// @Summary      Promociones vigentes para el vendedor
// @Description  Solo promociones activas y dentro de su ventana de validez.
// @Tags         promociones
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PromocionResponse
// @Router       /v1/vendedor/promotions [get]
func (h *PromocionesHandler) ListVigentes(c *gin.Context) {
	ctx := c.Request.Context()

	// Cache corto: los vendedores consultan esto en cada carga de carrito.
	if cached, err := h.rdb.Get(ctx, promosVigentesCacheKey).Result(); err == nil {
		var resp []dto.PromocionResponse
		if json.Unmarshal([]byte(cached), &resp) == nil {
			c.JSON(http.StatusOK, gin.H{"data": resp})
			return
		}
	}

	resp, err := h.svc.ListVigentes(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if payload, err := json.Marshal(resp); err == nil {
		if err := h.rdb.Set(ctx, promosVigentesCacheKey, payload, promosVigentesCacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("no se pudo cachear promociones vigentes")
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Actualizar godoc
// @Summary      Actualizar promocion (solo ADMIN)
// @Tags         promociones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "ID de la promocion"
// @Param        body body dto.ActualizarPromocionRequest true "Campos a actualizar"
// @Success      200 {object} dto.PromocionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/admin/promotions/{id} [put]
func (h *PromocionesHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarPromocionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidarCacheVigentes(c.Request.Context())
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado activates or deactivates a promotion (solo ADMIN).
func (h *PromocionesHandler) CambiarEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CambiarEstadoPromocionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if req.Active == nil {
		c.JSON(http.StatusBadRequest, apierror.New("el campo active es obligatorio"))
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), middleware.GetActor(c), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidarCacheVigentes(c.Request.Context())
	c.JSON(http.StatusOK, resp)
}

// Eliminar removes a promotion and its gift item definitions (solo ADMIN).
func (h *PromocionesHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	h.invalidarCacheVigentes(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// CompletarSurtido godoc
// @Summary      Completar surtido de una promocion BUY_GET_FREE (solo ADMIN)
// @Description  Reemplaza el placeholder del pedido por los productos elegidos.
// @Tags         promociones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderId     path string true "ID del pedido"
// @Param        promotionId path string true "ID de la promocion"
// @Param        body body dto.CompletarSurtidoRequest true "Lineas del surtido"
// @Success      200 {object} dto.PedidoResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/admin/orders/{orderId}/promotions/{promotionId}/assortment [post]
func (h *PromocionesHandler) CompletarSurtido(c *gin.Context) {
	pedidoID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pedido invalido"))
		return
	}
	promocionID, err := uuid.Parse(c.Param("promotionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de promocion invalido"))
		return
	}
	var req dto.CompletarSurtidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CompletarSurtido(c.Request.Context(), middleware.GetActor(c), pedidoID, promocionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PromocionesHandler) invalidarCacheVigentes(ctx context.Context) {
	if err := h.rdb.Del(ctx, promosVigentesCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar cache de promociones vigentes")
	}
}
