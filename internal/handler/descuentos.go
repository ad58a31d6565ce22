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

type DescuentosHandler struct{ svc service.DescuentoService }

func NewDescuentosHandler(svc service.DescuentoService) *DescuentosHandler {
	return &DescuentosHandler{svc: svc}
}

// aplicarPreset shares the body of the three fixed-percentage endpoints.
func (h *DescuentosHandler) aplicarPreset(c *gin.Context, porcentaje int) {
	pedidoID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pedido invalido"))
		return
	}
	resp, err := h.svc.AplicarPreset(c.Request.Context(), middleware.GetActor(c), pedidoID, porcentaje)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AplicarDiez godoc
// @Summary      Aplicar descuento fijo del 10% (solo ADMIN)
// @Tags         descuentos
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path string true "ID del pedido"
// @Success      201 {object} dto.DescuentoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/admin/discounts/order/{orderId}/apply-10 [post]
func (h *DescuentosHandler) AplicarDiez(c *gin.Context) { h.aplicarPreset(c, 10) }

// AplicarDoce applies the fixed 12% discount (solo ADMIN).
func (h *DescuentosHandler) AplicarDoce(c *gin.Context) { h.aplicarPreset(c, 12) }

// AplicarQuince applies the fixed 15% discount (solo ADMIN).
func (h *DescuentosHandler) AplicarQuince(c *gin.Context) { h.aplicarPreset(c, 15) }

// AplicarCustom godoc
// @Summary      Aplicar descuento de porcentaje libre (solo ADMIN)
// @Tags         descuentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AplicarDescuentoCustomRequest true "Pedido y porcentaje"
// @Success      201 {object} dto.DescuentoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/admin/discounts/custom [post]
func (h *DescuentosHandler) AplicarCustom(c *gin.Context) {
	var req dto.AplicarDescuentoCustomRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AplicarCustom(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AgregarOwner godoc
// @Summary      Agregar descuento con motivo (solo OWNER)
// @Tags         descuentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AgregarDescuentoOwnerRequest true "Pedido, porcentaje y motivo"
// @Success      201 {object} dto.DescuentoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/owner/discounts [post]
func (h *DescuentosHandler) AgregarOwner(c *gin.Context) {
	var req dto.AgregarDescuentoOwnerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarOwner(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Revocar godoc
// @Summary      Revocar un descuento aplicado (solo OWNER)
// @Description  El descuento queda en el historial con estado REVOKED; nunca se borra.
// @Tags         descuentos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del descuento"
// @Success      200 {object} dto.DescuentoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/owner/discounts/{id}/revoke [put]
func (h *DescuentosHandler) Revocar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Revocar(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorPedido godoc
// @Summary      Historial de descuentos de un pedido
// @Tags         descuentos
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path string true "ID del pedido"
// @Success      200 {object} dto.DescuentosPedidoResponse
// @Router       /v1/admin/discounts/order/{orderId} [get]
func (h *DescuentosHandler) ListarPorPedido(c *gin.Context) {
	pedidoID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pedido invalido"))
		return
	}
	resp, err := h.svc.ListarPorPedido(c.Request.Context(), pedidoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
