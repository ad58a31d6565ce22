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

type AbonosHandler struct{ svc service.AbonoService }

func NewAbonosHandler(svc service.AbonoService) *AbonosHandler {
	return &AbonosHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registrar abono (solo OWNER)
// @Description  Registra un pago parcial o total, con descuento opcional por
// @Description  pronto pago aplicado sobre el saldo pendiente del momento.
// @Tags         abonos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarAbonoRequest true "Datos del abono"
// @Success      201 {object} dto.AbonoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/owner/payments [post]
func (h *AbonosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarAbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPorPedido godoc
// @Summary      Estado de cuenta de un pedido
// @Description  Devuelve los abonos en orden cronologico junto con el total
// @Description  pagado y el saldo pendiente resultante.
// @Tags         abonos
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path string true "ID del pedido"
// @Success      200 {object} dto.AbonosPedidoResponse
// @Router       /v1/owner/payments/order/{orderId} [get]
func (h *AbonosHandler) ListarPorPedido(c *gin.Context) {
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

// Cancelar godoc
// @Summary      Cancelar abono (solo OWNER)
// @Description  Elimina el abono; los abonos posteriores se reliquidan solos
// @Description  porque el saldo siempre se calcula desde el historial.
// @Tags         abonos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del abono"
// @Success      204 "sin contenido"
// @Failure      404 {object} apierror.APIError
// @Router       /v1/owner/payments/{id} [delete]
func (h *AbonosHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
