package handler

import (
	"net/http"

	"vitalexa/internal/apierror"
	"vitalexa/internal/middleware"
	"vitalexa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaldosHandler struct{ svc service.SaldoService }

func NewSaldosHandler(svc service.SaldoService) *SaldosHandler {
	return &SaldosHandler{svc: svc}
}

// montoQuery reads the ?amount= query parameter the balance endpoints carry
// instead of a body.
func montoQuery(c *gin.Context) (decimal.Decimal, bool) {
	raw := c.Query("amount")
	if raw == "" {
		c.JSON(http.StatusBadRequest, apierror.New("el parametro amount es obligatorio"))
		return decimal.Zero, false
	}
	monto, err := decimal.NewFromString(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("el parametro amount es invalido"))
		return decimal.Zero, false
	}
	return monto, true
}

// List godoc
// @Summary      Saldos de todos los clientes
// @Tags         saldos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SaldoListResponse
// @Router       /v1/balances [get]
func (h *SaldosHandler) List(c *gin.Context) {
	resp, err := h.svc.ListSaldos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Saldo de un cliente
// @Tags         saldos
// @Produce      json
// @Security     BearerAuth
// @Param        clientId path string true "ID del cliente"
// @Success      200 {object} dto.SaldoClienteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/balances/client/{clientId} [get]
func (h *SaldosHandler) Get(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de cliente invalido"))
		return
	}
	resp, err := h.svc.GetSaldo(c.Request.Context(), clienteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FijarLimiteCredito godoc
// @Summary      Fijar limite de credito (solo OWNER)
// @Tags         saldos
// @Produce      json
// @Security     BearerAuth
// @Param        clientId path string true "ID del cliente"
// @Param        amount query string true "Limite de credito"
// @Success      204 "sin contenido"
// @Failure      403 {object} apierror.APIError
// @Router       /v1/balances/client/{clientId}/credit-limit [put]
func (h *SaldosHandler) FijarLimiteCredito(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de cliente invalido"))
		return
	}
	monto, ok := montoQuery(c)
	if !ok {
		return
	}
	if err := h.svc.FijarLimiteCredito(c.Request.Context(), middleware.GetActor(c), clienteID, monto); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// QuitarLimiteCredito godoc
// @Summary      Quitar limite de credito (solo OWNER)
// @Tags         saldos
// @Produce      json
// @Security     BearerAuth
// @Param        clientId path string true "ID del cliente"
// @Success      204 "sin contenido"
// @Router       /v1/balances/client/{clientId}/credit-limit [delete]
func (h *SaldosHandler) QuitarLimiteCredito(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de cliente invalido"))
		return
	}
	if err := h.svc.QuitarLimiteCredito(c.Request.Context(), middleware.GetActor(c), clienteID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FijarSaldoInicial godoc
// @Summary      Fijar saldo inicial (solo OWNER, una sola vez)
// @Description  Deuda arrastrada de antes del sistema. Un segundo intento
// @Description  responde 409.
// @Tags         saldos
// @Produce      json
// @Security     BearerAuth
// @Param        clientId path string true "ID del cliente"
// @Param        amount query string true "Saldo inicial"
// @Success      204 "sin contenido"
// @Failure      409 {object} apierror.APIError
// @Router       /v1/balances/client/{clientId}/initial-balance [put]
func (h *SaldosHandler) FijarSaldoInicial(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de cliente invalido"))
		return
	}
	monto, ok := montoQuery(c)
	if !ok {
		return
	}
	if err := h.svc.FijarSaldoInicial(c.Request.Context(), middleware.GetActor(c), clienteID, monto); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
