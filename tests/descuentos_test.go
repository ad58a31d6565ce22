package tests

import (
	"context"
	"testing"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDescuentoSvc() (service.DescuentoService, *stubDescuentoRepo, *stubPedidoRepo, *stubPromocionRepo) {
	descuentoRepo := newStubDescuentoRepo()
	pedidoRepo := newStubPedidoRepo()
	promoRepo := newStubPromocionRepo()
	svc := service.NewDescuentoService(descuentoRepo, pedidoRepo, promoRepo)
	return svc, descuentoRepo, pedidoRepo, promoRepo
}

func seedPedidoSimple(r *stubPedidoRepo, total float64) *model.Pedido {
	p := &model.Pedido{
		ID:        uuid.New(),
		ClienteID: uuid.New(),
		UsuarioID: uuid.New(),
		Total:     decimal.NewFromFloat(total),
		Estado:    model.PedidoConfirmado,
	}
	r.pedidos[p.ID] = p
	return p
}

func TestAplicarPreset_RegistraEntradaAplicada(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	resp, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, model.DescuentoPreset15, resp.Tipo)
	assert.Equal(t, model.DescuentoAplicado, resp.Estado)
	assert.True(t, resp.Percentage.Equal(decimal.NewFromInt(15)))
}

func TestAplicarPreset_PorcentajeNoPresetRechazado(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	_, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 20)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestAplicarPreset_SoloAdmin(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	_, err := svc.AplicarPreset(context.Background(), actorVendedor(), pedido.ID, 10)
	assert.True(t, apierror.IsKind(err, apierror.KindAuthorization))
}

func TestAplicarDescuento_SoloUnoAplicadoALaVez(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	_, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 10)
	require.NoError(t, err)

	_, err = svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 12)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestRevocarYReaplicar(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	primero, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 10)
	require.NoError(t, err)

	revocado, err := svc.Revocar(context.Background(), actorOwner(), uuid.MustParse(primero.ID))
	require.NoError(t, err)
	assert.Equal(t, model.DescuentoRevocado, revocado.Estado)
	assert.NotNil(t, revocado.RevokedBy)
	assert.NotNil(t, revocado.RevokedAt)

	// The ledger keeps the revoked row and accepts a fresh discount
	_, err = svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 15)
	require.NoError(t, err)

	resumen, err := svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.Len(t, resumen.Descuentos, 2)
}

func TestRevocar_DobleRevocacionConflicto(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	d, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 10)
	require.NoError(t, err)

	_, err = svc.Revocar(context.Background(), actorOwner(), uuid.MustParse(d.ID))
	require.NoError(t, err)
	_, err = svc.Revocar(context.Background(), actorOwner(), uuid.MustParse(d.ID))
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestRevocar_SoloOwner(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	d, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 10)
	require.NoError(t, err)

	_, err = svc.Revocar(context.Background(), actorAdmin(), uuid.MustParse(d.ID))
	assert.True(t, apierror.IsKind(err, apierror.KindAuthorization))
}

func TestTotalEfectivoDerivadoDelLibro(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	_, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 15)
	require.NoError(t, err)

	resumen, err := svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.True(t, resumen.EffectiveTotal.Equal(decimal.NewFromInt(85)),
		"expected 85, got %s", resumen.EffectiveTotal)

	// Revoking restores the gross total — nothing stored, everything derived
	d := resumen.Descuentos[0]
	_, err = svc.Revocar(context.Background(), actorOwner(), uuid.MustParse(d.ID))
	require.NoError(t, err)

	resumen, err = svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.True(t, resumen.EffectiveTotal.Equal(pedido.Total))
}

func TestAplicarCustom_PorcentajeFueraDeRango(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	for _, pct := range []float64{0, -5, 101} {
		_, err := svc.AplicarCustom(context.Background(), actorAdmin(), dto.AplicarDescuentoCustomRequest{
			OrderID:    pedido.ID.String(),
			Percentage: decimal.NewFromFloat(pct),
		})
		assert.True(t, apierror.IsKind(err, apierror.KindValidation), "pct=%v", pct)
	}
}

func TestAgregarOwner_RequiereMotivo(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	_, err := svc.AgregarOwner(context.Background(), actorOwner(), dto.AgregarDescuentoOwnerRequest{
		OrderID:    pedido.ID.String(),
		Percentage: decimal.NewFromInt(8),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	resp, err := svc.AgregarOwner(context.Background(), actorOwner(), dto.AgregarDescuentoOwnerRequest{
		OrderID:    pedido.ID.String(),
		Percentage: decimal.NewFromInt(8),
		Reason:     "cliente frecuente con volumen alto",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DescuentoOwnerAdded, resp.Tipo)
	require.NotNil(t, resp.Reason)
	assert.Equal(t, "cliente frecuente con volumen alto", *resp.Reason)
}

func TestAplicarDescuento_PedidoCanceladoConflicto(t *testing.T) {
	svc, _, pedidoRepo, _ := buildDescuentoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)
	pedido.Estado = model.PedidoCancelado

	_, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 10)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestAplicarDescuento_PromocionNoCombinableBloquea(t *testing.T) {
	svc, _, pedidoRepo, promoRepo := buildDescuentoSvc()
	main := uuid.New()
	promo := &model.Promocion{
		ID:                      uuid.New(),
		Nombre:                  "Pack exclusivo",
		Tipo:                    model.PromocionPack,
		MainProductID:           main,
		BuyQuantity:             10,
		AllowStackWithDiscounts: false,
		Active:                  true,
	}
	promoRepo.promos[promo.ID] = promo

	pedido := seedPedidoSimple(pedidoRepo, 500)
	promoID := promo.ID
	pedido.Items = []model.PedidoItem{
		{ID: uuid.New(), PedidoID: pedido.ID, ProductoID: main, Cantidad: 10,
			PrecioUnit: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(500)},
		{ID: uuid.New(), PedidoID: pedido.ID, ProductoID: uuid.New(), Cantidad: 1,
			IsFreeItem: true, AssortmentCompleted: true, PromocionID: &promoID},
	}

	_, err := svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 10)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	// Flipping the flag lets the discount through
	promo.AllowStackWithDiscounts = true
	_, err = svc.AplicarPreset(context.Background(), actorAdmin(), pedido.ID, 10)
	assert.NoError(t, err)
}
