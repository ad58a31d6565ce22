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

type pedidoFixture struct {
	svc           service.PedidoService
	pedidoRepo    *stubPedidoRepo
	productoRepo  *stubProductoRepo
	clienteRepo   *stubClienteRepo
	promoRepo     *stubPromocionRepo
	descuentoRepo *stubDescuentoRepo
	saldoSvc      service.SaldoService
}

func buildPedidoSvc() pedidoFixture {
	pedidoRepo := newStubPedidoRepo()
	productoRepo := newStubProductoRepo()
	clienteRepo := newStubClienteRepo()
	promoRepo := newStubPromocionRepo()
	descuentoRepo := newStubDescuentoRepo()
	saldoRepo := newStubSaldoRepo()
	abonoRepo := newStubAbonoRepo()

	promocionSvc := service.NewPromocionService(promoRepo, productoRepo, pedidoRepo, descuentoRepo)
	saldoSvc := service.NewSaldoService(saldoRepo, clienteRepo, pedidoRepo, descuentoRepo, abonoRepo)
	svc := service.NewPedidoService(pedidoRepo, productoRepo, clienteRepo, descuentoRepo, promocionSvc, saldoSvc, nil)

	return pedidoFixture{
		svc:           svc,
		pedidoRepo:    pedidoRepo,
		productoRepo:  productoRepo,
		clienteRepo:   clienteRepo,
		promoRepo:     promoRepo,
		descuentoRepo: descuentoRepo,
		saldoSvc:      saldoSvc,
	}
}

func TestCrearPedido_PreciosDesdeElCatalogo(t *testing.T) {
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	shampoo := seedProducto(f.productoRepo, "Shampoo 1L", 45.50, 100)
	jabon := seedProducto(f.productoRepo, "Jabon", 12, 100)

	resp, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items: []dto.ItemPedidoRequest{
			{ProductID: shampoo.ID.String(), Quantity: 2},
			{ProductID: jabon.ID.String(), Quantity: 3},
		},
	})
	require.NoError(t, err)

	// 2*45.50 + 3*12 = 127.00, priced from the catalog regardless of caller input
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(127)), "got %s", resp.Total)
	assert.Equal(t, model.PedidoPendiente, resp.Estado)
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.NewFromFloat(45.50)))
}

func TestCrearPedido_ProductoInactivoRechazado(t *testing.T) {
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	p := seedProducto(f.productoRepo, "Descontinuado", 10, 100)
	p.Activo = false

	_, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items:     []dto.ItemPedidoRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestCrearPedido_PackAgregaRegalosYQuedaPendiente(t *testing.T) {
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	main := seedProducto(f.productoRepo, "Shampoo 1L", 50, 100)
	regalo := seedProducto(f.productoRepo, "Jabon", 12, 100)
	seedPromoPack(f.promoRepo, main.ID, 10, []model.PromocionGiftItem{
		{ProductoID: regalo.ID, Cantidad: 2},
	})

	resp, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items:     []dto.ItemPedidoRequest{{ProductID: main.ID.String(), Quantity: 10}},
	})
	require.NoError(t, err)

	// PACK resolves immediately — normal lifecycle, free line attached
	assert.Equal(t, model.PedidoPendiente, resp.Estado)
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[1].IsFreeItem)
	// The free line never counts toward the gross total
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(500)))
}

func TestCrearPedido_PackPriceReemplazaPrecioDeCatalogo(t *testing.T) {
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	main := seedProducto(f.productoRepo, "Shampoo 1L", 20, 100)
	regalo := seedProducto(f.productoRepo, "Jabon", 12, 100)
	promo := seedPromoPack(f.promoRepo, main.ID, 10, []model.PromocionGiftItem{
		{ProductoID: regalo.ID, Cantidad: 1},
	})
	precioPack := decimal.NewFromInt(150)
	promo.PackPrice = &precioPack

	resp, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items:     []dto.ItemPedidoRequest{{ProductID: main.ID.String(), Quantity: 10}},
	})
	require.NoError(t, err)

	// The 10-unit bundle sells at 150, not at 10*20 = 200
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(150)), "got %s", resp.Total)
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[0].Subtotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, resp.Items[1].IsFreeItem)
}

func TestCrearPedido_PackPriceSoloCubreElBundle(t *testing.T) {
	// Units beyond buyQuantity keep their catalog price
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	main := seedProducto(f.productoRepo, "Shampoo 1L", 20, 100)
	regalo := seedProducto(f.productoRepo, "Jabon", 12, 100)
	promo := seedPromoPack(f.promoRepo, main.ID, 10, []model.PromocionGiftItem{
		{ProductoID: regalo.ID, Cantidad: 1},
	})
	precioPack := decimal.NewFromInt(150)
	promo.PackPrice = &precioPack

	resp, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items:     []dto.ItemPedidoRequest{{ProductID: main.ID.String(), Quantity: 12}},
	})
	require.NoError(t, err)

	// 150 for the bundle + 2*20 catalog for the extra units
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(190)), "got %s", resp.Total)
}

func TestCrearPedido_PackPriceCuentaParaElLimiteDeCredito(t *testing.T) {
	// The credit gate sees the repriced total: 150 fits in a 160 limit even
	// though the catalog sum (200) would not
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	main := seedProducto(f.productoRepo, "Shampoo 1L", 20, 100)
	regalo := seedProducto(f.productoRepo, "Jabon", 12, 100)
	promo := seedPromoPack(f.promoRepo, main.ID, 10, []model.PromocionGiftItem{
		{ProductoID: regalo.ID, Cantidad: 1},
	})
	precioPack := decimal.NewFromInt(150)
	promo.PackPrice = &precioPack

	require.NoError(t, f.saldoSvc.FijarLimiteCredito(context.Background(), actorOwner(), cliente.ID, decimal.NewFromInt(160)))

	resp, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items:     []dto.ItemPedidoRequest{{ProductID: main.ID.String(), Quantity: 10}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(150)))
}

func TestCrearPedido_BuyGetFreeQuedaEsperandoSurtido(t *testing.T) {
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	main := seedProducto(f.productoRepo, "Crema corporal", 80, 100)
	seedPromoBuyGetFree(f.promoRepo, main.ID, 12, 5)

	resp, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items:     []dto.ItemPedidoRequest{{ProductID: main.ID.String(), Quantity: 12}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PedidoPendientePromocion, resp.Estado)
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[1].IsPromotionItem)
	assert.Equal(t, 5, resp.Items[1].Quantity)
}

func TestCrearPedido_LimiteDeCreditoBloquea(t *testing.T) {
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	p := seedProducto(f.productoRepo, "Shampoo 1L", 100, 100)

	require.NoError(t, f.saldoSvc.FijarLimiteCredito(context.Background(), actorOwner(), cliente.ID, decimal.NewFromInt(500)))

	_, err := f.svc.Crear(context.Background(), actorVendedor(), dto.CrearPedidoRequest{
		ClienteID: cliente.ID.String(),
		Items:     []dto.ItemPedidoRequest{{ProductID: p.ID.String(), Quantity: 6}}, // 600 > 500
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	// Nothing was written
	assert.Empty(t, f.pedidoRepo.pedidos)
}

func TestCrearPedido_SoloVendedorOAdmin(t *testing.T) {
	f := buildPedidoSvc()
	cliente := seedCliente(f.clienteRepo, "Farmacia Central")
	p := seedProducto(f.productoRepo, "Shampoo 1L", 100, 100)

	for _, actor := range []model.Actor{actorOwner(), actorEmpacador()} {
		_, err := f.svc.Crear(context.Background(), actor, dto.CrearPedidoRequest{
			ClienteID: cliente.ID.String(),
			Items:     []dto.ItemPedidoRequest{{ProductID: p.ID.String(), Quantity: 1}},
		})
		assert.True(t, apierror.IsKind(err, apierror.KindAuthorization), "rol %s", actor.Rol)
	}
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

func TestCambiarEstado_TransicionesValidas(t *testing.T) {
	f := buildPedidoSvc()
	pedido := seedPedidoSimple(f.pedidoRepo, 100)
	pedido.Estado = model.PedidoPendiente

	resp, err := f.svc.CambiarEstado(context.Background(), actorVendedor(), pedido.ID, model.PedidoConfirmado)
	require.NoError(t, err)
	assert.Equal(t, model.PedidoConfirmado, resp.Estado)

	resp, err = f.svc.CambiarEstado(context.Background(), actorEmpacador(), pedido.ID, model.PedidoCompletado)
	require.NoError(t, err)
	assert.Equal(t, model.PedidoCompletado, resp.Estado)
}

func TestCambiarEstado_TransicionesInvalidas(t *testing.T) {
	f := buildPedidoSvc()

	casos := []struct {
		desde, hacia string
	}{
		{model.PedidoPendiente, model.PedidoCompletado},
		{model.PedidoCompletado, model.PedidoCancelado},
		{model.PedidoCancelado, model.PedidoConfirmado},
		// Waiting for assortment: confirmation only via its completion flow
		{model.PedidoPendientePromocion, model.PedidoConfirmado},
	}
	for _, c := range casos {
		pedido := seedPedidoSimple(f.pedidoRepo, 100)
		pedido.Estado = c.desde
		_, err := f.svc.CambiarEstado(context.Background(), actorAdmin(), pedido.ID, c.hacia)
		assert.True(t, apierror.IsKind(err, apierror.KindConflict), "%s -> %s", c.desde, c.hacia)
	}
}

func TestCancelar_PedidoEsperandoSurtidoSePuedeCancelar(t *testing.T) {
	f := buildPedidoSvc()
	pedido := seedPedidoSimple(f.pedidoRepo, 100)
	pedido.Estado = model.PedidoPendientePromocion

	require.NoError(t, f.svc.Cancelar(context.Background(), actorAdmin(), pedido.ID))
	assert.Equal(t, model.PedidoCancelado, pedido.Estado)
}

func TestCancelar_SoloAdminUOwner(t *testing.T) {
	f := buildPedidoSvc()
	pedido := seedPedidoSimple(f.pedidoRepo, 100)

	err := f.svc.Cancelar(context.Background(), actorVendedor(), pedido.ID)
	assert.True(t, apierror.IsKind(err, apierror.KindAuthorization))
}

// ── Faltantes ─────────────────────────────────────────────────────────────────

func TestMarcarItemSinStock_FijaYLimpiaEstimacion(t *testing.T) {
	f := buildPedidoSvc()
	pedido := seedPedidoSimple(f.pedidoRepo, 100)
	item := model.PedidoItem{
		ID: uuid.New(), PedidoID: pedido.ID, ProductoID: uuid.New(),
		Cantidad: 2, PrecioUnit: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(100),
	}
	pedido.Items = []model.PedidoItem{item}

	nota := "llega la proxima semana"
	err := f.svc.MarcarItemSinStock(context.Background(), actorEmpacador(), pedido.ID, item.ID, dto.MarcarSinStockRequest{
		OutOfStock:           true,
		EstimatedArrivalDate: strPtr("2026-09-07"),
		EstimatedArrivalNote: &nota,
	})
	require.NoError(t, err)

	stored, _ := f.pedidoRepo.FindByID(context.Background(), pedido.ID)
	assert.True(t, stored.Items[0].OutOfStock)
	require.NotNil(t, stored.Items[0].EstimatedArrivalDate)
	assert.Equal(t, "2026-09-07", stored.Items[0].EstimatedArrivalDate.Format("2006-01-02"))

	// Clearing the flag drops the estimate with it
	err = f.svc.MarcarItemSinStock(context.Background(), actorEmpacador(), pedido.ID, item.ID, dto.MarcarSinStockRequest{
		OutOfStock: false,
	})
	require.NoError(t, err)
	stored, _ = f.pedidoRepo.FindByID(context.Background(), pedido.ID)
	assert.False(t, stored.Items[0].OutOfStock)
	assert.Nil(t, stored.Items[0].EstimatedArrivalDate)
	assert.Nil(t, stored.Items[0].EstimatedArrivalNote)
}

func TestMarcarItemSinStock_SoloEmpacadorOAdmin(t *testing.T) {
	f := buildPedidoSvc()
	pedido := seedPedidoSimple(f.pedidoRepo, 100)

	err := f.svc.MarcarItemSinStock(context.Background(), actorVendedor(), pedido.ID, uuid.New(), dto.MarcarSinStockRequest{OutOfStock: true})
	assert.True(t, apierror.IsKind(err, apierror.KindAuthorization))
}

func TestGetPedido_TotalEfectivoDerivado(t *testing.T) {
	f := buildPedidoSvc()
	pedido := seedPedidoSimple(f.pedidoRepo, 100)
	require.NoError(t, f.descuentoRepo.Create(context.Background(), nil, &model.Descuento{
		PedidoID: pedido.ID, Tipo: model.DescuentoPreset12,
		Porcentaje: decimal.NewFromInt(12), Estado: model.DescuentoAplicado, AppliedBy: uuid.New(),
	}))

	resp, err := f.svc.Get(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.True(t, resp.EffectiveTotal.Equal(decimal.NewFromInt(88)), "got %s", resp.EffectiveTotal)
}
