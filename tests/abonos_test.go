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

func buildAbonoSvc() (service.AbonoService, *stubAbonoRepo, *stubPedidoRepo, *stubDescuentoRepo) {
	abonoRepo := newStubAbonoRepo()
	pedidoRepo := newStubPedidoRepo()
	descuentoRepo := newStubDescuentoRepo()
	clienteRepo := newStubClienteRepo()
	svc := service.NewAbonoService(abonoRepo, pedidoRepo, descuentoRepo, clienteRepo, nil)
	return svc, abonoRepo, pedidoRepo, descuentoRepo
}

func pct(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestRegistrarAbono_LiquidacionConDescuentoLocal(t *testing.T) {
	svc, _, pedidoRepo, descuentoRepo := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 200)

	// 10% order discount → effective total 180
	require.NoError(t, descuentoRepo.Create(context.Background(), nil, &model.Descuento{
		PedidoID:   pedido.ID,
		Tipo:       model.DescuentoPreset10,
		Porcentaje: decimal.NewFromInt(10),
		Estado:     model.DescuentoAplicado,
		AppliedBy:  uuid.New(),
	}))

	// Payment of 100 forgiving 5% of the CURRENT pending balance (180):
	// forgiven 9, pending 180 - 9 - 100 = 71
	resp, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID:         pedido.ID.String(),
		Amount:          decimal.NewFromInt(100),
		DiscountApplied: pct(5),
		WithinDeadline:  true,
	})
	require.NoError(t, err)
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(9)),
		"expected 9, got %s", resp.DiscountAmount)

	ledger, err := svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.True(t, ledger.EffectiveTotal.Equal(decimal.NewFromInt(180)))
	assert.True(t, ledger.TotalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, ledger.PendingBalance.Equal(decimal.NewFromInt(71)),
		"expected 71, got %s", ledger.PendingBalance)
}

func TestRegistrarAbono_PliegueCronologico(t *testing.T) {
	// Each payment's forgiveness applies to the balance at ITS point of the
	// fold, not to the original total.
	svc, _, pedidoRepo, _ := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	_, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID:     pedido.ID.String(),
		Amount:      decimal.NewFromInt(50),
		PaymentDate: strPtr("2026-02-01"),
	})
	require.NoError(t, err)

	// Second payment: pending is 50, forgiving 10% means 5
	resp, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID:         pedido.ID.String(),
		Amount:          decimal.NewFromInt(20),
		DiscountApplied: pct(10),
		PaymentDate:     strPtr("2026-02-10"),
	})
	require.NoError(t, err)
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(5)),
		"expected 5, got %s", resp.DiscountAmount)

	ledger, err := svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.True(t, ledger.PendingBalance.Equal(decimal.NewFromInt(25)))
}

func TestRegistrarAbono_SobrepagoSeFijaEnCero(t *testing.T) {
	svc, _, pedidoRepo, _ := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 80)

	_, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID: pedido.ID.String(),
		Amount:  decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	ledger, err := svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.True(t, ledger.PendingBalance.IsZero())
	assert.True(t, ledger.TotalPaid.Equal(decimal.NewFromInt(100)))
}

func TestCancelarAbono_RecalculaLiquidacion(t *testing.T) {
	svc, _, pedidoRepo, _ := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	primero, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID: pedido.ID.String(),
		Amount:  decimal.NewFromInt(60),
	})
	require.NoError(t, err)
	_, err = svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID: pedido.ID.String(),
		Amount:  decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancelar(context.Background(), actorOwner(), uuid.MustParse(primero.ID)))

	// Only the second payment remains; the fold self-heals
	ledger, err := svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.Len(t, ledger.Abonos, 1)
	assert.True(t, ledger.TotalPaid.Equal(decimal.NewFromInt(30)))
	assert.True(t, ledger.PendingBalance.Equal(decimal.NewFromInt(70)))
}

func TestRegistrarAbono_SoloOwner(t *testing.T) {
	svc, _, pedidoRepo, _ := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	for _, actor := range []model.Actor{actorAdmin(), actorVendedor(), actorEmpacador()} {
		_, err := svc.Registrar(context.Background(), actor, dto.RegistrarAbonoRequest{
			OrderID: pedido.ID.String(),
			Amount:  decimal.NewFromInt(10),
		})
		assert.True(t, apierror.IsKind(err, apierror.KindAuthorization), "rol %s", actor.Rol)
	}
}

func TestRegistrarAbono_MontoInvalido(t *testing.T) {
	svc, _, pedidoRepo, _ := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	for _, monto := range []int64{0, -10} {
		_, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
			OrderID: pedido.ID.String(),
			Amount:  decimal.NewFromInt(monto),
		})
		assert.True(t, apierror.IsKind(err, apierror.KindValidation), "monto=%d", monto)
	}
}

func TestRegistrarAbono_PedidoCanceladoConflicto(t *testing.T) {
	svc, _, pedidoRepo, _ := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)
	pedido.Estado = model.PedidoCancelado

	_, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID: pedido.ID.String(),
		Amount:  decimal.NewFromInt(10),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestListarAbonos_OrdenPorFechaDePago(t *testing.T) {
	// A later-registered payment with an earlier paymentDate folds first
	svc, _, pedidoRepo, _ := buildAbonoSvc()
	pedido := seedPedidoSimple(pedidoRepo, 100)

	_, err := svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID:     pedido.ID.String(),
		Amount:      decimal.NewFromInt(40),
		PaymentDate: strPtr("2026-03-15"),
	})
	require.NoError(t, err)
	_, err = svc.Registrar(context.Background(), actorOwner(), dto.RegistrarAbonoRequest{
		OrderID:     pedido.ID.String(),
		Amount:      decimal.NewFromInt(25),
		PaymentDate: strPtr("2026-03-01"),
	})
	require.NoError(t, err)

	ledger, err := svc.ListarPorPedido(context.Background(), pedido.ID)
	require.NoError(t, err)
	require.Len(t, ledger.Abonos, 2)
	assert.Equal(t, "2026-03-01", ledger.Abonos[0].PaymentDate)
	assert.Equal(t, "2026-03-15", ledger.Abonos[1].PaymentDate)
}

func strPtr(s string) *string { return &s }
