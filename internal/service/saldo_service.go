package service

import (
	"context"
	"time"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaldoService interface {
	// GetSaldo rolls up the balance of one client across all non-cancelled
	// orders plus the one-time opening balance.
	GetSaldo(ctx context.Context, clienteID uuid.UUID) (*dto.SaldoClienteResponse, error)
	ListSaldos(ctx context.Context) (*dto.SaldoListResponse, error)
	// FijarLimiteCredito sets the client credit limit. OWNER only.
	FijarLimiteCredito(ctx context.Context, actor model.Actor, clienteID uuid.UUID, limite decimal.Decimal) error
	// QuitarLimiteCredito removes the limit (client goes back to unlimited
	// credit). OWNER only.
	QuitarLimiteCredito(ctx context.Context, actor model.Actor, clienteID uuid.UUID) error
	// FijarSaldoInicial sets the opening balance carried over from before
	// the system existed. Write-once: a second call fails. OWNER only.
	FijarSaldoInicial(ctx context.Context, actor model.Actor, clienteID uuid.UUID, monto decimal.Decimal) error
	// VerificarCredito rejects a new order whose total would push the
	// client's pending balance over its credit limit. No limit = unlimited.
	VerificarCredito(ctx context.Context, clienteID uuid.UUID, nuevoTotal decimal.Decimal) error
}

type saldoService struct {
	repo          repository.SaldoRepository
	clienteRepo   repository.ClienteRepository
	pedidoRepo    repository.PedidoRepository
	descuentoRepo repository.DescuentoRepository
	abonoRepo     repository.AbonoRepository
}

func NewSaldoService(
	repo repository.SaldoRepository,
	clienteRepo repository.ClienteRepository,
	pedidoRepo repository.PedidoRepository,
	descuentoRepo repository.DescuentoRepository,
	abonoRepo repository.AbonoRepository,
) SaldoService {
	return &saldoService{
		repo:          repo,
		clienteRepo:   clienteRepo,
		pedidoRepo:    pedidoRepo,
		descuentoRepo: descuentoRepo,
		abonoRepo:     abonoRepo,
	}
}

func (s *saldoService) GetSaldo(ctx context.Context, clienteID uuid.UUID) (*dto.SaldoClienteResponse, error) {
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, apierror.NotFound("cliente no encontrado")
	}
	return s.armarSaldo(ctx, cliente)
}

func (s *saldoService) ListSaldos(ctx context.Context) (*dto.SaldoListResponse, error) {
	clientes, err := s.clienteRepo.List(ctx)
	if err != nil {
		return nil, apierror.Internal("no se pudo listar clientes")
	}
	data := make([]dto.SaldoClienteResponse, 0, len(clientes))
	for i := range clientes {
		saldo, err := s.armarSaldo(ctx, &clientes[i])
		if err != nil {
			return nil, err
		}
		data = append(data, *saldo)
	}
	return &dto.SaldoListResponse{Data: data}, nil
}

// armarSaldo derives the client rollup. Nothing here is cached: every figure
// folds over the order, discount and payment ledgers at read time.
func (s *saldoService) armarSaldo(ctx context.Context, cliente *model.Cliente) (*dto.SaldoClienteResponse, error) {
	pedidos, err := s.pedidoRepo.FindByClienteID(ctx, cliente.ID)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar pedidos")
	}

	totalOrdenado := decimal.Zero
	totalPagado := decimal.Zero
	pendienteTotal := decimal.Zero
	pendientes := make([]dto.PedidoPendienteResponse, 0)

	for i := range pedidos {
		p := &pedidos[i]
		if p.Estado == model.PedidoCancelado {
			continue
		}
		descuentos, err := s.descuentoRepo.FindByPedidoID(ctx, p.ID)
		if err != nil {
			return nil, apierror.Internal("no se pudo consultar descuentos")
		}
		abonos, err := s.abonoRepo.FindByPedidoID(ctx, p.ID)
		if err != nil {
			return nil, apierror.Internal("no se pudo consultar abonos")
		}

		efectivo := calcularTotalEfectivo(p.Total, descuentos)
		liq := liquidarAbonos(efectivo, abonos)

		totalOrdenado = totalOrdenado.Add(efectivo)
		totalPagado = totalPagado.Add(liq.TotalPagado)
		pendienteTotal = pendienteTotal.Add(liq.SaldoPendiente)

		if liq.SaldoPendiente.IsPositive() {
			pendientes = append(pendientes, dto.PedidoPendienteResponse{
				OrderID:        p.ID.String(),
				EffectiveTotal: efectivo.Round(2),
				TotalPaid:      liq.TotalPagado.Round(2),
				PendingBalance: liq.SaldoPendiente.Round(2),
				Estado:         p.Estado,
				CreatedAt:      p.CreatedAt.Format(time.RFC3339),
			})
		}
	}

	settings, err := s.repo.FindOrCreate(ctx, cliente.ID)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar la configuracion de saldo")
	}

	// The opening balance is debt like any order: it raises both the total
	// owed and the pending figure
	totalOrdenado = totalOrdenado.Add(settings.InitialBalance)
	pendienteTotal = pendienteTotal.Add(settings.InitialBalance)
	if pendienteTotal.IsNegative() {
		pendienteTotal = decimal.Zero
	}

	return &dto.SaldoClienteResponse{
		ClienteID:         cliente.ID.String(),
		Cliente:           cliente.Nombre,
		TotalOrdered:      totalOrdenado.Round(2),
		TotalPaid:         totalPagado.Round(2),
		PendingBalance:    pendienteTotal.Round(2),
		InitialBalance:    settings.InitialBalance,
		InitialBalanceSet: settings.InitialBalanceSet,
		CreditLimit:       settings.CreditLimit,
		PendingOrders:     pendientes,
	}, nil
}

func (s *saldoService) FijarLimiteCredito(ctx context.Context, actor model.Actor, clienteID uuid.UUID, limite decimal.Decimal) error {
	if !actor.Es(model.RolOwner) {
		return apierror.Authorization("solo OWNER puede fijar limites de credito")
	}
	if limite.IsNegative() {
		return apierror.Validation("el limite de credito no puede ser negativo")
	}
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return apierror.NotFound("cliente no encontrado")
	}
	settings, err := s.repo.FindOrCreate(ctx, clienteID)
	if err != nil {
		return apierror.Internal("no se pudo consultar la configuracion de saldo")
	}
	settings.CreditLimit = &limite
	if err := s.repo.Update(ctx, settings); err != nil {
		return apierror.Internal("no se pudo guardar el limite de credito")
	}
	return nil
}

func (s *saldoService) QuitarLimiteCredito(ctx context.Context, actor model.Actor, clienteID uuid.UUID) error {
	if !actor.Es(model.RolOwner) {
		return apierror.Authorization("solo OWNER puede quitar limites de credito")
	}
	settings, err := s.repo.FindOrCreate(ctx, clienteID)
	if err != nil {
		return apierror.Internal("no se pudo consultar la configuracion de saldo")
	}
	settings.CreditLimit = nil
	if err := s.repo.Update(ctx, settings); err != nil {
		return apierror.Internal("no se pudo quitar el limite de credito")
	}
	return nil
}

func (s *saldoService) FijarSaldoInicial(ctx context.Context, actor model.Actor, clienteID uuid.UUID, monto decimal.Decimal) error {
	if !actor.Es(model.RolOwner) {
		return apierror.Authorization("solo OWNER puede fijar el saldo inicial")
	}
	if monto.IsNegative() {
		return apierror.Validation("el saldo inicial no puede ser negativo")
	}
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return apierror.NotFound("cliente no encontrado")
	}
	settings, err := s.repo.FindOrCreate(ctx, clienteID)
	if err != nil {
		return apierror.Internal("no se pudo consultar la configuracion de saldo")
	}
	if settings.InitialBalanceSet {
		return apierror.Conflict("el saldo inicial ya fue fijado para este cliente")
	}
	settings.InitialBalance = monto
	settings.InitialBalanceSet = true
	if err := s.repo.Update(ctx, settings); err != nil {
		return apierror.Internal("no se pudo guardar el saldo inicial")
	}
	return nil
}

func (s *saldoService) VerificarCredito(ctx context.Context, clienteID uuid.UUID, nuevoTotal decimal.Decimal) error {
	settings, err := s.repo.FindOrCreate(ctx, clienteID)
	if err != nil {
		return apierror.Internal("no se pudo consultar la configuracion de saldo")
	}
	if settings.CreditLimit == nil {
		return nil // unlimited
	}

	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return apierror.NotFound("cliente no encontrado")
	}
	saldo, err := s.armarSaldo(ctx, cliente)
	if err != nil {
		return err
	}
	if saldo.PendingBalance.Add(nuevoTotal).GreaterThan(*settings.CreditLimit) {
		return apierror.Conflict("el pedido excede el limite de credito del cliente")
	}
	return nil
}
