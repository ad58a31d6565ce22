package service

import (
	"context"
	"fmt"
	"time"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"
	"vitalexa/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AbonoService interface {
	// Registrar records a payment against an order. The optional
	// discountApplied percentage forgives part of the pending balance at
	// payment time. OWNER only.
	Registrar(ctx context.Context, actor model.Actor, req dto.RegistrarAbonoRequest) (*dto.AbonoResponse, error)
	// Cancelar hard-deletes a payment. Totals self-heal because they are
	// always recomputed from the remaining ledger. OWNER only.
	Cancelar(ctx context.Context, actor model.Actor, abonoID uuid.UUID) error
	ListarPorPedido(ctx context.Context, pedidoID uuid.UUID) (*dto.AbonosPedidoResponse, error)
}

type abonoService struct {
	repo          repository.AbonoRepository
	pedidoRepo    repository.PedidoRepository
	descuentoRepo repository.DescuentoRepository
	clienteRepo   repository.ClienteRepository
	dispatcher    *worker.Dispatcher
}

func NewAbonoService(
	repo repository.AbonoRepository,
	pedidoRepo repository.PedidoRepository,
	descuentoRepo repository.DescuentoRepository,
	clienteRepo repository.ClienteRepository,
	dispatcher *worker.Dispatcher,
) AbonoService {
	return &abonoService{
		repo:          repo,
		pedidoRepo:    pedidoRepo,
		descuentoRepo: descuentoRepo,
		clienteRepo:   clienteRepo,
		dispatcher:    dispatcher,
	}
}

func (s *abonoService) Registrar(ctx context.Context, actor model.Actor, req dto.RegistrarAbonoRequest) (*dto.AbonoResponse, error) {
	if !actor.Es(model.RolOwner) {
		return nil, apierror.Authorization("solo OWNER puede registrar abonos")
	}
	pedidoID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apierror.Validation("orderId invalido")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apierror.Validation("el monto debe ser mayor a cero")
	}
	descuentoPct := decimal.Zero
	if req.DiscountApplied != nil {
		descuentoPct = *req.DiscountApplied
		if descuentoPct.IsNegative() || descuentoPct.GreaterThan(cien) {
			return nil, apierror.Validation("discountApplied debe estar entre 0 y 100")
		}
	}

	fechaPago := time.Now()
	if req.PaymentDate != nil {
		t, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return nil, apierror.Validation("paymentDate invalido")
		}
		fechaPago = t
	}

	abono := &model.Abono{
		PedidoID:       pedidoID,
		Monto:          req.Amount,
		DescuentoPct:   descuentoPct,
		FechaPago:      fechaPago,
		WithinDeadline: req.WithinDeadline,
		Notas:          req.Notes,
		RegisteredBy:   actor.ID,
	}

	var pedido *model.Pedido
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.pedidoRepo.FindByIDForUpdateTx(ctx, tx, pedidoID)
		if err != nil {
			return apierror.NotFound("pedido no encontrado")
		}
		if p.Estado == model.PedidoCancelado {
			return apierror.Conflict("no se puede abonar un pedido cancelado")
		}
		pedido = p
		return s.repo.Create(ctx, tx, abono)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async: notification event + receipt email, best-effort
	if s.dispatcher != nil {
		pid := pedidoID.String()
		payload := fmt.Sprintf(`{"orderId":%q,"amount":%q}`, pid, req.Amount.StringFixed(2))
		_ = s.dispatcher.EnqueueNotificacion(ctx, worker.NotifJobPayload{
			Evento:   "payment_recorded",
			PedidoID: &pid,
			Payload:  []byte(payload),
		})
		s.enqueueRecibo(ctx, pedido, abono)
	}

	return s.buildResponse(ctx, pedidoID, abono.ID)
}

// enqueueRecibo mails a receipt when the order's client has an email.
func (s *abonoService) enqueueRecibo(ctx context.Context, pedido *model.Pedido, abono *model.Abono) {
	cliente, err := s.clienteRepo.FindByID(ctx, pedido.ClienteID)
	if err != nil || cliente.Email == nil || *cliente.Email == "" {
		return
	}
	_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: *cliente.Email,
		Subject: "Recibo de abono — Vitalexa",
		Body: fmt.Sprintf("Hola %s:\n\nRegistramos un abono de $%s sobre tu pedido %s.\n\nGracias.",
			cliente.Nombre, abono.Monto.StringFixed(2), pedido.ID),
	})
}

func (s *abonoService) Cancelar(ctx context.Context, actor model.Actor, abonoID uuid.UUID) error {
	if !actor.Es(model.RolOwner) {
		return apierror.Authorization("solo OWNER puede cancelar abonos")
	}
	abono, err := s.repo.FindByID(ctx, abonoID)
	if err != nil {
		return apierror.NotFound("abono no encontrado")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.pedidoRepo.FindByIDForUpdateTx(ctx, tx, abono.PedidoID); err != nil {
			return apierror.NotFound("pedido no encontrado")
		}
		return s.repo.Delete(ctx, tx, abonoID)
	})
	if txErr != nil {
		return txErr
	}

	if s.dispatcher != nil {
		pid := abono.PedidoID.String()
		payload := fmt.Sprintf(`{"orderId":%q,"paymentId":%q}`, pid, abonoID.String())
		_ = s.dispatcher.EnqueueNotificacion(ctx, worker.NotifJobPayload{
			Evento:   "payment_cancelled",
			PedidoID: &pid,
			Payload:  []byte(payload),
		})
	}
	return nil
}

func (s *abonoService) ListarPorPedido(ctx context.Context, pedidoID uuid.UUID) (*dto.AbonosPedidoResponse, error) {
	return s.buildLedgerResponse(ctx, pedidoID)
}

// buildResponse returns the single-payment view of one abono, with its
// derived discountAmount, after re-folding the full ledger.
func (s *abonoService) buildResponse(ctx context.Context, pedidoID, abonoID uuid.UUID) (*dto.AbonoResponse, error) {
	ledger, err := s.buildLedgerResponse(ctx, pedidoID)
	if err != nil {
		return nil, err
	}
	for i := range ledger.Abonos {
		if ledger.Abonos[i].ID == abonoID.String() {
			return &ledger.Abonos[i], nil
		}
	}
	return nil, apierror.Internal("no se pudo recuperar el abono registrado")
}

func (s *abonoService) buildLedgerResponse(ctx context.Context, pedidoID uuid.UUID) (*dto.AbonosPedidoResponse, error) {
	pedido, err := s.pedidoRepo.FindByID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.NotFound("pedido no encontrado")
	}
	descuentos, err := s.descuentoRepo.FindByPedidoID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar descuentos")
	}
	abonos, err := s.repo.FindByPedidoID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar abonos")
	}

	efectivo := calcularTotalEfectivo(pedido.Total, descuentos)
	liq := liquidarAbonos(efectivo, abonos)

	items := make([]dto.AbonoResponse, len(abonos))
	for i := range abonos {
		a := &abonos[i]
		items[i] = dto.AbonoResponse{
			ID:              a.ID.String(),
			OrderID:         a.PedidoID.String(),
			Amount:          a.Monto,
			DiscountApplied: a.DescuentoPct,
			DiscountAmount:  liq.DescuentosAplicados[i].Round(2),
			PaymentDate:     a.FechaPago.Format("2006-01-02"),
			WithinDeadline:  a.WithinDeadline,
			Notes:           a.Notas,
			RegisteredBy:    a.RegisteredBy.String(),
			CreatedAt:       a.CreatedAt.Format(time.RFC3339),
		}
	}

	return &dto.AbonosPedidoResponse{
		OrderID:        pedidoID.String(),
		EffectiveTotal: efectivo.Round(2),
		TotalPaid:      liq.TotalPagado.Round(2),
		PendingBalance: liq.SaldoPendiente.Round(2),
		Abonos:         items,
	}, nil
}

// liquidacion is the result of folding the payment ledger of one order.
type liquidacion struct {
	TotalPagado    decimal.Decimal
	SaldoPendiente decimal.Decimal
	// DescuentosAplicados holds the forgiven amount of each payment, in
	// ledger order.
	DescuentosAplicados []decimal.Decimal
}

// liquidarAbonos folds the payment ledger chronologically. The pending
// balance starts at the effective total; each payment first forgives its
// local percentage of the CURRENT pending balance, then subtracts its
// amount. The balance never goes below zero (overpayment is accepted and
// clamped). Totals are never cached — cancelling a payment and re-folding
// yields the corrected figures.
func liquidarAbonos(totalEfectivo decimal.Decimal, abonos []model.Abono) liquidacion {
	liq := liquidacion{
		TotalPagado:         decimal.Zero,
		SaldoPendiente:      totalEfectivo,
		DescuentosAplicados: make([]decimal.Decimal, len(abonos)),
	}
	for i := range abonos {
		a := &abonos[i]
		descuento := decimal.Zero
		if a.DescuentoPct.IsPositive() {
			descuento = liq.SaldoPendiente.Mul(a.DescuentoPct).Div(cien)
		}
		liq.DescuentosAplicados[i] = descuento
		liq.SaldoPendiente = liq.SaldoPendiente.Sub(descuento).Sub(a.Monto)
		if liq.SaldoPendiente.IsNegative() {
			liq.SaldoPendiente = decimal.Zero
		}
		liq.TotalPagado = liq.TotalPagado.Add(a.Monto)
	}
	return liq
}
