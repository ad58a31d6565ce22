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
	"gorm.io/gorm"
)

var cien = decimal.NewFromInt(100)

type DescuentoService interface {
	// AplicarPreset applies one of the fixed preset discounts (10, 12 or 15
	// percent) to an order. ADMIN only.
	AplicarPreset(ctx context.Context, actor model.Actor, pedidoID uuid.UUID, porcentaje int) (*dto.DescuentoResponse, error)
	// AplicarCustom applies an arbitrary percentage in (0, 100]. ADMIN only.
	AplicarCustom(ctx context.Context, actor model.Actor, req dto.AplicarDescuentoCustomRequest) (*dto.DescuentoResponse, error)
	// AgregarOwner applies an owner discount; a reason is mandatory for the
	// audit trail. OWNER only.
	AgregarOwner(ctx context.Context, actor model.Actor, req dto.AgregarDescuentoOwnerRequest) (*dto.DescuentoResponse, error)
	// Revocar flips one APPLIED entry to REVOKED. The row stays in the
	// ledger; a new discount can then be applied. OWNER only.
	Revocar(ctx context.Context, actor model.Actor, descuentoID uuid.UUID) (*dto.DescuentoResponse, error)
	ListarPorPedido(ctx context.Context, pedidoID uuid.UUID) (*dto.DescuentosPedidoResponse, error)
}

type descuentoService struct {
	repo          repository.DescuentoRepository
	pedidoRepo    repository.PedidoRepository
	promocionRepo repository.PromocionRepository
}

func NewDescuentoService(
	repo repository.DescuentoRepository,
	pedidoRepo repository.PedidoRepository,
	promocionRepo repository.PromocionRepository,
) DescuentoService {
	return &descuentoService{repo: repo, pedidoRepo: pedidoRepo, promocionRepo: promocionRepo}
}

func (s *descuentoService) AplicarPreset(ctx context.Context, actor model.Actor, pedidoID uuid.UUID, porcentaje int) (*dto.DescuentoResponse, error) {
	var tipo string
	switch porcentaje {
	case 10:
		tipo = model.DescuentoPreset10
	case 12:
		tipo = model.DescuentoPreset12
	case 15:
		tipo = model.DescuentoPreset15
	default:
		return nil, apierror.Validation("los presets disponibles son 10, 12 y 15 por ciento")
	}
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede aplicar descuentos preset")
	}
	return s.aplicar(ctx, actor, pedidoID, tipo, decimal.NewFromInt(int64(porcentaje)), nil)
}

func (s *descuentoService) AplicarCustom(ctx context.Context, actor model.Actor, req dto.AplicarDescuentoCustomRequest) (*dto.DescuentoResponse, error) {
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede aplicar descuentos custom")
	}
	pedidoID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apierror.Validation("orderId invalido")
	}
	return s.aplicar(ctx, actor, pedidoID, model.DescuentoCustom, req.Percentage, nil)
}

func (s *descuentoService) AgregarOwner(ctx context.Context, actor model.Actor, req dto.AgregarDescuentoOwnerRequest) (*dto.DescuentoResponse, error) {
	if !actor.Es(model.RolOwner) {
		return nil, apierror.Authorization("solo OWNER puede agregar este descuento")
	}
	pedidoID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apierror.Validation("orderId invalido")
	}
	if req.Reason == "" {
		return nil, apierror.Validation("el motivo es obligatorio para descuentos de OWNER")
	}
	motivo := req.Reason
	return s.aplicar(ctx, actor, pedidoID, model.DescuentoOwnerAdded, req.Percentage, &motivo)
}

// aplicar enforces the ledger invariants under a row lock on the order:
// exactly one APPLIED entry at a time, and no stacking over a promotion
// unless the promotion allows it.
func (s *descuentoService) aplicar(ctx context.Context, actor model.Actor, pedidoID uuid.UUID, tipo string, pct decimal.Decimal, motivo *string) (*dto.DescuentoResponse, error) {
	if pct.LessThanOrEqual(decimal.Zero) || pct.GreaterThan(cien) {
		return nil, apierror.Validation("el porcentaje debe estar entre 0 y 100")
	}

	d := &model.Descuento{
		PedidoID:   pedidoID,
		Tipo:       tipo,
		Porcentaje: pct,
		Estado:     model.DescuentoAplicado,
		Motivo:     motivo,
		AppliedBy:  actor.ID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.pedidoRepo.FindByIDForUpdateTx(ctx, tx, pedidoID)
		if err != nil {
			return apierror.NotFound("pedido no encontrado")
		}
		if pedido.Estado == model.PedidoCancelado {
			return apierror.Conflict("no se puede descontar un pedido cancelado")
		}

		ledger, err := s.repo.FindByPedidoIDTx(ctx, tx, pedidoID)
		if err != nil {
			return err
		}
		for _, prev := range ledger {
			if prev.Estado == model.DescuentoAplicado {
				return apierror.Conflict("el pedido ya tiene un descuento aplicado; revoque el actual primero")
			}
		}

		// Stacking gate: any promotion on the order must allow discounts
		if err := s.verificarStacking(ctx, pedido); err != nil {
			return err
		}

		return s.repo.Create(ctx, tx, d)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := descuentoToResponse(d)
	return &resp, nil
}

func (s *descuentoService) verificarStacking(ctx context.Context, pedido *model.Pedido) error {
	vistos := make(map[uuid.UUID]bool)
	for _, item := range pedido.Items {
		if item.PromocionID == nil || vistos[*item.PromocionID] {
			continue
		}
		vistos[*item.PromocionID] = true
		promo, err := s.promocionRepo.FindByID(ctx, *item.PromocionID)
		if err != nil {
			continue // promotion deleted after the order was placed
		}
		if !promo.AllowStackWithDiscounts {
			return apierror.Conflict("la promocion aplicada al pedido no permite combinarse con descuentos")
		}
	}
	return nil
}

func (s *descuentoService) Revocar(ctx context.Context, actor model.Actor, descuentoID uuid.UUID) (*dto.DescuentoResponse, error) {
	if !actor.Es(model.RolOwner) {
		return nil, apierror.Authorization("solo OWNER puede revocar descuentos")
	}

	d, err := s.repo.FindByID(ctx, descuentoID)
	if err != nil {
		return nil, apierror.NotFound("descuento no encontrado")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.pedidoRepo.FindByIDForUpdateTx(ctx, tx, d.PedidoID); err != nil {
			return apierror.NotFound("pedido no encontrado")
		}
		if d.Estado == model.DescuentoRevocado {
			return apierror.Conflict("el descuento ya fue revocado")
		}
		now := time.Now()
		actorID := actor.ID
		d.Estado = model.DescuentoRevocado
		d.RevokedBy = &actorID
		d.RevokedAt = &now
		return s.repo.Revocar(ctx, tx, d)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := descuentoToResponse(d)
	return &resp, nil
}

func (s *descuentoService) ListarPorPedido(ctx context.Context, pedidoID uuid.UUID) (*dto.DescuentosPedidoResponse, error) {
	pedido, err := s.pedidoRepo.FindByID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.NotFound("pedido no encontrado")
	}
	ledger, err := s.repo.FindByPedidoID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar el libro de descuentos")
	}

	descuentos := make([]dto.DescuentoResponse, len(ledger))
	for i := range ledger {
		descuentos[i] = descuentoToResponse(&ledger[i])
	}
	return &dto.DescuentosPedidoResponse{
		OrderID:        pedidoID.String(),
		Total:          pedido.Total,
		EffectiveTotal: calcularTotalEfectivo(pedido.Total, ledger).Round(2),
		Descuentos:     descuentos,
	}, nil
}

// calcularTotalEfectivo derives the effective total from the ledger: the sum
// of APPLIED percentages folded over the gross total. Never stored — always
// recomputed, so revoking an entry self-heals the total.
func calcularTotalEfectivo(total decimal.Decimal, ledger []model.Descuento) decimal.Decimal {
	sumaPct := decimal.Zero
	for _, d := range ledger {
		if d.Estado == model.DescuentoAplicado {
			sumaPct = sumaPct.Add(d.Porcentaje)
		}
	}
	eff := total.Sub(total.Mul(sumaPct).Div(cien))
	if eff.IsNegative() {
		return decimal.Zero
	}
	return eff
}

func descuentoToResponse(d *model.Descuento) dto.DescuentoResponse {
	var revokedBy, revokedAt *string
	if d.RevokedBy != nil {
		rb := d.RevokedBy.String()
		revokedBy = &rb
	}
	if d.RevokedAt != nil {
		ra := d.RevokedAt.Format(time.RFC3339)
		revokedAt = &ra
	}
	return dto.DescuentoResponse{
		ID:         d.ID.String(),
		OrderID:    d.PedidoID.String(),
		Tipo:       d.Tipo,
		Percentage: d.Porcentaje,
		Estado:     d.Estado,
		Reason:     d.Motivo,
		AppliedBy:  d.AppliedBy.String(),
		RevokedBy:  revokedBy,
		RevokedAt:  revokedAt,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
}
