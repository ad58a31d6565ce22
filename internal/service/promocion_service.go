package service

import (
	"context"
	"fmt"
	"time"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineaCarrito is one priced order line handed to the promotion resolver.
type LineaCarrito struct {
	ProductoID uuid.UUID
	Cantidad   int
}

// AjustePack reprices the buyQuantity bundle of a PACK's main product:
// those units sell together at PackPrice instead of the catalog sum.
type AjustePack struct {
	ProductoID uuid.UUID
	Cantidad   int
	PackPrice  decimal.Decimal
}

// ResolucionPromos is the resolver output: the free/placeholder lines to
// append to the order, the PACK bundle repricings to apply to the paid
// lines, and whether the order must wait for assortment completion before
// confirmation.
type ResolucionPromos struct {
	Items             []model.PedidoItem
	AjustesPack       []AjustePack
	PendienteSurtido  bool
	PromocionesUsadas []uuid.UUID
}

type PromocionService interface {
	Crear(ctx context.Context, actor model.Actor, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error)
	Actualizar(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.ActualizarPromocionRequest) (*dto.PromocionResponse, error)
	CambiarEstado(ctx context.Context, actor model.Actor, id uuid.UUID, active bool) (*dto.PromocionResponse, error)
	Eliminar(ctx context.Context, actor model.Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.PromocionResponse, error)
	List(ctx context.Context) ([]dto.PromocionResponse, error)
	// ListVigentes returns only promotions applicable right now — the set a
	// vendedor sees while building an order.
	ListVigentes(ctx context.Context) ([]dto.PromocionResponse, error)

	// Resolver evaluates every applicable promotion against the cart lines.
	// PACK promotions resolve immediately to concrete free items plus a
	// bundle repricing at packPrice; BUY_GET_FREE promotions resolve to a
	// placeholder line pending assortment. Each qualifying promotion applies
	// once per order and is tracked independently by its id.
	Resolver(ctx context.Context, lines []LineaCarrito, now time.Time) (*ResolucionPromos, error)

	// CompletarSurtido turns the placeholder of a BUY_GET_FREE promotion
	// into concrete free items. Quantities must sum exactly to the
	// promotion's freeQuantity and every line must be covered by stock; all
	// validation runs before any write. When no placeholder remains, the
	// order moves to CONFIRMADO.
	CompletarSurtido(ctx context.Context, actor model.Actor, pedidoID, promocionID uuid.UUID, req dto.CompletarSurtidoRequest) (*dto.PedidoResponse, error)
}

type promocionService struct {
	repo          repository.PromocionRepository
	productoRepo  repository.ProductoRepository
	pedidoRepo    repository.PedidoRepository
	descuentoRepo repository.DescuentoRepository
}

func NewPromocionService(
	repo repository.PromocionRepository,
	productoRepo repository.ProductoRepository,
	pedidoRepo repository.PedidoRepository,
	descuentoRepo repository.DescuentoRepository,
) PromocionService {
	return &promocionService{
		repo:          repo,
		productoRepo:  productoRepo,
		pedidoRepo:    pedidoRepo,
		descuentoRepo: descuentoRepo,
	}
}

// ── CRUD ──────────────────────────────────────────────────────────────────────

func (s *promocionService) Crear(ctx context.Context, actor model.Actor, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error) {
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede crear promociones")
	}

	mainID, err := uuid.Parse(req.MainProductID)
	if err != nil {
		return nil, apierror.Validation("mainProductId invalido")
	}
	if _, err := s.productoRepo.FindByID(ctx, mainID); err != nil {
		return nil, apierror.NotFound("producto principal no encontrado")
	}

	p := &model.Promocion{
		Nombre:                  req.Nombre,
		Descripcion:             req.Descripcion,
		Tipo:                    req.Tipo,
		MainProductID:           mainID,
		BuyQuantity:             req.BuyQuantity,
		AllowStackWithDiscounts: req.AllowStackWithDiscounts,
		Active:                  true,
	}

	// Per-variant invariants
	switch req.Tipo {
	case model.PromocionPack:
		if len(req.GiftItems) == 0 {
			return nil, apierror.Validation("una promocion PACK requiere giftItems")
		}
		if req.PackPrice == nil {
			return nil, apierror.Validation("una promocion PACK requiere packPrice")
		}
		if req.PackPrice.LessThanOrEqual(decimal.Zero) {
			return nil, apierror.Validation("packPrice debe ser mayor a cero")
		}
		gifts, err := s.buildGiftItems(ctx, req.GiftItems)
		if err != nil {
			return nil, err
		}
		p.GiftItems = gifts
		p.PackPrice = req.PackPrice
	case model.PromocionBuyGetFree:
		if req.FreeQuantity < 1 {
			return nil, apierror.Validation("una promocion BUY_GET_FREE requiere freeQuantity mayor a cero")
		}
		p.FreeQuantity = req.FreeQuantity
	default:
		return nil, apierror.Validation("tipo de promocion desconocido")
	}

	if req.ValidFrom != nil {
		t, err := parseFecha(*req.ValidFrom)
		if err != nil {
			return nil, apierror.Validation("validFrom invalido")
		}
		p.ValidFrom = t
	}
	if req.ValidUntil != nil {
		t, err := parseFecha(*req.ValidUntil)
		if err != nil {
			return nil, apierror.Validation("validUntil invalido")
		}
		p.ValidUntil = t
	}
	if p.ValidFrom != nil && p.ValidUntil != nil && p.ValidUntil.Before(*p.ValidFrom) {
		return nil, apierror.Validation("validUntil debe ser posterior a validFrom")
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apierror.Internal("no se pudo crear la promocion")
	}
	return s.Get(ctx, p.ID)
}

func (s *promocionService) buildGiftItems(ctx context.Context, reqs []dto.GiftItemRequest) ([]model.PromocionGiftItem, error) {
	gifts := make([]model.PromocionGiftItem, 0, len(reqs))
	for _, g := range reqs {
		pid, err := uuid.Parse(g.ProductID)
		if err != nil {
			return nil, apierror.Validation("productId invalido en giftItems")
		}
		if _, err := s.productoRepo.FindByID(ctx, pid); err != nil {
			return nil, apierror.NotFound(fmt.Sprintf("producto de regalo %s no encontrado", g.ProductID))
		}
		gifts = append(gifts, model.PromocionGiftItem{ProductoID: pid, Cantidad: g.Quantity})
	}
	return gifts, nil
}

func (s *promocionService) Actualizar(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.ActualizarPromocionRequest) (*dto.PromocionResponse, error) {
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede modificar promociones")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("promocion no encontrada")
	}

	if req.Nombre != "" {
		p.Nombre = req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.BuyQuantity != nil {
		p.BuyQuantity = *req.BuyQuantity
	}
	if req.FreeQuantity != nil {
		if p.Tipo != model.PromocionBuyGetFree {
			return nil, apierror.Validation("freeQuantity solo aplica a promociones BUY_GET_FREE")
		}
		p.FreeQuantity = *req.FreeQuantity
	}
	if req.PackPrice != nil {
		if p.Tipo != model.PromocionPack {
			return nil, apierror.Validation("packPrice solo aplica a promociones PACK")
		}
		if req.PackPrice.LessThanOrEqual(decimal.Zero) {
			return nil, apierror.Validation("packPrice debe ser mayor a cero")
		}
		p.PackPrice = req.PackPrice
	}
	if req.AllowStackWithDiscounts != nil {
		p.AllowStackWithDiscounts = *req.AllowStackWithDiscounts
	}
	if req.ValidFrom != nil {
		t, err := parseFecha(*req.ValidFrom)
		if err != nil {
			return nil, apierror.Validation("validFrom invalido")
		}
		p.ValidFrom = t
	}
	if req.ValidUntil != nil {
		t, err := parseFecha(*req.ValidUntil)
		if err != nil {
			return nil, apierror.Validation("validUntil invalido")
		}
		p.ValidUntil = t
	}
	if p.ValidFrom != nil && p.ValidUntil != nil && p.ValidUntil.Before(*p.ValidFrom) {
		return nil, apierror.Validation("validUntil debe ser posterior a validFrom")
	}

	if req.GiftItems != nil {
		if p.Tipo != model.PromocionPack {
			return nil, apierror.Validation("giftItems solo aplica a promociones PACK")
		}
		gifts, err := s.buildGiftItems(ctx, req.GiftItems)
		if err != nil {
			return nil, err
		}
		for i := range gifts {
			gifts[i].PromocionID = p.ID
		}
		if err := s.repo.ReplaceGiftItems(ctx, p.ID, gifts); err != nil {
			return nil, apierror.Internal("no se pudo actualizar giftItems")
		}
		p.GiftItems = nil // avoid re-saving stale associations
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apierror.Internal("no se pudo actualizar la promocion")
	}
	return s.Get(ctx, p.ID)
}

func (s *promocionService) CambiarEstado(ctx context.Context, actor model.Actor, id uuid.UUID, active bool) (*dto.PromocionResponse, error) {
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede cambiar el estado de promociones")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("promocion no encontrada")
	}
	p.Active = active
	p.GiftItems = nil
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apierror.Internal("no se pudo cambiar el estado")
	}
	return s.Get(ctx, id)
}

func (s *promocionService) Eliminar(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.Es(model.RolAdmin) {
		return apierror.Authorization("solo ADMIN puede eliminar promociones")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("promocion no encontrada")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal("no se pudo eliminar la promocion")
	}
	return nil
}

func (s *promocionService) Get(ctx context.Context, id uuid.UUID) (*dto.PromocionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("promocion no encontrada")
	}
	resp := promocionToResponse(p, time.Now())
	return &resp, nil
}

func (s *promocionService) List(ctx context.Context) ([]dto.PromocionResponse, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Internal("no se pudo listar promociones")
	}
	now := time.Now()
	resp := make([]dto.PromocionResponse, len(promos))
	for i := range promos {
		resp[i] = promocionToResponse(&promos[i], now)
	}
	return resp, nil
}

func (s *promocionService) ListVigentes(ctx context.Context) ([]dto.PromocionResponse, error) {
	now := time.Now()
	promos, err := s.repo.ListVigentes(ctx, now)
	if err != nil {
		return nil, apierror.Internal("no se pudo listar promociones vigentes")
	}
	resp := make([]dto.PromocionResponse, len(promos))
	for i := range promos {
		resp[i] = promocionToResponse(&promos[i], now)
	}
	return resp, nil
}

// ── Resolver ──────────────────────────────────────────────────────────────────

func (s *promocionService) Resolver(ctx context.Context, lines []LineaCarrito, now time.Time) (*ResolucionPromos, error) {
	if len(lines) == 0 {
		return &ResolucionPromos{}, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	qtyByProduct := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductoID)
		qtyByProduct[l.ProductoID] += l.Cantidad
	}

	promos, err := s.repo.FindByMainProductIDs(ctx, ids)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar promociones")
	}

	res := &ResolucionPromos{}
	for i := range promos {
		promo := &promos[i]
		if !promo.EsVigente(now) {
			continue
		}
		if qtyByProduct[promo.MainProductID] < promo.BuyQuantity {
			continue
		}

		promoID := promo.ID
		switch promo.Tipo {
		case model.PromocionPack:
			// All gift items attach immediately — no pending state
			for _, gi := range promo.GiftItems {
				res.Items = append(res.Items, model.PedidoItem{
					ProductoID:          gi.ProductoID,
					Cantidad:            gi.Cantidad,
					PrecioUnit:          decimal.Zero,
					Subtotal:            decimal.Zero,
					IsFreeItem:          true,
					AssortmentCompleted: true,
					PromocionID:         &promoID,
				})
			}
			// The buyQuantity bundle sells at packPrice, not the catalog sum.
			// Old rows created before packPrice became mandatory keep catalog
			// pricing.
			if promo.PackPrice != nil {
				res.AjustesPack = append(res.AjustesPack, AjustePack{
					ProductoID: promo.MainProductID,
					Cantidad:   promo.BuyQuantity,
					PackPrice:  *promo.PackPrice,
				})
			}
		case model.PromocionBuyGetFree:
			// One placeholder per promotion, pending assortment completion
			res.Items = append(res.Items, model.PedidoItem{
				ProductoID:          promo.MainProductID,
				Cantidad:            promo.FreeQuantity,
				PrecioUnit:          decimal.Zero,
				Subtotal:            decimal.Zero,
				IsPromotionItem:     true,
				AssortmentCompleted: false,
				PromocionID:         &promoID,
			})
			res.PendienteSurtido = true
		default:
			return nil, apierror.Internal(fmt.Sprintf("tipo de promocion desconocido: %s", promo.Tipo))
		}
		res.PromocionesUsadas = append(res.PromocionesUsadas, promoID)
	}

	return res, nil
}

// ── CompletarSurtido ──────────────────────────────────────────────────────────

func (s *promocionService) CompletarSurtido(ctx context.Context, actor model.Actor, pedidoID, promocionID uuid.UUID, req dto.CompletarSurtidoRequest) (*dto.PedidoResponse, error) {
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede completar el surtido")
	}

	promo, err := s.repo.FindByID(ctx, promocionID)
	if err != nil {
		return nil, apierror.NotFound("promocion no encontrada")
	}
	if promo.Tipo != model.PromocionBuyGetFree {
		return nil, apierror.Validation("la promocion no requiere completar surtido")
	}

	// Parse and aggregate the chosen lines before touching the order
	type linea struct {
		productoID uuid.UUID
		cantidad   int
	}
	lineas := make([]linea, 0, len(req.Lines))
	suma := 0
	productIDs := make([]uuid.UUID, 0, len(req.Lines))
	for _, l := range req.Lines {
		pid, err := uuid.Parse(l.ProductID)
		if err != nil {
			return nil, apierror.Validation("productId invalido en el surtido")
		}
		lineas = append(lineas, linea{productoID: pid, cantidad: l.Quantity})
		productIDs = append(productIDs, pid)
		suma += l.Quantity
	}
	if suma != promo.FreeQuantity {
		return nil, apierror.Validation(fmt.Sprintf(
			"las cantidades del surtido suman %d pero la promocion otorga exactamente %d unidades", suma, promo.FreeQuantity))
	}

	// Stock check per line, before any write
	productos, err := s.productoRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar productos")
	}
	stockPorProducto := make(map[uuid.UUID]*model.Producto, len(productos))
	for i := range productos {
		stockPorProducto[productos[i].ID] = &productos[i]
	}
	for _, l := range lineas {
		p, ok := stockPorProducto[l.productoID]
		if !ok {
			return nil, apierror.Validation(fmt.Sprintf("producto %s no encontrado", l.productoID))
		}
		if !p.Activo {
			return nil, apierror.Validation(fmt.Sprintf("el producto %s esta inactivo", p.Nombre))
		}
		if p.Stock < l.cantidad {
			return nil, apierror.Validation(fmt.Sprintf(
				"stock insuficiente de %s: disponible %d, solicitado %d", p.Nombre, p.Stock, l.cantidad))
		}
	}

	txErr := runTx(ctx, s.pedidoRepo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.pedidoRepo.FindByIDForUpdateTx(ctx, tx, pedidoID)
		if err != nil {
			return apierror.NotFound("pedido no encontrado")
		}
		if pedido.Estado != model.PedidoPendientePromocion {
			return apierror.Conflict("el pedido no espera completar surtido")
		}

		// Locate the placeholder for THIS promotion
		var placeholder *model.PedidoItem
		pendientesRestantes := 0
		for i := range pedido.Items {
			item := &pedido.Items[i]
			if item.IsPromotionItem && !item.AssortmentCompleted {
				if item.PromocionID != nil && *item.PromocionID == promocionID {
					placeholder = item
				} else {
					pendientesRestantes++
				}
			}
		}
		if placeholder == nil {
			return apierror.NotFound("el pedido no tiene surtido pendiente para esta promocion")
		}

		// Replace placeholder with concrete free items
		if err := s.pedidoRepo.DeleteItem(ctx, tx, placeholder.ID); err != nil {
			return err
		}
		promoID := promocionID
		items := make([]model.PedidoItem, 0, len(lineas))
		for _, l := range lineas {
			items = append(items, model.PedidoItem{
				PedidoID:            pedido.ID,
				ProductoID:          l.productoID,
				Cantidad:            l.cantidad,
				PrecioUnit:          decimal.Zero,
				Subtotal:            decimal.Zero,
				IsFreeItem:          true,
				AssortmentCompleted: true,
				PromocionID:         &promoID,
			})
		}
		if err := s.pedidoRepo.CreateItems(ctx, tx, items); err != nil {
			return err
		}

		// No other placeholder pending → the order is ready to confirm
		if pendientesRestantes == 0 {
			return s.pedidoRepo.UpdateEstado(ctx, tx, pedido.ID, model.PedidoConfirmado)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	pedido, err := s.pedidoRepo.FindByID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.Internal("no se pudo recargar el pedido")
	}
	descuentos, err := s.descuentoRepo.FindByPedidoID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar descuentos")
	}
	resp := pedidoToResponse(pedido, calcularTotalEfectivo(pedido.Total, descuentos))
	return &resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseFecha(s string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func promocionToResponse(p *model.Promocion, now time.Time) dto.PromocionResponse {
	gifts := make([]dto.GiftItemResponse, 0, len(p.GiftItems))
	for _, gi := range p.GiftItems {
		var nombre *string
		if gi.Producto != nil {
			n := gi.Producto.Nombre
			nombre = &n
		}
		gifts = append(gifts, dto.GiftItemResponse{
			ProductID: gi.ProductoID.String(),
			Producto:  nombre,
			Quantity:  gi.Cantidad,
		})
	}
	var validFrom, validUntil *string
	if p.ValidFrom != nil {
		f := p.ValidFrom.Format("2006-01-02")
		validFrom = &f
	}
	if p.ValidUntil != nil {
		f := p.ValidUntil.Format("2006-01-02")
		validUntil = &f
	}
	return dto.PromocionResponse{
		ID:                      p.ID.String(),
		Nombre:                  p.Nombre,
		Descripcion:             p.Descripcion,
		Tipo:                    p.Tipo,
		MainProductID:           p.MainProductID.String(),
		BuyQuantity:             p.BuyQuantity,
		FreeQuantity:            p.FreeQuantity,
		GiftItems:               gifts,
		PackPrice:               p.PackPrice,
		AllowStackWithDiscounts: p.AllowStackWithDiscounts,
		ValidFrom:               validFrom,
		ValidUntil:              validUntil,
		Active:                  p.Active,
		Vigente:                 p.EsVigente(now),
	}
}
