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

type PedidoService interface {
	// Crear places an order: prices the lines from the catalog, runs the
	// promotion resolver, and gates on the client's credit limit before any
	// write. VENDEDOR or ADMIN.
	Crear(ctx context.Context, actor model.Actor, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	List(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	CambiarEstado(ctx context.Context, actor model.Actor, id uuid.UUID, estado string) (*dto.PedidoResponse, error)
	// Cancelar cancels an order at any point before COMPLETADO.
	Cancelar(ctx context.Context, actor model.Actor, id uuid.UUID) error
	// MarcarItemSinStock flags one line as out of stock with an optional
	// restock estimate. EMPACADOR or ADMIN.
	MarcarItemSinStock(ctx context.Context, actor model.Actor, pedidoID, itemID uuid.UUID, req dto.MarcarSinStockRequest) error
}

type pedidoService struct {
	repo          repository.PedidoRepository
	productoRepo  repository.ProductoRepository
	clienteRepo   repository.ClienteRepository
	descuentoRepo repository.DescuentoRepository
	promociones   PromocionService
	saldos        SaldoService
	dispatcher    *worker.Dispatcher
}

func NewPedidoService(
	repo repository.PedidoRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	descuentoRepo repository.DescuentoRepository,
	promociones PromocionService,
	saldos SaldoService,
	dispatcher *worker.Dispatcher,
) PedidoService {
	return &pedidoService{
		repo:          repo,
		productoRepo:  productoRepo,
		clienteRepo:   clienteRepo,
		descuentoRepo: descuentoRepo,
		promociones:   promociones,
		saldos:        saldos,
		dispatcher:    dispatcher,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// Flow:
//  1. Resolve client and products, price each line from the catalog
//  2. Promotion resolver pass — may add free items, reprice a PACK bundle
//     at packPrice, or leave a pending placeholder
//  3. Credit-limit gate on the adjusted total (pre-flight, outside TX)
//  4. BEGIN TX: create pedido + items
//  5. (async) dispatch order_created notification

func (s *pedidoService) Crear(ctx context.Context, actor model.Actor, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	if !actor.Es(model.RolVendedor, model.RolAdmin) {
		return nil, apierror.Authorization("solo VENDEDOR o ADMIN pueden crear pedidos")
	}

	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, apierror.Validation("clientId invalido")
	}
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return nil, apierror.NotFound("cliente no encontrado")
	}

	// 1. Price lines from the catalog
	type resolvedItem struct {
		productoID uuid.UUID
		nombre     string
		precio     decimal.Decimal
		cantidad   int
		subtotal   decimal.Decimal
	}
	var resolved []resolvedItem
	var lineas []LineaCarrito
	total := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.Validation("productId invalido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apierror.NotFound(fmt.Sprintf("producto %s no encontrado", item.ProductID))
		}
		if !p.Activo {
			return nil, apierror.Validation(fmt.Sprintf("el producto %s esta inactivo", p.Nombre))
		}
		subtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedItem{
			productoID: pid,
			nombre:     p.Nombre,
			precio:     p.Precio,
			cantidad:   item.Quantity,
			subtotal:   subtotal,
		})
		lineas = append(lineas, LineaCarrito{ProductoID: pid, Cantidad: item.Quantity})
	}

	// 2. Promotion resolver
	resolucion, err := s.promociones.Resolver(ctx, lineas, time.Now())
	if err != nil {
		return nil, err
	}

	// PACK bundles sell at packPrice: replace the catalog subtotal of the
	// covered units on the first line that holds the whole bundle
	for _, aj := range resolucion.AjustesPack {
		for i := range resolved {
			r := &resolved[i]
			if r.productoID != aj.ProductoID || r.cantidad < aj.Cantidad {
				continue
			}
			delta := r.precio.Mul(decimal.NewFromInt(int64(aj.Cantidad))).Sub(aj.PackPrice)
			r.subtotal = r.subtotal.Sub(delta)
			total = total.Sub(delta)
			break
		}
	}

	// 3. Credit gate on the adjusted total, before anything is written
	if err := s.saldos.VerificarCredito(ctx, clienteID, total); err != nil {
		return nil, err
	}

	estado := model.PedidoPendiente
	if resolucion.PendienteSurtido {
		estado = model.PedidoPendientePromocion
	}

	pedido := model.Pedido{
		ClienteID: clienteID,
		UsuarioID: actor.ID,
		Total:     total,
		Estado:    estado,
		Notas:     req.Notas,
	}
	for _, r := range resolved {
		pedido.Items = append(pedido.Items, model.PedidoItem{
			ProductoID:          r.productoID,
			Cantidad:            r.cantidad,
			PrecioUnit:          r.precio,
			Subtotal:            r.subtotal,
			AssortmentCompleted: true,
		})
	}
	pedido.Items = append(pedido.Items, resolucion.Items...)

	// 4. ACID transaction
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, &pedido)
	})
	if txErr != nil {
		return nil, apierror.Internal("no se pudo crear el pedido")
	}

	// 5. Async order_created event (best-effort — fire & forget)
	if s.dispatcher != nil {
		pid := pedido.ID.String()
		payload := fmt.Sprintf(`{"orderId":%q,"clientId":%q,"total":%q}`,
			pid, clienteID.String(), total.StringFixed(2))
		_ = s.dispatcher.EnqueueNotificacion(ctx, worker.NotifJobPayload{
			Evento:   "order_created",
			PedidoID: &pid,
			Payload:  []byte(payload),
		})
	}

	return s.Get(ctx, pedido.ID)
}

func (s *pedidoService) Get(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("pedido no encontrado")
	}
	descuentos, err := s.descuentoRepo.FindByPedidoID(ctx, id)
	if err != nil {
		return nil, apierror.Internal("no se pudo consultar descuentos")
	}
	resp := pedidoToResponse(pedido, calcularTotalEfectivo(pedido.Total, descuentos))
	return &resp, nil
}

func (s *pedidoService) List(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	pedidos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal("no se pudo listar pedidos")
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		p := &pedidos[i]
		descuentos, err := s.descuentoRepo.FindByPedidoID(ctx, p.ID)
		if err != nil {
			return nil, apierror.Internal("no se pudo consultar descuentos")
		}
		data = append(data, pedidoToResponse(p, calcularTotalEfectivo(p.Total, descuentos)))
	}
	return &dto.PedidoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// transicionValida encodes the order lifecycle. An order waiting for
// assortment completion can only be cancelled — confirmation happens through
// CompletarSurtido, never directly.
func transicionValida(desde, hacia string) bool {
	switch hacia {
	case model.PedidoConfirmado:
		return desde == model.PedidoPendiente
	case model.PedidoCompletado:
		return desde == model.PedidoConfirmado
	case model.PedidoCancelado:
		return desde != model.PedidoCompletado && desde != model.PedidoCancelado
	default:
		return false
	}
}

func (s *pedidoService) CambiarEstado(ctx context.Context, actor model.Actor, id uuid.UUID, estado string) (*dto.PedidoResponse, error) {
	switch estado {
	case model.PedidoConfirmado:
		if !actor.Es(model.RolAdmin, model.RolOwner, model.RolVendedor) {
			return nil, apierror.Authorization("permisos insuficientes para confirmar pedidos")
		}
	case model.PedidoCompletado:
		if !actor.Es(model.RolAdmin, model.RolOwner, model.RolEmpacador) {
			return nil, apierror.Authorization("permisos insuficientes para completar pedidos")
		}
	case model.PedidoCancelado:
		if !actor.Es(model.RolAdmin, model.RolOwner) {
			return nil, apierror.Authorization("permisos insuficientes para cancelar pedidos")
		}
	default:
		return nil, apierror.Validation("estado destino desconocido")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.repo.FindByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			return apierror.NotFound("pedido no encontrado")
		}
		if !transicionValida(pedido.Estado, estado) {
			return apierror.Conflict(fmt.Sprintf("transicion invalida de %s a %s", pedido.Estado, estado))
		}
		return s.repo.UpdateEstado(ctx, tx, id, estado)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.dispatcher != nil {
		pid := id.String()
		payload := fmt.Sprintf(`{"orderId":%q,"estado":%q}`, pid, estado)
		_ = s.dispatcher.EnqueueNotificacion(ctx, worker.NotifJobPayload{
			Evento:   "order_status_changed",
			PedidoID: &pid,
			Payload:  []byte(payload),
		})
	}

	return s.Get(ctx, id)
}

func (s *pedidoService) Cancelar(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	_, err := s.CambiarEstado(ctx, actor, id, model.PedidoCancelado)
	return err
}

func (s *pedidoService) MarcarItemSinStock(ctx context.Context, actor model.Actor, pedidoID, itemID uuid.UUID, req dto.MarcarSinStockRequest) error {
	if !actor.Es(model.RolEmpacador, model.RolAdmin) {
		return apierror.Authorization("solo EMPACADOR o ADMIN pueden marcar faltantes")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.repo.FindByIDForUpdateTx(ctx, tx, pedidoID)
		if err != nil {
			return apierror.NotFound("pedido no encontrado")
		}
		var item *model.PedidoItem
		for i := range pedido.Items {
			if pedido.Items[i].ID == itemID {
				item = &pedido.Items[i]
				break
			}
		}
		if item == nil {
			return apierror.NotFound("item no encontrado en el pedido")
		}

		item.OutOfStock = req.OutOfStock
		item.EstimatedArrivalDate = nil
		item.EstimatedArrivalNote = nil
		if req.OutOfStock {
			if req.EstimatedArrivalDate != nil {
				t, err := time.Parse("2006-01-02", *req.EstimatedArrivalDate)
				if err != nil {
					return apierror.Validation("estimatedArrivalDate invalido")
				}
				item.EstimatedArrivalDate = &t
			}
			item.EstimatedArrivalNote = req.EstimatedArrivalNote
		}
		return s.repo.UpdateItem(ctx, tx, item)
	})
}

func pedidoToResponse(p *model.Pedido, totalEfectivo decimal.Decimal) dto.PedidoResponse {
	items := make([]dto.ItemPedidoResponse, 0, len(p.Items))
	for _, item := range p.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		var promoID *string
		if item.PromocionID != nil {
			id := item.PromocionID.String()
			promoID = &id
		}
		var arrival *string
		if item.EstimatedArrivalDate != nil {
			a := item.EstimatedArrivalDate.Format("2006-01-02")
			arrival = &a
		}
		items = append(items, dto.ItemPedidoResponse{
			ID:                   item.ID.String(),
			ProductID:            item.ProductoID.String(),
			Producto:             nombre,
			Quantity:             item.Cantidad,
			UnitPrice:            item.PrecioUnit,
			Subtotal:             item.Subtotal,
			IsPromotionItem:      item.IsPromotionItem,
			IsFreeItem:           item.IsFreeItem,
			AssortmentCompleted:  item.AssortmentCompleted,
			PromotionID:          promoID,
			OutOfStock:           item.OutOfStock,
			EstimatedArrivalDate: arrival,
			EstimatedArrivalNote: item.EstimatedArrivalNote,
		})
	}
	clienteNombre := ""
	if p.Cliente != nil {
		clienteNombre = p.Cliente.Nombre
	}
	return dto.PedidoResponse{
		ID:             p.ID.String(),
		ClienteID:      p.ClienteID.String(),
		Cliente:        clienteNombre,
		Items:          items,
		Total:          p.Total,
		EffectiveTotal: totalEfectivo.Round(2),
		Estado:         p.Estado,
		Notas:          p.Notas,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}
