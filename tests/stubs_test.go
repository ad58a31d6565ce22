package tests

import (
	"context"
	"errors"
	"sort"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory stubs of the repository interfaces. Services receive a nil
// *gorm.DB, so runTx calls the closure directly with tx == nil and every
// stub ignores the tx argument.

// ── Producto ──────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var out []model.Producto
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func seedProducto(r *stubProductoRepo, nombre string, precio float64, stock int) *model.Producto {
	p := &model.Producto{
		ID:     uuid.New(),
		Nombre: nombre,
		Precio: decimal.NewFromFloat(precio),
		Stock:  stock,
		Activo: true,
	}
	r.productos[p.ID] = p
	return p
}

// ── Tag ───────────────────────────────────────────────────────────────────────

type stubTagRepo struct {
	tags map[uuid.UUID]*model.Tag
}

func newStubTagRepo() *stubTagRepo {
	return &stubTagRepo{tags: make(map[uuid.UUID]*model.Tag)}
}

func (r *stubTagRepo) Create(_ context.Context, t *model.Tag) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tags[t.ID] = t
	return nil
}

func (r *stubTagRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Tag, error) {
	t, ok := r.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTagRepo) FindByNombre(_ context.Context, nombre string) (*model.Tag, error) {
	for _, t := range r.tags {
		if t.Nombre == nombre {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTagRepo) FindSistemaSR(_ context.Context) (*model.Tag, error) {
	for _, t := range r.tags {
		if t.Tipo == model.TagSistema && t.Nombre == model.TagNombreSR {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTagRepo) List(_ context.Context) ([]model.Tag, error) {
	out := make([]model.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubTagRepo) Update(_ context.Context, t *model.Tag) error {
	r.tags[t.ID] = t
	return nil
}

func (r *stubTagRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tags, id)
	return nil
}

var _ repository.TagRepository = (*stubTagRepo)(nil)

func seedTag(r *stubTagRepo, nombre, tipo string) *model.Tag {
	t := &model.Tag{ID: uuid.New(), Nombre: nombre, Tipo: tipo}
	r.tags[t.ID] = t
	return t
}

// ── Cliente ───────────────────────────────────────────────────────────────────

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubClienteRepo) List(_ context.Context) ([]model.Cliente, error) {
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

func seedCliente(r *stubClienteRepo, nombre string) *model.Cliente {
	c := &model.Cliente{ID: uuid.New(), Nombre: nombre, Activo: true}
	r.clientes[c.ID] = c
	return c
}

// ── Promocion ─────────────────────────────────────────────────────────────────

type stubPromocionRepo struct {
	promos map[uuid.UUID]*model.Promocion
}

func newStubPromocionRepo() *stubPromocionRepo {
	return &stubPromocionRepo{promos: make(map[uuid.UUID]*model.Promocion)}
}

func (r *stubPromocionRepo) Create(_ context.Context, p *model.Promocion) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.GiftItems {
		if p.GiftItems[i].ID == uuid.Nil {
			p.GiftItems[i].ID = uuid.New()
		}
		p.GiftItems[i].PromocionID = p.ID
	}
	r.promos[p.ID] = p
	return nil
}

func (r *stubPromocionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promocion, error) {
	p, ok := r.promos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubPromocionRepo) List(_ context.Context) ([]model.Promocion, error) {
	out := make([]model.Promocion, 0, len(r.promos))
	for _, p := range r.promos {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPromocionRepo) ListVigentes(_ context.Context, now time.Time) ([]model.Promocion, error) {
	var out []model.Promocion
	for _, p := range r.promos {
		if p.EsVigente(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPromocionRepo) FindByMainProductIDs(_ context.Context, ids []uuid.UUID) ([]model.Promocion, error) {
	idSet := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var out []model.Promocion
	for _, p := range r.promos {
		if p.Active && idSet[p.MainProductID] {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPromocionRepo) Update(_ context.Context, p *model.Promocion) error {
	existing, ok := r.promos[p.ID]
	if !ok {
		return errors.New("not found")
	}
	gifts := existing.GiftItems
	r.promos[p.ID] = p
	if p.GiftItems == nil {
		p.GiftItems = gifts
	}
	return nil
}

func (r *stubPromocionRepo) ReplaceGiftItems(_ context.Context, promocionID uuid.UUID, items []model.PromocionGiftItem) error {
	p, ok := r.promos[promocionID]
	if !ok {
		return errors.New("not found")
	}
	p.GiftItems = items
	return nil
}

func (r *stubPromocionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.promos, id)
	return nil
}

func (r *stubPromocionRepo) DB() *gorm.DB { return nil }

var _ repository.PromocionRepository = (*stubPromocionRepo)(nil)

// ── Pedido ────────────────────────────────────────────────────────────────────

type stubPedidoRepo struct {
	pedidos map[uuid.UUID]*model.Pedido
	seq     int
}

func newStubPedidoRepo() *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido)}
}

func (r *stubPedidoRepo) nextCreatedAt() time.Time {
	r.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
}

func (r *stubPedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.nextCreatedAt()
	for i := range p.Items {
		if p.Items[i].ID == uuid.Nil {
			p.Items[i].ID = uuid.New()
		}
		p.Items[i].PedidoID = p.ID
	}
	r.pedidos[p.ID] = p
	return nil
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubPedidoRepo) FindByIDForUpdateTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubPedidoRepo) FindByClienteID(_ context.Context, clienteID uuid.UUID) ([]model.Pedido, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if p.ClienteID == clienteID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubPedidoRepo) List(_ context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if filter.ClienteID != "" && p.ClienteID.String() != filter.ClienteID {
			continue
		}
		if filter.Estado != "" && p.Estado != filter.Estado {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPedidoRepo) UpdateEstado(_ context.Context, _ *gorm.DB, id uuid.UUID, estado string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Estado = estado
	return nil
}

func (r *stubPedidoRepo) CreateItems(_ context.Context, _ *gorm.DB, items []model.PedidoItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		p, ok := r.pedidos[items[i].PedidoID]
		if !ok {
			return errors.New("pedido not found")
		}
		p.Items = append(p.Items, items[i])
	}
	return nil
}

func (r *stubPedidoRepo) UpdateItem(_ context.Context, _ *gorm.DB, item *model.PedidoItem) error {
	p, ok := r.pedidos[item.PedidoID]
	if !ok {
		return errors.New("pedido not found")
	}
	for i := range p.Items {
		if p.Items[i].ID == item.ID {
			p.Items[i] = *item
			return nil
		}
	}
	return errors.New("item not found")
}

func (r *stubPedidoRepo) DeleteItem(_ context.Context, _ *gorm.DB, itemID uuid.UUID) error {
	for _, p := range r.pedidos {
		for i := range p.Items {
			if p.Items[i].ID == itemID {
				p.Items = append(p.Items[:i], p.Items[i+1:]...)
				return nil
			}
		}
	}
	return errors.New("item not found")
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

// ── Descuento ─────────────────────────────────────────────────────────────────

type stubDescuentoRepo struct {
	ledger []*model.Descuento
	seq    int
}

func newStubDescuentoRepo() *stubDescuentoRepo { return &stubDescuentoRepo{} }

func (r *stubDescuentoRepo) Create(_ context.Context, _ *gorm.DB, d *model.Descuento) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.seq++
	d.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
	r.ledger = append(r.ledger, d)
	return nil
}

func (r *stubDescuentoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Descuento, error) {
	for _, d := range r.ledger {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubDescuentoRepo) FindByPedidoID(_ context.Context, pedidoID uuid.UUID) ([]model.Descuento, error) {
	var out []model.Descuento
	for _, d := range r.ledger {
		if d.PedidoID == pedidoID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDescuentoRepo) FindByPedidoIDTx(ctx context.Context, _ *gorm.DB, pedidoID uuid.UUID) ([]model.Descuento, error) {
	return r.FindByPedidoID(ctx, pedidoID)
}

func (r *stubDescuentoRepo) Revocar(_ context.Context, _ *gorm.DB, d *model.Descuento) error {
	for _, prev := range r.ledger {
		if prev.ID == d.ID {
			prev.Estado = d.Estado
			prev.RevokedBy = d.RevokedBy
			prev.RevokedAt = d.RevokedAt
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubDescuentoRepo) DB() *gorm.DB { return nil }

var _ repository.DescuentoRepository = (*stubDescuentoRepo)(nil)

// ── Abono ─────────────────────────────────────────────────────────────────────

type stubAbonoRepo struct {
	abonos []*model.Abono
	seq    int
}

func newStubAbonoRepo() *stubAbonoRepo { return &stubAbonoRepo{} }

func (r *stubAbonoRepo) Create(_ context.Context, _ *gorm.DB, a *model.Abono) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.seq++
	a.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
	r.abonos = append(r.abonos, a)
	return nil
}

func (r *stubAbonoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Abono, error) {
	for _, a := range r.abonos {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubAbonoRepo) FindByPedidoID(_ context.Context, pedidoID uuid.UUID) ([]model.Abono, error) {
	var out []model.Abono
	for _, a := range r.abonos {
		if a.PedidoID == pedidoID {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FechaPago.Equal(out[j].FechaPago) {
			return out[i].FechaPago.Before(out[j].FechaPago)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *stubAbonoRepo) FindByPedidoIDTx(ctx context.Context, _ *gorm.DB, pedidoID uuid.UUID) ([]model.Abono, error) {
	return r.FindByPedidoID(ctx, pedidoID)
}

func (r *stubAbonoRepo) FindByPedidoIDs(ctx context.Context, pedidoIDs []uuid.UUID) ([]model.Abono, error) {
	var out []model.Abono
	for _, id := range pedidoIDs {
		abonos, _ := r.FindByPedidoID(ctx, id)
		out = append(out, abonos...)
	}
	return out, nil
}

func (r *stubAbonoRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	for i, a := range r.abonos {
		if a.ID == id {
			r.abonos = append(r.abonos[:i], r.abonos[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubAbonoRepo) DB() *gorm.DB { return nil }

var _ repository.AbonoRepository = (*stubAbonoRepo)(nil)

// ── Saldo ─────────────────────────────────────────────────────────────────────

type stubSaldoRepo struct {
	saldos map[uuid.UUID]*model.SaldoCliente
}

func newStubSaldoRepo() *stubSaldoRepo {
	return &stubSaldoRepo{saldos: make(map[uuid.UUID]*model.SaldoCliente)}
}

func (r *stubSaldoRepo) FindByClienteID(_ context.Context, clienteID uuid.UUID) (*model.SaldoCliente, error) {
	s, ok := r.saldos[clienteID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaldoRepo) FindOrCreate(_ context.Context, clienteID uuid.UUID) (*model.SaldoCliente, error) {
	if s, ok := r.saldos[clienteID]; ok {
		return s, nil
	}
	s := &model.SaldoCliente{ID: uuid.New(), ClienteID: clienteID}
	r.saldos[clienteID] = s
	return s, nil
}

func (r *stubSaldoRepo) Update(_ context.Context, s *model.SaldoCliente) error {
	r.saldos[s.ClienteID] = s
	return nil
}

func (r *stubSaldoRepo) DB() *gorm.DB { return nil }

var _ repository.SaldoRepository = (*stubSaldoRepo)(nil)

// ── Usuario ───────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	out := make([]model.Usuario, 0, len(r.usuarios))
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return errors.New("not found")
	}
	u.Activo = false
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Actors ────────────────────────────────────────────────────────────────────

func actorAdmin() model.Actor     { return model.Actor{ID: uuid.New(), Rol: model.RolAdmin} }
func actorOwner() model.Actor     { return model.Actor{ID: uuid.New(), Rol: model.RolOwner} }
func actorVendedor() model.Actor  { return model.Actor{ID: uuid.New(), Rol: model.RolVendedor} }
func actorEmpacador() model.Actor { return model.Actor{ID: uuid.New(), Rol: model.RolEmpacador} }
