package repository

import (
	"context"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	// FindByIDForUpdateTx locks the order row for the duration of tx. All
	// per-order mutations (discounts, assortment, status) go through this
	// lock to serialize concurrent writers.
	FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Pedido, error)
	FindByClienteID(ctx context.Context, clienteID uuid.UUID) ([]model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	UpdateEstado(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []model.PedidoItem) error
	UpdateItem(ctx context.Context, tx *gorm.DB, item *model.PedidoItem) error
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).Preload("Items.Producto").Preload("Cliente").First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) FindByClienteID(ctx context.Context, clienteID uuid.UUID) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).Preload("Items").
		Where("cliente_id = ?", clienteID).
		Order("created_at ASC").Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})

	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Producto").Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&pedidos).Error

	return pedidos, total, err
}

func (r *pedidoRepo) UpdateEstado(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *pedidoRepo) CreateItems(ctx context.Context, tx *gorm.DB, items []model.PedidoItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *pedidoRepo) UpdateItem(ctx context.Context, tx *gorm.DB, item *model.PedidoItem) error {
	return tx.WithContext(ctx).Save(item).Error
}

func (r *pedidoRepo) DeleteItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.PedidoItem{}, itemID).Error
}
