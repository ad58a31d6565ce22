package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AbonoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, a *model.Abono) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Abono, error)
	// FindByPedidoID returns the payment ledger in chronological order.
	FindByPedidoID(ctx context.Context, pedidoID uuid.UUID) ([]model.Abono, error)
	FindByPedidoIDTx(ctx context.Context, tx *gorm.DB, pedidoID uuid.UUID) ([]model.Abono, error)
	FindByPedidoIDs(ctx context.Context, pedidoIDs []uuid.UUID) ([]model.Abono, error)
	// Delete removes a payment permanently; settlement totals self-heal
	// because they are always recomputed from the remaining rows.
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type abonoRepo struct{ db *gorm.DB }

func NewAbonoRepository(db *gorm.DB) AbonoRepository { return &abonoRepo{db: db} }

func (r *abonoRepo) DB() *gorm.DB { return r.db }

func (r *abonoRepo) Create(ctx context.Context, tx *gorm.DB, a *model.Abono) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *abonoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Abono, error) {
	var a model.Abono
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *abonoRepo) FindByPedidoID(ctx context.Context, pedidoID uuid.UUID) ([]model.Abono, error) {
	return r.findByPedidoID(ctx, r.db, pedidoID)
}

func (r *abonoRepo) FindByPedidoIDTx(ctx context.Context, tx *gorm.DB, pedidoID uuid.UUID) ([]model.Abono, error) {
	return r.findByPedidoID(ctx, tx, pedidoID)
}

func (r *abonoRepo) findByPedidoID(ctx context.Context, db *gorm.DB, pedidoID uuid.UUID) ([]model.Abono, error) {
	var abonos []model.Abono
	err := db.WithContext(ctx).Where("pedido_id = ?", pedidoID).
		Order("fecha_pago ASC, created_at ASC").Find(&abonos).Error
	return abonos, err
}

func (r *abonoRepo) FindByPedidoIDs(ctx context.Context, pedidoIDs []uuid.UUID) ([]model.Abono, error) {
	var abonos []model.Abono
	if len(pedidoIDs) == 0 {
		return abonos, nil
	}
	err := r.db.WithContext(ctx).Where("pedido_id IN ?", pedidoIDs).
		Order("fecha_pago ASC, created_at ASC").Find(&abonos).Error
	return abonos, err
}

func (r *abonoRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.Abono{}, id).Error
}
