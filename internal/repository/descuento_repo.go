package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DescuentoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, d *model.Descuento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Descuento, error)
	// FindByPedidoID returns the full ledger, oldest first.
	FindByPedidoID(ctx context.Context, pedidoID uuid.UUID) ([]model.Descuento, error)
	FindByPedidoIDTx(ctx context.Context, tx *gorm.DB, pedidoID uuid.UUID) ([]model.Descuento, error)
	// Revocar flips APPLIED → REVOKED. Rows are never deleted.
	Revocar(ctx context.Context, tx *gorm.DB, d *model.Descuento) error
	DB() *gorm.DB
}

type descuentoRepo struct{ db *gorm.DB }

func NewDescuentoRepository(db *gorm.DB) DescuentoRepository { return &descuentoRepo{db: db} }

func (r *descuentoRepo) DB() *gorm.DB { return r.db }

func (r *descuentoRepo) Create(ctx context.Context, tx *gorm.DB, d *model.Descuento) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *descuentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Descuento, error) {
	var d model.Descuento
	err := r.db.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *descuentoRepo) FindByPedidoID(ctx context.Context, pedidoID uuid.UUID) ([]model.Descuento, error) {
	return r.findByPedidoID(ctx, r.db, pedidoID)
}

func (r *descuentoRepo) FindByPedidoIDTx(ctx context.Context, tx *gorm.DB, pedidoID uuid.UUID) ([]model.Descuento, error) {
	return r.findByPedidoID(ctx, tx, pedidoID)
}

func (r *descuentoRepo) findByPedidoID(ctx context.Context, db *gorm.DB, pedidoID uuid.UUID) ([]model.Descuento, error) {
	var descuentos []model.Descuento
	err := db.WithContext(ctx).Where("pedido_id = ?", pedidoID).
		Order("created_at ASC").Find(&descuentos).Error
	return descuentos, err
}

func (r *descuentoRepo) Revocar(ctx context.Context, tx *gorm.DB, d *model.Descuento) error {
	return tx.WithContext(ctx).Model(d).Updates(map[string]interface{}{
		"estado":     d.Estado,
		"revoked_by": d.RevokedBy,
		"revoked_at": d.RevokedAt,
	}).Error
}
