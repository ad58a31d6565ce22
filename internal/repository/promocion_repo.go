package repository

import (
	"context"
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromocionRepository interface {
	Create(ctx context.Context, p *model.Promocion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error)
	List(ctx context.Context) ([]model.Promocion, error)
	// ListVigentes returns active promotions whose validity window contains now.
	ListVigentes(ctx context.Context, now time.Time) ([]model.Promocion, error)
	// FindByMainProductIDs returns active promotions keyed on any of the given
	// products; the resolver filters by validity window in memory.
	FindByMainProductIDs(ctx context.Context, ids []uuid.UUID) ([]model.Promocion, error)
	Update(ctx context.Context, p *model.Promocion) error
	ReplaceGiftItems(ctx context.Context, promocionID uuid.UUID, items []model.PromocionGiftItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type promocionRepo struct{ db *gorm.DB }

func NewPromocionRepository(db *gorm.DB) PromocionRepository { return &promocionRepo{db: db} }

func (r *promocionRepo) DB() *gorm.DB { return r.db }

func (r *promocionRepo) Create(ctx context.Context, p *model.Promocion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promocionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error) {
	var p model.Promocion
	err := r.db.WithContext(ctx).Preload("GiftItems.Producto").Preload("MainProduct").First(&p, id).Error
	return &p, err
}

func (r *promocionRepo) List(ctx context.Context) ([]model.Promocion, error) {
	var promos []model.Promocion
	err := r.db.WithContext(ctx).Preload("GiftItems.Producto").Preload("MainProduct").
		Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promocionRepo) ListVigentes(ctx context.Context, now time.Time) ([]model.Promocion, error) {
	var promos []model.Promocion
	err := r.db.WithContext(ctx).Preload("GiftItems.Producto").Preload("MainProduct").
		Where("active = true").
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promocionRepo) FindByMainProductIDs(ctx context.Context, ids []uuid.UUID) ([]model.Promocion, error) {
	var promos []model.Promocion
	err := r.db.WithContext(ctx).Preload("GiftItems").
		Where("main_product_id IN ? AND active = true", ids).
		Find(&promos).Error
	return promos, err
}

func (r *promocionRepo) Update(ctx context.Context, p *model.Promocion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *promocionRepo) ReplaceGiftItems(ctx context.Context, promocionID uuid.UUID, items []model.PromocionGiftItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promocion_id = ?", promocionID).Delete(&model.PromocionGiftItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *promocionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promocion_id = ?", id).Delete(&model.PromocionGiftItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Promocion{}, id).Error
	})
}
