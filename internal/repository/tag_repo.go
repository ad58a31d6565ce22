package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tag, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Tag, error)
	// FindSistemaSR returns the seeded S/R system tag.
	FindSistemaSR(ctx context.Context) (*model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Update(ctx context.Context, t *model.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type tagRepo struct{ db *gorm.DB }

func NewTagRepository(db *gorm.DB) TagRepository { return &tagRepo{db: db} }

func (r *tagRepo) Create(ctx context.Context, t *model.Tag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tagRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tag, error) {
	var t model.Tag
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *tagRepo) FindByNombre(ctx context.Context, nombre string) (*model.Tag, error) {
	var t model.Tag
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&t).Error
	return &t, err
}

func (r *tagRepo) FindSistemaSR(ctx context.Context) (*model.Tag, error) {
	var t model.Tag
	err := r.db.WithContext(ctx).
		Where("tipo = ? AND nombre = ?", model.TagSistema, model.TagNombreSR).
		First(&t).Error
	return &t, err
}

func (r *tagRepo) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("tipo DESC, nombre ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepo) Update(ctx context.Context, t *model.Tag) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *tagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Tag{}, id).Error
}
