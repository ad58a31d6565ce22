package repository

import (
	"context"
	"errors"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaldoRepository interface {
	// FindByClienteID returns the settings row, or gorm.ErrRecordNotFound.
	FindByClienteID(ctx context.Context, clienteID uuid.UUID) (*model.SaldoCliente, error)
	// FindOrCreate returns the settings row, creating an empty one if the
	// client has none yet.
	FindOrCreate(ctx context.Context, clienteID uuid.UUID) (*model.SaldoCliente, error)
	Update(ctx context.Context, s *model.SaldoCliente) error
	DB() *gorm.DB
}

type saldoRepo struct{ db *gorm.DB }

func NewSaldoRepository(db *gorm.DB) SaldoRepository { return &saldoRepo{db: db} }

func (r *saldoRepo) DB() *gorm.DB { return r.db }

func (r *saldoRepo) FindByClienteID(ctx context.Context, clienteID uuid.UUID) (*model.SaldoCliente, error) {
	var s model.SaldoCliente
	err := r.db.WithContext(ctx).Where("cliente_id = ?", clienteID).First(&s).Error
	return &s, err
}

func (r *saldoRepo) FindOrCreate(ctx context.Context, clienteID uuid.UUID) (*model.SaldoCliente, error) {
	s, err := r.FindByClienteID(ctx, clienteID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s = &model.SaldoCliente{ClienteID: clienteID}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *saldoRepo) Update(ctx context.Context, s *model.SaldoCliente) error {
	return r.db.WithContext(ctx).Save(s).Error
}
