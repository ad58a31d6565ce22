package service

import (
	"context"
	"errors"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagService manages product tags. SYSTEM tags (the seeded S/R tag) are
// read-only: any attempt to rename or delete one is a conflict.
type TagService interface {
	Crear(ctx context.Context, actor model.Actor, req dto.CrearTagRequest) (*dto.TagResponse, error)
	Actualizar(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.ActualizarTagRequest) (*dto.TagResponse, error)
	Eliminar(ctx context.Context, actor model.Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.TagResponse, error)
	GetSistemaSR(ctx context.Context) (*dto.TagResponse, error)
	List(ctx context.Context) (*dto.TagListResponse, error)
}

type tagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) Crear(ctx context.Context, actor model.Actor, req dto.CrearTagRequest) (*dto.TagResponse, error) {
	if !actor.Es(model.RolAdmin, model.RolOwner) {
		return nil, apierror.Authorization("solo ADMIN u OWNER pueden crear etiquetas")
	}
	if _, err := s.repo.FindByNombre(ctx, req.Nombre); err == nil {
		return nil, apierror.Conflict("ya existe una etiqueta con ese nombre")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Internal("no se pudo consultar etiquetas")
	}

	t := &model.Tag{Nombre: req.Nombre, Tipo: model.TagUsuario}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apierror.Internal("no se pudo crear la etiqueta")
	}
	resp := tagToResponse(t)
	return &resp, nil
}

func (s *tagService) Actualizar(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.ActualizarTagRequest) (*dto.TagResponse, error) {
	if !actor.Es(model.RolAdmin, model.RolOwner) {
		return nil, apierror.Authorization("solo ADMIN u OWNER pueden modificar etiquetas")
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("etiqueta no encontrada")
	}
	if t.EsSistema() {
		return nil, apierror.Conflict("las etiquetas del sistema no se pueden modificar")
	}
	if req.Nombre != t.Nombre {
		if _, err := s.repo.FindByNombre(ctx, req.Nombre); err == nil {
			return nil, apierror.Conflict("ya existe una etiqueta con ese nombre")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Internal("no se pudo consultar etiquetas")
		}
	}
	t.Nombre = req.Nombre
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, apierror.Internal("no se pudo actualizar la etiqueta")
	}
	resp := tagToResponse(t)
	return &resp, nil
}

func (s *tagService) Eliminar(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.Es(model.RolAdmin, model.RolOwner) {
		return apierror.Authorization("solo ADMIN u OWNER pueden eliminar etiquetas")
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("etiqueta no encontrada")
	}
	if t.EsSistema() {
		return apierror.Conflict("las etiquetas del sistema no se pueden eliminar")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal("no se pudo eliminar la etiqueta")
	}
	return nil
}

func (s *tagService) Get(ctx context.Context, id uuid.UUID) (*dto.TagResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("etiqueta no encontrada")
	}
	resp := tagToResponse(t)
	return &resp, nil
}

func (s *tagService) GetSistemaSR(ctx context.Context) (*dto.TagResponse, error) {
	t, err := s.repo.FindSistemaSR(ctx)
	if err != nil {
		return nil, apierror.NotFound("etiqueta S/R no encontrada")
	}
	resp := tagToResponse(t)
	return &resp, nil
}

func (s *tagService) List(ctx context.Context) (*dto.TagListResponse, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Internal("no se pudo listar etiquetas")
	}
	data := make([]dto.TagResponse, len(tags))
	for i := range tags {
		data[i] = tagToResponse(&tags[i])
	}
	return &dto.TagListResponse{Data: data}, nil
}

func tagToResponse(t *model.Tag) dto.TagResponse {
	return dto.TagResponse{
		ID:     t.ID.String(),
		Nombre: t.Nombre,
		Tipo:   t.Tipo,
	}
}
