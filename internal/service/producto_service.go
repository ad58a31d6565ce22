package service

import (
	"context"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductoService interface {
	Crear(ctx context.Context, actor model.Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, actor model.Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	List(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
}

type productoService struct {
	repo    repository.ProductoRepository
	tagRepo repository.TagRepository
}

func NewProductoService(repo repository.ProductoRepository, tagRepo repository.TagRepository) ProductoService {
	return &productoService{repo: repo, tagRepo: tagRepo}
}

// resolverTag validates the optional tagId of a product request.
func (s *productoService) resolverTag(ctx context.Context, raw string) (*uuid.UUID, error) {
	tid, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierror.Validation("tagId invalido")
	}
	if _, err := s.tagRepo.FindByID(ctx, tid); err != nil {
		return nil, apierror.NotFound("etiqueta no encontrada")
	}
	return &tid, nil
}

func (s *productoService) Crear(ctx context.Context, actor model.Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede crear productos")
	}
	if req.Precio.LessThanOrEqual(decimal.Zero) {
		return nil, apierror.Validation("el precio debe ser mayor a cero")
	}
	p := &model.Producto{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Activo:      true,
	}
	if req.TagID != nil {
		tid, err := s.resolverTag(ctx, *req.TagID)
		if err != nil {
			return nil, err
		}
		p.TagID = tid
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apierror.Internal("no se pudo crear el producto")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Actualizar(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if !actor.Es(model.RolAdmin) {
		return nil, apierror.Authorization("solo ADMIN puede modificar productos")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("producto no encontrado")
	}
	if req.Nombre != "" {
		p.Nombre = req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Precio != nil {
		if req.Precio.LessThanOrEqual(decimal.Zero) {
			return nil, apierror.Validation("el precio debe ser mayor a cero")
		}
		p.Precio = *req.Precio
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apierror.Validation("el stock no puede ser negativo")
		}
		p.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.TagID != nil {
		if *req.TagID == "" {
			p.TagID = nil
		} else {
			tid, err := s.resolverTag(ctx, *req.TagID)
			if err != nil {
				return nil, err
			}
			p.TagID = tid
		}
	}
	p.Tag = nil // avoid re-saving the loaded association
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apierror.Internal("no se pudo actualizar el producto")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Eliminar(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.Es(model.RolAdmin) {
		return apierror.Authorization("solo ADMIN puede eliminar productos")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("producto no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("producto no encontrado")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) List(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal("no se pudo listar productos")
	}
	data := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		data[i] = productoToResponse(&productos[i])
	}
	return &dto.ProductoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	var tagID, tagNombre *string
	if p.TagID != nil {
		id := p.TagID.String()
		tagID = &id
	}
	if p.Tag != nil {
		n := p.Tag.Nombre
		tagNombre = &n
	}
	return dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		TagID:       tagID,
		Tag:         tagNombre,
		Activo:      p.Activo,
	}
}
