package tests

import (
	"context"
	"testing"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTagSvc() (service.TagService, *stubTagRepo) {
	repo := newStubTagRepo()
	return service.NewTagService(repo), repo
}

func TestCrearTag_Ok(t *testing.T) {
	svc, _ := buildTagSvc()

	resp, err := svc.Crear(context.Background(), actorAdmin(), dto.CrearTagRequest{Nombre: "Capilar"})
	require.NoError(t, err)
	assert.Equal(t, "Capilar", resp.Nombre)
	assert.Equal(t, model.TagUsuario, resp.Tipo)
}

func TestCrearTag_NombreDuplicadoConflicto(t *testing.T) {
	svc, repo := buildTagSvc()
	seedTag(repo, "Capilar", model.TagUsuario)

	_, err := svc.Crear(context.Background(), actorOwner(), dto.CrearTagRequest{Nombre: "Capilar"})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestCrearTag_SoloAdminUOwner(t *testing.T) {
	svc, _ := buildTagSvc()

	for _, actor := range []model.Actor{actorVendedor(), actorEmpacador()} {
		_, err := svc.Crear(context.Background(), actor, dto.CrearTagRequest{Nombre: "Capilar"})
		assert.True(t, apierror.IsKind(err, apierror.KindAuthorization), "rol %s", actor.Rol)
	}
}

func TestActualizarTag_SistemaProtegida(t *testing.T) {
	svc, repo := buildTagSvc()
	sr := seedTag(repo, model.TagNombreSR, model.TagSistema)

	_, err := svc.Actualizar(context.Background(), actorAdmin(), sr.ID, dto.ActualizarTagRequest{Nombre: "Otro"})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	// The row is untouched
	stored, _ := repo.FindByID(context.Background(), sr.ID)
	assert.Equal(t, model.TagNombreSR, stored.Nombre)
}

func TestEliminarTag_SistemaProtegida(t *testing.T) {
	svc, repo := buildTagSvc()
	sr := seedTag(repo, model.TagNombreSR, model.TagSistema)

	err := svc.Eliminar(context.Background(), actorOwner(), sr.ID)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	_, findErr := repo.FindByID(context.Background(), sr.ID)
	assert.NoError(t, findErr)
}

func TestEliminarTag_UsuarioOk(t *testing.T) {
	svc, repo := buildTagSvc()
	tag := seedTag(repo, "Descontinuados", model.TagUsuario)

	require.NoError(t, svc.Eliminar(context.Background(), actorAdmin(), tag.ID))
	_, err := repo.FindByID(context.Background(), tag.ID)
	assert.Error(t, err)
}

func TestActualizarTag_RenombraUsuario(t *testing.T) {
	svc, repo := buildTagSvc()
	tag := seedTag(repo, "Capilar", model.TagUsuario)

	resp, err := svc.Actualizar(context.Background(), actorAdmin(), tag.ID, dto.ActualizarTagRequest{Nombre: "Cuidado capilar"})
	require.NoError(t, err)
	assert.Equal(t, "Cuidado capilar", resp.Nombre)
}

func TestGetSistemaSR(t *testing.T) {
	svc, repo := buildTagSvc()
	seedTag(repo, "Capilar", model.TagUsuario)
	sr := seedTag(repo, model.TagNombreSR, model.TagSistema)

	resp, err := svc.GetSistemaSR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sr.ID.String(), resp.ID)
	assert.Equal(t, model.TagSistema, resp.Tipo)
}

// ── Producto + etiqueta ───────────────────────────────────────────────────────

func buildProductoSvc() (service.ProductoService, *stubProductoRepo, *stubTagRepo) {
	productoRepo := newStubProductoRepo()
	tagRepo := newStubTagRepo()
	return service.NewProductoService(productoRepo, tagRepo), productoRepo, tagRepo
}

func TestCrearProducto_ConEtiqueta(t *testing.T) {
	svc, _, tagRepo := buildProductoSvc()
	sr := seedTag(tagRepo, model.TagNombreSR, model.TagSistema)
	tagID := sr.ID.String()

	resp, err := svc.Crear(context.Background(), actorAdmin(), dto.CrearProductoRequest{
		Nombre: "Shampoo 1L",
		Precio: decimal.NewFromInt(50),
		Stock:  10,
		TagID:  &tagID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.TagID)
	assert.Equal(t, tagID, *resp.TagID)
}

func TestCrearProducto_EtiquetaInexistente(t *testing.T) {
	svc, _, _ := buildProductoSvc()
	tagID := "6b1f8c1e-0000-4000-8000-000000000000"

	_, err := svc.Crear(context.Background(), actorAdmin(), dto.CrearProductoRequest{
		Nombre: "Shampoo 1L",
		Precio: decimal.NewFromInt(50),
		TagID:  &tagID,
	})
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestActualizarProducto_QuitaEtiqueta(t *testing.T) {
	svc, productoRepo, tagRepo := buildProductoSvc()
	tag := seedTag(tagRepo, "Capilar", model.TagUsuario)
	p := seedProducto(productoRepo, "Shampoo 1L", 50, 10)
	tid := tag.ID
	p.TagID = &tid

	vacio := ""
	resp, err := svc.Actualizar(context.Background(), actorAdmin(), p.ID, dto.ActualizarProductoRequest{
		TagID: &vacio,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.TagID)
}
