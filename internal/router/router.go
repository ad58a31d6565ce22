package router

import (
	"time"

	"vitalexa/internal/config"
	"vitalexa/internal/handler"
	"vitalexa/internal/middleware"
	"vitalexa/internal/repository"
	"vitalexa/internal/service"
	"vitalexa/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	tagRepo := repository.NewTagRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	promocionRepo := repository.NewPromocionRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	descuentoRepo := repository.NewDescuentoRepository(db)
	abonoRepo := repository.NewAbonoRepository(db)
	saldoRepo := repository.NewSaldoRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, tagRepo)
	tagSvc := service.NewTagService(tagRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	promocionSvc := service.NewPromocionService(promocionRepo, productoRepo, pedidoRepo, descuentoRepo)
	descuentoSvc := service.NewDescuentoService(descuentoRepo, pedidoRepo, promocionRepo)
	abonoSvc := service.NewAbonoService(abonoRepo, pedidoRepo, descuentoRepo, clienteRepo, dispatcher)
	saldoSvc := service.NewSaldoService(saldoRepo, clienteRepo, pedidoRepo, descuentoRepo, abonoRepo)
	pedidoSvc := service.NewPedidoService(pedidoRepo, productoRepo, clienteRepo, descuentoRepo, promocionSvc, saldoSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	tagsH := handler.NewTagsHandler(tagSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	promocionesH := handler.NewPromocionesHandler(promocionSvc, rdb)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	descuentosH := handler.NewDescuentosHandler(descuentoSvc)
	abonosH := handler.NewAbonosHandler(abonoSvc)
	saldosH := handler.NewSaldosHandler(saldoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Usuarios — ADMIN only
		usuarios := v1.Group("/auth/usuarios", middleware.RequireRole("ADMIN"))
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
		}

		// Catalog — every authenticated role can read
		v1.GET("/products", productosH.List)
		v1.GET("/products/:id", productosH.Get)

		adminProds := v1.Group("/admin/products", middleware.RequireRole("ADMIN"))
		{
			adminProds.POST("", productosH.Crear)
			adminProds.PUT("/:id", productosH.Actualizar)
			adminProds.DELETE("/:id", productosH.Eliminar)
		}

		// Etiquetas de producto — every role reads, ADMIN y OWNER manage.
		// SYSTEM tags (S/R) are seeded and protected at the service layer.
		tags := v1.Group("/tags")
		{
			tags.GET("", tagsH.List)
			tags.GET("/system/sr", tagsH.GetSistemaSR)
			tags.GET("/:id", tagsH.Get)

			tagsAdmin := tags.Group("", middleware.RequireRole("ADMIN", "OWNER"))
			{
				tagsAdmin.POST("", tagsH.Crear)
				tagsAdmin.PUT("/:id", tagsH.Actualizar)
				tagsAdmin.DELETE("/:id", tagsH.Eliminar)
			}
		}

		// Clientes
		v1.GET("/clients", middleware.RequireRole("ADMIN", "OWNER", "VENDEDOR"), clientesH.List)
		v1.GET("/clients/:id", middleware.RequireRole("ADMIN", "OWNER", "VENDEDOR"), clientesH.Get)
		v1.POST("/admin/clients", middleware.RequireRole("ADMIN", "OWNER"), clientesH.Crear)

		// Promociones — ADMIN manages, VENDEDOR sees only what is live
		adminPromos := v1.Group("/admin/promotions", middleware.RequireRole("ADMIN"))
		{
			adminPromos.POST("", promocionesH.Crear)
			adminPromos.GET("", promocionesH.List)
			adminPromos.GET("/:id", promocionesH.Get)
			adminPromos.PUT("/:id", promocionesH.Actualizar)
			adminPromos.PATCH("/:id/status", promocionesH.CambiarEstado)
			adminPromos.DELETE("/:id", promocionesH.Eliminar)
		}
		v1.GET("/vendedor/promotions", middleware.RequireRole("ADMIN", "VENDEDOR"), promocionesH.ListVigentes)

		// Assortment completion of a BUY_GET_FREE placeholder — ADMIN only
		v1.POST("/admin/orders/:orderId/promotions/:promotionId/assortment",
			middleware.RequireRole("ADMIN"), promocionesH.CompletarSurtido)

		// Pedidos
		v1.POST("/orders", middleware.RequireRole("VENDEDOR", "ADMIN"), pedidosH.Crear)
		v1.GET("/orders", pedidosH.List)
		v1.GET("/orders/:id", pedidosH.Get)
		v1.PUT("/orders/:id/status", pedidosH.CambiarEstado)
		v1.DELETE("/orders/:id", middleware.RequireRole("ADMIN", "OWNER"), pedidosH.Cancelar)
		v1.PATCH("/orders/:id/items/:itemId/out-of-stock",
			middleware.RequireRole("EMPACADOR", "ADMIN"), pedidosH.MarcarItemSinStock)

		// Descuentos — ADMIN applies, OWNER adds with reason and revokes
		adminDesc := v1.Group("/admin/discounts", middleware.RequireRole("ADMIN", "OWNER"))
		{
			adminDesc.POST("/order/:orderId/apply-10", descuentosH.AplicarDiez)
			adminDesc.POST("/order/:orderId/apply-12", descuentosH.AplicarDoce)
			adminDesc.POST("/order/:orderId/apply-15", descuentosH.AplicarQuince)
			adminDesc.POST("/custom", descuentosH.AplicarCustom)
			adminDesc.GET("/order/:orderId", descuentosH.ListarPorPedido)
		}
		ownerDesc := v1.Group("/owner/discounts", middleware.RequireRole("OWNER"))
		{
			ownerDesc.POST("", descuentosH.AgregarOwner)
			ownerDesc.PUT("/:id/revoke", descuentosH.Revocar)
		}

		// Abonos — OWNER only
		ownerPagos := v1.Group("/owner/payments", middleware.RequireRole("OWNER"))
		{
			ownerPagos.POST("", abonosH.Registrar)
			ownerPagos.GET("/order/:orderId", abonosH.ListarPorPedido)
			ownerPagos.DELETE("/:id", abonosH.Cancelar)
		}

		// Saldos — OWNER and ADMIN read, OWNER configures
		saldos := v1.Group("/balances", middleware.RequireRole("OWNER", "ADMIN"))
		{
			saldos.GET("", saldosH.List)
			saldos.GET("/client/:clientId", saldosH.Get)
			saldos.PUT("/client/:clientId/credit-limit", saldosH.FijarLimiteCredito)
			saldos.DELETE("/client/:clientId/credit-limit", saldosH.QuitarLimiteCredito)
			saldos.PUT("/client/:clientId/initial-balance", saldosH.FijarSaldoInicial)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
