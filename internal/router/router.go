package router

import (
	"context"
	"fmt"
	"time"

	"pasteleria/internal/config"
	"pasteleria/internal/handler"
	"pasteleria/internal/infra"
	"pasteleria/internal/middleware"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"
	"pasteleria/internal/service"
	"pasteleria/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the wired HTTP engine plus the background processors main starts.
type App struct {
	Engine *gin.Engine

	rdb         *redis.Client
	cfg         *config.Config
	efectos     service.Efectos
	reportes    *worker.ReporteWorker
	metrics     *infra.Metrics
	limitadores []*middleware.IPLimiter
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb and metrics may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker, metrics *infra.Metrics) (*App, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	loc := cfg.Location()

	r := gin.New()

	apiLimiter := middleware.RateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
	loginLimiter := middleware.LoginRateLimiter()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}
	r.Use(apiLimiter.Middleware())

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	almacen, err := infra.NewAlmacen(cfg)
	if err != nil {
		return nil, fmt.Errorf("almacen de reportes: %w", err)
	}
	var locker worker.Locker
	if rdb != nil {
		locker = infra.NewRedisLocker(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	folioRepo := repository.NewFolioRepository(db)
	secuenciaRepo := repository.NewSecuenciaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)
	comisionRepo := repository.NewComisionRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	reporteWorker := worker.NewReporteWorker(worker.ReporteWorkerConfig{
		Cajas:         cajaRepo,
		Folios:        folioRepo,
		Almacen:       almacen,
		Mailer:        mailer,
		CB:            smtpCB,
		Locker:        locker,
		Metrics:       metrics,
		Destinatarios: cfg.Destinatarios(),
		Loc:           loc,
	})

	// ── Services ─────────────────────────────────────────────────────────────
	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo)
	authSvc := service.NewAuthService(usuarioRepo, auditoriaSvc, cfg)
	comisionSvc := service.NewComisionService(comisionRepo, cfg.Tasa(), loc)
	efectos := service.NewEfectos(outboxRepo, comisionSvc, auditoriaSvc, dispatcher)
	folioSvc := service.NewFolioService(folioRepo, secuenciaRepo, clienteRepo, catalogoRepo,
		comisionSvc, efectos, cfg.FolioPrefijo, loc)
	reporteSvc := service.NewReporteService(dispatcher, reporteWorker)
	cajaSvc := service.NewCajaService(cajaRepo, auditoriaSvc, reporteSvc, loc)
	catalogoSvc := service.NewCatalogoService(catalogoRepo)
	clienteSvc := service.NewClienteService(clienteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	foliosH := handler.NewFoliosHandler(folioSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	comisionesH := handler.NewComisionesHandler(comisionSvc)
	catalogosH := handler.NewCatalogosHandler(catalogoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Auth (public)
	auth := r.Group("/v1/auth", loginLimiter.Middleware())
	{
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	todos := []scope.Rol{scope.RolSuperAdmin, scope.RolAdmin, scope.RolEmpleado}
	admins := []scope.Rol{scope.RolSuperAdmin, scope.RolAdmin}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW, middleware.RequireRole(todos...))
	{
		folios := v1.Group("/folios")
		{
			folios.POST("", foliosH.Crear)
			folios.GET("", foliosH.Listar)
			folios.GET("/calendario", foliosH.Calendario)
			folios.GET("/dashboard", foliosH.Dashboard)
			folios.GET("/:id", foliosH.Obtener)
			folios.PUT("/:id", foliosH.Actualizar)
			folios.PATCH("/:id/estatus", foliosH.ActualizarEstatus)
			folios.POST("/:id/cancelar", foliosH.Cancelar)
			folios.DELETE("/:id", middleware.RequireRole(admins...), foliosH.Eliminar)
		}

		caja := v1.Group("/caja")
		{
			caja.GET("/resumen", cajaH.Resumen)
			caja.POST("/movimientos", cajaH.RegistrarMovimiento)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.GET("/historial", middleware.RequireRole(admins...), cajaH.Historial)
			caja.POST("/:fecha/reporte", middleware.RequireRole(admins...), cajaH.ReenviarReporte)
		}

		v1.GET("/comisiones/reporte", middleware.RequireRole(admins...), comisionesH.Reporte)
		v1.GET("/clientes", clientesH.Buscar)

		// Catálogos: admins write, all authenticated can read
		v1.GET("/catalogos/:tipo", catalogosH.Listar)
		catalogos := v1.Group("/catalogos", middleware.RequireRole(admins...))
		{
			catalogos.POST("/:tipo", catalogosH.Crear)
			catalogos.DELETE("/:tipo/:id", catalogosH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole(admins...))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}

		v1.GET("/auditoria", middleware.RequireRole(admins...), auditoriaH.Listar)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &App{
		Engine:      r,
		rdb:         rdb,
		cfg:         cfg,
		efectos:     efectos,
		reportes:    reporteWorker,
		metrics:     metrics,
		limitadores: []*middleware.IPLimiter{apiLimiter, loginLimiter},
	}, nil
}

// StartBackground launches the worker pool (when Redis is configured), the
// outbox relay and the rate-limiter purge. Everything stops with ctx.
func (a *App) StartBackground(ctx context.Context) {
	if a.rdb != nil {
		worker.StartWorkerPool(ctx, a.rdb, worker.WorkerHandlers{
			Reporte: a.reportes,
			Metrics: a.metrics,
		}, a.cfg.WorkerPoolSize)
	}
	worker.StartOutboxRelay(ctx, a.efectos, a.metrics)
	for _, l := range a.limitadores {
		l.StartPurge(ctx, 10*time.Minute)
	}
}
