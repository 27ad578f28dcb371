package router

import (
	"time"

	"precomed/internal/config"
	"precomed/internal/handler"
	"precomed/internal/infra"
	"precomed/internal/middleware"
	"precomed/internal/repository"
	"precomed/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, cache *infra.CacheConsulta) *gin.Engine {
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
	r.Use(middleware.RateLimiter(600, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	produtoRepo := repository.NewProdutoRepository(db)
	entidadeRepo := repository.NewEntidadeRepository(db)
	precoRepo := repository.NewPrecoRepository(db)
	historicoRepo := repository.NewHistoricoPrecoRepository(db)
	consultaRepo := repository.NewConsultaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	precoSvc := service.NewPrecoService(db, produtoRepo, entidadeRepo, precoRepo, historicoRepo, cache, cfg.LimiteVariacao())
	consultaSvc := service.NewConsultaService(consultaRepo, cache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	consultaH := handler.NewConsultaPrecosHandler(consultaSvc)
	historicoH := handler.NewHistoricoPrecosHandler(precoSvc)
	precosH := handler.NewPrecosHandler(precoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, cache))

	// Search is public, like the CMED list itself
	r.GET("/v1/produtos", consultaH.Buscar)
	r.GET("/v1/aliquotas", precosH.ListarAliquotas)

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/produtos/:codigo/historico-precos",
			middleware.RequireRole(middleware.RolConsulta, middleware.RolAdministrador), historicoH.ListarPorProduto)
		v1.GET("/produtos/:codigo/precos",
			middleware.RequireRole(middleware.RolConsulta, middleware.RolAdministrador), precosH.Listar)
		v1.PUT("/produtos/:codigo/precos", middleware.RequireRole(middleware.RolAdministrador), precosH.Atualizar)
	}

	return r
}
