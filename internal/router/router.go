package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"draftly/internal/config"
	"draftly/internal/handler"
	"draftly/internal/metrics"
	"draftly/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Health     *handler.HealthHandler
	Generation *handler.GenerationHandler
	Document   *handler.DocumentHandler
	Provider   *handler.ProviderHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Workspace())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(m))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/version", h.Health.Version)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIKey(cfg.Auth.APIKey))
	v1.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)))

	// LLM-backed generation
	generate := v1.Group("/generate")
	generate.POST("/quotation", h.Generation.Quotation)
	generate.POST("/invoice", h.Generation.Invoice)
	generate.POST("/project-brief", h.Generation.ProjectBrief)
	v1.POST("/draft", h.Generation.Draft)

	// Offline document tools
	v1.POST("/validate", h.Document.Validate)
	v1.POST("/validate/draft", h.Document.ValidateDraft)
	v1.POST("/repair", h.Document.Repair)
	v1.POST("/compute/totals", h.Document.ComputeTotals)
	v1.POST("/upi/deeplink", h.Document.UPIDeeplink)
	v1.POST("/export/:format", h.Document.Export)

	// Provider discovery and selection
	providers := v1.Group("/providers")
	providers.GET("", h.Provider.List)
	providers.POST("/select", h.Provider.Select)
	providers.GET("/active", h.Provider.Active)

	return r
}
