package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"draftly/internal/config"
)

// ReadinessChecker reports whether a dependency is ready to serve.
type ReadinessChecker interface {
	Ready() error
}

// HealthHandler handles health and version endpoints.
type HealthHandler struct {
	schemas   ReadinessChecker
	enabled   func() []string
	server    config.ServerConfig
	providers config.ProviderConfig
}

// NewHealthHandler creates a new HealthHandler. enabled lists the providers
// that have credentials.
func NewHealthHandler(schemas ReadinessChecker, enabled func() []string, server config.ServerConfig, providers config.ProviderConfig) *HealthHandler {
	return &HealthHandler{schemas: schemas, enabled: enabled, server: server, providers: providers}
}

// Liveness handles GET /healthz
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Service is alive"
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.server.Version})
}

// Readiness handles GET /readyz. Schemas must have compiled; having no
// provider enabled is reported but not fatal since drafting falls back.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready, with enabled providers"
// @Failure 503 {object} map[string]interface{} "Schemas not loaded"
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.schemas.Ready(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "schemas not loaded"})
		return
	}
	enabled := h.enabled()
	if enabled == nil {
		enabled = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "providers": enabled})
}

// Version handles GET /version
// @Summary Build and provider defaults
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Version information"
// @Router /version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":             "draftly",
		"version":          h.server.Version,
		"environment":      h.server.Environment,
		"default_provider": h.providers.Default,
		"default_model":    h.providers.DefaultModel,
	})
}
