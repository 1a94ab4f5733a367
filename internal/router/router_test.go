package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"draftly/internal/config"
	"draftly/internal/handler"
	"draftly/internal/metrics"
	"draftly/internal/provider"
	"draftly/internal/repair"
	"draftly/internal/router"
	"draftly/internal/schema"
	"draftly/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T, apiKey string) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Version: "test"},
		Auth:      config.AuthConfig{APIKey: apiKey},
		RateLimit: config.RateLimitConfig{PerMinute: 100, Burst: 100},
		Provider:  config.ProviderConfig{Default: "openrouter", DefaultModel: "openrouter/auto"},
	}
	catalog, err := provider.LoadCatalog("")
	if err != nil {
		t.Fatal(err)
	}

	logger := zap.NewNop()
	m := metrics.New()
	validator := schema.New()
	repairer := repair.New(time.Now)
	providers := service.NewProviderService(cfg.Provider, nil, catalog, nil, logger)

	return router.Setup(cfg, router.Handlers{
		Health:     handler.NewHealthHandler(validator, providers.Enabled, cfg.Server, cfg.Provider),
		Generation: handler.NewGenerationHandler(nil, service.NewDraftingService(providers, validator, repairer, time.Now, m, logger), logger),
		Document:   handler.NewDocumentHandler(service.NewDocumentService(validator, repairer, m), time.Now, logger),
		Provider:   handler.NewProviderHandler(providers, logger),
	}, m, logger)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r := newEngine(t, "secret")

	for _, path := range []string{"/healthz", "/readyz", "/version", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_APIKeyRequired(t *testing.T) {
	r := newEngine(t, "secret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_DraftFallsBackWithoutProviders(t *testing.T) {
	r := newEngine(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/draft",
		bytes.NewBufferString(`{"prompt": "Quote for three landing pages"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"fallback"`)
}

func TestRouter_MetricsRecordRoutes(t *testing.T) {
	r := newEngine(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/providers/active", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), `path="/api/v1/providers/active"`))
}
