package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"draftly/internal/config"
	"draftly/internal/handler"
	"draftly/internal/logging"
	"draftly/internal/metrics"
	"draftly/internal/normalize"
	"draftly/internal/provider"
	"draftly/internal/provider/claude"
	"draftly/internal/provider/gemini"
	"draftly/internal/provider/openai"
	"draftly/internal/repair"
	"draftly/internal/router"
	"draftly/internal/schema"
	"draftly/internal/service"
)

// @title draftly API
// @version 1.0
// @description Drafts quotations, tax invoices and project briefs with LLM providers.
// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// OpenAI, Groq and OpenRouter share the OpenAI-compatible client.
	provider.RegisterProvider(config.ProviderOpenAI, openai.New)
	provider.RegisterProvider(config.ProviderGroq, openai.New)
	provider.RegisterProvider(config.ProviderOpenRouter, openai.New)
	provider.RegisterProvider(config.ProviderGemini, gemini.New)
	provider.RegisterProvider(config.ProviderClaude, claude.New)

	catalog, err := provider.LoadCatalog(cfg.Provider.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load model catalog: %w", err)
	}
	providers, err := provider.BuildEnabled(&cfg.Provider, catalog)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}
	if len(providers) == 0 {
		logger.Warn("no LLM provider has an API key; generation returns 503 and drafting uses the fallback bundle")
	}

	validator := schema.New()
	if err := validator.Ready(); err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}

	m := metrics.New()
	guard := provider.NewGuard(cfg.Breaker, logger)
	repairer := repair.New(time.Now)

	// Initialize services
	providerSvc := service.NewProviderService(cfg.Provider, providers, catalog, guard, logger)
	generationSvc := service.NewGenerationService(providerSvc, validator, normalize.New(time.Now), m, logger)
	draftingSvc := service.NewDraftingService(providerSvc, validator, repairer, time.Now, m, logger)
	documentSvc := service.NewDocumentService(validator, repairer, m)

	// Setup router
	r := router.Setup(cfg, router.Handlers{
		Health:     handler.NewHealthHandler(validator, providerSvc.Enabled, cfg.Server, cfg.Provider),
		Generation: handler.NewGenerationHandler(generationSvc, draftingSvc, logger),
		Document:   handler.NewDocumentHandler(documentSvc, time.Now, logger),
		Provider:   handler.NewProviderHandler(providerSvc, logger),
	}, m, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("version", cfg.Server.Version),
			zap.Strings("providers", providerSvc.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
