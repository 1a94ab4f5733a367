package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"draftly/internal/config"
	"draftly/internal/domain"
	"draftly/internal/port"
	"draftly/internal/provider"
)

// DefaultWorkspace keys the selection used when a request names no workspace.
const DefaultWorkspace = "default"

// Selection is the provider/model pair used for a workspace.
type Selection struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	WorkspaceID string `json:"workspace_id"`
}

// SelectInput is the DTO for choosing a workspace's provider.
type SelectInput struct {
	Provider    string `json:"provider" binding:"required"`
	Model       string `json:"model"`
	WorkspaceID string `json:"workspace_id"`
}

// ProviderInfo describes one known provider for the listing endpoint.
type ProviderInfo struct {
	Name         string                 `json:"name"`
	Enabled      bool                   `json:"enabled"`
	DefaultModel string                 `json:"default_model"`
	Capabilities port.Capabilities      `json:"capabilities"`
	Breaker      string                 `json:"breaker"`
	Models       []port.ModelDescriptor `json:"models"`
}

// ProviderService manages enabled providers and per-workspace selections.
type ProviderService interface {
	Get(name string) (port.LLMProvider, bool)
	Enabled() []string
	Select(input SelectInput) (*Selection, error)
	Active(workspaceID string) Selection
	Resolve(workspaceID, providerOverride, modelOverride string) Selection
	Describe(ctx context.Context) []ProviderInfo
}

type providerService struct {
	cfg       config.ProviderConfig
	providers map[string]port.LLMProvider
	catalog   *provider.Catalog
	guard     *provider.Guard
	logger    *zap.Logger

	mu         sync.RWMutex
	selections map[string]Selection
}

// NewProviderService creates a ProviderService over already-built providers.
func NewProviderService(
	cfg config.ProviderConfig,
	providers map[string]port.LLMProvider,
	catalog *provider.Catalog,
	guard *provider.Guard,
	logger *zap.Logger,
) ProviderService {
	if providers == nil {
		providers = map[string]port.LLMProvider{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = provider.NewGuard(config.BreakerConfig{}, logger)
	}
	return &providerService{
		cfg:        cfg,
		providers:  providers,
		catalog:    catalog,
		guard:      guard,
		logger:     logger,
		selections: make(map[string]Selection),
	}
}

// Get returns the named provider wrapped in its fallback chain.
func (s *providerService) Get(name string) (port.LLMProvider, bool) {
	primary, ok := s.providers[name]
	if !ok {
		return nil, false
	}
	candidates := []provider.Candidate{{Provider: primary}}
	for _, fb := range s.cfg.Fallback {
		p, ok := s.providers[fb]
		if !ok || fb == name {
			continue
		}
		candidates = append(candidates, provider.Candidate{Provider: p, Model: s.defaultModel(fb)})
	}
	return provider.NewFallbackProvider(candidates, s.guard, s.logger), true
}

func (s *providerService) Enabled() []string {
	var out []string
	for _, name := range config.KnownProviders {
		if _, ok := s.providers[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func (s *providerService) Select(input SelectInput) (*Selection, error) {
	if _, ok := s.providers[input.Provider]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotEnabled, input.Provider)
	}
	sel := Selection{
		Provider:    input.Provider,
		Model:       input.Model,
		WorkspaceID: workspaceOrDefault(input.WorkspaceID),
	}
	if sel.Model == "" {
		sel.Model = s.defaultModel(input.Provider)
	}

	s.mu.Lock()
	s.selections[sel.WorkspaceID] = sel
	s.mu.Unlock()

	s.logger.Info("provider selected",
		zap.String("workspace_id", sel.WorkspaceID),
		zap.String("provider", sel.Provider),
		zap.String("model", sel.Model))
	return &sel, nil
}

func (s *providerService) Active(workspaceID string) Selection {
	workspaceID = workspaceOrDefault(workspaceID)

	s.mu.RLock()
	sel, ok := s.selections[workspaceID]
	s.mu.RUnlock()
	if ok {
		return sel
	}
	return Selection{Provider: s.cfg.Default, Model: s.cfg.DefaultModel, WorkspaceID: workspaceID}
}

// Resolve applies request overrides on top of the workspace selection. A
// provider override without a model uses that provider's default model.
func (s *providerService) Resolve(workspaceID, providerOverride, modelOverride string) Selection {
	sel := s.Active(workspaceID)
	if providerOverride != "" && providerOverride != sel.Provider {
		sel.Provider = providerOverride
		sel.Model = s.defaultModel(providerOverride)
	}
	if modelOverride != "" {
		sel.Model = modelOverride
	}
	return sel
}

func (s *providerService) Describe(ctx context.Context) []ProviderInfo {
	out := make([]ProviderInfo, 0, len(config.KnownProviders))
	for _, name := range config.KnownProviders {
		info := ProviderInfo{
			Name:         name,
			DefaultModel: s.defaultModel(name),
			Capabilities: s.catalog.Capabilities(name),
			Breaker:      s.guard.State(name),
			Models:       []port.ModelDescriptor{},
		}
		if p, ok := s.providers[name]; ok {
			info.Enabled = true
			info.Capabilities = p.Capabilities()
			models, err := p.ListModels(ctx)
			if err != nil {
				s.logger.Warn("listing models failed, using catalog",
					zap.String("provider", name), zap.Error(err))
				models = s.catalog.Models(name)
			}
			if models != nil {
				info.Models = models
			}
		}
		out = append(out, info)
	}
	return out
}

func (s *providerService) defaultModel(name string) string {
	if name == s.cfg.Default && s.cfg.DefaultModel != "" {
		return s.cfg.DefaultModel
	}
	if ep := s.cfg.For(name); ep != nil {
		return ep.DefaultModel
	}
	return ""
}

func workspaceOrDefault(id string) string {
	if id == "" {
		return DefaultWorkspace
	}
	return id
}
