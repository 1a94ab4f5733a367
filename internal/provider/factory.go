package provider

import (
	"fmt"

	"draftly/internal/config"
	"draftly/internal/port"
)

// ProviderFactory creates an LLMProvider from its endpoint config.
type ProviderFactory func(cfg *config.ProviderEndpointConfig, catalog *Catalog) (port.LLMProvider, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider creates an LLMProvider using the registered factory.
func NewProvider(cfg *config.ProviderEndpointConfig, catalog *Catalog) (port.LLMProvider, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return factory(cfg, catalog)
}

// BuildEnabled creates every provider that has an API key configured.
func BuildEnabled(cfg *config.ProviderConfig, catalog *Catalog) (map[string]port.LLMProvider, error) {
	out := make(map[string]port.LLMProvider)
	for _, name := range cfg.Enabled() {
		p, err := NewProvider(cfg.For(name), catalog)
		if err != nil {
			return nil, fmt.Errorf("creating provider %s: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}
