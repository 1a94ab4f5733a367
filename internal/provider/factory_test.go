package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftly/internal/config"
	"draftly/internal/port"
	"draftly/internal/provider"
	"draftly/mocks"
)

func TestRegisterProvider_AndBuildEnabled(t *testing.T) {
	provider.RegisterProvider("test-provider", func(cfg *config.ProviderEndpointConfig, _ *provider.Catalog) (port.LLMProvider, error) {
		return mocks.NewMockLLMProvider(cfg.Provider, port.Capabilities{}), nil
	})

	p, err := provider.NewProvider(&config.ProviderEndpointConfig{Provider: "test-provider"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "test-provider", p.Name())
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := provider.NewProvider(&config.ProviderEndpointConfig{Provider: "nope"}, nil)
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestBuildEnabled_OnlyKeyedProviders(t *testing.T) {
	provider.RegisterProvider(config.ProviderGroq, func(cfg *config.ProviderEndpointConfig, _ *provider.Catalog) (port.LLMProvider, error) {
		return mocks.NewMockLLMProvider(cfg.Provider, port.Capabilities{}), nil
	})
	cfg := &config.ProviderConfig{
		Groq:   config.ProviderEndpointConfig{Provider: config.ProviderGroq, APIKey: "gk"},
		Claude: config.ProviderEndpointConfig{Provider: config.ProviderClaude},
	}

	built, err := provider.BuildEnabled(cfg, nil)
	require.NoError(t, err)
	assert.Len(t, built, 1)
	assert.Contains(t, built, config.ProviderGroq)
}
