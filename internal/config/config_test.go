package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftly/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.Provider.Default)
	assert.Equal(t, "openrouter/auto", cfg.Provider.DefaultModel)
	assert.Equal(t, 5, cfg.RateLimit.PerMinute)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Provider.Groq.BaseURL)
	assert.Equal(t, "groq", cfg.Provider.Groq.Provider)
	assert.Equal(t, uint32(3), cfg.Breaker.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DRAFTLY_OPENAI_API_KEY", "sk-test")
	t.Setenv("DRAFTLY_OPENAI_MODEL", "gpt-4.1")
	t.Setenv("DRAFTLY_PROVIDER_FALLBACK", "openai, gemini ,")
	t.Setenv("DRAFTLY_API_KEY", "secret")
	t.Setenv("DRAFTLY_RATE_LIMIT_PER_MINUTE", "60")
	t.Setenv("DRAFTLY_CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Provider.OpenAI.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.Provider.OpenAI.DefaultModel)
	assert.Equal(t, []string{"openai", "gemini"}, cfg.Provider.Fallback)
	assert.Equal(t, "secret", cfg.Auth.APIKey)
	assert.Equal(t, 60, cfg.RateLimit.PerMinute)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"openai"}, cfg.Provider.Enabled())
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)

	t.Setenv("DRAFTLY_SERVER_PORT", ":7000")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestProviderConfig_For(t *testing.T) {
	cfg := config.ProviderConfig{
		Gemini: config.ProviderEndpointConfig{Provider: "gemini", APIKey: "gk"},
	}

	assert.Equal(t, "gk", cfg.For("gemini").APIKey)
	assert.Nil(t, cfg.For("unknown"))
	assert.False(t, cfg.For("claude").Enabled())
	assert.Equal(t, []string{"gemini"}, cfg.Enabled())
}

func TestProviderEndpointConfig_Timeout(t *testing.T) {
	assert.Equal(t, 120*time.Second, (&config.ProviderEndpointConfig{}).Timeout())
	assert.Equal(t, 5*time.Second, (&config.ProviderEndpointConfig{TimeoutSecs: 5}).Timeout())
}
