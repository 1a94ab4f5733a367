package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names understood by the provider registry.
const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderClaude     = "claude"
)

// KnownProviders lists every provider in display order.
var KnownProviders = []string{ProviderOpenRouter, ProviderOpenAI, ProviderGroq, ProviderGemini, ProviderClaude}

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Provider  ProviderConfig
	Breaker   BreakerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	Version      string        `mapstructure:"version"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds the optional shared API key. An empty key disables the check.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RateLimitConfig holds per-client request limits for the API group.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// ProviderEndpointConfig holds settings for a single LLM provider.
type ProviderEndpointConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// Enabled reports whether the provider has credentials.
func (p *ProviderEndpointConfig) Enabled() bool {
	return p != nil && p.APIKey != ""
}

// Timeout returns the request timeout, 120s when unset.
func (p *ProviderEndpointConfig) Timeout() time.Duration {
	if p.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// ProviderConfig holds LLM provider selection and per-provider settings.
type ProviderConfig struct {
	Default      string   `mapstructure:"default"`
	DefaultModel string   `mapstructure:"default_model"`
	Fallback     []string `mapstructure:"fallback"`
	CatalogPath  string   `mapstructure:"catalog_path"`

	OpenAI     ProviderEndpointConfig `mapstructure:"openai"`
	Groq       ProviderEndpointConfig `mapstructure:"groq"`
	OpenRouter ProviderEndpointConfig `mapstructure:"openrouter"`
	Gemini     ProviderEndpointConfig `mapstructure:"gemini"`
	Claude     ProviderEndpointConfig `mapstructure:"claude"`
}

// For returns the settings of the named provider, or nil for unknown names.
func (p *ProviderConfig) For(name string) *ProviderEndpointConfig {
	switch name {
	case ProviderOpenAI:
		return &p.OpenAI
	case ProviderGroq:
		return &p.Groq
	case ProviderOpenRouter:
		return &p.OpenRouter
	case ProviderGemini:
		return &p.Gemini
	case ProviderClaude:
		return &p.Claude
	default:
		return nil
	}
}

// Enabled returns the names of providers that have an API key, in display order.
func (p *ProviderConfig) Enabled() []string {
	var out []string
	for _, name := range KnownProviders {
		if p.For(name).Enabled() {
			out = append(out, name)
		}
	}
	return out
}

// BreakerConfig holds circuit breaker settings applied to each provider.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// Load reads configuration from environment variables with the DRAFTLY_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DRAFTLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.version", "0.1.0")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8501")

	v.SetDefault("auth.api_key", "")

	v.SetDefault("rate_limit.per_minute", 5)
	v.SetDefault("rate_limit.burst", 5)

	// Provider defaults
	v.SetDefault("provider.default", ProviderOpenRouter)
	v.SetDefault("provider.default_model", "openrouter/auto")
	v.SetDefault("provider.fallback", "")
	v.SetDefault("provider.catalog_path", "")
	providerDefaults := map[string]struct{ model, baseURL string }{
		ProviderOpenAI:     {"gpt-4o-mini", "https://api.openai.com/v1"},
		ProviderGroq:       {"llama-3.1-8b-instant", "https://api.groq.com/openai/v1"},
		ProviderOpenRouter: {"openrouter/auto", "https://openrouter.ai/api/v1"},
		ProviderGemini:     {"gemini-2.0-flash", ""},
		ProviderClaude:     {"claude-sonnet-4-20250514", ""},
	}
	for name, d := range providerDefaults {
		v.SetDefault("provider."+name+".api_key", "")
		v.SetDefault("provider."+name+".default_model", d.model)
		v.SetDefault("provider."+name+".base_url", d.baseURL)
		v.SetDefault("provider."+name+".timeout_secs", 120)
	}

	// Breaker defaults
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "60s")
	v.SetDefault("breaker.timeout", "30s")
	v.SetDefault("breaker.failure_threshold", 3)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "DRAFTLY_SERVER_PORT",
		"server.read_timeout":       "DRAFTLY_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "DRAFTLY_SERVER_WRITE_TIMEOUT",
		"server.environment":        "DRAFTLY_SERVER_ENVIRONMENT",
		"server.version":            "DRAFTLY_SERVER_VERSION",
		"log.level":                 "DRAFTLY_LOG_LEVEL",
		"log.format":                "DRAFTLY_LOG_FORMAT",
		"cors.allowed_origins":      "DRAFTLY_CORS_ALLOWED_ORIGINS",
		"auth.api_key":              "DRAFTLY_API_KEY",
		"rate_limit.per_minute":     "DRAFTLY_RATE_LIMIT_PER_MINUTE",
		"rate_limit.burst":          "DRAFTLY_RATE_LIMIT_BURST",
		"provider.default":          "DRAFTLY_PROVIDER_DEFAULT",
		"provider.default_model":    "DRAFTLY_PROVIDER_DEFAULT_MODEL",
		"provider.fallback":         "DRAFTLY_PROVIDER_FALLBACK",
		"provider.catalog_path":     "DRAFTLY_PROVIDER_CATALOG_PATH",
		"breaker.max_requests":      "DRAFTLY_BREAKER_MAX_REQUESTS",
		"breaker.interval":          "DRAFTLY_BREAKER_INTERVAL",
		"breaker.timeout":           "DRAFTLY_BREAKER_TIMEOUT",
		"breaker.failure_threshold": "DRAFTLY_BREAKER_FAILURE_THRESHOLD",
	}
	for _, name := range KnownProviders {
		prefix := "DRAFTLY_" + strings.ToUpper(name) + "_"
		envBindings["provider."+name+".api_key"] = prefix + "API_KEY"
		envBindings["provider."+name+".default_model"] = prefix + "MODEL"
		envBindings["provider."+name+".base_url"] = prefix + "BASE_URL"
		envBindings["provider."+name+".timeout_secs"] = prefix + "TIMEOUT_SECS"
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DRAFTLY_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DRAFTLY_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		Version:      v.GetString("server.version"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Auth = AuthConfig{
		APIKey: v.GetString("auth.api_key"),
	}
	cfg.RateLimit = RateLimitConfig{
		PerMinute: v.GetInt("rate_limit.per_minute"),
		Burst:     v.GetInt("rate_limit.burst"),
	}

	cfg.Provider = ProviderConfig{
		Default:      v.GetString("provider.default"),
		DefaultModel: v.GetString("provider.default_model"),
		Fallback:     splitList(v.GetString("provider.fallback")),
		CatalogPath:  v.GetString("provider.catalog_path"),
	}
	for _, name := range KnownProviders {
		*cfg.Provider.For(name) = ProviderEndpointConfig{
			Provider:     name,
			APIKey:       v.GetString("provider." + name + ".api_key"),
			DefaultModel: v.GetString("provider." + name + ".default_model"),
			BaseURL:      v.GetString("provider." + name + ".base_url"),
			TimeoutSecs:  v.GetInt("provider." + name + ".timeout_secs"),
		}
	}

	cfg.Breaker = BreakerConfig{
		MaxRequests:      v.GetUint32("breaker.max_requests"),
		Interval:         v.GetDuration("breaker.interval"),
		Timeout:          v.GetDuration("breaker.timeout"),
		FailureThreshold: v.GetUint32("breaker.failure_threshold"),
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
