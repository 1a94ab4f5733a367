package provider_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"draftly/internal/provider"
)

func TestRateLimitError_ErrorString(t *testing.T) {
	rlErr := provider.NewRateLimitError("groq", fmt.Errorf("rate limited"), 30)

	assert.Contains(t, rlErr.Error(), "groq")
	assert.Contains(t, rlErr.Error(), "rate limited")
	assert.Contains(t, rlErr.Error(), "30s")
}

func TestRateLimitError_ErrorsAs(t *testing.T) {
	underlying := fmt.Errorf("rate limited")
	wrapped := fmt.Errorf("generate failed: %w", provider.NewRateLimitError("openai", underlying, 30))

	var target *provider.RateLimitError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "openai", target.Provider)
	assert.Equal(t, 30*time.Second, target.RetryAfter)
	assert.ErrorIs(t, wrapped, underlying)
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	rlErr := provider.NewRateLimitError("openai", fmt.Errorf("err"), 0)

	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, provider.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, provider.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 12, provider.ParseRetryAfterHeader("12"))
}

func TestFamilyOf(t *testing.T) {
	tests := map[string]string{
		"gpt-4o-mini":                       "gpt-4",
		"gpt-3.5-turbo":                     "gpt-3.5",
		"llama-3.1-8b-instant":              "llama-3.1",
		"models/gemini-2.0-flash":           "gemini-2.0",
		"claude-sonnet-4-20250514":          "claude-sonnet-4",
		"openrouter/auto":                   "auto",
		"meta-llama/llama-3.1-70b-instruct": "llama-3.1",
	}
	for id, want := range tests {
		assert.Equal(t, want, provider.FamilyOf(id), id)
	}
}
