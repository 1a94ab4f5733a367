package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftly/internal/config"
	"draftly/internal/port"
	"draftly/internal/provider"
	"draftly/internal/provider/claude"
)

func newTestProvider(serverURL string) *claude.Provider {
	cfg := &config.ProviderEndpointConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  5,
	}
	return claude.NewWithEndpoint(cfg, nil, serverURL)
}

func TestProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.True(t, strings.HasSuffix(reqBody["system"].(string), "Respond with a single JSON object only."))
		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]interface{})["content"])

		_, _ = w.Write([]byte(`{
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "{\"drafts\":[]}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	out, err := newTestProvider(server.URL).Generate(context.Background(), port.PromptPacket{
		SystemPrompt:   "sys",
		UserPrompt:     "user",
		ResponseFormat: &port.ResponseFormat{Type: port.ResponseFormatJSONObject},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"drafts":[]}`, out.Content)
	assert.Equal(t, "claude", out.Provider)
	assert.Equal(t, "end_turn", out.FinishReason)
	assert.Equal(t, 20, out.Usage.TotalTokens)
}

func TestProvider_Generate_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "{\"partial"}], "stop_reason": "max_tokens"}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Generate(context.Background(), port.PromptPacket{})
	assert.ErrorContains(t, err, "max_tokens")
}

func TestProvider_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error"}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Generate(context.Background(), port.PromptPacket{})

	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
}

func TestProvider_Generate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Generate(context.Background(), port.PromptPacket{})
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}

func TestProvider_ListModels_FromCatalog(t *testing.T) {
	catalog, err := provider.LoadCatalog("")
	require.NoError(t, err)
	p := claude.NewWithEndpoint(&config.ProviderEndpointConfig{APIKey: "k"}, catalog, "http://unused")

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, models)
	assert.False(t, p.Capabilities().SupportsJSONSchema)
}
