package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftly/internal/config"
	"draftly/internal/port"
	"draftly/internal/provider"
	"draftly/internal/provider/openai"
)

func newTestProvider(t *testing.T, name, serverURL string) port.LLMProvider {
	t.Helper()
	catalog, err := provider.LoadCatalog("")
	require.NoError(t, err)
	p, err := openai.New(&config.ProviderEndpointConfig{
		Provider:     name,
		APIKey:       "test-api-key",
		DefaultModel: "gpt-4o-mini",
		BaseURL:      serverURL,
		TimeoutSecs:  5,
	}, catalog)
	require.NoError(t, err)
	return p
}

func TestProvider_Generate_JSONSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o", reqBody["model"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
		assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])

		rf := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_schema", rf["type"])
		js := rf["json_schema"].(map[string]interface{})
		assert.Equal(t, "QuotationOutput", js["name"])
		assert.Equal(t, "object", js["schema"].(map[string]interface{})["type"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-4o-2024-08-06",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"doc_type\":\"QUOTATION\"}"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	p := newTestProvider(t, config.ProviderOpenAI, server.URL)

	out, err := p.Generate(context.Background(), port.PromptPacket{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		Model:        "gpt-4o",
		Temperature:  0.2,
		ResponseFormat: &port.ResponseFormat{
			Type:       port.ResponseFormatJSONSchema,
			SchemaName: "QuotationOutput",
			Schema:     json.RawMessage(`{"type":"object"}`),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"doc_type":"QUOTATION"}`, out.Content)
	assert.Equal(t, "gpt-4o-2024-08-06", out.Model)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, "stop", out.FinishReason)
	require.NotNil(t, out.Usage)
	assert.Equal(t, 15, out.Usage.TotalTokens)
}

func TestProvider_Generate_PlainJSONUsesDefaultModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		rf := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", rf["type"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{}"}}]}`))
	}))
	defer server.Close()

	p := newTestProvider(t, config.ProviderGroq, server.URL)

	out, err := p.Generate(context.Background(), port.PromptPacket{
		ResponseFormat: &port.ResponseFormat{Type: port.ResponseFormatJSONObject},
	})

	require.NoError(t, err)
	assert.Equal(t, "groq", out.Provider)
	assert.Equal(t, "gpt-4o-mini", out.Model)
	assert.False(t, p.Capabilities().SupportsJSONSchema)
}

func TestProvider_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit"}}`))
	}))
	defer server.Close()

	p := newTestProvider(t, config.ProviderOpenRouter, server.URL)

	_, err := p.Generate(context.Background(), port.PromptPacket{Model: "openrouter/auto"})

	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openrouter", rlErr.Provider)
}

func TestProvider_Generate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	p := newTestProvider(t, config.ProviderOpenAI, server.URL)

	_, err := p.Generate(context.Background(), port.PromptPacket{Model: "gpt-4o"})
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}

func TestProvider_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "internal"}}`))
	}))
	defer server.Close()

	p := newTestProvider(t, config.ProviderOpenAI, server.URL)

	_, err := p.Generate(context.Background(), port.PromptPacket{Model: "gpt-4o"})

	require.Error(t, err)
	var rlErr *provider.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestProvider_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": [
			{"id": "gpt-4o", "object": "model", "owned_by": "openai"},
			{"id": "gpt-3.5-turbo", "object": "model", "owned_by": "openai"}
		]}`))
	}))
	defer server.Close()

	p := newTestProvider(t, config.ProviderOpenAI, server.URL)

	models, err := p.ListModels(context.Background())

	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gpt-3.5-turbo", models[0].ID)
	assert.Equal(t, "gpt-4o", models[1].ID)
	assert.Equal(t, 128000, models[1].ContextWindow)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := openai.New(&config.ProviderEndpointConfig{Provider: "openai"}, nil)
	assert.Error(t, err)
}
