package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"draftly/internal/config"
	"draftly/internal/port"
	"draftly/internal/provider"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// jsonInstruction is appended to the system prompt when JSON output is requested;
// the Messages API has no response_format switch.
const jsonInstruction = "\nRespond with a single JSON object only."

// Provider implements port.LLMProvider using the Anthropic Messages API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	catalog  *provider.Catalog
}

// New creates a Claude provider. A BaseURL in cfg replaces the messages endpoint.
func New(cfg *config.ProviderEndpointConfig, catalog *provider.Catalog) (port.LLMProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude: api key is required")
	}
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return newProvider(cfg, catalog, endpoint), nil
}

// NewWithEndpoint creates a provider pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.ProviderEndpointConfig, catalog *provider.Catalog, endpoint string) *Provider {
	return newProvider(cfg, catalog, endpoint)
}

func newProvider(cfg *config.ProviderEndpointConfig, catalog *provider.Catalog, endpoint string) *Provider {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Timeout()},
		catalog:  catalog,
	}
}

func (p *Provider) Name() string { return config.ProviderClaude }

func (p *Provider) Capabilities() port.Capabilities {
	return p.catalog.Capabilities(config.ProviderClaude)
}

// ListModels returns the catalog entries; the Messages API key is not
// guaranteed to have model listing access.
func (p *Provider) ListModels(_ context.Context) ([]port.ModelDescriptor, error) {
	return p.catalog.Models(config.ProviderClaude), nil
}

func (p *Provider) Generate(ctx context.Context, packet port.PromptPacket) (*port.RawResponse, error) {
	model := packet.Model
	if model == "" {
		model = p.model
	}
	system := packet.SystemPrompt
	if packet.ResponseFormat != nil {
		system += jsonInstruction
	}

	reqBody := map[string]interface{}{
		"model":       model,
		"max_tokens":  16384,
		"temperature": packet.Temperature,
		"system":      system,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": packet.UserPrompt,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, provider.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, provider.NewRateLimitError(config.ProviderClaude, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func parseResponse(body []byte, model string) (*port.RawResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("claude: %w", provider.ErrEmptyResponse)
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}
	if resp.Model != "" {
		model = resp.Model
	}

	return &port.RawResponse{
		Content:      text.String(),
		Model:        model,
		Provider:     config.ProviderClaude,
		FinishReason: resp.StopReason,
		Usage: &port.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}
