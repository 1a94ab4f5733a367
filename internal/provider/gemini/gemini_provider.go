package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"draftly/internal/config"
	"draftly/internal/port"
	"draftly/internal/provider"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Provider implements port.LLMProvider using Google's Gemini API.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	catalog *provider.Catalog
}

// New creates a Gemini provider. A BaseURL in cfg replaces the public models endpoint.
func New(cfg *config.ProviderEndpointConfig, catalog *provider.Catalog) (port.LLMProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	return newProvider(cfg, catalog, cfg.BaseURL), nil
}

// NewWithBaseURL creates a provider pointing at a custom models endpoint (for testing).
func NewWithBaseURL(cfg *config.ProviderEndpointConfig, catalog *provider.Catalog, baseURL string) *Provider {
	return newProvider(cfg, catalog, baseURL)
}

func newProvider(cfg *config.ProviderEndpointConfig, catalog *provider.Catalog, baseURL string) *Provider {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if baseURL == "" {
		baseURL = apiBaseURL
	}
	return &Provider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout()},
		catalog: catalog,
	}
}

func (p *Provider) Name() string { return config.ProviderGemini }

func (p *Provider) Capabilities() port.Capabilities {
	return p.catalog.Capabilities(config.ProviderGemini)
}

func (p *Provider) Generate(ctx context.Context, packet port.PromptPacket) (*port.RawResponse, error) {
	model := strings.TrimPrefix(packet.Model, "models/")
	if model == "" {
		model = p.model
	}

	genConfig := map[string]interface{}{
		"temperature":     packet.Temperature,
		"maxOutputTokens": 16384,
	}
	if packet.ResponseFormat != nil {
		genConfig["responseMimeType"] = "application/json"
	}
	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": packet.SystemPrompt}},
		},
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": []map[string]interface{}{{"text": packet.UserPrompt}},
			},
		},
		"generationConfig": genConfig,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", p.baseURL, model)
	respBody, err := p.do(ctx, http.MethodPost, endpoint, bodyBytes)
	if err != nil {
		return nil, err
	}
	return parseResponse(respBody, model)
}

func (p *Provider) ListModels(ctx context.Context) ([]port.ModelDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	respBody, err := p.do(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Models []struct {
			Name                       string   `json:"name"`
			DisplayName                string   `json:"displayName"`
			Description                string   `json:"description"`
			InputTokenLimit            int      `json:"inputTokenLimit"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling models: %w", err)
	}

	var out []port.ModelDescriptor
	for _, m := range resp.Models {
		if !slices.Contains(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		family := m.DisplayName
		if family == "" {
			family = provider.FamilyOf(id)
		}
		out = append(out, port.ModelDescriptor{
			ID:            id,
			Family:        family,
			ContextWindow: m.InputTokenLimit,
			Notes:         m.Description,
		})
	}
	return out, nil
}

func (p *Provider) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, provider.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, provider.NewRateLimitError(config.ProviderGemini, baseErr, retryAfter)
		}
		return nil, baseErr
	}
	return respBody, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

func parseResponse(body []byte, model string) (*port.RawResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini: %w", provider.ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}

	out := &port.RawResponse{
		Content:      text.String(),
		Model:        model,
		Provider:     config.ProviderGemini,
		FinishReason: resp.Candidates[0].FinishReason,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &port.Usage{
			PromptTokens:     u.PromptTokenCount,
			CompletionTokens: u.CandidatesTokenCount,
			TotalTokens:      u.TotalTokenCount,
		}
	}
	return out, nil
}
