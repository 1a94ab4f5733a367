// Package openai implements port.LLMProvider for OpenAI-compatible chat
// completion APIs. The same client serves OpenAI, Groq and OpenRouter through
// their base URLs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"draftly/internal/config"
	"draftly/internal/port"
	"draftly/internal/provider"
)

// Provider implements port.LLMProvider using the go-openai client.
type Provider struct {
	name    string
	model   string
	client  *openai.Client
	catalog *provider.Catalog
}

// New creates an OpenAI-compatible provider from its endpoint config.
func New(cfg *config.ProviderEndpointConfig, catalog *provider.Catalog) (port.LLMProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", cfg.Provider)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Provider{
		name:    cfg.Provider,
		model:   model,
		client:  openai.NewClientWithConfig(clientCfg),
		catalog: catalog,
	}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Capabilities() port.Capabilities {
	return p.catalog.Capabilities(p.name)
}

func (p *Provider) Generate(ctx context.Context, packet port.PromptPacket) (*port.RawResponse, error) {
	model := packet.Model
	if model == "" {
		model = p.model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: packet.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: packet.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: packet.UserPrompt},
		},
		ResponseFormat: responseFormat(packet.ResponseFormat),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, p.wrapError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%s: %w", p.name, provider.ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	if resp.Model != "" {
		model = resp.Model
	}
	return &port.RawResponse{
		Content:      choice.Message.Content,
		Model:        model,
		Provider:     p.name,
		FinishReason: string(choice.FinishReason),
		Usage: &port.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (p *Provider) ListModels(ctx context.Context) ([]port.ModelDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, p.wrapError(err)
	}
	out := make([]port.ModelDescriptor, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, p.catalog.Describe(p.name, m.ID))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (p *Provider) wrapError(err error) error {
	baseErr := fmt.Errorf("%s API error: %w", p.name, err)
	if statusOf(err) == http.StatusTooManyRequests {
		return provider.NewRateLimitError(p.name, baseErr, 0)
	}
	return baseErr
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func responseFormat(rf *port.ResponseFormat) *openai.ChatCompletionResponseFormat {
	if rf == nil {
		return nil
	}
	switch rf.Type {
	case port.ResponseFormatJSONSchema:
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   rf.SchemaName,
				Schema: rf.Schema,
			},
		}
	case port.ResponseFormatJSONObject:
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	default:
		return nil
	}
}
