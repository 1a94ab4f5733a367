package port

import (
	"context"
	"encoding/json"
)

// Response format types requested from a provider.
const (
	ResponseFormatJSONSchema = "json_schema"
	ResponseFormatJSONObject = "json_object"
)

// ResponseFormat asks the provider to constrain its output. Schema is only
// set for ResponseFormatJSONSchema.
type ResponseFormat struct {
	Type       string
	SchemaName string
	Schema     json.RawMessage
}

// PromptPacket is a single chat-completion request.
type PromptPacket struct {
	SystemPrompt   string
	UserPrompt     string
	Model          string
	Temperature    float32
	ResponseFormat *ResponseFormat
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RawResponse is the unparsed text returned by a provider.
type RawResponse struct {
	Content      string
	Model        string
	Provider     string
	FinishReason string
	Usage        *Usage
}

// ModelDescriptor describes a model offered by a provider.
type ModelDescriptor struct {
	ID                 string `json:"id" yaml:"id"`
	Family             string `json:"family" yaml:"family"`
	ContextWindow      int    `json:"context_window,omitempty" yaml:"context_window"`
	SupportsJSONSchema bool   `json:"supports_json_schema" yaml:"supports_json_schema"`
	Notes              string `json:"notes,omitempty" yaml:"notes"`
}

// Capabilities are the output-constraint features a provider supports.
type Capabilities struct {
	SupportsJSONSchema   bool `json:"supports_json_schema" yaml:"supports_json_schema"`
	SupportsFunctionCall bool `json:"supports_function_call" yaml:"supports_function_call"`
	SupportsPlainJSON    bool `json:"supports_plain_json" yaml:"supports_plain_json"`
}

// LLMProvider abstracts a chat-completion backend.
type LLMProvider interface {
	Name() string
	Generate(ctx context.Context, packet PromptPacket) (*RawResponse, error)
	Capabilities() Capabilities
	ListModels(ctx context.Context) ([]ModelDescriptor, error)
}
