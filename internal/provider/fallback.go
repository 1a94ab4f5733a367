package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"draftly/internal/port"
)

// Candidate is one provider in a fallback chain. An empty Model keeps the
// model named in the packet.
type Candidate struct {
	Provider port.LLMProvider
	Model    string
}

// FallbackProvider tries candidates in order through a shared Guard.
// It implements port.LLMProvider and reports the first candidate's identity.
type FallbackProvider struct {
	candidates []Candidate
	guard      *Guard
	logger     *zap.Logger
}

// NewFallbackProvider creates a FallbackProvider. candidates must not be empty.
func NewFallbackProvider(candidates []Candidate, guard *Guard, logger *zap.Logger) *FallbackProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackProvider{candidates: candidates, guard: guard, logger: logger}
}

func (f *FallbackProvider) Name() string {
	return f.candidates[0].Provider.Name()
}

func (f *FallbackProvider) Capabilities() port.Capabilities {
	return f.candidates[0].Provider.Capabilities()
}

func (f *FallbackProvider) ListModels(ctx context.Context) ([]port.ModelDescriptor, error) {
	return f.candidates[0].Provider.ListModels(ctx)
}

func (f *FallbackProvider) Generate(ctx context.Context, packet port.PromptPacket) (*port.RawResponse, error) {
	var lastErr error
	allRateLimited := true
	var earliest time.Duration

	for i, c := range f.candidates {
		name := c.Provider.Name()
		attempt := adaptPacket(packet, c)
		if i > 0 {
			f.logger.Info("falling back to next provider",
				zap.String("provider", name),
				zap.String("model", attempt.Model))
		}

		out, err := f.guard.Call(ctx, c.Provider, attempt)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		f.logger.Warn("provider failed", zap.String("provider", name), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			if earliest == 0 || rlErr.RetryAfter < earliest {
				earliest = rlErr.RetryAfter
			}
		} else {
			allRateLimited = false
		}
	}

	if allRateLimited {
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited: %w", lastErr), int(earliest.Seconds()))
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// adaptPacket applies the candidate's model and downgrades a JSON Schema
// response format for providers that cannot enforce one.
func adaptPacket(packet port.PromptPacket, c Candidate) port.PromptPacket {
	if c.Model != "" {
		packet.Model = c.Model
	}
	rf := packet.ResponseFormat
	if rf != nil && rf.Type == port.ResponseFormatJSONSchema && !c.Provider.Capabilities().SupportsJSONSchema {
		packet.ResponseFormat = &port.ResponseFormat{Type: port.ResponseFormatJSONObject}
	}
	return packet
}
