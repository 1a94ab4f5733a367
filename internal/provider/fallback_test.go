package provider_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"draftly/internal/config"
	"draftly/internal/port"
	"draftly/internal/provider"
	"draftly/mocks"
)

var schemaCaps = port.Capabilities{SupportsJSONSchema: true, SupportsPlainJSON: true}
var plainCaps = port.Capabilities{SupportsPlainJSON: true}

func testPacket() port.PromptPacket {
	return port.PromptPacket{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		Model:        "primary-model",
		ResponseFormat: &port.ResponseFormat{
			Type:       port.ResponseFormatJSONSchema,
			SchemaName: "QuotationOutput",
		},
	}
}

func rawFrom(name string) *port.RawResponse {
	return &port.RawResponse{Content: `{"ok":true}`, Provider: name, Model: name + "-model"}
}

func newGuard() *provider.Guard {
	return provider.NewGuard(config.BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 3}, zap.NewNop())
}

func TestFallbackProvider_FirstSucceeds(t *testing.T) {
	p1 := mocks.NewMockLLMProvider("openai", schemaCaps)
	p2 := mocks.NewMockLLMProvider("groq", plainCaps)
	p1.On("Generate", mock.Anything, testPacket()).Return(rawFrom("openai"), nil)

	fp := provider.NewFallbackProvider([]provider.Candidate{{Provider: p1}, {Provider: p2, Model: "llama"}}, newGuard(), nil)

	out, err := fp.Generate(context.Background(), testPacket())

	require.NoError(t, err)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, "openai", fp.Name())
	assert.Equal(t, schemaCaps, fp.Capabilities())
	p2.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallbackProvider_FallbackUsesOwnModelAndPlainJSON(t *testing.T) {
	p1 := mocks.NewMockLLMProvider("openai", schemaCaps)
	p2 := mocks.NewMockLLMProvider("groq", plainCaps)
	p1.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	var seen port.PromptPacket
	p2.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { seen = args.Get(1).(port.PromptPacket) }).
		Return(rawFrom("groq"), nil)

	fp := provider.NewFallbackProvider([]provider.Candidate{{Provider: p1}, {Provider: p2, Model: "llama"}}, newGuard(), nil)

	out, err := fp.Generate(context.Background(), testPacket())

	require.NoError(t, err)
	assert.Equal(t, "groq", out.Provider)
	assert.Equal(t, "llama", seen.Model)
	require.NotNil(t, seen.ResponseFormat)
	assert.Equal(t, port.ResponseFormatJSONObject, seen.ResponseFormat.Type)
}

func TestFallbackProvider_AllRateLimited(t *testing.T) {
	p1 := mocks.NewMockLLMProvider("openai", schemaCaps)
	p2 := mocks.NewMockLLMProvider("groq", plainCaps)
	p1.On("Generate", mock.Anything, mock.Anything).Return(nil, provider.NewRateLimitError("openai", errors.New("429"), 60))
	p2.On("Generate", mock.Anything, mock.Anything).Return(nil, provider.NewRateLimitError("groq", errors.New("429"), 30))

	fp := provider.NewFallbackProvider([]provider.Candidate{{Provider: p1}, {Provider: p2}}, newGuard(), nil)

	out, err := fp.Generate(context.Background(), testPacket())

	assert.Nil(t, out)
	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestFallbackProvider_AllFail_NonRateLimit(t *testing.T) {
	p1 := mocks.NewMockLLMProvider("openai", schemaCaps)
	p2 := mocks.NewMockLLMProvider("groq", plainCaps)
	p1.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("error 1"))
	p2.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("error 2"))

	fp := provider.NewFallbackProvider([]provider.Candidate{{Provider: p1}, {Provider: p2}}, newGuard(), nil)

	_, err := fp.Generate(context.Background(), testPacket())

	assert.ErrorContains(t, err, "all providers failed")
	var rlErr *provider.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackProvider_SkipsCoolingProvider(t *testing.T) {
	p1 := mocks.NewMockLLMProvider("openai", schemaCaps)
	p2 := mocks.NewMockLLMProvider("groq", plainCaps)
	p1.On("Generate", mock.Anything, mock.Anything).Return(nil, provider.NewRateLimitError("openai", errors.New("429"), 60)).Once()
	p2.On("Generate", mock.Anything, mock.Anything).Return(rawFrom("groq"), nil)

	fp := provider.NewFallbackProvider([]provider.Candidate{{Provider: p1}, {Provider: p2}}, newGuard(), nil)

	_, err := fp.Generate(context.Background(), testPacket())
	require.NoError(t, err)
	out, err := fp.Generate(context.Background(), testPacket())
	require.NoError(t, err)

	assert.Equal(t, "groq", out.Provider)
	p1.AssertNumberOfCalls(t, "Generate", 1)
}

func TestFallbackProvider_ConcurrentSafety(t *testing.T) {
	p1 := mocks.NewMockLLMProvider("openai", schemaCaps)
	p2 := mocks.NewMockLLMProvider("groq", plainCaps)
	p1.On("Generate", mock.Anything, mock.Anything).Return(nil, provider.NewRateLimitError("openai", errors.New("429"), 5)).Maybe()
	p2.On("Generate", mock.Anything, mock.Anything).Return(rawFrom("groq"), nil).Maybe()

	fp := provider.NewFallbackProvider([]provider.Candidate{{Provider: p1}, {Provider: p2}}, newGuard(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := fp.Generate(context.Background(), testPacket())
			assert.NoError(t, err)
			assert.NotNil(t, out)
		}()
	}
	wg.Wait()
}

func TestGuard_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	p := mocks.NewMockLLMProvider("gemini", plainCaps)
	p.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("503"))
	g := newGuard()

	for i := 0; i < 3; i++ {
		_, err := g.Call(context.Background(), p, testPacket())
		assert.ErrorContains(t, err, "503")
	}

	_, err := g.Call(context.Background(), p, testPacket())
	assert.ErrorIs(t, err, provider.ErrCircuitOpen)
	assert.Equal(t, "open", g.State("gemini"))
	p.AssertNumberOfCalls(t, "Generate", 3)
}

func TestGuard_CancellationDoesNotTrip(t *testing.T) {
	p := mocks.NewMockLLMProvider("gemini", plainCaps)
	p.On("Generate", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	g := newGuard()

	for i := 0; i < 5; i++ {
		_, err := g.Call(context.Background(), p, testPacket())
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", g.State("gemini"))
}

func TestGuard_StateOfUnknownProvider(t *testing.T) {
	assert.Equal(t, "closed", newGuard().State("never-called"))
}
