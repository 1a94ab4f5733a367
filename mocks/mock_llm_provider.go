package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"draftly/internal/port"
)

// MockLLMProvider is a mock implementation of port.LLMProvider.
type MockLLMProvider struct {
	mock.Mock
}

// NewMockLLMProvider returns a mock whose Name and Capabilities are preset.
func NewMockLLMProvider(name string, caps port.Capabilities) *MockLLMProvider {
	m := new(MockLLMProvider)
	m.On("Name").Return(name).Maybe()
	m.On("Capabilities").Return(caps).Maybe()
	return m
}

func (m *MockLLMProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLMProvider) Generate(ctx context.Context, packet port.PromptPacket) (*port.RawResponse, error) {
	args := m.Called(ctx, packet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RawResponse), args.Error(1)
}

func (m *MockLLMProvider) Capabilities() port.Capabilities {
	args := m.Called()
	return args.Get(0).(port.Capabilities)
}

func (m *MockLLMProvider) ListModels(ctx context.Context) ([]port.ModelDescriptor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.ModelDescriptor), args.Error(1)
}
