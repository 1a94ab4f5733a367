package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"draftly/internal/port"
	"draftly/internal/service"
)

// MockProviderService is a mock implementation of service.ProviderService.
type MockProviderService struct {
	mock.Mock
}

func (m *MockProviderService) Get(name string) (port.LLMProvider, bool) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(port.LLMProvider), args.Bool(1)
}

func (m *MockProviderService) Enabled() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockProviderService) Select(input service.SelectInput) (*service.Selection, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Selection), args.Error(1)
}

func (m *MockProviderService) Active(workspaceID string) service.Selection {
	args := m.Called(workspaceID)
	return args.Get(0).(service.Selection)
}

func (m *MockProviderService) Resolve(workspaceID, providerOverride, modelOverride string) service.Selection {
	args := m.Called(workspaceID, providerOverride, modelOverride)
	return args.Get(0).(service.Selection)
}

func (m *MockProviderService) Describe(ctx context.Context) []service.ProviderInfo {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]service.ProviderInfo)
}
