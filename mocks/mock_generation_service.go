package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"draftly/internal/domain"
	"draftly/internal/service"
)

// MockGenerationService is a mock implementation of service.GenerationService.
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, input service.GenerateInput) (*service.GenerateResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}

// MockDraftingService is a mock implementation of service.DraftingService.
type MockDraftingService struct {
	mock.Mock
}

func (m *MockDraftingService) Draft(ctx context.Context, req *domain.DraftRequest) (*service.DraftResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DraftResult), args.Error(1)
}
