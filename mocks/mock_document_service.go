package mocks

import (
	"github.com/stretchr/testify/mock"

	"draftly/internal/domain"
	"draftly/internal/service"
	"draftly/internal/upi"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Validate(payload any, schemaName string) (domain.ValidationReport, error) {
	args := m.Called(payload, schemaName)
	return args.Get(0).(domain.ValidationReport), args.Error(1)
}

func (m *MockDocumentService) Repair(bundle any) domain.RepairResult {
	args := m.Called(bundle)
	return args.Get(0).(domain.RepairResult)
}

func (m *MockDocumentService) RecomputeTotals(draft map[string]any) (map[string]any, error) {
	args := m.Called(draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockDocumentService) UPILink(params upi.Params) (*service.UPILink, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UPILink), args.Error(1)
}
