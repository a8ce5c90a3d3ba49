package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tripfolio/internal/domain"
	"tripfolio/internal/port"
)

// MockDocumentExtractor is a mock implementation of port.DocumentExtractor.
type MockDocumentExtractor struct {
	mock.Mock
}

func (m *MockDocumentExtractor) ExtractSingle(ctx context.Context, doc port.ExtractInput) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}

func (m *MockDocumentExtractor) ExtractBatch(ctx context.Context, docs []port.ExtractInput) ([]port.IndexedResult, error) {
	args := m.Called(ctx, docs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.IndexedResult), args.Error(1)
}
