package mocks

import (
	"context"

	"docsearch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) SearchDocuments(ctx context.Context, q model.SearchQuery, principal string) (*model.ResultPage, error) {
	args := m.Called(ctx, q, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResultPage), args.Error(1)
}

func (m *MockSearchService) Autocomplete(ctx context.Context, prefix, field string, limit int, principal string) ([]model.AutocompleteCandidate, error) {
	args := m.Called(ctx, prefix, field, limit, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AutocompleteCandidate), args.Error(1)
}

func (m *MockSearchService) GetFacets(ctx context.Context, q model.SearchQuery, principal string) (*model.Facets, error) {
	args := m.Called(ctx, q, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Facets), args.Error(1)
}

func (m *MockSearchService) SearchWithEngine(ctx context.Context, engine, term string) ([]model.EngineHit, error) {
	args := m.Called(ctx, engine, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EngineHit), args.Error(1)
}

func (m *MockSearchService) EngineHealth(ctx context.Context) map[string]bool {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]bool)
}

type MockEngineComparator struct {
	mock.Mock
}

func (m *MockEngineComparator) Compare(ctx context.Context, query string) *model.ComparisonReport {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.ComparisonReport)
}
