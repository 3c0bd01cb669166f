package mocks

import (
	"context"

	"docsearch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
	EngineName string
}

func (m *MockClient) Name() string {
	return m.EngineName
}

func (m *MockClient) Search(ctx context.Context, term string) ([]model.EngineHit, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EngineHit), args.Error(1)
}

func (m *MockClient) IndexDocument(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockClient) DeleteDocument(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
