package mocks

import (
	"context"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/stretchr/testify/mock"
)

// TestifyMockBackend is a mock of docstore.Backend for use with testify/mock
type TestifyMockBackend struct {
	mock.Mock
}

var _ docstore.Backend = (*TestifyMockBackend)(nil)

// Get is a mock implementation of docstore.Backend.Get
func (m *TestifyMockBackend) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	args := m.Called(ctx, collection, id)
	if doc, ok := args.Get(0).(docstore.Document); ok {
		return doc, args.Error(1)
	}
	return docstore.Document{}, args.Error(1)
}

// List is a mock implementation of docstore.Backend.List
func (m *TestifyMockBackend) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	args := m.Called(ctx, collection)
	if docs, ok := args.Get(0).([]docstore.Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

// Commit is a mock implementation of docstore.Backend.Commit
func (m *TestifyMockBackend) Commit(ctx context.Context, ops []docstore.Op) ([]int64, error) {
	args := m.Called(ctx, ops)
	if versions, ok := args.Get(0).([]int64); ok {
		return versions, args.Error(1)
	}
	return nil, args.Error(1)
}

// Close is a mock implementation of docstore.Backend.Close
func (m *TestifyMockBackend) Close() error {
	args := m.Called()
	return args.Error(0)
}
