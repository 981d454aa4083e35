package mocks

import (
	"context"
	"sync"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/docstore/memory"
)

// MockBackend implements docstore.Backend for testing.
type MockBackend struct {
	// Function fields for customizable behavior
	GetFn    func(ctx context.Context, collection, id string) (docstore.Document, error)
	ListFn   func(ctx context.Context, collection string) ([]docstore.Document, error)
	CommitFn func(ctx context.Context, ops []docstore.Op) ([]int64, error)
	CloseFn  func() error

	// Fallback serves every method without a function field.
	Fallback docstore.Backend

	// mu protects the call tracking state
	mu          sync.Mutex
	getCalls    int
	listCalls   int
	commitCalls [][]docstore.Op
	closeCalls  int
}

var _ docstore.Backend = (*MockBackend)(nil)

// MockOption is a function type that configures a MockBackend
type MockOption func(*MockBackend)

// WithGetFn overrides Get.
func WithGetFn(fn func(ctx context.Context, collection, id string) (docstore.Document, error)) MockOption {
	return func(m *MockBackend) {
		m.GetFn = fn
	}
}

// WithListFn overrides List.
func WithListFn(fn func(ctx context.Context, collection string) ([]docstore.Document, error)) MockOption {
	return func(m *MockBackend) {
		m.ListFn = fn
	}
}

// WithCommitFn overrides Commit.
func WithCommitFn(fn func(ctx context.Context, ops []docstore.Op) ([]int64, error)) MockOption {
	return func(m *MockBackend) {
		m.CommitFn = fn
	}
}

// WithCommitError makes every Commit fail with err without applying
// anything.
func WithCommitError(err error) MockOption {
	return WithCommitFn(func(ctx context.Context, ops []docstore.Op) ([]int64, error) {
		return nil, err
	})
}

// WithFallback replaces the in-memory fallback.
func WithFallback(b docstore.Backend) MockOption {
	return func(m *MockBackend) {
		m.Fallback = b
	}
}

// NewMockBackend creates a mock over a fresh in-memory backend.
func NewMockBackend(opts ...MockOption) *MockBackend {
	m := &MockBackend{Fallback: memory.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements docstore.Backend.
func (m *MockBackend) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()

	if m.GetFn != nil {
		return m.GetFn(ctx, collection, id)
	}
	return m.Fallback.Get(ctx, collection, id)
}

// List implements docstore.Backend.
func (m *MockBackend) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	if m.ListFn != nil {
		return m.ListFn(ctx, collection)
	}
	return m.Fallback.List(ctx, collection)
}

// Commit implements docstore.Backend. Every batch is recorded.
func (m *MockBackend) Commit(ctx context.Context, ops []docstore.Op) ([]int64, error) {
	m.mu.Lock()
	m.commitCalls = append(m.commitCalls, append([]docstore.Op(nil), ops...))
	m.mu.Unlock()

	if m.CommitFn != nil {
		return m.CommitFn(ctx, ops)
	}
	return m.Fallback.Commit(ctx, ops)
}

// Close implements docstore.Backend.
func (m *MockBackend) Close() error {
	m.mu.Lock()
	m.closeCalls++
	m.mu.Unlock()

	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return m.Fallback.Close()
}

// GetCalls returns how many times Get was called.
func (m *MockBackend) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

// ListCalls returns how many times List was called.
func (m *MockBackend) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// CommitCalls returns a copy of every batch passed to Commit.
func (m *MockBackend) CommitCalls() [][]docstore.Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]docstore.Op(nil), m.commitCalls...)
}

// CloseCalls returns how many times Close was called.
func (m *MockBackend) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}
