package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMockBackendDelegatesToFallback(t *testing.T) {
	ctx := context.Background()
	m := mocks.NewMockBackend()

	versions, err := m.Commit(ctx, []docstore.Op{{
		Kind: docstore.OpPut, Collection: "Users", ID: "u1", Data: []byte(`{}`),
	}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, versions)

	doc, err := m.Get(ctx, "Users", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)

	docs, err := m.List(ctx, "Users")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	assert.Equal(t, 1, m.GetCalls())
	assert.Equal(t, 1, m.ListCalls())
	require.Len(t, m.CommitCalls(), 1)
	assert.Equal(t, "u1", m.CommitCalls()[0][0].ID)
}

func TestMockBackendCommitError(t *testing.T) {
	ctx := context.Background()
	diskFull := errors.New("disk full")
	m := mocks.NewMockBackend(mocks.WithCommitError(diskFull))

	_, err := m.Commit(ctx, []docstore.Op{{
		Kind: docstore.OpPut, Collection: "Users", ID: "u1", Data: []byte(`{}`),
	}})
	assert.ErrorIs(t, err, diskFull)

	_, err = m.Get(ctx, "Users", "u1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestMockBackendClose(t *testing.T) {
	closed := false
	m := mocks.NewMockBackend()
	m.CloseFn = func() error {
		closed = true
		return nil
	}

	require.NoError(t, m.Close())
	assert.True(t, closed)
	assert.Equal(t, 1, m.CloseCalls())
}

func TestTestifyMockBackend(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.TestifyMockBackend)

	m.On("Get", ctx, "Roles", "r1").Return(docstore.Document{ID: "r1", Version: 4}, nil)
	m.On("Commit", ctx, mock.Anything).Return(nil, docstore.ErrConcurrency)

	doc, err := m.Get(ctx, "Roles", "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), doc.Version)

	_, err = m.Commit(ctx, nil)
	assert.ErrorIs(t, err, docstore.ErrConcurrency)

	m.AssertExpectations(t)
}
