package memory

import (
	"context"
	"testing"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/docstore/docstoretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendCommit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := New()

	versions, err := b.Commit(ctx, []docstore.Op{
		{Kind: docstore.OpPut, Collection: "Users", ID: "u1", Data: []byte(`{"n":1}`)},
		{Kind: docstore.OpPut, Collection: "Users", ID: "u2", Data: []byte(`{"n":2}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1}, versions)

	doc, err := b.Get(ctx, "Users", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
	assert.JSONEq(t, `{"n":1}`, string(doc.Data))

	doc.Data[0] = 'X'
	again, err := b.Get(ctx, "Users", "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(again.Data), "returned bytes are copies")

	t.Run("batch is all or nothing", func(t *testing.T) {
		_, err := b.Commit(ctx, []docstore.Op{
			{Kind: docstore.OpPut, Collection: "Users", ID: "u1", Data: []byte(`{"n":10}`), ExpectedVersion: 1},
			{Kind: docstore.OpPut, Collection: "Users", ID: "u2", Data: []byte(`{"n":20}`), ExpectedVersion: 7},
		})
		assert.ErrorIs(t, err, docstore.ErrConcurrency)

		doc, err := b.Get(ctx, "Users", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), doc.Version, "no op of a failed batch is applied")
	})

	t.Run("delete", func(t *testing.T) {
		versions, err := b.Commit(ctx, []docstore.Op{
			{Kind: docstore.OpDelete, Collection: "Users", ID: "u2", ExpectedVersion: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{0}, versions)

		_, err = b.Get(ctx, "Users", "u2")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		docs, err := b.List(ctx, "Users")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "u1", docs[0].ID)

		empty, err := b.List(ctx, "Roles")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestBackendClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := New()
	require.NoError(t, b.Close())

	_, err := b.Get(ctx, "Users", "u1")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.List(ctx, "Users")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Commit(ctx, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBackendConformance(t *testing.T) {
	t.Parallel()

	shared := New()
	docstoretest.Run(t, func(t *testing.T) docstore.Backend { return shared })
}
