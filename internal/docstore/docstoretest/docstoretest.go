// Package docstoretest is a behavioural test suite every docstore.Backend
// must pass. Backend packages call Run from their own tests.
package docstoretest

import (
	"context"
	"sync"
	"testing"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opener returns a ready backend. It may hand out the same backend to
// several tests: every test writes to collections of its own.
type Opener func(t *testing.T) docstore.Backend

// Run executes the suite against backends produced by open.
func Run(t *testing.T, open Opener) {
	t.Helper()

	t.Run("put and get", func(t *testing.T) { testPutGet(t, open(t)) })
	t.Run("insert conflict", func(t *testing.T) { testInsertConflict(t, open(t)) })
	t.Run("stale update", func(t *testing.T) { testStaleUpdate(t, open(t)) })
	t.Run("batch atomicity", func(t *testing.T) { testBatchAtomicity(t, open(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("list", func(t *testing.T) { testList(t, open(t)) })
	t.Run("racing writers", func(t *testing.T) { testRacingWriters(t, open(t)) })
	t.Run("session round trip", func(t *testing.T) { testSessionRoundTrip(t, open(t)) })
}

// collection returns a collection name unique to one test run.
func collection(name string) string {
	return name + "_" + uuid.NewString()[:8]
}

func put(coll, id, data string, expected int64) docstore.Op {
	return docstore.Op{Kind: docstore.OpPut, Collection: coll, ID: id, Data: []byte(data), ExpectedVersion: expected}
}

func del(coll, id string, expected int64) docstore.Op {
	return docstore.Op{Kind: docstore.OpDelete, Collection: coll, ID: id, ExpectedVersion: expected}
}

func testPutGet(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	coll := collection("Users")

	versions, err := b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"name":"alice"}`, 0)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, versions)

	doc, err := b.Get(ctx, coll, "u1")
	require.NoError(t, err)
	assert.Equal(t, coll, doc.Collection)
	assert.Equal(t, "u1", doc.ID)
	assert.Equal(t, int64(1), doc.Version)
	assert.JSONEq(t, `{"name":"alice"}`, string(doc.Data))

	versions, err = b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"name":"alicia"}`, 1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, versions)

	doc, err = b.Get(ctx, coll, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
	assert.JSONEq(t, `{"name":"alicia"}`, string(doc.Data))

	_, err = b.Get(ctx, coll, "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = b.Get(ctx, collection("Roles"), "u1")
	assert.ErrorIs(t, err, docstore.ErrNotFound, "collections are separate namespaces")
}

func testInsertConflict(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	coll := collection("Users")

	_, err := b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":1}`, 0)})
	require.NoError(t, err)

	_, err = b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":2}`, 0)})
	require.ErrorIs(t, err, docstore.ErrConcurrency)

	var conflict *docstore.ConflictError
	if assert.ErrorAs(t, err, &conflict) {
		assert.Equal(t, coll, conflict.Collection)
		assert.Equal(t, "u1", conflict.ID)
		assert.Equal(t, int64(0), conflict.Expected)
		assert.Equal(t, int64(1), conflict.Actual)
	}

	doc, err := b.Get(ctx, coll, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(doc.Data))
}

func testStaleUpdate(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	coll := collection("Users")

	_, err := b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":1}`, 0)})
	require.NoError(t, err)
	_, err = b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":2}`, 1)})
	require.NoError(t, err)

	_, err = b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":3}`, 1)})
	require.ErrorIs(t, err, docstore.ErrConcurrency)

	var conflict *docstore.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(2), conflict.Actual)

	_, err = b.Commit(ctx, []docstore.Op{put(coll, "gone", `{}`, 4)})
	require.ErrorAs(t, err, &conflict, "updating a missing document conflicts")
	assert.Equal(t, int64(0), conflict.Actual)
}

func testBatchAtomicity(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	coll := collection("Users")

	_, err := b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":1}`, 0)})
	require.NoError(t, err)

	_, err = b.Commit(ctx, []docstore.Op{
		put(coll, "u2", `{"n":2}`, 0),
		put(coll, "u1", `{"n":10}`, 1),
		put(coll, "u1", `{"n":11}`, 7),
	})
	require.ErrorIs(t, err, docstore.ErrConcurrency)

	_, err = b.Get(ctx, coll, "u2")
	assert.ErrorIs(t, err, docstore.ErrNotFound, "insert of a failed batch is rolled back")

	doc, err := b.Get(ctx, coll, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version, "update of a failed batch is rolled back")

	versions, err := b.Commit(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func testDelete(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	coll := collection("Users")

	_, err := b.Commit(ctx, []docstore.Op{put(coll, "u1", `{}`, 0), put(coll, "u2", `{}`, 0)})
	require.NoError(t, err)

	_, err = b.Commit(ctx, []docstore.Op{del(coll, "u1", 5)})
	assert.ErrorIs(t, err, docstore.ErrConcurrency, "stale delete")

	versions, err := b.Commit(ctx, []docstore.Op{del(coll, "u1", 1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, versions)

	_, err = b.Get(ctx, coll, "u1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = b.Commit(ctx, []docstore.Op{del(coll, "u1", 1)})
	assert.ErrorIs(t, err, docstore.ErrConcurrency, "deleting twice")

	versions, err = b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"again":true}`, 0)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, versions, "a re-created document starts over")
}

func testList(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	coll := collection("Users")

	docs, err := b.List(ctx, coll)
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = b.Commit(ctx, []docstore.Op{
		put(coll, "c", `{"id":"c"}`, 0),
		put(coll, "a", `{"id":"a"}`, 0),
		put(coll, "b", `{"id":"b"}`, 0),
		put(collection("Roles"), "z", `{}`, 0),
	})
	require.NoError(t, err)

	docs, err = b.List(ctx, coll)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, docs[i].ID)
		assert.Equal(t, coll, docs[i].Collection)
		assert.Equal(t, int64(1), docs[i].Version)
		assert.JSONEq(t, `{"id":"`+id+`"}`, string(docs[i].Data))
	}
}

func testRacingWriters(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	coll := collection("Users")

	_, err := b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":0}`, 0)})
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Commit(ctx, []docstore.Op{put(coll, "u1", `{"n":1}`, 1)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case docstore.IsConcurrencyError(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "exactly one writer wins")
	assert.Equal(t, writers-1, conflicts)
}

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func testSessionRoundTrip(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	id := uuid.NewString()

	s := docstore.NewSession(b)
	n := &note{ID: id, Text: "hello"}
	require.NoError(t, s.Store(ctx, n, id))
	require.NoError(t, s.SaveChanges(ctx))

	other := docstore.NewSession(b)
	loaded, err := docstore.Load[note](ctx, other, id)
	require.NoError(t, err)
	assert.Equal(t, *n, *loaded)

	n.Text = "first"
	require.NoError(t, s.SaveChanges(ctx))

	loaded.Text = "second"
	err = other.SaveChanges(ctx)
	assert.ErrorIs(t, err, docstore.ErrConcurrency)
}
