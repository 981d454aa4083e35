// Package memory provides an in-process docstore.Backend. Documents live in
// a map guarded by a mutex; commits are atomic with respect to each other.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ar0311/identity-docstore/internal/docstore"
)

// DriverName is the name the backend registers under.
const DriverName = "memory"

func init() {
	docstore.Register(DriverName, docstore.DriverFunc(func(_ context.Context, _ docstore.Config) (docstore.Backend, error) {
		return New(), nil
	}))
}

type stored struct {
	data    []byte
	version int64
}

// Backend is an in-memory docstore.Backend.
type Backend struct {
	mu     sync.RWMutex
	colls  map[string]map[string]stored
	closed bool
}

var _ docstore.Backend = (*Backend)(nil)

// New returns an empty backend.
func New() *Backend {
	return &Backend{colls: make(map[string]map[string]stored)}
}

// Get implements docstore.Backend.
func (b *Backend) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return docstore.Document{}, ErrClosed
	}
	doc, ok := b.colls[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{
		Collection: collection,
		ID:         id,
		Data:       clone(doc.data),
		Version:    doc.version,
	}, nil
}

// List implements docstore.Backend.
func (b *Backend) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}
	coll := b.colls[collection]
	docs := make([]docstore.Document, 0, len(coll))
	for id, doc := range coll {
		docs = append(docs, docstore.Document{
			Collection: collection,
			ID:         id,
			Data:       clone(doc.data),
			Version:    doc.version,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Commit implements docstore.Backend. All version checks run before any
// write is applied.
func (b *Backend) Commit(ctx context.Context, ops []docstore.Op) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	for _, op := range ops {
		current := b.colls[op.Collection][op.ID].version
		if current != op.ExpectedVersion {
			return nil, &docstore.ConflictError{
				Collection: op.Collection,
				ID:         op.ID,
				Expected:   op.ExpectedVersion,
				Actual:     current,
			}
		}
	}

	versions := make([]int64, len(ops))
	for i, op := range ops {
		coll, ok := b.colls[op.Collection]
		if !ok {
			coll = make(map[string]stored)
			b.colls[op.Collection] = coll
		}
		switch op.Kind {
		case docstore.OpPut:
			v := op.ExpectedVersion + 1
			coll[op.ID] = stored{data: clone(op.Data), version: v}
			versions[i] = v
		case docstore.OpDelete:
			delete(coll, op.ID)
		}
	}
	return versions, nil
}

// Close implements docstore.Backend. Later calls fail with ErrClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Len returns the number of documents in a collection.
func (b *Backend) Len(collection string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.colls[collection])
}

func clone(p []byte) []byte {
	return append([]byte(nil), p...)
}
