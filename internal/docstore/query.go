package docstore

import (
	"context"
	"fmt"
)

// Queryable is a lazy query over one collection. Nothing touches the
// backend until a terminal method (ToList, FirstOrDefault, SingleOrDefault,
// Count, Any) runs. Results are resolved through the session's identity
// map: documents the session already tracks come back as the tracked
// instance, and tracked entities marked deleted are left out. Entities
// stored but not yet committed are not visible to queries.
type Queryable[T any] struct {
	session    *Session
	collection string
	preds      []func(*T) bool
}

// Query starts a query over the collection of T.
func Query[T any](s *Session) *Queryable[T] {
	return &Queryable[T]{
		session:    s,
		collection: CollectionOf(new(T)),
	}
}

// Where returns a new query additionally filtered by pred.
func (q *Queryable[T]) Where(pred func(*T) bool) *Queryable[T] {
	preds := make([]func(*T) bool, len(q.preds), len(q.preds)+1)
	copy(preds, q.preds)
	return &Queryable[T]{
		session:    q.session,
		collection: q.collection,
		preds:      append(preds, pred),
	}
}

// Collection returns the collection the query reads.
func (q *Queryable[T]) Collection() string {
	return q.collection
}

// ToList returns every matching entity ordered by id.
func (q *Queryable[T]) ToList(ctx context.Context) ([]*T, error) {
	return q.run(ctx, 0)
}

// FirstOrDefault returns the first match, or nil when nothing matches.
func (q *Queryable[T]) FirstOrDefault(ctx context.Context) (*T, error) {
	results, err := q.run(ctx, 1)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return results[0], nil
}

// SingleOrDefault returns the only match, nil when nothing matches, and
// ErrMultipleResults when more than one entity matches.
func (q *Queryable[T]) SingleOrDefault(ctx context.Context) (*T, error) {
	results, err := q.run(ctx, 2)
	if err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return nil, fmt.Errorf("%w: collection %s", ErrMultipleResults, q.collection)
	}
}

// Count returns the number of matches.
func (q *Queryable[T]) Count(ctx context.Context) (int, error) {
	results, err := q.run(ctx, 0)
	return len(results), err
}

// Any reports whether at least one entity matches.
func (q *Queryable[T]) Any(ctx context.Context) (bool, error) {
	results, err := q.run(ctx, 1)
	return len(results) > 0, err
}

// run evaluates the query, stopping after limit matches when limit > 0.
func (q *Queryable[T]) run(ctx context.Context, limit int) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs, err := q.session.backend.List(ctx, q.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.collection, err)
	}

	var results []*T
	for _, doc := range docs {
		entity, live, err := materialize[T](q.session, doc)
		if err != nil {
			return nil, err
		}
		if !live || !q.matches(entity) {
			continue
		}
		results = append(results, entity)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

func (q *Queryable[T]) matches(entity *T) bool {
	for _, pred := range q.preds {
		if !pred(entity) {
			return false
		}
	}
	return true
}
