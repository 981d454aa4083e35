package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/ar0311/identity-docstore/internal/platform/logger"
)

type docKey struct {
	collection string
	id         string
}

func (k docKey) String() string { return k.collection + "/" + k.id }

// entry is the session's record of one tracked entity.
type entry struct {
	key      docKey
	entity   any
	snapshot []byte // JSON at load or last commit; nil for new entities
	version  int64  // 0 for entities never committed
	deleted  bool
}

func (e *entry) isNew() bool { return e.version == 0 }

// Session is a unit of work over a Backend. It tracks entities by id and by
// pointer identity so that loading the same document twice yields the same
// instance, and it commits every pending change in one SaveChanges call.
type Session struct {
	backend Backend
	logger  *slog.Logger

	byKey map[docKey]*entry
	byPtr map[any]*entry
	order []*entry
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger used when the context carries none.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession opens a session over backend.
func NewSession(backend Backend, opts ...SessionOption) *Session {
	if backend == nil {
		panic("backend cannot be nil")
	}

	s := &Session{
		backend: backend,
		logger:  slog.Default(),
		byKey:   make(map[docKey]*entry),
		byPtr:   make(map[any]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "docstore_session"))
	return s
}

// Backend returns the backend the session commits to.
func (s *Session) Backend() Backend {
	return s.backend
}

// Store starts tracking a new entity under id. Storing an instance that is
// already tracked under the same id is a no-op (and revives it if it was
// marked deleted). Storing a different instance under a tracked id fails
// with ErrNonUniqueObject. The entity is written on the next SaveChanges.
func (s *Session) Store(ctx context.Context, entity any, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkEntity(entity); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEntity)
	}

	key := docKey{collection: CollectionOf(entity), id: id}

	if e, ok := s.byPtr[entity]; ok {
		if e.key != key {
			return fmt.Errorf("%w: entity is tracked as %s, not %s", ErrNonUniqueObject, e.key, key)
		}
		e.deleted = false
		return nil
	}
	if e, ok := s.byKey[key]; ok && e.entity != entity {
		return fmt.Errorf("%w: %s", ErrNonUniqueObject, key)
	}

	s.track(&entry{key: key, entity: entity})
	return nil
}

// Delete marks a tracked entity for deletion on the next SaveChanges.
func (s *Session) Delete(entity any) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	e, ok := s.byPtr[entity]
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotTracked, entity)
	}
	e.deleted = true
	return nil
}

// IsTracked reports whether the session tracks the entity instance.
func (s *Session) IsTracked(entity any) bool {
	_, ok := s.byPtr[entity]
	return ok
}

// IsDeleted reports whether the entity is tracked and marked for deletion.
func (s *Session) IsDeleted(entity any) bool {
	e, ok := s.byPtr[entity]
	return ok && e.deleted
}

// ID returns the id the entity is tracked under.
func (s *Session) ID(entity any) (string, bool) {
	e, ok := s.byPtr[entity]
	if !ok {
		return "", false
	}
	return e.key.id, true
}

// Version returns the committed version of a tracked entity, 0 if it has
// never been committed.
func (s *Session) Version(entity any) (int64, error) {
	e, ok := s.byPtr[entity]
	if !ok {
		return 0, fmt.Errorf("%w: %T", ErrNotTracked, entity)
	}
	return e.version, nil
}

// Evict stops tracking an entity. Pending changes to it are discarded.
func (s *Session) Evict(entity any) {
	e, ok := s.byPtr[entity]
	if !ok {
		return
	}
	s.untrack(e)
}

// Clear stops tracking every entity.
func (s *Session) Clear() {
	s.byKey = make(map[docKey]*entry)
	s.byPtr = make(map[any]*entry)
	s.order = nil
}

// HasChanges reports whether SaveChanges would write anything.
func (s *Session) HasChanges() (bool, error) {
	ops, _, err := s.pendingOps()
	if err != nil {
		return false, err
	}
	return len(ops) > 0, nil
}

// SaveChanges commits every new, modified and deleted entity in a single
// atomic backend commit. Each write carries the version the session last
// saw, so a concurrent commit by another session makes the whole batch fail
// with an error matching ErrConcurrency. On failure the session is left as
// it was and can be inspected, evicted or retried.
func (s *Session) SaveChanges(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ctx.Err(); err != nil {
		return err
	}

	ops, entries, err := s.pendingOps()
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		// Entities stored and deleted before their first commit still
		// need to be forgotten.
		s.dropUncommittedDeletes()
		return nil
	}

	versions, err := s.backend.Commit(ctx, ops)
	if err != nil {
		if IsConcurrencyError(err) {
			log.Warn("concurrency conflict while saving changes",
				slog.Int("op_count", len(ops)),
				slog.String("error", err.Error()))
		} else {
			log.Error("failed to save changes",
				slog.Int("op_count", len(ops)),
				slog.String("error", err.Error()))
		}
		return fmt.Errorf("failed to save changes: %w", err)
	}

	for i, op := range ops {
		e := entries[i]
		switch op.Kind {
		case OpDelete:
			s.untrack(e)
		case OpPut:
			e.version = versions[i]
			e.snapshot = op.Data
		}
	}
	s.dropUncommittedDeletes()

	log.Debug("changes saved", slog.Int("op_count", len(ops)))
	return nil
}

// pendingOps diffs every tracked entity against its snapshot and returns
// the writes to commit together with the entries they belong to.
func (s *Session) pendingOps() ([]Op, []*entry, error) {
	var (
		ops     []Op
		entries []*entry
	)
	for _, e := range s.order {
		if e.deleted {
			if e.isNew() {
				continue
			}
			ops = append(ops, Op{
				Kind:            OpDelete,
				Collection:      e.key.collection,
				ID:              e.key.id,
				ExpectedVersion: e.version,
			})
			entries = append(entries, e)
			continue
		}

		data, err := json.Marshal(e.entity)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to serialize %s: %w", e.key, err)
		}
		if !e.isNew() && bytes.Equal(data, e.snapshot) {
			continue
		}
		ops = append(ops, Op{
			Kind:            OpPut,
			Collection:      e.key.collection,
			ID:              e.key.id,
			Data:            data,
			ExpectedVersion: e.version,
		})
		entries = append(entries, e)
	}
	return ops, entries, nil
}

func (s *Session) dropUncommittedDeletes() {
	for _, e := range append([]*entry(nil), s.order...) {
		if e.deleted && e.isNew() {
			s.untrack(e)
		}
	}
}

func (s *Session) track(e *entry) {
	s.byKey[e.key] = e
	s.byPtr[e.entity] = e
	s.order = append(s.order, e)
}

func (s *Session) untrack(e *entry) {
	delete(s.byKey, e.key)
	delete(s.byPtr, e.entity)
	for i, o := range s.order {
		if o == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// materialize returns the tracked instance for doc, decoding and tracking
// a new one when the session has not seen the document yet. The second
// result is false when the tracked instance is marked deleted.
func materialize[T any](s *Session, doc Document) (*T, bool, error) {
	key := docKey{collection: doc.Collection, id: doc.ID}
	if e, ok := s.byKey[key]; ok {
		entity, ok := e.entity.(*T)
		if !ok {
			return nil, false, fmt.Errorf("%w: %s is tracked as %T", ErrTypeMismatch, key, e.entity)
		}
		return entity, !e.deleted, nil
	}

	entity := new(T)
	if err := json.Unmarshal(doc.Data, entity); err != nil {
		return nil, false, fmt.Errorf("failed to deserialize %s: %w", key, err)
	}
	// Snapshot the re-encoded entity rather than the stored bytes so that
	// backends which reformat JSON (jsonb) do not look like changes.
	snapshot, err := json.Marshal(entity)
	if err != nil {
		return nil, false, fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	s.track(&entry{key: key, entity: entity, snapshot: snapshot, version: doc.Version})
	return entity, true, nil
}

// Load returns the entity with the given id, from the identity map when
// tracked and from the backend otherwise. It returns ErrNotFound for
// missing documents and for tracked entities marked deleted.
func Load[T any](ctx context.Context, s *Session, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collection := CollectionOf(new(T))
	key := docKey{collection: collection, id: id}
	if e, ok := s.byKey[key]; ok {
		if e.deleted {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		entity, ok := e.entity.(*T)
		if !ok {
			return nil, fmt.Errorf("%w: %s is tracked as %T", ErrTypeMismatch, key, e.entity)
		}
		return entity, nil
	}

	doc, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	entity, _, err := materialize[T](s, doc)
	return entity, err
}

// Tracked returns the live entities of type T the session tracks, in the
// order they were first tracked. It includes entities stored but not yet
// committed, which queries do not see.
func Tracked[T any](s *Session) []*T {
	var out []*T
	for _, e := range s.order {
		if e.deleted {
			continue
		}
		if entity, ok := e.entity.(*T); ok {
			out = append(out, entity)
		}
	}
	return out
}

type collectionNamer interface {
	CollectionName() string
}

// CollectionOf returns the collection an entity is stored in: the result
// of its CollectionName method when it has one, the bare type name otherwise.
func CollectionOf(entity any) string {
	if n, ok := entity.(collectionNamer); ok {
		return n.CollectionName()
	}
	t := reflect.TypeOf(entity)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

func checkEntity(entity any) error {
	if entity == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalidEntity)
	}
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: %T is not a non-nil pointer", ErrInvalidEntity, entity)
	}
	return nil
}
