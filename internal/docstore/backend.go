package docstore

import "context"

// Document is a stored JSON document. Version starts at 1 on first write
// and increases by one with every later write.
type Document struct {
	Collection string
	ID         string
	Data       []byte
	Version    int64
}

// OpKind is the kind of a write in a commit batch.
type OpKind int

const (
	// OpPut inserts or replaces a document.
	OpPut OpKind = iota + 1
	// OpDelete removes a document.
	OpDelete
)

// String returns "put" or "delete".
func (k OpKind) String() string {
	switch k {
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one write in a commit batch. ExpectedVersion is the version the
// document must currently have; 0 means the document must not exist.
type Op struct {
	Kind            OpKind
	Collection      string
	ID              string
	Data            []byte
	ExpectedVersion int64
}

// Backend persists versioned documents. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// List returns every document in the collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)

	// Commit applies ops atomically. If any op's ExpectedVersion does not
	// match, nothing is applied and a *ConflictError is returned. On success
	// it returns the new version for each op (0 for deletes), index-aligned
	// with ops.
	Commit(ctx context.Context, ops []Op) ([]int64, error)

	// Close releases the backend's resources.
	Close() error
}
