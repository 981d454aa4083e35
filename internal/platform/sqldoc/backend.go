package sqldoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
)

// Backend implements docstore.Backend over a *sql.DB.
type Backend struct {
	db      *sql.DB
	dialect Dialect
	q       queries
	logger  *slog.Logger
	now     func() time.Time
}

var _ docstore.Backend = (*Backend)(nil)

// New wraps db. The documents table must already exist; see Migrate.
// The backend owns db and closes it on Close.
func New(db *sql.DB, dialect Dialect, log *slog.Logger) *Backend {
	if db == nil {
		panic("sqldoc: nil db")
	}
	if log == nil {
		log = slog.Default()
	}
	if dialect.MapError == nil {
		dialect.MapError = func(err error) error { return err }
	}
	return &Backend{
		db:      db,
		dialect: dialect,
		q:       buildQueries(dialect),
		logger:  log.With(slog.String("component", "sqldoc"), slog.String("dialect", dialect.Name)),
		now:     time.Now,
	}
}

// DB returns the underlying database handle.
func (b *Backend) DB() *sql.DB {
	return b.db
}

// Get implements docstore.Backend.
func (b *Backend) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	doc := docstore.Document{Collection: collection, ID: id}
	err := b.db.QueryRowContext(ctx, b.q.get, collection, id).Scan(&doc.Data, &doc.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, fmt.Errorf("%w: %s/%s", docstore.ErrNotFound, collection, id)
		}
		return docstore.Document{}, fmt.Errorf("failed to get document: %w", b.dialect.MapError(err))
	}
	return doc, nil
}

// List implements docstore.Backend.
func (b *Backend) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	rows, err := b.db.QueryContext(ctx, b.q.list, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", b.dialect.MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			b.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var docs []docstore.Document
	for rows.Next() {
		doc := docstore.Document{Collection: collection}
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.Version); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", b.dialect.MapError(err))
	}
	return docs, nil
}

// Commit implements docstore.Backend. All ops run in one transaction; the
// first op that matches no row rolls the batch back with a ConflictError.
func (b *Backend) Commit(ctx context.Context, ops []docstore.Op) ([]int64, error) {
	versions := make([]int64, len(ops))
	if len(ops) == 0 {
		return versions, nil
	}

	now := b.now().UTC()
	ctx = logger.WithLogger(ctx, logger.FromContextOrDefault(ctx, b.logger))
	err := RunInTransaction(ctx, b.db, func(ctx context.Context, tx *sql.Tx) error {
		for i, op := range ops {
			v, err := b.apply(ctx, tx, op, now)
			if err != nil {
				return err
			}
			versions[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// apply runs one conditional write and returns the document's new version.
func (b *Backend) apply(ctx context.Context, tx *sql.Tx, op docstore.Op, now time.Time) (int64, error) {
	var (
		res  sql.Result
		err  error
		next int64
	)
	switch op.Kind {
	case docstore.OpPut:
		if op.ExpectedVersion == 0 {
			res, err = tx.ExecContext(ctx, b.q.insert, op.Collection, op.ID, string(op.Data), now)
			next = 1
		} else {
			res, err = tx.ExecContext(ctx, b.q.update, string(op.Data), now, op.Collection, op.ID, op.ExpectedVersion)
			next = op.ExpectedVersion + 1
		}
	case docstore.OpDelete:
		res, err = tx.ExecContext(ctx, b.q.delete, op.Collection, op.ID, op.ExpectedVersion)
	default:
		return 0, fmt.Errorf("unknown op kind %d for %s/%s", op.Kind, op.Collection, op.ID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to %s document: %w", op.Kind, b.dialect.MapError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return next, nil
	}

	actual, err := b.currentVersion(ctx, tx, op.Collection, op.ID)
	if err != nil {
		return 0, err
	}
	if actual != op.ExpectedVersion {
		return 0, &docstore.ConflictError{
			Collection: op.Collection,
			ID:         op.ID,
			Expected:   op.ExpectedVersion,
			Actual:     actual,
		}
	}
	// Deleting a document that was expected to be absent.
	return next, nil
}

// currentVersion returns the stored version, 0 when there is no row.
func (b *Backend) currentVersion(ctx context.Context, tx *sql.Tx, collection, id string) (int64, error) {
	var v int64
	err := tx.QueryRowContext(ctx, b.q.version, collection, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read document version: %w", b.dialect.MapError(err))
	}
	return v, nil
}

// Close implements docstore.Backend.
func (b *Backend) Close() error {
	return b.db.Close()
}
