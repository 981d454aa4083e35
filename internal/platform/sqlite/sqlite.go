package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/platform/sqldoc"
	"github.com/ar0311/identity-docstore/internal/platform/sqlite/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DriverName is the docstore driver name registered by this package.
const DriverName = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Dialect is the sqldoc dialect for SQLite.
var Dialect = sqldoc.Dialect{
	Name:        DriverName,
	Goose:       goose.DialectSQLite3,
	Placeholder: sqldoc.NumberedQuestionPlaceholder,
	MapError:    MapError,
}

func init() {
	docstore.Register(DriverName, docstore.DriverFunc(Open))
}

// Open opens the database file at cfg.Path, or an in-memory database for
// MemoryPath. Migrations always run for in-memory databases since they
// start empty.
func Open(ctx context.Context, cfg docstore.Config) (docstore.Backend, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite: path is required")
	}

	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	log.Info("opened sqlite database", slog.String("path", path))

	if cfg.Migrate || path == MemoryPath {
		if err := Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return sqldoc.New(db, Dialect, log), nil
}

// OpenDB opens the database without migrating it. SQLite allows a single
// writer, so the pool is limited to one connection; this also keeps an
// in-memory database alive for the lifetime of the handle.
func OpenDB(path string) (*sql.DB, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	return db, nil
}

// Migrate applies the embedded migrations to db.
func Migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	return sqldoc.Migrate(ctx, db, Dialect, migrations.FS, log)
}

// SchemaVersion returns the applied migration version of db.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	return sqldoc.Version(ctx, db, Dialect, migrations.FS)
}
