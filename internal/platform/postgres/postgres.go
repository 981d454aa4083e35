package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/platform/postgres/migrations"
	"github.com/ar0311/identity-docstore/internal/platform/sqldoc"
	"github.com/ar0311/identity-docstore/internal/redact"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/pressly/goose/v3"
)

// DriverName is the docstore driver name registered by this package.
const DriverName = "postgres"

const (
	defaultMaxOpenConns = 25
	connMaxLifetime     = 5 * time.Minute
	pingTimeout         = 5 * time.Second
)

// Dialect is the sqldoc dialect for PostgreSQL.
var Dialect = sqldoc.Dialect{
	Name:        DriverName,
	Goose:       goose.DialectPostgres,
	Placeholder: sqldoc.DollarPlaceholder,
	MapError:    MapError,
}

func init() {
	docstore.Register(DriverName, docstore.DriverFunc(Open))
}

// Open connects to cfg.DSN, verifies the connection and, when cfg.Migrate
// is set, applies the embedded migrations before returning the backend.
func Open(ctx context.Context, cfg docstore.Config) (docstore.Backend, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.DSN == "" {
		return nil, errors.New("postgres: DSN is required")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %s", redact.Error(err))
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %s", redact.Error(err))
	}

	log.Info("connected to postgres",
		slog.String("dsn", redact.DSN(cfg.DSN)),
		slog.Int("max_open_conns", maxOpen))

	if cfg.Migrate {
		if err := Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return sqldoc.New(db, Dialect, log), nil
}

// Migrate applies the embedded migrations to db.
func Migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	return sqldoc.Migrate(ctx, db, Dialect, migrations.FS, log)
}

// SchemaVersion returns the applied migration version of db.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	return sqldoc.Version(ctx, db, Dialect, migrations.FS)
}
