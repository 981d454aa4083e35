package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ar0311/identity-docstore/internal/config"
	"github.com/ar0311/identity-docstore/internal/docstore"
	_ "github.com/ar0311/identity-docstore/internal/docstore/memory" // memory driver
	"github.com/ar0311/identity-docstore/internal/platform/postgres"
	_ "github.com/ar0311/identity-docstore/internal/platform/redis" // redis driver
	"github.com/ar0311/identity-docstore/internal/platform/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

// storeConfig maps the store section onto the driver config.
func storeConfig(cfg *config.Config, log *slog.Logger) docstore.Config {
	return docstore.Config{
		Driver:       cfg.Store.Driver,
		DSN:          cfg.Store.DSN,
		Path:         cfg.Store.Path,
		Addr:         cfg.Store.RedisAddr,
		DB:           cfg.Store.RedisDB,
		Prefix:       cfg.Store.KeyPrefix,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		Migrate:      cfg.Store.AutoMigrate,
		Logger:       log,
	}
}

// openBackend opens the configured backend. When reg is not nil the backend
// is instrumented with collectors registered on it.
func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger, reg prometheus.Registerer) (docstore.Backend, error) {
	backend, err := docstore.Open(ctx, storeConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	if reg != nil {
		metrics := docstore.NewMetrics(cfg.Metrics.Namespace)
		if err := metrics.Register(reg); err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		backend = docstore.Instrument(backend, metrics)
		log.Debug("store metrics enabled", slog.String("namespace", cfg.Metrics.Namespace))
	}

	return backend, nil
}

// writeMetrics dumps everything gathered by reg to path in the Prometheus
// text format. The file is replaced atomically.
func writeMetrics(path string, reg prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// sqlHandle is implemented by the SQL backends.
type sqlHandle interface {
	DB() *sql.DB
}

// schemaVersion reports the applied migration version of a SQL backend.
// ok is false for drivers without a schema.
func schemaVersion(ctx context.Context, driver string, backend docstore.Backend) (version int64, ok bool, err error) {
	h, isSQL := backend.(sqlHandle)
	if !isSQL {
		return 0, false, nil
	}
	switch driver {
	case postgres.DriverName:
		version, err = postgres.SchemaVersion(ctx, h.DB())
	case sqlite.DriverName:
		version, err = sqlite.SchemaVersion(ctx, h.DB())
	default:
		return 0, false, nil
	}
	return version, true, err
}
