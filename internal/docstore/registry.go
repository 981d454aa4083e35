package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Config carries everything a driver may need to open a backend. Each
// driver reads the fields that apply to it.
type Config struct {
	Driver string

	// DSN is a database connection string (postgres).
	DSN string
	// Path is a database file (sqlite).
	Path string
	// Addr and DB select a Redis server and database.
	Addr string
	DB   int
	// Prefix namespaces keys in shared key-value stores.
	Prefix string

	MaxOpenConns int
	// Migrate applies schema migrations on open for SQL drivers.
	Migrate bool

	Logger *slog.Logger
}

// Driver opens backends of one kind.
type Driver interface {
	Open(ctx context.Context, cfg Config) (Backend, error)
}

// DriverFunc adapts a function to Driver.
type DriverFunc func(ctx context.Context, cfg Config) (Backend, error)

// Open calls f.
func (f DriverFunc) Open(ctx context.Context, cfg Config) (Backend, error) {
	return f(ctx, cfg)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available by name. It is meant to be called from
// the init function of a backend package and panics on duplicate names.
func Register(name string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if d == nil {
		panic("docstore: Register driver is nil")
	}
	if _, exists := drivers[name]; exists {
		panic(fmt.Sprintf("docstore: driver %q already registered", name))
	}
	drivers[name] = d
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens a backend with the driver named in cfg.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	driversMu.RLock()
	d, ok := drivers[cfg.Driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("docstore: driver %q not registered", cfg.Driver)
	}
	return d.Open(ctx, cfg)
}
