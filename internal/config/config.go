package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Store    StoreConfig    `mapstructure:"store" validate:"required"`
	Identity IdentityConfig `mapstructure:"identity" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// StoreConfig selects and configures the document backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres redis"`
	// DSN is the PostgreSQL connection string.
	DSN string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
	// Path is the SQLite database file (":memory:" for a private in-memory db).
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	// RedisAddr is host:port of the Redis server.
	RedisAddr string `mapstructure:"redis_addr" validate:"required_if=Driver redis"`
	RedisDB   int    `mapstructure:"redis_db" validate:"gte=0"`
	// KeyPrefix namespaces documents inside a shared Redis database.
	KeyPrefix       string `mapstructure:"key_prefix"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	AutoSaveChanges bool   `mapstructure:"auto_save_changes"`
}

// IdentityConfig holds identity policy settings.
type IdentityConfig struct {
	KeyType            string        `mapstructure:"key_type" validate:"required,oneof=string uuid int64"`
	RequireUniqueEmail bool          `mapstructure:"require_unique_email"`
	Lockout            LockoutConfig `mapstructure:"lockout" validate:"required"`
}

// LockoutConfig configures lockout after repeated failed access attempts.
type LockoutConfig struct {
	AllowedForNewUsers      bool          `mapstructure:"allowed_for_new_users"`
	MaxFailedAccessAttempts int           `mapstructure:"max_failed_access_attempts" validate:"required,gt=0"`
	DefaultLockoutTimeSpan  time.Duration `mapstructure:"default_lockout_time_span" validate:"required,gt=0"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// MetricsConfig controls Prometheus instrumentation of the document backend.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
	// Textfile receives the collected metrics in Prometheus text format
	// when the process exits, for a node_exporter textfile collector.
	Textfile string `mapstructure:"textfile" validate:"required_if=Enabled true"`
}
