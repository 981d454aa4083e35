package service

import (
	"log/slog"
	"time"

	"github.com/ar0311/identity-docstore/internal/config"
	"github.com/ar0311/identity-docstore/internal/store"
)

// LockoutOptions configures lockout after repeated failed access attempts.
type LockoutOptions struct {
	AllowedForNewUsers      bool
	MaxFailedAccessAttempts int
	DefaultLockoutTimeSpan  time.Duration
}

// Options configures the managers.
type Options struct {
	RequireUniqueEmail bool
	Lockout            LockoutOptions

	// Describer produces the errors of failed results.
	Describer store.ErrorDescriber

	// Logger is used when the context carries no logger.
	Logger *slog.Logger

	// Now is the clock used for lockout decisions.
	Now func() time.Time
}

// DefaultOptions mirrors the usual identity defaults: lockout on for new
// users, five attempts, five minutes.
func DefaultOptions() Options {
	return Options{
		Lockout: LockoutOptions{
			AllowedForNewUsers:      true,
			MaxFailedAccessAttempts: 5,
			DefaultLockoutTimeSpan:  5 * time.Minute,
		},
		Describer: store.DefaultErrorDescriber{},
	}
}

// OptionsFromConfig builds manager options from the identity section of
// the application config.
func OptionsFromConfig(cfg config.IdentityConfig) Options {
	opts := DefaultOptions()
	opts.RequireUniqueEmail = cfg.RequireUniqueEmail
	opts.Lockout = LockoutOptions{
		AllowedForNewUsers:      cfg.Lockout.AllowedForNewUsers,
		MaxFailedAccessAttempts: cfg.Lockout.MaxFailedAccessAttempts,
		DefaultLockoutTimeSpan:  cfg.Lockout.DefaultLockoutTimeSpan,
	}
	return opts
}

func (o Options) withDefaults() Options {
	if o.Describer == nil {
		o.Describer = store.DefaultErrorDescriber{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
