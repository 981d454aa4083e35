package service_test

import (
	"testing"
	"time"

	"github.com/ar0311/identity-docstore/internal/config"
	"github.com/ar0311/identity-docstore/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts := service.OptionsFromConfig(config.IdentityConfig{
		KeyType:            "uuid",
		RequireUniqueEmail: true,
		Lockout: config.LockoutConfig{
			AllowedForNewUsers:      false,
			MaxFailedAccessAttempts: 7,
			DefaultLockoutTimeSpan:  time.Hour,
		},
	})

	assert.True(t, opts.RequireUniqueEmail)
	assert.False(t, opts.Lockout.AllowedForNewUsers)
	assert.Equal(t, 7, opts.Lockout.MaxFailedAccessAttempts)
	assert.Equal(t, time.Hour, opts.Lockout.DefaultLockoutTimeSpan)
	assert.NotNil(t, opts.Describer)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"alice":             "ALICE",
		"  Bob@Example.com": "BOB@EXAMPLE.COM",
		"straße":            "STRASSE",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, service.Normalize(in), in)
	}
}
