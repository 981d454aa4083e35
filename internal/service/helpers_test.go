package service_test

import (
	"testing"
	"time"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/docstore/memory"
	"github.com/ar0311/identity-docstore/internal/platform/document"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
	"github.com/ar0311/identity-docstore/internal/service"
	"github.com/ar0311/identity-docstore/internal/store"
	"github.com/stretchr/testify/require"
)

// fixture is one scope with both managers over it.
type fixture struct {
	scope *service.Scope[string]
	users *service.UserManager[string]
	roles *service.RoleManager[string]
	logs  *logger.TestLogBuffer
}

// fakeClock is a settable clock for lockout tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T, backend docstore.Backend, opts service.Options) *fixture {
	t.Helper()

	log, buf := logger.GetTestLogger(t)
	opts.Logger = log

	storeOpts := document.DefaultOptions()
	storeOpts.Logger = log

	reg := document.AddStores(service.NewRegistry[string](log), store.StringKeys(), storeOpts)
	scope, err := reg.NewScope(backend)
	require.NoError(t, err)
	t.Cleanup(func() { _ = scope.Close() })

	return &fixture{
		scope: scope,
		users: service.NewUserManager(scope.Users, opts),
		roles: service.NewRoleManager(scope.Roles, opts),
		logs:  buf,
	}
}

func newBackend() *memory.Backend {
	return memory.New()
}
