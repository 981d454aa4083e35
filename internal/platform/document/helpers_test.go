package document_test

import (
	"testing"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/docstore/memory"
	"github.com/ar0311/identity-docstore/internal/platform/document"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
	"github.com/ar0311/identity-docstore/internal/store"
)

// scope is one session with the stores bound to it, the shape a request
// handler sees.
type scope struct {
	session *docstore.Session
	users   *document.UserStore[string]
	roles   *document.RoleStore[string]
	logs    *logger.TestLogBuffer
}

func newScope(t *testing.T, backend docstore.Backend) *scope {
	t.Helper()
	return newScopeWithOptions(t, backend, document.DefaultOptions())
}

func newScopeWithOptions(t *testing.T, backend docstore.Backend, opts document.Options) *scope {
	t.Helper()

	log, buf := logger.GetTestLogger(t)
	opts.Logger = log

	session := docstore.NewSession(backend, docstore.WithSessionLogger(log))
	return &scope{
		session: session,
		users:   document.NewUserStore(session, store.StringKeys(), opts),
		roles:   document.NewRoleStore(session, store.StringKeys(), opts),
		logs:    buf,
	}
}

func newBackend() *memory.Backend {
	return memory.New()
}
