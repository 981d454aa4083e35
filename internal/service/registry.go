package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/store"
)

// UserStoreFactory builds a user store bound to one session.
type UserStoreFactory[K comparable] func(session *docstore.Session) store.UserStore[K]

// RoleStoreFactory builds a role store bound to one session.
type RoleStoreFactory[K comparable] func(session *docstore.Session) store.RoleStore[K]

// Registry holds the store factories for one key type. The key type is
// fixed at compile time by K; a store implementation installs itself by
// setting both factories.
type Registry[K comparable] struct {
	NewUserStore UserStoreFactory[K]
	NewRoleStore RoleStoreFactory[K]

	// SessionOptions are applied to every session NewScope opens.
	SessionOptions []docstore.SessionOption

	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry[K comparable](logger *slog.Logger) *Registry[K] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry[K]{logger: logger.With(slog.String("component", "identity_registry"))}
}

// Scope is one document session with the stores bound to it. Open one per
// logical request; it is not safe for concurrent use.
type Scope[K comparable] struct {
	Session *docstore.Session
	Users   store.UserStore[K]
	Roles   store.RoleStore[K]
}

// NewScope opens a session on backend and builds both stores over it.
func (r *Registry[K]) NewScope(backend docstore.Backend) (*Scope[K], error) {
	if backend == nil {
		return nil, store.NilArgument("backend")
	}
	if r.NewUserStore == nil || r.NewRoleStore == nil {
		return nil, fmt.Errorf("%w for key type %T", ErrStoresNotRegistered, *new(K))
	}

	session := docstore.NewSession(backend, r.SessionOptions...)
	r.logger.Debug("opened identity scope")
	return &Scope[K]{
		Session: session,
		Users:   r.NewUserStore(session),
		Roles:   r.NewRoleStore(session),
	}, nil
}

// Close disposes both stores. The backend stays open.
func (s *Scope[K]) Close() error {
	return errors.Join(s.Users.Close(), s.Roles.Close())
}
