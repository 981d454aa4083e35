package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/ar0311/identity-docstore/internal/config"
	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/platform/document"
	"github.com/ar0311/identity-docstore/internal/service"
	"github.com/ar0311/identity-docstore/internal/store"
	"github.com/google/uuid"
)

// identityCommands is the key-type independent face of identity[K]; the
// configured key type picks K once at startup.
type identityCommands interface {
	CreateUser(ctx context.Context, userName, email string) (string, error)
	FindUser(ctx context.Context, userName, email string) (any, error)
	DeleteUser(ctx context.Context, userName string) error
	UnlockUser(ctx context.Context, userName string) error
	AddToRole(ctx context.Context, userName, roleName string) error
	RemoveFromRole(ctx context.Context, userName, roleName string) error
	CreateRole(ctx context.Context, name string) (string, error)
	DeleteRole(ctx context.Context, name string) error
	ListRoles(ctx context.Context) ([]string, error)
	UsersInRole(ctx context.Context, roleName string) ([]string, error)
}

func newIdentityCommands(cfg *config.Config, backend docstore.Backend, log *slog.Logger) (identityCommands, error) {
	storeOpts := document.DefaultOptions()
	storeOpts.AutoSaveChanges = cfg.Store.AutoSaveChanges
	storeOpts.Logger = log

	opts := service.OptionsFromConfig(cfg.Identity)
	opts.Logger = log

	switch cfg.Identity.KeyType {
	case "string":
		return newIdentity(backend, store.StringKeys(), uuid.NewString, storeOpts, opts, log), nil
	case "uuid":
		return newIdentity(backend, store.UUIDKeys(), uuid.New, storeOpts, opts, log), nil
	case "int64":
		return newIdentity(backend, store.Int64Keys(), randomInt64Key, storeOpts, opts, log), nil
	default:
		return nil, fmt.Errorf("unsupported key type %q", cfg.Identity.KeyType)
	}
}

// randomInt64Key derives a positive key from a random UUID.
func randomInt64Key() int64 {
	u := uuid.New()
	return int64(binary.BigEndian.Uint64(u[:8]) >> 1)
}

// identity runs CLI operations through the managers, one scope per
// operation.
type identity[K comparable] struct {
	backend  docstore.Backend
	registry *service.Registry[K]
	opts     service.Options
	newID    func() K
	autoSave bool
}

func newIdentity[K comparable](
	backend docstore.Backend,
	keys store.KeyCodec[K],
	newID func() K,
	storeOpts document.Options,
	opts service.Options,
	log *slog.Logger,
) *identity[K] {
	return &identity[K]{
		backend:  backend,
		registry: document.AddStores(service.NewRegistry[K](log), keys, storeOpts),
		opts:     opts,
		newID:    newID,
		autoSave: storeOpts.AutoSaveChanges,
	}
}

// managers holds one scope and the managers built over it.
type managers[K comparable] struct {
	scope *service.Scope[K]
	users *service.UserManager[K]
	roles *service.RoleManager[K]
}

// with opens a scope, runs fn and, when auto-save is off, commits whatever
// fn left pending.
func (i *identity[K]) with(ctx context.Context, fn func(m managers[K]) error) error {
	scope, err := i.registry.NewScope(i.backend)
	if err != nil {
		return err
	}
	defer func() {
		_ = scope.Close()
	}()

	m := managers[K]{
		scope: scope,
		users: service.NewUserManager(scope.Users, i.opts),
		roles: service.NewRoleManager(scope.Roles, i.opts),
	}
	if err := fn(m); err != nil {
		return err
	}
	if !i.autoSave {
		return scope.Users.SaveChanges(ctx)
	}
	return nil
}

func resultErr(res store.Result, err error) error {
	if err != nil {
		return err
	}
	return res.Err()
}

func (i *identity[K]) CreateUser(ctx context.Context, userName, email string) (string, error) {
	user := domain.NewUser(i.newID(), userName)
	user.Email = email
	err := i.with(ctx, func(m managers[K]) error {
		return resultErr(m.users.Create(ctx, user))
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprint(user.ID), nil
}

// FindUser looks a user up by email when one is given, by name otherwise.
func (i *identity[K]) FindUser(ctx context.Context, userName, email string) (any, error) {
	var user *domain.User[K]
	err := i.with(ctx, func(m managers[K]) error {
		var err error
		if email != "" {
			user, err = m.users.FindByEmail(ctx, email)
		} else {
			user, err = m.users.FindByName(ctx, userName)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (i *identity[K]) DeleteUser(ctx context.Context, userName string) error {
	return i.with(ctx, func(m managers[K]) error {
		user, err := m.users.FindByName(ctx, userName)
		if err != nil {
			return err
		}
		return resultErr(m.users.Delete(ctx, user))
	})
}

// UnlockUser clears the lockout end and the failed attempt counter.
func (i *identity[K]) UnlockUser(ctx context.Context, userName string) error {
	return i.with(ctx, func(m managers[K]) error {
		user, err := m.users.FindByName(ctx, userName)
		if err != nil {
			return err
		}
		if user.LockoutEnabled {
			if err := resultErr(m.users.SetLockoutEnd(ctx, user, nil)); err != nil {
				return err
			}
		}
		return resultErr(m.users.ResetAccessFailedCount(ctx, user))
	})
}

func (i *identity[K]) AddToRole(ctx context.Context, userName, roleName string) error {
	return i.with(ctx, func(m managers[K]) error {
		user, err := m.users.FindByName(ctx, userName)
		if err != nil {
			return err
		}
		return resultErr(m.users.AddToRole(ctx, user, roleName))
	})
}

func (i *identity[K]) RemoveFromRole(ctx context.Context, userName, roleName string) error {
	return i.with(ctx, func(m managers[K]) error {
		user, err := m.users.FindByName(ctx, userName)
		if err != nil {
			return err
		}
		return resultErr(m.users.RemoveFromRole(ctx, user, roleName))
	})
}

func (i *identity[K]) CreateRole(ctx context.Context, name string) (string, error) {
	role := domain.NewRole(i.newID(), name)
	err := i.with(ctx, func(m managers[K]) error {
		return resultErr(m.roles.Create(ctx, role))
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprint(role.ID), nil
}

func (i *identity[K]) DeleteRole(ctx context.Context, name string) error {
	return i.with(ctx, func(m managers[K]) error {
		role, err := m.roles.FindByName(ctx, name)
		if err != nil {
			return err
		}
		return resultErr(m.roles.Delete(ctx, role))
	})
}

func (i *identity[K]) ListRoles(ctx context.Context) ([]string, error) {
	var names []string
	err := i.with(ctx, func(m managers[K]) error {
		roles, err := m.roles.Roles(ctx, nil)
		if err != nil {
			return err
		}
		for _, r := range roles {
			names = append(names, r.Name)
		}
		return nil
	})
	return names, err
}

func (i *identity[K]) UsersInRole(ctx context.Context, roleName string) ([]string, error) {
	var names []string
	err := i.with(ctx, func(m managers[K]) error {
		users, err := m.users.GetUsersInRole(ctx, roleName)
		if err != nil {
			return err
		}
		for _, u := range users {
			names = append(names, u.UserName)
		}
		return nil
	})
	return names, err
}
