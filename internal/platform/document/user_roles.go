package document

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/store"
)

// AddToRole links the user to the role named exactly roleName. The role
// must already exist. Only the in-memory user changes.
func (s *UserStore[K]) AddToRole(ctx context.Context, user *domain.User[K], roleName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if isBlank(roleName) {
		return store.InvalidArgument("roleName")
	}

	role, err := docstore.Query[domain.Role[K]](s.session).
		Where(func(r *domain.Role[K]) bool { return r.Name == roleName }).
		SingleOrDefault(ctx)
	if err != nil {
		return store.NewStoreError("role", "find", "failed to query roles", err)
	}
	if role == nil {
		return fmt.Errorf("%w: role %q not found", store.ErrInvalidOperation, roleName)
	}

	user.Roles = append(user.Roles, domain.RoleRef[K]{RoleID: role.ID, Name: role.Name})
	return nil
}

// roleName resolves a link to the current name of the role it points to.
// Links to roles that no longer exist keep the name they were made with.
func (s *UserStore[K]) roleName(ctx context.Context, ref domain.RoleRef[K]) (string, error) {
	role, err := docstore.Load[domain.Role[K]](ctx, s.session, s.keys.ToString(ref.RoleID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ref.Name, nil
		}
		return "", store.NewStoreError("role", "find", "failed to load linked role", err)
	}
	return role.Name, nil
}

// roleNames resolves every link of the user, in link order.
func (s *UserStore[K]) roleNames(ctx context.Context, user *domain.User[K]) ([]string, error) {
	names := make([]string, len(user.Roles))
	for i, ref := range user.Roles {
		name, err := s.roleName(ctx, ref)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// RemoveFromRole drops every link whose role name matches roleName ignoring
// case.
func (s *UserStore[K]) RemoveFromRole(ctx context.Context, user *domain.User[K], roleName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if isBlank(roleName) {
		return store.InvalidArgument("roleName")
	}

	names, err := s.roleNames(ctx, user)
	if err != nil {
		return err
	}
	kept := user.Roles[:0]
	for i, ref := range user.Roles {
		if !sameName(names[i], roleName) {
			kept = append(kept, ref)
		}
	}
	clear(user.Roles[len(kept):])
	user.Roles = kept
	return nil
}

// GetRoles returns the current names of the roles the user is linked to.
func (s *UserStore[K]) GetRoles(ctx context.Context, user *domain.User[K]) ([]string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return nil, err
	}
	return s.roleNames(ctx, user)
}

// IsInRole reports whether the user is linked to a role whose name matches
// roleName ignoring case.
func (s *UserStore[K]) IsInRole(ctx context.Context, user *domain.User[K], roleName string) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}
	if isBlank(roleName) {
		return false, store.InvalidArgument("roleName")
	}

	for _, ref := range user.Roles {
		name, err := s.roleName(ctx, ref)
		if err != nil {
			return false, err
		}
		if sameName(name, roleName) {
			return true, nil
		}
	}
	return false, nil
}

// GetUsersInRole returns the users linked to the role named exactly
// roleName. A role that does not exist has no users.
func (s *UserStore[K]) GetUsersInRole(ctx context.Context, roleName string) ([]*domain.User[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	if roleName == "" {
		return nil, store.NilArgument("roleName")
	}

	role, err := docstore.Query[domain.Role[K]](s.session).
		Where(func(r *domain.Role[K]) bool { return r.Name == roleName }).
		FirstOrDefault(ctx)
	if err != nil {
		return nil, store.NewStoreError("role", "find", "failed to query roles", err)
	}
	if role == nil {
		return nil, nil
	}

	return s.list(ctx, func(u *domain.User[K]) bool {
		return slices.ContainsFunc(u.Roles, func(r domain.RoleRef[K]) bool {
			return r.RoleID == role.ID
		})
	})
}
