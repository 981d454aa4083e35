package document

import (
	"context"
	"slices"

	"github.com/ar0311/identity-docstore/internal/domain"
)

// AddLogin appends the login. It does not check whether the login is
// already present on this or another user; UserManager does.
func (s *UserStore[K]) AddLogin(ctx context.Context, user *domain.User[K], login domain.Login) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.Logins = append(user.Logins, login)
	return nil
}

// RemoveLogin removes every login matching the provider and key.
func (s *UserStore[K]) RemoveLogin(ctx context.Context, user *domain.User[K], loginProvider, providerKey string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.Logins = slices.DeleteFunc(user.Logins, func(l domain.Login) bool {
		return l.Matches(loginProvider, providerKey)
	})
	return nil
}

// GetLogins returns a copy of the user's logins.
func (s *UserStore[K]) GetLogins(ctx context.Context, user *domain.User[K]) ([]domain.Login, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return nil, err
	}
	return slices.Clone(user.Logins), nil
}

// FindByLogin returns the first user holding the login.
func (s *UserStore[K]) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.first(ctx, func(u *domain.User[K]) bool {
		return slices.ContainsFunc(u.Logins, func(l domain.Login) bool {
			return l.Matches(loginProvider, providerKey)
		})
	})
}
