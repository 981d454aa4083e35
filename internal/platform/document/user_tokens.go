package document

import (
	"context"
	"errors"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/store"
)

// Tokens are separate documents keyed by (user, provider, name). Their
// writes are pending in the session like any other change and are committed
// by the next Update or SaveChanges.

// findToken loads the token document, returning nil when there is none.
func (s *UserStore[K]) findToken(ctx context.Context, user *domain.User[K], loginProvider, name string) (*domain.Token[K], string, error) {
	id := domain.TokenID(s.keys.ToString(user.ID), loginProvider, name)
	token, err := docstore.Load[domain.Token[K]](ctx, s.session, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, id, nil
		}
		return nil, id, store.NewStoreError("token", "find", "failed to load token", err)
	}
	return token, id, nil
}

// SetToken updates the token value in place, or stores a new token
// document when the user has none for the provider and name.
func (s *UserStore[K]) SetToken(ctx context.Context, user *domain.User[K], loginProvider, name, value string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	token, id, err := s.findToken(ctx, user, loginProvider, name)
	if err != nil {
		return err
	}
	if token != nil {
		token.Value = value
		return nil
	}

	token = &domain.Token[K]{
		ID:            id,
		UserID:        user.ID,
		LoginProvider: loginProvider,
		Name:          name,
		Value:         value,
	}
	if err := s.session.Store(ctx, token, id); err != nil {
		return store.NewStoreError("token", "create", "failed to store token", err)
	}
	return nil
}

// RemoveToken deletes the token document if there is one.
func (s *UserStore[K]) RemoveToken(ctx context.Context, user *domain.User[K], loginProvider, name string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	token, _, err := s.findToken(ctx, user, loginProvider, name)
	if err != nil || token == nil {
		return err
	}
	if err := s.session.Delete(token); err != nil {
		return store.NewStoreError("token", "delete", "failed to delete token", err)
	}
	return nil
}

// GetToken returns the token value or store.ErrTokenNotFound.
func (s *UserStore[K]) GetToken(ctx context.Context, user *domain.User[K], loginProvider, name string) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	token, _, err := s.findToken(ctx, user, loginProvider, name)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", store.ErrTokenNotFound
	}
	return token.Value, nil
}

// deleteTokens marks every token document of the user for deletion, both
// committed ones and ones set in this session but not yet saved.
func (s *UserStore[K]) deleteTokens(ctx context.Context, user *domain.User[K]) error {
	owned := func(t *domain.Token[K]) bool { return t.UserID == user.ID }

	tokens, err := docstore.Query[domain.Token[K]](s.session).Where(owned).ToList(ctx)
	if err != nil {
		return store.NewStoreError("token", "query", "failed to query tokens", err)
	}
	for _, t := range docstore.Tracked[domain.Token[K]](s.session) {
		if owned(t) {
			tokens = append(tokens, t)
		}
	}

	for _, t := range tokens {
		if err := s.session.Delete(t); err != nil {
			return store.NewStoreError("token", "delete", "failed to delete token", err)
		}
	}
	return nil
}
