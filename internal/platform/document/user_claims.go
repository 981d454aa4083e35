package document

import (
	"context"
	"slices"

	"github.com/ar0311/identity-docstore/internal/domain"
)

// GetClaims returns a copy of the user's claims.
func (s *UserStore[K]) GetClaims(ctx context.Context, user *domain.User[K]) ([]domain.Claim, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return nil, err
	}
	return slices.Clone(user.Claims), nil
}

// AddClaims appends claims to the user. Duplicates are kept.
func (s *UserStore[K]) AddClaims(ctx context.Context, user *domain.User[K], claims []domain.Claim) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.Claims = append(user.Claims, claims...)
	return nil
}

// ReplaceClaim removes every claim equal to claim, then appends newClaim.
func (s *UserStore[K]) ReplaceClaim(ctx context.Context, user *domain.User[K], claim, newClaim domain.Claim) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.Claims = slices.DeleteFunc(user.Claims, func(c domain.Claim) bool { return c == claim })
	user.Claims = append(user.Claims, newClaim)
	return nil
}

// RemoveClaims removes every claim equal to any of claims.
func (s *UserStore[K]) RemoveClaims(ctx context.Context, user *domain.User[K], claims []domain.Claim) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.Claims = slices.DeleteFunc(user.Claims, func(c domain.Claim) bool {
		return slices.Contains(claims, c)
	})
	return nil
}

// GetUsersForClaim returns the users holding an exact match of claim.
func (s *UserStore[K]) GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.list(ctx, func(u *domain.User[K]) bool {
		return slices.Contains(u.Claims, claim)
	})
}
