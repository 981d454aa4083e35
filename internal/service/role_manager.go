package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
	"github.com/ar0311/identity-docstore/internal/store"
)

// RoleManager applies identity policy on top of a role store.
type RoleManager[K comparable] struct {
	store     store.RoleStore[K]
	describer store.ErrorDescriber
	logger    *slog.Logger
}

// NewRoleManager creates a manager over roles. It panics on a nil store.
func NewRoleManager[K comparable](roles store.RoleStore[K], opts Options) *RoleManager[K] {
	if roles == nil {
		panic("service: nil role store")
	}
	opts = opts.withDefaults()
	return &RoleManager[K]{
		store:     roles,
		describer: opts.Describer,
		logger:    opts.Logger.With(slog.String("component", "role_manager")),
	}
}

// Store returns the underlying role store.
func (m *RoleManager[K]) Store() store.RoleStore[K] {
	return m.store
}

// Create normalizes and validates the role and creates it.
func (m *RoleManager[K]) Create(ctx context.Context, role *domain.Role[K]) (store.Result, error) {
	if role == nil {
		return store.Result{}, store.NilArgument("role")
	}

	res, err := m.normalizeAndValidate(ctx, role)
	if err != nil || !res.Succeeded {
		return res, err
	}

	res, err = m.store.Create(ctx, role)
	if err != nil {
		return res, fmt.Errorf("failed to create role: %w", err)
	}
	logger.FromContextOrDefault(ctx, m.logger).Debug("role created",
		slog.String("role_name", role.Name),
		slog.String("result", res.String()))
	return res, nil
}

// Update normalizes and validates the role and commits it.
func (m *RoleManager[K]) Update(ctx context.Context, role *domain.Role[K]) (store.Result, error) {
	if role == nil {
		return store.Result{}, store.NilArgument("role")
	}

	res, err := m.normalizeAndValidate(ctx, role)
	if err != nil || !res.Succeeded {
		return res, err
	}

	res, err = m.store.Update(ctx, role)
	if err != nil {
		return res, fmt.Errorf("failed to update role: %w", err)
	}
	return res, nil
}

// Delete removes the role. Users keep their links to it.
func (m *RoleManager[K]) Delete(ctx context.Context, role *domain.Role[K]) (store.Result, error) {
	if role == nil {
		return store.Result{}, store.NilArgument("role")
	}
	res, err := m.store.Delete(ctx, role)
	if err != nil {
		return res, fmt.Errorf("failed to delete role: %w", err)
	}
	return res, nil
}

// FindByID loads the role by its string id.
func (m *RoleManager[K]) FindByID(ctx context.Context, roleID string) (*domain.Role[K], error) {
	return m.store.FindByID(ctx, roleID)
}

// FindByName normalizes name and looks the role up.
func (m *RoleManager[K]) FindByName(ctx context.Context, name string) (*domain.Role[K], error) {
	if name == "" {
		return nil, store.NilArgument("roleName")
	}
	return m.store.FindByName(ctx, Normalize(name))
}

// Exists reports whether a role with the given name exists.
func (m *RoleManager[K]) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.FindByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrRoleNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Roles returns the roles matching match, or all roles when match is nil.
func (m *RoleManager[K]) Roles(ctx context.Context, match func(*domain.Role[K]) bool) ([]*domain.Role[K], error) {
	return m.store.Roles(ctx, match)
}

// SetRoleName renames the role and commits it.
func (m *RoleManager[K]) SetRoleName(ctx context.Context, role *domain.Role[K], name string) (store.Result, error) {
	if err := m.store.SetRoleName(ctx, role, name); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, role)
}

// AddClaim adds a claim to the role and commits it.
func (m *RoleManager[K]) AddClaim(ctx context.Context, role *domain.Role[K], claim domain.Claim) (store.Result, error) {
	if err := claim.Validate(); err != nil {
		return store.Result{}, fmt.Errorf("%w: %w", store.ErrInvalidArgument, err)
	}
	if err := m.store.AddClaim(ctx, role, claim); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, role)
}

// RemoveClaim removes the claim from the role and commits it.
func (m *RoleManager[K]) RemoveClaim(ctx context.Context, role *domain.Role[K], claim domain.Claim) (store.Result, error) {
	if err := m.store.RemoveClaim(ctx, role, claim); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, role)
}

// GetClaims returns a copy of the role's claims.
func (m *RoleManager[K]) GetClaims(ctx context.Context, role *domain.Role[K]) ([]domain.Claim, error) {
	return m.store.GetClaims(ctx, role)
}

func (m *RoleManager[K]) normalizeAndValidate(ctx context.Context, role *domain.Role[K]) (store.Result, error) {
	if err := m.store.SetNormalizedRoleName(ctx, role, Normalize(role.Name)); err != nil {
		return store.Result{}, err
	}

	if strings.TrimSpace(role.Name) == "" {
		return store.Failed(m.describer.InvalidRoleName(role.Name)), nil
	}
	if err := role.Validate(); err != nil {
		if errors.Is(err, domain.ErrInvalidRoleName) {
			return store.Failed(m.describer.InvalidRoleName(role.Name)), nil
		}
		return store.Result{}, err
	}

	others, err := m.store.Roles(ctx, func(r *domain.Role[K]) bool {
		return r.ID != role.ID && r.NormalizedName == role.NormalizedName
	})
	if err != nil {
		return store.Result{}, err
	}
	if len(others) > 0 {
		return store.Failed(m.describer.DuplicateRoleName(role.Name)), nil
	}
	return store.Success(), nil
}
