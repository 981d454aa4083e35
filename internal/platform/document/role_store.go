package document

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
	"github.com/ar0311/identity-docstore/internal/store"
	"github.com/google/uuid"
)

// RoleStore implements store.RoleStore over a document session.
type RoleStore[K comparable] struct {
	session   *docstore.Session
	keys      store.KeyCodec[K]
	autoSave  bool
	describer store.ErrorDescriber
	logger    *slog.Logger
	disposed  atomic.Bool
}

var (
	_ store.RoleStore[string]    = (*RoleStore[string])(nil)
	_ store.RoleStore[uuid.UUID] = (*RoleStore[uuid.UUID])(nil)
	_ store.RoleStore[int64]     = (*RoleStore[int64])(nil)
)

// NewRoleStore creates a role store bound to session.
// It panics if session is nil or keys has no Encode/Decode functions.
func NewRoleStore[K comparable](session *docstore.Session, keys store.KeyCodec[K], opts Options) *RoleStore[K] {
	if session == nil {
		panic("session cannot be nil")
	}
	if keys.Encode == nil || keys.Decode == nil {
		panic("key codec must define Encode and Decode")
	}
	opts = opts.withDefaults()

	return &RoleStore[K]{
		session:   session,
		keys:      keys,
		autoSave:  opts.AutoSaveChanges,
		describer: opts.Describer,
		logger:    opts.Logger.With(slog.String("component", "role_store")),
	}
}

// Close marks the store disposed.
func (s *RoleStore[K]) Close() error {
	s.disposed.Store(true)
	return nil
}

func (s *RoleStore[K]) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.disposed.Load() {
		return store.ErrDisposed
	}
	return nil
}

func (s *RoleStore[K]) guardRole(ctx context.Context, role *domain.Role[K]) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if role == nil {
		return store.NilArgument("role")
	}
	return nil
}

// Create implements store.RoleCRUD.
func (s *RoleStore[K]) Create(ctx context.Context, role *domain.Role[K]) (store.Result, error) {
	if err := s.guardRole(ctx, role); err != nil {
		return store.Result{}, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	id := s.keys.ToString(role.ID)
	if id == "" {
		return store.Result{}, store.InvalidArgument("role.ID")
	}

	if err := s.session.Store(ctx, role, id); err != nil {
		return store.Result{}, store.NewStoreError("role", "create", "failed to store role", err)
	}
	if s.autoSave {
		if err := s.session.SaveChanges(ctx); err != nil {
			log.Error("failed to create role",
				slog.String("role_id", id),
				slog.String("error", err.Error()))
			return store.Result{}, store.NewStoreError("role", "create", "failed to save changes", err)
		}
	}

	log.Debug("role created", slog.String("role_id", id), slog.String("role_name", role.Name))
	return store.Success(), nil
}

// Update implements store.RoleCRUD.
func (s *RoleStore[K]) Update(ctx context.Context, role *domain.Role[K]) (store.Result, error) {
	if err := s.guardRole(ctx, role); err != nil {
		return store.Result{}, err
	}
	if !s.session.IsTracked(role) {
		return store.Result{}, store.NewStoreError("role", "update", "role was not loaded in this session", docstore.ErrNotTracked)
	}

	role.ConcurrencyStamp = uuid.NewString()

	if !s.autoSave {
		return store.Success(), nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	return commit(ctx, s.session, s.describer, log, "role", "update", s.keys.ToString(role.ID))
}

// Delete implements store.RoleCRUD. User links to the role are left in
// place and report the name they were made with from then on.
func (s *RoleStore[K]) Delete(ctx context.Context, role *domain.Role[K]) (store.Result, error) {
	if err := s.guardRole(ctx, role); err != nil {
		return store.Result{}, err
	}
	if err := s.session.Delete(role); err != nil {
		return store.Result{}, store.NewStoreError("role", "delete", "failed to delete role", err)
	}

	if !s.autoSave {
		return store.Success(), nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	return commit(ctx, s.session, s.describer, log, "role", "delete", s.keys.ToString(role.ID))
}

// SaveChanges implements store.RoleCRUD.
func (s *RoleStore[K]) SaveChanges(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	return saveChanges(ctx, s.session)
}

// FindByID implements store.RoleCRUD.
func (s *RoleStore[K]) FindByID(ctx context.Context, roleID string) (*domain.Role[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	id, err := s.keys.FromString(roleID)
	if err != nil {
		return nil, err
	}
	encoded := s.keys.ToString(id)
	if encoded == "" {
		return nil, store.ErrRoleNotFound
	}

	role, err := docstore.Load[domain.Role[K]](ctx, s.session, encoded)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, store.ErrRoleNotFound
		}
		return nil, store.NewStoreError("role", "find", "failed to load role", err)
	}
	return role, nil
}

// FindByName implements store.RoleCRUD.
func (s *RoleStore[K]) FindByName(ctx context.Context, normalizedRoleName string) (*domain.Role[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	role, err := docstore.Query[domain.Role[K]](s.session).
		Where(func(r *domain.Role[K]) bool { return r.NormalizedName == normalizedRoleName }).
		FirstOrDefault(ctx)
	if err != nil {
		return nil, store.NewStoreError("role", "find", "failed to query roles", err)
	}
	if role == nil {
		return nil, store.ErrRoleNotFound
	}
	return role, nil
}

// Roles implements store.QueryableRoleStore.
func (s *RoleStore[K]) Roles(ctx context.Context, match func(*domain.Role[K]) bool) ([]*domain.Role[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	q := docstore.Query[domain.Role[K]](s.session)
	if match != nil {
		q = q.Where(match)
	}
	roles, err := q.ToList(ctx)
	if err != nil {
		return nil, store.NewStoreError("role", "query", "failed to query roles", err)
	}
	return roles, nil
}

// GetRoleID returns the role key in string form.
func (s *RoleStore[K]) GetRoleID(ctx context.Context, role *domain.Role[K]) (string, error) {
	if err := s.guardRole(ctx, role); err != nil {
		return "", err
	}
	return s.keys.ToString(role.ID), nil
}

// GetRoleName returns the display name.
func (s *RoleStore[K]) GetRoleName(ctx context.Context, role *domain.Role[K]) (string, error) {
	if err := s.guardRole(ctx, role); err != nil {
		return "", err
	}
	return role.Name, nil
}

// SetRoleName renames the role in memory. Users link by id, so they follow
// the new name once the role is committed.
func (s *RoleStore[K]) SetRoleName(ctx context.Context, role *domain.Role[K], roleName string) error {
	if err := s.guardRole(ctx, role); err != nil {
		return err
	}
	role.Name = roleName
	return nil
}

// GetNormalizedRoleName returns the lookup form of the name.
func (s *RoleStore[K]) GetNormalizedRoleName(ctx context.Context, role *domain.Role[K]) (string, error) {
	if err := s.guardRole(ctx, role); err != nil {
		return "", err
	}
	return role.NormalizedName, nil
}

// SetNormalizedRoleName sets the lookup form used by FindByName.
func (s *RoleStore[K]) SetNormalizedRoleName(ctx context.Context, role *domain.Role[K], normalizedName string) error {
	if err := s.guardRole(ctx, role); err != nil {
		return err
	}
	role.NormalizedName = normalizedName
	return nil
}

// GetClaims returns a copy of the role's claims.
func (s *RoleStore[K]) GetClaims(ctx context.Context, role *domain.Role[K]) ([]domain.Claim, error) {
	if err := s.guardRole(ctx, role); err != nil {
		return nil, err
	}
	return slices.Clone(role.Claims), nil
}

// AddClaim appends a claim to the role.
func (s *RoleStore[K]) AddClaim(ctx context.Context, role *domain.Role[K], claim domain.Claim) error {
	if err := s.guardRole(ctx, role); err != nil {
		return err
	}
	role.Claims = append(role.Claims, claim)
	return nil
}

// RemoveClaim removes every claim equal to claim.
func (s *RoleStore[K]) RemoveClaim(ctx context.Context, role *domain.Role[K], claim domain.Claim) error {
	if err := s.guardRole(ctx, role); err != nil {
		return err
	}
	role.Claims = slices.DeleteFunc(role.Claims, func(c domain.Claim) bool { return c == claim })
	return nil
}

// ConvertIDToString returns "" for the zero key.
func (s *RoleStore[K]) ConvertIDToString(id K) string {
	return s.keys.ToString(id)
}

// ConvertIDFromString returns the zero key for "".
func (s *RoleStore[K]) ConvertIDFromString(id string) (K, error) {
	return s.keys.FromString(id)
}
