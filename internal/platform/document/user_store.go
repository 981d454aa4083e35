package document

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
	"github.com/ar0311/identity-docstore/internal/store"
	"github.com/google/uuid"
)

// UserStore implements store.UserStore over a document session.
type UserStore[K comparable] struct {
	session   *docstore.Session
	keys      store.KeyCodec[K]
	autoSave  bool
	describer store.ErrorDescriber
	logger    *slog.Logger
	disposed  atomic.Bool
}

// Compile-time checks for the key types the module ships codecs for.
var (
	_ store.UserStore[string]    = (*UserStore[string])(nil)
	_ store.UserStore[uuid.UUID] = (*UserStore[uuid.UUID])(nil)
	_ store.UserStore[int64]     = (*UserStore[int64])(nil)
)

// NewUserStore creates a user store bound to session.
// It panics if session is nil or keys has no Encode/Decode functions.
func NewUserStore[K comparable](session *docstore.Session, keys store.KeyCodec[K], opts Options) *UserStore[K] {
	if session == nil {
		panic("session cannot be nil")
	}
	if keys.Encode == nil || keys.Decode == nil {
		panic("key codec must define Encode and Decode")
	}
	opts = opts.withDefaults()

	return &UserStore[K]{
		session:   session,
		keys:      keys,
		autoSave:  opts.AutoSaveChanges,
		describer: opts.Describer,
		logger:    opts.Logger.With(slog.String("component", "user_store")),
	}
}

// Session returns the session the store works in.
func (s *UserStore[K]) Session() *docstore.Session {
	return s.session
}

// AutoSaveChanges reports whether Create, Update and Delete commit.
func (s *UserStore[K]) AutoSaveChanges() bool {
	return s.autoSave
}

// Close marks the store disposed. It does not close the session or backend,
// which belong to the caller.
func (s *UserStore[K]) Close() error {
	s.disposed.Store(true)
	return nil
}

// guard runs the checks every operation starts with, in order:
// cancellation, disposal.
func (s *UserStore[K]) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.disposed.Load() {
		return store.ErrDisposed
	}
	return nil
}

// guardUser is guard followed by the nil user check.
func (s *UserStore[K]) guardUser(ctx context.Context, user *domain.User[K]) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if user == nil {
		return store.NilArgument("user")
	}
	return nil
}

// Create implements store.UserCRUD.
func (s *UserStore[K]) Create(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return store.Result{}, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	id := s.keys.ToString(user.ID)
	if id == "" {
		return store.Result{}, store.InvalidArgument("user.ID")
	}

	if err := s.session.Store(ctx, user, id); err != nil {
		return store.Result{}, store.NewStoreError("user", "create", "failed to store user", err)
	}

	if s.autoSave {
		if err := s.session.SaveChanges(ctx); err != nil {
			log.Error("failed to create user",
				slog.String("user_id", id),
				slog.String("error", err.Error()))
			return store.Result{}, store.NewStoreError("user", "create", "failed to save changes", err)
		}
	}

	log.Debug("user created", slog.String("user_id", id))
	return store.Success(), nil
}

// Update implements store.UserCRUD. The concurrency stamp is rotated before
// the commit so a successful update always leaves a new stamp behind.
func (s *UserStore[K]) Update(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return store.Result{}, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	id := s.keys.ToString(user.ID)

	if !s.session.IsTracked(user) {
		return store.Result{}, store.NewStoreError("user", "update", "user was not loaded in this session", docstore.ErrNotTracked)
	}

	user.ConcurrencyStamp = uuid.NewString()

	if !s.autoSave {
		return store.Success(), nil
	}
	res, err := commit(ctx, s.session, s.describer, log, "user", "update", id)
	if err == nil && res.Succeeded {
		log.Debug("user updated", slog.String("user_id", id))
	}
	return res, err
}

// Delete implements store.UserCRUD. The user's token documents are deleted
// in the same commit so a later user with the same key starts without them.
func (s *UserStore[K]) Delete(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return store.Result{}, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	id := s.keys.ToString(user.ID)

	if !s.session.IsTracked(user) {
		return store.Result{}, store.NewStoreError("user", "delete", "failed to delete user", docstore.ErrNotTracked)
	}
	if err := s.deleteTokens(ctx, user); err != nil {
		return store.Result{}, err
	}
	if err := s.session.Delete(user); err != nil {
		return store.Result{}, store.NewStoreError("user", "delete", "failed to delete user", err)
	}

	if !s.autoSave {
		return store.Success(), nil
	}
	res, err := commit(ctx, s.session, s.describer, log, "user", "delete", id)
	if err == nil && res.Succeeded {
		log.Debug("user deleted", slog.String("user_id", id))
	}
	return res, err
}

// SaveChanges implements store.UserCRUD.
func (s *UserStore[K]) SaveChanges(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	return saveChanges(ctx, s.session)
}

// FindByID implements store.UserCRUD.
func (s *UserStore[K]) FindByID(ctx context.Context, userID string) (*domain.User[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	id, err := s.ConvertIDFromString(userID)
	if err != nil {
		return nil, err
	}
	encoded := s.keys.ToString(id)
	if encoded == "" {
		return nil, store.ErrUserNotFound
	}

	user, err := docstore.Load[domain.User[K]](ctx, s.session, encoded)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", "find", "failed to load user", err)
	}
	return user, nil
}

// FindByName implements store.UserCRUD.
func (s *UserStore[K]) FindByName(ctx context.Context, normalizedUserName string) (*domain.User[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.first(ctx, func(u *domain.User[K]) bool {
		return u.NormalizedUserName == normalizedUserName
	})
}

// first returns the first user matching pred, or ErrUserNotFound.
func (s *UserStore[K]) first(ctx context.Context, pred func(*domain.User[K]) bool) (*domain.User[K], error) {
	user, err := docstore.Query[domain.User[K]](s.session).Where(pred).FirstOrDefault(ctx)
	if err != nil {
		return nil, store.NewStoreError("user", "find", "failed to query users", err)
	}
	if user == nil {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// list returns every user matching pred.
func (s *UserStore[K]) list(ctx context.Context, pred func(*domain.User[K]) bool) ([]*domain.User[K], error) {
	q := docstore.Query[domain.User[K]](s.session)
	if pred != nil {
		q = q.Where(pred)
	}
	users, err := q.ToList(ctx)
	if err != nil {
		return nil, store.NewStoreError("user", "query", "failed to query users", err)
	}
	return users, nil
}

// Users implements store.QueryableUserStore.
func (s *UserStore[K]) Users(ctx context.Context, match func(*domain.User[K]) bool) ([]*domain.User[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.list(ctx, match)
}

// GetUserID implements store.UserCRUD.
func (s *UserStore[K]) GetUserID(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return s.ConvertIDToString(user.ID), nil
}

// GetUserName implements store.UserCRUD.
func (s *UserStore[K]) GetUserName(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return user.UserName, nil
}

// SetUserName implements store.UserCRUD.
func (s *UserStore[K]) SetUserName(ctx context.Context, user *domain.User[K], userName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.UserName = userName
	return nil
}

// GetNormalizedUserName implements store.UserCRUD.
func (s *UserStore[K]) GetNormalizedUserName(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return user.NormalizedUserName, nil
}

// SetNormalizedUserName implements store.UserCRUD.
func (s *UserStore[K]) SetNormalizedUserName(ctx context.Context, user *domain.User[K], normalizedName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.NormalizedUserName = normalizedName
	return nil
}

// ConvertIDToString returns "" for the zero key.
func (s *UserStore[K]) ConvertIDToString(id K) string {
	return s.keys.ToString(id)
}

// ConvertIDFromString returns the zero key for "".
func (s *UserStore[K]) ConvertIDFromString(id string) (K, error) {
	return s.keys.FromString(id)
}
