package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
	"github.com/ar0311/identity-docstore/internal/store"
	"github.com/google/uuid"
)

// UserManager applies identity policy on top of a user store.
type UserManager[K comparable] struct {
	store     store.UserStore[K]
	opts      Options
	describer store.ErrorDescriber
	logger    *slog.Logger
}

// NewUserManager creates a manager over users. It panics on a nil store.
func NewUserManager[K comparable](users store.UserStore[K], opts Options) *UserManager[K] {
	if users == nil {
		panic("service: nil user store")
	}
	opts = opts.withDefaults()
	return &UserManager[K]{
		store:     users,
		opts:      opts,
		describer: opts.Describer,
		logger:    opts.Logger.With(slog.String("component", "user_manager")),
	}
}

// Store returns the underlying user store.
func (m *UserManager[K]) Store() store.UserStore[K] {
	return m.store
}

func (m *UserManager[K]) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, m.logger)
}

// Create normalizes and validates the user, gives it a security stamp,
// enables lockout when new users allow it, and creates it in the store.
func (m *UserManager[K]) Create(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	if user == nil {
		return store.Result{}, store.NilArgument("user")
	}

	if user.SecurityStamp == "" {
		if err := m.updateSecurityStamp(ctx, user); err != nil {
			return store.Result{}, err
		}
	}
	if m.opts.Lockout.AllowedForNewUsers {
		if err := m.store.SetLockoutEnabled(ctx, user, true); err != nil {
			return store.Result{}, err
		}
	}

	res, err := m.normalizeAndValidate(ctx, user)
	if err != nil || !res.Succeeded {
		return res, err
	}

	res, err = m.store.Create(ctx, user)
	if err != nil {
		m.log(ctx).Error("failed to create user",
			slog.String("user_name", user.UserName),
			slog.String("error", err.Error()))
		return res, fmt.Errorf("failed to create user: %w", err)
	}

	m.log(ctx).Debug("user created",
		slog.String("user_id", m.store.ConvertIDToString(user.ID)),
		slog.String("result", res.String()))
	return res, nil
}

// Update normalizes and validates the user and commits it.
func (m *UserManager[K]) Update(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	if user == nil {
		return store.Result{}, store.NilArgument("user")
	}

	res, err := m.normalizeAndValidate(ctx, user)
	if err != nil || !res.Succeeded {
		return res, err
	}

	res, err = m.store.Update(ctx, user)
	if err != nil {
		return res, fmt.Errorf("failed to update user: %w", err)
	}
	if !res.Succeeded {
		m.log(ctx).Warn("user update failed",
			slog.String("user_id", m.store.ConvertIDToString(user.ID)),
			slog.String("result", res.String()))
	}
	return res, nil
}

// Delete removes the user.
func (m *UserManager[K]) Delete(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	if user == nil {
		return store.Result{}, store.NilArgument("user")
	}
	res, err := m.store.Delete(ctx, user)
	if err != nil {
		return res, fmt.Errorf("failed to delete user: %w", err)
	}
	return res, nil
}

// FindByID loads a user by its string-encoded key.
func (m *UserManager[K]) FindByID(ctx context.Context, userID string) (*domain.User[K], error) {
	return m.store.FindByID(ctx, userID)
}

// FindByName normalizes userName and looks the user up.
func (m *UserManager[K]) FindByName(ctx context.Context, userName string) (*domain.User[K], error) {
	if userName == "" {
		return nil, store.NilArgument("userName")
	}
	return m.store.FindByName(ctx, Normalize(userName))
}

// FindByEmail normalizes email and looks the user up.
func (m *UserManager[K]) FindByEmail(ctx context.Context, email string) (*domain.User[K], error) {
	if email == "" {
		return nil, store.NilArgument("email")
	}
	return m.store.FindByEmail(ctx, Normalize(email))
}

// Users returns the users matching match, or all users when match is nil.
func (m *UserManager[K]) Users(ctx context.Context, match func(*domain.User[K]) bool) ([]*domain.User[K], error) {
	return m.store.Users(ctx, match)
}

// SetUserName renames the user and rotates its security stamp.
func (m *UserManager[K]) SetUserName(ctx context.Context, user *domain.User[K], userName string) (store.Result, error) {
	if err := m.store.SetUserName(ctx, user, userName); err != nil {
		return store.Result{}, err
	}
	if err := m.updateSecurityStamp(ctx, user); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// SetEmail changes the email, clears its confirmation and rotates the
// security stamp.
func (m *UserManager[K]) SetEmail(ctx context.Context, user *domain.User[K], email string) (store.Result, error) {
	if err := m.store.SetEmail(ctx, user, email); err != nil {
		return store.Result{}, err
	}
	if err := m.store.SetEmailConfirmed(ctx, user, false); err != nil {
		return store.Result{}, err
	}
	if err := m.updateSecurityStamp(ctx, user); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// AddToRole links the user to the named role. A user already in the role
// gets a UserAlreadyInRole result.
func (m *UserManager[K]) AddToRole(ctx context.Context, user *domain.User[K], role string) (store.Result, error) {
	in, err := m.store.IsInRole(ctx, user, role)
	if err != nil {
		return store.Result{}, err
	}
	if in {
		return store.Failed(m.describer.UserAlreadyInRole(role)), nil
	}
	if err := m.store.AddToRole(ctx, user, role); err != nil {
		return store.Result{}, fmt.Errorf("failed to add user to role: %w", err)
	}
	return m.Update(ctx, user)
}

// RemoveFromRole unlinks the user from the named role. A user not in the
// role gets a UserNotInRole result.
func (m *UserManager[K]) RemoveFromRole(ctx context.Context, user *domain.User[K], role string) (store.Result, error) {
	in, err := m.store.IsInRole(ctx, user, role)
	if err != nil {
		return store.Result{}, err
	}
	if !in {
		return store.Failed(m.describer.UserNotInRole(role)), nil
	}
	if err := m.store.RemoveFromRole(ctx, user, role); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// IsInRole reports whether the user is linked to the role, ignoring case.
func (m *UserManager[K]) IsInRole(ctx context.Context, user *domain.User[K], role string) (bool, error) {
	return m.store.IsInRole(ctx, user, role)
}

// GetRoles returns the names of the user's roles.
func (m *UserManager[K]) GetRoles(ctx context.Context, user *domain.User[K]) ([]string, error) {
	return m.store.GetRoles(ctx, user)
}

// GetUsersInRole returns the users linked to the role named exactly role.
func (m *UserManager[K]) GetUsersInRole(ctx context.Context, role string) ([]*domain.User[K], error) {
	return m.store.GetUsersInRole(ctx, role)
}

// AddClaim adds a claim and commits the user.
func (m *UserManager[K]) AddClaim(ctx context.Context, user *domain.User[K], claim domain.Claim) (store.Result, error) {
	if err := claim.Validate(); err != nil {
		return store.Result{}, fmt.Errorf("%w: %w", store.ErrInvalidArgument, err)
	}
	if err := m.store.AddClaims(ctx, user, []domain.Claim{claim}); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// ReplaceClaim swaps every copy of claim for newClaim and commits the user.
func (m *UserManager[K]) ReplaceClaim(
	ctx context.Context,
	user *domain.User[K],
	claim, newClaim domain.Claim,
) (store.Result, error) {
	if err := newClaim.Validate(); err != nil {
		return store.Result{}, fmt.Errorf("%w: %w", store.ErrInvalidArgument, err)
	}
	if err := m.store.ReplaceClaim(ctx, user, claim, newClaim); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// RemoveClaim removes every copy of claim and commits the user.
func (m *UserManager[K]) RemoveClaim(ctx context.Context, user *domain.User[K], claim domain.Claim) (store.Result, error) {
	if err := m.store.RemoveClaims(ctx, user, []domain.Claim{claim}); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// GetClaims returns a copy of the user's claims.
func (m *UserManager[K]) GetClaims(ctx context.Context, user *domain.User[K]) ([]domain.Claim, error) {
	return m.store.GetClaims(ctx, user)
}

// GetUsersForClaim returns the users holding claim.
func (m *UserManager[K]) GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User[K], error) {
	return m.store.GetUsersForClaim(ctx, claim)
}

// AddLogin associates an external login with the user. A login already
// held by any user gets a LoginAlreadyAssociated result.
func (m *UserManager[K]) AddLogin(ctx context.Context, user *domain.User[K], login domain.Login) (store.Result, error) {
	if err := login.Validate(); err != nil {
		return store.Result{}, fmt.Errorf("%w: %w", store.ErrInvalidArgument, err)
	}

	_, err := m.store.FindByLogin(ctx, login.LoginProvider, login.ProviderKey)
	switch {
	case err == nil:
		m.log(ctx).Debug("login already associated",
			slog.String("login_provider", login.LoginProvider))
		return store.Failed(m.describer.LoginAlreadyAssociated()), nil
	case !errors.Is(err, store.ErrUserNotFound):
		return store.Result{}, err
	}

	if err := m.store.AddLogin(ctx, user, login); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// RemoveLogin drops the login and rotates the security stamp.
func (m *UserManager[K]) RemoveLogin(
	ctx context.Context,
	user *domain.User[K],
	loginProvider, providerKey string,
) (store.Result, error) {
	if err := m.store.RemoveLogin(ctx, user, loginProvider, providerKey); err != nil {
		return store.Result{}, err
	}
	if err := m.updateSecurityStamp(ctx, user); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// GetLogins returns the user's external logins.
func (m *UserManager[K]) GetLogins(ctx context.Context, user *domain.User[K]) ([]domain.Login, error) {
	return m.store.GetLogins(ctx, user)
}

// FindByLogin returns the user holding the login, or store.ErrUserNotFound.
func (m *UserManager[K]) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User[K], error) {
	return m.store.FindByLogin(ctx, loginProvider, providerKey)
}

// IsLockedOut reports whether lockout is enabled for the user and its
// lockout end lies in the future.
func (m *UserManager[K]) IsLockedOut(ctx context.Context, user *domain.User[K]) (bool, error) {
	enabled, err := m.store.GetLockoutEnabled(ctx, user)
	if err != nil || !enabled {
		return false, err
	}
	end, err := m.store.GetLockoutEnd(ctx, user)
	if err != nil || end == nil {
		return false, err
	}
	return end.After(m.opts.Now()), nil
}

// SetLockoutEnabled turns lockout on or off for the user.
func (m *UserManager[K]) SetLockoutEnabled(ctx context.Context, user *domain.User[K], enabled bool) (store.Result, error) {
	if err := m.store.SetLockoutEnabled(ctx, user, enabled); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// SetLockoutEnd locks the user out until end, or lifts the lockout with
// nil. Users without lockout enabled get a UserLockoutNotEnabled result.
func (m *UserManager[K]) SetLockoutEnd(ctx context.Context, user *domain.User[K], end *time.Time) (store.Result, error) {
	enabled, err := m.store.GetLockoutEnabled(ctx, user)
	if err != nil {
		return store.Result{}, err
	}
	if !enabled {
		return store.Failed(m.describer.UserLockoutNotEnabled()), nil
	}
	if err := m.store.SetLockoutEnd(ctx, user, end); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// AccessFailed records a failed access attempt. Reaching the configured
// maximum locks the user out for the default span and resets the counter.
func (m *UserManager[K]) AccessFailed(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	count, err := m.store.IncrementAccessFailedCount(ctx, user)
	if err != nil {
		return store.Result{}, err
	}

	enabled, err := m.store.GetLockoutEnabled(ctx, user)
	if err != nil {
		return store.Result{}, err
	}
	if !enabled || count < m.opts.Lockout.MaxFailedAccessAttempts {
		return m.Update(ctx, user)
	}

	end := m.opts.Now().Add(m.opts.Lockout.DefaultLockoutTimeSpan)
	m.log(ctx).Warn("user locked out",
		slog.String("user_id", m.store.ConvertIDToString(user.ID)),
		slog.Int("failed_attempts", count),
		slog.Time("lockout_end", end))

	if err := m.store.SetLockoutEnd(ctx, user, &end); err != nil {
		return store.Result{}, err
	}
	if err := m.store.ResetAccessFailedCount(ctx, user); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// ResetAccessFailedCount clears the failed attempt counter.
func (m *UserManager[K]) ResetAccessFailedCount(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	count, err := m.store.GetAccessFailedCount(ctx, user)
	if err != nil {
		return store.Result{}, err
	}
	if count == 0 {
		return store.Success(), nil
	}
	if err := m.store.ResetAccessFailedCount(ctx, user); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// SetToken stores an authentication token value and commits the user.
func (m *UserManager[K]) SetToken(
	ctx context.Context,
	user *domain.User[K],
	loginProvider, name, value string,
) (store.Result, error) {
	if err := m.store.SetToken(ctx, user, loginProvider, name, value); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

// GetToken returns a token value or store.ErrTokenNotFound.
func (m *UserManager[K]) GetToken(ctx context.Context, user *domain.User[K], loginProvider, name string) (string, error) {
	return m.store.GetToken(ctx, user, loginProvider, name)
}

// RemoveToken deletes a token and commits the user.
func (m *UserManager[K]) RemoveToken(
	ctx context.Context,
	user *domain.User[K],
	loginProvider, name string,
) (store.Result, error) {
	if err := m.store.RemoveToken(ctx, user, loginProvider, name); err != nil {
		return store.Result{}, err
	}
	return m.Update(ctx, user)
}

func (m *UserManager[K]) updateSecurityStamp(ctx context.Context, user *domain.User[K]) error {
	return m.store.SetSecurityStamp(ctx, user, uuid.NewString())
}

// normalizeAndValidate refreshes the normalized name and email and checks
// the user. Policy failures come back as a failed result; a nil error with
// a failed result means nothing was written.
func (m *UserManager[K]) normalizeAndValidate(ctx context.Context, user *domain.User[K]) (store.Result, error) {
	if err := m.store.SetNormalizedUserName(ctx, user, Normalize(user.UserName)); err != nil {
		return store.Result{}, err
	}
	if err := m.store.SetNormalizedEmail(ctx, user, Normalize(user.Email)); err != nil {
		return store.Result{}, err
	}

	var errs []store.ResultError

	if strings.TrimSpace(user.UserName) == "" {
		errs = append(errs, m.describer.InvalidUserName(user.UserName))
	} else {
		if err := user.Validate(); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidUserName):
				errs = append(errs, m.describer.InvalidUserName(user.UserName))
			case errors.Is(err, domain.ErrInvalidEmail):
				errs = append(errs, m.describer.InvalidEmail(user.Email))
			default:
				return store.Result{}, err
			}
		}

		taken, err := m.takenByOther(ctx, user, func(u *domain.User[K]) bool {
			return u.NormalizedUserName == user.NormalizedUserName
		})
		if err != nil {
			return store.Result{}, err
		}
		if taken {
			errs = append(errs, m.describer.DuplicateUserName(user.UserName))
		}
	}

	if m.opts.RequireUniqueEmail {
		if strings.TrimSpace(user.Email) == "" {
			errs = append(errs, m.describer.InvalidEmail(user.Email))
		} else {
			taken, err := m.takenByOther(ctx, user, func(u *domain.User[K]) bool {
				return u.NormalizedEmail == user.NormalizedEmail
			})
			if err != nil {
				return store.Result{}, err
			}
			if taken {
				errs = append(errs, m.describer.DuplicateEmail(user.Email))
			}
		}
	}

	if len(errs) > 0 {
		m.log(ctx).Debug("user validation failed",
			slog.String("user_name", user.UserName),
			slog.String("result", store.Failed(errs...).String()))
		return store.Failed(errs...), nil
	}
	return store.Success(), nil
}

// takenByOther reports whether a user other than user matches. Matching
// is done on the tracked instances, so user's own unsaved edits never make
// it collide with itself.
func (m *UserManager[K]) takenByOther(ctx context.Context, user *domain.User[K], match func(*domain.User[K]) bool) (bool, error) {
	others, err := m.store.Users(ctx, func(u *domain.User[K]) bool {
		return u.ID != user.ID && match(u)
	})
	if err != nil {
		return false, err
	}
	return len(others) > 0, nil
}
