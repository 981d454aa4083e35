package store

import (
	"context"
	"time"

	"github.com/ar0311/identity-docstore/internal/domain"
)

// UserCRUD is the core user store: create, update, delete and the
// id/name lookups every identity framework needs.
type UserCRUD[K comparable] interface {
	// Create stores a new user. It returns ErrNilArgument for a nil user.
	// When auto-save is on the change is committed before returning.
	// Commit failures other than concurrency conflicts are returned as errors.
	Create(ctx context.Context, user *domain.User[K]) (Result, error)

	// Update rotates the user's concurrency stamp and commits the user.
	// A conflicting concurrent write is reported as a failed Result with
	// CodeConcurrencyFailure, never as an error.
	Update(ctx context.Context, user *domain.User[K]) (Result, error)

	// Delete removes the user. Concurrency conflicts are reported like Update.
	Delete(ctx context.Context, user *domain.User[K]) (Result, error)

	// FindByID loads a user by the string form of its key.
	// Returns ErrUserNotFound if the user does not exist.
	FindByID(ctx context.Context, userID string) (*domain.User[K], error)

	// FindByName returns the user whose normalized user name equals
	// normalizedUserName exactly. Normalization is the caller's job.
	// Returns ErrUserNotFound if no user matches.
	FindByName(ctx context.Context, normalizedUserName string) (*domain.User[K], error)

	GetUserID(ctx context.Context, user *domain.User[K]) (string, error)
	GetUserName(ctx context.Context, user *domain.User[K]) (string, error)
	SetUserName(ctx context.Context, user *domain.User[K], userName string) error
	GetNormalizedUserName(ctx context.Context, user *domain.User[K]) (string, error)
	SetNormalizedUserName(ctx context.Context, user *domain.User[K], normalizedName string) error

	// SaveChanges commits every pending change tracked by the store's session.
	// Stores created with auto-save disabled rely on the caller to call it.
	SaveChanges(ctx context.Context) error

	// Close releases the store. Every later call returns ErrDisposed.
	Close() error
}

// UserClaimStore manages the claims held by a user. Mutations only change
// the in-memory user; they persist with the next Update or SaveChanges.
type UserClaimStore[K comparable] interface {
	GetClaims(ctx context.Context, user *domain.User[K]) ([]domain.Claim, error)
	AddClaims(ctx context.Context, user *domain.User[K], claims []domain.Claim) error
	// ReplaceClaim removes every claim equal to claim and then adds newClaim.
	ReplaceClaim(ctx context.Context, user *domain.User[K], claim, newClaim domain.Claim) error
	RemoveClaims(ctx context.Context, user *domain.User[K], claims []domain.Claim) error
	// GetUsersForClaim returns every user holding an exact (type, value) match.
	GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User[K], error)
}

// UserPasswordStore stores password hashes. Hashing itself is done elsewhere.
type UserPasswordStore[K comparable] interface {
	SetPasswordHash(ctx context.Context, user *domain.User[K], passwordHash string) error
	GetPasswordHash(ctx context.Context, user *domain.User[K]) (string, error)
	HasPassword(ctx context.Context, user *domain.User[K]) (bool, error)
}

// UserSecurityStampStore stores the stamp that changes whenever a user's
// credentials change.
type UserSecurityStampStore[K comparable] interface {
	SetSecurityStamp(ctx context.Context, user *domain.User[K], stamp string) error
	GetSecurityStamp(ctx context.Context, user *domain.User[K]) (string, error)
}

// UserEmailStore stores email addresses and their confirmation state.
type UserEmailStore[K comparable] interface {
	SetEmail(ctx context.Context, user *domain.User[K], email string) error
	GetEmail(ctx context.Context, user *domain.User[K]) (string, error)
	GetEmailConfirmed(ctx context.Context, user *domain.User[K]) (bool, error)
	SetEmailConfirmed(ctx context.Context, user *domain.User[K], confirmed bool) error
	GetNormalizedEmail(ctx context.Context, user *domain.User[K]) (string, error)
	SetNormalizedEmail(ctx context.Context, user *domain.User[K], normalizedEmail string) error
	// FindByEmail returns the first user whose normalized email equals
	// normalizedEmail exactly, or ErrUserNotFound.
	FindByEmail(ctx context.Context, normalizedEmail string) (*domain.User[K], error)
}

// UserLoginStore manages external logins.
type UserLoginStore[K comparable] interface {
	AddLogin(ctx context.Context, user *domain.User[K], login domain.Login) error
	RemoveLogin(ctx context.Context, user *domain.User[K], loginProvider, providerKey string) error
	GetLogins(ctx context.Context, user *domain.User[K]) ([]domain.Login, error)
	// FindByLogin returns the user owning the login, or ErrUserNotFound.
	FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User[K], error)
}

// UserRoleStore manages role membership. Role names are compared
// case-insensitively against the user's links; GetUsersInRole queries the
// store by exact role name.
type UserRoleStore[K comparable] interface {
	// AddToRole links the user to the role whose name is exactly roleName.
	// A blank name returns ErrInvalidArgument and an unknown role returns
	// ErrInvalidOperation.
	AddToRole(ctx context.Context, user *domain.User[K], roleName string) error
	RemoveFromRole(ctx context.Context, user *domain.User[K], roleName string) error
	GetRoles(ctx context.Context, user *domain.User[K]) ([]string, error)
	IsInRole(ctx context.Context, user *domain.User[K], roleName string) (bool, error)
	GetUsersInRole(ctx context.Context, roleName string) ([]*domain.User[K], error)
}

// UserLockoutStore tracks failed access attempts and lockout windows.
type UserLockoutStore[K comparable] interface {
	GetLockoutEnd(ctx context.Context, user *domain.User[K]) (*time.Time, error)
	SetLockoutEnd(ctx context.Context, user *domain.User[K], lockoutEnd *time.Time) error
	IncrementAccessFailedCount(ctx context.Context, user *domain.User[K]) (int, error)
	ResetAccessFailedCount(ctx context.Context, user *domain.User[K]) error
	GetAccessFailedCount(ctx context.Context, user *domain.User[K]) (int, error)
	GetLockoutEnabled(ctx context.Context, user *domain.User[K]) (bool, error)
	SetLockoutEnabled(ctx context.Context, user *domain.User[K], enabled bool) error
}

// UserPhoneNumberStore stores phone numbers and their confirmation state.
type UserPhoneNumberStore[K comparable] interface {
	SetPhoneNumber(ctx context.Context, user *domain.User[K], phoneNumber string) error
	GetPhoneNumber(ctx context.Context, user *domain.User[K]) (string, error)
	GetPhoneNumberConfirmed(ctx context.Context, user *domain.User[K]) (bool, error)
	SetPhoneNumberConfirmed(ctx context.Context, user *domain.User[K], confirmed bool) error
}

// UserTwoFactorStore stores the two-factor flag.
type UserTwoFactorStore[K comparable] interface {
	SetTwoFactorEnabled(ctx context.Context, user *domain.User[K], enabled bool) error
	GetTwoFactorEnabled(ctx context.Context, user *domain.User[K]) (bool, error)
}

// QueryableUserStore exposes the user collection to ad hoc filtering.
type QueryableUserStore[K comparable] interface {
	// Users returns every user for which match returns true. A nil match
	// returns all users.
	Users(ctx context.Context, match func(*domain.User[K]) bool) ([]*domain.User[K], error)
}

// UserAuthenticationTokenStore stores tokens keyed by (user, provider, name).
type UserAuthenticationTokenStore[K comparable] interface {
	SetToken(ctx context.Context, user *domain.User[K], loginProvider, name, value string) error
	RemoveToken(ctx context.Context, user *domain.User[K], loginProvider, name string) error
	// GetToken returns the token value, or ErrTokenNotFound.
	GetToken(ctx context.Context, user *domain.User[K], loginProvider, name string) (string, error)
}

// UserStore is the full capability set of a user store.
type UserStore[K comparable] interface {
	UserCRUD[K]
	UserClaimStore[K]
	UserPasswordStore[K]
	UserSecurityStampStore[K]
	UserEmailStore[K]
	UserLoginStore[K]
	UserRoleStore[K]
	UserLockoutStore[K]
	UserPhoneNumberStore[K]
	UserTwoFactorStore[K]
	QueryableUserStore[K]
	UserAuthenticationTokenStore[K]

	// ConvertIDToString and ConvertIDFromString round-trip keys through
	// their string form. The zero key maps to "" and back.
	ConvertIDToString(id K) string
	ConvertIDFromString(id string) (K, error)
}
