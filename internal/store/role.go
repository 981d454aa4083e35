package store

import (
	"context"

	"github.com/ar0311/identity-docstore/internal/domain"
)

// RoleCRUD is the core role store.
type RoleCRUD[K comparable] interface {
	// Create stores a new role. It returns ErrNilArgument for a nil role.
	Create(ctx context.Context, role *domain.Role[K]) (Result, error)

	// Update rotates the role's concurrency stamp and commits it.
	// Conflicts are reported as a failed Result with CodeConcurrencyFailure.
	Update(ctx context.Context, role *domain.Role[K]) (Result, error)

	// Delete removes the role. Conflicts are reported like Update.
	Delete(ctx context.Context, role *domain.Role[K]) (Result, error)

	// FindByID returns ErrRoleNotFound if no role has the key.
	FindByID(ctx context.Context, roleID string) (*domain.Role[K], error)

	// FindByName matches the normalized role name exactly and returns
	// ErrRoleNotFound if nothing matches.
	FindByName(ctx context.Context, normalizedRoleName string) (*domain.Role[K], error)

	GetRoleID(ctx context.Context, role *domain.Role[K]) (string, error)
	GetRoleName(ctx context.Context, role *domain.Role[K]) (string, error)
	SetRoleName(ctx context.Context, role *domain.Role[K], roleName string) error
	GetNormalizedRoleName(ctx context.Context, role *domain.Role[K]) (string, error)
	SetNormalizedRoleName(ctx context.Context, role *domain.Role[K], normalizedName string) error

	SaveChanges(ctx context.Context) error
	Close() error
}

// RoleClaimStore manages claims granted to a role.
type RoleClaimStore[K comparable] interface {
	GetClaims(ctx context.Context, role *domain.Role[K]) ([]domain.Claim, error)
	AddClaim(ctx context.Context, role *domain.Role[K], claim domain.Claim) error
	RemoveClaim(ctx context.Context, role *domain.Role[K], claim domain.Claim) error
}

// QueryableRoleStore exposes the role collection to ad hoc filtering.
type QueryableRoleStore[K comparable] interface {
	Roles(ctx context.Context, match func(*domain.Role[K]) bool) ([]*domain.Role[K], error)
}

// RoleStore is the full capability set of a role store.
type RoleStore[K comparable] interface {
	RoleCRUD[K]
	RoleClaimStore[K]
	QueryableRoleStore[K]

	ConvertIDToString(id K) string
	ConvertIDFromString(id string) (K, error)
}
