package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	user := NewUser(id, "alice")

	assert.Equal(t, id, user.ID)
	assert.Equal(t, "alice", user.UserName)
	assert.NotEmpty(t, user.ConcurrencyStamp, "new users carry a concurrency stamp")
	assert.NotNil(t, user.Roles)
	assert.NotNil(t, user.Claims)
	assert.NotNil(t, user.Logins)
	assert.Equal(t, UsersCollection, user.CollectionName())
}

func TestNewIdentityUser(t *testing.T) {
	t.Parallel()

	a := NewIdentityUser("a")
	b := NewIdentityUser("b")

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err, "string keys are generated as UUIDs")
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ConcurrencyStamp, b.ConcurrencyStamp)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		user    *User[string]
		wantErr error
	}{
		{
			name: "valid without email",
			user: NewUser("1", "alice"),
		},
		{
			name: "valid with email",
			user: func() *User[string] {
				u := NewUser("1", "alice")
				u.Email = "alice@example.com"
				return u
			}(),
		},
		{
			name:    "empty user name",
			user:    NewUser("1", ""),
			wantErr: ErrInvalidUserName,
		},
		{
			name:    "user name too long",
			user:    NewUser("1", strings.Repeat("x", 257)),
			wantErr: ErrInvalidUserName,
		},
		{
			name: "malformed email",
			user: func() *User[string] {
				u := NewUser("1", "alice")
				u.Email = "not-an-email"
				return u
			}(),
			wantErr: ErrInvalidEmail,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.user.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.True(t, errors.Is(err, ErrValidation), "validation errors wrap ErrValidation")
		})
	}
}

func TestUserIsLockedOut(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	user := NewUser("1", "alice")
	assert.False(t, user.IsLockedOut(now), "no lockout end set")

	user.LockoutEnd = &future
	assert.False(t, user.IsLockedOut(now), "lockout disabled")

	user.LockoutEnabled = true
	assert.True(t, user.IsLockedOut(now))

	user.LockoutEnd = &past
	assert.False(t, user.IsLockedOut(now), "lockout end already passed")
}

func TestRoleValidate(t *testing.T) {
	t.Parallel()

	role := NewRole(int64(7), "admin")
	assert.NoError(t, role.Validate())
	assert.Equal(t, RolesCollection, role.CollectionName())
	assert.NotEmpty(t, role.ConcurrencyStamp)

	role.Name = ""
	assert.ErrorIs(t, role.Validate(), ErrInvalidRoleName)
}

func TestClaimAndLogin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NewClaim("t", "v"), Claim{Type: "t", Value: "v"})
	assert.NotEqual(t, NewClaim("t", "v"), NewClaim("t", "V"))
	assert.ErrorIs(t, NewClaim(" ", "v").Validate(), ErrEmptyClaimType)
	assert.Equal(t, "t=v", NewClaim("t", "v").String())

	login := Login{LoginProvider: "github", ProviderKey: "42", ProviderDisplayName: "GitHub"}
	assert.True(t, login.Matches("github", "42"))
	assert.False(t, login.Matches("github", "43"))
	assert.NoError(t, login.Validate())
	assert.ErrorIs(t, Login{LoginProvider: "github"}.Validate(), ErrInvalidLogin)
}

func TestTokenID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UserTokens/u1/github/refresh", TokenID("u1", "github", "refresh"))
	assert.NotEqual(t,
		TokenID("u1", "a/b", "c"),
		TokenID("u1", "a", "b/c"),
		"separators inside parts must not collide",
	)

	token := &Token[string]{UserID: "u1", LoginProvider: "github", Name: "refresh"}
	assert.True(t, token.Matches("github", "refresh"))
	assert.False(t, token.Matches("github", "access"))
}
