package document_test

import (
	"context"
	"testing"

	"github.com/ar0311/identity-docstore/internal/domain"
	"github.com/ar0311/identity-docstore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleStoreCreateFindDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newBackend()
	s := newScope(t, backend)

	role := domain.NewIdentityRole("test role")
	role.NormalizedName = "TEST ROLE"
	res, err := s.roles.Create(ctx, role)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)

	fresh := newScope(t, backend)

	byID, err := fresh.roles.FindByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, *role, *byID)

	byName, err := fresh.roles.FindByName(ctx, "TEST ROLE")
	require.NoError(t, err)
	assert.Same(t, byID, byName, "one instance per document within a session")

	_, err = fresh.roles.FindByName(ctx, "test role")
	assert.ErrorIs(t, err, store.ErrRoleNotFound)

	roles, err := fresh.roles.Roles(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	res, err = fresh.roles.Delete(ctx, byID)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)

	_, err = newScope(t, backend).roles.FindByID(ctx, role.ID)
	assert.ErrorIs(t, err, store.ErrRoleNotFound)
}

func TestRoleStoreUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newBackend()
	s := newScope(t, backend)
	role := createRole(t, s, "admin")

	first := newScope(t, backend)
	second := newScope(t, backend)
	a, err := first.roles.FindByID(ctx, role.ID)
	require.NoError(t, err)
	b, err := second.roles.FindByID(ctx, role.ID)
	require.NoError(t, err)

	stamp := a.ConcurrencyStamp
	require.NoError(t, first.roles.SetRoleName(ctx, a, "administrator"))
	require.NoError(t, first.roles.SetNormalizedRoleName(ctx, a, "ADMINISTRATOR"))
	res, err := first.roles.Update(ctx, a)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.NotEqual(t, stamp, a.ConcurrencyStamp)

	res, err = second.roles.Update(ctx, b)
	require.NoError(t, err)
	assert.True(t, res.HasCode(store.CodeConcurrencyFailure))

	name, err := first.roles.GetRoleName(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "administrator", name)
	normalized, err := first.roles.GetNormalizedRoleName(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "ADMINISTRATOR", normalized)
	id, err := first.roles.GetRoleID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, role.ID, id)
}

func TestRoleStoreClaims(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newBackend()
	s := newScope(t, backend)
	role := createRole(t, s, "admin")

	read := domain.NewClaim("permission", "read")
	write := domain.NewClaim("permission", "write")
	require.NoError(t, s.roles.AddClaim(ctx, role, read))
	require.NoError(t, s.roles.AddClaim(ctx, role, write))
	_, err := s.roles.Update(ctx, role)
	require.NoError(t, err)

	stored, err := newScope(t, backend).roles.FindByID(ctx, role.ID)
	require.NoError(t, err)
	claims, err := s.roles.GetClaims(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, []domain.Claim{read, write}, claims)

	require.NoError(t, s.roles.RemoveClaim(ctx, role, read))
	assert.Equal(t, []domain.Claim{write}, role.Claims)
}

func TestRoleStoreGuards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newScope(t, newBackend())

	_, err := s.roles.Create(ctx, nil)
	assert.ErrorIs(t, err, store.ErrNilArgument)
	_, err = s.roles.Update(ctx, domain.NewIdentityRole("x"))
	assert.Error(t, err, "untracked roles cannot be updated")

	require.NoError(t, s.roles.Close())
	_, err = s.roles.FindByName(ctx, "X")
	assert.ErrorIs(t, err, store.ErrDisposed)
	_, err = s.roles.Roles(ctx, nil)
	assert.ErrorIs(t, err, store.ErrDisposed)

	assert.Equal(t, "", s.roles.ConvertIDToString(""))
}
