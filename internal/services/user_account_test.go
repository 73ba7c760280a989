package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
)

func TestResolvePrincipal_ProvisionsOnFirstSight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account, err := env.accounts.ResolvePrincipal(ctx, "ext-new", "Nia New", "nia@itad.local")
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultUserRole, account.Role)
	assert.Equal(t, "Nia New", account.Name)

	again, err := env.accounts.ResolvePrincipal(ctx, "ext-new", "Nia New", "nia@itad.local")
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
	assert.Zero(t, env.users.profileSyncs)
}

func TestResolvePrincipal_SyncsChangedProfile(t *testing.T) {
	env := newTestEnv(t)

	account, err := env.accounts.ResolvePrincipal(context.Background(), env.principal.ExternalID, "Tess Lead", "")
	require.NoError(t, err)

	assert.Equal(t, env.principal.ID, account.ID)
	assert.Equal(t, "Tess Lead", account.Name)
	assert.Equal(t, env.principal.Email, account.Email, "empty claims keep the stored value")
	assert.Equal(t, 1, env.users.profileSyncs)
	assert.Equal(t, "Tess Lead", env.store.users[env.principal.ID].Name)
}

func TestResolvePrincipal_EmptySubject(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.accounts.ResolvePrincipal(context.Background(), "", "x", "y")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Len(t, env.store.users, 1)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.accounts.ResolvePrincipal(context.Background(), "ext-2", "Adam Admin", "adam@itad.local")
	require.NoError(t, err)

	users, err := env.accounts.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Adam Admin", users[0].Name)
}
