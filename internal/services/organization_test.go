package services

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/utils"
)

func TestCreateOrganization_DefaultsActive(t *testing.T) {
	env := newTestEnv(t)

	org, err := env.orgs.CreateOrganization(env.ctx(), dto.CreateOrganizationDTO{Type: "DOWNSTREAM", Name: "Smelter Inc", Email: utils.ToPtr("")})
	require.NoError(t, err)

	assert.True(t, org.Active)
	assert.Nil(t, org.Email)
	assert.Equal(t, env.principal.ID, *org.CreatedBy)
}

func TestListOrganizations_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.store.addOrg(entities.OrgParty{ID: "org-x", Type: entities.OrgDownstream, Name: "Recycler", Active: false})

	downstream, err := env.orgs.ListOrganizations(env.ctx(), "DOWNSTREAM", "")
	require.NoError(t, err)
	require.Len(t, downstream, 1)
	assert.Equal(t, "Recycler", downstream[0].Name)

	active, err := env.orgs.ListOrganizations(env.ctx(), "", "true")
	require.NoError(t, err)
	assert.Len(t, active, 3, "client, buyer and the facility")

	_, err = env.orgs.ListOrganizations(env.ctx(), "VENDOR", "")
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = env.orgs.ListOrganizations(env.ctx(), "", "maybe")
	assert.ErrorAs(t, err, &vErr)
}

func TestUpdateOrganization(t *testing.T) {
	env := newTestEnv(t)

	org, err := env.orgs.UpdateOrganization(env.ctx(), env.client.ID,
		dto.UpdateOrganizationDTO{Active: null.BoolFrom(false), City: null.StringFrom("Austin")},
		utils.PatchFields{"active": {}, "city": {}})
	require.NoError(t, err)
	assert.False(t, org.Active)
	assert.Equal(t, "Austin", *org.City)
	assert.Equal(t, "Acme", org.Name)

	_, err = env.orgs.UpdateOrganization(env.ctx(), env.client.ID, dto.UpdateOrganizationDTO{}, utils.PatchFields{"name": {}})
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDeleteOrganization_WithAssetsConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.createAsset(t, "TAG-1")

	err := env.orgs.DeleteOrganization(env.ctx(), env.client.ID)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, env.store.orgs, env.client.ID)
}

func TestDeleteOrganization(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.orgs.DeleteOrganization(env.ctx(), env.customer.ID))
	assert.NotContains(t, env.store.orgs, env.customer.ID)

	err := env.orgs.DeleteOrganization(env.ctx(), env.customer.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLocations(t *testing.T) {
	env := newTestEnv(t)
	seeded := len(env.store.locations)

	loc, err := env.orgs.CreateLocation(env.ctx(), env.client.ID, dto.CreateLocationDTO{Name: "Dock 4"})
	require.NoError(t, err)
	assert.Equal(t, env.client.ID, loc.OrgID)

	locs, err := env.orgs.ListLocations(env.ctx(), env.client.ID)
	require.NoError(t, err)
	assert.Len(t, locs, 1)

	_, err = env.orgs.CreateLocation(env.ctx(), "missing", dto.CreateLocationDTO{Name: "Nowhere"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Len(t, env.store.locations, seeded+1)
}
