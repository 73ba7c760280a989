package services

import (
	"errors"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
	"itad-system/pkg/utils"
)

func TestCreateAsset_WritesReceivedHistoryAndCustody(t *testing.T) {
	env := newTestEnv(t)
	loc := "loc-dock"

	asset, err := env.assets.CreateAsset(env.ctx(), dto.CreateAssetDTO{
		ClientID:          env.client.ID,
		Manufacturer:      utils.ToPtr("Dell"),
		CurrentLocationID: &loc,
		DataBearing:       true,
		Identifiers:       []dto.AssetIdentifierDTO{{IDType: "CLIENT_TAG", IDValue: "ACME-001"}},
		HardDrives:        []dto.HardDriveDTO{{SerialNumber: "HD-1", CapacityGb: utils.ToPtr(512)}},
	})
	require.NoError(t, err)

	assert.Equal(t, entities.AssetStatusReceived, asset.CurrentStatus)
	assert.Equal(t, "ACME-001", asset.PrimaryTag())
	assert.Len(t, asset.HardDrives, 1)

	history := env.store.historyFor(asset.ID)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, entities.AssetStatusReceived, history[0].ToStatus)
	assert.Equal(t, env.principal.ID, *history[0].ChangedBy)

	custody := env.store.custodyFor(asset.ID)
	require.Len(t, custody, 1)
	assert.Equal(t, entities.CustodyReceived, custody[0].EventType)
	assert.Nil(t, custody[0].FromLocationID)
	assert.Equal(t, loc, *custody[0].ToLocationID)
}

func TestCreateAsset_UnknownClientWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.assets.CreateAsset(env.ctx(), dto.CreateAssetDTO{
		ClientID:    "missing",
		Identifiers: []dto.AssetIdentifierDTO{{IDType: "SERIAL", IDValue: "SN-1"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, env.store.assets)
	assert.Empty(t, env.store.history)
}

func TestCreateAsset_RequiresIdentifier(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.assets.CreateAsset(env.ctx(), dto.CreateAssetDTO{ClientID: env.client.ID})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "identifiers", vErr.Issues[0].Field)
	assert.Zero(t, env.tx.calls)
}

func TestUpdateAsset_StatusOnly(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")

	updated, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
		dto.UpdateAssetDTO{CurrentStatus: null.StringFrom("IN_PROCESS")},
		utils.PatchFields{"currentStatus": {}})
	require.NoError(t, err)
	assert.Equal(t, entities.AssetStatusInProcess, updated.CurrentStatus)

	history := env.store.historyFor(asset.ID)
	require.Len(t, history, 2)
	assert.Equal(t, entities.AssetStatusReceived, *history[1].FromStatus)
	assert.Equal(t, entities.AssetStatusInProcess, history[1].ToStatus)
	assert.Len(t, env.store.custodyFor(asset.ID), 1, "only the creation custody event")
}

func TestUpdateAsset_LocationOnly(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")

	_, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
		dto.UpdateAssetDTO{CurrentLocationID: null.StringFrom("loc-lab")},
		utils.PatchFields{"currentLocationId": {}})
	require.NoError(t, err)

	assert.Len(t, env.store.historyFor(asset.ID), 1, "only the creation history row")
	custody := env.store.custodyFor(asset.ID)
	require.Len(t, custody, 2)
	moved := custody[1]
	assert.Equal(t, entities.CustodyMoved, moved.EventType)
	assert.Nil(t, moved.FromLocationID)
	assert.Equal(t, "loc-lab", *moved.ToLocationID)
}

func TestUpdateAsset_UnknownLocationIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")

	_, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
		dto.UpdateAssetDTO{CurrentLocationID: null.StringFrom("loc-nowhere"), CurrentStatus: null.StringFrom("IN_PROCESS")},
		utils.PatchFields{"currentLocationId": {}, "currentStatus": {}})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "Location not found: "+apperrors.ErrNotFound.Error())
	assert.Len(t, env.store.custodyFor(asset.ID), 1, "no MOVED event")
	assert.Len(t, env.store.historyFor(asset.ID), 1)
	assert.Nil(t, env.store.assets[asset.ID].CurrentLocationID)
	assert.Equal(t, entities.AssetStatusReceived, env.store.assets[asset.ID].CurrentStatus)
}

func TestCreateAsset_UnknownLocationWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.assets.CreateAsset(env.ctx(), dto.CreateAssetDTO{
		ClientID:          env.client.ID,
		CurrentLocationID: utils.ToPtr("loc-nowhere"),
		Identifiers:       []dto.AssetIdentifierDTO{{IDType: "SERIAL", IDValue: "SN-9"}},
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, env.store.assets)
	assert.Empty(t, env.store.custody)
}

func TestUpdateAsset_SameLocationAndStatusWriteNoAudit(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")

	_, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
		dto.UpdateAssetDTO{CurrentStatus: null.StringFrom("RECEIVED"), Model: null.StringFrom("Latitude")},
		utils.PatchFields{"currentStatus": {}, "model": {}})
	require.NoError(t, err)

	assert.Len(t, env.store.historyFor(asset.ID), 1)
	assert.Len(t, env.store.custodyFor(asset.ID), 1)
	assert.Equal(t, "Latitude", *env.store.assets[asset.ID].Model)
}

func TestUpdateAsset_OmittedFieldsStay(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")
	_, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
		dto.UpdateAssetDTO{Manufacturer: null.StringFrom("HP"), AssignedToID: null.StringFrom("user-1")},
		utils.PatchFields{"manufacturer": {}, "assignedToId": {}})
	require.NoError(t, err)

	updated, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
		dto.UpdateAssetDTO{AssignedToID: null.StringFrom("unassigned"), Manufacturer: null.String{}},
		utils.PatchFields{"assignedToId": {}})
	require.NoError(t, err)

	assert.Nil(t, updated.AssignedToID)
	require.NotNil(t, updated.Manufacturer)
	assert.Equal(t, "HP", *updated.Manufacturer)
}

func TestUpdateAsset_NullStatusRejected(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")

	_, err := env.assets.UpdateAsset(env.ctx(), asset.ID, dto.UpdateAssetDTO{}, utils.PatchFields{"currentStatus": {}})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, entities.AssetStatusReceived, env.store.assets[asset.ID].CurrentStatus)
}

func TestUpdateAsset_NullOnlyClearsReferences(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")
	_, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
		dto.UpdateAssetDTO{Model: null.StringFrom("Latitude"), CurrentLocationID: null.StringFrom("loc-lab")},
		utils.PatchFields{"model": {}, "currentLocationId": {}})
	require.NoError(t, err)

	for _, field := range []string{"model", "manufacturer", "purchaseDate", "ramSizeGb", "resaleValue", "complianceNotes"} {
		t.Run(field, func(t *testing.T) {
			_, err := env.assets.UpdateAsset(env.ctx(), asset.ID, dto.UpdateAssetDTO{}, utils.PatchFields{field: {}})

			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Issues, 1)
			assert.Equal(t, field, vErr.Issues[0].Field)
		})
	}
	assert.Equal(t, "Latitude", *env.store.assets[asset.ID].Model)

	updated, err := env.assets.UpdateAsset(env.ctx(), asset.ID, dto.UpdateAssetDTO{}, utils.PatchFields{"currentLocationId": {}})
	require.NoError(t, err)
	assert.Nil(t, updated.CurrentLocationID)
}

func TestNotFoundAsKeepsMessageVerbatim(t *testing.T) {
	err := notFoundAs(apperrors.ErrNotFound, "Asset 100% gone")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "Asset 100% gone: "+apperrors.ErrNotFound.Error())
}

func TestUpdateAsset_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.assets.UpdateAsset(env.ctx(), "nope", dto.UpdateAssetDTO{}, utils.PatchFields{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStatusMatchesLatestHistory(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")

	steps := []string{"IN_PROCESS", "SANITIZED", "READY_FOR_SALE"}
	for _, status := range steps {
		_, err := env.assets.UpdateAsset(env.ctx(), asset.ID,
			dto.UpdateAssetDTO{CurrentStatus: null.StringFrom(status)},
			utils.PatchFields{"currentStatus": {}})
		require.NoError(t, err)
	}
	_, err := env.disposal.Dispose(env.ctx(), asset.ID, dto.DisposeAssetDTO{CustomerID: env.customer.ID}, "")
	require.NoError(t, err)

	history := env.store.historyFor(asset.ID)
	assert.Equal(t, env.store.assets[asset.ID].CurrentStatus, history[len(history)-1].ToStatus)
	assert.Len(t, history, len(steps)+2)
}

func TestGetAsset_LoadsAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")
	_, err := env.sanitization.Sanitize(env.ctx(), asset.ID, dto.SanitizeAssetDTO{Method: "NIST_800_88_PURGE"}, "")
	require.NoError(t, err)

	got, err := env.assets.GetAsset(env.ctx(), asset.ID)
	require.NoError(t, err)

	assert.Len(t, got.StatusHistory, 2)
	assert.Equal(t, entities.AssetStatusSanitized, got.StatusHistory[0].ToStatus, "newest first")
	assert.Len(t, got.CocEvents, 2)
	assert.Len(t, got.SanitizationResults, 1)
}

func TestListAssets_FiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t)
	for _, tag := range []string{"A", "B", "C"} {
		env.createAsset(t, tag)
	}
	other := env.store.addOrg(entities.OrgParty{ID: "org-2", Type: entities.OrgCustomer, Name: "Other", Active: true})
	env.store.putAsset(entities.Asset{ID: "foreign", ClientID: other.ID, CurrentStatus: entities.AssetStatusReceived}, "X")

	assets, total, err := env.assets.ListAssets(env.ctx(), types.Filter{
		Filter:         map[string]interface{}{"clientId": env.client.ID},
		Page:           1,
		Limit:          2,
		WithPagination: true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, assets, 2)
	assert.Equal(t, "C", assets[0].PrimaryTag(), "newest first")
}
