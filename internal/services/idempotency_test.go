package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/utils"
)

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint("sanitize", "asset-1", map[string]string{"method": "NIST_800_88_PURGE"})
	require.NoError(t, err)
	b, err := Fingerprint("sanitize", "asset-1", map[string]string{"method": "NIST_800_88_PURGE"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	other, err := Fingerprint("dispose", "asset-1", map[string]string{"method": "NIST_800_88_PURGE"})
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	otherTarget, err := Fingerprint("sanitize", "asset-2", map[string]string{"method": "NIST_800_88_PURGE"})
	require.NoError(t, err)
	assert.NotEqual(t, a, otherTarget)
}

func TestIdempotencyService_Lifecycle(t *testing.T) {
	cache := newFakeCache()
	svc := NewIdempotencyService(cache, time.Hour, zap.NewNop())
	ctx := context.Background()

	stored, err := svc.Begin(ctx, "k", "fp")
	require.NoError(t, err)
	assert.Nil(t, stored, "first caller runs the operation")

	_, err = svc.Begin(ctx, "k", "fp")
	assert.ErrorIs(t, err, apperrors.ErrConflict, "still in progress")

	svc.Complete(ctx, "k", "fp", map[string]int{"n": 1})
	stored, err = svc.Begin(ctx, "k", "fp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(stored))

	_, err = svc.Begin(ctx, "k", "other")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	svc.Release(ctx, "k")
	stored, err = svc.Begin(ctx, "k", "other")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestIdempotencyService_KeyTooLong(t *testing.T) {
	svc := NewIdempotencyService(newFakeCache(), time.Hour, zap.NewNop())

	_, err := svc.Begin(context.Background(), strings.Repeat("k", 256), "fp")

	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestIdempotencyService_KeysAreScopedToCaller(t *testing.T) {
	cache := newFakeCache()
	svc := NewIdempotencyService(cache, time.Hour, zap.NewNop())
	alice := utils.WithPrincipal(context.Background(), &entities.UserAccount{ID: "user-a"})
	bob := utils.WithPrincipal(context.Background(), &entities.UserAccount{ID: "user-b"})

	_, err := svc.Begin(alice, "shared", "fp")
	require.NoError(t, err)
	svc.Complete(alice, "shared", "fp", map[string]string{"verifiedBy": "user-a"})

	stored, err := svc.Begin(bob, "shared", "fp")
	require.NoError(t, err)
	assert.Nil(t, stored, "another caller's record is never replayed")

	stored, err = svc.Begin(alice, "shared", "fp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"verifiedBy":"user-a"}`, string(stored))
}

func TestSanitize_SameKeyFromAnotherUserRunsAgain(t *testing.T) {
	env := newTestEnv(t)
	asset := env.createAsset(t, "TAG-1")
	other := utils.WithPrincipal(context.Background(), &entities.UserAccount{ID: "user-2", Name: "Otto"})
	data := dto.SanitizeAssetDTO{Method: "NIST_800_88_PURGE"}

	first, err := env.sanitization.Sanitize(env.ctx(), asset.ID, data, "retry-1")
	require.NoError(t, err)
	second, err := env.sanitization.Sanitize(other, asset.ID, data, "retry-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.SanitizationResult.ID, second.SanitizationResult.ID)
	assert.Len(t, env.store.results, 2)
}
