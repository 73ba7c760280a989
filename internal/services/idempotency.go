package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/utils"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	anonymousScope       = "anonymous"
	idempotencyPending   = "pending"
	idempotencyDone      = "done"
	maxIdempotencyKeyLen = 255
)

type idempotencyRecord struct {
	State       string          `json:"state"`
	Fingerprint string          `json:"fingerprint"`
	Response    json.RawMessage `json:"response,omitempty"`
}

type IdempotencyServiceInterface interface {
	// Begin reserves key for the request fingerprint. It returns the stored response when the
	// same request already completed, nil when the caller should run the operation.
	Begin(ctx context.Context, key, fingerprint string) (json.RawMessage, error)
	Complete(ctx context.Context, key, fingerprint string, response interface{})
	Release(ctx context.Context, key string)
}

type IdempotencyService struct {
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewIdempotencyService(cache repositories.CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) IdempotencyServiceInterface {
	return &IdempotencyService{cache: cache, ttl: ttl, logger: logger}
}

// Fingerprint is the BLAKE2b-256 of the operation, the target id and the canonical JSON payload.
func Fingerprint(operation, targetID string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode idempotency payload: %w", err)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write([]byte(targetID))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// storeKey scopes the client key to the calling account so two users never share a record.
func storeKey(ctx context.Context, key string) string {
	scope := anonymousScope
	if id := utils.PrincipalID(ctx); id != nil {
		scope = *id
	}
	return idempotencyKeyPrefix + scope + ":" + key
}

func (s *IdempotencyService) Begin(ctx context.Context, key, fingerprint string) (json.RawMessage, error) {
	if len(key) > maxIdempotencyKeyLen {
		return nil, apperrors.NewValidationError("Idempotency-Key is too long",
			apperrors.FieldIssue{Field: "Idempotency-Key", Tag: "max", Message: "must be at most 255 characters"})
	}
	pending, _ := json.Marshal(idempotencyRecord{State: idempotencyPending, Fingerprint: fingerprint})

	reserved, err := s.cache.SetNX(ctx, storeKey(ctx, key), pending, s.ttl)
	if err != nil {
		s.logger.Error("idempotency store unavailable", zap.Error(err))
		return nil, apperrors.NewHttpError(http.StatusServiceUnavailable, "Idempotency store is unavailable", err, nil)
	}
	if reserved {
		return nil, nil
	}

	raw, err := s.cache.Get(ctx, storeKey(ctx, key))
	if errors.Is(err, repositories.ErrCacheMiss) {
		// expired between SETNX and GET; treat as a fresh reservation attempt
		return s.Begin(ctx, key, fingerprint)
	}
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusServiceUnavailable, "Idempotency store is unavailable", err, nil)
	}

	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency record: %w", err)
	}
	switch {
	case rec.Fingerprint != fingerprint:
		return nil, apperrors.NewConflictError("Idempotency-Key was already used with a different request")
	case rec.State != idempotencyDone:
		return nil, apperrors.NewConflictError("A request with this Idempotency-Key is still in progress")
	}

	s.logger.Info("replaying idempotent response", zap.String("key", key))
	return rec.Response, nil
}

// Complete stores the response for replay. The operation has already committed, so a failure here is only logged.
func (s *IdempotencyService) Complete(ctx context.Context, key, fingerprint string, response interface{}) {
	body, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to encode idempotent response", zap.String("key", key), zap.Error(err))
		return
	}
	rec, _ := json.Marshal(idempotencyRecord{State: idempotencyDone, Fingerprint: fingerprint, Response: body})
	if err := s.cache.Set(ctx, storeKey(ctx, key), rec, s.ttl); err != nil {
		s.logger.Error("failed to store idempotent response", zap.String("key", key), zap.Error(err))
	}
}

// Release frees the key after a failed attempt so the client can retry.
func (s *IdempotencyService) Release(ctx context.Context, key string) {
	if err := s.cache.Del(ctx, storeKey(ctx, key)); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// runIdempotent executes fn at most once per (key, request). An empty key runs fn unconditionally.
func runIdempotent[T any](ctx context.Context, store IdempotencyServiceInterface, key, operation, targetID string, payload interface{}, fn func() (*T, error)) (*T, error) {
	if key == "" || store == nil {
		return fn()
	}

	fingerprint, err := Fingerprint(operation, targetID, payload)
	if err != nil {
		return nil, err
	}
	stored, err := store.Begin(ctx, key, fingerprint)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		var replay T
		if err := json.Unmarshal(stored, &replay); err != nil {
			return nil, fmt.Errorf("failed to decode stored response: %w", err)
		}
		return &replay, nil
	}

	result, err := fn()
	if err != nil {
		store.Release(context.WithoutCancel(ctx), key)
		return nil, err
	}
	store.Complete(context.WithoutCancel(ctx), key, fingerprint, result)
	return result, nil
}
