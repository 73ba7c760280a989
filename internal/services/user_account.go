package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
)

type UserAccountServiceInterface interface {
	// ResolvePrincipal returns the local account for a verified external identity, creating it on first sight.
	ResolvePrincipal(ctx context.Context, externalID, name, email string) (*entities.UserAccount, error)
	ListUsers(ctx context.Context) ([]entities.UserAccount, error)
}

type UserAccountService struct {
	repo   repositories.UserAccountRepositoryInterface
	logger *zap.Logger
}

func NewUserAccountService(repo repositories.UserAccountRepositoryInterface, logger *zap.Logger) UserAccountServiceInterface {
	return &UserAccountService{repo: repo, logger: logger}
}

func (s *UserAccountService) ResolvePrincipal(ctx context.Context, externalID, name, email string) (*entities.UserAccount, error) {
	if externalID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	account, err := s.repo.FindByExternalID(ctx, externalID)
	switch {
	case err == nil:
		return s.syncProfile(ctx, account, name, email), nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	account, err = s.repo.CreateIfAbsent(ctx, &entities.UserAccount{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		Name:       name,
		Email:      email,
		Role:       entities.DefaultUserRole,
	})
	if err != nil {
		s.logger.Error("failed to provision user account", zap.Error(err), zap.String("externalId", externalID))
		return nil, err
	}
	s.logger.Info("user account provisioned", zap.String("userId", account.ID), zap.String("externalId", externalID))
	return account, nil
}

// syncProfile copies non-empty claim values onto the stored account. A failed write is logged and the
// request continues with the fresh values.
func (s *UserAccountService) syncProfile(ctx context.Context, account *entities.UserAccount, name, email string) *entities.UserAccount {
	if name == "" {
		name = account.Name
	}
	if email == "" {
		email = account.Email
	}
	if name == account.Name && email == account.Email {
		return account
	}

	if err := s.repo.UpdateProfile(ctx, account.ID, name, email); err != nil {
		s.logger.Warn("failed to sync user profile", zap.Error(err), zap.String("userId", account.ID))
	}
	account.Name = name
	account.Email = email
	return account
}

func (s *UserAccountService) ListUsers(ctx context.Context) ([]entities.UserAccount, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}
