package services

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
	"itad-system/pkg/utils"
)

type OrganizationServiceInterface interface {
	ListOrganizations(ctx context.Context, orgType, active string) ([]entities.OrgParty, error)
	GetOrganization(ctx context.Context, id string) (*entities.OrgParty, error)
	CreateOrganization(ctx context.Context, data dto.CreateOrganizationDTO) (*entities.OrgParty, error)
	UpdateOrganization(ctx context.Context, id string, data dto.UpdateOrganizationDTO, fields utils.PatchFields) (*entities.OrgParty, error)
	DeleteOrganization(ctx context.Context, id string) error

	ListLocations(ctx context.Context, orgID string) ([]entities.Location, error)
	CreateLocation(ctx context.Context, orgID string, data dto.CreateLocationDTO) (*entities.Location, error)
}

type OrganizationService struct {
	txManager repositories.TxManagerInterface
	orgRepo   repositories.OrganizationRepositoryInterface
	assetRepo repositories.AssetRepositoryInterface
	logger    *zap.Logger
}

func NewOrganizationService(
	txManager repositories.TxManagerInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	assetRepo repositories.AssetRepositoryInterface,
	logger *zap.Logger,
) OrganizationServiceInterface {
	return &OrganizationService{txManager: txManager, orgRepo: orgRepo, assetRepo: assetRepo, logger: logger}
}

func (s *OrganizationService) ListOrganizations(ctx context.Context, orgType, active string) ([]entities.OrgParty, error) {
	filter := types.Filter{Filter: map[string]interface{}{}}
	if orgType != "" {
		if !oneOf(entities.OrgType(orgType), entities.OrgTypes) {
			return nil, apperrors.NewValidationError("Unknown organization type",
				apperrors.FieldIssue{Field: "type", Tag: "org_type", Message: "unknown organization type"})
		}
		filter.Filter["type"] = orgType
	}
	if active != "" {
		b, err := strconv.ParseBool(active)
		if err != nil {
			return nil, apperrors.NewValidationError("active must be true or false",
				apperrors.FieldIssue{Field: "active", Tag: "boolean", Message: "must be true or false"})
		}
		filter.Filter["active"] = b
	}
	return s.orgRepo.List(ctx, filter)
}

func (s *OrganizationService) GetOrganization(ctx context.Context, id string) (*entities.OrgParty, error) {
	org, err := s.orgRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, "Organization not found")
	}
	return org, nil
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, data dto.CreateOrganizationDTO) (*entities.OrgParty, error) {
	org := &entities.OrgParty{
		ID:        uuid.NewString(),
		Type:      entities.OrgType(data.Type),
		Name:      data.Name,
		R2Scope:   normalizeRef(data.R2Scope),
		RiskTier:  normalizeRef(data.RiskTier),
		Active:    data.Active == nil || *data.Active,
		Email:     normalizeRef(data.Email),
		Phone:     normalizeRef(data.Phone),
		Address:   normalizeRef(data.Address),
		City:      normalizeRef(data.City),
		State:     normalizeRef(data.State),
		ZipCode:   normalizeRef(data.ZipCode),
		Country:   normalizeRef(data.Country),
		CreatedBy: utils.PrincipalID(ctx),
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.orgRepo.Create(ctx, tx, org)
	})
	if err != nil {
		s.logger.Error("failed to create organization", zap.Error(err), zap.String("name", data.Name))
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, id string, data dto.UpdateOrganizationDTO, fields utils.PatchFields) (*entities.OrgParty, error) {
	var updated *entities.OrgParty
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		org, err := s.orgRepo.FindByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, "Organization not found")
		}

		if fields.Has("type") {
			if !data.Type.Valid {
				return notNullable("type")
			}
			org.Type = entities.OrgType(data.Type.String)
		}
		if fields.Has("name") {
			if !data.Name.Valid || data.Name.String == "" {
				return notNullable("name")
			}
			org.Name = data.Name.String
		}
		if fields.Has("active") {
			if !data.Active.Valid {
				return notNullable("active")
			}
			org.Active = data.Active.Bool
		}
		optional := map[string]struct {
			target **string
			value  *string
		}{
			"r2Scope":  {&org.R2Scope, utils.NullStringPtr(data.R2Scope)},
			"riskTier": {&org.RiskTier, utils.NullStringPtr(data.RiskTier)},
			"email":    {&org.Email, utils.NullStringPtr(data.Email)},
			"phone":    {&org.Phone, utils.NullStringPtr(data.Phone)},
			"address":  {&org.Address, utils.NullStringPtr(data.Address)},
			"city":     {&org.City, utils.NullStringPtr(data.City)},
			"state":    {&org.State, utils.NullStringPtr(data.State)},
			"zipCode":  {&org.ZipCode, utils.NullStringPtr(data.ZipCode)},
			"country":  {&org.Country, utils.NullStringPtr(data.Country)},
		}
		for field, f := range optional {
			if fields.Has(field) {
				*f.target = normalizeRef(f.value)
			}
		}

		if err := s.orgRepo.Update(ctx, tx, org); err != nil {
			return err
		}
		updated = org
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update organization", zap.Error(err), zap.String("orgId", id))
		return nil, err
	}
	return updated, nil
}

// DeleteOrganization refuses while the party still owns assets.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, id string) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.orgRepo.FindByID(ctx, tx, id); err != nil {
			return notFoundAs(err, "Organization not found")
		}
		owned, err := s.assetRepo.CountByClient(ctx, tx, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return apperrors.NewConflictError("Organization owns %d asset(s) and cannot be deleted", owned)
		}
		return s.orgRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		s.logger.Warn("organization not deleted", zap.Error(err), zap.String("orgId", id))
		return err
	}
	s.logger.Info("organization deleted", zap.String("orgId", id))
	return nil
}

func (s *OrganizationService) ListLocations(ctx context.Context, orgID string) ([]entities.Location, error) {
	if _, err := s.orgRepo.FindByID(ctx, nil, orgID); err != nil {
		return nil, notFoundAs(err, "Organization not found")
	}
	return s.orgRepo.ListLocations(ctx, orgID)
}

func (s *OrganizationService) CreateLocation(ctx context.Context, orgID string, data dto.CreateLocationDTO) (*entities.Location, error) {
	loc := &entities.Location{
		ID:      uuid.NewString(),
		OrgID:   orgID,
		Name:    data.Name,
		Address: normalizeRef(data.Address),
	}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.orgRepo.FindByID(ctx, tx, orgID); err != nil {
			return notFoundAs(err, "Organization not found")
		}
		return s.orgRepo.CreateLocation(ctx, tx, loc)
	})
	if err != nil {
		s.logger.Error("failed to create location", zap.Error(err), zap.String("orgId", orgID))
		return nil, err
	}
	return loc, nil
}

func oneOf[T comparable](v T, allowed []T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
