package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
	"itad-system/pkg/utils"
	"itad-system/pkg/validation"
)

// unassignedSentinel is what asset forms post when the assignee picker is cleared.
const unassignedSentinel = "unassigned"

type AssetServiceInterface interface {
	ListAssets(ctx context.Context, filter types.Filter) ([]entities.Asset, uint64, error)
	GetAsset(ctx context.Context, id string) (*entities.Asset, error)
	CreateAsset(ctx context.Context, data dto.CreateAssetDTO) (*entities.Asset, error)
	UpdateAsset(ctx context.Context, id string, data dto.UpdateAssetDTO, fields utils.PatchFields) (*entities.Asset, error)
}

type AssetService struct {
	txManager repositories.TxManagerInterface
	assetRepo repositories.AssetRepositoryInterface
	auditRepo repositories.AuditRepositoryInterface
	orgRepo   repositories.OrganizationRepositoryInterface
	woRepo    repositories.WorkOrderRepositoryInterface
	sanRepo   repositories.SanitizationRepositoryInterface
	lifecycle *assetLifecycle
	logger    *zap.Logger
}

func NewAssetService(
	txManager repositories.TxManagerInterface,
	assetRepo repositories.AssetRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	woRepo repositories.WorkOrderRepositoryInterface,
	sanRepo repositories.SanitizationRepositoryInterface,
	logger *zap.Logger,
) AssetServiceInterface {
	return &AssetService{
		txManager: txManager,
		assetRepo: assetRepo,
		auditRepo: auditRepo,
		orgRepo:   orgRepo,
		woRepo:    woRepo,
		sanRepo:   sanRepo,
		lifecycle: newAssetLifecycle(assetRepo, auditRepo),
		logger:    logger,
	}
}

func (s *AssetService) ListAssets(ctx context.Context, filter types.Filter) ([]entities.Asset, uint64, error) {
	assets, total, err := s.assetRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list assets", zap.Error(err), zap.Any("filter", filter.Filter))
		return nil, 0, err
	}
	return assets, total, nil
}

// GetAsset returns the asset with every relation the detail view shows, audit logs newest first.
func (s *AssetService) GetAsset(ctx context.Context, id string) (*entities.Asset, error) {
	asset, err := s.assetRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, "Asset not found")
	}
	if err := s.loadParts(ctx, nil, asset); err != nil {
		return nil, err
	}

	if asset.StatusHistory, err = s.auditRepo.StatusHistory(ctx, nil, id); err != nil {
		return nil, err
	}
	if asset.CocEvents, err = s.auditRepo.CustodyEvents(ctx, nil, id); err != nil {
		return nil, err
	}
	if asset.WorkOrders, err = s.woRepo.List(ctx, repositories.WorkOrderListFilter{AssetID: id}); err != nil {
		return nil, err
	}
	results, err := s.sanRepo.ResultsFor(ctx, nil, []string{id})
	if err != nil {
		return nil, err
	}
	asset.SanitizationResults = results[id]
	return asset, nil
}

func (s *AssetService) CreateAsset(ctx context.Context, data dto.CreateAssetDTO) (*entities.Asset, error) {
	asset := &entities.Asset{
		ID:                uuid.NewString(),
		ClientID:          data.ClientID,
		Manufacturer:      data.Manufacturer,
		Model:             data.Model,
		Processor:         data.Processor,
		RamSizeGb:         data.RamSizeGb,
		StorageType:       data.StorageType,
		StorageCapacityGb: data.StorageCapacityGb,
		ScreenSizeInches:  data.ScreenSizeInches,
		OperatingSystem:   data.OperatingSystem,
		CurrentStatus:     entities.AssetStatusReceived,
		CurrentLocationID: normalizeRef(data.CurrentLocationID),
		AssignedToID:      normalizeAssignee(data.AssignedToID),
		DataBearing:       data.DataBearing,
		Hazmat:            data.Hazmat,
		ResaleValue:       data.ResaleValue,
		R2v3Compliance:    data.R2v3Compliance,
		ComplianceNotes:   data.ComplianceNotes,
	}
	if data.PurchaseDate != nil {
		t, _ := validation.ParseISODate(*data.PurchaseDate)
		asset.PurchaseDate = &t
	}
	for _, ident := range data.Identifiers {
		asset.Identifiers = append(asset.Identifiers, entities.AssetIdentifier{
			ID:      uuid.NewString(),
			AssetID: asset.ID,
			IDType:  entities.IdentifierType(ident.IDType),
			IDValue: ident.IDValue,
		})
	}
	for _, hd := range data.HardDrives {
		asset.HardDrives = append(asset.HardDrives, entities.HardDrive{
			ID:                     uuid.NewString(),
			AssetID:                asset.ID,
			SerialNumber:           hd.SerialNumber,
			CapacityGb:             hd.CapacityGb,
			ValueUsd:               hd.ValueUsd,
			DestructionStatus:      hd.DestructionStatus,
			DestructionCertificate: hd.DestructionCertificate,
		})
	}
	if len(asset.Identifiers) == 0 {
		return nil, apperrors.NewValidationError("At least one identifier is required",
			apperrors.FieldIssue{Field: "identifiers", Tag: "min", Message: "at least one identifier is required"})
	}

	var created *entities.Asset
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.orgRepo.FindByID(ctx, tx, data.ClientID); err != nil {
			return clientNotFound(err)
		}
		if err := s.requireLocation(ctx, tx, asset.CurrentLocationID); err != nil {
			return err
		}
		if err := s.assetRepo.Create(ctx, tx, asset); err != nil {
			return err
		}
		if err := s.lifecycle.history(ctx, tx, asset.ID, nil, entities.AssetStatusReceived, ""); err != nil {
			return err
		}
		if err := s.lifecycle.custody(ctx, tx, asset.ID, entities.CustodyReceived, nil, asset.CurrentLocationID, ""); err != nil {
			return err
		}

		var err error
		created, err = s.reload(ctx, tx, asset.ID)
		return err
	})
	if err != nil {
		s.logger.Error("failed to create asset", zap.Error(err), zap.String("clientId", data.ClientID))
		return nil, err
	}

	s.logger.Info("asset created", zap.String("assetId", created.ID), zap.String("tag", created.PrimaryTag()))
	return created, nil
}

// UpdateAsset applies only the fields present in the request. A status change appends one history row,
// a location change one MOVED custody event; both commit with the field update or not at all.
func (s *AssetService) UpdateAsset(ctx context.Context, id string, data dto.UpdateAssetDTO, fields utils.PatchFields) (*entities.Asset, error) {
	var updated *entities.Asset
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.assetRepo.LockByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, "Asset not found")
		}

		next := *current
		if err := applyAssetPatch(&next, data, fields); err != nil {
			return err
		}
		moved := fields.Has("currentLocationId") && utils.DiffPtr(current.CurrentLocationID, next.CurrentLocationID)
		if moved {
			if err := s.requireLocation(ctx, tx, next.CurrentLocationID); err != nil {
				return err
			}
		}

		if next.CurrentStatus != current.CurrentStatus {
			from := current.CurrentStatus
			if err := s.lifecycle.history(ctx, tx, id, &from, next.CurrentStatus, ""); err != nil {
				return err
			}
		}
		if moved {
			if err := s.lifecycle.custody(ctx, tx, id, entities.CustodyMoved, current.CurrentLocationID, next.CurrentLocationID, ""); err != nil {
				return err
			}
		}

		if err := s.assetRepo.Update(ctx, tx, &next); err != nil {
			return err
		}
		updated, err = s.reload(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("failed to update asset", zap.Error(err), zap.String("assetId", id))
		return nil, err
	}
	return updated, nil
}

// requireLocation checks a target location before any audit row references it; nil means no location.
func (s *AssetService) requireLocation(ctx context.Context, tx pgx.Tx, id *string) error {
	if id == nil {
		return nil
	}
	exists, err := s.orgRepo.LocationExists(ctx, tx, *id)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError("Location not found")
	}
	return nil
}

func (s *AssetService) reload(ctx context.Context, tx pgx.Tx, id string) (*entities.Asset, error) {
	asset, err := s.assetRepo.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadParts(ctx, tx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) loadParts(ctx context.Context, tx pgx.Tx, asset *entities.Asset) error {
	ids := []string{asset.ID}
	identifiers, err := s.assetRepo.IdentifiersFor(ctx, tx, ids)
	if err != nil {
		return err
	}
	drives, err := s.assetRepo.HardDrivesFor(ctx, tx, ids)
	if err != nil {
		return err
	}
	asset.Identifiers = identifiers[asset.ID]
	asset.HardDrives = drives[asset.ID]
	return nil
}

func applyAssetPatch(a *entities.Asset, data dto.UpdateAssetDTO, fields utils.PatchFields) error {
	// only the two references may be cleared with null; an empty purchaseDate clears the date
	nonNullable := []struct {
		field string
		valid bool
	}{
		{"currentStatus", data.CurrentStatus.Valid},
		{"dataBearing", data.DataBearing.Valid},
		{"hazmat", data.Hazmat.Valid},
		{"manufacturer", data.Manufacturer.Valid},
		{"model", data.Model.Valid},
		{"purchaseDate", data.PurchaseDate.Valid},
		{"resaleValue", data.ResaleValue.Valid},
		{"processor", data.Processor.Valid},
		{"ramSizeGb", data.RamSizeGb.Valid},
		{"storageType", data.StorageType.Valid},
		{"storageCapacityGb", data.StorageCapacityGb.Valid},
		{"screenSizeInches", data.ScreenSizeInches.Valid},
		{"operatingSystem", data.OperatingSystem.Valid},
		{"r2v3Compliance", data.R2v3Compliance.Valid},
		{"complianceNotes", data.ComplianceNotes.Valid},
		{"complianceSummary", data.ComplianceSummary.Valid},
		{"suggestedNextAction", data.SuggestedNextAction.Valid},
	}
	for _, f := range nonNullable {
		if fields.Has(f.field) && !f.valid {
			return notNullable(f.field)
		}
	}

	if fields.Has("currentStatus") {
		a.CurrentStatus = entities.AssetStatus(data.CurrentStatus.String)
	}
	if fields.Has("dataBearing") {
		a.DataBearing = data.DataBearing.Bool
	}
	if fields.Has("hazmat") {
		a.Hazmat = data.Hazmat.Bool
	}
	if fields.Has("purchaseDate") {
		a.PurchaseDate = nil
		if data.PurchaseDate.String != "" {
			t, _ := validation.ParseISODate(data.PurchaseDate.String)
			a.PurchaseDate = &t
		}
	}
	if fields.Has("currentLocationId") {
		a.CurrentLocationID = normalizeRef(utils.NullStringPtr(data.CurrentLocationID))
	}
	if fields.Has("assignedToId") {
		a.AssignedToID = normalizeAssignee(utils.NullStringPtr(data.AssignedToID))
	}
	if fields.Has("resaleValue") {
		a.ResaleValue = data.ResaleValue
	}
	if fields.Has("ramSizeGb") {
		a.RamSizeGb = utils.NullIntPtr(data.RamSizeGb)
	}
	if fields.Has("storageCapacityGb") {
		a.StorageCapacityGb = utils.NullIntPtr(data.StorageCapacityGb)
	}
	if fields.Has("screenSizeInches") {
		a.ScreenSizeInches = utils.NullFloatPtr(data.ScreenSizeInches)
	}

	textFields := map[string]struct {
		target **string
		value  *string
	}{
		"manufacturer":        {&a.Manufacturer, utils.NullStringPtr(data.Manufacturer)},
		"model":               {&a.Model, utils.NullStringPtr(data.Model)},
		"processor":           {&a.Processor, utils.NullStringPtr(data.Processor)},
		"storageType":         {&a.StorageType, utils.NullStringPtr(data.StorageType)},
		"operatingSystem":     {&a.OperatingSystem, utils.NullStringPtr(data.OperatingSystem)},
		"r2v3Compliance":      {&a.R2v3Compliance, utils.NullStringPtr(data.R2v3Compliance)},
		"complianceNotes":     {&a.ComplianceNotes, utils.NullStringPtr(data.ComplianceNotes)},
		"complianceSummary":   {&a.ComplianceSummary, utils.NullStringPtr(data.ComplianceSummary)},
		"suggestedNextAction": {&a.SuggestedNextAction, utils.NullStringPtr(data.SuggestedNextAction)},
	}
	for field, f := range textFields {
		if fields.Has(field) {
			*f.target = f.value
		}
	}
	return nil
}

func notNullable(field string) error {
	return apperrors.NewValidationError(fmt.Sprintf("%s cannot be null", field),
		apperrors.FieldIssue{Field: field, Tag: "required", Message: "cannot be null"})
}

// normalizeRef treats an empty reference as absent.
func normalizeRef(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	return ref
}

func normalizeAssignee(ref *string) *string {
	ref = normalizeRef(ref)
	if ref != nil && *ref == unassignedSentinel {
		return nil
	}
	return ref
}

func clientNotFound(err error) error {
	return notFoundAs(err, "Client not found")
}

// notFoundAs replaces a bare ErrNotFound with a message naming the missing entity.
func notFoundAs(err error, message string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError("%s", message)
	}
	return err
}
