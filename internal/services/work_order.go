package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/utils"
	"itad-system/pkg/validation"
)

type WorkOrderServiceInterface interface {
	ListWorkOrders(ctx context.Context, status string) ([]entities.WorkOrder, error)
	OpenWorkOrder(ctx context.Context, data dto.CreateWorkOrderDTO) (*entities.WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, id string, data dto.UpdateWorkOrderDTO, fields utils.PatchFields) (*entities.WorkOrder, error)
	AddStep(ctx context.Context, workOrderID string, data dto.WorkOrderStepDTO) (*entities.WorkOrderStep, error)
	UpdateStep(ctx context.Context, workOrderID, stepID string, data dto.UpdateWorkOrderStepDTO, fields utils.PatchFields) (*entities.WorkOrderStep, error)
}

type WorkOrderService struct {
	txManager repositories.TxManagerInterface
	woRepo    repositories.WorkOrderRepositoryInterface
	assetRepo repositories.AssetRepositoryInterface
	lifecycle *assetLifecycle
	logger    *zap.Logger
	now       func() time.Time
}

func NewWorkOrderService(
	txManager repositories.TxManagerInterface,
	woRepo repositories.WorkOrderRepositoryInterface,
	assetRepo repositories.AssetRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	logger *zap.Logger,
) WorkOrderServiceInterface {
	return &WorkOrderService{
		txManager: txManager,
		woRepo:    woRepo,
		assetRepo: assetRepo,
		lifecycle: newAssetLifecycle(assetRepo, auditRepo),
		logger:    logger,
		now:       time.Now,
	}
}

// ListWorkOrders accepts "open", "closed" or "" for all.
func (s *WorkOrderService) ListWorkOrders(ctx context.Context, status string) ([]entities.WorkOrder, error) {
	if status != "" && status != "open" && status != "closed" {
		return nil, apperrors.NewValidationError("status must be open or closed",
			apperrors.FieldIssue{Field: "status", Tag: "oneof", Message: "must be open or closed"})
	}
	orders, err := s.woRepo.List(ctx, repositories.WorkOrderListFilter{Status: status})
	if err != nil {
		s.logger.Error("failed to list work orders", zap.Error(err), zap.String("status", status))
		return nil, err
	}
	if err := s.attachAssetTags(ctx, nil, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OpenWorkOrder creates the order with its steps. A RECEIVED asset moves to IN_PROCESS in the same transaction;
// any other status is left as is.
func (s *WorkOrderService) OpenWorkOrder(ctx context.Context, data dto.CreateWorkOrderDTO) (*entities.WorkOrder, error) {
	wo := &entities.WorkOrder{
		ID:      uuid.NewString(),
		AssetID: data.AssetID,
		WoType:  entities.WorkOrderType(data.WoType),
		TechID:  normalizeRef(data.TechID),
		Notes:   data.Notes,
	}
	if wo.TechID == nil {
		wo.TechID = utils.PrincipalID(ctx)
	}
	for _, st := range data.Steps {
		step, err := newStep(wo.ID, st)
		if err != nil {
			return nil, err
		}
		wo.Steps = append(wo.Steps, *step)
	}

	var opened *entities.WorkOrder
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := s.assetRepo.LockByID(ctx, tx, data.AssetID)
		if err != nil {
			return notFoundAs(err, "Asset not found")
		}
		if err := s.woRepo.Create(ctx, tx, wo); err != nil {
			return err
		}
		if asset.CurrentStatus == entities.AssetStatusReceived {
			note := fmt.Sprintf("Work order opened: %s", wo.WoType)
			if err := s.lifecycle.transition(ctx, tx, asset, entities.AssetStatusInProcess, note); err != nil {
				return err
			}
		}

		opened, err = s.woRepo.FindByID(ctx, tx, wo.ID)
		if err != nil {
			return err
		}
		return s.attachAssetTags(ctx, tx, []entities.WorkOrder{*opened})
	})
	if err != nil {
		s.logger.Error("failed to open work order", zap.Error(err), zap.String("assetId", data.AssetID))
		return nil, err
	}

	s.logger.Info("work order opened", zap.String("workOrderId", opened.ID), zap.String("type", string(opened.WoType)))
	return opened, nil
}

// UpdateWorkOrder: a sent closedAt that is null or empty closes the order at server time.
func (s *WorkOrderService) UpdateWorkOrder(ctx context.Context, id string, data dto.UpdateWorkOrderDTO, fields utils.PatchFields) (*entities.WorkOrder, error) {
	var updated *entities.WorkOrder
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		wo, err := s.woRepo.FindByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, "Work order not found")
		}

		if fields.Has("techId") {
			wo.TechID = normalizeRef(utils.NullStringPtr(data.TechID))
		}
		if fields.Has("notes") {
			wo.Notes = utils.NullStringPtr(data.Notes)
		}
		if fields.Has("closedAt") {
			closedAt := s.now()
			if data.ClosedAt.Valid && data.ClosedAt.String != "" {
				t, ok := validation.ParseISODate(data.ClosedAt.String)
				if !ok {
					return apperrors.NewValidationError("Invalid closedAt",
						apperrors.FieldIssue{Field: "closedAt", Tag: "iso_date", Message: "must be a date or timestamp"})
				}
				closedAt = t
			}
			wo.ClosedAt = &closedAt
		}

		if err := s.woRepo.Update(ctx, tx, wo); err != nil {
			return err
		}
		updated, err = s.woRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.attachAssetTags(ctx, tx, []entities.WorkOrder{*updated})
	})
	if err != nil {
		s.logger.Error("failed to update work order", zap.Error(err), zap.String("workOrderId", id))
		return nil, err
	}
	return updated, nil
}

// AddStep stores the caller's sequence as given; duplicates and gaps are allowed.
func (s *WorkOrderService) AddStep(ctx context.Context, workOrderID string, data dto.WorkOrderStepDTO) (*entities.WorkOrderStep, error) {
	step, err := newStep(workOrderID, data)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.woRepo.FindByID(ctx, tx, workOrderID); err != nil {
			return notFoundAs(err, "Work order not found")
		}
		return s.woRepo.CreateStep(ctx, tx, step)
	})
	if err != nil {
		s.logger.Error("failed to add work order step", zap.Error(err), zap.String("workOrderId", workOrderID))
		return nil, err
	}
	return step, nil
}

func (s *WorkOrderService) UpdateStep(ctx context.Context, workOrderID, stepID string, data dto.UpdateWorkOrderStepDTO, fields utils.PatchFields) (*entities.WorkOrderStep, error) {
	if stepID == "" {
		return nil, apperrors.NewValidationError("stepId is required",
			apperrors.FieldIssue{Field: "stepId", Tag: "required", Message: "stepId is required"})
	}

	var step *entities.WorkOrderStep
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		step, err = s.woRepo.FindStep(ctx, tx, workOrderID, stepID)
		if err != nil {
			return notFoundAs(err, "Work order step not found")
		}

		if fields.Has("sequence") {
			if !data.Sequence.Valid {
				return notNullable("sequence")
			}
			step.Sequence = data.Sequence.Int
		}
		if fields.Has("procedureCode") {
			step.ProcedureCode = utils.NullStringPtr(data.ProcedureCode)
		}
		if fields.Has("startedAt") {
			step.StartedAt = optionalTime(data.StartedAt.String)
		}
		if fields.Has("endedAt") {
			step.EndedAt = optionalTime(data.EndedAt.String)
		}
		if fields.Has("passed") {
			step.Passed = nil
			if data.Passed.Valid {
				step.Passed = &data.Passed.Bool
			}
		}
		if fields.Has("notes") {
			step.Notes = utils.NullStringPtr(data.Notes)
		}
		return s.woRepo.UpdateStep(ctx, tx, step)
	})
	if err != nil {
		s.logger.Error("failed to update work order step", zap.Error(err), zap.String("stepId", stepID))
		return nil, err
	}
	return step, nil
}

// attachAssetTags fills each order's asset with its first identifier.
func (s *WorkOrderService) attachAssetTags(ctx context.Context, tx pgx.Tx, orders []entities.WorkOrder) error {
	ids := make([]string, 0, len(orders))
	for _, wo := range orders {
		ids = append(ids, wo.AssetID)
	}
	identifiers, err := s.assetRepo.IdentifiersFor(ctx, tx, ids)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].Asset == nil {
			continue
		}
		if idents := identifiers[orders[i].AssetID]; len(idents) > 0 {
			orders[i].Asset.Identifiers = idents[:1]
		}
	}
	return nil
}

func newStep(workOrderID string, data dto.WorkOrderStepDTO) (*entities.WorkOrderStep, error) {
	if data.Sequence < 1 {
		return nil, apperrors.NewValidationError("sequence must be at least 1",
			apperrors.FieldIssue{Field: "sequence", Tag: "min", Message: "must be at least 1"})
	}
	return &entities.WorkOrderStep{
		ID:            uuid.NewString(),
		WorkOrderID:   workOrderID,
		Sequence:      data.Sequence,
		ProcedureCode: normalizeRef(data.ProcedureCode),
		StartedAt:     optionalTime(utils.SafeDeref(data.StartedAt)),
		EndedAt:       optionalTime(utils.SafeDeref(data.EndedAt)),
		Passed:        data.Passed,
		Notes:         normalizeRef(data.Notes),
	}, nil
}

// optionalTime maps "" or an unparseable value to nil; DTO validation rejects the latter earlier.
func optionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, ok := validation.ParseISODate(s)
	if !ok {
		return nil
	}
	return &t
}
