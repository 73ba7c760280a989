package services

import (
	"context"

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

const duplicateOrderNumberMessage = "Order number already exists"

type IntakeServiceInterface interface {
	ListIntakeOrders(ctx context.Context) ([]entities.IntakeOrder, error)
	CreateIntakeOrder(ctx context.Context, data dto.CreateIntakeOrderDTO) (*entities.IntakeOrder, error)
}

type IntakeService struct {
	txManager  repositories.TxManagerInterface
	intakeRepo repositories.IntakeRepositoryInterface
	orgRepo    repositories.OrganizationRepositoryInterface
	logger     *zap.Logger
}

func NewIntakeService(
	txManager repositories.TxManagerInterface,
	intakeRepo repositories.IntakeRepositoryInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	logger *zap.Logger,
) IntakeServiceInterface {
	return &IntakeService{txManager: txManager, intakeRepo: intakeRepo, orgRepo: orgRepo, logger: logger}
}

func (s *IntakeService) ListIntakeOrders(ctx context.Context) ([]entities.IntakeOrder, error) {
	return s.intakeRepo.List(ctx)
}

// CreateIntakeOrder rejects a duplicate order number, compared case-insensitively, before writing anything.
// The unique index on lower(order_number) covers concurrent creators.
func (s *IntakeService) CreateIntakeOrder(ctx context.Context, data dto.CreateIntakeOrderDTO) (*entities.IntakeOrder, error) {
	received, ok := validation.ParseISODate(data.ReceivedDate)
	if !ok {
		return nil, apperrors.NewValidationError("Invalid received date",
			apperrors.FieldIssue{Field: "receivedDate", Tag: "iso_date", Message: "must be a date"})
	}
	if len(data.Lines) == 0 {
		return nil, apperrors.NewValidationError("At least one line item is required",
			apperrors.FieldIssue{Field: "lines", Tag: "min", Message: "at least one line item is required"})
	}

	order := &entities.IntakeOrder{
		ID:             uuid.NewString(),
		ClientID:       data.ClientID,
		OrderNumber:    data.OrderNumber,
		ReceivedDate:   received,
		PackingListNum: data.PackingListNum,
		TotalWeightKg:  data.TotalWeightKg,
		Notes:          data.Notes,
		CreatedBy:      utils.PrincipalID(ctx),
	}
	for _, l := range data.Lines {
		quantity := 1
		if l.Quantity != nil {
			quantity = *l.Quantity
		}
		order.Lines = append(order.Lines, entities.IntakeLine{
			ID:            uuid.NewString(),
			IntakeOrderID: order.ID,
			Description:   l.Description,
			Quantity:      quantity,
			WeightKg:      l.WeightKg,
			AssetID:       normalizeRef(l.AssetID),
		})
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.intakeRepo.OrderNumberExists(ctx, tx, order.OrderNumber)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewConflictError(duplicateOrderNumberMessage)
		}

		client, err := s.orgRepo.FindByID(ctx, tx, order.ClientID)
		if err != nil {
			return clientNotFound(err)
		}
		order.Client = client

		return s.intakeRepo.Create(ctx, tx, order)
	})
	if err != nil {
		s.logger.Warn("intake order not created", zap.Error(err), zap.String("orderNumber", data.OrderNumber))
		return nil, err
	}

	s.logger.Info("intake order created", zap.String("intakeOrderId", order.ID), zap.Int("lines", order.LineCount))
	return order, nil
}
