package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/internal/repositories"
)

const disposeOperation = "dispose"

type DisposalServiceInterface interface {
	// Dispose sells the asset to a customer and ships it. idempotencyKey may be empty.
	Dispose(ctx context.Context, assetID string, data dto.DisposeAssetDTO, idempotencyKey string) (*dto.DisposeResultDTO, error)
}

type DisposalService struct {
	txManager   repositories.TxManagerInterface
	assetRepo   repositories.AssetRepositoryInterface
	orgRepo     repositories.OrganizationRepositoryInterface
	salesRepo   repositories.SalesRepositoryInterface
	idempotency IdempotencyServiceInterface
	lifecycle   *assetLifecycle
	logger      *zap.Logger
	now         func() time.Time
}

func NewDisposalService(
	txManager repositories.TxManagerInterface,
	assetRepo repositories.AssetRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	salesRepo repositories.SalesRepositoryInterface,
	idempotency IdempotencyServiceInterface,
	logger *zap.Logger,
) DisposalServiceInterface {
	return &DisposalService{
		txManager:   txManager,
		assetRepo:   assetRepo,
		orgRepo:     orgRepo,
		salesRepo:   salesRepo,
		idempotency: idempotency,
		lifecycle:   newAssetLifecycle(assetRepo, auditRepo),
		logger:      logger,
		now:         time.Now,
	}
}

func (s *DisposalService) Dispose(ctx context.Context, assetID string, data dto.DisposeAssetDTO, idempotencyKey string) (*dto.DisposeResultDTO, error) {
	return runIdempotent(ctx, s.idempotency, idempotencyKey, disposeOperation, assetID, data, func() (*dto.DisposeResultDTO, error) {
		return s.dispose(ctx, assetID, data)
	})
}

// dispose ships the asset whatever its prior status; terminal states are not guarded.
func (s *DisposalService) dispose(ctx context.Context, assetID string, data dto.DisposeAssetDTO) (*dto.DisposeResultDTO, error) {
	order := &entities.SalesOrder{
		ID:          uuid.NewString(),
		OrderNumber: salesOrderNumber(s.now()),
		CustomerID:  data.CustomerID,
		Status:      entities.SalesOrderStatusCompleted,
		Notes:       normalizeRef(data.Notes),
	}
	order.Lines = []entities.SalesLine{{
		ID:           uuid.NewString(),
		SalesOrderID: order.ID,
		AssetID:      assetID,
		UnitPrice:    data.SalePrice,
		TotalPrice:   data.SalePrice,
	}}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := s.assetRepo.LockByID(ctx, tx, assetID)
		if err != nil {
			return notFoundAs(err, "Asset not found")
		}
		if _, err := s.orgRepo.FindByID(ctx, tx, data.CustomerID); err != nil {
			return notFoundAs(err, "Customer not found")
		}
		if err := s.salesRepo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := s.lifecycle.transition(ctx, tx, asset, entities.AssetStatusShipped, "Disposed/Sold to customer"); err != nil {
			return err
		}
		return s.lifecycle.custody(ctx, tx, assetID, entities.CustodyShipped, nil, nil, "Asset disposed/sold")
	})
	if err != nil {
		s.logger.Error("failed to dispose asset", zap.Error(err), zap.String("assetId", assetID))
		return nil, err
	}

	s.logger.Info("asset disposed", zap.String("assetId", assetID), zap.String("salesOrder", order.OrderNumber))
	return &dto.DisposeResultDTO{Success: true, SalesOrder: order.OrderNumber}, nil
}

// salesOrderNumber is time based with a random suffix so two disposals in the same millisecond differ.
func salesOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("SO-%d-%s", now.UnixMilli(), suffix)
}
