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
	"itad-system/pkg/utils"
)

const sanitizeOperation = "sanitize"

type SanitizationServiceInterface interface {
	// Sanitize records an action and a passed result. idempotencyKey may be empty.
	Sanitize(ctx context.Context, assetID string, data dto.SanitizeAssetDTO, idempotencyKey string) (*dto.SanitizeResultDTO, error)
}

type SanitizationService struct {
	txManager   repositories.TxManagerInterface
	assetRepo   repositories.AssetRepositoryInterface
	sanRepo     repositories.SanitizationRepositoryInterface
	idempotency IdempotencyServiceInterface
	lifecycle   *assetLifecycle
	logger      *zap.Logger
	now         func() time.Time
}

func NewSanitizationService(
	txManager repositories.TxManagerInterface,
	assetRepo repositories.AssetRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	sanRepo repositories.SanitizationRepositoryInterface,
	idempotency IdempotencyServiceInterface,
	logger *zap.Logger,
) SanitizationServiceInterface {
	return &SanitizationService{
		txManager:   txManager,
		assetRepo:   assetRepo,
		sanRepo:     sanRepo,
		idempotency: idempotency,
		lifecycle:   newAssetLifecycle(assetRepo, auditRepo),
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SanitizationService) Sanitize(ctx context.Context, assetID string, data dto.SanitizeAssetDTO, idempotencyKey string) (*dto.SanitizeResultDTO, error) {
	return runIdempotent(ctx, s.idempotency, idempotencyKey, sanitizeOperation, assetID, data, func() (*dto.SanitizeResultDTO, error) {
		return s.sanitize(ctx, assetID, data)
	})
}

// sanitize always writes a new action/result pair. Status history and the SANITIZED custody event
// are only written when the asset is not SANITIZED yet.
func (s *SanitizationService) sanitize(ctx context.Context, assetID string, data dto.SanitizeAssetDTO) (*dto.SanitizeResultDTO, error) {
	now := s.now()
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	certificate := utils.SafeDeref(normalizeRef(data.CertificateNumber))
	if certificate == "" {
		certificate = fmt.Sprintf("CERT-%d", now.UnixMilli())
	}

	action := &entities.SanitizationAction{
		ID:                uuid.NewString(),
		AssetID:           assetID,
		Method:            entities.SanitizationMethod(data.Method),
		ToolName:          normalizeRef(data.ToolName),
		ToolVersion:       normalizeRef(data.ToolVersion),
		CertificateNumber: normalizeRef(data.CertificateNumber),
		Verifier:          &principal.Name,
		StartedAt:         now,
		EndedAt:           &now,
	}
	result := &entities.SanitizationResult{
		ID:                uuid.NewString(),
		AssetID:           assetID,
		ActionID:          action.ID,
		Passed:            true,
		VerifiedAt:        now,
		VerifierID:        &principal.ID,
		CertificateNumber: certificate,
		Notes:             normalizeRef(data.Notes),
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := s.assetRepo.LockByID(ctx, tx, assetID)
		if err != nil {
			return notFoundAs(err, "Asset not found")
		}
		if err := s.sanRepo.CreateAction(ctx, tx, action); err != nil {
			return err
		}
		if err := s.sanRepo.CreateResult(ctx, tx, result); err != nil {
			return err
		}

		if asset.CurrentStatus == entities.AssetStatusSanitized {
			return nil
		}
		if err := s.lifecycle.transition(ctx, tx, asset, entities.AssetStatusSanitized, "Hard drive sanitized"); err != nil {
			return err
		}
		return s.lifecycle.custody(ctx, tx, assetID, entities.CustodySanitized, nil, nil,
			fmt.Sprintf("Sanitized using %s", action.Method))
	})
	if err != nil {
		s.logger.Error("failed to sanitize asset", zap.Error(err), zap.String("assetId", assetID))
		return nil, err
	}

	s.logger.Info("asset sanitized",
		zap.String("assetId", assetID),
		zap.String("method", string(action.Method)),
		zap.String("certificate", certificate))
	result.Verifier = principal

	return &dto.SanitizeResultDTO{
		Success:            true,
		SanitizationResult: result,
		CertificateNumber:  result.CertificateNumber,
	}, nil
}
