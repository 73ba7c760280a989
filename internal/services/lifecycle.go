package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	"itad-system/pkg/utils"
)

// assetLifecycle writes a status or custody change together with its audit row.
// Callers hold the asset row lock inside tx.
type assetLifecycle struct {
	assetRepo repositories.AssetRepositoryInterface
	auditRepo repositories.AuditRepositoryInterface
}

func newAssetLifecycle(assetRepo repositories.AssetRepositoryInterface, auditRepo repositories.AuditRepositoryInterface) *assetLifecycle {
	return &assetLifecycle{assetRepo: assetRepo, auditRepo: auditRepo}
}

// transition appends a history row from the asset's current status and moves the row to the new one.
func (l *assetLifecycle) transition(ctx context.Context, tx pgx.Tx, asset *entities.Asset, to entities.AssetStatus, notes string) error {
	from := asset.CurrentStatus
	if err := l.history(ctx, tx, asset.ID, &from, to, notes); err != nil {
		return err
	}
	if err := l.assetRepo.UpdateStatus(ctx, tx, asset.ID, to); err != nil {
		return err
	}
	asset.CurrentStatus = to
	return nil
}

// history records a status change without touching the asset row; from is nil for the first entry.
func (l *assetLifecycle) history(ctx context.Context, tx pgx.Tx, assetID string, from *entities.AssetStatus, to entities.AssetStatus, notes string) error {
	h := &entities.AssetStatusHistory{
		ID:         uuid.NewString(),
		AssetID:    assetID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  utils.PrincipalID(ctx),
		Notes:      utils.StrPtrOrNil(notes),
	}
	if err := l.auditRepo.AppendStatusHistory(ctx, tx, h); err != nil {
		return fmt.Errorf("failed to record status change to %s: %w", to, err)
	}
	return nil
}

func (l *assetLifecycle) custody(ctx context.Context, tx pgx.Tx, assetID string, eventType entities.CustodyEventType, from, to *string, notes string) error {
	e := &entities.ChainOfCustodyEvent{
		ID:             uuid.NewString(),
		AssetID:        assetID,
		EventType:      eventType,
		FromLocationID: from,
		ToLocationID:   to,
		PerformedBy:    utils.PrincipalID(ctx),
		Notes:          utils.StrPtrOrNil(notes),
	}
	if err := l.auditRepo.AppendCustodyEvent(ctx, tx, e); err != nil {
		return fmt.Errorf("failed to record %s custody event: %w", eventType, err)
	}
	return nil
}
