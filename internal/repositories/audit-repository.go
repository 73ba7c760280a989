package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
)

// AuditRepositoryInterface covers the two append-only logs; the schema rejects UPDATE and DELETE on both.
type AuditRepositoryInterface interface {
	AppendStatusHistory(ctx context.Context, tx pgx.Tx, h *entities.AssetStatusHistory) error
	AppendCustodyEvent(ctx context.Context, tx pgx.Tx, e *entities.ChainOfCustodyEvent) error

	StatusHistory(ctx context.Context, tx pgx.Tx, assetID string) ([]entities.AssetStatusHistory, error)
	CustodyEvents(ctx context.Context, tx pgx.Tx, assetID string) ([]entities.ChainOfCustodyEvent, error)
	// RecentCustodyEvents returns the newest events across all assets, with the asset and its client attached.
	RecentCustodyEvents(ctx context.Context, limit uint64) ([]entities.ChainOfCustodyEvent, error)
}

type auditRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAuditRepository(storage *pgxpool.Pool, logger *zap.Logger) AuditRepositoryInterface {
	return &auditRepository{storage: storage, logger: logger}
}

func (r *auditRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *auditRepository) AppendStatusHistory(ctx context.Context, tx pgx.Tx, h *entities.AssetStatusHistory) error {
	query, args, err := psql.Insert("asset_status_history").
		Columns("id", "asset_id", "from_status", "to_status", "changed_by", "notes").
		Values(h.ID, h.AssetID, h.FromStatus, h.ToStatus, h.ChangedBy, h.Notes).
		Suffix("RETURNING changed_ts").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status history insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&h.ChangedTs); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Referenced asset or user does not exist")
		}
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

func (r *auditRepository) AppendCustodyEvent(ctx context.Context, tx pgx.Tx, e *entities.ChainOfCustodyEvent) error {
	query, args, err := psql.Insert("chain_of_custody_events").
		Columns("id", "asset_id", "event_type", "from_location_id", "to_location_id", "performed_by", "notes").
		Values(e.ID, e.AssetID, e.EventType, e.FromLocationID, e.ToLocationID, e.PerformedBy, e.Notes).
		Suffix("RETURNING event_ts").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build custody event insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&e.EventTs); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Referenced asset, location or user does not exist")
		}
		return fmt.Errorf("failed to append custody event: %w", err)
	}
	return nil
}

func (r *auditRepository) StatusHistory(ctx context.Context, tx pgx.Tx, assetID string) ([]entities.AssetStatusHistory, error) {
	query, args, err := psql.Select("h.id", "h.asset_id", "h.from_status", "h.to_status", "h.changed_by", "h.changed_ts", "h.notes", "u.name").
		From("asset_status_history AS h").
		LeftJoin("user_accounts u ON u.id = h.changed_by").
		Where(sq.Eq{"h.asset_id": assetID}).
		OrderBy("h.changed_ts DESC", "h.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status history query: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	defer rows.Close()

	history := make([]entities.AssetStatusHistory, 0)
	for rows.Next() {
		var h entities.AssetStatusHistory
		var changerName *string
		if err := rows.Scan(&h.ID, &h.AssetID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.ChangedTs, &h.Notes, &changerName); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		if h.ChangedBy != nil {
			h.Changer = &entities.UserAccount{ID: *h.ChangedBy, Name: deref(changerName)}
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *auditRepository) custodySelect() sq.SelectBuilder {
	return psql.Select("e.id", "e.asset_id", "e.event_type", "e.from_location_id", "e.to_location_id",
		"e.performed_by", "e.event_ts", "e.notes", "fl.name", "tl.name", "u.name").
		From("chain_of_custody_events AS e").
		LeftJoin("locations fl ON fl.id = e.from_location_id").
		LeftJoin("locations tl ON tl.id = e.to_location_id").
		LeftJoin("user_accounts u ON u.id = e.performed_by")
}

func scanCustodyEvent(row pgx.Row, extra ...any) (entities.ChainOfCustodyEvent, error) {
	var e entities.ChainOfCustodyEvent
	var fromName, toName, performerName *string
	dest := []any{&e.ID, &e.AssetID, &e.EventType, &e.FromLocationID, &e.ToLocationID,
		&e.PerformedBy, &e.EventTs, &e.Notes, &fromName, &toName, &performerName}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return e, fmt.Errorf("failed to scan custody event: %w", err)
	}
	if e.FromLocationID != nil {
		e.FromLocation = &entities.Location{ID: *e.FromLocationID, Name: deref(fromName)}
	}
	if e.ToLocationID != nil {
		e.ToLocation = &entities.Location{ID: *e.ToLocationID, Name: deref(toName)}
	}
	if e.PerformedBy != nil {
		e.Performer = &entities.UserAccount{ID: *e.PerformedBy, Name: deref(performerName)}
	}
	return e, nil
}

func (r *auditRepository) CustodyEvents(ctx context.Context, tx pgx.Tx, assetID string) ([]entities.ChainOfCustodyEvent, error) {
	query, args, err := r.custodySelect().
		Where(sq.Eq{"e.asset_id": assetID}).
		OrderBy("e.event_ts DESC", "e.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build custody query: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load custody events: %w", err)
	}
	defer rows.Close()

	events := make([]entities.ChainOfCustodyEvent, 0)
	for rows.Next() {
		e, err := scanCustodyEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *auditRepository) RecentCustodyEvents(ctx context.Context, limit uint64) ([]entities.ChainOfCustodyEvent, error) {
	query, args, err := r.custodySelect().
		Columns("a.manufacturer", "a.model", "c.name").
		Join("assets a ON a.id = e.asset_id").
		Join("org_parties c ON c.id = a.client_id").
		OrderBy("e.event_ts DESC", "e.id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build custody report query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load custody events: %w", err)
	}
	defer rows.Close()

	events := make([]entities.ChainOfCustodyEvent, 0)
	for rows.Next() {
		var manufacturer, model *string
		var clientName string
		e, err := scanCustodyEvent(rows, &manufacturer, &model, &clientName)
		if err != nil {
			return nil, err
		}
		e.Asset = &entities.Asset{
			ID:           e.AssetID,
			Manufacturer: manufacturer,
			Model:        model,
			Client:       &entities.OrgParty{Name: clientName},
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
