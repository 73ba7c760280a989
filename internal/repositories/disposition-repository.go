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

type SanitizationRepositoryInterface interface {
	CreateAction(ctx context.Context, tx pgx.Tx, action *entities.SanitizationAction) error
	CreateResult(ctx context.Context, tx pgx.Tx, result *entities.SanitizationResult) error
	// ResultsFor returns results per asset, newest first.
	ResultsFor(ctx context.Context, tx pgx.Tx, assetIDs []string) (map[string][]entities.SanitizationResult, error)
}

type SalesRepositoryInterface interface {
	// CreateOrder inserts the order and all of its lines.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *entities.SalesOrder) error
}

type sanitizationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSanitizationRepository(storage *pgxpool.Pool, logger *zap.Logger) SanitizationRepositoryInterface {
	return &sanitizationRepository{storage: storage, logger: logger}
}

func (r *sanitizationRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *sanitizationRepository) CreateAction(ctx context.Context, tx pgx.Tx, a *entities.SanitizationAction) error {
	query, args, err := psql.Insert("sanitization_actions").
		Columns("id", "asset_id", "method", "tool_name", "tool_version", "certificate_number", "verifier", "started_at", "ended_at").
		Values(a.ID, a.AssetID, a.Method, a.ToolName, a.ToolVersion, a.CertificateNumber, a.Verifier, a.StartedAt, a.EndedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sanitization action insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert sanitization action: %w", err)
	}
	return nil
}

func (r *sanitizationRepository) CreateResult(ctx context.Context, tx pgx.Tx, res *entities.SanitizationResult) error {
	query, args, err := psql.Insert("sanitization_results").
		Columns("id", "asset_id", "action_id", "passed", "verified_at", "verifier_id", "certificate_number", "notes").
		Values(res.ID, res.AssetID, res.ActionID, res.Passed, res.VerifiedAt, res.VerifierID, res.CertificateNumber, res.Notes).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sanitization result insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&res.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert sanitization result: %w", err)
	}
	return nil
}

func (r *sanitizationRepository) ResultsFor(ctx context.Context, tx pgx.Tx, assetIDs []string) (map[string][]entities.SanitizationResult, error) {
	out := make(map[string][]entities.SanitizationResult, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}
	query, args, err := psql.Select("s.id", "s.asset_id", "s.action_id", "s.passed", "s.verified_at", "s.verifier_id",
		"s.certificate_number", "s.notes", "s.created_at", "u.name").
		From("sanitization_results AS s").
		LeftJoin("user_accounts u ON u.id = s.verifier_id").
		Where(sq.Eq{"s.asset_id": assetIDs}).
		OrderBy("s.asset_id", "s.created_at DESC", "s.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sanitization results query: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sanitization results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s entities.SanitizationResult
		var verifierName *string
		if err := rows.Scan(&s.ID, &s.AssetID, &s.ActionID, &s.Passed, &s.VerifiedAt, &s.VerifierID,
			&s.CertificateNumber, &s.Notes, &s.CreatedAt, &verifierName); err != nil {
			return nil, fmt.Errorf("failed to scan sanitization result: %w", err)
		}
		if s.VerifierID != nil {
			s.Verifier = &entities.UserAccount{ID: *s.VerifierID, Name: deref(verifierName)}
		}
		out[s.AssetID] = append(out[s.AssetID], s)
	}
	return out, rows.Err()
}

type salesRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSalesRepository(storage *pgxpool.Pool, logger *zap.Logger) SalesRepositoryInterface {
	return &salesRepository{storage: storage, logger: logger}
}

func (r *salesRepository) CreateOrder(ctx context.Context, tx pgx.Tx, o *entities.SalesOrder) error {
	query, args, err := psql.Insert("sales_orders").
		Columns("id", "order_number", "customer_id", "status", "notes").
		Values(o.ID, o.OrderNumber, o.CustomerID, o.Status, o.Notes).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sales order insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&o.CreatedAt); err != nil {
		switch {
		case isUniqueViolation(err):
			return apperrors.NewConflictError("Sales order number %s already exists", o.OrderNumber)
		case isForeignKeyViolation(err):
			return apperrors.NewNotFoundError("Customer not found")
		}
		return fmt.Errorf("failed to insert sales order: %w", err)
	}

	if len(o.Lines) == 0 {
		return nil
	}
	ins := psql.Insert("sales_lines").Columns("id", "sales_order_id", "asset_id", "unit_price", "total_price")
	for _, l := range o.Lines {
		ins = ins.Values(l.ID, o.ID, l.AssetID, l.UnitPrice, l.TotalPrice)
	}
	query, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sales line insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert sales lines: %w", err)
	}
	return nil
}
