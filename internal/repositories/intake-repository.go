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

type IntakeRepositoryInterface interface {
	List(ctx context.Context) ([]entities.IntakeOrder, error)
	// OrderNumberExists compares case-insensitively.
	OrderNumberExists(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, order *entities.IntakeOrder) error
}

type intakeRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewIntakeRepository(storage *pgxpool.Pool, logger *zap.Logger) IntakeRepositoryInterface {
	return &intakeRepository{storage: storage, logger: logger}
}

func (r *intakeRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *intakeRepository) List(ctx context.Context) ([]entities.IntakeOrder, error) {
	query, args, err := psql.Select("o.id", "o.client_id", "o.order_number", "o.received_date", "o.packing_list_num",
		"o.total_weight_kg", "o.notes", "o.created_by", "o.created_at", "c.name", "c.type").
		From("intake_orders AS o").
		Join("org_parties c ON c.id = o.client_id").
		OrderBy("o.received_date DESC", "o.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build intake list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake orders: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.IntakeOrder, 0)
	index := make(map[string]int)
	for rows.Next() {
		var o entities.IntakeOrder
		client := entities.OrgParty{}
		if err := rows.Scan(&o.ID, &o.ClientID, &o.OrderNumber, &o.ReceivedDate, &o.PackingListNum,
			&o.TotalWeightKg, &o.Notes, &o.CreatedBy, &o.CreatedAt, &client.Name, &client.Type); err != nil {
			return nil, fmt.Errorf("failed to scan intake order: %w", err)
		}
		client.ID = o.ClientID
		o.Client = &client
		o.Lines = []entities.IntakeLine{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intake orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	// first identifier of a linked asset, if any
	lineQuery, lineArgs, err := psql.Select("l.id", "l.intake_order_id", "l.description", "l.quantity", "l.weight_kg", "l.asset_id",
		"(SELECT ai.id_value FROM asset_identifiers ai WHERE ai.asset_id = l.asset_id ORDER BY ai.ordinal, ai.created_at LIMIT 1)").
		From("intake_lines AS l").
		Where(sq.Eq{"l.intake_order_id": ids}).
		OrderBy("l.intake_order_id", "l.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build intake lines query: %w", err)
	}

	lineRows, err := r.storage.Query(ctx, lineQuery, lineArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load intake lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l entities.IntakeLine
		if err := lineRows.Scan(&l.ID, &l.IntakeOrderID, &l.Description, &l.Quantity, &l.WeightKg, &l.AssetID, &l.AssetTag); err != nil {
			return nil, fmt.Errorf("failed to scan intake line: %w", err)
		}
		if i, ok := index[l.IntakeOrderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intake lines: %w", err)
	}

	for i := range orders {
		orders[i].LineCount = len(orders[i].Lines)
	}
	return orders, nil
}

func (r *intakeRepository) OrderNumberExists(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error) {
	var exists bool
	err := r.getQuerier(tx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM intake_orders WHERE lower(order_number) = lower($1))`, orderNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check intake order number: %w", err)
	}
	return exists, nil
}

func (r *intakeRepository) Create(ctx context.Context, tx pgx.Tx, o *entities.IntakeOrder) error {
	query, args, err := psql.Insert("intake_orders").
		Columns("id", "client_id", "order_number", "received_date", "packing_list_num", "total_weight_kg", "notes", "created_by").
		Values(o.ID, o.ClientID, o.OrderNumber, o.ReceivedDate, o.PackingListNum, o.TotalWeightKg, o.Notes, o.CreatedBy).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build intake order insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&o.CreatedAt); err != nil {
		switch {
		case isUniqueViolation(err):
			return apperrors.NewConflictError("Order number already exists")
		case isForeignKeyViolation(err):
			return apperrors.NewNotFoundError("Client not found")
		}
		return fmt.Errorf("failed to insert intake order: %w", err)
	}

	if len(o.Lines) > 0 {
		ins := psql.Insert("intake_lines").Columns("id", "intake_order_id", "description", "quantity", "weight_kg", "asset_id")
		for _, l := range o.Lines {
			ins = ins.Values(l.ID, o.ID, l.Description, l.Quantity, l.WeightKg, l.AssetID)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build intake line insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NewNotFoundError("Linked asset not found")
			}
			return fmt.Errorf("failed to insert intake lines: %w", err)
		}
	}
	o.LineCount = len(o.Lines)
	return nil
}
