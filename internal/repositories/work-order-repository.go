package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
)

const (
	workOrderFields = "w.id, w.asset_id, w.wo_type, w.tech_id, w.notes, w.opened_at, w.closed_at"
	stepFields      = "id, work_order_id, sequence, procedure_code, started_at, ended_at, passed, notes"
)

type WorkOrderListFilter struct {
	// Status is "open", "closed" or empty for all.
	Status  string
	AssetID string
	Limit   uint64
}

type WorkOrderRepositoryInterface interface {
	List(ctx context.Context, filter WorkOrderListFilter) ([]entities.WorkOrder, error)
	FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.WorkOrder, error)
	Create(ctx context.Context, tx pgx.Tx, wo *entities.WorkOrder) error
	Update(ctx context.Context, tx pgx.Tx, wo *entities.WorkOrder) error
	CountOpen(ctx context.Context) (uint64, error)

	StepsFor(ctx context.Context, tx pgx.Tx, workOrderIDs []string) (map[string][]entities.WorkOrderStep, error)
	CreateStep(ctx context.Context, tx pgx.Tx, step *entities.WorkOrderStep) error
	FindStep(ctx context.Context, tx pgx.Tx, workOrderID, stepID string) (*entities.WorkOrderStep, error)
	UpdateStep(ctx context.Context, tx pgx.Tx, step *entities.WorkOrderStep) error
}

type workOrderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewWorkOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) WorkOrderRepositoryInterface {
	return &workOrderRepository{storage: storage, logger: logger}
}

func (r *workOrderRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *workOrderRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(workOrderFields, "t.name", "t.email", "a.client_id", "c.name", "a.manufacturer", "a.model", "a.current_status").
		From("work_orders AS w").
		Join("assets a ON a.id = w.asset_id").
		Join("org_parties c ON c.id = a.client_id").
		LeftJoin("user_accounts t ON t.id = w.tech_id")
}

func scanWorkOrder(row pgx.Row) (*entities.WorkOrder, error) {
	var wo entities.WorkOrder
	var techName, techEmail *string
	asset := entities.Asset{Client: &entities.OrgParty{}}

	err := row.Scan(&wo.ID, &wo.AssetID, &wo.WoType, &wo.TechID, &wo.Notes, &wo.OpenedAt, &wo.ClosedAt,
		&techName, &techEmail, &asset.ClientID, &asset.Client.Name, &asset.Manufacturer, &asset.Model, &asset.CurrentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan work order: %w", err)
	}
	asset.ID = wo.AssetID
	asset.Client.ID = asset.ClientID
	wo.Asset = &asset
	if wo.TechID != nil {
		wo.Tech = &entities.UserAccount{ID: *wo.TechID, Name: deref(techName), Email: deref(techEmail)}
	}
	return &wo, nil
}

// List returns work orders opened-desc with their ordered steps.
func (r *workOrderRepository) List(ctx context.Context, filter WorkOrderListFilter) ([]entities.WorkOrder, error) {
	builder := r.baseSelect().OrderBy("w.opened_at DESC", "w.id DESC")
	switch filter.Status {
	case "open":
		builder = builder.Where(sq.Eq{"w.closed_at": nil})
	case "closed":
		builder = builder.Where(sq.NotEq{"w.closed_at": nil})
	}
	if filter.AssetID != "" {
		builder = builder.Where(sq.Eq{"w.asset_id": filter.AssetID})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build work order list query: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.WorkOrder, 0)
	ids := make([]string, 0)
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *wo)
		ids = append(ids, wo.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work orders: %w", err)
	}

	steps, err := r.StepsFor(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Steps = steps[orders[i].ID]
		if orders[i].Steps == nil {
			orders[i].Steps = []entities.WorkOrderStep{}
		}
		orders[i].StepCount = len(orders[i].Steps)
	}
	return orders, nil
}

func (r *workOrderRepository) FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.WorkOrder, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"w.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build work order query: %w", err)
	}
	wo, err := scanWorkOrder(r.getQuerier(tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	steps, err := r.StepsFor(ctx, tx, []string{wo.ID})
	if err != nil {
		return nil, err
	}
	wo.Steps = steps[wo.ID]
	if wo.Steps == nil {
		wo.Steps = []entities.WorkOrderStep{}
	}
	wo.StepCount = len(wo.Steps)
	return wo, nil
}

func (r *workOrderRepository) Create(ctx context.Context, tx pgx.Tx, wo *entities.WorkOrder) error {
	query, args, err := psql.Insert("work_orders").
		Columns("id", "asset_id", "wo_type", "tech_id", "notes").
		Values(wo.ID, wo.AssetID, wo.WoType, wo.TechID, wo.Notes).
		Suffix("RETURNING opened_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build work order insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&wo.OpenedAt); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Referenced asset or technician does not exist")
		}
		return fmt.Errorf("failed to insert work order: %w", err)
	}

	for i := range wo.Steps {
		wo.Steps[i].WorkOrderID = wo.ID
		if err := r.CreateStep(ctx, tx, &wo.Steps[i]); err != nil {
			return err
		}
	}
	wo.StepCount = len(wo.Steps)
	return nil
}

func (r *workOrderRepository) Update(ctx context.Context, tx pgx.Tx, wo *entities.WorkOrder) error {
	query, args, err := psql.Update("work_orders").
		Set("tech_id", wo.TechID).
		Set("notes", wo.Notes).
		Set("closed_at", wo.ClosedAt).
		Where(sq.Eq{"id": wo.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build work order update: %w", err)
	}
	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Referenced technician does not exist")
		}
		return fmt.Errorf("failed to update work order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *workOrderRepository) CountOpen(ctx context.Context) (uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM work_orders WHERE closed_at IS NULL`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count open work orders: %w", err)
	}
	return total, nil
}

func scanStep(row pgx.Row) (*entities.WorkOrderStep, error) {
	var s entities.WorkOrderStep
	err := row.Scan(&s.ID, &s.WorkOrderID, &s.Sequence, &s.ProcedureCode, &s.StartedAt, &s.EndedAt, &s.Passed, &s.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan work order step: %w", err)
	}
	return &s, nil
}

func (r *workOrderRepository) StepsFor(ctx context.Context, tx pgx.Tx, workOrderIDs []string) (map[string][]entities.WorkOrderStep, error) {
	out := make(map[string][]entities.WorkOrderStep, len(workOrderIDs))
	if len(workOrderIDs) == 0 {
		return out, nil
	}
	query, args, err := psql.Select(stepFields).
		From("work_order_steps").
		Where(sq.Eq{"work_order_id": workOrderIDs}).
		OrderBy("work_order_id", "sequence", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build steps query: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		out[s.WorkOrderID] = append(out[s.WorkOrderID], *s)
	}
	return out, rows.Err()
}

func (r *workOrderRepository) CreateStep(ctx context.Context, tx pgx.Tx, s *entities.WorkOrderStep) error {
	query, args, err := psql.Insert("work_order_steps").
		Columns("id", "work_order_id", "sequence", "procedure_code", "started_at", "ended_at", "passed", "notes").
		Values(s.ID, s.WorkOrderID, s.Sequence, s.ProcedureCode, s.StartedAt, s.EndedAt, s.Passed, s.Notes).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build step insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Work order not found")
		}
		return fmt.Errorf("failed to insert step: %w", err)
	}
	return nil
}

// FindStep only matches a step that belongs to workOrderID.
func (r *workOrderRepository) FindStep(ctx context.Context, tx pgx.Tx, workOrderID, stepID string) (*entities.WorkOrderStep, error) {
	query, args, err := psql.Select(stepFields).
		From("work_order_steps").
		Where(sq.Eq{"id": stepID, "work_order_id": workOrderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build step query: %w", err)
	}
	return scanStep(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *workOrderRepository) UpdateStep(ctx context.Context, tx pgx.Tx, s *entities.WorkOrderStep) error {
	query, args, err := psql.Update("work_order_steps").
		Set("sequence", s.Sequence).
		Set("procedure_code", s.ProcedureCode).
		Set("started_at", s.StartedAt).
		Set("ended_at", s.EndedAt).
		Set("passed", s.Passed).
		Set("notes", s.Notes).
		Where(sq.Eq{"id": s.ID, "work_order_id": s.WorkOrderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build step update: %w", err)
	}
	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update step: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
