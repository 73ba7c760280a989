package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"itad-system/internal/entities"
	db "itad-system/internal/infrastructure/bd"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
)

const orgFields = `o.id, o.type, o.name, o.r2_scope, o.risk_tier, o.active, o.email, o.phone, o.address,
	o.city, o.state, o.zip_code, o.country, o.created_by, o.created_at, o.updated_at`

var allowedOrgFilters = map[string]string{
	"type":      "o.type",
	"active":    "o.active",
	"name":      "o.name",
	"createdAt": "o.created_at",
}

type OrganizationRepositoryInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.OrgParty, error)
	FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.OrgParty, error)
	Create(ctx context.Context, tx pgx.Tx, org *entities.OrgParty) error
	Update(ctx context.Context, tx pgx.Tx, org *entities.OrgParty) error
	Delete(ctx context.Context, tx pgx.Tx, id string) error

	ListLocations(ctx context.Context, orgID string) ([]entities.Location, error)
	LocationExists(ctx context.Context, tx pgx.Tx, id string) (bool, error)
	CreateLocation(ctx context.Context, tx pgx.Tx, loc *entities.Location) error
}

type organizationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrganizationRepository(storage *pgxpool.Pool, logger *zap.Logger) OrganizationRepositoryInterface {
	return &organizationRepository{storage: storage, logger: logger}
}

func (r *organizationRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *organizationRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(orgFields,
		"(SELECT COUNT(*) FROM assets a WHERE a.client_id = o.id)",
		"(SELECT COUNT(*) FROM locations l WHERE l.org_id = o.id)").
		From("org_parties AS o")
}

func scanOrg(row pgx.Row) (*entities.OrgParty, error) {
	var o entities.OrgParty
	var count entities.OrgPartyCount
	err := row.Scan(&o.ID, &o.Type, &o.Name, &o.R2Scope, &o.RiskTier, &o.Active, &o.Email, &o.Phone, &o.Address,
		&o.City, &o.State, &o.ZipCode, &o.Country, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		&count.Assets, &count.Locations)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan organization: %w", err)
	}
	o.Count = &count
	return &o, nil
}

// List returns organizations by name ascending with asset and location counts.
func (r *organizationRepository) List(ctx context.Context, filter types.Filter) ([]entities.OrgParty, error) {
	filter.WithPagination = false
	query, args, err := db.ApplyListParams(r.baseSelect(), filter, allowedOrgFilters, "o.name ASC", "o.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build organization list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]entities.OrgParty, 0)
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *o)
	}
	return orgs, rows.Err()
}

func (r *organizationRepository) FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.OrgParty, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"o.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build organization query: %w", err)
	}
	return scanOrg(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *organizationRepository) Create(ctx context.Context, tx pgx.Tx, o *entities.OrgParty) error {
	query, args, err := psql.Insert("org_parties").
		Columns("id", "type", "name", "r2_scope", "risk_tier", "active", "email", "phone", "address",
			"city", "state", "zip_code", "country", "created_by").
		Values(o.ID, o.Type, o.Name, o.R2Scope, o.RiskTier, o.Active, o.Email, o.Phone, o.Address,
			o.City, o.State, o.ZipCode, o.Country, o.CreatedBy).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build organization insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	o.Count = &entities.OrgPartyCount{}
	return nil
}

func (r *organizationRepository) Update(ctx context.Context, tx pgx.Tx, o *entities.OrgParty) error {
	query, args, err := psql.Update("org_parties").
		Set("type", o.Type).
		Set("name", o.Name).
		Set("r2_scope", o.R2Scope).
		Set("risk_tier", o.RiskTier).
		Set("active", o.Active).
		Set("email", o.Email).
		Set("phone", o.Phone).
		Set("address", o.Address).
		Set("city", o.City).
		Set("state", o.State).
		Set("zip_code", o.ZipCode).
		Set("country", o.Country).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": o.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build organization update: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

func (r *organizationRepository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	result, err := tx.Exec(ctx, `DELETE FROM org_parties WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewHttpError(http.StatusBadRequest, "Organization cannot be deleted because it is still referenced", err, map[string]interface{}{"id": id})
		}
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *organizationRepository) ListLocations(ctx context.Context, orgID string) ([]entities.Location, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, org_id, name, address, created_at FROM locations WHERE org_id = $1 ORDER BY name, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := make([]entities.Location, 0)
	for rows.Next() {
		var l entities.Location
		if err := rows.Scan(&l.ID, &l.OrgID, &l.Name, &l.Address, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *organizationRepository) LocationExists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	var exists bool
	err := r.getQuerier(tx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check location existence: %w", err)
	}
	return exists, nil
}

func (r *organizationRepository) CreateLocation(ctx context.Context, tx pgx.Tx, l *entities.Location) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO locations (id, org_id, name, address) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		l.ID, l.OrgID, l.Name, l.Address).Scan(&l.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Organization not found")
		}
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}
