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
	db "itad-system/internal/infrastructure/bd"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
)

const (
	assetTable  = "assets AS a"
	assetFields = `a.id, a.client_id, a.manufacturer, a.model, a.purchase_date, a.processor, a.ram_size_gb,
		a.storage_type, a.storage_capacity_gb, a.screen_size_inches, a.operating_system, a.current_status,
		a.current_location_id, a.assigned_to_id, a.data_bearing, a.hazmat, a.resale_value, a.r2v3_compliance,
		a.compliance_notes, a.compliance_summary, a.suggested_next_action, a.created_at, a.updated_at`
	assetRelationFields = "c.id, c.name, c.type, l.id, l.org_id, l.name, u.id, u.name, u.email"
)

// allowedAssetFilters maps query keys to columns.
var allowedAssetFilters = map[string]string{
	"status":    "a.current_status",
	"clientId":  "a.client_id",
	"createdAt": "a.created_at",
}

type AssetRepositoryInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Asset, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.Asset, error)
	// LockByID reads the asset row with FOR UPDATE; tx is required.
	LockByID(ctx context.Context, tx pgx.Tx, id string) (*entities.Asset, error)
	Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, asset *entities.Asset) error
	Update(ctx context.Context, tx pgx.Tx, asset *entities.Asset) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status entities.AssetStatus) error

	IdentifiersFor(ctx context.Context, tx pgx.Tx, assetIDs []string) (map[string][]entities.AssetIdentifier, error)
	HardDrivesFor(ctx context.Context, tx pgx.Tx, assetIDs []string) (map[string][]entities.HardDrive, error)

	Count(ctx context.Context, status *entities.AssetStatus) (uint64, error)
	CountByClient(ctx context.Context, tx pgx.Tx, clientID string) (uint64, error)
}

type assetRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssetRepository(storage *pgxpool.Pool, logger *zap.Logger) AssetRepositoryInterface {
	return &assetRepository{storage: storage, logger: logger}
}

func (r *assetRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *assetRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(assetFields, assetRelationFields).
		From(assetTable).
		Join("org_parties c ON c.id = a.client_id").
		LeftJoin("locations l ON l.id = a.current_location_id").
		LeftJoin("user_accounts u ON u.id = a.assigned_to_id")
}

func scanAsset(row pgx.Row) (*entities.Asset, error) {
	var a entities.Asset
	var client entities.OrgParty
	var locID, locOrgID, locName *string
	var userID, userName, userEmail *string

	err := row.Scan(
		&a.ID, &a.ClientID, &a.Manufacturer, &a.Model, &a.PurchaseDate, &a.Processor, &a.RamSizeGb,
		&a.StorageType, &a.StorageCapacityGb, &a.ScreenSizeInches, &a.OperatingSystem, &a.CurrentStatus,
		&a.CurrentLocationID, &a.AssignedToID, &a.DataBearing, &a.Hazmat, &a.ResaleValue, &a.R2v3Compliance,
		&a.ComplianceNotes, &a.ComplianceSummary, &a.SuggestedNextAction, &a.CreatedAt, &a.UpdatedAt,
		&client.ID, &client.Name, &client.Type,
		&locID, &locOrgID, &locName,
		&userID, &userName, &userEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	a.Client = &client
	if locID != nil {
		a.CurrentLocation = &entities.Location{ID: *locID, OrgID: deref(locOrgID), Name: deref(locName)}
	}
	if userID != nil {
		a.AssignedTo = &entities.UserAccount{ID: *userID, Name: deref(userName), Email: deref(userEmail)}
	}
	return &a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List returns assets newest first with client, location and identifiers.
// With filter.WithPagination false the whole matching set is returned.
func (r *assetRepository) List(ctx context.Context, filter types.Filter) ([]entities.Asset, uint64, error) {
	countQuery, countArgs, err := db.ApplyFilters(psql.Select("COUNT(*)").From(assetTable), filter, allowedAssetFilters).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build asset count query: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}
	if total == 0 {
		return []entities.Asset{}, 0, nil
	}

	builder := db.ApplyListParams(r.baseSelect(), filter, allowedAssetFilters, "a.created_at DESC", "a.id DESC")
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build asset list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]entities.Asset, 0)
	ids := make([]string, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, *a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate assets: %w", err)
	}

	identifiers, err := r.IdentifiersFor(ctx, nil, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range assets {
		assets[i].Identifiers = identifiers[assets[i].ID]
	}
	return assets, total, nil
}

func (r *assetRepository) FindByID(ctx context.Context, tx pgx.Tx, id string) (*entities.Asset, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build asset query: %w", err)
	}
	return scanAsset(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *assetRepository) LockByID(ctx context.Context, tx pgx.Tx, id string) (*entities.Asset, error) {
	if tx == nil {
		return nil, fmt.Errorf("LockByID requires a transaction")
	}
	query, args, err := r.baseSelect().Where(sq.Eq{"a.id": id}).Suffix("FOR UPDATE OF a").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build asset lock query: %w", err)
	}
	return scanAsset(tx.QueryRow(ctx, query, args...))
}

func (r *assetRepository) Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	var exists bool
	err := r.getQuerier(tx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM assets WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check asset existence: %w", err)
	}
	return exists, nil
}

// Create inserts the asset together with its identifiers and hard drives.
func (r *assetRepository) Create(ctx context.Context, tx pgx.Tx, a *entities.Asset) error {
	query, args, err := psql.Insert("assets").
		Columns("id", "client_id", "manufacturer", "model", "purchase_date", "processor", "ram_size_gb",
			"storage_type", "storage_capacity_gb", "screen_size_inches", "operating_system", "current_status",
			"current_location_id", "assigned_to_id", "data_bearing", "hazmat", "resale_value", "r2v3_compliance",
			"compliance_notes", "compliance_summary", "suggested_next_action").
		Values(a.ID, a.ClientID, a.Manufacturer, a.Model, a.PurchaseDate, a.Processor, a.RamSizeGb,
			a.StorageType, a.StorageCapacityGb, a.ScreenSizeInches, a.OperatingSystem, a.CurrentStatus,
			a.CurrentLocationID, a.AssignedToID, a.DataBearing, a.Hazmat, a.ResaleValue, a.R2v3Compliance,
			a.ComplianceNotes, a.ComplianceSummary, a.SuggestedNextAction).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build asset insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Referenced client, location or user does not exist")
		}
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	if len(a.Identifiers) > 0 {
		ins := psql.Insert("asset_identifiers").Columns("id", "asset_id", "id_type", "id_value", "ordinal")
		for i, ident := range a.Identifiers {
			ins = ins.Values(ident.ID, a.ID, ident.IDType, ident.IDValue, i)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build identifier insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert asset identifiers: %w", err)
		}
	}

	if len(a.HardDrives) > 0 {
		ins := psql.Insert("hard_drives").Columns("id", "asset_id", "serial_number", "capacity_gb", "value_usd",
			"destruction_status", "destruction_certificate", "verified_by_id", "ordinal")
		for i, hd := range a.HardDrives {
			ins = ins.Values(hd.ID, a.ID, hd.SerialNumber, hd.CapacityGb, hd.ValueUsd,
				hd.DestructionStatus, hd.DestructionCertificate, hd.VerifiedByID, i)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build hard drive insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert hard drives: %w", err)
		}
	}
	return nil
}

func (r *assetRepository) Update(ctx context.Context, tx pgx.Tx, a *entities.Asset) error {
	query, args, err := psql.Update("assets").
		Set("client_id", a.ClientID).
		Set("manufacturer", a.Manufacturer).
		Set("model", a.Model).
		Set("purchase_date", a.PurchaseDate).
		Set("processor", a.Processor).
		Set("ram_size_gb", a.RamSizeGb).
		Set("storage_type", a.StorageType).
		Set("storage_capacity_gb", a.StorageCapacityGb).
		Set("screen_size_inches", a.ScreenSizeInches).
		Set("operating_system", a.OperatingSystem).
		Set("current_status", a.CurrentStatus).
		Set("current_location_id", a.CurrentLocationID).
		Set("assigned_to_id", a.AssignedToID).
		Set("data_bearing", a.DataBearing).
		Set("hazmat", a.Hazmat).
		Set("resale_value", a.ResaleValue).
		Set("r2v3_compliance", a.R2v3Compliance).
		Set("compliance_notes", a.ComplianceNotes).
		Set("compliance_summary", a.ComplianceSummary).
		Set("suggested_next_action", a.SuggestedNextAction).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": a.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build asset update: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Referenced client, location or user does not exist")
		}
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return nil
}

func (r *assetRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status entities.AssetStatus) error {
	result, err := tx.Exec(ctx, `UPDATE assets SET current_status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update asset status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *assetRepository) IdentifiersFor(ctx context.Context, tx pgx.Tx, assetIDs []string) (map[string][]entities.AssetIdentifier, error) {
	out := make(map[string][]entities.AssetIdentifier, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}
	query, args, err := psql.Select("id", "asset_id", "id_type", "id_value", "created_at").
		From("asset_identifiers").
		Where(sq.Eq{"asset_id": assetIDs}).
		OrderBy("asset_id", "ordinal", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build identifier query: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load identifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ident entities.AssetIdentifier
		if err := rows.Scan(&ident.ID, &ident.AssetID, &ident.IDType, &ident.IDValue, &ident.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan identifier: %w", err)
		}
		out[ident.AssetID] = append(out[ident.AssetID], ident)
	}
	return out, rows.Err()
}

func (r *assetRepository) HardDrivesFor(ctx context.Context, tx pgx.Tx, assetIDs []string) (map[string][]entities.HardDrive, error) {
	out := make(map[string][]entities.HardDrive, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}
	query, args, err := psql.Select("hd.id", "hd.asset_id", "hd.serial_number", "hd.capacity_gb", "hd.value_usd",
		"hd.destruction_status", "hd.destruction_certificate", "hd.verified_by_id", "hd.created_at", "u.name").
		From("hard_drives AS hd").
		LeftJoin("user_accounts u ON u.id = hd.verified_by_id").
		Where(sq.Eq{"hd.asset_id": assetIDs}).
		OrderBy("hd.asset_id", "hd.ordinal", "hd.created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build hard drive query: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load hard drives: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hd entities.HardDrive
		var verifierName *string
		if err := rows.Scan(&hd.ID, &hd.AssetID, &hd.SerialNumber, &hd.CapacityGb, &hd.ValueUsd,
			&hd.DestructionStatus, &hd.DestructionCertificate, &hd.VerifiedByID, &hd.CreatedAt, &verifierName); err != nil {
			return nil, fmt.Errorf("failed to scan hard drive: %w", err)
		}
		if hd.VerifiedByID != nil {
			hd.VerifiedBy = &entities.UserAccount{ID: *hd.VerifiedByID, Name: deref(verifierName)}
		}
		out[hd.AssetID] = append(out[hd.AssetID], hd)
	}
	return out, rows.Err()
}

func (r *assetRepository) Count(ctx context.Context, status *entities.AssetStatus) (uint64, error) {
	builder := psql.Select("COUNT(*)").From("assets")
	if status != nil {
		builder = builder.Where(sq.Eq{"current_status": *status})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build asset count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return total, nil
}

func (r *assetRepository) CountByClient(ctx context.Context, tx pgx.Tx, clientID string) (uint64, error) {
	var total uint64
	if err := r.getQuerier(tx).QueryRow(ctx, `SELECT COUNT(*) FROM assets WHERE client_id = $1`, clientID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count client assets: %w", err)
	}
	return total, nil
}
