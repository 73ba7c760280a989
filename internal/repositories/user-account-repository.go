package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"itad-system/internal/entities"
	apperrors "itad-system/pkg/errors"
)

const userAccountFields = "id, external_id, name, email, role, created_at, updated_at"

type UserAccountRepositoryInterface interface {
	FindByExternalID(ctx context.Context, externalID string) (*entities.UserAccount, error)
	FindByID(ctx context.Context, id string) (*entities.UserAccount, error)
	// CreateIfAbsent inserts the account unless the external id is taken, and returns the stored row either way.
	CreateIfAbsent(ctx context.Context, account *entities.UserAccount) (*entities.UserAccount, error)
	UpdateProfile(ctx context.Context, id, name, email string) error
	List(ctx context.Context) ([]entities.UserAccount, error)
}

type userAccountRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserAccountRepository(storage *pgxpool.Pool, logger *zap.Logger) UserAccountRepositoryInterface {
	return &userAccountRepository{storage: storage, logger: logger}
}

func scanUserAccount(row pgx.Row) (*entities.UserAccount, error) {
	var u entities.UserAccount
	if err := row.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user account: %w", err)
	}
	return &u, nil
}

func (r *userAccountRepository) FindByExternalID(ctx context.Context, externalID string) (*entities.UserAccount, error) {
	return scanUserAccount(r.storage.QueryRow(ctx,
		`SELECT `+userAccountFields+` FROM user_accounts WHERE external_id = $1`, externalID))
}

func (r *userAccountRepository) FindByID(ctx context.Context, id string) (*entities.UserAccount, error) {
	return scanUserAccount(r.storage.QueryRow(ctx,
		`SELECT `+userAccountFields+` FROM user_accounts WHERE id = $1`, id))
}

func (r *userAccountRepository) CreateIfAbsent(ctx context.Context, a *entities.UserAccount) (*entities.UserAccount, error) {
	_, err := r.storage.Exec(ctx,
		`INSERT INTO user_accounts (id, external_id, name, email, role) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (external_id) DO NOTHING`,
		a.ID, a.ExternalID, a.Name, a.Email, a.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}
	return r.FindByExternalID(ctx, a.ExternalID)
}

func (r *userAccountRepository) UpdateProfile(ctx context.Context, id, name, email string) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE user_accounts SET name = $1, email = $2, updated_at = NOW() WHERE id = $3`, name, email, id)
	if err != nil {
		return fmt.Errorf("failed to update user account: %w", err)
	}
	return nil
}

func (r *userAccountRepository) List(ctx context.Context) ([]entities.UserAccount, error) {
	rows, err := r.storage.Query(ctx, `SELECT `+userAccountFields+` FROM user_accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]entities.UserAccount, 0)
	for rows.Next() {
		u, err := scanUserAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *u)
	}
	return accounts, rows.Err()
}
