package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Filling 'user_accounts'...")

	for _, u := range usersData {
		if _, err := db.Exec(ctx,
			`INSERT INTO user_accounts (id, external_id, name, email, role) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (external_id) DO UPDATE SET role = EXCLUDED.role`,
			seedID("user", u.ExternalID), u.ExternalID, u.Name, u.Email, u.Role); err != nil {
			log.Printf("failed to insert user '%s': %v", u.ExternalID, err)
			return err
		}
	}
	return nil
}
