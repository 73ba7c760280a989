package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedOrganizations(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Filling 'org_parties' and 'locations'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, o := range organizationsData {
		orgID := seedID("org", o.Name)
		if _, err := tx.Exec(ctx,
			`INSERT INTO org_parties (id, type, name, risk_tier, active, email, city)
			 VALUES ($1, $2, $3, $4, TRUE, NULLIF($5, ''), NULLIF($6, ''))
			 ON CONFLICT (id) DO NOTHING`,
			orgID, o.Type, o.Name, o.RiskTier, o.Email, o.City); err != nil {
			log.Printf("failed to insert organization '%s': %v", o.Name, err)
			return err
		}

		for _, l := range o.Locations {
			if _, err := tx.Exec(ctx,
				`INSERT INTO locations (id, org_id, name, address) VALUES ($1, $2, $3, NULLIF($4, ''))
				 ON CONFLICT (id) DO NOTHING`,
				seedID("location", o.Name, l.Name), orgID, l.Name, l.Address); err != nil {
				log.Printf("failed to insert location '%s': %v", l.Name, err)
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
