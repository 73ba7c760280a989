package seeders

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"itad-system/pkg/config"
	"itad-system/pkg/service"
)

// seedID derives a stable id so repeated runs hit ON CONFLICT instead of duplicating rows.
func seedID(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("itad-seed/"+strings.Join(parts, "/"))).String()
}

// SeedOrganizations inserts the demo parties with their locations.
func SeedOrganizations(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Seeding organizations and locations...")

	if err := seedOrganizations(ctx, db); err != nil {
		log.Fatalf("❌ Failed to seed organizations: %v", err)
	}
	log.Println("✅ Organizations seeded")
}

// SeedUsers inserts local accounts for the development identities.
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Seeding user accounts...")

	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("❌ Failed to seed user accounts: %v", err)
	}
	log.Println("✅ User accounts seeded")
}

// IssueDevTokens prints a bearer token for every development identity.
func IssueDevTokens(cfg *config.Config) {
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.Issuer)
	for _, u := range usersData {
		token, err := jwtSvc.GenerateToken(u.ExternalID, u.Name, u.Email, cfg.JWT.DevTokenTTL)
		if err != nil {
			log.Fatalf("❌ Failed to sign token for %s: %v", u.ExternalID, err)
		}
		log.Printf("🔑 %s (%s), valid until %s:\n%s\n", u.Name, u.ExternalID,
			time.Now().Add(cfg.JWT.DevTokenTTL).Format(time.RFC3339), token)
	}
}
