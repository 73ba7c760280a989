package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"itad-system/pkg/config"
	"itad-system/pkg/database/postgresql"
	"itad-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 ITAD seeders")
	log.Println("======================================================")

	runOrgs := flag.Bool("orgs", false, "Seed demo organizations and locations")
	runUsers := flag.Bool("users", false, "Seed development user accounts")
	runTokens := flag.Bool("tokens", false, "Print bearer tokens for the development users")
	runAll := flag.Bool("all", false, "Run every seeder (same as -orgs -users -tokens)")

	flag.Parse()

	if !*runOrgs && !*runUsers && !*runTokens && !*runAll {
		log.Println("❌ No seeder selected.")
		log.Println("")
		log.Println("Flags:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Examples:")
		log.Println("  go run ./seeders/cmd/seed -orgs -users")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()

	if *runAll || *runOrgs || *runUsers {
		ctx := context.Background()
		dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, zap.NewNop())
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer dbPool.Close()

		if err := postgresql.Migrate(ctx, dbPool, zap.NewNop()); err != nil {
			log.Fatalf("❌ %v", err)
		}

		if *runAll || *runOrgs {
			seeders.SeedOrganizations(dbPool)
			log.Println("======================================================")
		}
		if *runAll || *runUsers {
			seeders.SeedUsers(dbPool)
			log.Println("======================================================")
		}
	}

	if *runAll || *runTokens {
		seeders.IssueDevTokens(cfg)
		log.Println("======================================================")
	}

	log.Println("✅ Done.")
}
