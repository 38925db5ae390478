// Command seed loads the demo catalog into Postgres. Authors that already
// exist by name are skipped, so it is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/geocoder89/libraryhub/internal/config"
	"github.com/geocoder89/libraryhub/internal/db"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/geocoder89/libraryhub/internal/repo/postgres"
)

func main() {
	withAdmin := flag.Bool("admin", true, "also create the ADMIN_EMAIL account")
	flag.Parse()

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBURL, 2)
	if err != nil {
		log.Error("connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("migrate", "err", err)
		os.Exit(1)
	}

	store := postgres.NewStore(pool, nil)

	if *withAdmin {
		if err := db.EnsureAdminUser(ctx, store.Users(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("seed admin", "err", err)
			os.Exit(1)
		}
	}

	res, err := db.SeedCatalog(ctx, store.Authors(), store.Books(), db.DemoCatalog)
	if err != nil {
		log.Error("seed catalog", "err", err)
		os.Exit(1)
	}

	log.Info("seed complete", "authors", res.AuthorsCreated, "skipped", res.AuthorsSkipped, "books", res.BooksCreated)
}
