// Command importseason runs one season import against the provider API and
// prints the per-stage summary. It is the administrative trigger for
// refreshing the catalog outside the nightly schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"cfbtracker/backend/internal/client"
	"cfbtracker/backend/internal/config"
	"cfbtracker/backend/internal/importer"
	"cfbtracker/backend/internal/migrate"
	"cfbtracker/backend/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	season := flag.Int("season", time.Now().UTC().Year(), "season year to import")
	flag.Parse()

	if *season < 1869 {
		// College football starts in 1869
		fmt.Fprintf(os.Stderr, "invalid season %d\n", *season)
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	if err := migrate.Run(ctx, db.Pool, cfg.DatabaseDSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database schema")
	}

	cfbClient := client.NewClient(cfg.CFBDataBaseURL, cfg.CFBDataAPIKey, cfg.CFBDataTimeout)
	imp := importer.New(cfbClient, importer.NewStore(db), cfg.ImportMaxRetries)

	summary, err := imp.ImportSeason(ctx, *season)
	if err != nil {
		log.Fatal().Err(err).Int("season", *season).Msg("Season import failed")
	}

	fmt.Printf("Season %d import complete\n", summary.Season)
	fmt.Printf("  teams:  %d created, %d updated\n", summary.Teams.Created, summary.Teams.Updated)
	fmt.Printf("  venues: %d created, %d updated\n", summary.Venues.Created, summary.Venues.Updated)
	fmt.Printf("  games:  %d created, %d updated, %d skipped\n",
		summary.Games.Created, summary.Games.Updated, summary.Games.Skipped)

	for _, skip := range summary.GameSkips {
		fmt.Printf("  skipped game %d: %s\n", skip.ProviderID, skip.Reason)
	}
}
