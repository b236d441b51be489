// Package migrate brings the database schema up to date at startup.
//
// Two steps run in order. First, databases created before the switch to
// timezone-aware game timestamps are transformed in place: the legacy
// date-only column is back-filled into start_date at midnight UTC, the
// season_type and classification columns are added, and the legacy column is
// dropped. The step detects its own work by column presence, so it is a
// no-op once applied and is skipped entirely on fresh databases. Second, the
// embedded baseline migrations are applied through golang-migrate.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run applies pending schema changes. dsn is the keyword/value PostgreSQL
// connection string; pool is used for the legacy inspection queries.
func Run(ctx context.Context, pool *pgxpool.Pool, dsn string) error {
	if err := upgradeLegacySchema(ctx, pool); err != nil {
		return fmt.Errorf("legacy schema upgrade failed: %w", err)
	}

	if err := applyBaseline(dsn); err != nil {
		return fmt.Errorf("baseline migration failed: %w", err)
	}

	return nil
}

// columnExists reports whether the table exists and has the named column
func columnExists(ctx context.Context, pool *pgxpool.Pool, table, column string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
		)
	`, table, column).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s.%s: %w", table, column, err)
	}
	return exists, nil
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, table string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)
	`, table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	return exists, nil
}

// upgradeLegacySchema converts the pre-timestamp games schema in place
func upgradeLegacySchema(ctx context.Context, pool *pgxpool.Pool) error {
	gamesExist, err := tableExists(ctx, pool, "games")
	if err != nil {
		return err
	}
	if !gamesExist {
		// Fresh database: the baseline migration seeds the new schema directly
		log.Debug().Msg("No games table found, skipping legacy upgrade")
		return nil
	}

	hasLegacyDate, err := columnExists(ctx, pool, "games", "game_date")
	if err != nil {
		return err
	}
	hasStartDate, err := columnExists(ctx, pool, "games", "start_date")
	if err != nil {
		return err
	}

	if hasLegacyDate && !hasStartDate {
		log.Info().Msg("Upgrading games table to timezone-aware start dates")

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin upgrade transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		statements := []string{
			`ALTER TABLE games ADD COLUMN start_date TIMESTAMPTZ`,
			`ALTER TABLE games ADD COLUMN season_type TEXT`,
			// Anchor legacy date-only values at midnight UTC. An
			// approximation: the old column carried no time of day.
			`UPDATE games SET start_date = game_date::timestamp AT TIME ZONE 'UTC'`,
			`CREATE INDEX idx_games_start_date ON games (start_date)`,
			`CREATE INDEX idx_games_season_type ON games (season_type)`,
			`DROP INDEX IF EXISTS idx_games_game_date`,
			`ALTER TABLE games DROP COLUMN game_date`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("upgrade statement failed (%s): %w", stmt, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit games upgrade: %w", err)
		}
		log.Info().Msg("Games table upgraded")
	}

	hasClassification, err := columnExists(ctx, pool, "teams", "classification")
	if err != nil {
		return err
	}

	if !hasClassification {
		log.Info().Msg("Adding classification column to teams")

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin upgrade transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		statements := []string{
			`ALTER TABLE teams ADD COLUMN classification TEXT`,
			`UPDATE teams SET classification = 'fbs'`,
			`ALTER TABLE teams ALTER COLUMN classification SET DEFAULT 'fbs'`,
			`ALTER TABLE teams ALTER COLUMN classification SET NOT NULL`,
			`CREATE INDEX idx_teams_classification ON teams (classification)`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("upgrade statement failed (%s): %w", stmt, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit teams upgrade: %w", err)
		}
		log.Info().Msg("Teams table upgraded")
	}

	return nil
}

// applyBaseline runs the embedded migrations through golang-migrate
func applyBaseline(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Schema migrations applied")

	return nil
}
