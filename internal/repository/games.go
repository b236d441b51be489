package repository

import (
	"context"
	"errors"
	"fmt"

	"cfbtracker/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	q DBTX
}

const gameColumns = `id, provider_id, season, season_type, week, home_team_id, away_team_id,
		       venue_id, start_date, home_score, away_score, attendance, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID, &game.ProviderID, &game.Season, &game.SeasonType, &game.Week,
		&game.HomeTeamID, &game.AwayTeamID, &game.VenueID, &game.StartDate,
		&game.HomeScore, &game.AwayScore, &game.Attendance,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *GameRepository) queryGames(ctx context.Context, query string, args ...any) ([]*models.Game, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// Create inserts a new game. The caller must have resolved home_team_id,
// away_team_id and venue_id to existing rows.
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			provider_id, season, season_type, week, home_team_id, away_team_id,
			venue_id, start_date, home_score, away_score, attendance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		game.ProviderID, game.Season, game.SeasonType, game.Week,
		game.HomeTeamID, game.AwayTeamID, game.VenueID, game.StartDate,
		game.HomeScore, game.AwayScore, game.Attendance,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	log.Debug().
		Int("id", game.ID).
		Int("provider_id", game.ProviderID).
		Int("season", game.Season).
		Msg("Game created")

	return nil
}

// Update overwrites the mutable fields of an existing game, including its
// re-resolved team and venue references
func (r *GameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games SET
			season = $1,
			season_type = $2,
			week = $3,
			home_team_id = $4,
			away_team_id = $5,
			venue_id = $6,
			start_date = $7,
			home_score = $8,
			away_score = $9,
			attendance = $10,
			updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		game.Season, game.SeasonType, game.Week,
		game.HomeTeamID, game.AwayTeamID, game.VenueID, game.StartDate,
		game.HomeScore, game.AwayScore, game.Attendance, game.ID,
	).Scan(&game.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("game id=%d: %w", game.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by its local ID
func (r *GameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game id=%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByProviderID retrieves a game by the provider's numeric identifier
func (r *GameRepository) GetByProviderID(ctx context.Context, providerID int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE provider_id = $1`

	game, err := scanGame(r.q.QueryRow(ctx, query, providerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game provider_id=%d: %w", providerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// List retrieves all games ordered by start date
func (r *GameRepository) List(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY start_date`
	return r.queryGames(ctx, query)
}

// ListBySeason retrieves all games for a season ordered by start date
func (r *GameRepository) ListBySeason(ctx context.Context, season int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE season = $1 ORDER BY start_date`
	return r.queryGames(ctx, query, season)
}

// ListBySeasonWeek retrieves games for a specific season and week
func (r *GameRepository) ListBySeasonWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE season = $1 AND week = $2 ORDER BY start_date`
	return r.queryGames(ctx, query, season, week)
}

// ListByTeam retrieves games where the team played home or away
func (r *GameRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE home_team_id = $1 OR away_team_id = $1
		ORDER BY start_date`
	return r.queryGames(ctx, query, teamID)
}

// Delete removes a game. Attendance rows referencing it are removed by the
// ON DELETE CASCADE constraint.
func (r *GameRepository) Delete(ctx context.Context, id int) error {
	result, err := r.q.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game id=%d: %w", id, ErrNotFound)
	}

	log.Debug().Int("id", id).Msg("Game deleted")
	return nil
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}
