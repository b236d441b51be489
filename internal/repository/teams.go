package repository

import (
	"context"
	"errors"
	"fmt"

	"cfbtracker/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	q DBTX
}

const teamColumns = `id, provider_id, school, mascot, abbreviation, conference, division, classification, created_at, updated_at`

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(
		&team.ID, &team.ProviderID, &team.School, &team.Mascot,
		&team.Abbreviation, &team.Conference, &team.Division,
		&team.Classification, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Create inserts a new team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			provider_id, school, mascot, abbreviation, conference, division, classification
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		team.ProviderID, team.School, team.Mascot, team.Abbreviation,
		team.Conference, team.Division, team.Classification,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Int32("provider_id", team.ProviderID.Int32).
		Str("school", team.School).
		Msg("Team created")

	return nil
}

// Update overwrites the descriptive fields of an existing team
func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			school = $1,
			mascot = $2,
			abbreviation = $3,
			conference = $4,
			division = $5,
			classification = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		team.School, team.Mascot, team.Abbreviation,
		team.Conference, team.Division, team.Classification, team.ID,
	).Scan(&team.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("team id=%d: %w", team.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by its local ID
func (r *TeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team id=%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByProviderID retrieves a team by the provider's numeric identifier
func (r *TeamRepository) GetByProviderID(ctx context.Context, providerID int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE provider_id = $1`

	team, err := scanTeam(r.q.QueryRow(ctx, query, providerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team provider_id=%d: %w", providerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// List retrieves all teams ordered by school name
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY school`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// SearchBySchool retrieves teams whose school name starts with the given prefix
func (r *TeamRepository) SearchBySchool(ctx context.Context, prefix string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE school ILIKE $1 || '%' ORDER BY school`

	rows, err := r.q.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}
