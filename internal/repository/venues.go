package repository

import (
	"context"
	"errors"
	"fmt"

	"cfbtracker/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// VenueRepository handles venue database operations
type VenueRepository struct {
	q DBTX
}

const venueColumns = `id, provider_id, name, city, state, capacity, created_at, updated_at`

func scanVenue(row pgx.Row) (*models.Venue, error) {
	var venue models.Venue
	err := row.Scan(
		&venue.ID, &venue.ProviderID, &venue.Name, &venue.City,
		&venue.State, &venue.Capacity, &venue.CreatedAt, &venue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

// Create inserts a new venue
func (r *VenueRepository) Create(ctx context.Context, venue *models.Venue) error {
	query := `
		INSERT INTO venues (provider_id, name, city, state, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		venue.ProviderID, venue.Name, venue.City, venue.State, venue.Capacity,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}

	log.Debug().
		Int("id", venue.ID).
		Int32("provider_id", venue.ProviderID.Int32).
		Str("name", venue.Name).
		Msg("Venue created")

	return nil
}

// Update overwrites the descriptive fields of an existing venue
func (r *VenueRepository) Update(ctx context.Context, venue *models.Venue) error {
	query := `
		UPDATE venues SET
			name = $1,
			city = $2,
			state = $3,
			capacity = $4,
			updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		venue.Name, venue.City, venue.State, venue.Capacity, venue.ID,
	).Scan(&venue.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("venue id=%d: %w", venue.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}

	return nil
}

// GetByID retrieves a venue by its local ID
func (r *VenueRepository) GetByID(ctx context.Context, id int) (*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`

	venue, err := scanVenue(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("venue id=%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return venue, nil
}

// GetByProviderID retrieves a venue by the provider's numeric identifier
func (r *VenueRepository) GetByProviderID(ctx context.Context, providerID int) (*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE provider_id = $1`

	venue, err := scanVenue(r.q.QueryRow(ctx, query, providerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("venue provider_id=%d: %w", providerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return venue, nil
}

// List retrieves all venues ordered by name
func (r *VenueRepository) List(ctx context.Context) ([]*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues ORDER BY name`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	var venues []*models.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, venue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}

	return venues, nil
}

// Count returns the total number of venues
func (r *VenueRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM venues`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return count, nil
}
