package importer

import (
	"context"
	"fmt"

	"cfbtracker/backend/internal/models"
	"cfbtracker/backend/internal/repository"
)

// TeamStore is the slice of team persistence the reconciler needs
type TeamStore interface {
	List(ctx context.Context) ([]*models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	Update(ctx context.Context, team *models.Team) error
}

// VenueStore is the slice of venue persistence the reconciler needs
type VenueStore interface {
	List(ctx context.Context) ([]*models.Venue, error)
	Create(ctx context.Context, venue *models.Venue) error
	Update(ctx context.Context, venue *models.Venue) error
}

// GameStore is the slice of game persistence the reconciler needs
type GameStore interface {
	List(ctx context.Context) ([]*models.Game, error)
	Create(ctx context.Context, game *models.Game) error
	Update(ctx context.Context, game *models.Game) error
}

// Store bundles the entity stores behind a transaction boundary. InTx runs fn
// against a store view whose mutations commit or roll back as one unit.
type Store interface {
	Teams() TeamStore
	Venues() VenueStore
	Games() GameStore
	InTx(ctx context.Context, fn func(Store) error) error
}

// dbStore adapts repository.Database to the Store interface
type dbStore struct {
	db *repository.Database
}

// NewStore wraps a database so the importer can drive it
func NewStore(db *repository.Database) Store {
	return &dbStore{db: db}
}

func (s *dbStore) Teams() TeamStore   { return s.db.Teams }
func (s *dbStore) Venues() VenueStore { return s.db.Venues }
func (s *dbStore) Games() GameStore   { return s.db.Games }

func (s *dbStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&dbStore{db: s.db.WithTx(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
