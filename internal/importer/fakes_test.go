package importer

import (
	"context"
	"fmt"

	"cfbtracker/backend/internal/models"
)

// In-memory stores backing the reconciler and orchestrator tests.

type fakeTeamStore struct {
	rows   []*models.Team
	nextID int
}

func (s *fakeTeamStore) List(_ context.Context) ([]*models.Team, error) {
	out := make([]*models.Team, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *fakeTeamStore) Create(_ context.Context, team *models.Team) error {
	s.nextID++
	team.ID = s.nextID
	clone := *team
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeTeamStore) Update(_ context.Context, team *models.Team) error {
	for i, row := range s.rows {
		if row.ID == team.ID {
			clone := *team
			s.rows[i] = &clone
			return nil
		}
	}
	return fmt.Errorf("team id=%d not found", team.ID)
}

type fakeVenueStore struct {
	rows   []*models.Venue
	nextID int
}

func (s *fakeVenueStore) List(_ context.Context) ([]*models.Venue, error) {
	out := make([]*models.Venue, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *fakeVenueStore) Create(_ context.Context, venue *models.Venue) error {
	s.nextID++
	venue.ID = s.nextID
	clone := *venue
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeVenueStore) Update(_ context.Context, venue *models.Venue) error {
	for i, row := range s.rows {
		if row.ID == venue.ID {
			clone := *venue
			s.rows[i] = &clone
			return nil
		}
	}
	return fmt.Errorf("venue id=%d not found", venue.ID)
}

type fakeGameStore struct {
	rows   []*models.Game
	nextID int
}

func (s *fakeGameStore) List(_ context.Context) ([]*models.Game, error) {
	out := make([]*models.Game, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *fakeGameStore) Create(_ context.Context, game *models.Game) error {
	s.nextID++
	game.ID = s.nextID
	clone := *game
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeGameStore) Update(_ context.Context, game *models.Game) error {
	for i, row := range s.rows {
		if row.ID == game.ID {
			clone := *game
			s.rows[i] = &clone
			return nil
		}
	}
	return fmt.Errorf("game id=%d not found", game.ID)
}

// fakeStore bundles the in-memory stores; InTx has no real transaction
// semantics, mutations apply immediately
type fakeStore struct {
	teams  *fakeTeamStore
	venues *fakeVenueStore
	games  *fakeGameStore
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:  &fakeTeamStore{},
		venues: &fakeVenueStore{},
		games:  &fakeGameStore{},
	}
}

func (s *fakeStore) Teams() TeamStore   { return s.teams }
func (s *fakeStore) Venues() VenueStore { return s.venues }
func (s *fakeStore) Games() GameStore   { return s.games }

func (s *fakeStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

// fakeFetcher serves canned payloads and scripted errors
type fakeFetcher struct {
	teams  []models.TeamPayload
	venues []models.VenuePayload
	games  []models.GamePayload

	teamsErrs  []error
	venuesErrs []error
	gamesErrs  []error

	teamsCalls  int
	venuesCalls int
	gamesCalls  int
}

func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (f *fakeFetcher) FetchTeams(_ context.Context) ([]models.TeamPayload, error) {
	f.teamsCalls++
	if err := popErr(&f.teamsErrs); err != nil {
		return nil, err
	}
	return f.teams, nil
}

func (f *fakeFetcher) FetchVenues(_ context.Context) ([]models.VenuePayload, error) {
	f.venuesCalls++
	if err := popErr(&f.venuesErrs); err != nil {
		return nil, err
	}
	return f.venues, nil
}

func (f *fakeFetcher) FetchGames(_ context.Context, _ int) ([]models.GamePayload, error) {
	f.gamesCalls++
	if err := popErr(&f.gamesErrs); err != nil {
		return nil, err
	}
	return f.games, nil
}
