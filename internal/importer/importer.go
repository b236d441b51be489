package importer

import (
	"context"
	"fmt"
	"time"

	"cfbtracker/backend/internal/client"
	"cfbtracker/backend/internal/metrics"
	"cfbtracker/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// State identifies where a season import currently is
type State string

const (
	StateIdle            State = "idle"
	StateImportingTeams  State = "importing_teams"
	StateImportingVenues State = "importing_venues"
	StateImportingGames  State = "importing_games"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Summary is the result of one season import
type Summary struct {
	Season    int         `json:"season"`
	State     State       `json:"state"`
	Teams     StageResult `json:"teams"`
	Venues    StageResult `json:"venues"`
	Games     StageResult `json:"games"`
	GameSkips []GameSkip  `json:"game_skips"`
}

// Fetcher is the provider surface the importer consumes
type Fetcher interface {
	FetchTeams(ctx context.Context) ([]models.TeamPayload, error)
	FetchVenues(ctx context.Context) ([]models.VenuePayload, error)
	FetchGames(ctx context.Context, season int) ([]models.GamePayload, error)
}

// Importer sequences the reconciliation stages of a season import in
// dependency order: teams, then venues, then games. Each stage commits as
// one transaction before the next starts, so game reconciliation always
// sees the teams and venues it references already persisted. A fetch
// failure aborts the import but leaves earlier committed stages in place.
//
// One Importer run is a single in-flight job; callers serialize overlapping
// imports themselves.
type Importer struct {
	fetcher    Fetcher
	store      Store
	maxRetries int
	retryDelay time.Duration
}

// New creates an Importer. maxRetries bounds how often a transient fetch
// failure is retried per stage.
func New(fetcher Fetcher, store Store, maxRetries int) *Importer {
	return &Importer{
		fetcher:    fetcher,
		store:      store,
		maxRetries: maxRetries,
		retryDelay: time.Second,
	}
}

// ImportSeason pulls teams, venues and the season's game schedule from the
// provider and reconciles them into the local catalog. Reruns with identical
// upstream data are no-ops apart from refreshed timestamps.
func (imp *Importer) ImportSeason(ctx context.Context, season int) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Season: season, State: StateIdle, GameSkips: []GameSkip{}}

	log.Info().Int("season", season).Msg("Starting season import")

	// Stage 1: teams
	summary.State = StateImportingTeams
	teams, err := fetchWithRetry(ctx, imp, "teams", imp.fetcher.FetchTeams)
	if err != nil {
		return imp.fail(summary, "teams", err)
	}
	err = imp.store.InTx(ctx, func(s Store) error {
		result, err := reconcileTeams(ctx, s.Teams(), teams)
		summary.Teams = result
		return err
	})
	if err != nil {
		return imp.fail(summary, "teams", err)
	}
	log.Info().
		Int("created", summary.Teams.Created).
		Int("updated", summary.Teams.Updated).
		Msg("Teams stage committed")

	// Stage 2: venues
	summary.State = StateImportingVenues
	venues, err := fetchWithRetry(ctx, imp, "venues", imp.fetcher.FetchVenues)
	if err != nil {
		return imp.fail(summary, "venues", err)
	}
	err = imp.store.InTx(ctx, func(s Store) error {
		result, err := reconcileVenues(ctx, s.Venues(), venues)
		summary.Venues = result
		return err
	})
	if err != nil {
		return imp.fail(summary, "venues", err)
	}
	log.Info().
		Int("created", summary.Venues.Created).
		Int("updated", summary.Venues.Updated).
		Msg("Venues stage committed")

	// Stage 3: games, resolving team and venue references against the
	// stages committed above
	summary.State = StateImportingGames
	games, err := fetchWithRetry(ctx, imp, "games", func(ctx context.Context) ([]models.GamePayload, error) {
		return imp.fetcher.FetchGames(ctx, season)
	})
	if err != nil {
		return imp.fail(summary, "games", err)
	}
	err = imp.store.InTx(ctx, func(s Store) error {
		localTeams, err := s.Teams().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to load team catalog: %w", err)
		}
		localVenues, err := s.Venues().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to load venue catalog: %w", err)
		}

		result, skips, err := reconcileGames(ctx, s.Games(), localTeams, localVenues, season, games)
		summary.Games = result
		summary.GameSkips = skips
		return err
	})
	if err != nil {
		return imp.fail(summary, "games", err)
	}

	summary.State = StateDone
	metrics.ImportRunsTotal.WithLabelValues(string(StateDone)).Inc()
	metrics.ImportDuration.Observe(time.Since(start).Seconds())

	log.Info().
		Int("season", season).
		Int("teams_created", summary.Teams.Created).
		Int("venues_created", summary.Venues.Created).
		Int("games_created", summary.Games.Created).
		Int("games_skipped", summary.Games.Skipped).
		Dur("duration", time.Since(start)).
		Msg("Season import complete")

	return summary, nil
}

// fail marks the import failed. Stages committed before the failing one are
// deliberately left in place: team and venue data is valid on its own even
// when the season's schedule never lands.
func (imp *Importer) fail(summary *Summary, stage string, err error) (*Summary, error) {
	summary.State = StateFailed
	metrics.ImportRunsTotal.WithLabelValues(string(StateFailed)).Inc()
	log.Error().Err(err).
		Int("season", summary.Season).
		Str("stage", stage).
		Msg("Season import failed")
	return summary, fmt.Errorf("season %d import failed during %s stage: %w", summary.Season, stage, err)
}

// fetchWithRetry retries transient provider failures with exponential
// backoff. Terminal upstream errors are returned immediately.
func fetchWithRetry[T any](ctx context.Context, imp *Importer, stage string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= imp.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s, ...
			backoff := imp.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("stage", stage).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying provider fetch after backoff")

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		payloads, err := fetch(ctx)
		if err == nil {
			return payloads, nil
		}

		lastErr = err
		if !client.IsTransient(err) {
			return zero, err
		}
	}

	return zero, lastErr
}
